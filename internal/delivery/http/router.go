package http

import (
	"log/slog"
	"net/http"
	"time"

	httpSwagger "github.com/swaggo/http-swagger"

	"techtalks/internal/delivery/http/controllers"
	"techtalks/internal/delivery/http/middleware"
	"techtalks/internal/domain"
	"techtalks/internal/metrics"
)

// RouterConfig holds the controllers and settings the router wires together.
type RouterConfig struct {
	Logger             *slog.Logger
	Identity           middleware.IdentityResolver
	Auth               *controllers.AuthController
	Submissions        *controllers.SubmissionController
	Admin              *controllers.AdminController
	Public             *controllers.PublicController
	CORSAllowedOrigins []string
	AuthRateLimit      int
}

// NewRouter initializes the HTTP router with all application routes and the middleware chain.
func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	speaker := middleware.RequireAuth(cfg.Identity, cfg.Logger)
	admin := middleware.RequireAuth(cfg.Identity, cfg.Logger, domain.RoleAdmin, domain.RoleSuperAdmin)
	superadmin := middleware.RequireAuth(cfg.Identity, cfg.Logger, domain.RoleSuperAdmin)
	limited := middleware.RateLimit(cfg.AuthRateLimit, time.Minute)

	// Auth
	mux.Handle("POST /api/auth/register", limited(http.HandlerFunc(cfg.Auth.Register)))
	mux.Handle("POST /api/auth/login", limited(http.HandlerFunc(cfg.Auth.Login)))
	mux.HandleFunc("POST /api/auth/logout", cfg.Auth.Logout)
	mux.HandleFunc("GET /api/me", cfg.Auth.Me)

	// Public pages
	mux.HandleFunc("GET /api/home", cfg.Public.Home)
	mux.HandleFunc("GET /api/calendar", cfg.Public.Calendar)
	mux.HandleFunc("GET /api/donation", cfg.Public.Donation)

	// Speaker
	mux.HandleFunc("GET /api/submissions/booked-slots", speaker(cfg.Submissions.BookedSlots))
	mux.HandleFunc("GET /api/submissions/availability", speaker(cfg.Submissions.Availability))
	mux.HandleFunc("POST /api/submissions", speaker(cfg.Submissions.Create))
	mux.HandleFunc("GET /api/submissions/mine", speaker(cfg.Submissions.Mine))

	// Admin
	mux.HandleFunc("GET /api/admin/submissions", admin(cfg.Admin.ListSubmissions))
	mux.HandleFunc("PATCH /api/admin/submissions/{id}/status", admin(cfg.Admin.UpdateStatus))
	mux.HandleFunc("GET /api/admin/submissions/{id}/history", admin(cfg.Admin.History))
	mux.HandleFunc("GET /api/admin/admins", superadmin(cfg.Admin.ListAdmins))
	mux.HandleFunc("POST /api/admin/admins", superadmin(cfg.Admin.CreateAdmin))
	mux.HandleFunc("DELETE /api/admin/admins/{id}", superadmin(cfg.Admin.DeleteAdmin))

	// Ops
	mux.HandleFunc("GET /healthz", cfg.Public.Healthz)
	mux.Handle("GET /metrics", metrics.Handler())
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	var handler http.Handler = middleware.Metrics(mux)
	handler = middleware.Authenticate(cfg.Identity, handler)
	handler = middleware.CORS(cfg.CORSAllowedOrigins, handler)
	handler = middleware.LoggingMiddleware(cfg.Logger, handler)
	return middleware.RequestID(handler)
}
