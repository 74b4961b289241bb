package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode"

	h "techtalks/internal/delivery/http/helpers"
	"techtalks/internal/delivery/http/middleware"
	"techtalks/internal/domain"
	"techtalks/internal/metrics"
)

// Post-login landing pages per role.
const (
	SpeakerHome = "/dashboard"
	AdminHome   = "/admin/dashboard"
)

// RegisterRequest is the request body for POST /api/auth/register
type RegisterRequest struct {
	Name            string `json:"name" validate:"required,notblank,max=200"`
	Email           string `json:"email" validate:"required,email,max=254"`
	Password        string `json:"password" validate:"required,min=8,max=72,password_strength"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

// LoginRequest is the request body for POST /api/auth/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate implements Validator.
func (l LoginRequest) Validate() []string {
	if strings.TrimSpace(l.Email) == "" || l.Password == "" {
		return []string{"Email dan password wajib diisi"}
	}
	return nil
}

// SessionResponse is returned by register and login. The token itself travels only in the cookie.
type SessionResponse struct {
	User       *domain.Identity `json:"user"`
	RedirectTo string           `json:"redirect_to"`
}

// MeResponse is the body of GET /api/me. User is null for anonymous callers.
type MeResponse struct {
	User *domain.Identity `json:"user"`
}

type AuthController struct {
	Logger       *slog.Logger
	Service      domain.AuthService
	TokenTTL     time.Duration
	CookieSecure bool
}

func NewAuthController(logger *slog.Logger, svc domain.AuthService, tokenTTL time.Duration, cookieSecure bool) *AuthController {
	return &AuthController{
		Logger:       logger,
		Service:      svc,
		TokenTTL:     tokenTTL,
		CookieSecure: cookieSecure,
	}
}

// Register godoc
// @Summary Register a speaker account
// @Description Create a speaker account and start a session. Passwords need 8+ characters with upper, lower, digit and symbol.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body RegisterRequest true "Registration data"
// @Success 201 {object} helpers.APIResponse "data contains user and redirect_to; token cookie is set"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 429 {object} helpers.APIResponse "error.code: too_many_requests"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/auth/register [post]
func (c *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	session, err := c.Service.RegisterSpeaker(r.Context(), req.Email, req.Password, strings.TrimSpace(req.Name))
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			h.WriteJSONError(w, http.StatusConflict, h.ErrCodeConflict, "Email sudah terdaftar")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, "registration failed")
		return
	}
	metrics.RecordRegistration()

	h.SetSessionCookie(w, session.Token, c.TokenTTL, c.CookieSecure)
	h.WriteJSONSuccess(w, http.StatusCreated, SessionResponse{User: session.User, RedirectTo: SpeakerHome})
}

// Login godoc
// @Summary Log in
// @Description Authenticate with email and password. Sets the token cookie and returns where to go next: the redirectTo query parameter when it is a local path, otherwise the dashboard for the user's role.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body LoginRequest true "Login credentials"
// @Param redirectTo query string false "Local path to return to after login"
// @Success 200 {object} helpers.APIResponse "data contains user and redirect_to; token cookie is set"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 429 {object} helpers.APIResponse "error.code: too_many_requests"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/auth/login [post]
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	session, err := c.Service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			metrics.RecordLoginFailed()
			h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "Email atau password salah")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, "login failed")
		return
	}
	metrics.RecordLogin()

	h.SetSessionCookie(w, session.Token, c.TokenTTL, c.CookieSecure)
	h.WriteJSONSuccess(w, http.StatusOK, SessionResponse{
		User:       session.User,
		RedirectTo: redirectAfterLogin(session.User.Role, r.URL.Query().Get("redirectTo")),
	})
}

// Logout godoc
// @Summary Log out
// @Description Clear the token cookie.
// @Tags auth
// @Produce json
// @Success 200 {object} helpers.APIResponse "data.redirect_to is the login page"
// @Router /api/auth/logout [post]
func (c *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	h.ClearSessionCookie(w, c.CookieSecure)
	h.WriteJSONSuccess(w, http.StatusOK, map[string]string{"redirect_to": h.LoginPath})
}

// Me godoc
// @Summary Current session
// @Description Return the claims of the session cookie, or a null user when there is no valid session.
// @Tags auth
// @Produce json
// @Success 200 {object} helpers.APIResponse "data.user is the identity or null"
// @Router /api/me [get]
func (c *AuthController) Me(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.IdentityFromContext(r.Context())
	h.WriteJSONSuccess(w, http.StatusOK, MeResponse{User: identity})
}

func redirectAfterLogin(role domain.Role, requested string) string {
	if isLocalPath(requested) {
		return requested
	}
	if role.IsAdmin() {
		return AdminHome
	}
	return SpeakerHome
}

// isLocalPath accepts only same-site paths. Control characters are rejected because
// browsers drop them while parsing, turning "/\t/host" into "//host".
func isLocalPath(p string) bool {
	if strings.ContainsFunc(p, unicode.IsControl) {
		return false
	}
	if !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.HasPrefix(p, "/\\") {
		return false
	}
	u, err := url.Parse(p)
	return err == nil && u.Scheme == "" && u.Host == ""
}
