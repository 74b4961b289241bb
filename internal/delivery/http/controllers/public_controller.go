package controllers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	h "techtalks/internal/delivery/http/helpers"
	"techtalks/internal/domain"
	"techtalks/internal/metrics"
)

const healthTimeout = 2 * time.Second

// Pinger reports whether a dependency is reachable. *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type PublicController struct {
	Logger  *slog.Logger
	Service domain.HomeService
	DB      Pinger
}

func NewPublicController(logger *slog.Logger, svc domain.HomeService, db Pinger) *PublicController {
	return &PublicController{
		Logger:  logger,
		Service: svc,
		DB:      db,
	}
}

// Home godoc
// @Summary Landing page
// @Description Approved talks merged with the community events feed, sorted by start time, each with a derived status; plus the donation total. Unavailable sources are omitted.
// @Tags public
// @Produce json
// @Success 200 {object} helpers.APIResponse "data is HomePage"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/home [get]
func (c *PublicController) Home(w http.ResponseWriter, r *http.Request) {
	page, err := c.Service.GetHomePage(r.Context())
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, "failed to load home page")
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, page)
}

// Calendar godoc
// @Summary Event calendar
// @Description Approved talks as one-hour calendar entries.
// @Tags public
// @Produce json
// @Success 200 {object} helpers.APIResponse "data is an array of CalendarEntry"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/calendar [get]
func (c *PublicController) Calendar(w http.ResponseWriter, r *http.Request) {
	entries, err := c.Service.GetCalendar(r.Context())
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, "failed to load calendar")
		return
	}
	if entries == nil {
		entries = []*domain.CalendarEntry{}
	}
	h.WriteJSONSuccess(w, http.StatusOK, entries)
}

// Donation godoc
// @Summary Donation total
// @Description Aggregated donation amount; 0 when the aggregator is unavailable.
// @Tags public
// @Produce json
// @Success 200 {object} helpers.APIResponse "data.total"
// @Router /api/donation [get]
func (c *PublicController) Donation(w http.ResponseWriter, r *http.Request) {
	h.WriteJSONSuccess(w, http.StatusOK, map[string]float64{"total": c.Service.GetDonationTotal(r.Context())})
}

// Healthz godoc
// @Summary Health check
// @Description Reports whether the database is reachable.
// @Tags ops
// @Produce json
// @Success 200 {object} helpers.APIResponse "data.status is ok"
// @Failure 503 {object} helpers.APIResponse "error.code: internal_error"
// @Router /healthz [get]
func (c *PublicController) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()
	if err := c.DB.PingContext(ctx); err != nil {
		metrics.SetDependencyHealth("postgres", false)
		c.Logger.WarnContext(r.Context(), "health check failed", "dependency", "postgres", "err", err)
		h.WriteJSONError(w, http.StatusServiceUnavailable, h.ErrCodeInternalError, "database unavailable")
		return
	}
	metrics.SetDependencyHealth("postgres", true)
	h.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
}
