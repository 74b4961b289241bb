package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"

	h "techtalks/internal/delivery/http/helpers"
)

// RateLimit limits each client IP to limit requests per window. Over the limit it answers
// 429 in the JSON envelope.
func RateLimit(limit int, window time.Duration) func(http.Handler) http.Handler {
	return httprate.Limit(
		limit,
		window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			h.WriteJSONError(w, http.StatusTooManyRequests, h.ErrCodeTooManyRequests, "too many requests, try again later")
		}),
	)
}
