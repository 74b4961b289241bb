package middleware

import (
	"net/http"
	"time"

	"techtalks/internal/metrics"
)

// Metrics records request count, latency and sizes per route pattern. It must wrap the
// ServeMux directly so the matched pattern is visible after the handler returns.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		endpoint := r.Pattern
		if endpoint == "" {
			endpoint = "unmatched"
		}
		requestSize := r.ContentLength
		if requestSize < 0 {
			requestSize = 0
		}
		metrics.RecordHTTPRequest(r.Method, endpoint, wrapped.status, time.Since(start), requestSize, wrapped.written)
	})
}
