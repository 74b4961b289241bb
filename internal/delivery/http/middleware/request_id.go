package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// HeaderXRequestID carries the request ID on requests and responses.
const HeaderXRequestID = "X-Request-Id"

const requestIDKey contextKey = "requestID"

// RequestIDFromContext returns the request ID set by RequestID, or "".
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// RequestID reuses the caller's X-Request-Id or generates one, echoes it on the response
// and stores it in the request context.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(HeaderXRequestID)
		if reqID == "" || len(reqID) > 128 {
			reqID = uuid.NewString()
		}
		w.Header().Set(HeaderXRequestID, reqID)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, reqID)))
	})
}
