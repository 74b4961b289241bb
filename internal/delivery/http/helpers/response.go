package helpers

import (
	"encoding/json"
	"net/http"
	"net/url"
)

// Error codes for API error responses. Use these with WriteJSONError.
const (
	ErrCodeBadRequest      = "bad_request"
	ErrCodeUnauthorized    = "unauthorized"
	ErrCodeForbidden       = "forbidden"
	ErrCodeNotFound        = "not_found"
	ErrCodeConflict        = "conflict"
	ErrCodeTooManyRequests = "too_many_requests"
	ErrCodeInternalError   = "internal_error"
)

// LoginPath is where unauthenticated callers are sent to sign in.
const LoginPath = "/login"

// APIError is the error object in the standardized API response envelope.
// RedirectTo is set on 401 responses and points at the login page.
// swagger:model APIError
type APIError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	RedirectTo string `json:"redirect_to,omitempty"`
}

// APIResponse is the standardized envelope for all API responses.
// On success: Data is set, Error is nil. On error: Data is nil, Error is set.
// swagger:model APIResponse
type APIResponse struct {
	Data  any       `json:"data"`
	Error *APIError `json:"error"`
}

// WriteJSONSuccess sets Content-Type to application/json, writes statusCode, and
// encodes an APIResponse with the given data and error set to nil.
func WriteJSONSuccess(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(APIResponse{Data: data, Error: nil})
}

// WriteJSONError sets Content-Type to application/json, writes statusCode, and
// encodes an APIResponse with data nil and the given error code and message.
func WriteJSONError(w http.ResponseWriter, statusCode int, code, message string) {
	writeError(w, statusCode, &APIError{Code: code, Message: message})
}

// WriteUnauthorized writes a 401 whose redirect_to sends the caller to the login page
// and back to the requested path afterwards.
func WriteUnauthorized(w http.ResponseWriter, r *http.Request, message string) {
	writeError(w, http.StatusUnauthorized, &APIError{
		Code:       ErrCodeUnauthorized,
		Message:    message,
		RedirectTo: LoginPath + "?redirectTo=" + url.QueryEscape(r.URL.RequestURI()),
	})
}

func writeError(w http.ResponseWriter, statusCode int, apiErr *APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(APIResponse{Data: nil, Error: apiErr})
}
