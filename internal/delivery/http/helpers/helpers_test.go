package helpers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSONSuccess(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteJSONSuccess(rr, http.StatusCreated, map[string]string{"id": "1"})

	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	var envelope APIResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
	assert.Nil(t, envelope.Error)
	assert.Equal(t, map[string]any{"id": "1"}, envelope.Data)
}

func TestWriteJSONError(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteJSONError(rr, http.StatusConflict, ErrCodeConflict, "taken")

	require.Equal(t, http.StatusConflict, rr.Code)
	var envelope APIResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
	require.NotNil(t, envelope.Error)
	assert.Nil(t, envelope.Data)
	assert.Equal(t, ErrCodeConflict, envelope.Error.Code)
	assert.Equal(t, "taken", envelope.Error.Message)
	assert.Empty(t, envelope.Error.RedirectTo)
}

func TestWriteUnauthorized(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "http://test/admin/submissions?status=pending", nil)
	rr := httptest.NewRecorder()
	WriteUnauthorized(rr, req, "login required")

	require.Equal(t, http.StatusUnauthorized, rr.Code)
	var envelope APIResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, ErrCodeUnauthorized, envelope.Error.Code)
	assert.Equal(t, "/login?redirectTo=%2Fadmin%2Fsubmissions%3Fstatus%3Dpending", envelope.Error.RedirectTo)
}

type registerDTO struct {
	Name            string `json:"name" validate:"required,notblank"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8,password_strength"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

type slotDTO struct {
	Date string `form:"date" validate:"required,event_date"`
	Time string `form:"time" validate:"required,time_slot"`
}

type customDTO struct {
	Value string `json:"value"`
}

func (d customDTO) Validate() []string {
	if d.Value == "bad" {
		return []string{"value is bad"}
	}
	return nil
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want []string
	}{
		{
			name: "valid registration",
			in:   &registerDTO{Name: "Ana", Email: "ana@example.com", Password: "Secret1!", ConfirmPassword: "Secret1!"},
		},
		{
			name: "missing name",
			in:   &registerDTO{Email: "ana@example.com", Password: "Secret1!", ConfirmPassword: "Secret1!"},
			want: []string{"name wajib diisi"},
		},
		{
			name: "blank name",
			in:   &registerDTO{Name: " \t ", Email: "ana@example.com", Password: "Secret1!", ConfirmPassword: "Secret1!"},
			want: []string{"name wajib diisi"},
		},
		{
			name: "short password",
			in:   &registerDTO{Name: "Ana", Email: "ana@example.com", Password: "Se1!", ConfirmPassword: "Se1!"},
			want: []string{MsgPasswordTooShort},
		},
		{
			name: "weak password",
			in:   &registerDTO{Name: "Ana", Email: "ana@example.com", Password: "secret12", ConfirmPassword: "secret12"},
			want: []string{MsgPasswordWeak},
		},
		{
			name: "space counts as symbol",
			in:   &registerDTO{Name: "Ana", Email: "ana@example.com", Password: "Secret 12", ConfirmPassword: "Secret 12"},
		},
		{
			name: "mismatched confirmation",
			in:   &registerDTO{Name: "Ana", Email: "ana@example.com", Password: "Secret1!", ConfirmPassword: "Secret1?"},
			want: []string{MsgPasswordMismatch},
		},
		{
			name: "bad email",
			in:   &registerDTO{Name: "Ana", Email: "ana", Password: "Secret1!", ConfirmPassword: "Secret1!"},
			want: []string{"email harus berupa alamat email yang valid"},
		},
		{
			name: "valid slot",
			in:   &slotDTO{Date: "2026-11-02", Time: "13:00"},
		},
		{
			name: "slot outside grid and bad date",
			in:   &slotDTO{Date: "02-11-2026", Time: "11:00"},
			want: []string{
				"date harus berformat YYYY-MM-DD",
				"time harus salah satu dari: 10:00, 13:00, 16:00, 20:00",
			},
		},
		{
			name: "custom validator",
			in:   customDTO{Value: "bad"},
			want: []string{"value is bad"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateStruct(tt.in))
		})
	}
}

func TestDecodeAndValidate(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantOK   bool
		wantCode int
	}{
		{"valid", `{"name":"Ana","email":"ana@example.com","password":"Secret1!","confirm_password":"Secret1!"}`, true, http.StatusOK},
		{"malformed json", `{"name":`, false, http.StatusBadRequest},
		{"unknown field", `{"name":"Ana","role":"admin"}`, false, http.StatusBadRequest},
		{"invalid fields", `{"name":"Ana"}`, false, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "http://test/", strings.NewReader(tt.body))
			rr := httptest.NewRecorder()
			var dto registerDTO

			ok := DecodeAndValidate(rr, req, &dto)

			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantCode, rr.Code)
			if !ok {
				var envelope APIResponse
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
				require.NotNil(t, envelope.Error)
				assert.Equal(t, ErrCodeBadRequest, envelope.Error.Code)
			}
		})
	}
}

func TestSessionCookie(t *testing.T) {
	rr := httptest.NewRecorder()
	SetSessionCookie(rr, "abc", 24*time.Hour, true)

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, SessionCookieName, c.Name)
	assert.Equal(t, "abc", c.Value)
	assert.Equal(t, "/", c.Path)
	assert.Equal(t, 86400, c.MaxAge)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteStrictMode, c.SameSite)

	req := httptest.NewRequest(http.MethodGet, "http://test/", nil)
	req.AddCookie(c)
	assert.Equal(t, "abc", SessionToken(req))
	assert.Empty(t, SessionToken(httptest.NewRequest(http.MethodGet, "http://test/", nil)))

	rr = httptest.NewRecorder()
	ClearSessionCookie(rr, false)
	cookies = rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Empty(t, cookies[0].Value)
	assert.Less(t, cookies[0].MaxAge, 0)
}

func TestPathUUID(t *testing.T) {
	mux := http.NewServeMux()
	var got string
	mux.HandleFunc("GET /items/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, ok := PathUUID(w, r, "id")
		if !ok {
			return
		}
		got = id
		w.WriteHeader(http.StatusNoContent)
	})

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "http://test/items/6f1c8a0e-3f5a-4c57-9d0a-1f0e2b3c4d5e", nil))
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "6f1c8a0e-3f5a-4c57-9d0a-1f0e2b3c4d5e", got)

	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "http://test/items/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
