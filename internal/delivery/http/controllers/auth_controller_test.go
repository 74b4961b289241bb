package controllers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"techtalks/internal/delivery/http/helpers"
	"techtalks/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthController_Register(t *testing.T) {
	valid := map[string]string{
		"name":             "  Ana  ",
		"email":            "ana@example.com",
		"password":         "Secret1!",
		"confirm_password": "Secret1!",
	}
	with := func(key, value string) map[string]string {
		out := map[string]string{}
		for k, v := range valid {
			out[k] = v
		}
		out[key] = value
		return out
	}

	tests := []struct {
		name        string
		body        map[string]string
		fake        *fakeAuthService
		wantStatus  int
		wantCode    string
		wantMessage string
	}{
		{
			name:       "success sets cookie",
			body:       valid,
			fake:       &fakeAuthService{session: &domain.Session{Token: "jwt", User: speakerIdentity}},
			wantStatus: http.StatusCreated,
		},
		{
			name:        "weak password",
			body:        with("password", "secret12"),
			fake:        &fakeAuthService{},
			wantStatus:  http.StatusBadRequest,
			wantCode:    helpers.ErrCodeBadRequest,
			wantMessage: helpers.MsgPasswordWeak,
		},
		{
			name:        "password mismatch",
			body:        with("confirm_password", "Secret1?"),
			fake:        &fakeAuthService{},
			wantStatus:  http.StatusBadRequest,
			wantCode:    helpers.ErrCodeBadRequest,
			wantMessage: helpers.MsgPasswordMismatch,
		},
		{
			name:        "blank name",
			body:        with("name", "   "),
			fake:        &fakeAuthService{},
			wantStatus:  http.StatusBadRequest,
			wantCode:    helpers.ErrCodeBadRequest,
			wantMessage: "name wajib diisi",
		},
		{
			name:       "duplicate email",
			body:       valid,
			fake:       &fakeAuthService{err: domain.ErrDuplicateEmail},
			wantStatus: http.StatusConflict,
			wantCode:   helpers.ErrCodeConflict,
		},
		{
			name:       "service error",
			body:       valid,
			fake:       &fakeAuthService{err: assert.AnError},
			wantStatus: http.StatusInternalServerError,
			wantCode:   helpers.ErrCodeInternalError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := NewAuthController(testLogger(), tt.fake, 24*time.Hour, true)
			req := httptest.NewRequest(http.MethodPost, "http://test/api/auth/register", jsonBody(t, tt.body))
			rr := httptest.NewRecorder()

			ctrl.Register(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			var resp SessionResponse
			apiErr := decodeEnvelope(t, rr, &resp)
			if tt.wantCode != "" {
				require.NotNil(t, apiErr)
				assert.Equal(t, tt.wantCode, apiErr.Code)
				if tt.wantMessage != "" {
					assert.Equal(t, tt.wantMessage, apiErr.Message)
				}
				assert.Empty(t, rr.Result().Cookies())
				return
			}
			require.Nil(t, apiErr)
			assert.Equal(t, SpeakerHome, resp.RedirectTo)
			assert.Equal(t, speakerIdentity.Email, resp.User.Email)
			assert.Equal(t, "Ana", tt.fake.lastName)
			cookies := rr.Result().Cookies()
			require.Len(t, cookies, 1)
			assert.Equal(t, helpers.SessionCookieName, cookies[0].Name)
			assert.Equal(t, "jwt", cookies[0].Value)
			assert.Equal(t, 86400, cookies[0].MaxAge)
		})
	}
}

func TestAuthController_Login(t *testing.T) {
	tests := []struct {
		name         string
		query        string
		body         string
		fake         *fakeAuthService
		wantStatus   int
		wantCode     string
		wantRedirect string
	}{
		{
			name:         "speaker goes to dashboard",
			body:         `{"email":"ana@example.com","password":"Secret1!"}`,
			fake:         &fakeAuthService{session: &domain.Session{Token: "jwt", User: speakerIdentity}},
			wantStatus:   http.StatusOK,
			wantRedirect: SpeakerHome,
		},
		{
			name:         "admin goes to admin dashboard",
			body:         `{"email":"admin@example.com","password":"Secret1!"}`,
			fake:         &fakeAuthService{session: &domain.Session{Token: "jwt", User: adminIdentity}},
			wantStatus:   http.StatusOK,
			wantRedirect: AdminHome,
		},
		{
			name:         "superadmin goes to admin dashboard",
			body:         `{"email":"root@example.com","password":"Secret1!"}`,
			fake:         &fakeAuthService{session: &domain.Session{Token: "jwt", User: superadminIdentity}},
			wantStatus:   http.StatusOK,
			wantRedirect: AdminHome,
		},
		{
			name:         "local redirectTo wins",
			query:        "?redirectTo=%2Fregister-speaker",
			body:         `{"email":"ana@example.com","password":"Secret1!"}`,
			fake:         &fakeAuthService{session: &domain.Session{Token: "jwt", User: speakerIdentity}},
			wantStatus:   http.StatusOK,
			wantRedirect: "/register-speaker",
		},
		{
			name:         "external redirectTo ignored",
			query:        "?redirectTo=%2F%2Fevil.example",
			body:         `{"email":"ana@example.com","password":"Secret1!"}`,
			fake:         &fakeAuthService{session: &domain.Session{Token: "jwt", User: speakerIdentity}},
			wantStatus:   http.StatusOK,
			wantRedirect: SpeakerHome,
		},
		{
			name:         "redirectTo with encoded tab ignored",
			query:        "?redirectTo=%2F%09%2Fevil.example",
			body:         `{"email":"ana@example.com","password":"Secret1!"}`,
			fake:         &fakeAuthService{session: &domain.Session{Token: "jwt", User: speakerIdentity}},
			wantStatus:   http.StatusOK,
			wantRedirect: SpeakerHome,
		},
		{
			name:       "missing fields",
			body:       `{"email":"ana@example.com"}`,
			fake:       &fakeAuthService{},
			wantStatus: http.StatusBadRequest,
			wantCode:   helpers.ErrCodeBadRequest,
		},
		{
			name:       "invalid credentials",
			body:       `{"email":"ana@example.com","password":"wrong"}`,
			fake:       &fakeAuthService{err: domain.ErrInvalidCredentials},
			wantStatus: http.StatusUnauthorized,
			wantCode:   helpers.ErrCodeUnauthorized,
		},
		{
			name:       "service error",
			body:       `{"email":"ana@example.com","password":"Secret1!"}`,
			fake:       &fakeAuthService{err: assert.AnError},
			wantStatus: http.StatusInternalServerError,
			wantCode:   helpers.ErrCodeInternalError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := NewAuthController(testLogger(), tt.fake, 24*time.Hour, false)
			req := httptest.NewRequest(http.MethodPost, "http://test/api/auth/login"+tt.query, strings.NewReader(tt.body))
			rr := httptest.NewRecorder()

			ctrl.Login(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			var resp SessionResponse
			apiErr := decodeEnvelope(t, rr, &resp)
			if tt.wantCode != "" {
				require.NotNil(t, apiErr)
				assert.Equal(t, tt.wantCode, apiErr.Code)
				return
			}
			require.Nil(t, apiErr)
			assert.Equal(t, tt.wantRedirect, resp.RedirectTo)
			cookies := rr.Result().Cookies()
			require.Len(t, cookies, 1)
			assert.True(t, cookies[0].HttpOnly)
			assert.Equal(t, http.SameSiteStrictMode, cookies[0].SameSite)
		})
	}
}

func TestAuthController_Logout(t *testing.T) {
	ctrl := NewAuthController(testLogger(), &fakeAuthService{}, 24*time.Hour, true)
	rr := httptest.NewRecorder()

	ctrl.Logout(rr, httptest.NewRequest(http.MethodPost, "http://test/api/auth/logout", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, helpers.SessionCookieName, cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.Less(t, cookies[0].MaxAge, 0)
}

func TestAuthController_Me(t *testing.T) {
	tests := []struct {
		name     string
		identity *domain.Identity
	}{
		{"anonymous", nil},
		{"logged in", adminIdentity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := NewAuthController(testLogger(), &fakeAuthService{}, 24*time.Hour, true)
			req := withIdentity(httptest.NewRequest(http.MethodGet, "http://test/api/me", nil), tt.identity)
			rr := httptest.NewRecorder()

			ctrl.Me(rr, req)

			require.Equal(t, http.StatusOK, rr.Code)
			var resp MeResponse
			require.Nil(t, decodeEnvelope(t, rr, &resp))
			assert.Equal(t, tt.identity, resp.User)
		})
	}
}

func TestRedirectAfterLogin(t *testing.T) {
	tests := []struct {
		role      domain.Role
		requested string
		want      string
	}{
		{domain.RoleSpeaker, "", SpeakerHome},
		{domain.RoleAdmin, "", AdminHome},
		{domain.RoleSuperAdmin, "", AdminHome},
		{domain.RoleAdmin, "/admin/dashboard?tab=pending", "/admin/dashboard?tab=pending"},
		{domain.RoleSpeaker, "https://evil.example", SpeakerHome},
		{domain.RoleSpeaker, "//evil.example", SpeakerHome},
		{domain.RoleSpeaker, "/\\evil.example", SpeakerHome},
		{domain.RoleSpeaker, "/\t/evil.example", SpeakerHome},
		{domain.RoleSpeaker, "/\n/evil.example", SpeakerHome},
		{domain.RoleSpeaker, "/\r/evil.example", SpeakerHome},
		{domain.RoleAdmin, "/\t/evil.example", AdminHome},
		{domain.RoleSpeaker, "/dashboard\x00", SpeakerHome},
		{domain.RoleSpeaker, "/dashboard#talks", "/dashboard#talks"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, redirectAfterLogin(tt.role, tt.requested), "%s %q", tt.role, tt.requested)
	}
}
