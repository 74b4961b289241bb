package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"slices"

	h "techtalks/internal/delivery/http/helpers"
	"techtalks/internal/domain"
)

type contextKey string

const identityKey contextKey = "identity"

// IdentityResolver turns a session token into the caller's identity. It returns nil for any bad token.
type IdentityResolver interface {
	VerifyToken(token string) *domain.Identity
}

// SetIdentity returns a context with the caller's identity set. Used by auth middleware.
func SetIdentity(ctx context.Context, identity *domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// IdentityFromContext returns the authenticated identity from the context, if present.
func IdentityFromContext(ctx context.Context) (*domain.Identity, bool) {
	id, ok := ctx.Value(identityKey).(*domain.Identity)
	return id, ok && id != nil
}

// Authenticate resolves the session cookie on every request and stores the identity in the
// request context. Requests without a valid cookie pass through anonymously.
func Authenticate(resolver IdentityResolver, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token := h.SessionToken(r); token != "" {
			if identity := resolver.VerifyToken(token); identity != nil {
				r = r.WithContext(SetIdentity(r.Context(), identity))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAuth returns a wrapper that requires a valid session. With roles given, the caller's
// role must be one of them. A missing or invalid session gets 401 with a login redirect hint;
// a disallowed role gets 403.
func RequireAuth(resolver IdentityResolver, logger *slog.Logger, roles ...domain.Role) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			identity, ok := IdentityFromContext(r.Context())
			if !ok {
				token := h.SessionToken(r)
				if token == "" {
					h.WriteUnauthorized(w, r, "login required")
					return
				}
				identity = resolver.VerifyToken(token)
				if identity == nil {
					h.WriteUnauthorized(w, r, "invalid or expired session")
					return
				}
				r = r.WithContext(SetIdentity(r.Context(), identity))
			}
			if len(roles) > 0 && !slices.Contains(roles, identity.Role) {
				logger.WarnContext(r.Context(), "access denied",
					"path", r.URL.Path,
					"user_id", identity.ID,
					"role", identity.Role,
				)
				h.WriteJSONError(w, http.StatusForbidden, h.ErrCodeForbidden, "access denied")
				return
			}
			next(w, r)
		}
	}
}
