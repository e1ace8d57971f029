package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/Overland-East-Bay/club-portal-api/internal/domain"
)

// TokenVerifier turns a bearer token into the viewer identity it carries.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (domain.UserIdentity, error)
}

// NewAuthMiddleware resolves Authorization: Bearer <JWT> into a viewer identity.
//
// Requests without an Authorization header pass through anonymously: club pages
// are public and the handlers decide what an anonymous viewer may do. A header
// that is present but malformed or invalid is rejected with 401.
func NewAuthMiddleware(v TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authz := r.Header.Get("Authorization")
			if authz == "" {
				next.ServeHTTP(w, r)
				return
			}
			const prefix = "Bearer "
			if !strings.HasPrefix(authz, prefix) {
				writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "malformed Authorization header", nil)
				return
			}
			raw := strings.TrimSpace(strings.TrimPrefix(authz, prefix))
			if raw == "" {
				writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token", nil)
				return
			}

			id, err := v.Verify(r.Context(), raw)
			if err != nil {
				writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid token", nil)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// NewDevAuthMiddleware is a local/dev-only auth shim.
//
// It reads the viewer from X-Debug-Subject, X-Debug-Role, X-Debug-Name and
// X-Debug-Email. Without X-Debug-Subject it falls back to defaultSubject; when
// both are empty the request is anonymous.
//
// Do NOT use this in production deployments.
func NewDevAuthMiddleware(defaultSubject, defaultRole string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sub := strings.TrimSpace(r.Header.Get("X-Debug-Subject"))
			if sub == "" {
				sub = strings.TrimSpace(defaultSubject)
			}
			if sub == "" {
				next.ServeHTTP(w, r)
				return
			}

			role := r.Header.Get("X-Debug-Role")
			if strings.TrimSpace(role) == "" {
				role = defaultRole
			}
			id := domain.UserIdentity{
				ID:    domain.UserID(sub),
				Role:  domain.ParseRole(role),
				Name:  domain.NormalizeHumanName(r.Header.Get("X-Debug-Name")),
				Email: strings.TrimSpace(r.Header.Get("X-Debug-Email")),
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}
