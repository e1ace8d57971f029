package httpapi

import (
	"context"

	"github.com/Overland-East-Bay/club-portal-api/internal/domain"
)

type identityKey struct{}

func WithIdentity(ctx context.Context, id domain.UserIdentity) context.Context {
	return context.WithValue(ctx, identityKey{}, &id)
}

// IdentityFromContext returns nil for anonymous requests.
func IdentityFromContext(ctx context.Context) *domain.UserIdentity {
	v, _ := ctx.Value(identityKey{}).(*domain.UserIdentity)
	if !v.Authenticated() {
		return nil
	}
	return v
}
