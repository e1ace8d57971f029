package clubrepo

import (
	"context"

	"github.com/Overland-East-Bay/club-portal-api/internal/domain"
)

// Repository provides read access to clubs. Create exists for seeding; the club
// record itself is never mutated by the portal.
type Repository interface {
	Create(ctx context.Context, c domain.Club) error
	GetByID(ctx context.Context, id domain.ClubID) (domain.Club, error)
}
