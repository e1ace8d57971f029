package activityrepo

import (
	"time"

	"github.com/Overland-East-Bay/club-portal-api/internal/domain"
	"github.com/Overland-East-Bay/club-portal-api/internal/ports/out/edgerepo"
)

func membership(id string, club domain.ClubID, user domain.UserID, name string, at time.Time) edgerepo.Edge {
	return edgerepo.Edge{
		ID:        id,
		Relation:  edgerepo.RelationMembership,
		ClubID:    club,
		UserID:    user,
		Name:      name,
		Email:     string(user) + "@example.com",
		CreatedAt: at,
	}
}
