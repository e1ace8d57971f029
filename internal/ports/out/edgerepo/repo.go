package edgerepo

import (
	"context"
	"time"

	"github.com/Overland-East-Bay/club-portal-api/internal/domain"
)

// Relation names one of the existence-only edge relations.
type Relation string

const (
	RelationMembership Relation = "club_members"
	RelationFollow     Relation = "club_followers"
)

func (r Relation) Valid() bool {
	return r == RelationMembership || r == RelationFollow
}

// Edge is the persistence shape of one membership or follow row.
type Edge struct {
	ID       string
	Relation Relation
	ClubID   domain.ClubID
	UserID   domain.UserID

	// Name and Email are only stored for membership rows; the organizer feed reads them.
	Name  string
	Email string

	CreatedAt time.Time
}

// Repository provides access to the membership and follow relations.
//
// Uniqueness on (club_id, user_id) per relation is required of implementations.
type Repository interface {
	// Exists reports whether an edge exists. Zero rows is (false, nil), never an error.
	Exists(ctx context.Context, rel Relation, clubID domain.ClubID, userID domain.UserID) (bool, error)

	// Insert creates one edge. A uniqueness violation returns ErrAlreadyExists;
	// an edge for a club that does not exist returns ErrClubNotFound.
	Insert(ctx context.Context, e Edge) error

	// Delete removes the matching edge. If none exists, ErrNotFound is returned.
	Delete(ctx context.Context, rel Relation, clubID domain.ClubID, userID domain.UserID) error
}
