package activityrepo

import (
	"context"
	"time"

	"github.com/Overland-East-Bay/club-portal-api/internal/domain"
)

// MemberJoin is one row of the membership relation joined with its club name.
type MemberJoin struct {
	ID       string
	Name     string
	Email    string
	ClubID   domain.ClubID
	ClubName string
	JoinedAt time.Time
}

// Announcement is one row of the announcement relation joined with its club name.
type Announcement struct {
	ID        string
	Title     string
	Content   string
	ClubID    domain.ClubID
	ClubName  string
	CreatedAt time.Time
}

// Registration is one event participant row of a club's event.
type Registration struct {
	ID           string
	EventID      string
	EventTitle   string
	UserID       domain.UserID
	Name         string
	Email        string
	RegisteredAt time.Time
}

// Repository provides the read side used by the notification feed.
//
// Result ordering expectations:
// - RecentMemberJoins orders by JoinedAt descending.
// - RecentAnnouncements orders by CreatedAt descending.
// - ListEventRegistrations orders by RegisteredAt descending.
type Repository interface {
	RecentMemberJoins(ctx context.Context, limit int) ([]MemberJoin, error)
	RecentAnnouncements(ctx context.Context, limit int) ([]Announcement, error)
	ListEventRegistrations(ctx context.Context, clubID domain.ClubID) ([]Registration, error)
}
