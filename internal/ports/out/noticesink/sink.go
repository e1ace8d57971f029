package noticesink

import (
	"context"
	"time"

	"github.com/Overland-East-Bay/club-portal-api/internal/domain"
)

type Variant string

const (
	VariantDefault     Variant = "default"
	VariantDestructive Variant = "destructive"
)

// Notice is a user-facing message (the toast) produced from a mutation outcome.
type Notice struct {
	UserID      domain.UserID
	ClubID      domain.ClubID
	Title       string
	Description string
	Variant     Variant
	CreatedAt   time.Time
}

// Sink presents notices to the user. Delivery is best effort.
type Sink interface {
	Notify(ctx context.Context, n Notice) error
}
