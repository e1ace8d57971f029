// Package clubs serves the read side of a club page: details, viewer
// affordances and event registrations.
package clubs

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/Overland-East-Bay/club-portal-api/internal/domain"
	"github.com/Overland-East-Bay/club-portal-api/internal/ports/out/activityrepo"
	"github.com/Overland-East-Bay/club-portal-api/internal/ports/out/clubrepo"
)

// Details is a club as seen by one viewer.
type Details struct {
	Club domain.Club
	// ViewerLeads is true when the viewer organizes or co-leads the club.
	ViewerLeads bool
	// ShowActions is false for anonymous viewers and for the club's leads, who
	// get management actions instead of join/follow.
	ShowActions bool
}

type Service struct {
	clubs    clubrepo.Repository
	activity activityrepo.Repository
}

func NewService(clubs clubrepo.Repository, activity activityrepo.Repository) *Service {
	return &Service{clubs: clubs, activity: activity}
}

// ParseClubID validates a raw path id. Malformed ids are reported as not found.
func ParseClubID(raw string) (domain.ClubID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", errNotFound()
	}
	return domain.ClubID(id.String()), nil
}

func (s *Service) GetClub(ctx context.Context, viewer *domain.UserIdentity, rawID string) (Details, error) {
	c, err := s.load(ctx, rawID)
	if err != nil {
		return Details{}, err
	}
	d := Details{Club: c}
	if viewer.Authenticated() {
		d.ViewerLeads = c.IsLedBy(viewer.ID)
		d.ShowActions = !d.ViewerLeads
	}
	return d, nil
}

// MutationTarget resolves the club a membership or follow change applies to.
// The club is only loaded for signed-in viewers; anonymous attempts are
// rejected by the mutation itself without a backend read.
func (s *Service) MutationTarget(ctx context.Context, viewer *domain.UserIdentity, rawID string) (domain.ClubID, error) {
	if !viewer.Authenticated() {
		return ParseClubID(rawID)
	}
	c, err := s.load(ctx, rawID)
	if err != nil {
		return "", err
	}
	return c.ID, nil
}

// ListRegistrations returns the event registrations of a club, newest first.
// Only the club's organizer and leads may read them.
func (s *Service) ListRegistrations(ctx context.Context, viewer *domain.UserIdentity, rawID string) ([]activityrepo.Registration, error) {
	if !viewer.Authenticated() {
		return nil, errUnauthorized()
	}
	c, err := s.load(ctx, rawID)
	if err != nil {
		return nil, err
	}
	if !c.IsLedBy(viewer.ID) {
		return nil, errForbidden()
	}
	return s.activity.ListEventRegistrations(ctx, c.ID)
}

func (s *Service) load(ctx context.Context, rawID string) (domain.Club, error) {
	id, err := ParseClubID(rawID)
	if err != nil {
		return domain.Club{}, err
	}
	c, err := s.clubs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, clubrepo.ErrNotFound) {
			return domain.Club{}, errNotFound()
		}
		return domain.Club{}, err
	}
	return c, nil
}
