// Package seed loads a small demo data set into the memory backend.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	memactivityrepo "github.com/Overland-East-Bay/club-portal-api/internal/adapters/memory/activityrepo"
	memclubrepo "github.com/Overland-East-Bay/club-portal-api/internal/adapters/memory/clubrepo"
	memedgerepo "github.com/Overland-East-Bay/club-portal-api/internal/adapters/memory/edgerepo"
	"github.com/Overland-East-Bay/club-portal-api/internal/domain"
	"github.com/Overland-East-Bay/club-portal-api/internal/ports/out/activityrepo"
	"github.com/Overland-East-Bay/club-portal-api/internal/ports/out/edgerepo"
)

// DevOrganizer organizes every demo club. Use it as dev_subject with the
// organizer role to see the members feed.
const DevOrganizer domain.UserID = "dev|organizer"

// Stores groups the memory repositories the demo is written to.
type Stores struct {
	Clubs    *memclubrepo.Repo
	Edges    *memedgerepo.Repo
	Activity *memactivityrepo.Repo
}

type demoClub struct {
	name, description, vision string
	members                   []string
	announcements             []string
	event                     string
}

var demo = []demoClub{
	{
		name:          "Chess Club",
		description:   "Casual and rated games every Thursday evening.",
		vision:        "A board for everyone.",
		members:       []string{"Ada Lovelace", "Alan Turing"},
		announcements: []string{"Simul night with a visiting master", "New clocks have arrived"},
		event:         "Thursday Blitz",
	},
	{
		name:          "Robotics Club",
		description:   "Build, break and rebuild small robots.",
		members:       []string{"Grace Hopper"},
		announcements: []string{"Kickoff meeting"},
		event:         "Soldering Workshop",
	},
}

// Demo writes the demo clubs and returns their ids in order. Timestamps are
// spread backwards from now so feeds have a stable order.
func Demo(ctx context.Context, s Stores, now time.Time) ([]domain.ClubID, error) {
	ids := make([]domain.ClubID, 0, len(demo))
	step := 0
	tick := func() time.Time {
		step++
		return now.Add(-time.Duration(step) * 7 * time.Minute)
	}

	for _, d := range demo {
		vision := &d.vision
		if d.vision == "" {
			vision = nil
		}
		club := domain.Club{
			ID:          domain.ClubID(uuid.NewString()),
			Name:        d.name,
			OrganizerID: DevOrganizer,
			Description: d.description,
			Vision:      vision,
			EventCount:  1,
		}
		if err := s.Clubs.Create(ctx, club); err != nil {
			return nil, fmt.Errorf("seed club %q: %w", d.name, err)
		}

		for i, name := range d.members {
			user := domain.UserID(fmt.Sprintf("dev|member-%d", i+1))
			if err := s.Edges.Insert(ctx, edgerepo.Edge{
				ID:        uuid.NewString(),
				Relation:  edgerepo.RelationMembership,
				ClubID:    club.ID,
				UserID:    user,
				Name:      name,
				Email:     fmt.Sprintf("member-%d@example.com", i+1),
				CreatedAt: tick(),
			}); err != nil {
				return nil, fmt.Errorf("seed member %q: %w", name, err)
			}
		}

		for _, title := range d.announcements {
			s.Activity.AddAnnouncement(activityrepo.Announcement{
				ID:        uuid.NewString(),
				Title:     title,
				ClubID:    club.ID,
				CreatedAt: tick(),
			})
		}

		eventID := uuid.NewString()
		s.Activity.AddEvent(memactivityrepo.Event{ID: eventID, ClubID: club.ID, Title: d.event, StartsAt: now.Add(72 * time.Hour)})
		s.Activity.AddRegistration(activityrepo.Registration{
			ID:           uuid.NewString(),
			EventID:      eventID,
			UserID:       "dev|member-1",
			Name:         d.members[0],
			Email:        "member-1@example.com",
			RegisteredAt: tick(),
		})

		ids = append(ids, club.ID)
	}
	return ids, nil
}
