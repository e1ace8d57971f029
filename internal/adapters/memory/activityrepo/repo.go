package activityrepo

import (
	"context"
	"sort"
	"sync"
	"time"

	memclubrepo "github.com/Overland-East-Bay/club-portal-api/internal/adapters/memory/clubrepo"
	memedgerepo "github.com/Overland-East-Bay/club-portal-api/internal/adapters/memory/edgerepo"
	"github.com/Overland-East-Bay/club-portal-api/internal/domain"
	"github.com/Overland-East-Bay/club-portal-api/internal/ports/out/activityrepo"
	"github.com/Overland-East-Bay/club-portal-api/internal/ports/out/edgerepo"
)

// Event is the seeding shape of a club event.
type Event struct {
	ID       string
	ClubID   domain.ClubID
	Title    string
	StartsAt time.Time
}

// Repo is an in-memory implementation of activityrepo.Repository.
//
// Membership rows are read from the shared memory edge repository and club names
// from the shared memory club repository, mirroring the relational joins of the
// Postgres adapter. It is safe for concurrent use.
type Repo struct {
	clubs *memclubrepo.Repo
	edges *memedgerepo.Repo

	mu            sync.RWMutex
	announcements []activityrepo.Announcement
	events        map[string]Event
	registrations map[string][]activityrepo.Registration // by event ID
}

func NewRepo(clubs *memclubrepo.Repo, edges *memedgerepo.Repo) *Repo {
	return &Repo{
		clubs:         clubs,
		edges:         edges,
		events:        make(map[string]Event),
		registrations: make(map[string][]activityrepo.Registration),
	}
}

// AddAnnouncement stores an announcement. ClubName is ignored and resolved on read.
func (r *Repo) AddAnnouncement(a activityrepo.Announcement) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a.ClubName = ""
	r.announcements = append(r.announcements, a)
}

func (r *Repo) AddEvent(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events[e.ID] = e
}

// AddRegistration stores a participant row for an existing event. EventTitle is resolved on read.
func (r *Repo) AddRegistration(reg activityrepo.Registration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.registrations[reg.EventID] = append(r.registrations[reg.EventID], reg)
}

func (r *Repo) RecentMemberJoins(ctx context.Context, limit int) ([]activityrepo.MemberJoin, error) {
	_ = ctx
	rows := r.edges.ListByRelation(edgerepo.RelationMembership)
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	out := make([]activityrepo.MemberJoin, 0, len(rows))
	for _, e := range rows {
		out = append(out, activityrepo.MemberJoin{
			ID:       e.ID,
			Name:     e.Name,
			Email:    e.Email,
			ClubID:   e.ClubID,
			ClubName: r.clubs.Name(e.ClubID),
			JoinedAt: e.CreatedAt,
		})
	}
	return out, nil
}

func (r *Repo) RecentAnnouncements(ctx context.Context, limit int) ([]activityrepo.Announcement, error) {
	_ = ctx
	r.mu.RLock()
	out := append([]activityrepo.Announcement(nil), r.announcements...)
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	for i := range out {
		out[i].ClubName = r.clubs.Name(out[i].ClubID)
	}
	return out, nil
}

func (r *Repo) ListEventRegistrations(ctx context.Context, clubID domain.ClubID) ([]activityrepo.Registration, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]activityrepo.Registration, 0)
	for eventID, regs := range r.registrations {
		ev, ok := r.events[eventID]
		if !ok || ev.ClubID != clubID {
			continue
		}
		for _, reg := range regs {
			reg.EventTitle = ev.Title
			out = append(out, reg)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RegisteredAt.Equal(out[j].RegisteredAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].RegisteredAt.After(out[j].RegisteredAt)
	})
	return out, nil
}
