package clubrepo

import (
	"context"
	"sync"

	"github.com/Overland-East-Bay/club-portal-api/internal/domain"
	"github.com/Overland-East-Bay/club-portal-api/internal/ports/out/clubrepo"
)

// Repo is an in-memory implementation of clubrepo.Repository.
// It is safe for concurrent use.
type Repo struct {
	mu sync.RWMutex
	m  map[domain.ClubID]domain.Club
}

func NewRepo() *Repo {
	return &Repo{m: make(map[domain.ClubID]domain.Club)}
}

func (r *Repo) Create(ctx context.Context, c domain.Club) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.m[c.ID]; ok {
		return clubrepo.ErrAlreadyExists
	}
	r.m[c.ID] = cloneClub(c)
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.ClubID) (domain.Club, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.m[id]
	if !ok {
		return domain.Club{}, clubrepo.ErrNotFound
	}
	return cloneClub(c), nil
}

// Has reports whether a club with id exists.
func (r *Repo) Has(id domain.ClubID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.m[id]
	return ok
}

// Name returns the club name, or "" if unknown. Used to resolve club names for feed rows.
func (r *Repo) Name(id domain.ClubID) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.m[id].Name
}

func cloneClub(c domain.Club) domain.Club {
	out := c
	if c.LeadIDs != nil {
		out.LeadIDs = append([]domain.UserID(nil), c.LeadIDs...)
	}
	if c.Vision != nil {
		v := *c.Vision
		out.Vision = &v
	}
	return out
}
