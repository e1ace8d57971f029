package edgerepo

import (
	"context"
	"sort"
	"sync"

	"github.com/Overland-East-Bay/club-portal-api/internal/domain"
	"github.com/Overland-East-Bay/club-portal-api/internal/ports/out/edgerepo"
)

type key struct {
	relation edgerepo.Relation
	clubID   domain.ClubID
	userID   domain.UserID
}

// ClubSet reports whether a club exists. The memory club repository implements it.
type ClubSet interface {
	Has(id domain.ClubID) bool
}

// Repo is an in-memory implementation of edgerepo.Repository.
// It is safe for concurrent use.
type Repo struct {
	mu    sync.RWMutex
	m     map[key]edgerepo.Edge
	clubs ClubSet
}

// NewRepo returns a repository that accepts edges for any club id.
func NewRepo() *Repo {
	return &Repo{m: make(map[key]edgerepo.Edge)}
}

// NewRepoForClubs returns a repository that rejects inserts for clubs missing
// from clubs, like the foreign key on the Postgres tables.
func NewRepoForClubs(clubs ClubSet) *Repo {
	return &Repo{m: make(map[key]edgerepo.Edge), clubs: clubs}
}

func (r *Repo) Exists(ctx context.Context, rel edgerepo.Relation, clubID domain.ClubID, userID domain.UserID) (bool, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.m[key{relation: rel, clubID: clubID, userID: userID}]
	return ok, nil
}

func (r *Repo) Insert(ctx context.Context, e edgerepo.Edge) error {
	_ = ctx
	if r.clubs != nil && !r.clubs.Has(e.ClubID) {
		return edgerepo.ErrClubNotFound
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	k := key{relation: e.Relation, clubID: e.ClubID, userID: e.UserID}
	if _, ok := r.m[k]; ok {
		return edgerepo.ErrAlreadyExists
	}
	r.m[k] = e
	return nil
}

func (r *Repo) Delete(ctx context.Context, rel edgerepo.Relation, clubID domain.ClubID, userID domain.UserID) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	k := key{relation: rel, clubID: clubID, userID: userID}
	if _, ok := r.m[k]; !ok {
		return edgerepo.ErrNotFound
	}
	delete(r.m, k)
	return nil
}

// ListByRelation returns all edges of a relation ordered by CreatedAt descending.
// The memory activity repository reads membership rows through it.
func (r *Repo) ListByRelation(rel edgerepo.Relation) []edgerepo.Edge {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]edgerepo.Edge, 0)
	for k, v := range r.m {
		if k.relation == rel {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
