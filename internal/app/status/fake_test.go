package status

import (
	"context"
	"sync"

	"github.com/Overland-East-Bay/club-portal-api/internal/domain"
	"github.com/Overland-East-Bay/club-portal-api/internal/ports/out/edgerepo"
)

// fakeEdges answers Exists from a fixed set and can hold reads for one club
// until released.
type fakeEdges struct {
	mu      sync.Mutex
	rows    map[string]bool
	errs    map[edgerepo.Relation]error
	gates   map[domain.ClubID]chan struct{}
	entered chan domain.ClubID
	calls   int
}

func newFakeEdges() *fakeEdges {
	return &fakeEdges{
		rows:    make(map[string]bool),
		errs:    make(map[edgerepo.Relation]error),
		gates:   make(map[domain.ClubID]chan struct{}),
		entered: make(chan domain.ClubID, 64),
	}
}

func rowKey(rel edgerepo.Relation, club domain.ClubID, user domain.UserID) string {
	return string(rel) + "|" + string(club) + "|" + string(user)
}

func (f *fakeEdges) put(rel edgerepo.Relation, club domain.ClubID, user domain.UserID, v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[rowKey(rel, club, user)] = v
}

func (f *fakeEdges) failWith(rel edgerepo.Relation, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[rel] = err
}

func (f *fakeEdges) hold(club domain.ClubID) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan struct{})
	f.gates[club] = ch
	return ch
}

// unhold lets new reads for club through; reads already waiting stay held.
func (f *fakeEdges) unhold(club domain.ClubID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.gates, club)
}

func (f *fakeEdges) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeEdges) Exists(ctx context.Context, rel edgerepo.Relation, club domain.ClubID, user domain.UserID) (bool, error) {
	// The answer is taken when the read starts, so a held read returns the
	// backend state as of its start.
	f.mu.Lock()
	f.calls++
	gate := f.gates[club]
	v, err := f.rows[rowKey(rel, club, user)], f.errs[rel]
	f.mu.Unlock()

	f.entered <- club
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}
	if err != nil {
		return false, err
	}
	return v, nil
}

func (f *fakeEdges) Insert(context.Context, edgerepo.Edge) error { return nil }

func (f *fakeEdges) Delete(context.Context, edgerepo.Relation, domain.ClubID, domain.UserID) error {
	return nil
}
