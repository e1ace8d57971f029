// Package status derives membership and follow status for the viewer of a club.
package status

import (
	"context"
	"sync"

	"github.com/Overland-East-Bay/club-portal-api/internal/domain"
)

// Field names one half of a Status.
type Field int

const (
	FieldMembership Field = iota
	FieldFollow
)

func (f Field) String() string {
	if f == FieldFollow {
		return "follow"
	}
	return "membership"
}

type target struct {
	user domain.UserID
	club domain.ClubID
}

type pendingKey struct {
	target
	field Field
}

// Resolver owns the status of one view session.
//
// Every Resolve records itself as the latest initiated lookup. A response is
// applied only while it is still the latest and its (user, club) is still the
// current target. Fields with a mutation in flight keep their optimistic value;
// starting a mutation does not invalidate lookups.
type Resolver struct {
	lookup *Lookup

	mu      sync.Mutex
	gen     uint64
	current target
	status  domain.Status
	known   bool
	pending map[pendingKey]int
}

func NewResolver(lookup *Lookup) *Resolver {
	return &Resolver{
		lookup:  lookup,
		pending: make(map[pendingKey]int),
	}
}

// Snapshot returns the current status and whether it was ever resolved for the
// current target.
func (r *Resolver) Snapshot() (domain.Status, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status, r.known
}

// Target returns the (user, club) pair the session currently shows.
func (r *Resolver) Target() (domain.UserID, domain.ClubID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current.user, r.current.club
}

// Resolve reads both edges for (viewer, clubID) and applies them if no newer
// lookup or mutation started meanwhile. Without a viewer or club id it is a
// no-op and returns the prior state.
func (r *Resolver) Resolve(ctx context.Context, viewer *domain.UserIdentity, clubID domain.ClubID) (domain.Status, bool) {
	if !viewer.Authenticated() || clubID == "" {
		return r.Snapshot()
	}
	t := target{user: viewer.ID, club: clubID}

	r.mu.Lock()
	r.retarget(t)
	r.gen++
	gen := r.gen
	r.mu.Unlock()

	res := r.lookup.fetch(ctx, t.user, t.club)

	r.mu.Lock()
	defer r.mu.Unlock()
	if gen != r.gen || r.current != t {
		r.lookup.metrics.RecordStaleStatus()
		return r.status, r.known
	}
	if res.member != nil && r.pending[pendingKey{t, FieldMembership}] == 0 {
		r.status.IsMember = *res.member
		r.known = true
	}
	if res.follow != nil && r.pending[pendingKey{t, FieldFollow}] == 0 {
		r.status.IsFollowing = *res.follow
		r.known = true
	}
	return r.status, r.known
}

// Refresh is Resolve with fresh reads: any shared flight for the pair is
// dropped first.
func (r *Resolver) Refresh(ctx context.Context, viewer *domain.UserIdentity, clubID domain.ClubID) (domain.Status, bool) {
	if viewer.Authenticated() && clubID != "" {
		r.lookup.Forget(viewer.ID, clubID)
	}
	return r.Resolve(ctx, viewer, clubID)
}

// Begin marks field of (user, club) as pending and sets it to desired. It
// returns the value before the flip. Lookups already in flight stay valid: they
// still fill the other field, and this one once the mutation has settled.
func (r *Resolver) Begin(user domain.UserID, clubID domain.ClubID, field Field, desired bool) bool {
	t := target{user: user, club: clubID}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.retarget(t)
	prev := r.get(field)
	r.set(field, desired)
	r.pending[pendingKey{t, field}]++
	return prev
}

// Settle ends a mutation started with Begin. On failure the field is restored to
// prev, but only if the session still shows (user, club) and the field still
// holds the value this mutation set.
func (r *Resolver) Settle(user domain.UserID, clubID domain.ClubID, field Field, desired, prev, ok bool) {
	t := target{user: user, club: clubID}
	pk := pendingKey{t, field}

	r.mu.Lock()
	defer r.mu.Unlock()
	if n := r.pending[pk]; n <= 1 {
		delete(r.pending, pk)
	} else {
		r.pending[pk] = n - 1
	}
	if ok || r.current != t {
		return
	}
	if r.get(field) == desired {
		r.set(field, prev)
	}
}

// Pending reports whether a mutation on field of (user, club) is in flight.
func (r *Resolver) Pending(user domain.UserID, clubID domain.ClubID, field Field) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pending[pendingKey{target{user, clubID}, field}] > 0
}

// retarget switches the session to t, dropping state that belonged to the
// previous pair. Callers hold the lock.
func (r *Resolver) retarget(t target) {
	if r.current == t {
		return
	}
	r.current = t
	r.status = domain.Status{}
	r.known = false
}

func (r *Resolver) get(f Field) bool {
	if f == FieldFollow {
		return r.status.IsFollowing
	}
	return r.status.IsMember
}

func (r *Resolver) set(f Field, v bool) {
	if f == FieldFollow {
		r.status.IsFollowing = v
		return
	}
	r.status.IsMember = v
}
