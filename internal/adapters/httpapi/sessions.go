package httpapi

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Overland-East-Bay/club-portal-api/internal/app/mutation"
	"github.com/Overland-East-Bay/club-portal-api/internal/app/notifications"
	"github.com/Overland-East-Bay/club-portal-api/internal/app/status"
	"github.com/Overland-East-Bay/club-portal-api/internal/domain"
	"github.com/Overland-East-Bay/club-portal-api/internal/platform/metrics"
)

const DefaultSessionCacheSize = 10000

// Session is the server-side view state of one viewer: the status shown on the
// club page, the mutations driving it and the notification bell.
type Session struct {
	Status    *status.Resolver
	Mutations *mutation.Executor
	Bell      *notifications.Bell
}

// Sessions keeps view sessions per viewer in a bounded LRU. An evicted session
// only loses cached view state; the next request rebuilds it from the backend.
type Sessions struct {
	lookup  *status.Lookup
	agg     *notifications.Aggregator
	deps    mutation.Deps
	metrics *metrics.Manager

	mu    sync.Mutex
	cache *lru.Cache[domain.UserID, *Session]
	anon  *Session
}

func NewSessions(size int, lookup *status.Lookup, agg *notifications.Aggregator, deps mutation.Deps, m *metrics.Manager) (*Sessions, error) {
	if size <= 0 {
		size = DefaultSessionCacheSize
	}
	cache, err := lru.New[domain.UserID, *Session](size)
	if err != nil {
		return nil, fmt.Errorf("session cache: %w", err)
	}
	s := &Sessions{
		lookup:  lookup,
		agg:     agg,
		deps:    deps,
		metrics: m,
		cache:   cache,
	}
	s.anon = s.newSession()
	return s, nil
}

// For returns the session of viewer, creating it on first use. Anonymous
// viewers share one session that is never resolved.
func (s *Sessions) For(viewer *domain.UserIdentity) *Session {
	if !viewer.Authenticated() {
		return s.anon
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.cache.Get(viewer.ID); ok {
		return sess
	}
	sess := s.newSession()
	s.cache.Add(viewer.ID, sess)
	s.metrics.SetViewSessions(s.cache.Len())
	return sess
}

func (s *Sessions) Len() int {
	return s.cache.Len()
}

func (s *Sessions) newSession() *Session {
	view := status.NewResolver(s.lookup)
	return &Session{
		Status:    view,
		Mutations: mutation.NewExecutor(s.deps, view),
		Bell:      notifications.NewBell(s.agg),
	}
}
