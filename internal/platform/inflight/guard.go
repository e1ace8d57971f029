// Package inflight tracks keys of operations that are currently running.
package inflight

import (
	"context"
	"sync"
	"sync/atomic"
)

// Guard admits at most one holder per key at a time.
type Guard interface {
	// TryAcquire atomically checks whether key is held and takes it if not.
	// Returns true if the caller now holds key, false if it was already held.
	TryAcquire(ctx context.Context, key string) bool

	// Release frees key so it can be acquired again. Releasing a free key is a no-op.
	Release(ctx context.Context, key string)

	// Size returns the number of keys currently held.
	Size() int64
}

type memoryGuard struct {
	mu   sync.Mutex
	held map[string]struct{}
	size atomic.Int64
}

// NewGuard creates an in-memory guard.
func NewGuard() Guard {
	return &memoryGuard{held: make(map[string]struct{})}
}

func (g *memoryGuard) TryAcquire(_ context.Context, key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, exists := g.held[key]; exists {
		return false
	}
	g.held[key] = struct{}{}
	g.size.Add(1)
	return true
}

func (g *memoryGuard) Release(_ context.Context, key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, exists := g.held[key]; exists {
		delete(g.held, key)
		g.size.Add(-1)
	}
}

func (g *memoryGuard) Size() int64 {
	return g.size.Load()
}
