package mutation

import (
	"context"
	"sync"

	memedgerepo "github.com/Overland-East-Bay/club-portal-api/internal/adapters/memory/edgerepo"
	"github.com/Overland-East-Bay/club-portal-api/internal/domain"
	"github.com/Overland-East-Bay/club-portal-api/internal/ports/out/edgerepo"
)

// countingEdges wraps the memory repository, counts calls and can hold reads
// or hold and fail writes.
type countingEdges struct {
	*memedgerepo.Repo

	mu        sync.Mutex
	inserts   int
	deletes   int
	reads     int
	writeErr  error
	gate      chan struct{}
	writing   chan struct{}
	readGate  chan struct{}
	reading   chan struct{}
	sawCancel bool
}

func newCountingEdges() *countingEdges {
	return &countingEdges{
		Repo:    memedgerepo.NewRepo(),
		writing: make(chan struct{}, 16),
		reading: make(chan struct{}, 16),
	}
}

func (c *countingEdges) holdWrites() chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gate = make(chan struct{})
	return c.gate
}

func (c *countingEdges) holdReads() chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.readGate = make(chan struct{})
	return c.readGate
}

func (c *countingEdges) failWrites(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writeErr = err
}

func (c *countingEdges) counts() (inserts, deletes, reads int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inserts, c.deletes, c.reads
}

func (c *countingEdges) before(ctx context.Context) error {
	c.mu.Lock()
	gate, err := c.gate, c.writeErr
	if ctx.Err() != nil {
		c.sawCancel = true
	}
	c.mu.Unlock()

	c.writing <- struct{}{}
	if gate != nil {
		<-gate
	}
	return err
}

func (c *countingEdges) Exists(ctx context.Context, rel edgerepo.Relation, clubID domain.ClubID, userID domain.UserID) (bool, error) {
	c.mu.Lock()
	c.reads++
	gate := c.readGate
	c.mu.Unlock()

	if gate != nil {
		c.reading <- struct{}{}
		<-gate
	}
	return c.Repo.Exists(ctx, rel, clubID, userID)
}

func (c *countingEdges) Insert(ctx context.Context, e edgerepo.Edge) error {
	c.mu.Lock()
	c.inserts++
	c.mu.Unlock()
	if err := c.before(ctx); err != nil {
		return err
	}
	return c.Repo.Insert(ctx, e)
}

func (c *countingEdges) Delete(ctx context.Context, rel edgerepo.Relation, clubID domain.ClubID, userID domain.UserID) error {
	c.mu.Lock()
	c.deletes++
	c.mu.Unlock()
	if err := c.before(ctx); err != nil {
		return err
	}
	return c.Repo.Delete(ctx, rel, clubID, userID)
}
