package noticesink

import (
	"context"
	"sync"

	"github.com/Overland-East-Bay/club-portal-api/internal/ports/out/noticesink"
)

// Recorder is an in-memory noticesink.Sink that keeps every notice.
// It is safe for concurrent use.
type Recorder struct {
	mu      sync.Mutex
	notices []noticesink.Notice
	err     error
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

// FailWith makes subsequent Notify calls return err (after recording).
func (r *Recorder) FailWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

func (r *Recorder) Notify(ctx context.Context, n noticesink.Notice) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
	return r.err
}

func (r *Recorder) Notices() []noticesink.Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]noticesink.Notice(nil), r.notices...)
}
