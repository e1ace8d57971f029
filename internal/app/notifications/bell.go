package notifications

import (
	"context"
	"sync"

	"github.com/Overland-East-Bay/club-portal-api/internal/domain"
)

type State string

const (
	StateLoading   State = "loading"
	StateEmpty     State = "empty"
	StatePopulated State = "populated"
)

const EmptyText = "No new notifications"

// Heading returns the bell heading for a feed kind.
func Heading(kind domain.FeedKind) string {
	if kind == domain.FeedKindMemberJoined {
		return "Recent Members"
	}
	return "Recent Announcements"
}

// Snapshot is what the bell shows at one point in time.
type Snapshot struct {
	State   State
	Feed    domain.Feed
	Count   int
	Badge   bool
	Heading string
}

// Bell keeps one view session's feed. A refresh superseded by a newer one is
// discarded when it completes.
type Bell struct {
	agg *Aggregator

	mu   sync.Mutex
	gen  uint64
	snap Snapshot
}

func NewBell(agg *Aggregator) *Bell {
	return &Bell{agg: agg, snap: Snapshot{State: StateLoading, Heading: Heading(domain.FeedKindAnnouncementPosted)}}
}

func (b *Bell) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snap
}

// Refresh fetches the feed for role and replaces the previous one.
func (b *Bell) Refresh(ctx context.Context, role domain.Role) Snapshot {
	kind := domain.FeedKindForRole(role)

	b.mu.Lock()
	b.gen++
	gen := b.gen
	b.snap = Snapshot{State: StateLoading, Feed: domain.Feed{Kind: kind}, Heading: Heading(kind)}
	b.mu.Unlock()

	feed := b.agg.FetchFeed(ctx, role)

	b.mu.Lock()
	defer b.mu.Unlock()
	if gen != b.gen {
		return b.snap
	}
	b.snap = snapshotOf(feed)
	return b.snap
}

func snapshotOf(feed domain.Feed) Snapshot {
	s := Snapshot{
		State:   StateEmpty,
		Feed:    feed,
		Count:   feed.Len(),
		Heading: Heading(feed.Kind),
	}
	if s.Count > 0 {
		s.State = StatePopulated
		s.Badge = true
	}
	return s
}
