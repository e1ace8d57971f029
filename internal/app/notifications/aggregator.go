// Package notifications builds the role-dependent activity feed behind the bell.
package notifications

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Overland-East-Bay/club-portal-api/internal/domain"
	"github.com/Overland-East-Bay/club-portal-api/internal/platform/logger"
	"github.com/Overland-East-Bay/club-portal-api/internal/platform/metrics"
	"github.com/Overland-East-Bay/club-portal-api/internal/ports/out/activityrepo"
)

// FeedLimit is the number of most recent items a feed holds.
const FeedLimit = 10

var tracer = otel.Tracer("github.com/Overland-East-Bay/club-portal-api/internal/app/notifications")

type Aggregator struct {
	repo    activityrepo.Repository
	log     logger.Logger
	metrics *metrics.Manager
}

type Option func(*Aggregator)

func WithLogger(l logger.Logger) Option {
	return func(a *Aggregator) {
		if l != nil {
			a.log = l
		}
	}
}

func WithMetrics(m *metrics.Manager) Option {
	return func(a *Aggregator) { a.metrics = m }
}

func NewAggregator(repo activityrepo.Repository, opts ...Option) *Aggregator {
	a := &Aggregator{repo: repo, log: logger.Nop()}
	for _, opt := range opts {
		opt(a)
	}
	a.log = a.log.Named("notifications")
	return a
}

// FetchFeed returns the newest FeedLimit items of the branch selected by role:
// membership events for organizers, announcements for everyone else. A read
// failure yields an empty feed of the selected kind.
func (a *Aggregator) FetchFeed(ctx context.Context, role domain.Role) domain.Feed {
	kind := domain.FeedKindForRole(role)
	ctx, span := tracer.Start(ctx, "notifications.fetch_feed")
	span.SetAttributes(attribute.String("feed.kind", string(kind)))
	defer span.End()

	var (
		feed domain.Feed
		err  error
	)
	switch kind {
	case domain.FeedKindMemberJoined:
		feed, err = a.memberFeed(ctx)
	default:
		feed, err = a.announcementFeed(ctx)
	}
	if err != nil {
		span.RecordError(err)
		a.metrics.RecordFeedFetch(string(kind), "error")
		a.log.Error(ctx, "feed read failed", logger.String("kind", string(kind)), logger.Error(err))
		return domain.Feed{Kind: kind, Items: []domain.FeedItem{}}
	}
	a.metrics.RecordFeedFetch(string(kind), "ok")
	return feed
}

func (a *Aggregator) memberFeed(ctx context.Context) (domain.Feed, error) {
	rows, err := a.repo.RecentMemberJoins(ctx, FeedLimit)
	if err != nil {
		return domain.Feed{}, err
	}
	items := make([]domain.MemberJoined, 0, len(rows))
	for _, r := range rows {
		items = append(items, domain.MemberJoined{
			ID:         r.ID,
			MemberName: r.Name,
			ClubName:   r.ClubName,
			JoinedAt:   r.JoinedAt,
		})
	}
	return domain.NewMemberFeed(capItems(items)), nil
}

func (a *Aggregator) announcementFeed(ctx context.Context) (domain.Feed, error) {
	rows, err := a.repo.RecentAnnouncements(ctx, FeedLimit)
	if err != nil {
		return domain.Feed{}, err
	}
	items := make([]domain.AnnouncementPosted, 0, len(rows))
	for _, r := range rows {
		items = append(items, domain.AnnouncementPosted{
			ID:        r.ID,
			Title:     r.Title,
			ClubName:  r.ClubName,
			CreatedAt: r.CreatedAt,
		})
	}
	return domain.NewAnnouncementFeed(capItems(items)), nil
}

// capItems enforces FeedLimit even if a backend ignores the limit.
func capItems[T any](items []T) []T {
	if len(items) > FeedLimit {
		return items[:FeedLimit]
	}
	return items
}
