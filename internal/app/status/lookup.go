package status

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/Overland-East-Bay/club-portal-api/internal/domain"
	"github.com/Overland-East-Bay/club-portal-api/internal/platform/logger"
	"github.com/Overland-East-Bay/club-portal-api/internal/platform/metrics"
	"github.com/Overland-East-Bay/club-portal-api/internal/ports/out/edgerepo"
)

const DefaultLookupTimeout = 5 * time.Second

var tracer = otel.Tracer("github.com/Overland-East-Bay/club-portal-api/internal/app/status")

// Lookup performs the two edge existence reads for a (user, club) pair.
// Identical lookups in flight at the same time share one pair of reads.
// A Lookup is shared by every view session.
type Lookup struct {
	edges   edgerepo.Repository
	log     logger.Logger
	metrics *metrics.Manager
	timeout time.Duration

	flights singleflight.Group
}

type LookupOption func(*Lookup)

func WithLogger(l logger.Logger) LookupOption {
	return func(lk *Lookup) {
		if l != nil {
			lk.log = l
		}
	}
}

func WithMetrics(m *metrics.Manager) LookupOption {
	return func(lk *Lookup) { lk.metrics = m }
}

// WithLookupTimeout bounds each shared flight. Non-positive values are ignored.
func WithLookupTimeout(d time.Duration) LookupOption {
	return func(lk *Lookup) {
		if d > 0 {
			lk.timeout = d
		}
	}
}

func NewLookup(edges edgerepo.Repository, opts ...LookupOption) *Lookup {
	lk := &Lookup{
		edges:   edges,
		log:     logger.Nop(),
		timeout: DefaultLookupTimeout,
	}
	for _, opt := range opts {
		opt(lk)
	}
	lk.log = lk.log.Named("status")
	return lk
}

// result holds one value per relation; nil means the read failed.
type result struct {
	member *bool
	follow *bool
}

func flightKey(user domain.UserID, club domain.ClubID) string {
	return string(user) + "|" + string(club)
}

// Forget drops the shared flight for (user, club) so the next fetch issues fresh reads.
func (lk *Lookup) Forget(user domain.UserID, club domain.ClubID) {
	lk.flights.Forget(flightKey(user, club))
}

func (lk *Lookup) fetch(ctx context.Context, user domain.UserID, club domain.ClubID) result {
	v, _, shared := lk.flights.Do(flightKey(user, club), func() (any, error) {
		// The flight outlives any single caller that joins it.
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), lk.timeout)
		defer cancel()
		return lk.read(fctx, user, club), nil
	})
	if shared {
		lk.log.Debug(ctx, "status lookup shared", logger.String("club_id", string(club)))
	}
	return v.(result)
}

func (lk *Lookup) read(ctx context.Context, user domain.UserID, club domain.ClubID) result {
	ctx, span := tracer.Start(ctx, "status.lookup")
	span.SetAttributes(attribute.String("club.id", string(club)))
	defer span.End()

	var (
		res result
		g   errgroup.Group
	)
	// Neither read cancels the other; each records its own outcome.
	g.Go(func() error {
		res.member = lk.exists(ctx, edgerepo.RelationMembership, user, club)
		return nil
	})
	g.Go(func() error {
		res.follow = lk.exists(ctx, edgerepo.RelationFollow, user, club)
		return nil
	})
	_ = g.Wait()
	return res
}

func (lk *Lookup) exists(ctx context.Context, rel edgerepo.Relation, user domain.UserID, club domain.ClubID) *bool {
	ok, err := lk.edges.Exists(ctx, rel, club, user)
	if err != nil {
		lk.metrics.RecordStatusLookup(string(rel), "error")
		lk.log.Warn(ctx, "status lookup failed",
			logger.String("relation", string(rel)),
			logger.String("club_id", string(club)),
			logger.Error(err),
		)
		return nil
	}
	if ok {
		lk.metrics.RecordStatusLookup(string(rel), "found")
	} else {
		lk.metrics.RecordStatusLookup(string(rel), "absent")
	}
	return &ok
}
