// Package mutation performs optimistic join, leave, follow and unfollow actions
// against the backend of record.
package mutation

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/Overland-East-Bay/club-portal-api/internal/app/status"
	"github.com/Overland-East-Bay/club-portal-api/internal/domain"
	"github.com/Overland-East-Bay/club-portal-api/internal/platform/inflight"
	"github.com/Overland-East-Bay/club-portal-api/internal/platform/logger"
	"github.com/Overland-East-Bay/club-portal-api/internal/platform/metrics"
	clockport "github.com/Overland-East-Bay/club-portal-api/internal/ports/out/clock"
	"github.com/Overland-East-Bay/club-portal-api/internal/ports/out/edgerepo"
	"github.com/Overland-East-Bay/club-portal-api/internal/ports/out/noticesink"
)

const DefaultWriteTimeout = 10 * time.Second

var tracer = otel.Tracer("github.com/Overland-East-Bay/club-portal-api/internal/app/mutation")

// Deps are shared by every view session's executor.
type Deps struct {
	Edges edgerepo.Repository
	// Guard is keyed per (kind, user, club). Sharing one guard across sessions
	// also collapses double submits from two tabs of the same viewer.
	Guard   inflight.Guard
	Sink    noticesink.Sink
	Clock   clockport.Clock
	Logger  logger.Logger
	Metrics *metrics.Manager

	// WriteTimeout bounds the backend write. Zero means DefaultWriteTimeout.
	WriteTimeout time.Duration
	NewEdgeID    func() string
}

// Executor runs mutations for one view session. The session's status is
// flipped before the backend write and rolled back if the write fails.
type Executor struct {
	d    Deps
	view *status.Resolver
	log  logger.Logger
}

func NewExecutor(d Deps, view *status.Resolver) *Executor {
	if d.Guard == nil {
		d.Guard = inflight.NewGuard()
	}
	if d.Logger == nil {
		d.Logger = logger.Nop()
	}
	if d.WriteTimeout <= 0 {
		d.WriteTimeout = DefaultWriteTimeout
	}
	if d.NewEdgeID == nil {
		d.NewEdgeID = uuid.NewString
	}
	return &Executor{d: d, view: view, log: d.Logger.Named("mutation")}
}

func (e *Executor) Join(ctx context.Context, viewer *domain.UserIdentity, clubID domain.ClubID) Outcome {
	return e.Run(ctx, KindJoin, viewer, clubID)
}

func (e *Executor) Leave(ctx context.Context, viewer *domain.UserIdentity, clubID domain.ClubID) Outcome {
	return e.Run(ctx, KindLeave, viewer, clubID)
}

func (e *Executor) Follow(ctx context.Context, viewer *domain.UserIdentity, clubID domain.ClubID) Outcome {
	return e.Run(ctx, KindFollow, viewer, clubID)
}

func (e *Executor) Unfollow(ctx context.Context, viewer *domain.UserIdentity, clubID domain.ClubID) Outcome {
	return e.Run(ctx, KindUnfollow, viewer, clubID)
}

// Run executes one mutation of kind k. It always returns a terminal outcome.
func (e *Executor) Run(ctx context.Context, k Kind, viewer *domain.UserIdentity, clubID domain.ClubID) Outcome {
	start := e.now()
	out := Outcome{Kind: k, ClubID: clubID}

	if !viewer.Authenticated() {
		out.Result, out.Code, out.Err = ResultFailure, CodeUnauthenticated, ErrUnauthenticated
		out.Notice = noticeFor(out)
		e.d.Metrics.RecordMutation(string(k), string(out.Result), string(out.Code), 0)
		return out
	}
	if clubID == "" {
		out.Result, out.Code, out.Err = ResultFailure, CodeUnknown, ErrMissingClub
		out.Status, _ = e.view.Snapshot()
		return e.finish(ctx, viewer, out, start)
	}

	key := string(k) + "|" + string(viewer.ID) + "|" + string(clubID)
	if !e.d.Guard.TryAcquire(ctx, key) {
		out.Result, out.Code = ResultIgnored, CodeAlreadyPending
		out.Status, _ = e.view.Snapshot()
		e.log.Debug(ctx, "mutation already pending", logger.String("kind", string(k)), logger.String("club_id", string(clubID)))
		e.d.Metrics.RecordMutation(string(k), string(out.Result), string(out.Code), 0)
		return out
	}
	e.d.Metrics.SetMutationsInFlight(e.d.Guard.Size())
	defer func() {
		e.d.Guard.Release(ctx, key)
		e.d.Metrics.SetMutationsInFlight(e.d.Guard.Size())
	}()

	field, desired := k.field(), k.inserts()
	prev := e.view.Begin(viewer.ID, clubID, field, desired)

	err := e.write(ctx, k, viewer, clubID)
	code := classify(k, err)
	ok := err == nil || code == CodeAlreadyInState
	e.view.Settle(viewer.ID, clubID, field, desired, prev, ok)

	if ok {
		out.Result, out.Code = ResultSuccess, code
		out.Status, _ = e.view.Refresh(ctx, viewer, clubID)
	} else {
		out.Result, out.Code, out.Err = ResultFailure, code, err
		out.Status, _ = e.view.Snapshot()
	}
	return e.finish(ctx, viewer, out, start)
}

// write runs detached from the caller: a started mutation is never cancelled
// halfway, only bounded by WriteTimeout.
func (e *Executor) write(ctx context.Context, k Kind, viewer *domain.UserIdentity, clubID domain.ClubID) error {
	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.d.WriteTimeout)
	defer cancel()

	wctx, span := tracer.Start(wctx, "mutation."+string(k))
	span.SetAttributes(attribute.String("club.id", string(clubID)))
	defer span.End()

	var err error
	if k.inserts() {
		err = e.d.Edges.Insert(wctx, edgerepo.Edge{
			ID:        e.d.NewEdgeID(),
			Relation:  k.relation(),
			ClubID:    clubID,
			UserID:    viewer.ID,
			Name:      viewer.Name,
			Email:     viewer.Email,
			CreatedAt: e.now(),
		})
	} else {
		err = e.d.Edges.Delete(wctx, k.relation(), clubID, viewer.ID)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (e *Executor) finish(ctx context.Context, viewer *domain.UserIdentity, out Outcome, start time.Time) Outcome {
	fields := []logger.Field{
		logger.String("kind", string(out.Kind)),
		logger.String("club_id", string(out.ClubID)),
		logger.String("result", string(out.Result)),
	}
	if out.Code != CodeNone {
		fields = append(fields, logger.String("code", string(out.Code)))
	}
	if out.Err != nil {
		e.log.Warn(ctx, "mutation failed", append(fields, logger.Error(out.Err))...)
	} else {
		e.log.Info(ctx, "mutation settled", fields...)
	}
	e.d.Metrics.RecordMutation(string(out.Kind), string(out.Result), string(out.Code), e.now().Sub(start))

	out.Notice = noticeFor(out)
	if out.Notice == nil {
		return out
	}
	out.Notice.UserID = viewer.ID
	out.Notice.ClubID = out.ClubID
	out.Notice.CreatedAt = e.now()
	if e.d.Sink != nil {
		if err := e.d.Sink.Notify(context.WithoutCancel(ctx), *out.Notice); err != nil {
			e.log.Warn(ctx, "notice delivery failed", logger.Error(err))
		}
	}
	return out
}

func (e *Executor) now() time.Time {
	if e.d.Clock == nil {
		return time.Now().UTC()
	}
	return e.d.Clock.Now()
}
