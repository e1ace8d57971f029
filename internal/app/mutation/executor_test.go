package mutation

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	memclock "github.com/Overland-East-Bay/club-portal-api/internal/adapters/memory/clock"
	memnoticesink "github.com/Overland-East-Bay/club-portal-api/internal/adapters/memory/noticesink"
	"github.com/Overland-East-Bay/club-portal-api/internal/app/status"
	"github.com/Overland-East-Bay/club-portal-api/internal/domain"
	"github.com/Overland-East-Bay/club-portal-api/internal/platform/metrics"
	"github.com/Overland-East-Bay/club-portal-api/internal/ports/out/edgerepo"
	"github.com/Overland-East-Bay/club-portal-api/internal/ports/out/noticesink"
)

var viewer = &domain.UserIdentity{ID: "sub-1", Role: domain.RoleMember, Name: "Ada Lovelace", Email: "ada@example.com"}

type harness struct {
	edges *countingEdges
	view  *status.Resolver
	sink  *memnoticesink.Recorder
	exec  *Executor
}

func newHarness(t *testing.T) harness {
	t.Helper()
	edges := newCountingEdges()
	view := status.NewResolver(status.NewLookup(edges))
	sink := memnoticesink.NewRecorder()
	exec := NewExecutor(Deps{
		Edges: edges,
		Sink:  sink,
		Clock: memclock.NewManualClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)),
	}, view)
	return harness{edges: edges, view: view, sink: sink, exec: exec}
}

func waitWriting(t *testing.T, c *countingEdges) {
	t.Helper()
	select {
	case <-c.writing:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for backend write")
	}
}

func waitReading(t *testing.T, c *countingEdges, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-c.reading:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for backend read %d/%d", i+1, n)
		}
	}
}

func TestJoin_Unauthenticated_NoBackendCalls(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	out := h.exec.Join(context.Background(), nil, "club-1")

	if out.Result != ResultFailure || out.Code != CodeUnauthenticated {
		t.Fatalf("outcome=%+v, want Unauthenticated failure", out)
	}
	if out.Notice == nil || out.Notice.Title != "Authentication required" || out.Notice.Description != "Please log in to join clubs" {
		t.Fatalf("notice=%+v", out.Notice)
	}
	if ins, del, reads := h.edges.counts(); ins+del+reads != 0 {
		t.Fatalf("backend calls inserts=%d deletes=%d reads=%d, want 0", ins, del, reads)
	}
	if st, known := h.view.Snapshot(); known || st != (domain.Status{}) {
		t.Fatalf("status changed: %+v known=%v", st, known)
	}
	if n := len(h.sink.Notices()); n != 0 {
		t.Fatalf("sink got %d notices for anonymous viewer, want 0", n)
	}
}

func TestJoin_DoubleSubmit_SingleInsert(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	gate := h.edges.holdWrites()

	first := make(chan Outcome, 1)
	go func() { first <- h.exec.Join(context.Background(), viewer, "club-1") }()
	waitWriting(t, h.edges)

	// Optimistic flip is visible before the write resolves.
	if st, _ := h.view.Snapshot(); !st.IsMember {
		t.Fatalf("status during write=%+v, want member", st)
	}

	second := h.exec.Join(context.Background(), viewer, "club-1")
	if second.Result != ResultIgnored || second.Code != CodeAlreadyPending || second.Notice != nil {
		t.Fatalf("second outcome=%+v, want ignored/AlreadyPending", second)
	}

	close(gate)
	out := <-first
	if !out.Succeeded() || !out.Status.IsMember {
		t.Fatalf("first outcome=%+v", out)
	}
	if ins, _, _ := h.edges.counts(); ins != 1 {
		t.Fatalf("inserts=%d, want 1", ins)
	}
}

func TestJoinThenLeave_RoundTrip(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()

	if out := h.exec.Join(ctx, viewer, "club-1"); !out.Succeeded() || out.Notice.Description != "You have joined the club!" {
		t.Fatalf("join outcome=%+v", out)
	}
	out := h.exec.Leave(ctx, viewer, "club-1")
	if !out.Succeeded() || out.Status.IsMember {
		t.Fatalf("leave outcome=%+v", out)
	}
	if out.Notice.Description != "You have left the club" {
		t.Fatalf("leave notice=%+v", out.Notice)
	}
	if ok, _ := h.edges.Repo.Exists(ctx, edgerepo.RelationMembership, "club-1", "sub-1"); ok {
		t.Fatalf("membership row still present")
	}

	notices := h.sink.Notices()
	if len(notices) != 2 || notices[0].UserID != "sub-1" || notices[1].ClubID != "club-1" {
		t.Fatalf("notices=%+v", notices)
	}
}

func TestFollow_FailureRollsBack(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.edges.failWrites(fmt.Errorf("%w: connection refused", edgerepo.ErrTransport))

	out := h.exec.Follow(context.Background(), viewer, "club-1")
	if out.Result != ResultFailure || out.Code != CodeTransportFailure {
		t.Fatalf("outcome=%+v, want TransportFailure", out)
	}
	if out.Status.IsFollowing {
		t.Fatalf("isFollowing not rolled back: %+v", out.Status)
	}
	if st, _ := h.view.Snapshot(); st.IsFollowing {
		t.Fatalf("session status not rolled back: %+v", st)
	}
	if out.Notice == nil || out.Notice.Variant != noticesink.VariantDestructive || out.Notice.Title != "Error" {
		t.Fatalf("notice=%+v", out.Notice)
	}
}

func TestLeaveAndUnfollow_FailureRestoresPriorTrue(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()
	for _, rel := range []edgerepo.Relation{edgerepo.RelationMembership, edgerepo.RelationFollow} {
		if err := h.edges.Repo.Insert(ctx, edgerepo.Edge{ID: string(rel), Relation: rel, ClubID: "club-1", UserID: "sub-1"}); err != nil {
			t.Fatalf("seed %s: %v", rel, err)
		}
	}
	if st, _ := h.view.Resolve(ctx, viewer, "club-1"); st != (domain.Status{IsMember: true, IsFollowing: true}) {
		t.Fatalf("initial status=%+v", st)
	}
	h.edges.failWrites(fmt.Errorf("%w: connection refused", edgerepo.ErrTransport))

	out := h.exec.Leave(ctx, viewer, "club-1")
	if out.Result != ResultFailure || !out.Status.IsMember {
		t.Fatalf("leave outcome=%+v, want failure with membership restored", out)
	}
	out = h.exec.Unfollow(ctx, viewer, "club-1")
	if out.Result != ResultFailure || !out.Status.IsFollowing {
		t.Fatalf("unfollow outcome=%+v, want failure with follow restored", out)
	}
	if st, _ := h.view.Snapshot(); st != (domain.Status{IsMember: true, IsFollowing: true}) {
		t.Fatalf("session status=%+v, want both restored", st)
	}
	if h.view.Pending("sub-1", "club-1", status.FieldMembership) || h.view.Pending("sub-1", "club-1", status.FieldFollow) {
		t.Fatalf("fields still pending after failures")
	}
}

func TestFollow_FailureKeepsConcurrentPageLoad(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()
	if err := h.edges.Repo.Insert(ctx, edgerepo.Edge{ID: "m1", Relation: edgerepo.RelationMembership, ClubID: "club-1", UserID: "sub-1"}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	gate := h.edges.holdReads()
	loaded := make(chan struct{})
	go func() {
		defer close(loaded)
		h.view.Resolve(ctx, viewer, "club-1")
	}()
	waitReading(t, h.edges, 2)

	h.edges.failWrites(fmt.Errorf("%w: connection refused", edgerepo.ErrTransport))
	if out := h.exec.Follow(ctx, viewer, "club-1"); out.Result != ResultFailure {
		t.Fatalf("follow outcome=%+v, want failure", out)
	}

	close(gate)
	<-loaded

	st, known := h.view.Snapshot()
	if !known || st != (domain.Status{IsMember: true}) {
		t.Fatalf("status=%+v known=%v, want page load applied with membership", st, known)
	}
}

func TestFollow_AlreadyFollowingIsSuccess(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()
	if err := h.edges.Repo.Insert(ctx, edgerepo.Edge{ID: "e1", Relation: edgerepo.RelationFollow, ClubID: "club-1", UserID: "sub-1"}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	out := h.exec.Follow(ctx, viewer, "club-1")
	if !out.Succeeded() || out.Code != CodeAlreadyInState || !out.Status.IsFollowing {
		t.Fatalf("outcome=%+v, want AlreadyInState success", out)
	}
}

func TestUnfollow_MissingRowIsSuccess(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	out := h.exec.Unfollow(context.Background(), viewer, "club-1")
	if !out.Succeeded() || out.Code != CodeAlreadyInState || out.Status.IsFollowing {
		t.Fatalf("outcome=%+v, want AlreadyInState success", out)
	}
}

func TestJoin_CallerCancellationDoesNotAbortWrite(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := h.exec.Join(ctx, viewer, "club-1")
	if !out.Succeeded() {
		t.Fatalf("outcome=%+v, want success", out)
	}
	if h.edges.sawCancel {
		t.Fatalf("backend write saw a cancelled context")
	}
}

func TestJoinAndFollow_IndependentGuards(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	gate := h.edges.holdWrites()

	joined := make(chan Outcome, 1)
	go func() { joined <- h.exec.Join(context.Background(), viewer, "club-1") }()
	waitWriting(t, h.edges)

	followed := make(chan Outcome, 1)
	go func() { followed <- h.exec.Follow(context.Background(), viewer, "club-1") }()
	waitWriting(t, h.edges)

	close(gate)
	if out := <-joined; !out.Succeeded() {
		t.Fatalf("join outcome=%+v", out)
	}
	if out := <-followed; !out.Succeeded() {
		t.Fatalf("follow outcome=%+v", out)
	}
	if st, _ := h.view.Snapshot(); st != (domain.Status{IsMember: true, IsFollowing: true}) {
		t.Fatalf("status=%+v", st)
	}
}

func TestRun_ReportsMutationsInFlight(t *testing.T) {
	t.Parallel()

	m, err := metrics.NewManager()
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	edges := newCountingEdges()
	exec := NewExecutor(Deps{Edges: edges, Metrics: m}, status.NewResolver(status.NewLookup(edges)))
	scrape := func() string {
		rec := httptest.NewRecorder()
		m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		return rec.Body.String()
	}

	gate := edges.holdWrites()
	done := make(chan Outcome, 1)
	go func() { done <- exec.Join(context.Background(), viewer, "club-1") }()
	waitWriting(t, edges)

	if body := scrape(); !strings.Contains(body, "clubportal_core_mutations_in_flight 1") {
		t.Fatalf("in-flight gauge during write not 1:\n%s", body)
	}
	close(gate)
	<-done
	if body := scrape(); !strings.Contains(body, "clubportal_core_mutations_in_flight 0") {
		t.Fatalf("in-flight gauge after write not 0:\n%s", body)
	}
}

func TestClassify(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		kind Kind
		err  error
		want Code
	}{
		{"nil", KindJoin, nil, CodeNone},
		{"duplicate insert", KindJoin, edgerepo.ErrAlreadyExists, CodeAlreadyInState},
		{"missing delete", KindLeave, edgerepo.ErrNotFound, CodeAlreadyInState},
		{"not found on insert", KindFollow, edgerepo.ErrNotFound, CodeUnknown},
		{"missing club", KindJoin, edgerepo.ErrClubNotFound, CodeUnknown},
		{"transport", KindUnfollow, fmt.Errorf("%w: reset", edgerepo.ErrTransport), CodeTransportFailure},
		{"deadline", KindJoin, context.DeadlineExceeded, CodeTransportFailure},
		{"other", KindJoin, errors.New("check constraint"), CodeUnknown},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := classify(tc.kind, tc.err); got != tc.want {
				t.Fatalf("classify(%s, %v)=%q, want %q", tc.kind, tc.err, got, tc.want)
			}
		})
	}
}
