package itest

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Overland-East-Bay/club-portal-api/internal/adapters/httpapi"
	memactivityrepo "github.com/Overland-East-Bay/club-portal-api/internal/adapters/memory/activityrepo"
	memclock "github.com/Overland-East-Bay/club-portal-api/internal/adapters/memory/clock"
	memclubrepo "github.com/Overland-East-Bay/club-portal-api/internal/adapters/memory/clubrepo"
	memedgerepo "github.com/Overland-East-Bay/club-portal-api/internal/adapters/memory/edgerepo"
	memnoticesink "github.com/Overland-East-Bay/club-portal-api/internal/adapters/memory/noticesink"
	pgactivityrepo "github.com/Overland-East-Bay/club-portal-api/internal/adapters/postgres/activityrepo"
	pgclubrepo "github.com/Overland-East-Bay/club-portal-api/internal/adapters/postgres/clubrepo"
	pgedgerepo "github.com/Overland-East-Bay/club-portal-api/internal/adapters/postgres/edgerepo"
	postgres_testutil "github.com/Overland-East-Bay/club-portal-api/internal/adapters/postgres/testutil"
	"github.com/Overland-East-Bay/club-portal-api/internal/app/clubs"
	"github.com/Overland-East-Bay/club-portal-api/internal/app/mutation"
	"github.com/Overland-East-Bay/club-portal-api/internal/app/notifications"
	"github.com/Overland-East-Bay/club-portal-api/internal/app/status"
	"github.com/Overland-East-Bay/club-portal-api/internal/domain"
	"github.com/Overland-East-Bay/club-portal-api/internal/platform/logger"
	activityrepoport "github.com/Overland-East-Bay/club-portal-api/internal/ports/out/activityrepo"
	clubrepoport "github.com/Overland-East-Bay/club-portal-api/internal/ports/out/clubrepo"
	edgerepoport "github.com/Overland-East-Bay/club-portal-api/internal/ports/out/edgerepo"
)

type backend string

const (
	backendMemory   backend = "memory"
	backendPostgres backend = "postgres"
)

func backendsFromEnv(t *testing.T) []backend {
	t.Helper()
	switch strings.ToLower(strings.TrimSpace(os.Getenv("ITEST_BACKEND"))) {
	case "", "memory":
		return []backend{backendMemory}
	case "postgres":
		return []backend{backendPostgres}
	case "all":
		return []backend{backendMemory, backendPostgres}
	default:
		t.Fatalf("unknown ITEST_BACKEND value (expected memory|postgres|all)")
		return nil
	}
}

type testServer struct {
	baseURL string
	client  *http.Client
	clubID  domain.ClubID
}

// seeder abstracts the per-backend way of adding read-side fixtures.
type seeder interface {
	announce(t *testing.T, a activityrepoport.Announcement)
}

type memSeeder struct{ repo *memactivityrepo.Repo }

func (s memSeeder) announce(_ *testing.T, a activityrepoport.Announcement) { s.repo.AddAnnouncement(a) }

type pgSeeder struct{ s *pgactivityrepo.Seeder }

func (s pgSeeder) announce(t *testing.T, a activityrepoport.Announcement) {
	t.Helper()
	if err := s.s.AddAnnouncement(context.Background(), a); err != nil {
		t.Fatalf("AddAnnouncement err=%v", err)
	}
}

func newTestServer(t *testing.T, b backend) *testServer {
	t.Helper()
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	var (
		clubRepo clubrepoport.Repository
		edges    edgerepoport.Repository
		activity activityrepoport.Repository
		seed     seeder
	)

	switch b {
	case backendPostgres:
		pool := postgres_testutil.OpenMigratedPool(t)
		clubRepo = pgclubrepo.NewRepo(pool)
		edges = pgedgerepo.NewRepo(pool)
		activity = pgactivityrepo.NewRepo(pool)
		seed = pgSeeder{s: pgactivityrepo.NewSeeder(pool)}
	case backendMemory:
		memClubs := memclubrepo.NewRepo()
		memEdges := memedgerepo.NewRepoForClubs(memClubs)
		memActivity := memactivityrepo.NewRepo(memClubs, memEdges)
		clubRepo, edges, activity = memClubs, memEdges, memActivity
		seed = memSeeder{repo: memActivity}
	default:
		t.Fatalf("unknown backend: %s", b)
	}

	club := domain.Club{
		ID:          domain.ClubID(uuid.NewString()),
		Name:        "Trail Runners",
		OrganizerID: "itest|organizer",
		Description: "Saturday long runs",
	}
	if err := clubRepo.Create(ctx, club); err != nil {
		t.Fatalf("Create club err=%v", err)
	}
	seed.announce(t, activityrepoport.Announcement{
		ID:        uuid.NewString(),
		Title:     "Route change",
		Content:   "We start at the lake this week",
		ClubID:    club.ID,
		CreatedAt: now.Add(-time.Hour),
	})

	deps := mutation.Deps{
		Edges: edges,
		Sink:  memnoticesink.NewRecorder(),
		Clock: memclock.NewManualClock(now),
	}
	sessions, err := httpapi.NewSessions(64, status.NewLookup(edges), notifications.NewAggregator(activity), deps, nil)
	if err != nil {
		t.Fatalf("NewSessions err=%v", err)
	}
	api := httpapi.NewServer(clubs.NewService(clubRepo, activity), sessions, logger.Nop())

	// Integration tests use the dev auth middleware to stay fully local and deterministic.
	// An empty default subject keeps requests without X-Debug-Subject anonymous.
	authMW := httpapi.NewDevAuthMiddleware("", string(domain.RoleMember))
	handler := httpapi.NewRouterWithOptions(api, httpapi.RouterOptions{AuthMiddleware: authMW})

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return &testServer{
		baseURL: srv.URL,
		client:  srv.Client(),
		clubID:  club.ID,
	}
}

func (s *testServer) url(path string) string {
	if strings.HasPrefix(path, "/") {
		return s.baseURL + path
	}
	return s.baseURL + "/" + path
}

type viewer struct {
	subject string
	role    string
	name    string
}

func (s *testServer) do(t *testing.T, method string, path string, v viewer) (int, []byte, http.Header) {
	t.Helper()

	req, err := http.NewRequest(method, s.url(path), nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Accept", "application/json")
	if v.subject != "" {
		req.Header.Set("X-Debug-Subject", v.subject)
	}
	if v.role != "" {
		req.Header.Set("X-Debug-Role", v.role)
	}
	if v.name != "" {
		req.Header.Set("X-Debug-Name", v.name)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()
	out, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, out, resp.Header
}

type errorResponse struct {
	Error struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"requestId"`
	} `json:"error"`
}

func mustUnmarshal[T any](t *testing.T, b []byte) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v\nbody=%s", err, string(b))
	}
	return out
}

func requireStatus(t *testing.T, status int, body []byte, want int) {
	t.Helper()
	if status != want {
		t.Fatalf("status=%d want=%d body=%s", status, want, string(body))
	}
}

func requireErrorCode(t *testing.T, status int, body []byte, wantStatus int, wantCode string) {
	t.Helper()
	requireStatus(t, status, body, wantStatus)
	got := mustUnmarshal[errorResponse](t, body)
	if got.Error.Code != wantCode {
		t.Fatalf("error.code=%q want=%q body=%s", got.Error.Code, wantCode, string(body))
	}
}

func requireHeaderPresent(t *testing.T, h http.Header, key string) {
	t.Helper()
	if strings.TrimSpace(h.Get(key)) == "" {
		t.Fatalf("expected header %q to be present", key)
	}
}
