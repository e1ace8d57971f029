package contracttest

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Overland-East-Bay/club-portal-api/internal/domain"
	activityrepoport "github.com/Overland-East-Bay/club-portal-api/internal/ports/out/activityrepo"
	clubrepoport "github.com/Overland-East-Bay/club-portal-api/internal/ports/out/clubrepo"
	edgerepoport "github.com/Overland-East-Bay/club-portal-api/internal/ports/out/edgerepo"
)

type CleanupFunc = func()

type ClubRepoFactory func(t *testing.T) (clubrepoport.Repository, CleanupFunc)
type ActivityFactory func(t *testing.T) (ActivityFixture, CleanupFunc)

// ActivitySeeder writes rows that the portal itself never writes (announcements,
// event registrations) so the read side can be exercised.
type ActivitySeeder interface {
	SeedAnnouncement(t *testing.T, a activityrepoport.Announcement)
	SeedRegistration(t *testing.T, clubID domain.ClubID, eventID, eventTitle string, reg activityrepoport.Registration)
}

// ActivityFixture groups repositories that must share one backend.
type ActivityFixture struct {
	Clubs    clubrepoport.Repository
	Edges    edgerepoport.Repository
	Activity activityrepoport.Repository
	Seeder   ActivitySeeder
}

func newClub(name string) domain.Club {
	vision := "Everyone plays"
	return domain.Club{
		ID:          domain.ClubID(uuid.NewString()),
		Name:        name,
		OrganizerID: "sub-organizer",
		LeadIDs:     []domain.UserID{"sub-lead-1", "sub-lead-2"},
		Description: name + " description",
		Vision:      &vision,
	}
}

func RunClubRepo(t *testing.T, newRepo ClubRepoFactory) {
	t.Helper()
	ctx := context.Background()

	repo, cleanup := newRepo(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	c := newClub("Chess Club")
	if err := repo.Create(ctx, c); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.Create(ctx, c); !errors.Is(err, clubrepoport.ErrAlreadyExists) {
		t.Fatalf("duplicate Create err=%v, want %v", err, clubrepoport.ErrAlreadyExists)
	}

	got, err := repo.GetByID(ctx, c.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Name != c.Name || got.OrganizerID != c.OrganizerID || got.Description != c.Description {
		t.Fatalf("unexpected club: %#v", got)
	}
	// Lead ordering is preserved.
	if len(got.LeadIDs) != 2 || got.LeadIDs[0] != "sub-lead-1" || got.LeadIDs[1] != "sub-lead-2" {
		t.Fatalf("unexpected leads: %#v", got.LeadIDs)
	}
	if got.Vision == nil || *got.Vision != "Everyone plays" {
		t.Fatalf("unexpected vision: %v", got.Vision)
	}

	if _, err := repo.GetByID(ctx, domain.ClubID(uuid.NewString())); !errors.Is(err, clubrepoport.ErrNotFound) {
		t.Fatalf("GetByID(missing) err=%v, want %v", err, clubrepoport.ErrNotFound)
	}
}

// RunEdgeRepo exercises repo against clubID, which must exist in the repository's backend.
func RunEdgeRepo(t *testing.T, repo edgerepoport.Repository, clubID domain.ClubID) {
	t.Helper()
	runEdgeRepo(context.Background(), t, repo, clubID)
}

func runEdgeRepo(ctx context.Context, t *testing.T, repo edgerepoport.Repository, clubID domain.ClubID) {
	t.Helper()
	user := domain.UserID("sub-" + uuid.NewString())
	now := time.Unix(1000, 0).UTC()

	for _, rel := range []edgerepoport.Relation{edgerepoport.RelationMembership, edgerepoport.RelationFollow} {
		ok, err := repo.Exists(ctx, rel, clubID, user)
		if err != nil {
			t.Fatalf("%s Exists(empty): %v", rel, err)
		}
		if ok {
			t.Fatalf("%s Exists(empty)=true", rel)
		}
	}

	if err := repo.Insert(ctx, edgerepoport.Edge{
		ID:        uuid.NewString(),
		Relation:  edgerepoport.RelationMembership,
		ClubID:    clubID,
		UserID:    user,
		Name:      "Ada Lovelace",
		Email:     "ada@example.com",
		CreatedAt: now,
	}); err != nil {
		t.Fatalf("Insert membership: %v", err)
	}
	if ok, err := repo.Exists(ctx, edgerepoport.RelationMembership, clubID, user); err != nil || !ok {
		t.Fatalf("Exists(membership)=%v err=%v", ok, err)
	}
	// Relations are independent.
	if ok, err := repo.Exists(ctx, edgerepoport.RelationFollow, clubID, user); err != nil || ok {
		t.Fatalf("Exists(follow)=%v err=%v, want false", ok, err)
	}

	// Uniqueness per (club, user).
	err := repo.Insert(ctx, edgerepoport.Edge{
		ID:        uuid.NewString(),
		Relation:  edgerepoport.RelationMembership,
		ClubID:    clubID,
		UserID:    user,
		CreatedAt: now,
	})
	if !errors.Is(err, edgerepoport.ErrAlreadyExists) {
		t.Fatalf("duplicate Insert err=%v, want %v", err, edgerepoport.ErrAlreadyExists)
	}

	if err := repo.Insert(ctx, edgerepoport.Edge{
		ID:        uuid.NewString(),
		Relation:  edgerepoport.RelationFollow,
		ClubID:    clubID,
		UserID:    user,
		CreatedAt: now,
	}); err != nil {
		t.Fatalf("Insert follow: %v", err)
	}

	if err := repo.Delete(ctx, edgerepoport.RelationMembership, clubID, user); err != nil {
		t.Fatalf("Delete membership: %v", err)
	}
	if ok, _ := repo.Exists(ctx, edgerepoport.RelationMembership, clubID, user); ok {
		t.Fatalf("membership still exists after Delete")
	}
	if ok, _ := repo.Exists(ctx, edgerepoport.RelationFollow, clubID, user); !ok {
		t.Fatalf("follow removed by membership Delete")
	}
	if err := repo.Delete(ctx, edgerepoport.RelationMembership, clubID, user); !errors.Is(err, edgerepoport.ErrNotFound) {
		t.Fatalf("Delete(missing) err=%v, want %v", err, edgerepoport.ErrNotFound)
	}

	// Edges never point at a club that does not exist.
	missing := domain.ClubID(uuid.NewString())
	for _, rel := range []edgerepoport.Relation{edgerepoport.RelationMembership, edgerepoport.RelationFollow} {
		err := repo.Insert(ctx, edgerepoport.Edge{
			ID:        uuid.NewString(),
			Relation:  rel,
			ClubID:    missing,
			UserID:    user,
			CreatedAt: now,
		})
		if !errors.Is(err, edgerepoport.ErrClubNotFound) {
			t.Fatalf("%s Insert(missing club) err=%v, want %v", rel, err, edgerepoport.ErrClubNotFound)
		}
		if ok, _ := repo.Exists(ctx, rel, missing, user); ok {
			t.Fatalf("%s edge stored for missing club", rel)
		}
	}
}

func RunActivityRepo(t *testing.T, newFixture ActivityFactory) {
	t.Helper()
	ctx := context.Background()

	fx, cleanup := newFixture(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	chess := newClub("Chess Club")
	robots := newClub("Robotics Club")
	for _, c := range []domain.Club{chess, robots} {
		if err := fx.Clubs.Create(ctx, c); err != nil {
			t.Fatalf("Create club: %v", err)
		}
	}

	// 12 joins, T1 (oldest) .. T12 (newest).
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 1; i <= 12; i++ {
		if err := fx.Edges.Insert(ctx, edgerepoport.Edge{
			ID:        uuid.NewString(),
			Relation:  edgerepoport.RelationMembership,
			ClubID:    chess.ID,
			UserID:    domain.UserID(fmt.Sprintf("sub-%02d", i)),
			Name:      fmt.Sprintf("Member %02d", i),
			Email:     fmt.Sprintf("m%02d@example.com", i),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}); err != nil {
			t.Fatalf("Insert membership %d: %v", i, err)
		}
	}

	joins, err := fx.Activity.RecentMemberJoins(ctx, 10)
	if err != nil {
		t.Fatalf("RecentMemberJoins: %v", err)
	}
	if len(joins) != 10 {
		t.Fatalf("RecentMemberJoins len=%d, want 10", len(joins))
	}
	for i, j := range joins {
		want := fmt.Sprintf("Member %02d", 12-i)
		if j.Name != want {
			t.Fatalf("joins[%d].Name=%q, want %q", i, j.Name, want)
		}
		if j.ClubName != "Chess Club" {
			t.Fatalf("joins[%d].ClubName=%q", i, j.ClubName)
		}
	}

	for i, title := range []string{"Kickoff", "Tournament", "Social"} {
		fx.Seeder.SeedAnnouncement(t, activityrepoport.Announcement{
			ID:        uuid.NewString(),
			Title:     title,
			Content:   title + " details",
			ClubID:    robots.ID,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		})
	}
	anns, err := fx.Activity.RecentAnnouncements(ctx, 2)
	if err != nil {
		t.Fatalf("RecentAnnouncements: %v", err)
	}
	if len(anns) != 2 || anns[0].Title != "Social" || anns[1].Title != "Tournament" {
		t.Fatalf("unexpected announcements: %#v", anns)
	}
	if anns[0].ClubName != "Robotics Club" || anns[0].Content != "Social details" {
		t.Fatalf("unexpected announcement row: %#v", anns[0])
	}

	eventID := uuid.NewString()
	fx.Seeder.SeedRegistration(t, chess.ID, eventID, "Blitz Night", activityrepoport.Registration{
		ID:           uuid.NewString(),
		UserID:       "sub-01",
		Name:         "Member 01",
		Email:        "m01@example.com",
		RegisteredAt: base,
	})
	fx.Seeder.SeedRegistration(t, robots.ID, uuid.NewString(), "Build Day", activityrepoport.Registration{
		ID:           uuid.NewString(),
		UserID:       "sub-02",
		Name:         "Member 02",
		Email:        "m02@example.com",
		RegisteredAt: base,
	})
	regs, err := fx.Activity.ListEventRegistrations(ctx, chess.ID)
	if err != nil {
		t.Fatalf("ListEventRegistrations: %v", err)
	}
	if len(regs) != 1 || regs[0].EventTitle != "Blitz Night" || regs[0].UserID != "sub-01" || regs[0].EventID != eventID {
		t.Fatalf("unexpected registrations: %#v", regs)
	}
}
