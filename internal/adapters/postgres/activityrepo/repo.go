package activityrepo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/Overland-East-Bay/club-portal-api/internal/adapters/postgres"
	"github.com/Overland-East-Bay/club-portal-api/internal/domain"
	"github.com/Overland-East-Bay/club-portal-api/internal/ports/out/activityrepo"
)

// Repo is a Postgres implementation of activityrepo.Repository.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

func (r *Repo) RecentMemberJoins(ctx context.Context, limit int) ([]activityrepo.MemberJoin, error) {
	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	rows, err := r.pool.Query(ctx, `
		SELECT m.id, m.name, m.email, m.club_id, c.name, m.joined_at
		FROM club_members m
		JOIN clubs c ON c.id = m.club_id
		ORDER BY m.joined_at DESC, m.id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, postgres.ClassifyTransport(err)
	}
	defer rows.Close()

	out := make([]activityrepo.MemberJoin, 0, limit)
	for rows.Next() {
		var (
			j      activityrepo.MemberJoin
			id     uuid.UUID
			clubID uuid.UUID
		)
		if err := rows.Scan(&id, &j.Name, &j.Email, &clubID, &j.ClubName, &j.JoinedAt); err != nil {
			return nil, err
		}
		j.ID = id.String()
		j.ClubID = domain.ClubID(clubID.String())
		j.JoinedAt = j.JoinedAt.UTC()
		out = append(out, j)
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.ClassifyTransport(err)
	}
	return out, nil
}

func (r *Repo) RecentAnnouncements(ctx context.Context, limit int) ([]activityrepo.Announcement, error) {
	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	rows, err := r.pool.Query(ctx, `
		SELECT a.id, a.title, a.content, a.club_id, c.name, a.created_at
		FROM club_announcements a
		JOIN clubs c ON c.id = a.club_id
		ORDER BY a.created_at DESC, a.id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, postgres.ClassifyTransport(err)
	}
	defer rows.Close()

	out := make([]activityrepo.Announcement, 0, limit)
	for rows.Next() {
		var (
			a      activityrepo.Announcement
			id     uuid.UUID
			clubID uuid.UUID
		)
		if err := rows.Scan(&id, &a.Title, &a.Content, &clubID, &a.ClubName, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.ID = id.String()
		a.ClubID = domain.ClubID(clubID.String())
		a.CreatedAt = a.CreatedAt.UTC()
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.ClassifyTransport(err)
	}
	return out, nil
}

func (r *Repo) ListEventRegistrations(ctx context.Context, clubID domain.ClubID) ([]activityrepo.Registration, error) {
	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	cid, err := uuid.Parse(string(clubID))
	if err != nil {
		return []activityrepo.Registration{}, nil
	}

	rows, err := r.pool.Query(ctx, `
		SELECT p.id, e.id, e.title, p.user_id, coalesce(pr.name, ''), coalesce(pr.email, ''), p.registered_at
		FROM event_participants p
		JOIN events e ON e.id = p.event_id
		LEFT JOIN profiles pr ON pr.user_id = p.user_id
		WHERE e.club_id = $1
		ORDER BY p.registered_at DESC, p.id ASC
	`, cid)
	if err != nil {
		return nil, postgres.ClassifyTransport(err)
	}
	defer rows.Close()

	out := make([]activityrepo.Registration, 0)
	for rows.Next() {
		var (
			reg     activityrepo.Registration
			id      uuid.UUID
			eventID uuid.UUID
			userID  string
			at      time.Time
		)
		if err := rows.Scan(&id, &eventID, &reg.EventTitle, &userID, &reg.Name, &reg.Email, &at); err != nil {
			return nil, err
		}
		reg.ID = id.String()
		reg.EventID = eventID.String()
		reg.UserID = domain.UserID(userID)
		reg.RegisteredAt = at.UTC()
		out = append(out, reg)
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.ClassifyTransport(err)
	}
	return out, nil
}

// Seeder writes rows the portal only reads: announcements, events, participants
// and profiles. It backs the demo seed and the adapter tests.
type Seeder struct {
	pool *pgxpool.Pool
}

func NewSeeder(pool *pgxpool.Pool) *Seeder {
	return &Seeder{pool: pool}
}

func (s *Seeder) AddAnnouncement(ctx context.Context, a activityrepo.Announcement) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO club_announcements (id, club_id, title, content, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, a.ID, string(a.ClubID), a.Title, a.Content, a.CreatedAt.UTC())
	return err
}

func (s *Seeder) AddEvent(ctx context.Context, id string, clubID domain.ClubID, title string, startsAt time.Time) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO events (id, club_id, title, starts_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO NOTHING
	`, id, string(clubID), title, startsAt.UTC())
	return err
}

// AddRegistration upserts the participant profile and records the registration.
func (s *Seeder) AddRegistration(ctx context.Context, reg activityrepo.Registration) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			INSERT INTO profiles (user_id, name, email)
			VALUES ($1, $2, $3)
			ON CONFLICT (user_id) DO UPDATE SET name = EXCLUDED.name, email = EXCLUDED.email
		`, string(reg.UserID), reg.Name, reg.Email); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO event_participants (id, event_id, user_id, registered_at)
			VALUES ($1, $2, $3, $4)
		`, reg.ID, reg.EventID, string(reg.UserID), reg.RegisteredAt.UTC())
		return err
	})
}
