package clubrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/Overland-East-Bay/club-portal-api/internal/adapters/postgres"
	"github.com/Overland-East-Bay/club-portal-api/internal/domain"
	"github.com/Overland-East-Bay/club-portal-api/internal/ports/out/clubrepo"
)

// Repo is a Postgres implementation of clubrepo.Repository.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

func (r *Repo) Create(ctx context.Context, c domain.Club) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	id, err := uuid.Parse(string(c.ID))
	if err != nil {
		return fmt.Errorf("invalid club id: %w", err)
	}

	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO clubs (id, name, organizer_id, description, vision)
			VALUES ($1, $2, $3, $4, $5)
		`, id, c.Name, string(c.OrganizerID), c.Description, c.Vision)
		if err != nil {
			if pe, ok := postgres.AsPgError(err); ok && pe.Code == postgres.UniqueViolationCode {
				return clubrepo.ErrAlreadyExists
			}
			return err
		}

		for i, lead := range c.LeadIDs {
			if _, err := tx.Exec(ctx, `
				INSERT INTO club_leads (club_id, user_id, position)
				VALUES ($1, $2, $3)
				ON CONFLICT DO NOTHING
			`, id, string(lead), i); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *Repo) GetByID(ctx context.Context, id domain.ClubID) (domain.Club, error) {
	if r.pool == nil {
		return domain.Club{}, errors.New("nil postgres pool")
	}
	uid, err := uuid.Parse(string(id))
	if err != nil {
		return domain.Club{}, clubrepo.ErrNotFound
	}

	var (
		c           domain.Club
		organizerID string
	)
	err = r.pool.QueryRow(ctx, `
		SELECT
			c.name,
			c.organizer_id,
			c.description,
			c.vision,
			(SELECT count(*) FROM club_members m WHERE m.club_id = c.id),
			(SELECT count(*) FROM events e WHERE e.club_id = c.id)
		FROM clubs c
		WHERE c.id = $1
	`, uid).Scan(&c.Name, &organizerID, &c.Description, &c.Vision, &c.MemberCount, &c.EventCount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Club{}, clubrepo.ErrNotFound
		}
		return domain.Club{}, err
	}
	c.ID = domain.ClubID(uid.String())
	c.OrganizerID = domain.UserID(organizerID)

	rows, err := r.pool.Query(ctx, `
		SELECT user_id FROM club_leads WHERE club_id = $1 ORDER BY position ASC
	`, uid)
	if err != nil {
		return domain.Club{}, err
	}
	leads, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return domain.Club{}, err
	}
	c.LeadIDs = make([]domain.UserID, 0, len(leads))
	for _, l := range leads {
		c.LeadIDs = append(c.LeadIDs, domain.UserID(l))
	}
	return c, nil
}
