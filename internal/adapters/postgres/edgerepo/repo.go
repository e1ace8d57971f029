package edgerepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/Overland-East-Bay/club-portal-api/internal/adapters/postgres"
	"github.com/Overland-East-Bay/club-portal-api/internal/domain"
	"github.com/Overland-East-Bay/club-portal-api/internal/ports/out/edgerepo"
)

type statements struct {
	exists string
	insert string
	delete string
}

// Table names cannot be bound as parameters, so each relation gets fixed SQL.
var sqlByRelation = map[edgerepo.Relation]statements{
	edgerepo.RelationMembership: {
		exists: `SELECT 1 FROM club_members WHERE club_id = $1 AND user_id = $2 LIMIT 1`,
		insert: `INSERT INTO club_members (id, club_id, user_id, name, email, joined_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		delete: `DELETE FROM club_members WHERE club_id = $1 AND user_id = $2`,
	},
	edgerepo.RelationFollow: {
		exists: `SELECT 1 FROM club_followers WHERE club_id = $1 AND user_id = $2 LIMIT 1`,
		insert: `INSERT INTO club_followers (id, club_id, user_id, followed_at) VALUES ($1, $2, $3, $4)`,
		delete: `DELETE FROM club_followers WHERE club_id = $1 AND user_id = $2`,
	},
}

// Repo is a Postgres implementation of edgerepo.Repository.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

func (r *Repo) Exists(ctx context.Context, rel edgerepo.Relation, clubID domain.ClubID, userID domain.UserID) (bool, error) {
	if r.pool == nil {
		return false, errors.New("nil postgres pool")
	}
	stmts, ok := sqlByRelation[rel]
	if !ok {
		return false, fmt.Errorf("unknown relation %q", rel)
	}
	cid, err := uuid.Parse(string(clubID))
	if err != nil {
		// No row can match a malformed id.
		return false, nil
	}

	var one int
	err = r.pool.QueryRow(ctx, stmts.exists, cid, string(userID)).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, postgres.ClassifyTransport(err)
	}
	return true, nil
}

func (r *Repo) Insert(ctx context.Context, e edgerepo.Edge) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	stmts, ok := sqlByRelation[e.Relation]
	if !ok {
		return fmt.Errorf("unknown relation %q", e.Relation)
	}
	id, err := uuid.Parse(e.ID)
	if err != nil {
		return fmt.Errorf("invalid edge id: %w", err)
	}
	cid, err := uuid.Parse(string(e.ClubID))
	if err != nil {
		// No club row can match a malformed id.
		return fmt.Errorf("%w: %q", edgerepo.ErrClubNotFound, e.ClubID)
	}

	args := []any{id, cid, string(e.UserID)}
	if e.Relation == edgerepo.RelationMembership {
		args = append(args, e.Name, e.Email)
	}
	args = append(args, e.CreatedAt.UTC())

	if _, err := r.pool.Exec(ctx, stmts.insert, args...); err != nil {
		if pe, ok := postgres.AsPgError(err); ok {
			switch pe.Code {
			case postgres.UniqueViolationCode:
				return edgerepo.ErrAlreadyExists
			case postgres.ForeignKeyViolationCode:
				return edgerepo.ErrClubNotFound
			}
		}
		return postgres.ClassifyTransport(err)
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, rel edgerepo.Relation, clubID domain.ClubID, userID domain.UserID) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	stmts, ok := sqlByRelation[rel]
	if !ok {
		return fmt.Errorf("unknown relation %q", rel)
	}
	cid, err := uuid.Parse(string(clubID))
	if err != nil {
		return edgerepo.ErrNotFound
	}

	ct, err := r.pool.Exec(ctx, stmts.delete, cid, string(userID))
	if err != nil {
		return postgres.ClassifyTransport(err)
	}
	if ct.RowsAffected() == 0 {
		return edgerepo.ErrNotFound
	}
	return nil
}
