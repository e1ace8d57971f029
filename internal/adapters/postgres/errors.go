package postgres

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Overland-East-Bay/club-portal-api/internal/ports/out/edgerepo"
)

const (
	UniqueViolationCode     = "23505"
	ForeignKeyViolationCode = "23503"
)

// AsPgError unwraps err to a server-reported Postgres error.
func AsPgError(err error) (*pgconn.PgError, bool) {
	var pe *pgconn.PgError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// ClassifyTransport wraps connection-level failures with edgerepo.ErrTransport so
// callers can tell "could not reach the backend" apart from a rejected statement.
// Server-reported errors and nil are returned unchanged.
func ClassifyTransport(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := AsPgError(err); ok {
		return err
	}
	var ne net.Error
	if errors.As(err, &ne) || pgconn.SafeToRetry(err) || pgconn.Timeout(err) ||
		errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %w", edgerepo.ErrTransport, err)
	}
	var ce *pgconn.ConnectError
	if errors.As(err, &ce) {
		return fmt.Errorf("%w: %w", edgerepo.ErrTransport, err)
	}
	return err
}
