package mutation

import (
	"context"
	"errors"
	"net"

	"github.com/Overland-East-Bay/club-portal-api/internal/ports/out/edgerepo"
)

var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrMissingClub     = errors.New("missing club id")
)

// classify maps a backend write error onto the outcome taxonomy.
func classify(k Kind, err error) Code {
	switch {
	case err == nil:
		return CodeNone
	case k.inserts() && errors.Is(err, edgerepo.ErrAlreadyExists):
		return CodeAlreadyInState
	case !k.inserts() && errors.Is(err, edgerepo.ErrNotFound):
		return CodeAlreadyInState
	case errors.Is(err, edgerepo.ErrTransport),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return CodeTransportFailure
	}
	var ne net.Error
	if errors.As(err, &ne) {
		return CodeTransportFailure
	}
	return CodeUnknown
}
