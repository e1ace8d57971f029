package edgerepo

import "errors"

var (
	// ErrAlreadyExists indicates the (club, user) edge already exists in the relation.
	ErrAlreadyExists = errors.New("edge already exists")

	// ErrNotFound indicates no edge exists for the (club, user) pair.
	ErrNotFound = errors.New("edge not found")

	// ErrClubNotFound indicates an insert referenced a club that does not exist.
	ErrClubNotFound = errors.New("club not found")

	// ErrTransport marks failures reaching the backend of record (network, pool, timeouts).
	// Adapters wrap the underlying error with it so callers can tell "could not ask"
	// from "asked and got an unexpected answer".
	ErrTransport = errors.New("backend transport failure")
)
