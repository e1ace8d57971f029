package mutation

import (
	"github.com/Overland-East-Bay/club-portal-api/internal/app/status"
	"github.com/Overland-East-Bay/club-portal-api/internal/domain"
	"github.com/Overland-East-Bay/club-portal-api/internal/ports/out/edgerepo"
	"github.com/Overland-East-Bay/club-portal-api/internal/ports/out/noticesink"
)

type Kind string

const (
	KindJoin     Kind = "join"
	KindLeave    Kind = "leave"
	KindFollow   Kind = "follow"
	KindUnfollow Kind = "unfollow"
)

func (k Kind) Valid() bool {
	switch k {
	case KindJoin, KindLeave, KindFollow, KindUnfollow:
		return true
	}
	return false
}

func (k Kind) relation() edgerepo.Relation {
	if k == KindFollow || k == KindUnfollow {
		return edgerepo.RelationFollow
	}
	return edgerepo.RelationMembership
}

func (k Kind) field() status.Field {
	if k == KindFollow || k == KindUnfollow {
		return status.FieldFollow
	}
	return status.FieldMembership
}

// inserts reports whether the kind creates an edge (true) or removes one.
func (k Kind) inserts() bool { return k == KindJoin || k == KindFollow }

type Result string

const (
	ResultSuccess Result = "success"
	ResultFailure Result = "failure"
	// ResultIgnored is returned for a repeat invocation while the same mutation is in flight.
	ResultIgnored Result = "ignored"
)

type Code string

const (
	CodeNone             Code = ""
	CodeUnauthenticated  Code = "UNAUTHENTICATED"
	CodeAlreadyInState   Code = "ALREADY_IN_STATE"
	CodeAlreadyPending   Code = "ALREADY_PENDING"
	CodeTransportFailure Code = "TRANSPORT_FAILURE"
	CodeUnknown          Code = "UNKNOWN"
)

// Outcome is the terminal result of one mutation.
type Outcome struct {
	Kind   Kind
	ClubID domain.ClubID
	Result Result
	Code   Code
	// Status is the session's status after the mutation settled.
	Status domain.Status
	// Err is the underlying backend error for failures.
	Err error
	// Notice is nil when nothing should be shown (ignored repeats).
	Notice *noticesink.Notice
}

func (o Outcome) Succeeded() bool { return o.Result == ResultSuccess }
