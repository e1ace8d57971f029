package domain

// UserID is the authenticated subject extracted from JWT claims (typically "sub").
// We model it as an opaque identifier: its format is controlled by the IdP.
type UserID string

// ClubID is the identifier of a club record in the backend of record.
type ClubID string
