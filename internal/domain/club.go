package domain

// Club is the read model of a club. The core never mutates it; mutations target
// the membership and follow edges instead.
type Club struct {
	ID          ClubID
	Name        string
	OrganizerID UserID
	// LeadIDs keeps the backend ordering.
	LeadIDs []UserID

	MemberCount int
	EventCount  int

	Description string
	Vision      *string
}

// IsLedBy reports whether user organizes the club or is one of its leads.
func (c Club) IsLedBy(user UserID) bool {
	if user == "" {
		return false
	}
	if c.OrganizerID == user {
		return true
	}
	for _, id := range c.LeadIDs {
		if id == user {
			return true
		}
	}
	return false
}

// Status is the derived membership/follow state of one (user, club) pair.
type Status struct {
	IsMember    bool
	IsFollowing bool
}
