package domain

import "strings"

type Role string

const (
	RoleOrganizer Role = "organizer"
	RoleMember    Role = "member"
)

// ParseRole maps a raw claim value onto a Role. Anything that is not "organizer"
// is treated as an ordinary member.
func ParseRole(s string) Role {
	if strings.EqualFold(strings.TrimSpace(s), string(RoleOrganizer)) {
		return RoleOrganizer
	}
	return RoleMember
}

// UserIdentity is the viewer as reported by the auth collaborator.
// A nil *UserIdentity means "no session".
type UserIdentity struct {
	ID   UserID
	Role Role

	// Name and Email are copied onto membership rows when joining.
	Name  string
	Email string
}

// Authenticated reports whether u carries a usable subject.
func (u *UserIdentity) Authenticated() bool {
	return u != nil && u.ID != ""
}

func (u *UserIdentity) IsOrganizer() bool {
	return u != nil && u.Role == RoleOrganizer
}
