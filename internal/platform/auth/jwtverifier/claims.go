package jwtverifier

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Overland-East-Bay/club-portal-api/internal/domain"
)

// Metadata mirrors the user_metadata object hosted identity providers attach.
type Metadata struct {
	Role     string `json:"role,omitempty"`
	FullName string `json:"full_name,omitempty"`
	Name     string `json:"name,omitempty"`
}

// Claims are the token claims the portal reads.
type Claims struct {
	jwt.RegisteredClaims

	Role         string    `json:"role,omitempty"`
	Name         string    `json:"name,omitempty"`
	Email        string    `json:"email,omitempty"`
	UserMetadata *Metadata `json:"user_metadata,omitempty"`
}

// Identity maps the claims onto the viewer identity. user_metadata wins over the
// top-level role and name claims when present.
func (c *Claims) Identity() domain.UserIdentity {
	role, name := c.Role, c.Name
	if md := c.UserMetadata; md != nil {
		if md.Role != "" {
			role = md.Role
		}
		switch {
		case md.FullName != "":
			name = md.FullName
		case md.Name != "":
			name = md.Name
		}
	}
	email := strings.TrimSpace(c.Email)
	name = domain.NormalizeHumanName(name)
	if name == "" {
		name = email
	}
	return domain.UserIdentity{
		ID:    domain.UserID(c.Subject),
		Role:  domain.ParseRole(role),
		Name:  name,
		Email: email,
	}
}
