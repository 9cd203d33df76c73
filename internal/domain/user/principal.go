package user

import "strings"

type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

// ParseRole maps unknown or empty roles to RoleMember.
func ParseRole(raw string) Role {
	if Role(strings.ToLower(strings.TrimSpace(raw))) == RoleAdmin {
		return RoleAdmin
	}
	return RoleMember
}

// Principal is the authenticated caller. Role is the only input to
// authorization decisions.
type Principal struct {
	UserID string
	Role   Role
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

func (p Principal) Authenticated() bool {
	return strings.TrimSpace(p.UserID) != ""
}
