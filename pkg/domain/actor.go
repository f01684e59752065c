package domain

import (
	"strings"

	dErrors "casework/pkg/domain-errors"
)

// Role is the workflow role an actor holds.
type Role string

const (
	RoleMaker   Role = "maker"
	RoleChecker Role = "checker"
	RoleAdmin   Role = "admin"
	RoleSystem  Role = "system"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleMaker, RoleChecker, RoleAdmin, RoleSystem:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }

func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.IsValid() {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "invalid role: %q", s)
	}
	return r, nil
}

// Actor is the authenticated caller of a mutating operation. The core records it
// and checks its role but never authenticates it.
type Actor struct {
	ID   UserID
	Role Role
}

// HasRole reports whether the actor holds any of the given roles.
func (a Actor) HasRole(roles ...Role) bool {
	for _, r := range roles {
		if a.Role == r {
			return true
		}
	}
	return false
}

func (a Actor) IsZero() bool {
	return a.ID.IsNil() || a.Role == ""
}
