package session

import "fmt"

// Role is the account role the backend assigned to the current user
type Role string

const (
	RoleUnassigned Role = "unassigned"
	RoleStartup    Role = "startup"
	RoleInvestor   Role = "investor"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUnassigned, RoleStartup, RoleInvestor:
		return true
	}

	return false
}

// ParseRole converts user or backend input into a Role
func ParseRole(s string) (Role, error) {
	role := Role(s)
	if !role.Valid() {
		return "", fmt.Errorf("unknown role %q (expected %s, %s or %s)", s, RoleStartup, RoleInvestor, RoleUnassigned)
	}

	return role, nil
}
