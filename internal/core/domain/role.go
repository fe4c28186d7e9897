package domain

// Role is the access level of a user. The set of roles is closed.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// ParseRole converts s into a Role, reporting false for unknown values.
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	return r, r.Valid()
}

// RoleSet is an allow-list of roles.
type RoleSet map[Role]struct{}

// NewRoleSet builds a RoleSet from roles.
func NewRoleSet(roles ...Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return set
}

// Contains reports whether r is in the set.
func (s RoleSet) Contains(r Role) bool {
	_, ok := s[r]
	return ok
}

// HasRole reports whether u holds one of the allowed roles. A nil user never does.
func HasRole(u *User, allowed RoleSet) bool {
	if u == nil {
		return false
	}
	return allowed.Contains(u.Role)
}
