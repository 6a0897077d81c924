package domain

// Principal is the identity resolved from a verified session token.
type Principal struct {
	ID    int64
	Email string
	Role  Role
}

// IsAdmin reports whether the principal currently holds the ADMIN role.
func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }
