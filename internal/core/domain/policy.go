package domain

// IsAdmin allows only administrators.
func IsAdmin(u *User) bool {
	return u != nil && u.Role == RoleAdmin
}

// IsAgentOrAdmin allows agents and administrators.
func IsAgentOrAdmin(u *User) bool {
	return u != nil && (u.Role == RoleAdmin || u.Role == RoleAgent)
}

// AuthorizeUserUpdate applies the self-or-admin rule for modifying the
// user identified by targetID. Role reassignment is reserved to admins,
// including on the actor's own record.
func AuthorizeUserUpdate(actor *User, targetID uint, patch UserPatch) error {
	if actor == nil {
		return ErrUnauthenticated
	}
	if !IsAdmin(actor) && actor.ID != targetID {
		return ErrForbidden
	}
	if patch.Role != nil && !IsAdmin(actor) {
		return ErrRoleChangeForbidden
	}
	return nil
}
