package domain

import (
	"errors"
	"maps"
	"slices"
	"strings"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrUserExists      = errors.New("user already exists")
	ErrInvalidPassword = errors.New("invalid password")

	ErrTeamNotFound = errors.New("team not found")
	ErrTeamExists   = errors.New("team already exists")

	ErrUnauthenticated = errors.New("no token provided")
	ErrTokenExpired    = errors.New("token expired")
	ErrTokenInvalid    = errors.New("invalid token")

	ErrAdminRequired        = errors.New("admin role required")
	ErrAgentOrAdminRequired = errors.New("agent or admin role required")
	ErrForbidden            = errors.New("not allowed to modify this user")
	ErrRoleChangeForbidden  = errors.New("only admin can change user roles")
)

// ValidationError reports malformed input. Fields maps field names to the
// reason each one was rejected.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, k := range slices.Sorted(maps.Keys(e.Fields)) {
		parts = append(parts, k+" "+e.Fields[k])
	}
	return strings.Join(parts, "; ")
}

// Add records a rejected field.
func (e *ValidationError) Add(field, reason string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[field] = reason
}

// OrNil returns e when any field was rejected and nil otherwise.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}
