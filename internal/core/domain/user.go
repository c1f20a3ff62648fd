package domain

import "time"

// Role is the closed set of permission levels a user can hold.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleAgent  Role = "agent"
	RoleClient Role = "client"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleAgent, RoleClient:
		return true
	}
	return false
}

// User models a registered helpdesk identity.
type User struct {
	ID           uint      `json:"id"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// NewUser carries the fields supplied when an identity is created.
// Password is plaintext and never leaves the credential store unhashed.
type NewUser struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Role      Role
}

// UserPatch is a partial update. A nil field means "not supplied" and is
// left unchanged; a non-nil field is applied even when it is empty.
type UserPatch struct {
	FirstName *string
	LastName  *string
	Email     *string
	Password  *string
	Role      *Role
}

// Empty reports whether the patch carries no fields at all.
func (p UserPatch) Empty() bool {
	return p.FirstName == nil && p.LastName == nil && p.Email == nil && p.Password == nil && p.Role == nil
}
