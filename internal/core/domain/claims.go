package domain

import "time"

// Claims is the decoded, verified payload of a session token.
type Claims struct {
	UserID    uint
	Email     string
	Role      Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}
