package ports

import "github.com/helpdesk/helpdesk-api/internal/core/domain"

// TokenIssuer signs session tokens for authenticated users.
type TokenIssuer interface {
	Issue(user *domain.User) (string, error)
}

// TokenVerifier checks a session token and returns its claims. It fails
// with domain.ErrTokenExpired or domain.ErrTokenInvalid.
type TokenVerifier interface {
	Verify(token string) (*domain.Claims, error)
}
