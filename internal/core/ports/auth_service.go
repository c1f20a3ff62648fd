package ports

import (
	"context"

	"github.com/helpdesk/helpdesk-api/internal/core/domain"
)

// AuthService covers self-service registration and login. actor is the
// authenticated caller, or nil for anonymous requests.
type AuthService interface {
	Register(ctx context.Context, in domain.NewUser, actor *domain.User) (*domain.User, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
}
