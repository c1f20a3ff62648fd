package ports

import (
	"context"

	"github.com/helpdesk/helpdesk-api/internal/core/domain"
)

// UserProfile is a user together with the teams it belongs to.
type UserProfile struct {
	User  *domain.User
	Teams []domain.TeamRef
}

// UserService defines the user management use cases.
type UserService interface {
	List(ctx context.Context) ([]*domain.User, error)
	Get(ctx context.Context, id uint) (*UserProfile, error)
	Create(ctx context.Context, in domain.NewUser, actor *domain.User) (*domain.User, error)
	Update(ctx context.Context, actor *domain.User, id uint, patch domain.UserPatch) (*domain.User, error)
	Delete(ctx context.Context, id uint) error
}
