package ports

import (
	"context"

	"github.com/helpdesk/helpdesk-api/internal/core/domain"
)

// UserRepository defines persistence for user identities. Implementations
// store what they are given: credential hashing happens before these calls.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id uint) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	// Create inserts user and returns it with the store-assigned ID.
	// A unique-email violation is reported as domain.ErrUserExists.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	// Update overwrites every mutable field of the stored user.
	Update(ctx context.Context, user *domain.User) (*domain.User, error)
	// Delete removes the user and its team memberships.
	Delete(ctx context.Context, id uint) error
}
