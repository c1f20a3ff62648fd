package ports

import (
	"context"

	"github.com/helpdesk/helpdesk-api/internal/core/domain"
)

// TeamRepository defines persistence for teams and their membership.
// Member IDs that do not match an existing user are ignored.
type TeamRepository interface {
	List(ctx context.Context) ([]*domain.Team, error)
	FindByID(ctx context.Context, id uint) (*domain.Team, error)
	FindByName(ctx context.Context, name string) (*domain.Team, error)
	// ListByMember returns the teams the given user belongs to.
	ListByMember(ctx context.Context, userID uint) ([]domain.TeamRef, error)
	// Create inserts the team and adds memberIDs as members.
	Create(ctx context.Context, team *domain.Team, memberIDs []uint) (*domain.Team, error)
	// Update saves name/description. memberIDs == nil keeps the current
	// members; any other value replaces them.
	Update(ctx context.Context, team *domain.Team, memberIDs []uint) (*domain.Team, error)
	Delete(ctx context.Context, id uint) error
}
