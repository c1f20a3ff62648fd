package ports

import (
	"context"

	"github.com/helpdesk/helpdesk-api/internal/core/domain"
)

// TeamService defines the team management use cases.
type TeamService interface {
	List(ctx context.Context) ([]*domain.Team, error)
	Get(ctx context.Context, id uint) (*domain.Team, error)
	Create(ctx context.Context, in domain.NewTeam) (*domain.Team, error)
	Update(ctx context.Context, id uint, patch domain.TeamPatch) (*domain.Team, error)
	Delete(ctx context.Context, id uint) error
}
