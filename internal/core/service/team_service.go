package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/helpdesk/helpdesk-api/internal/core/domain"
	"github.com/helpdesk/helpdesk-api/internal/core/ports"
)

// TeamService implements team management.
type TeamService struct {
	repo ports.TeamRepository
	log  zerolog.Logger
}

func NewTeamService(repo ports.TeamRepository, log zerolog.Logger) *TeamService {
	return &TeamService{repo: repo, log: log}
}

func (s *TeamService) List(ctx context.Context) ([]*domain.Team, error) {
	return s.repo.List(ctx)
}

func (s *TeamService) Get(ctx context.Context, id uint) (*domain.Team, error) {
	return s.repo.FindByID(ctx, id)
}

// Create stores a new team and adds the listed users as members.
func (s *TeamService) Create(ctx context.Context, in domain.NewTeam) (*domain.Team, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, &domain.ValidationError{Fields: map[string]string{"name": "is required"}}
	}
	if err := s.ensureNameFree(ctx, in.Name, 0); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	team, err := s.repo.Create(ctx, &domain.Team{
		Name:        in.Name,
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, dedupIDs(in.MemberIDs))
	if err != nil {
		return nil, err
	}
	s.log.Info().Uint("team_id", team.ID).Int("members", len(team.Members)).Msg("team created")
	return team, nil
}

// Update applies the present fields. A non-nil MemberIDs replaces the
// whole membership.
func (s *TeamService) Update(ctx context.Context, id uint, patch domain.TeamPatch) (*domain.Team, error) {
	if patch.Name != nil {
		trimmed := strings.TrimSpace(*patch.Name)
		if trimmed == "" {
			return nil, &domain.ValidationError{Fields: map[string]string{"name": "must not be empty"}}
		}
		patch.Name = &trimmed
	}

	team, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil && *patch.Name != team.Name {
		if err := s.ensureNameFree(ctx, *patch.Name, team.ID); err != nil {
			return nil, err
		}
		team.Name = *patch.Name
	}
	if patch.Description != nil {
		team.Description = *patch.Description
	}
	team.UpdatedAt = time.Now().UTC()

	members := patch.MemberIDs
	if members != nil {
		members = dedupIDs(members)
	}
	updated, err := s.repo.Update(ctx, team, members)
	if err != nil {
		return nil, err
	}
	s.log.Info().Uint("team_id", updated.ID).Bool("members_replaced", patch.MemberIDs != nil).Msg("team updated")
	return updated, nil
}

func (s *TeamService) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Uint("team_id", id).Msg("team deleted")
	return nil
}

func (s *TeamService) ensureNameFree(ctx context.Context, name string, ownerID uint) error {
	existing, err := s.repo.FindByName(ctx, name)
	switch {
	case errors.Is(err, domain.ErrTeamNotFound):
		return nil
	case err != nil:
		return err
	case existing.ID != ownerID:
		return domain.ErrTeamExists
	}
	return nil
}

// dedupIDs drops zero and repeated IDs, keeping first-seen order. The
// result is non-nil so an explicit empty list still clears membership.
func dedupIDs(ids []uint) []uint {
	out := make([]uint, 0, len(ids))
	seen := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
