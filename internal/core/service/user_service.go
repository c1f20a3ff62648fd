package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/helpdesk/helpdesk-api/internal/core/domain"
	"github.com/helpdesk/helpdesk-api/internal/core/ports"
)

// systemActor stands in for the operator when the process itself creates
// users (bootstrap), so the normal admin-role rule applies.
var systemActor = &domain.User{Role: domain.RoleAdmin}

// UserService implements user management on top of the credential store.
type UserService struct {
	store *CredentialStore
	teams ports.TeamRepository
	log   zerolog.Logger
}

func NewUserService(store *CredentialStore, teams ports.TeamRepository, log zerolog.Logger) *UserService {
	return &UserService{store: store, teams: teams, log: log}
}

func (s *UserService) List(ctx context.Context) ([]*domain.User, error) {
	return s.store.List(ctx)
}

// Get returns the user with the teams it belongs to.
func (s *UserService) Get(ctx context.Context, id uint) (*ports.UserProfile, error) {
	user, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	teams, err := s.teams.ListByMember(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list teams of user %d: %w", id, err)
	}
	return &ports.UserProfile{User: user, Teams: teams}, nil
}

func (s *UserService) Create(ctx context.Context, in domain.NewUser, actor *domain.User) (*domain.User, error) {
	return s.store.Create(ctx, in, actor)
}

// Update enforces self-or-admin before touching the store, so a denied
// caller learns nothing about whether the target exists.
func (s *UserService) Update(ctx context.Context, actor *domain.User, id uint, patch domain.UserPatch) (*domain.User, error) {
	if err := domain.AuthorizeUserUpdate(actor, id, patch); err != nil {
		var actorID uint
		if actor != nil {
			actorID = actor.ID
		}
		s.log.Info().
			Uint("actor_id", actorID).
			Uint("target_id", id).
			Err(err).
			Msg("user update denied")
		return nil, err
	}
	return s.store.Update(ctx, id, patch)
}

func (s *UserService) Delete(ctx context.Context, id uint) error {
	return s.store.Delete(ctx, id)
}

// EnsureAdmin creates an administrator with the given credentials unless a
// user with that email already exists. It reports whether one was created.
func (s *UserService) EnsureAdmin(ctx context.Context, email, password string) (bool, error) {
	_, err := s.store.FindByEmail(ctx, email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return false, err
	}

	_, err = s.store.Create(ctx, domain.NewUser{
		FirstName: "System",
		LastName:  "Administrator",
		Email:     email,
		Password:  password,
		Role:      domain.RoleAdmin,
	}, systemActor)
	if err != nil {
		return false, fmt.Errorf("bootstrap admin: %w", err)
	}
	return true, nil
}
