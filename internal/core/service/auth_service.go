package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/helpdesk/helpdesk-api/internal/core/domain"
	"github.com/helpdesk/helpdesk-api/internal/core/ports"
)

// AuthService implements registration and login.
type AuthService struct {
	store  *CredentialStore
	tokens ports.TokenIssuer
	log    zerolog.Logger
}

func NewAuthService(store *CredentialStore, tokens ports.TokenIssuer, log zerolog.Logger) *AuthService {
	return &AuthService{store: store, tokens: tokens, log: log}
}

// Register creates a new identity. Anonymous callers always get the client
// role; an authenticated admin may pick any role.
func (s *AuthService) Register(ctx context.Context, in domain.NewUser, actor *domain.User) (*domain.User, error) {
	return s.store.Create(ctx, in, actor)
}

// Login checks the password and returns a signed session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	user, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		return "", nil, err
	}

	if !s.store.VerifyCredential(user, password) {
		s.log.Info().Uint("user_id", user.ID).Msg("login rejected: bad password")
		return "", nil, domain.ErrInvalidPassword
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return "", nil, err
	}

	s.log.Info().Uint("user_id", user.ID).Msg("login succeeded")
	return token, user, nil
}
