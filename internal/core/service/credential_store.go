package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/helpdesk/helpdesk-api/internal/core/domain"
	"github.com/helpdesk/helpdesk-api/internal/core/ports"
)

// DefaultBcryptCost is the work factor used when none is configured.
const DefaultBcryptCost = 10

// bcrypt ignores everything past 72 bytes; longer inputs are rejected.
const maxPasswordBytes = 72

// CredentialStore is the only writer of user records. It owns the
// hash-on-write invariant: every plaintext password passes through
// prePersist before the repository sees the user.
type CredentialStore struct {
	repo     ports.UserRepository
	cost     int
	validate *validator.Validate
	log      zerolog.Logger
}

// NewCredentialStore wraps repo. A cost outside bcrypt's accepted range
// falls back to DefaultBcryptCost.
func NewCredentialStore(repo ports.UserRepository, cost int, log zerolog.Logger) *CredentialStore {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	return &CredentialStore{
		repo:     repo,
		cost:     cost,
		validate: validator.New(),
		log:      log,
	}
}

func (s *CredentialStore) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.repo.FindByEmail(ctx, normalizeEmail(email))
}

func (s *CredentialStore) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *CredentialStore) List(ctx context.Context) ([]*domain.User, error) {
	return s.repo.List(ctx)
}

// Create validates and stores a new identity. The role is forced to client
// unless actor is an admin, in which case the requested role is honoured.
func (s *CredentialStore) Create(ctx context.Context, in domain.NewUser, actor *domain.User) (*domain.User, error) {
	in.Email = normalizeEmail(in.Email)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)

	var ve domain.ValidationError
	checkName(&ve, "firstName", in.FirstName)
	checkName(&ve, "lastName", in.LastName)
	s.checkEmail(&ve, in.Email)
	checkPassword(&ve, in.Password)
	if in.Role != "" && !in.Role.Valid() {
		ve.Add("role", "must be one of: admin agent client")
	}
	if err := ve.OrNil(); err != nil {
		return nil, err
	}

	role := domain.RoleClient
	if domain.IsAdmin(actor) && in.Role != "" {
		role = in.Role
	}

	if err := s.ensureEmailFree(ctx, in.Email, 0); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.prePersist(user, &in.Password); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}
	s.log.Info().Uint("user_id", created.ID).Str("role", string(created.Role)).Msg("user created")
	return created, nil
}

// Update applies the fields present in patch to the stored user. A present
// password is re-hashed; absent fields are left untouched.
func (s *CredentialStore) Update(ctx context.Context, id uint, patch domain.UserPatch) (*domain.User, error) {
	var ve domain.ValidationError
	if patch.FirstName != nil {
		trimmed := strings.TrimSpace(*patch.FirstName)
		patch.FirstName = &trimmed
		checkName(&ve, "firstName", trimmed)
	}
	if patch.LastName != nil {
		trimmed := strings.TrimSpace(*patch.LastName)
		patch.LastName = &trimmed
		checkName(&ve, "lastName", trimmed)
	}
	if patch.Email != nil {
		normalized := normalizeEmail(*patch.Email)
		patch.Email = &normalized
		s.checkEmail(&ve, normalized)
	}
	if patch.Password != nil {
		checkPassword(&ve, *patch.Password)
	}
	if patch.Role != nil && !patch.Role.Valid() {
		ve.Add("role", "must be one of: admin agent client")
	}
	if err := ve.OrNil(); err != nil {
		return nil, err
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Email != nil && *patch.Email != user.Email {
		if err := s.ensureEmailFree(ctx, *patch.Email, user.ID); err != nil {
			return nil, err
		}
		user.Email = *patch.Email
	}
	if patch.FirstName != nil {
		user.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		user.LastName = *patch.LastName
	}
	if patch.Role != nil {
		user.Role = *patch.Role
	}
	if err := s.prePersist(user, patch.Password); err != nil {
		return nil, err
	}
	user.UpdatedAt = time.Now().UTC()

	updated, err := s.repo.Update(ctx, user)
	if err != nil {
		return nil, err
	}
	s.log.Info().
		Uint("user_id", updated.ID).
		Bool("password_changed", patch.Password != nil).
		Msg("user updated")
	return updated, nil
}

// Delete removes the user. It fails with domain.ErrUserNotFound if absent.
func (s *CredentialStore) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Uint("user_id", id).Msg("user deleted")
	return nil
}

// VerifyCredential reports whether plaintext matches the user's stored hash.
func (s *CredentialStore) VerifyCredential(user *domain.User, plaintext string) bool {
	if user == nil || user.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(plaintext)) == nil
}

// prePersist replaces the credential with its bcrypt hash when a new
// plaintext is supplied. A nil plaintext leaves the stored hash as is.
func (s *CredentialStore) prePersist(user *domain.User, plaintext *string) error {
	if plaintext == nil {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(*plaintext), s.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = string(hash)
	return nil
}

func (s *CredentialStore) ensureEmailFree(ctx context.Context, email string, ownerID uint) error {
	existing, err := s.repo.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		return nil
	case err != nil:
		return err
	case existing.ID != ownerID:
		return domain.ErrUserExists
	}
	return nil
}

func checkName(ve *domain.ValidationError, field, value string) {
	if value == "" {
		ve.Add(field, "is required")
	}
}

func (s *CredentialStore) checkEmail(ve *domain.ValidationError, email string) {
	if email == "" {
		ve.Add("email", "is required")
		return
	}
	if err := s.validate.Var(email, "email"); err != nil {
		ve.Add("email", "must be a valid email")
	}
}

func checkPassword(ve *domain.ValidationError, password string) {
	switch {
	case password == "":
		ve.Add("password", "is required")
	case len(password) > maxPasswordBytes:
		ve.Add("password", fmt.Sprintf("must be at most %d bytes", maxPasswordBytes))
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
