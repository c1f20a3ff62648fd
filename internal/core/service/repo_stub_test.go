package service

import (
	"context"
	"slices"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/helpdesk/helpdesk-api/internal/core/domain"
)

// ---------------------------------------------------------------------------
// In-memory stub repositories
// ---------------------------------------------------------------------------

var discardLogger = zerolog.Nop()

type stubUserRepo struct {
	users  map[uint]*domain.User
	nextID uint
	// saved records every user handed to Create/Update, as the repository saw it.
	saved []domain.User
	err   error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[uint]*domain.User), nextID: 1}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id uint) (*domain.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) List(_ context.Context) ([]*domain.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	out := make([]*domain.User, 0, len(r.users))
	for id := uint(1); id < r.nextID; id++ {
		if u, ok := r.users[id]; ok {
			out = append(out, cloneUser(u))
		}
	}
	return out, nil
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, domain.ErrUserExists
		}
	}
	r.saved = append(r.saved, *user)
	stored := cloneUser(user)
	stored.ID = r.nextID
	r.nextID++
	r.users[stored.ID] = stored
	return cloneUser(stored), nil
}

func (r *stubUserRepo) Update(_ context.Context, user *domain.User) (*domain.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	if _, ok := r.users[user.ID]; !ok {
		return nil, domain.ErrUserNotFound
	}
	r.saved = append(r.saved, *user)
	r.users[user.ID] = cloneUser(user)
	return cloneUser(user), nil
}

func (r *stubUserRepo) Delete(_ context.Context, id uint) error {
	if r.err != nil {
		return r.err
	}
	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

// stubTeamRepo keeps member IDs and resolves them against a user stub,
// dropping IDs that match no user.
type stubTeamRepo struct {
	users   *stubUserRepo
	teams   map[uint]*domain.Team
	members map[uint][]uint
	nextID  uint
	// lastMembers is the memberIDs argument of the last Create/Update call.
	lastMembers []uint
	err         error
}

func newStubTeamRepo(users *stubUserRepo) *stubTeamRepo {
	return &stubTeamRepo{
		users:   users,
		teams:   make(map[uint]*domain.Team),
		members: make(map[uint][]uint),
		nextID:  1,
	}
}

func (r *stubTeamRepo) view(id uint) *domain.Team {
	clone := *r.teams[id]
	clone.Members = []domain.Member{}
	for _, uid := range r.members[id] {
		if u, ok := r.users.users[uid]; ok {
			clone.Members = append(clone.Members, domain.MemberOf(u))
		}
	}
	return &clone
}

func (r *stubTeamRepo) List(_ context.Context) ([]*domain.Team, error) {
	if r.err != nil {
		return nil, r.err
	}
	out := make([]*domain.Team, 0, len(r.teams))
	for id := uint(1); id < r.nextID; id++ {
		if _, ok := r.teams[id]; ok {
			out = append(out, r.view(id))
		}
	}
	return out, nil
}

func (r *stubTeamRepo) FindByID(_ context.Context, id uint) (*domain.Team, error) {
	if r.err != nil {
		return nil, r.err
	}
	if _, ok := r.teams[id]; !ok {
		return nil, domain.ErrTeamNotFound
	}
	return r.view(id), nil
}

func (r *stubTeamRepo) FindByName(_ context.Context, name string) (*domain.Team, error) {
	if r.err != nil {
		return nil, r.err
	}
	for id, t := range r.teams {
		if t.Name == name {
			return r.view(id), nil
		}
	}
	return nil, domain.ErrTeamNotFound
}

func (r *stubTeamRepo) ListByMember(_ context.Context, userID uint) ([]domain.TeamRef, error) {
	if r.err != nil {
		return nil, r.err
	}
	refs := []domain.TeamRef{}
	for id := uint(1); id < r.nextID; id++ {
		t, ok := r.teams[id]
		if ok && slices.Contains(r.members[id], userID) {
			refs = append(refs, domain.TeamRef{ID: t.ID, Name: t.Name, Description: t.Description})
		}
	}
	return refs, nil
}

func (r *stubTeamRepo) Create(_ context.Context, team *domain.Team, memberIDs []uint) (*domain.Team, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.lastMembers = memberIDs
	stored := *team
	stored.ID = r.nextID
	r.nextID++
	r.teams[stored.ID] = &stored
	r.members[stored.ID] = slices.Clone(memberIDs)
	return r.view(stored.ID), nil
}

func (r *stubTeamRepo) Update(_ context.Context, team *domain.Team, memberIDs []uint) (*domain.Team, error) {
	if r.err != nil {
		return nil, r.err
	}
	if _, ok := r.teams[team.ID]; !ok {
		return nil, domain.ErrTeamNotFound
	}
	r.lastMembers = memberIDs
	stored := *team
	r.teams[team.ID] = &stored
	if memberIDs != nil {
		r.members[team.ID] = slices.Clone(memberIDs)
	}
	return r.view(team.ID), nil
}

func (r *stubTeamRepo) Delete(_ context.Context, id uint) error {
	if r.err != nil {
		return r.err
	}
	if _, ok := r.teams[id]; !ok {
		return domain.ErrTeamNotFound
	}
	delete(r.teams, id)
	delete(r.members, id)
	return nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func newTestStore(repo *stubUserRepo) *CredentialStore {
	return NewCredentialStore(repo, bcrypt.MinCost, discardLogger)
}

func newUserInput(email, password string) domain.NewUser {
	return domain.NewUser{FirstName: "Ada", LastName: "Lovelace", Email: email, Password: password}
}

func strPtr(s string) *string { return &s }

func rolePtr(r domain.Role) *domain.Role { return &r }
