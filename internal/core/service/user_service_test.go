package service

import (
	"context"
	"errors"
	"testing"

	"github.com/helpdesk/helpdesk-api/internal/core/domain"
)

func newTestUserService() (*UserService, *stubUserRepo, *stubTeamRepo) {
	users := newStubUserRepo()
	teams := newStubTeamRepo(users)
	return NewUserService(newTestStore(users), teams, discardLogger), users, teams
}

func TestUserService_Get_IncludesTeams(t *testing.T) {
	svc, _, teams := newTestUserService()
	ctx := context.Background()

	user, _ := svc.Create(ctx, newUserInput("ada@example.com", "pass"), nil)
	_, _ = teams.Create(ctx, &domain.Team{Name: "Support"}, []uint{user.ID})
	_, _ = teams.Create(ctx, &domain.Team{Name: "Billing"}, nil)

	profile, err := svc.Get(ctx, user.ID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if profile.User.ID != user.ID {
		t.Fatalf("unexpected user %+v", profile.User)
	}
	if len(profile.Teams) != 1 || profile.Teams[0].Name != "Support" {
		t.Fatalf("expected only Support, got %+v", profile.Teams)
	}
}

func TestUserService_Get_NotFound(t *testing.T) {
	svc, _, _ := newTestUserService()
	if _, err := svc.Get(context.Background(), 5); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserService_Update_Authorization(t *testing.T) {
	svc, users, _ := newTestUserService()
	ctx := context.Background()
	admin := &domain.User{ID: 100, Role: domain.RoleAdmin}

	alice, _ := svc.Create(ctx, newUserInput("alice@example.com", "pass"), nil)
	bob, _ := svc.Create(ctx, newUserInput("bob@example.com", "pass"), nil)

	if _, err := svc.Update(ctx, alice, bob.ID, domain.UserPatch{FirstName: strPtr("Mallory")}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if users.users[bob.ID].FirstName == "Mallory" {
		t.Fatal("denied update modified the target")
	}

	if _, err := svc.Update(ctx, alice, alice.ID, domain.UserPatch{Role: rolePtr(domain.RoleAdmin)}); !errors.Is(err, domain.ErrRoleChangeForbidden) {
		t.Fatalf("expected ErrRoleChangeForbidden, got %v", err)
	}

	updated, err := svc.Update(ctx, alice, alice.ID, domain.UserPatch{FirstName: strPtr("Alicia")})
	if err != nil || updated.FirstName != "Alicia" {
		t.Fatalf("self update failed: %v %+v", err, updated)
	}

	promoted, err := svc.Update(ctx, admin, bob.ID, domain.UserPatch{Role: rolePtr(domain.RoleAgent)})
	if err != nil || promoted.Role != domain.RoleAgent {
		t.Fatalf("admin role change failed: %v %+v", err, promoted)
	}
}

func TestUserService_Update_NoExistenceOracle(t *testing.T) {
	svc, _, _ := newTestUserService()
	client := &domain.User{ID: 1, Role: domain.RoleClient}

	if _, err := svc.Update(context.Background(), client, 999, domain.UserPatch{FirstName: strPtr("x")}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for a missing target, got %v", err)
	}
	admin := &domain.User{ID: 2, Role: domain.RoleAdmin}
	if _, err := svc.Update(context.Background(), admin, 999, domain.UserPatch{FirstName: strPtr("x")}); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound for admin, got %v", err)
	}
}

func TestUserService_Delete(t *testing.T) {
	svc, users, _ := newTestUserService()
	ctx := context.Background()
	user, _ := svc.Create(ctx, newUserInput("gone@example.com", "pass"), nil)

	if err := svc.Delete(ctx, user.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, ok := users.users[user.ID]; ok {
		t.Fatal("user still stored")
	}
	if err := svc.Delete(ctx, user.ID); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserService_EnsureAdmin(t *testing.T) {
	svc, users, _ := newTestUserService()
	ctx := context.Background()

	created, err := svc.EnsureAdmin(ctx, "root@example.com", "rootpass")
	if err != nil || !created {
		t.Fatalf("expected admin to be created, got %v %v", created, err)
	}
	var admin *domain.User
	for _, u := range users.users {
		admin = u
	}
	if admin == nil || admin.Role != domain.RoleAdmin {
		t.Fatalf("expected an admin, got %+v", admin)
	}

	created, err = svc.EnsureAdmin(ctx, "root@example.com", "other")
	if err != nil || created {
		t.Fatalf("second call must be a no-op, got %v %v", created, err)
	}
	if len(users.users) != 1 {
		t.Fatalf("expected 1 user, got %d", len(users.users))
	}
}

func TestUserService_EnsureAdmin_StoreFailure(t *testing.T) {
	svc, users, _ := newTestUserService()
	users.err = errors.New("connection refused")

	if _, err := svc.EnsureAdmin(context.Background(), "root@example.com", "pass"); err == nil {
		t.Fatal("expected store failure to surface")
	}
}
