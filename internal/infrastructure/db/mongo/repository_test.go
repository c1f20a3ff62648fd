package mongo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/helpdesk/helpdesk-api/internal/core/domain"
)

func TestAssembleTeams_KeepsMemberOrderAndDropsUnknownIDs(t *testing.T) {
	docs := []mongoTeam{
		{ID: 1, Name: "Support", MemberIDs: []int64{3, 1, 99}},
		{ID: 2, Name: "Ops", MemberIDs: nil},
	}
	users := []mongoUser{
		{ID: 1, Email: "one@example.com", PasswordHash: "$2a$04$hash", Role: "agent"},
		{ID: 3, Email: "three@example.com", PasswordHash: "$2a$04$hash", Role: "client"},
	}

	teams := assembleTeams(docs, users)

	if len(teams) != 2 {
		t.Fatalf("expected 2 teams, got %d", len(teams))
	}
	got := teams[0].Members
	if len(got) != 2 || got[0].ID != 3 || got[1].ID != 1 {
		t.Fatalf("unexpected members %+v", got)
	}
	if got[0].Role != domain.RoleClient {
		t.Fatalf("member role not carried: %+v", got[0])
	}
	if teams[1].Members == nil || len(teams[1].Members) != 0 {
		t.Fatalf("expected empty, non-nil members, got %#v", teams[1].Members)
	}
}

func TestNewRepositories_Timeout(t *testing.T) {
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI("mongodb://127.0.0.1:1"))
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })
	db := client.Database("helpdesk_test")

	if r := NewUserRepository(db, 0); r.timeout != defaultTimeout {
		t.Fatalf("expected default timeout, got %v", r.timeout)
	}
	if r := NewTeamRepository(db, 3*time.Second); r.timeout != 3*time.Second {
		t.Fatalf("expected configured timeout, got %v", r.timeout)
	}
}

// newLiveDB returns a scratch database on the server at MONGO_TEST_URI.
func newLiveDB(t *testing.T) *mongo.Database {
	t.Helper()
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI is required for this test")
	}
	ctx := context.Background()
	client, db, err := Connect(ctx, Config{URI: uri, Database: fmt.Sprintf("helpdesk_test_%d", time.Now().UnixNano())})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})
	return db
}

func seedMongoUser(t *testing.T, repo *UserRepository, email string) *domain.User {
	t.Helper()
	now := time.Now().UTC()
	u, err := repo.Create(context.Background(), &domain.User{
		FirstName:    "Test",
		LastName:     "User",
		Email:        email,
		PasswordHash: "$2a$04$hash",
		Role:         domain.RoleAgent,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("create %s: %v", email, err)
	}
	return u
}

func TestUserRepository_Live(t *testing.T) {
	db := newLiveDB(t)
	ctx := context.Background()
	users := NewUserRepository(db, 5*time.Second)
	if err := users.EnsureIndexes(ctx); err != nil {
		t.Fatalf("indexes: %v", err)
	}

	first := seedMongoUser(t, users, "a@example.com")
	second := seedMongoUser(t, users, "b@example.com")
	if first.ID != 1 || second.ID != 2 {
		t.Fatalf("expected sequential ids 1 and 2, got %d and %d", first.ID, second.ID)
	}

	dup := *first
	if _, err := users.Create(ctx, &dup); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}

	second.Email = first.Email
	if _, err := users.Update(ctx, second); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists on update, got %v", err)
	}

	got, err := users.FindByEmail(ctx, "a@example.com")
	if err != nil || got.PasswordHash != "$2a$04$hash" {
		t.Fatalf("unexpected lookup %+v, %v", got, err)
	}
	if _, err := users.FindByID(ctx, 404); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if err := users.Delete(ctx, 404); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound on delete, got %v", err)
	}
}

func TestTeamRepository_Live(t *testing.T) {
	db := newLiveDB(t)
	ctx := context.Background()
	users := NewUserRepository(db, 5*time.Second)
	teams := NewTeamRepository(db, 5*time.Second)
	if err := teams.EnsureIndexes(ctx); err != nil {
		t.Fatalf("indexes: %v", err)
	}

	a := seedMongoUser(t, users, "a@example.com")
	b := seedMongoUser(t, users, "b@example.com")

	now := time.Now().UTC()
	team, err := teams.Create(ctx, &domain.Team{Name: "Support", CreatedAt: now, UpdatedAt: now}, []uint{b.ID, 999, a.ID})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(team.Members) != 2 || team.Members[0].ID != a.ID || team.Members[1].ID != b.ID {
		t.Fatalf("expected members a, b, got %+v", team.Members)
	}

	if _, err := teams.Create(ctx, &domain.Team{Name: "Support"}, nil); !errors.Is(err, domain.ErrTeamExists) {
		t.Fatalf("expected ErrTeamExists, got %v", err)
	}

	team.Description = "Tier 1"
	kept, err := teams.Update(ctx, team, nil)
	if err != nil || len(kept.Members) != 2 || kept.Description != "Tier 1" {
		t.Fatalf("nil member ids must keep members: %+v, %v", kept, err)
	}

	if err := users.Delete(ctx, a.ID); err != nil {
		t.Fatalf("delete user: %v", err)
	}
	pulled, err := teams.FindByID(ctx, team.ID)
	if err != nil || len(pulled.Members) != 1 || pulled.Members[0].ID != b.ID {
		t.Fatalf("deleted user must leave the team: %+v, %v", pulled, err)
	}
	if refs, err := teams.ListByMember(ctx, a.ID); err != nil || len(refs) != 0 {
		t.Fatalf("expected no teams for deleted user, got %+v, %v", refs, err)
	}

	cleared, err := teams.Update(ctx, team, []uint{})
	if err != nil || len(cleared.Members) != 0 {
		t.Fatalf("empty member ids must clear members: %+v, %v", cleared, err)
	}

	if err := teams.Delete(ctx, team.ID); err != nil {
		t.Fatalf("delete team: %v", err)
	}
	if _, err := teams.FindByID(ctx, team.ID); !errors.Is(err, domain.ErrTeamNotFound) {
		t.Fatalf("expected ErrTeamNotFound, got %v", err)
	}
}
