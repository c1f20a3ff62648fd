package service

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/helpdesk/helpdesk-api/internal/core/domain"
)

func newTestTeamService() (*TeamService, *stubTeamRepo, []uint) {
	users := newStubUserRepo()
	store := newTestStore(users)
	var ids []uint
	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		u, _ := store.Create(context.Background(), newUserInput(email, "pass"), nil)
		ids = append(ids, u.ID)
	}
	teams := newStubTeamRepo(users)
	return NewTeamService(teams, discardLogger), teams, ids
}

func memberIDs(team *domain.Team) []uint {
	ids := make([]uint, 0, len(team.Members))
	for _, m := range team.Members {
		ids = append(ids, m.ID)
	}
	return ids
}

func TestTeamService_Create(t *testing.T) {
	svc, repo, ids := newTestTeamService()

	team, err := svc.Create(context.Background(), domain.NewTeam{
		Name:      "  Support ",
		MemberIDs: []uint{ids[0], ids[1], ids[0], 0, 404},
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if team.Name != "Support" {
		t.Fatalf("expected trimmed name, got %q", team.Name)
	}
	if !slices.Equal(repo.lastMembers, []uint{ids[0], ids[1], 404}) {
		t.Fatalf("unexpected member ids passed to repo: %v", repo.lastMembers)
	}
	if !slices.Equal(memberIDs(team), []uint{ids[0], ids[1]}) {
		t.Fatalf("unknown ids must be ignored, got %v", memberIDs(team))
	}
}

func TestTeamService_Create_Validation(t *testing.T) {
	svc, _, _ := newTestTeamService()
	_, err := svc.Create(context.Background(), domain.NewTeam{Name: "   "})
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestTeamService_Create_Duplicate(t *testing.T) {
	svc, _, _ := newTestTeamService()
	ctx := context.Background()
	_, _ = svc.Create(ctx, domain.NewTeam{Name: "Support"})

	if _, err := svc.Create(ctx, domain.NewTeam{Name: "Support"}); !errors.Is(err, domain.ErrTeamExists) {
		t.Fatalf("expected ErrTeamExists, got %v", err)
	}
}

func TestTeamService_Update_Membership(t *testing.T) {
	svc, _, ids := newTestTeamService()
	ctx := context.Background()
	team, _ := svc.Create(ctx, domain.NewTeam{Name: "Support", MemberIDs: []uint{ids[0], ids[1]}})

	kept, err := svc.Update(ctx, team.ID, domain.TeamPatch{Description: strPtr("tier 1")})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if kept.Description != "tier 1" || !slices.Equal(memberIDs(kept), []uint{ids[0], ids[1]}) {
		t.Fatalf("absent userIds must keep members, got %+v", kept)
	}

	replaced, err := svc.Update(ctx, team.ID, domain.TeamPatch{MemberIDs: []uint{ids[2]}})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if !slices.Equal(memberIDs(replaced), []uint{ids[2]}) {
		t.Fatalf("expected members to be replaced, got %v", memberIDs(replaced))
	}

	cleared, err := svc.Update(ctx, team.ID, domain.TeamPatch{MemberIDs: []uint{}})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if len(cleared.Members) != 0 {
		t.Fatalf("expected empty membership, got %v", memberIDs(cleared))
	}
}

func TestTeamService_Update_Rename(t *testing.T) {
	svc, _, _ := newTestTeamService()
	ctx := context.Background()
	support, _ := svc.Create(ctx, domain.NewTeam{Name: "Support"})
	_, _ = svc.Create(ctx, domain.NewTeam{Name: "Billing"})

	if _, err := svc.Update(ctx, support.ID, domain.TeamPatch{Name: strPtr("Billing")}); !errors.Is(err, domain.ErrTeamExists) {
		t.Fatalf("expected ErrTeamExists, got %v", err)
	}
	if _, err := svc.Update(ctx, support.ID, domain.TeamPatch{Name: strPtr("Support")}); err != nil {
		t.Fatalf("keeping own name must succeed, got %v", err)
	}
	renamed, err := svc.Update(ctx, support.ID, domain.TeamPatch{Name: strPtr("Helpdesk")})
	if err != nil || renamed.Name != "Helpdesk" {
		t.Fatalf("rename failed: %v %+v", err, renamed)
	}
}

func TestTeamService_NotFound(t *testing.T) {
	svc, _, _ := newTestTeamService()
	ctx := context.Background()

	if _, err := svc.Get(ctx, 9); !errors.Is(err, domain.ErrTeamNotFound) {
		t.Fatalf("expected ErrTeamNotFound on get, got %v", err)
	}
	if _, err := svc.Update(ctx, 9, domain.TeamPatch{}); !errors.Is(err, domain.ErrTeamNotFound) {
		t.Fatalf("expected ErrTeamNotFound on update, got %v", err)
	}
	if err := svc.Delete(ctx, 9); !errors.Is(err, domain.ErrTeamNotFound) {
		t.Fatalf("expected ErrTeamNotFound on delete, got %v", err)
	}
}
