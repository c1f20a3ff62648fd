package handler

import (
	"time"

	"github.com/helpdesk/helpdesk-api/internal/core/domain"
	"github.com/helpdesk/helpdesk-api/internal/core/ports"
)

// userResponse is the only shape in which a user leaves the API. It has no
// field for the credential.
type userResponse struct {
	ID        uint        `json:"id"`
	FirstName string      `json:"firstName"`
	LastName  string      `json:"lastName"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// userProfileResponse is a user together with its teams. Teams is always
// present, empty when the user belongs to none.
type userProfileResponse struct {
	userResponse
	Teams []domain.TeamRef `json:"teams"`
}

func newUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func newUserResponses(users []*domain.User) []userResponse {
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, newUserResponse(u))
	}
	return out
}

func newUserProfileResponse(p *ports.UserProfile) userProfileResponse {
	teams := p.Teams
	if teams == nil {
		teams = []domain.TeamRef{}
	}
	return userProfileResponse{userResponse: newUserResponse(p.User), Teams: teams}
}
