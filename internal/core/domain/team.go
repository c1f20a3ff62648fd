package domain

import "time"

// Member is the credential-free view of a user inside a team.
type Member struct {
	ID        uint   `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
}

// MemberOf projects a user onto its team-member view.
func MemberOf(u *User) Member {
	return Member{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Role:      u.Role,
	}
}

// Team groups users (typically agents) that handle tickets together.
type Team struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Members     []Member  `json:"users"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TeamRef is the short team reference listed on a user's profile.
type TeamRef struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// NewTeam carries the fields supplied when a team is created.
type NewTeam struct {
	Name        string
	Description string
	MemberIDs   []uint
}

// TeamPatch is a partial team update. MemberIDs == nil leaves membership
// untouched; a non-nil slice (even empty) replaces it.
type TeamPatch struct {
	Name        *string
	Description *string
	MemberIDs   []uint
}
