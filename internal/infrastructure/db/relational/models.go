package relational

import (
	"time"

	"github.com/helpdesk/helpdesk-api/internal/core/domain"
)

type userRecord struct {
	ID        uint         `gorm:"primaryKey;autoIncrement"`
	FirstName string       `gorm:"size:100;not null"`
	LastName  string       `gorm:"size:100;not null"`
	Email     string       `gorm:"size:255;uniqueIndex;not null"`
	Password  string       `gorm:"size:255;not null"`
	Role      string       `gorm:"size:10;not null;default:client"`
	Teams     []teamRecord `gorm:"many2many:user_teams;joinForeignKey:UserID;joinReferences:TeamID"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (userRecord) TableName() string { return "users" }

type teamRecord struct {
	ID          uint         `gorm:"primaryKey;autoIncrement"`
	Name        string       `gorm:"size:100;uniqueIndex;not null"`
	Description string       `gorm:"type:text"`
	Users       []userRecord `gorm:"many2many:user_teams;joinForeignKey:TeamID;joinReferences:UserID"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (teamRecord) TableName() string { return "teams" }

func userFromDomain(u *domain.User) userRecord {
	return userRecord{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Password:  u.PasswordHash,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func (r *userRecord) toDomain() *domain.User {
	return &domain.User{
		ID:           r.ID,
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		Email:        r.Email,
		PasswordHash: r.Password,
		Role:         domain.Role(r.Role),
		CreatedAt:    r.CreatedAt.UTC(),
		UpdatedAt:    r.UpdatedAt.UTC(),
	}
}

func (r *teamRecord) toDomain() *domain.Team {
	members := make([]domain.Member, 0, len(r.Users))
	for i := range r.Users {
		members = append(members, domain.MemberOf(r.Users[i].toDomain()))
	}
	return &domain.Team{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Members:     members,
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
}

func (r *teamRecord) toRef() domain.TeamRef {
	return domain.TeamRef{ID: r.ID, Name: r.Name, Description: r.Description}
}
