package relational

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/helpdesk/helpdesk-api/internal/core/domain"
)

// TeamRepository stores teams and their user_teams membership rows.
type TeamRepository struct {
	db      *gorm.DB
	timeout time.Duration
}

func NewTeamRepository(db *gorm.DB, timeout time.Duration) *TeamRepository {
	if timeout <= 0 {
		timeout = defaultQueryTimeout
	}
	return &TeamRepository{db: db, timeout: timeout}
}

func membersByID(db *gorm.DB) *gorm.DB {
	return db.Order("users.id")
}

func (r *TeamRepository) List(ctx context.Context) ([]*domain.Team, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var recs []teamRecord
	if err := r.db.WithContext(ctx).Preload("Users", membersByID).Order("id").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	teams := make([]*domain.Team, 0, len(recs))
	for i := range recs {
		teams = append(teams, recs[i].toDomain())
	}
	return teams, nil
}

func (r *TeamRepository) FindByID(ctx context.Context, id uint) (*domain.Team, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.find(r.db.WithContext(ctx), "id = ?", id)
}

func (r *TeamRepository) FindByName(ctx context.Context, name string) (*domain.Team, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.find(r.db.WithContext(ctx), "name = ?", name)
}

func (r *TeamRepository) find(db *gorm.DB, query string, arg any) (*domain.Team, error) {
	var rec teamRecord
	if err := db.Preload("Users", membersByID).Where(query, arg).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTeamNotFound
		}
		return nil, fmt.Errorf("find team: %w", err)
	}
	return rec.toDomain(), nil
}

func (r *TeamRepository) ListByMember(ctx context.Context, userID uint) ([]domain.TeamRef, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var recs []teamRecord
	err := r.db.WithContext(ctx).
		Joins("JOIN user_teams ON user_teams.team_id = teams.id").
		Where("user_teams.user_id = ?", userID).
		Order("teams.id").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("list teams of user %d: %w", userID, err)
	}
	refs := make([]domain.TeamRef, 0, len(recs))
	for i := range recs {
		refs = append(refs, recs[i].toRef())
	}
	return refs, nil
}

// Create inserts the team and links the existing users among memberIDs.
func (r *TeamRepository) Create(ctx context.Context, team *domain.Team, memberIDs []uint) (*domain.Team, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	rec := teamRecord{
		Name:        team.Name,
		Description: team.Description,
		CreatedAt:   team.CreatedAt,
		UpdatedAt:   team.UpdatedAt,
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&rec).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return domain.ErrTeamExists
			}
			return fmt.Errorf("insert team: %w", err)
		}
		return setMembers(tx, &rec, memberIDs, false)
	})
	if err != nil {
		return nil, err
	}
	return r.find(r.db.WithContext(ctx), "id = ?", rec.ID)
}

// Update saves name and description, and replaces the members when
// memberIDs is non-nil.
func (r *TeamRepository) Update(ctx context.Context, team *domain.Team, memberIDs []uint) (*domain.Team, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec teamRecord
		if err := tx.First(&rec, team.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrTeamNotFound
			}
			return fmt.Errorf("find team %d: %w", team.ID, err)
		}
		err := tx.Model(&rec).Updates(map[string]any{
			"name":        team.Name,
			"description": team.Description,
			"updated_at":  team.UpdatedAt,
		}).Error
		if err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return domain.ErrTeamExists
			}
			return fmt.Errorf("update team %d: %w", team.ID, err)
		}
		if memberIDs == nil {
			return nil
		}
		return setMembers(tx, &rec, memberIDs, true)
	})
	if err != nil {
		return nil, err
	}
	return r.find(r.db.WithContext(ctx), "id = ?", team.ID)
}

func (r *TeamRepository) Delete(ctx context.Context, id uint) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec teamRecord
		if err := tx.First(&rec, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrTeamNotFound
			}
			return fmt.Errorf("find team %d: %w", id, err)
		}
		if err := tx.Model(&rec).Association("Users").Clear(); err != nil {
			return fmt.Errorf("clear members of team %d: %w", id, err)
		}
		if err := tx.Delete(&rec).Error; err != nil {
			return fmt.Errorf("delete team %d: %w", id, err)
		}
		return nil
	})
}

// setMembers links the users found among ids to rec. With replace set the
// previous membership is dropped first; unknown ids are skipped.
func setMembers(tx *gorm.DB, rec *teamRecord, ids []uint, replace bool) error {
	var users []userRecord
	if len(ids) > 0 {
		if err := tx.Where("id IN ?", ids).Find(&users).Error; err != nil {
			return fmt.Errorf("load members: %w", err)
		}
	}

	assoc := tx.Model(rec).Association("Users")
	switch {
	case replace && len(users) == 0:
		return wrapAssoc(assoc.Clear())
	case replace:
		return wrapAssoc(assoc.Replace(&users))
	case len(users) > 0:
		return wrapAssoc(assoc.Append(&users))
	}
	return nil
}

func wrapAssoc(err error) error {
	if err != nil {
		return fmt.Errorf("set members: %w", err)
	}
	return nil
}
