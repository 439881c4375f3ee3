package repository

import (
	"context"

	"github.com/yukikurage/household-task-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormHouseholdRepository is a GORM implementation of HouseholdRepository
type GormHouseholdRepository struct {
	db *gorm.DB
}

// NewHouseholdRepository creates a new HouseholdRepository
func NewHouseholdRepository(db *gorm.DB) HouseholdRepository {
	return &GormHouseholdRepository{db: db}
}

// Create creates a new household
func (r *GormHouseholdRepository) Create(ctx context.Context, household *models.Household) error {
	return r.db.WithContext(ctx).Create(household).Error
}

// FindByID finds a household by ID
func (r *GormHouseholdRepository) FindByID(ctx context.Context, id uint64) (*models.Household, error) {
	var household models.Household
	if err := r.db.WithContext(ctx).First(&household, id).Error; err != nil {
		return nil, err
	}
	return &household, nil
}

// LoadHouseholdWithPlan finds a household with its plan
func (r *GormHouseholdRepository) LoadHouseholdWithPlan(ctx context.Context, id uint64) (*models.Household, error) {
	var household models.Household
	if err := r.db.WithContext(ctx).Preload("PlanType").First(&household, id).Error; err != nil {
		return nil, err
	}
	return &household, nil
}

// FindByInviteCode finds a household by invite code
func (r *GormHouseholdRepository) FindByInviteCode(ctx context.Context, code string) (*models.Household, error) {
	var household models.Household
	if err := r.db.WithContext(ctx).Where("invite_code = ?", code).First(&household).Error; err != nil {
		return nil, err
	}
	return &household, nil
}

// Update updates a household
func (r *GormHouseholdRepository) Update(ctx context.Context, household *models.Household) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(household).Error
}

// Delete soft deletes a household and all related data in a transaction
func (r *GormHouseholdRepository) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("household_id = ?", id).Delete(&models.Event{}).Error; err != nil {
			return err
		}

		if err := tx.Where("household_id = ?", id).Delete(&models.TaskTemplate{}).Error; err != nil {
			return err
		}

		if err := tx.Where("household_id = ?", id).Delete(&models.HouseholdMember{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Household{}, id).Error
	})
}

// ListIDs returns the IDs of all active households
func (r *GormHouseholdRepository) ListIDs(ctx context.Context) ([]uint64, error) {
	var ids []uint64
	if err := r.db.WithContext(ctx).Model(&models.Household{}).Order("id").Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// AddMember adds a member to a household. A removed member rejoining gets
// their soft-deleted row restored.
func (r *GormHouseholdRepository) AddMember(ctx context.Context, member *models.HouseholdMember) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "household_id"}, {Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"deleted_at": gorm.Expr("NULL"),
				"role":       member.Role,
				"joined_at":  member.JoinedAt,
			}),
		}).
		Omit(clause.Associations).
		Create(member).Error
}

// RemoveMember removes a member from a household
func (r *GormHouseholdRepository) RemoveMember(ctx context.Context, householdID, userID uint64) error {
	return r.db.WithContext(ctx).Where("household_id = ? AND user_id = ?", householdID, userID).
		Delete(&models.HouseholdMember{}).Error
}

// FindMember finds a specific household member
func (r *GormHouseholdRepository) FindMember(ctx context.Context, householdID, userID uint64) (*models.HouseholdMember, error) {
	var member models.HouseholdMember
	if err := r.db.WithContext(ctx).Where("household_id = ? AND user_id = ?", householdID, userID).
		First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// ListMembersByUserID lists all households a user is a member of
func (r *GormHouseholdRepository) ListMembersByUserID(ctx context.Context, userID uint64) ([]models.HouseholdMember, error) {
	var memberships []models.HouseholdMember
	if err := r.db.WithContext(ctx).Preload("Household").
		Preload("Household.PlanType").
		Where("user_id = ?", userID).
		Find(&memberships).Error; err != nil {
		return nil, err
	}
	return memberships, nil
}

// ListMembers lists all members of a household
func (r *GormHouseholdRepository) ListMembers(ctx context.Context, householdID uint64) ([]models.HouseholdMember, error) {
	var members []models.HouseholdMember
	if err := r.db.WithContext(ctx).Preload("User").
		Where("household_id = ?", householdID).
		Order("joined_at").
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

// CountActiveMembers counts members that have not been removed
func (r *GormHouseholdRepository) CountActiveMembers(ctx context.Context, householdID uint64) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.HouseholdMember{}).
		Where("household_id = ?", householdID).
		Count(&count).Error
	return int(count), err
}
