package repository

import (
	"context"

	"github.com/yukikurage/household-task-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPlanRepository is a GORM implementation of PlanRepository
type GormPlanRepository struct {
	db *gorm.DB
}

// NewPlanRepository creates a new PlanRepository
func NewPlanRepository(db *gorm.DB) PlanRepository {
	return &GormPlanRepository{db: db}
}

// FindPlanByID finds a plan type by ID
func (r *GormPlanRepository) FindPlanByID(ctx context.Context, id uint64) (*models.PlanType, error) {
	var plan models.PlanType
	if err := r.db.WithContext(ctx).First(&plan, id).Error; err != nil {
		return nil, err
	}
	return &plan, nil
}

// FindPlanByName finds a plan type by name
func (r *GormPlanRepository) FindPlanByName(ctx context.Context, name string) (*models.PlanType, error) {
	var plan models.PlanType
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&plan).Error; err != nil {
		return nil, err
	}
	return &plan, nil
}

// ListPlans lists all plan types
func (r *GormPlanRepository) ListPlans(ctx context.Context) ([]models.PlanType, error) {
	var plans []models.PlanType
	if err := r.db.WithContext(ctx).Order("id").Find(&plans).Error; err != nil {
		return nil, err
	}
	return plans, nil
}

// FindUsage finds the stored counter for a household and usage type
func (r *GormPlanRepository) FindUsage(ctx context.Context, householdID uint64, usageType models.UsageType) (*models.PlanUsage, error) {
	var usage models.PlanUsage
	if err := r.db.WithContext(ctx).
		Where("household_id = ? AND usage_type = ?", householdID, usageType).
		First(&usage).Error; err != nil {
		return nil, err
	}
	return &usage, nil
}

// UpsertUsage inserts or overwrites a usage counter
func (r *GormPlanRepository) UpsertUsage(ctx context.Context, usage *models.PlanUsage) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "household_id"}, {Name: "usage_type"}},
			DoUpdates: clause.AssignmentColumns([]string{"current_value", "max_value", "as_of_date", "updated_at"}),
		}).
		Create(usage).Error
}
