package repository

import (
	"context"

	"github.com/yukikurage/household-task-api/internal/database"
	"github.com/yukikurage/household-task-api/internal/models"
	"github.com/yukikurage/household-task-api/internal/utils"
	"gorm.io/gorm"
)

// GormTaskTemplateRepository is a GORM implementation of TaskTemplateRepository
type GormTaskTemplateRepository struct {
	db *gorm.DB
}

// NewTaskTemplateRepository creates a new TaskTemplateRepository
func NewTaskTemplateRepository(db *gorm.DB) TaskTemplateRepository {
	return &GormTaskTemplateRepository{db: db}
}

// Create creates a new template
func (r *GormTaskTemplateRepository) Create(ctx context.Context, template *models.TaskTemplate) error {
	return r.db.WithContext(ctx).Create(template).Error
}

// LoadTaskTemplate finds a template by ID
func (r *GormTaskTemplateRepository) LoadTaskTemplate(ctx context.Context, id uint64) (*models.TaskTemplate, error) {
	var template models.TaskTemplate
	if err := r.db.WithContext(ctx).First(&template, id).Error; err != nil {
		return nil, err
	}
	return &template, nil
}

// List retrieves templates with filtering and pagination
func (r *GormTaskTemplateRepository) List(ctx context.Context, filter TaskTemplateFilter) ([]models.TaskTemplate, int64, error) {
	var templates []models.TaskTemplate

	query := r.db.WithContext(ctx).Model(&models.TaskTemplate{}).
		Where("task_templates.household_id = ?", filter.HouseholdID)

	if filter.ActiveOnly {
		query = query.Where("task_templates.is_active = ?", true)
	}
	if filter.CategoryID != nil {
		query = query.Where("task_templates.category_id = ?", *filter.CategoryID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("task_templates.name ASC").
		Scopes(database.Paginate(utils.PageParams(filter.Page, filter.PageSize)))

	if err := listQuery.Find(&templates).Error; err != nil {
		return nil, 0, err
	}

	return templates, total, nil
}

// ListGenerating lists active templates with a non-zero interval
func (r *GormTaskTemplateRepository) ListGenerating(ctx context.Context, householdID uint64) ([]models.TaskTemplate, error) {
	var templates []models.TaskTemplate
	err := r.db.WithContext(ctx).
		Where("household_id = ? AND is_active = ?", householdID, true).
		Where("interval_years > 0 OR interval_months > 0 OR interval_weeks > 0 OR interval_days > 0").
		Order("id").
		Find(&templates).Error
	return templates, err
}

// Update updates a template
func (r *GormTaskTemplateRepository) Update(ctx context.Context, template *models.TaskTemplate) error {
	return r.db.WithContext(ctx).Save(template).Error
}

// Delete soft deletes a template
func (r *GormTaskTemplateRepository) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Delete(&models.TaskTemplate{}, id).Error
}

// CountActiveTasks counts active, non-deleted templates of a household
func (r *GormTaskTemplateRepository) CountActiveTasks(ctx context.Context, householdID uint64) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.TaskTemplate{}).
		Where("household_id = ? AND is_active = ?", householdID, true).
		Count(&count).Error
	return int(count), err
}
