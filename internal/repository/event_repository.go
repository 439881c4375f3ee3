package repository

import (
	"context"
	"time"

	"github.com/yukikurage/household-task-api/internal/database"
	"github.com/yukikurage/household-task-api/internal/models"
	"github.com/yukikurage/household-task-api/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormEventRepository is a GORM implementation of EventRepository
type GormEventRepository struct {
	db *gorm.DB
}

// NewEventRepository creates a new EventRepository
func NewEventRepository(db *gorm.DB) EventRepository {
	return &GormEventRepository{db: db}
}

// LoadEventWithTemplate finds an event by ID with its template
func (r *GormEventRepository) LoadEventWithTemplate(ctx context.Context, id uint64) (*models.Event, error) {
	var event models.Event
	if err := r.db.WithContext(ctx).Preload("TaskTemplate").First(&event, id).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

// InsertEvent creates a new event
func (r *GormEventRepository) InsertEvent(ctx context.Context, event *models.Event) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(event).Error
}

// InsertEvents creates several events in one statement
func (r *GormEventRepository) InsertEvents(ctx context.Context, events []models.Event) error {
	if len(events) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(&events).Error
}

// SaveEvent writes every column of an existing event
func (r *GormEventRepository) SaveEvent(ctx context.Context, event *models.Event) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(event).Error
}

// Delete soft deletes an event
func (r *GormEventRepository) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Delete(&models.Event{}, id).Error
}

// List retrieves events with filtering and pagination, earliest due first
func (r *GormEventRepository) List(ctx context.Context, filter EventFilter) ([]models.Event, int64, error) {
	var events []models.Event

	query := r.db.WithContext(ctx).Model(&models.Event{}).
		Where("events.household_id = ?", filter.HouseholdID)

	if filter.TaskTemplateID != nil {
		query = query.Where("events.task_template_id = ?", *filter.TaskTemplateID)
	}
	if filter.Status != nil {
		query = query.Where("events.status = ?", *filter.Status)
	}
	if filter.AssigneeID != nil {
		query = query.Where("events.assignee_id = ?", *filter.AssigneeID)
	}
	if filter.DueFrom != nil {
		query = query.Where("events.due_date >= ?", *filter.DueFrom)
	}
	if filter.DueTo != nil {
		query = query.Where("events.due_date < ?", *filter.DueTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Preload("TaskTemplate").Order("events.due_date ASC").Order("events.id ASC").
		Scopes(database.Paginate(utils.PageParams(filter.Page, filter.PageSize)))

	if err := listQuery.Find(&events).Error; err != nil {
		return nil, 0, err
	}

	return events, total, nil
}

// CountOpenAfter counts pending or postponed events of a template due after t
func (r *GormEventRepository) CountOpenAfter(ctx context.Context, templateID uint64, t time.Time) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Event{}).
		Scopes(database.OpenEvents, database.DueAfter(t)).
		Where("events.task_template_id = ?", templateID).
		Count(&count).Error
	return int(count), err
}

// LatestScheduled finds the template's non-cancelled event with the latest due date
func (r *GormEventRepository) LatestScheduled(ctx context.Context, templateID uint64) (*models.Event, error) {
	var event models.Event
	err := r.db.WithContext(ctx).
		Where("task_template_id = ? AND status <> ?", templateID, models.EventStatusCancelled).
		Order("due_date DESC").
		First(&event).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// EarliestOpen finds the template's pending or postponed event with the earliest due date
func (r *GormEventRepository) EarliestOpen(ctx context.Context, templateID uint64) (*models.Event, error) {
	var event models.Event
	err := r.db.WithContext(ctx).
		Scopes(database.OpenEvents).
		Where("events.task_template_id = ?", templateID).
		Order("events.due_date ASC").
		First(&event).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// InsertEventHistory archives a completed event
func (r *GormEventRepository) InsertEventHistory(ctx context.Context, history *models.EventHistory) error {
	return r.db.WithContext(ctx).Create(history).Error
}

// ListHistory lists archived completions of a household, newest first
func (r *GormEventRepository) ListHistory(ctx context.Context, householdID uint64, page, pageSize int) ([]models.EventHistory, int64, error) {
	var history []models.EventHistory

	query := r.db.WithContext(ctx).Model(&models.EventHistory{}).Where("household_id = ?", householdID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("completion_date DESC").Order("id DESC").
		Scopes(database.Paginate(utils.PageParams(page, pageSize)))

	if err := listQuery.Find(&history).Error; err != nil {
		return nil, 0, err
	}
	return history, total, nil
}
