package services

import (
	"context"
	"strings"
	"time"

	"github.com/yukikurage/household-task-api/internal/constants"
	apierrors "github.com/yukikurage/household-task-api/internal/errors"
	"github.com/yukikurage/household-task-api/internal/models"
	"github.com/yukikurage/household-task-api/internal/recurrence"
	"github.com/yukikurage/household-task-api/internal/repository"
)

// TaskService handles task template business logic
type TaskService struct {
	store  *repository.Store
	guard  *PlanUsageGuard
	events *EventService
}

// NewTaskService creates a new TaskService
func NewTaskService(store *repository.Store, guard *PlanUsageGuard, events *EventService) *TaskService {
	return &TaskService{
		store:  store,
		guard:  guard,
		events: events,
	}
}

// ListTasksInput represents filters for listing tasks
type ListTasksInput struct {
	HouseholdID uint64
	ActiveOnly  bool
	CategoryID  *uint64
	Page        int
	PageSize    int
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	HouseholdID     uint64
	CategoryID      *uint64
	Name            string
	Description     string
	Interval        recurrence.Interval
	DefaultPriority models.Priority
	FirstDueDate    *time.Time
	AssigneeID      *uint64
	CreatorID       uint64
}

// UpdateTaskInput represents input for updating a task
type UpdateTaskInput struct {
	Name            *string
	Description     *string
	Interval        *recurrence.Interval
	DefaultPriority *models.Priority
	IsActive        *bool
	CategoryID      *uint64
	ClearCategory   bool
}

// CompleteTaskInput represents input for completing the next occurrence of a task
type CompleteTaskInput struct {
	TaskID         uint64
	CompletionDate *time.Time
	Notes          *string
	CompletedBy    uint64
}

// ListTasks returns the templates of a household
func (s *TaskService) ListTasks(ctx context.Context, input ListTasksInput) ([]models.TaskTemplate, int64, error) {
	tasks, total, err := s.store.Tasks.List(ctx, repository.TaskTemplateFilter{
		HouseholdID: input.HouseholdID,
		ActiveOnly:  input.ActiveOnly,
		CategoryID:  input.CategoryID,
		Page:        input.Page,
		PageSize:    input.PageSize,
	})
	if err != nil {
		return nil, 0, apierrors.Unexpected("failed to list tasks", err)
	}
	return tasks, total, nil
}

// GetTask returns a task template
func (s *TaskService) GetTask(ctx context.Context, taskID uint64) (*models.TaskTemplate, error) {
	return loadTask(ctx, s.store, taskID)
}

// CreateTask creates a template within the household's plan limit and, when a
// first due date is given, its first event.
func (s *TaskService) CreateTask(ctx context.Context, input CreateTaskInput) (*models.TaskTemplate, error) {
	name, err := validateTaskName(input.Name)
	if err != nil {
		return nil, err
	}
	if err := input.Interval.Validate(); err != nil {
		return nil, ErrInvalidInterval
	}

	priority := input.DefaultPriority
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !priority.Valid() {
		return nil, ErrInvalidPriority
	}

	if err := ensureMember(ctx, s.store, input.HouseholdID, input.CreatorID, ErrNotHouseholdMember); err != nil {
		return nil, err
	}

	if err := s.guard.EnsureWithinLimit(ctx, input.HouseholdID, models.UsageTasks); err != nil {
		return nil, err
	}

	task := &models.TaskTemplate{
		HouseholdID:     input.HouseholdID,
		CategoryID:      input.CategoryID,
		Name:            name,
		Description:     input.Description,
		DefaultPriority: priority,
		IsActive:        true,
		CreatedByID:     input.CreatorID,
	}
	task.SetInterval(input.Interval)

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := tx.Tasks.Create(ctx, task); err != nil {
			return apierrors.Unexpected("failed to create task", err)
		}

		if input.FirstDueDate != nil {
			taskID := task.ID
			_, err := s.events.createEvent(ctx, tx, CreateEventInput{
				HouseholdID:    task.HouseholdID,
				TaskTemplateID: &taskID,
				AssigneeID:     input.AssigneeID,
				DueDate:        *input.FirstDueDate,
				CreatedBy:      input.CreatorID,
			})
			if err != nil {
				return err
			}
		}

		_, err := s.guard.WithStore(tx).UpdateUsage(ctx, task.HouseholdID, models.UsageTasks)
		return err
	})
	if err != nil {
		return nil, err
	}

	return task, nil
}

// UpdateTask updates an existing task
func (s *TaskService) UpdateTask(ctx context.Context, taskID uint64, input UpdateTaskInput) (*models.TaskTemplate, error) {
	task, err := loadTask(ctx, s.store, taskID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name, err := validateTaskName(*input.Name)
		if err != nil {
			return nil, err
		}
		task.Name = name
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Interval != nil {
		if err := input.Interval.Validate(); err != nil {
			return nil, ErrInvalidInterval
		}
		task.SetInterval(*input.Interval)
	}
	if input.DefaultPriority != nil {
		if !input.DefaultPriority.Valid() {
			return nil, ErrInvalidPriority
		}
		task.DefaultPriority = *input.DefaultPriority
	}
	if input.ClearCategory {
		task.CategoryID = nil
	} else if input.CategoryID != nil {
		task.CategoryID = input.CategoryID
	}

	activityChanged := input.IsActive != nil && *input.IsActive != task.IsActive
	if activityChanged {
		if *input.IsActive {
			if err := s.guard.EnsureWithinLimit(ctx, task.HouseholdID, models.UsageTasks); err != nil {
				return nil, err
			}
		}
		task.IsActive = *input.IsActive
	}

	if err := s.store.Tasks.Update(ctx, task); err != nil {
		return nil, apierrors.Unexpected("failed to update task", err)
	}

	if activityChanged {
		if _, err := s.guard.UpdateUsage(ctx, task.HouseholdID, models.UsageTasks); err != nil {
			return nil, err
		}
	}

	return task, nil
}

// DeleteTask soft deletes a task. Its open events stay and no longer recur.
func (s *TaskService) DeleteTask(ctx context.Context, taskID uint64) error {
	task, err := loadTask(ctx, s.store, taskID)
	if err != nil {
		return err
	}

	if err := s.store.Tasks.Delete(ctx, taskID); err != nil {
		return apierrors.Unexpected("failed to delete task", err)
	}

	if _, err := s.guard.UpdateUsage(ctx, task.HouseholdID, models.UsageTasks); err != nil {
		return err
	}
	return nil
}

// CompleteTask completes the earliest open event of a task through the same
// path as CompleteEvent.
func (s *TaskService) CompleteTask(ctx context.Context, input CompleteTaskInput) (*CompletionResult, error) {
	if _, err := loadTask(ctx, s.store, input.TaskID); err != nil {
		return nil, err
	}

	var result *CompletionResult
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		open, err := tx.Events.EarliestOpen(ctx, input.TaskID)
		if err != nil {
			if isNotFound(err) {
				return ErrTaskHasNoOpenEvent
			}
			return apierrors.Unexpected("failed to load open event", err)
		}

		result, err = s.events.completeEvent(ctx, tx, CompleteEventInput{
			EventID:        open.ID,
			CompletionDate: input.CompletionDate,
			Notes:          input.Notes,
			CompletedBy:    input.CompletedBy,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func loadTask(ctx context.Context, store *repository.Store, taskID uint64) (*models.TaskTemplate, error) {
	task, err := store.Tasks.LoadTaskTemplate(ctx, taskID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrTaskNotFound
		}
		return nil, apierrors.Unexpected("failed to load task", err)
	}
	return task, nil
}

func validateTaskName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrTaskNameRequired
	}
	if len(name) > constants.MaxTaskNameLength {
		return "", ErrTaskNameTooLong
	}
	return name, nil
}
