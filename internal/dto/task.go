package dto

import (
	"time"

	"github.com/yukikurage/household-task-api/internal/models"
	"github.com/yukikurage/household-task-api/internal/recurrence"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
}

// IntervalDTO is the recurrence period of a task. All zero means one-off.
type IntervalDTO struct {
	Years  int `json:"years"`
	Months int `json:"months"`
	Weeks  int `json:"weeks"`
	Days   int `json:"days"`
}

// TaskDTO represents a task template in API responses
type TaskDTO struct {
	ID              uint64          `json:"id"`
	HouseholdID     uint64          `json:"household_id"`
	CategoryID      *uint64         `json:"category_id"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Interval        IntervalDTO     `json:"interval"`
	DefaultPriority models.Priority `json:"default_priority"`
	IsActive        bool            `json:"is_active"`
	IsRecurring     bool            `json:"is_recurring"`
	CreatedByID     uint64          `json:"created_by_id"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// EventDTO represents an event in API responses
type EventDTO struct {
	ID                uint64             `json:"id"`
	HouseholdID       uint64             `json:"household_id"`
	TaskTemplateID    *uint64            `json:"task_template_id"`
	TaskName          string             `json:"task_name,omitempty"`
	AssigneeID        *uint64            `json:"assignee_id"`
	DueDate           time.Time          `json:"due_date"`
	Status            models.EventStatus `json:"status"`
	Priority          models.Priority    `json:"priority"`
	CompletionDate    *time.Time         `json:"completion_date,omitempty"`
	CompletionNotes   string             `json:"completion_notes,omitempty"`
	CompletedByID     *uint64            `json:"completed_by_id,omitempty"`
	PostponedFromDate *time.Time         `json:"postponed_from_date,omitempty"`
	PostponeReason    string             `json:"postpone_reason,omitempty"`
	Notes             string             `json:"notes"`
	CreatedByID       uint64             `json:"created_by_id"`
	CreatedAt         time.Time          `json:"created_at"`
}

// CompletionDTO is the completed event and its successor, if one was scheduled
type CompletionDTO struct {
	Event EventDTO  `json:"event"`
	Next  *EventDTO `json:"next_event"`
}

// HistoryDTO represents an archived completion
type HistoryDTO struct {
	ID             uint64    `json:"id"`
	EventID        uint64    `json:"event_id"`
	TaskTemplateID *uint64   `json:"task_template_id"`
	TaskName       string    `json:"task_name"`
	AssigneeID     *uint64   `json:"assignee_id"`
	CompletedByID  *uint64   `json:"completed_by_id"`
	DueDate        time.Time `json:"due_date"`
	CompletionDate time.Time `json:"completion_date"`
	Notes          string    `json:"notes"`
}

// ListResponse represents a paginated list
type ListResponse[T any] struct {
	Items      []T   `json:"items"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalCount int64 `json:"total_count"`
	TotalPages int   `json:"total_pages"`
}

// NewListResponse wraps one page of items
func NewListResponse[T any](items []T, page, pageSize int, total int64) ListResponse[T] {
	totalPages := 0
	if pageSize > 0 {
		totalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return ListResponse[T]{
		Items:      items,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: total,
		TotalPages: totalPages,
	}
}

// Conversion functions

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:       user.ID,
		Username: user.Username,
	}
}

func ToIntervalDTO(interval recurrence.Interval) IntervalDTO {
	return IntervalDTO{
		Years:  interval.Years,
		Months: interval.Months,
		Weeks:  interval.Weeks,
		Days:   interval.Days,
	}
}

// Interval converts back to the domain type
func (i IntervalDTO) Interval() recurrence.Interval {
	return recurrence.Interval{
		Years:  i.Years,
		Months: i.Months,
		Weeks:  i.Weeks,
		Days:   i.Days,
	}
}

// ToTaskDTO converts a TaskTemplate model to TaskDTO
func ToTaskDTO(task models.TaskTemplate) TaskDTO {
	return TaskDTO{
		ID:              task.ID,
		HouseholdID:     task.HouseholdID,
		CategoryID:      task.CategoryID,
		Name:            task.Name,
		Description:     task.Description,
		Interval:        ToIntervalDTO(task.Interval()),
		DefaultPriority: task.DefaultPriority,
		IsActive:        task.IsActive,
		IsRecurring:     task.IsRecurring(),
		CreatedByID:     task.CreatedByID,
		CreatedAt:       task.CreatedAt,
		UpdatedAt:       task.UpdatedAt,
	}
}

func ToTaskDTOs(tasks []models.TaskTemplate) []TaskDTO {
	dtos := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		dtos[i] = ToTaskDTO(task)
	}
	return dtos
}

// ToEventDTO converts an Event model to EventDTO. The task name is filled
// when the template is preloaded.
func ToEventDTO(event models.Event) EventDTO {
	dto := EventDTO{
		ID:                event.ID,
		HouseholdID:       event.HouseholdID,
		TaskTemplateID:    event.TaskTemplateID,
		AssigneeID:        event.AssigneeID,
		DueDate:           event.DueDate,
		Status:            event.Status,
		Priority:          event.Priority,
		CompletionDate:    event.CompletionDate,
		CompletionNotes:   event.CompletionNotes,
		CompletedByID:     event.CompletedByID,
		PostponedFromDate: event.PostponedFromDate,
		PostponeReason:    event.PostponeReason,
		Notes:             event.Notes,
		CreatedByID:       event.CreatedByID,
		CreatedAt:         event.CreatedAt,
	}
	if event.TaskTemplate != nil {
		dto.TaskName = event.TaskTemplate.Name
	}
	return dto
}

func ToEventDTOs(events []models.Event) []EventDTO {
	dtos := make([]EventDTO, len(events))
	for i, event := range events {
		dtos[i] = ToEventDTO(event)
	}
	return dtos
}

// ToCompletionDTO converts a completion and its optional successor
func ToCompletionDTO(event models.Event, next *models.Event) CompletionDTO {
	dto := CompletionDTO{Event: ToEventDTO(event)}
	if next != nil {
		nextDTO := ToEventDTO(*next)
		dto.Next = &nextDTO
	}
	return dto
}

func ToHistoryDTOs(history []models.EventHistory) []HistoryDTO {
	dtos := make([]HistoryDTO, len(history))
	for i, h := range history {
		dtos[i] = HistoryDTO{
			ID:             h.ID,
			EventID:        h.EventID,
			TaskTemplateID: h.TaskTemplateID,
			TaskName:       h.TaskName,
			AssigneeID:     h.AssigneeID,
			CompletedByID:  h.CompletedByID,
			DueDate:        h.DueDate,
			CompletionDate: h.CompletionDate,
			Notes:          h.Notes,
		}
	}
	return dtos
}
