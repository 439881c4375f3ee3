package models

import (
	"time"

	"gorm.io/gorm"
)

type EventStatus string

const (
	EventStatusPending   EventStatus = "pending"
	EventStatusCompleted EventStatus = "completed"
	EventStatusPostponed EventStatus = "postponed"
	EventStatusCancelled EventStatus = "cancelled"
)

// Valid reports whether s is a known status.
func (s EventStatus) Valid() bool {
	switch s {
	case EventStatusPending, EventStatusCompleted, EventStatusPostponed, EventStatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is allowed.
func (s EventStatus) IsTerminal() bool {
	return s == EventStatusCompleted || s == EventStatusCancelled
}

// OpenEventStatuses lists the statuses counted as upcoming work.
var OpenEventStatuses = []EventStatus{EventStatusPending, EventStatusPostponed}

// Event is one scheduled occurrence of a chore.
type Event struct {
	ID                uint64         `gorm:"primarykey" json:"id"`
	TaskTemplateID    *uint64        `gorm:"index" json:"task_template_id"`
	HouseholdID       uint64         `gorm:"not null;index" json:"household_id"`
	AssigneeID        *uint64        `gorm:"index" json:"assignee_id"`
	DueDate           time.Time      `gorm:"not null;index" json:"due_date"`
	Status            EventStatus    `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	Priority          Priority       `gorm:"type:varchar(20);not null;default:'medium'" json:"priority"`
	CompletionDate    *time.Time     `json:"completion_date"`
	CompletionNotes   string         `gorm:"type:text" json:"completion_notes"`
	CompletedByID     *uint64        `json:"completed_by_id"`
	PostponedFromDate *time.Time     `json:"postponed_from_date"`
	PostponeReason    string         `gorm:"type:varchar(500)" json:"postpone_reason"`
	Notes             string         `gorm:"type:text" json:"notes"`
	CreatedByID       uint64         `gorm:"not null" json:"created_by_id"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	TaskTemplate *TaskTemplate `gorm:"foreignKey:TaskTemplateID" json:"task_template,omitempty"`
}

// EventHistory is an insert-only snapshot of a completed event.
type EventHistory struct {
	ID             uint64    `gorm:"primarykey" json:"id"`
	EventID        uint64    `gorm:"not null;index" json:"event_id"`
	TaskTemplateID *uint64   `json:"task_template_id"`
	HouseholdID    uint64    `gorm:"not null;index" json:"household_id"`
	AssigneeID     *uint64   `json:"assignee_id"`
	CompletedByID  *uint64   `json:"completed_by_id"`
	DueDate        time.Time `json:"due_date"`
	CompletionDate time.Time `json:"completion_date"`
	TaskName       string    `gorm:"type:varchar(255)" json:"task_name"`
	Notes          string    `gorm:"type:text" json:"notes"`
	CreatedAt      time.Time `json:"created_at"`
}
