package models

import (
	"time"

	"github.com/yukikurage/household-task-api/internal/recurrence"
	"gorm.io/gorm"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// TaskTemplate is the recurring definition of a chore. Events are generated from it.
type TaskTemplate struct {
	ID              uint64         `gorm:"primarykey" json:"id"`
	HouseholdID     uint64         `gorm:"not null;index" json:"household_id"`
	CategoryID      *uint64        `json:"category_id"`
	Name            string         `gorm:"type:varchar(255);not null" json:"name"`
	Description     string         `gorm:"type:text" json:"description"`
	IntervalYears   int            `gorm:"not null;default:0" json:"interval_years"`
	IntervalMonths  int            `gorm:"not null;default:0" json:"interval_months"`
	IntervalWeeks   int            `gorm:"not null;default:0" json:"interval_weeks"`
	IntervalDays    int            `gorm:"not null;default:0" json:"interval_days"`
	DefaultPriority Priority       `gorm:"type:varchar(20);not null;default:'medium'" json:"default_priority"`
	IsActive        bool           `gorm:"not null" json:"is_active"`
	CreatedByID     uint64         `gorm:"not null" json:"created_by_id"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

// Interval returns the template's recurrence period.
func (t TaskTemplate) Interval() recurrence.Interval {
	return recurrence.Interval{
		Years:  t.IntervalYears,
		Months: t.IntervalMonths,
		Weeks:  t.IntervalWeeks,
		Days:   t.IntervalDays,
	}
}

// SetInterval copies an interval onto the template columns.
func (t *TaskTemplate) SetInterval(interval recurrence.Interval) {
	t.IntervalYears = interval.Years
	t.IntervalMonths = interval.Months
	t.IntervalWeeks = interval.Weeks
	t.IntervalDays = interval.Days
}

// IsRecurring reports whether completing an event of this template schedules another.
func (t TaskTemplate) IsRecurring() bool {
	return t.Interval().HasInterval()
}

// Generates reports whether the template currently produces new events.
func (t TaskTemplate) Generates() bool {
	return t.IsActive && IsActive(t.DeletedAt) && t.IsRecurring()
}
