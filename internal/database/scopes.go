package database

import (
	"time"

	"gorm.io/gorm"

	"github.com/yukikurage/household-task-api/internal/models"
	"github.com/yukikurage/household-task-api/internal/utils"
)

// Paginate applies pagination to a GORM query. A zero limit leaves the query unbounded.
func Paginate(params utils.PaginationParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if params.Limit <= 0 {
			return db
		}
		return db.Offset(params.Offset).Limit(params.Limit)
	}
}

// OpenEvents restricts an events query to pending or postponed rows
func OpenEvents(db *gorm.DB) *gorm.DB {
	return db.Where("events.status IN ?", models.OpenEventStatuses)
}

// DueAfter restricts an events query to due dates strictly after t
func DueAfter(t time.Time) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("events.due_date > ?", t)
	}
}
