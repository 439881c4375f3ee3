package database

import (
	"fmt"

	"github.com/yukikurage/household-task-api/internal/logger"
	"gorm.io/gorm"
)

// AddIndexes adds the composite indexes used by event listing and refill
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		// Event listing by household and status, ordered by due date
		{"events", "idx_events_household_status_due", "household_id, status, due_date"},
		// Refill counts open events per template
		{"events", "idx_events_template_status_due", "task_template_id, status, due_date"},
		{"events", "idx_events_assignee_due", "assignee_id, due_date"},

		// Usage recounts
		{"task_templates", "idx_task_templates_household_active", "household_id, is_active"},
		{"household_members", "idx_household_members_user", "user_id"},

		{"event_histories", "idx_event_histories_household_completed", "household_id, completion_date"},
	}

	migrator := db.Migrator()
	for _, idx := range indexes {
		if migrator.HasIndex(idx.table, idx.name) {
			logger.Debug("Index already exists, skipping", "index", idx.name)
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		logger.Info("Created index", "index", idx.name, "table", idx.table, "columns", idx.columns)
	}

	return nil
}

// MigrateDatabase runs schema migrations followed by the extra indexes
func MigrateDatabase(db *gorm.DB) error {
	if err := Migrate(db); err != nil {
		return err
	}

	if err := AddIndexes(db); err != nil {
		return fmt.Errorf("failed to add indexes: %w", err)
	}

	return nil
}
