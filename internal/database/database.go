package database

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/yukikurage/household-task-api/internal/config"
	"github.com/yukikurage/household-task-api/internal/logger"
	"github.com/yukikurage/household-task-api/internal/models"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Dialector builds the gorm dialector for the configured driver.
func Dialector(cfg *config.Config) (gorm.Dialector, error) {
	switch cfg.DBDriver {
	case "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			cfg.DBUser,
			cfg.DBPassword,
			cfg.DBHost,
			cfg.DBPort,
			cfg.DBName,
		)
		return mysql.Open(dsn), nil
	case "postgres":
		dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
			cfg.DBHost,
			cfg.DBPort,
			cfg.DBUser,
			cfg.DBPassword,
			cfg.DBName,
		)
		return postgres.Open(dsn), nil
	case "sqlite":
		if err := ensureDirForSQLite(cfg.DBPath); err != nil {
			return nil, err
		}
		return sqlite.Open(cfg.DBPath), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DBDriver)
	}
}

// Connect opens the database configured in cfg.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: NewLogger(gormlogger.Warn),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	logger.Info("Database connection established", "driver", cfg.DBDriver)
	return db, nil
}

// OpenInMemory opens a private in-memory SQLite database with the schema
// migrated. The pool is pinned to one connection because every new SQLite
// connection to ":memory:" would see an empty database.
func OpenInMemory(level gormlogger.LogLevel) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: NewLogger(level),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := MigrateDatabase(db); err != nil {
		return nil, err
	}
	return db, nil
}

// NewLogger routes gorm's SQL logging through the application logger.
func NewLogger(level gormlogger.LogLevel) gormlogger.Interface {
	return gormlogger.New(
		logger.Standard(),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}

// Migrate creates the schema and seeds the plan catalogue.
func Migrate(db *gorm.DB) error {
	logger.Info("Running database migrations...")
	err := db.AutoMigrate(
		&models.User{},
		&models.PlanType{},
		&models.Household{},
		&models.HouseholdMember{},
		&models.PlanUsage{},
		&models.TaskTemplate{},
		&models.Event{},
		&models.EventHistory{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := SeedPlans(db); err != nil {
		return err
	}

	logger.Info("Database migrations completed")
	return nil
}

// DefaultPlans is the plan catalogue created on first start.
func DefaultPlans() []models.PlanType {
	maxTasks := 10
	maxMembers := 4
	return []models.PlanType{
		{Name: models.PlanFree, MaxTasks: &maxTasks, MaxHouseholdMembers: &maxMembers},
		{Name: models.PlanPremium, IncludesHistory: true},
	}
}

// SeedPlans inserts missing plan types; existing rows are left untouched.
func SeedPlans(db *gorm.DB) error {
	for _, plan := range DefaultPlans() {
		plan := plan
		if err := db.Where(models.PlanType{Name: plan.Name}).FirstOrCreate(&plan).Error; err != nil {
			return fmt.Errorf("failed to seed plan %s: %w", plan.Name, err)
		}
	}
	return nil
}

// ensureDirForSQLite creates parent dir for SQLite file if needed.
func ensureDirForSQLite(dsn string) error {
	if strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory") {
		return nil
	}
	clean := strings.TrimPrefix(dsn, "file:")
	clean = strings.Split(clean, "?")[0]
	dir := filepath.Dir(clean)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create db dir %q: %w", dir, err)
	}
	return nil
}
