package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	DBDriver      string
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBPath        string
	RedisHost     string
	RedisPort     string
	SessionSecret string
	GinMode       string
	Port          string
	LogLevel      string
	LogFile       string
	ScheduleFile  string

	Scheduling *Scheduling
}

// RecurrenceConfig bounds how far ahead refill materializes pending events.
type RecurrenceConfig struct {
	FutureHorizonYears       int `yaml:"future_horizon_years" json:"future_horizon_years"`
	MinFutureEventsThreshold int `yaml:"min_future_events_threshold" json:"min_future_events_threshold"`
	MaxFutureEvents          int `yaml:"max_future_events" json:"max_future_events"`
}

// Scheduling is the YAML-backed part of the configuration.
type Scheduling struct {
	Recurrence RecurrenceConfig `yaml:"recurrence" json:"recurrence"`

	// RefillCron is a standard 5-field cron expression for the periodic refill job.
	// An empty value after Normalize means the default monthly run.
	RefillCron string `yaml:"refill_cron" json:"refill_cron"`

	// RefillTimeout bounds a single refill run across all households.
	RefillTimeout time.Duration `yaml:"refill_timeout" json:"refill_timeout"`

	// Timezone is the IANA zone the cron schedule is evaluated in.
	Timezone string `yaml:"timezone" json:"timezone"`
}

const (
	defaultHorizonYears = 1
	defaultMinFuture    = 5
	defaultMaxFuture    = 24
	defaultRefillCron   = "0 3 1 * *"
	defaultTimeout      = 5 * time.Minute
	defaultTimezone     = "UTC"
)

func Load() (*Config, error) {
	cfg := &Config{
		DBDriver:      getEnv("DB_DRIVER", "mysql"),
		DBHost:        getEnv("DB_HOST", "localhost"),
		DBPort:        getEnv("DB_PORT", "3306"),
		DBUser:        getEnv("DB_USER", "taskuser"),
		DBPassword:    getEnv("DB_PASSWORD", "taskpassword"),
		DBName:        getEnv("DB_NAME", "household_tasks"),
		DBPath:        getEnv("DB_PATH", "./data/household.db"),
		RedisHost:     getEnv("REDIS_HOST", ""),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		SessionSecret: getEnv("SESSION_SECRET", "default-secret-key-change-me"),
		GinMode:       getEnv("GIN_MODE", "debug"),
		Port:          getEnv("PORT", "8080"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFile:       getEnv("LOG_FILE", ""),
		ScheduleFile:  getEnv("SCHEDULE_CONFIG", ""),
	}

	switch cfg.DBDriver {
	case "mysql", "postgres", "sqlite":
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	scheduling, err := LoadScheduling(cfg.ScheduleFile)
	if err != nil {
		return nil, err
	}
	cfg.Scheduling = scheduling

	return cfg, nil
}

// DefaultScheduling returns the built-in scheduling settings.
func DefaultScheduling() *Scheduling {
	return &Scheduling{
		Recurrence: RecurrenceConfig{
			FutureHorizonYears:       defaultHorizonYears,
			MinFutureEventsThreshold: defaultMinFuture,
			MaxFutureEvents:          defaultMaxFuture,
		},
		RefillCron:    defaultRefillCron,
		RefillTimeout: defaultTimeout,
		Timezone:      defaultTimezone,
	}
}

// LoadScheduling reads the YAML scheduling file. An empty path or a missing
// file yields the defaults.
func LoadScheduling(path string) (*Scheduling, error) {
	s := DefaultScheduling()
	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to read schedule config: %w", err)
	}

	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("failed to parse schedule config: %w", err)
	}

	s.Normalize()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Normalize fills zero values with defaults.
func (s *Scheduling) Normalize() {
	if s.Recurrence.FutureHorizonYears <= 0 {
		s.Recurrence.FutureHorizonYears = defaultHorizonYears
	}
	if s.Recurrence.MinFutureEventsThreshold <= 0 {
		s.Recurrence.MinFutureEventsThreshold = defaultMinFuture
	}
	if s.Recurrence.MaxFutureEvents <= 0 {
		s.Recurrence.MaxFutureEvents = defaultMaxFuture
	}
	if strings.TrimSpace(s.RefillCron) == "" {
		s.RefillCron = defaultRefillCron
	}
	if s.RefillTimeout <= 0 {
		s.RefillTimeout = defaultTimeout
	}
	if s.Timezone == "" {
		s.Timezone = defaultTimezone
	}
}

// Validate rejects settings that can never be satisfied.
func (s *Scheduling) Validate() error {
	if s.Recurrence.MinFutureEventsThreshold > s.Recurrence.MaxFutureEvents {
		return fmt.Errorf("min_future_events_threshold (%d) exceeds max_future_events (%d)",
			s.Recurrence.MinFutureEventsThreshold, s.Recurrence.MaxFutureEvents)
	}
	if _, err := time.LoadLocation(s.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", s.Timezone, err)
	}
	return nil
}

// Location resolves Timezone, falling back to UTC.
func (s *Scheduling) Location() *time.Location {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
