package repository

import (
	"context"
	"time"

	"github.com/yukikurage/household-task-api/internal/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// CreateWithPersonalHousehold creates a user, their personal household,
	// and corresponding membership within a single transaction.
	CreateWithPersonalHousehold(ctx context.Context, user *models.User, household *models.Household, member *models.HouseholdMember) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uint64) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(ctx context.Context, username string) (*models.User, error)
}

// HouseholdRepository defines the interface for household data access
type HouseholdRepository interface {
	// Create creates a new household
	Create(ctx context.Context, household *models.Household) error

	// FindByID finds a household by ID
	FindByID(ctx context.Context, id uint64) (*models.Household, error)

	// LoadHouseholdWithPlan finds a household with its PlanType populated
	LoadHouseholdWithPlan(ctx context.Context, id uint64) (*models.Household, error)

	// FindByInviteCode finds a household by invite code
	FindByInviteCode(ctx context.Context, code string) (*models.Household, error)

	// Update updates a household
	Update(ctx context.Context, household *models.Household) error

	// Delete soft deletes a household with its templates, events and memberships
	Delete(ctx context.Context, id uint64) error

	// ListIDs returns the IDs of all active households
	ListIDs(ctx context.Context) ([]uint64, error)

	// AddMember adds a member, reviving a previously removed membership
	AddMember(ctx context.Context, member *models.HouseholdMember) error

	// RemoveMember soft deletes a membership
	RemoveMember(ctx context.Context, householdID, userID uint64) error

	// FindMember finds an active membership
	FindMember(ctx context.Context, householdID, userID uint64) (*models.HouseholdMember, error)

	// ListMembersByUserID lists all households a user is a member of
	ListMembersByUserID(ctx context.Context, userID uint64) ([]models.HouseholdMember, error)

	// ListMembers lists all members of a household
	ListMembers(ctx context.Context, householdID uint64) ([]models.HouseholdMember, error)

	// CountActiveMembers counts members that have not been removed
	CountActiveMembers(ctx context.Context, householdID uint64) (int, error)
}

// PlanRepository defines the interface for plan and usage data access
type PlanRepository interface {
	// FindPlanByID finds a plan type by ID
	FindPlanByID(ctx context.Context, id uint64) (*models.PlanType, error)

	// FindPlanByName finds a plan type by name
	FindPlanByName(ctx context.Context, name string) (*models.PlanType, error)

	// ListPlans lists all plan types
	ListPlans(ctx context.Context) ([]models.PlanType, error)

	// FindUsage finds the stored counter for a household and usage type
	FindUsage(ctx context.Context, householdID uint64, usageType models.UsageType) (*models.PlanUsage, error)

	// UpsertUsage inserts or overwrites a usage counter
	UpsertUsage(ctx context.Context, usage *models.PlanUsage) error
}

// TaskTemplateRepository defines the interface for task template data access
type TaskTemplateRepository interface {
	// Create creates a new template
	Create(ctx context.Context, template *models.TaskTemplate) error

	// LoadTaskTemplate finds a template that has not been deleted
	LoadTaskTemplate(ctx context.Context, id uint64) (*models.TaskTemplate, error)

	// List retrieves templates with filtering and pagination
	List(ctx context.Context, filter TaskTemplateFilter) ([]models.TaskTemplate, int64, error)

	// ListGenerating lists active recurring templates of a household
	ListGenerating(ctx context.Context, householdID uint64) ([]models.TaskTemplate, error)

	// Update updates a template
	Update(ctx context.Context, template *models.TaskTemplate) error

	// Delete soft deletes a template
	Delete(ctx context.Context, id uint64) error

	// CountActiveTasks counts active, non-deleted templates
	CountActiveTasks(ctx context.Context, householdID uint64) (int, error)
}

// TaskTemplateFilter holds filtering options for listing templates
type TaskTemplateFilter struct {
	HouseholdID uint64
	ActiveOnly  bool
	CategoryID  *uint64
	Page        int
	PageSize    int
}

// EventRepository defines the interface for event data access
type EventRepository interface {
	// LoadEventWithTemplate finds an event with its template populated.
	// A soft-deleted template is left nil.
	LoadEventWithTemplate(ctx context.Context, id uint64) (*models.Event, error)

	// InsertEvent creates a new event
	InsertEvent(ctx context.Context, event *models.Event) error

	// InsertEvents creates several events in one statement
	InsertEvents(ctx context.Context, events []models.Event) error

	// SaveEvent writes every column of an existing event
	SaveEvent(ctx context.Context, event *models.Event) error

	// Delete soft deletes an event
	Delete(ctx context.Context, id uint64) error

	// List retrieves events with filtering and pagination
	List(ctx context.Context, filter EventFilter) ([]models.Event, int64, error)

	// CountOpenAfter counts pending or postponed events of a template due after t
	CountOpenAfter(ctx context.Context, templateID uint64, t time.Time) (int, error)

	// LatestScheduled finds the template's non-cancelled event with the latest due date
	LatestScheduled(ctx context.Context, templateID uint64) (*models.Event, error)

	// EarliestOpen finds the template's pending or postponed event with the earliest due date
	EarliestOpen(ctx context.Context, templateID uint64) (*models.Event, error)

	// InsertEventHistory archives a completed event
	InsertEventHistory(ctx context.Context, history *models.EventHistory) error

	// ListHistory lists archived completions of a household, newest first
	ListHistory(ctx context.Context, householdID uint64, page, pageSize int) ([]models.EventHistory, int64, error)
}

// EventFilter holds filtering options for listing events
type EventFilter struct {
	HouseholdID    uint64
	TaskTemplateID *uint64
	Status         *models.EventStatus
	AssigneeID     *uint64
	DueFrom        *time.Time
	DueTo          *time.Time
	Page           int
	PageSize       int
}
