package models

import "time"

// Plan names seeded by the migrations.
const (
	PlanFree    = "free"
	PlanPremium = "premium"
)

// PlanType is a subscription tier. A nil maximum means unlimited.
type PlanType struct {
	ID                  uint64    `gorm:"primarykey" json:"id"`
	Name                string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"name"`
	MaxTasks            *int      `json:"max_tasks"`
	MaxHouseholdMembers *int      `json:"max_household_members"`
	IncludesHistory     bool      `gorm:"not null;default:false" json:"includes_history"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// MaxFor returns the plan's maximum for a usage type.
func (p PlanType) MaxFor(usageType UsageType) *int {
	switch usageType {
	case UsageTasks:
		return p.MaxTasks
	case UsageHouseholdMembers:
		return p.MaxHouseholdMembers
	default:
		return nil
	}
}

type UsageType string

const (
	UsageTasks            UsageType = "tasks"
	UsageHouseholdMembers UsageType = "household_members"
)

// Valid reports whether u is a known usage type.
func (u UsageType) Valid() bool {
	return u == UsageTasks || u == UsageHouseholdMembers
}

// PlanUsage is a recomputed per-household counter.
type PlanUsage struct {
	ID           uint64    `gorm:"primarykey" json:"id"`
	HouseholdID  uint64    `gorm:"not null;uniqueIndex:idx_plan_usage_household_type" json:"household_id"`
	UsageType    UsageType `gorm:"type:varchar(30);not null;uniqueIndex:idx_plan_usage_household_type" json:"usage_type"`
	CurrentValue int       `gorm:"not null;default:0" json:"current_value"`
	MaxValue     *int      `json:"max_value"`
	AsOfDate     time.Time `json:"as_of_date"`
	UpdatedAt    time.Time `json:"updated_at"`
}
