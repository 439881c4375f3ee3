package models

import (
	"time"

	"gorm.io/gorm"
)

type Household struct {
	ID         uint64         `gorm:"primarykey" json:"id"`
	Name       string         `gorm:"type:varchar(255);not null" json:"name"`
	InviteCode string         `gorm:"type:varchar(50);uniqueIndex;not null" json:"invite_code"`
	PlanTypeID uint64         `gorm:"not null" json:"plan_type_id"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	PlanType PlanType          `gorm:"foreignKey:PlanTypeID" json:"plan_type,omitempty"`
	Members  []HouseholdMember `gorm:"foreignKey:HouseholdID" json:"members,omitempty"`
}

type HouseholdRole string

const (
	RoleOwner  HouseholdRole = "owner"
	RoleMember HouseholdRole = "member"
)

// HouseholdMember is a user's membership. A soft-deleted row is a former member.
type HouseholdMember struct {
	HouseholdID uint64         `gorm:"primarykey" json:"household_id"`
	UserID      uint64         `gorm:"primarykey" json:"user_id"`
	Role        HouseholdRole  `gorm:"type:varchar(20);not null" json:"role"`
	JoinedAt    time.Time      `json:"joined_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Household Household `gorm:"foreignKey:HouseholdID" json:"household,omitempty"`
	User      User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
