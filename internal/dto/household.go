package dto

import (
	"time"

	"github.com/yukikurage/household-task-api/internal/models"
)

// HouseholdDTO represents a household in API responses
type HouseholdDTO struct {
	ID         uint64   `json:"id"`
	Name       string   `json:"name"`
	InviteCode string   `json:"invite_code,omitempty"`
	Plan       *PlanDTO `json:"plan,omitempty"`
}

// HouseholdWithRoleDTO represents a household with the user's role
type HouseholdWithRoleDTO struct {
	HouseholdDTO
	Role models.HouseholdRole `json:"role"`
}

// MemberDTO represents a member of a household
type MemberDTO struct {
	User     UserDTO              `json:"user"`
	Role     models.HouseholdRole `json:"role"`
	JoinedAt time.Time            `json:"joined_at"`
}

// HouseholdDetailDTO represents detailed household information
type HouseholdDetailDTO struct {
	HouseholdDTO
	Members  []MemberDTO          `json:"members"`
	YourRole models.HouseholdRole `json:"your_role"`
}

// PlanDTO represents a plan type
type PlanDTO struct {
	Name                string `json:"name"`
	MaxTasks            *int   `json:"max_tasks"`
	MaxHouseholdMembers *int   `json:"max_household_members"`
	IncludesHistory     bool   `json:"includes_history"`
}

// UsageDTO represents one usage counter
type UsageDTO struct {
	UsageType    models.UsageType `json:"usage_type"`
	CurrentValue int              `json:"current_value"`
	MaxValue     *int             `json:"max_value"`
	AsOfDate     time.Time        `json:"as_of_date"`
}

// ToHouseholdDTO converts a Household model to HouseholdDTO. The invite code
// is only shown to members.
func ToHouseholdDTO(household models.Household, includeInviteCode bool) HouseholdDTO {
	dto := HouseholdDTO{
		ID:   household.ID,
		Name: household.Name,
	}
	if includeInviteCode {
		dto.InviteCode = household.InviteCode
	}
	if household.PlanType.ID != 0 {
		plan := ToPlanDTO(household.PlanType)
		dto.Plan = &plan
	}
	return dto
}

// ToHouseholdWithRoleDTO converts a membership to DTO with role
func ToHouseholdWithRoleDTO(member models.HouseholdMember) HouseholdWithRoleDTO {
	return HouseholdWithRoleDTO{
		HouseholdDTO: ToHouseholdDTO(member.Household, true),
		Role:         member.Role,
	}
}

// ToMemberDTO converts a membership with its user preloaded
func ToMemberDTO(member models.HouseholdMember) MemberDTO {
	return MemberDTO{
		User:     ToUserDTO(member.User),
		Role:     member.Role,
		JoinedAt: member.JoinedAt,
	}
}

// ToHouseholdDetailDTO builds the detail view for the member yourRole belongs to
func ToHouseholdDetailDTO(household models.Household, members []models.HouseholdMember, yourRole models.HouseholdRole) HouseholdDetailDTO {
	memberDTOs := make([]MemberDTO, len(members))
	for i, member := range members {
		memberDTOs[i] = ToMemberDTO(member)
	}
	return HouseholdDetailDTO{
		HouseholdDTO: ToHouseholdDTO(household, true),
		Members:      memberDTOs,
		YourRole:     yourRole,
	}
}

func ToPlanDTO(plan models.PlanType) PlanDTO {
	return PlanDTO{
		Name:                plan.Name,
		MaxTasks:            plan.MaxTasks,
		MaxHouseholdMembers: plan.MaxHouseholdMembers,
		IncludesHistory:     plan.IncludesHistory,
	}
}

func ToUsageDTO(usage models.PlanUsage) UsageDTO {
	return UsageDTO{
		UsageType:    usage.UsageType,
		CurrentValue: usage.CurrentValue,
		MaxValue:     usage.MaxValue,
		AsOfDate:     usage.AsOfDate,
	}
}
