package services

import (
	"context"
	"strings"

	"github.com/yukikurage/household-task-api/internal/clock"
	apierrors "github.com/yukikurage/household-task-api/internal/errors"
	"github.com/yukikurage/household-task-api/internal/models"
	"github.com/yukikurage/household-task-api/internal/repository"
	"github.com/yukikurage/household-task-api/internal/utils"
)

// HouseholdService provides business logic for household operations.
type HouseholdService struct {
	store *repository.Store
	guard *PlanUsageGuard
	clock clock.Clock
}

// NewHouseholdService creates a new HouseholdService.
func NewHouseholdService(store *repository.Store, guard *PlanUsageGuard, clk clock.Clock) *HouseholdService {
	return &HouseholdService{
		store: store,
		guard: guard,
		clock: clk,
	}
}

// CreateHouseholdInput represents parameters to create a new household.
type CreateHouseholdInput struct {
	Name    string
	OwnerID uint64
}

// CreateHousehold creates a household on the free plan owned by the caller.
func (s *HouseholdService) CreateHousehold(ctx context.Context, input CreateHouseholdInput) (*models.Household, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrInvalidHouseholdName
	}

	plan, err := s.findPlan(ctx, models.PlanFree)
	if err != nil {
		return nil, err
	}

	inviteCode, err := utils.GenerateInviteCode()
	if err != nil {
		return nil, apierrors.Unexpected("failed to generate invite code", err)
	}

	household := &models.Household{
		Name:       name,
		InviteCode: inviteCode,
		PlanTypeID: plan.ID,
	}

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := tx.Households.Create(ctx, household); err != nil {
			return apierrors.Unexpected("failed to create household", err)
		}

		member := &models.HouseholdMember{
			HouseholdID: household.ID,
			UserID:      input.OwnerID,
			Role:        models.RoleOwner,
			JoinedAt:    s.clock.Now(),
		}
		if err := tx.Households.AddMember(ctx, member); err != nil {
			return apierrors.Unexpected("failed to add owner to household", err)
		}

		_, err := s.guard.WithStore(tx).UpdateUsage(ctx, household.ID, models.UsageHouseholdMembers)
		return err
	})
	if err != nil {
		return nil, err
	}

	household.PlanType = *plan
	return household, nil
}

// ListHouseholdsForUser returns the memberships of a user.
func (s *HouseholdService) ListHouseholdsForUser(ctx context.Context, userID uint64) ([]models.HouseholdMember, error) {
	memberships, err := s.store.Households.ListMembersByUserID(ctx, userID)
	if err != nil {
		return nil, apierrors.Unexpected("failed to list households", err)
	}
	return memberships, nil
}

// GetHouseholdWithMembers returns a household with its plan and all of its members.
func (s *HouseholdService) GetHouseholdWithMembers(ctx context.Context, householdID uint64) (*models.Household, []models.HouseholdMember, error) {
	household, err := s.loadHousehold(ctx, householdID)
	if err != nil {
		return nil, nil, err
	}

	members, err := s.store.Households.ListMembers(ctx, householdID)
	if err != nil {
		return nil, nil, apierrors.Unexpected("failed to list household members", err)
	}

	return household, members, nil
}

// UpdateHouseholdName updates a household's name.
func (s *HouseholdService) UpdateHouseholdName(ctx context.Context, householdID uint64, name string) (*models.Household, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidHouseholdName
	}

	household, err := s.loadHousehold(ctx, householdID)
	if err != nil {
		return nil, err
	}

	household.Name = name
	if err := s.store.Households.Update(ctx, household); err != nil {
		return nil, apierrors.Unexpected("failed to update household", err)
	}

	return household, nil
}

// DeleteHousehold soft deletes a household with its tasks, events and memberships.
func (s *HouseholdService) DeleteHousehold(ctx context.Context, householdID uint64) error {
	if _, err := s.loadHousehold(ctx, householdID); err != nil {
		return err
	}

	if err := s.store.Households.Delete(ctx, householdID); err != nil {
		return apierrors.Unexpected("failed to delete household", err)
	}

	return nil
}

// JoinHouseholdByInvite adds a user to a household via invite code.
func (s *HouseholdService) JoinHouseholdByInvite(ctx context.Context, userID uint64, inviteCode string) (*models.Household, error) {
	household, err := s.store.Households.FindByInviteCode(ctx, strings.TrimSpace(inviteCode))
	if err != nil {
		if isNotFound(err) {
			return nil, ErrInvalidInviteCode
		}
		return nil, apierrors.Unexpected("failed to find household by invite code", err)
	}

	if _, err := s.store.Households.FindMember(ctx, household.ID, userID); err == nil {
		return nil, ErrAlreadyMember
	} else if !isNotFound(err) {
		return nil, apierrors.Unexpected("failed to verify membership", err)
	}

	if err := s.guard.EnsureWithinLimit(ctx, household.ID, models.UsageHouseholdMembers); err != nil {
		return nil, err
	}

	member := &models.HouseholdMember{
		HouseholdID: household.ID,
		UserID:      userID,
		Role:        models.RoleMember,
		JoinedAt:    s.clock.Now(),
	}
	if err := s.store.Households.AddMember(ctx, member); err != nil {
		return nil, apierrors.Unexpected("failed to add member to household", err)
	}

	if _, err := s.guard.UpdateUsage(ctx, household.ID, models.UsageHouseholdMembers); err != nil {
		return nil, err
	}

	return household, nil
}

// RegenerateInviteCode generates a new invite code for the household.
func (s *HouseholdService) RegenerateInviteCode(ctx context.Context, householdID uint64) (*models.Household, error) {
	household, err := s.loadHousehold(ctx, householdID)
	if err != nil {
		return nil, err
	}

	code, err := utils.GenerateInviteCode()
	if err != nil {
		return nil, apierrors.Unexpected("failed to generate invite code", err)
	}

	household.InviteCode = code
	if err := s.store.Households.Update(ctx, household); err != nil {
		return nil, apierrors.Unexpected("failed to update invite code", err)
	}

	return household, nil
}

// RemoveMember removes a member from the household.
func (s *HouseholdService) RemoveMember(ctx context.Context, householdID, actorID, targetID uint64) error {
	if targetID == actorID {
		return ErrCannotRemoveYourself
	}

	if err := ensureMember(ctx, s.store, householdID, targetID, ErrMemberNotFound); err != nil {
		return err
	}

	if err := s.store.Households.RemoveMember(ctx, householdID, targetID); err != nil {
		return apierrors.Unexpected("failed to remove member", err)
	}

	if _, err := s.guard.UpdateUsage(ctx, householdID, models.UsageHouseholdMembers); err != nil {
		return err
	}
	return nil
}

// ChangePlan moves a household to another plan. A downgrade below the current
// usage is allowed; further additions are then refused by the guard.
func (s *HouseholdService) ChangePlan(ctx context.Context, householdID uint64, planName string) (*models.Household, error) {
	household, err := s.loadHousehold(ctx, householdID)
	if err != nil {
		return nil, err
	}

	plan, err := s.findPlan(ctx, strings.TrimSpace(planName))
	if err != nil {
		return nil, err
	}

	household.PlanTypeID = plan.ID
	household.PlanType = *plan
	if err := s.store.Households.Update(ctx, household); err != nil {
		return nil, apierrors.Unexpected("failed to change plan", err)
	}

	if _, err := s.guard.Usage(ctx, householdID); err != nil {
		return nil, err
	}
	return household, nil
}

// Usage returns freshly recounted usage counters of a household.
func (s *HouseholdService) Usage(ctx context.Context, householdID uint64) ([]models.PlanUsage, error) {
	return s.guard.Usage(ctx, householdID)
}

// ListPlans returns the plan catalogue.
func (s *HouseholdService) ListPlans(ctx context.Context) ([]models.PlanType, error) {
	plans, err := s.store.Plans.ListPlans(ctx)
	if err != nil {
		return nil, apierrors.Unexpected("failed to list plans", err)
	}
	return plans, nil
}

func (s *HouseholdService) loadHousehold(ctx context.Context, householdID uint64) (*models.Household, error) {
	household, err := s.store.Households.LoadHouseholdWithPlan(ctx, householdID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrHouseholdNotFound
		}
		return nil, apierrors.Unexpected("failed to find household", err)
	}
	return household, nil
}

func (s *HouseholdService) findPlan(ctx context.Context, name string) (*models.PlanType, error) {
	plan, err := s.store.Plans.FindPlanByName(ctx, name)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrPlanNotFound
		}
		return nil, apierrors.Unexpected("failed to find plan", err)
	}
	return plan, nil
}

// EnsureMember returns ErrNotHouseholdMember unless userID belongs to the household.
func (s *HouseholdService) EnsureMember(ctx context.Context, householdID, userID uint64) error {
	return ensureMember(ctx, s.store, householdID, userID, ErrNotHouseholdMember)
}
