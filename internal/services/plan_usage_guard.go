package services

import (
	"context"

	"github.com/yukikurage/household-task-api/internal/clock"
	apierrors "github.com/yukikurage/household-task-api/internal/errors"
	"github.com/yukikurage/household-task-api/internal/models"
	"github.com/yukikurage/household-task-api/internal/repository"
)

// PlanUsageGuard compares a household's usage counters against its plan.
//
// The check and the insert it protects are separate statements, so two
// concurrent adders can both pass WouldExceedLimit and together overshoot the
// maximum. UpdateUsage is a full recount and reports the real value afterwards.
type PlanUsageGuard struct {
	store *repository.Store
	clock clock.Clock
}

// NewPlanUsageGuard creates a new PlanUsageGuard
func NewPlanUsageGuard(store *repository.Store, clk clock.Clock) *PlanUsageGuard {
	return &PlanUsageGuard{store: store, clock: clk}
}

// WithStore returns a guard bound to store, typically a transaction.
func (g *PlanUsageGuard) WithStore(store *repository.Store) *PlanUsageGuard {
	return &PlanUsageGuard{store: store, clock: g.clock}
}

// ExceedsLimit reports whether adding one more item to current would pass
// maximum. A nil maximum is unlimited.
func ExceedsLimit(current int, maximum *int) bool {
	if maximum == nil {
		return false
	}
	return current+1 > *maximum
}

// WouldExceedLimit reports whether adding one item of usageType would exceed the plan.
func (g *PlanUsageGuard) WouldExceedLimit(ctx context.Context, householdID uint64, usageType models.UsageType) (bool, error) {
	if !usageType.Valid() {
		return false, ErrInvalidUsageType
	}

	household, err := g.loadHousehold(ctx, householdID)
	if err != nil {
		return false, err
	}

	maximum := household.PlanType.MaxFor(usageType)
	if maximum == nil {
		return false, nil
	}

	current, err := g.currentValue(ctx, householdID, usageType)
	if err != nil {
		return false, err
	}
	return ExceedsLimit(current, maximum), nil
}

// EnsureWithinLimit returns a LimitExceeded error when WouldExceedLimit is true.
func (g *PlanUsageGuard) EnsureWithinLimit(ctx context.Context, householdID uint64, usageType models.UsageType) error {
	exceeded, err := g.WouldExceedLimit(ctx, householdID, usageType)
	if err != nil {
		return err
	}
	if !exceeded {
		return nil
	}
	if usageType == models.UsageHouseholdMembers {
		return ErrMemberLimitExceeded
	}
	return ErrTaskLimitExceeded
}

// UpdateUsage recounts usageType from the owning rows and stores the result.
func (g *PlanUsageGuard) UpdateUsage(ctx context.Context, householdID uint64, usageType models.UsageType) (*models.PlanUsage, error) {
	if !usageType.Valid() {
		return nil, ErrInvalidUsageType
	}

	household, err := g.loadHousehold(ctx, householdID)
	if err != nil {
		return nil, err
	}

	current, err := g.count(ctx, householdID, usageType)
	if err != nil {
		return nil, err
	}

	usage := &models.PlanUsage{
		HouseholdID:  householdID,
		UsageType:    usageType,
		CurrentValue: current,
		MaxValue:     household.PlanType.MaxFor(usageType),
		AsOfDate:     g.clock.Now(),
	}
	if err := g.store.Plans.UpsertUsage(ctx, usage); err != nil {
		return nil, apierrors.Unexpected("failed to update plan usage", err)
	}
	return usage, nil
}

// Usage recounts and returns every counter of a household.
func (g *PlanUsageGuard) Usage(ctx context.Context, householdID uint64) ([]models.PlanUsage, error) {
	usageTypes := []models.UsageType{models.UsageTasks, models.UsageHouseholdMembers}
	usages := make([]models.PlanUsage, 0, len(usageTypes))
	for _, usageType := range usageTypes {
		usage, err := g.UpdateUsage(ctx, householdID, usageType)
		if err != nil {
			return nil, err
		}
		usages = append(usages, *usage)
	}
	return usages, nil
}

func (g *PlanUsageGuard) loadHousehold(ctx context.Context, householdID uint64) (*models.Household, error) {
	household, err := g.store.Households.LoadHouseholdWithPlan(ctx, householdID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrHouseholdNotFound
		}
		return nil, apierrors.Unexpected("failed to load household", err)
	}
	return household, nil
}

// currentValue prefers the stored counter and falls back to a recount.
func (g *PlanUsageGuard) currentValue(ctx context.Context, householdID uint64, usageType models.UsageType) (int, error) {
	usage, err := g.store.Plans.FindUsage(ctx, householdID, usageType)
	if err == nil {
		return usage.CurrentValue, nil
	}
	if !isNotFound(err) {
		return 0, apierrors.Unexpected("failed to load plan usage", err)
	}
	return g.count(ctx, householdID, usageType)
}

func (g *PlanUsageGuard) count(ctx context.Context, householdID uint64, usageType models.UsageType) (int, error) {
	var (
		n   int
		err error
	)
	switch usageType {
	case models.UsageHouseholdMembers:
		n, err = g.store.Households.CountActiveMembers(ctx, householdID)
	default:
		n, err = g.store.Tasks.CountActiveTasks(ctx, householdID)
	}
	if err != nil {
		return 0, apierrors.Unexpected("failed to count usage", err)
	}
	return n, nil
}
