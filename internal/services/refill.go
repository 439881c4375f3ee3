package services

import (
	"context"
	"time"

	"github.com/yukikurage/household-task-api/internal/clock"
	apierrors "github.com/yukikurage/household-task-api/internal/errors"
	"github.com/yukikurage/household-task-api/internal/logger"
	"github.com/yukikurage/household-task-api/internal/models"
	"github.com/yukikurage/household-task-api/internal/recurrence"
	"github.com/yukikurage/household-task-api/internal/repository"
)

// RefillEvents tops up future pending events for every active recurring
// template of a household and returns how many were created. It only adds
// events, so repeated runs settle once every template is above the threshold.
func (s *EventService) RefillEvents(ctx context.Context, householdID uint64) (int, error) {
	if _, err := s.store.Households.FindByID(ctx, householdID); err != nil {
		if isNotFound(err) {
			return 0, ErrHouseholdNotFound
		}
		return 0, apierrors.Unexpected("failed to load household", err)
	}

	now := s.clock.Now().UTC()
	generated := 0
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		generated = 0
		templates, err := tx.Tasks.ListGenerating(ctx, householdID)
		if err != nil {
			return apierrors.Unexpected("failed to list recurring tasks", err)
		}

		for i := range templates {
			n, err := s.refillTemplate(ctx, tx, &templates[i], now)
			if err != nil {
				return err
			}
			generated += n
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if generated > 0 {
		logger.Info("Refilled events", "household_id", householdID, "generated", generated)
	}
	return generated, nil
}

// RefillAll refills every household. A failing household is logged and the
// run continues; the first error is returned at the end.
func (s *EventService) RefillAll(ctx context.Context) (int, error) {
	ids, err := s.store.Households.ListIDs(ctx)
	if err != nil {
		return 0, apierrors.Unexpected("failed to list households", err)
	}

	total := 0
	var firstErr error
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return total, err
		}

		n, err := s.RefillEvents(ctx, id)
		if err != nil {
			logger.Error("Failed to refill household", "household_id", id, "err", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		total += n
	}
	return total, firstErr
}

func (s *EventService) refillTemplate(ctx context.Context, tx *repository.Store, template *models.TaskTemplate, now time.Time) (int, error) {
	if !template.Generates() {
		return 0, nil
	}

	open, err := tx.Events.CountOpenAfter(ctx, template.ID, now)
	if err != nil {
		return 0, apierrors.Unexpected("failed to count future events", err)
	}
	if open >= s.recurrence.MinFutureEventsThreshold {
		return 0, nil
	}

	anchor := clock.StartOfDay(now)
	var assigneeID *uint64
	latest, err := tx.Events.LatestScheduled(ctx, template.ID)
	switch {
	case err == nil:
		anchor = latest.DueDate
		assigneeID = latest.AssigneeID
	case !isNotFound(err):
		return 0, apierrors.Unexpected("failed to load latest event", err)
	}

	horizon := now.AddDate(s.recurrence.FutureHorizonYears, 0, 0)
	dates, err := recurrence.Upcoming(anchor, template.Interval(), now, horizon, s.recurrence.MaxFutureEvents-open)
	if err != nil {
		return 0, apierrors.Unexpected("failed to compute upcoming due dates", err)
	}
	if len(dates) == 0 {
		return 0, nil
	}

	templateID := template.ID
	events := make([]models.Event, 0, len(dates))
	for _, due := range dates {
		events = append(events, models.Event{
			TaskTemplateID: &templateID,
			HouseholdID:    template.HouseholdID,
			AssigneeID:     assigneeID,
			DueDate:        due,
			Status:         models.EventStatusPending,
			Priority:       template.DefaultPriority,
			CreatedByID:    template.CreatedByID,
		})
	}
	if err := tx.Events.InsertEvents(ctx, events); err != nil {
		return 0, apierrors.Unexpected("failed to create events", err)
	}
	return len(events), nil
}
