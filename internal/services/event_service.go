package services

import (
	"context"
	"strings"
	"time"

	"github.com/yukikurage/household-task-api/internal/clock"
	"github.com/yukikurage/household-task-api/internal/config"
	"github.com/yukikurage/household-task-api/internal/constants"
	apierrors "github.com/yukikurage/household-task-api/internal/errors"
	"github.com/yukikurage/household-task-api/internal/logger"
	"github.com/yukikurage/household-task-api/internal/models"
	"github.com/yukikurage/household-task-api/internal/recurrence"
	"github.com/yukikurage/household-task-api/internal/repository"
)

// EventService owns the event state machine:
//
//	pending   -> completed | postponed | cancelled
//	postponed -> completed | postponed | cancelled
//
// completed and cancelled are terminal.
type EventService struct {
	store      *repository.Store
	clock      clock.Clock
	recurrence config.RecurrenceConfig
}

// NewEventService creates a new EventService
func NewEventService(store *repository.Store, clk clock.Clock, cfg config.RecurrenceConfig) *EventService {
	return &EventService{
		store:      store,
		clock:      clk,
		recurrence: cfg,
	}
}

// CreateEventInput represents input for creating an event
type CreateEventInput struct {
	HouseholdID    uint64
	TaskTemplateID *uint64
	AssigneeID     *uint64
	DueDate        time.Time
	Priority       *models.Priority
	Notes          string
	CreatedBy      uint64
}

// CompleteEventInput represents input for completing an event
type CompleteEventInput struct {
	EventID        uint64
	CompletionDate *time.Time
	Notes          *string
	CompletedBy    uint64
}

// CompletionResult is the completed event and the successor it scheduled, if any.
type CompletionResult struct {
	Event *models.Event
	Next  *models.Event
}

// ListEventsInput represents filters for listing events
type ListEventsInput struct {
	HouseholdID    uint64
	TaskTemplateID *uint64
	Status         *models.EventStatus
	AssigneeID     *uint64
	From           *time.Time
	To             *time.Time
	Page           int
	PageSize       int
}

// CreateEvent schedules a pending event, optionally generated from a template.
func (s *EventService) CreateEvent(ctx context.Context, input CreateEventInput) (*models.Event, error) {
	return s.createEvent(ctx, s.store, input)
}

func (s *EventService) createEvent(ctx context.Context, store *repository.Store, input CreateEventInput) (*models.Event, error) {
	if input.DueDate.IsZero() {
		return nil, ErrDueDateRequired
	}

	priority := models.PriorityMedium
	if input.TaskTemplateID != nil {
		template, err := store.Tasks.LoadTaskTemplate(ctx, *input.TaskTemplateID)
		if err != nil {
			if isNotFound(err) {
				return nil, ErrTaskNotFound
			}
			return nil, apierrors.Unexpected("failed to load task", err)
		}
		if template.HouseholdID != input.HouseholdID {
			return nil, ErrTemplateMismatch
		}
		priority = template.DefaultPriority
	} else if _, err := store.Households.FindByID(ctx, input.HouseholdID); err != nil {
		if isNotFound(err) {
			return nil, ErrHouseholdNotFound
		}
		return nil, apierrors.Unexpected("failed to load household", err)
	}

	if input.Priority != nil {
		if !input.Priority.Valid() {
			return nil, ErrInvalidPriority
		}
		priority = *input.Priority
	}

	if input.AssigneeID != nil {
		if err := ensureMember(ctx, store, input.HouseholdID, *input.AssigneeID, ErrInvalidAssignee); err != nil {
			return nil, err
		}
	}

	event := &models.Event{
		TaskTemplateID: input.TaskTemplateID,
		HouseholdID:    input.HouseholdID,
		AssigneeID:     input.AssigneeID,
		DueDate:        input.DueDate.UTC(),
		Status:         models.EventStatusPending,
		Priority:       priority,
		Notes:          input.Notes,
		CreatedByID:    input.CreatedBy,
	}
	if err := store.Events.InsertEvent(ctx, event); err != nil {
		return nil, apierrors.Unexpected("failed to create event", err)
	}
	return event, nil
}

// CompleteEvent marks an event completed, schedules its successor when the
// template recurs and archives a history snapshot when the plan keeps history.
// All writes share one transaction.
func (s *EventService) CompleteEvent(ctx context.Context, input CompleteEventInput) (*CompletionResult, error) {
	var result *CompletionResult
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		result, err = s.completeEvent(ctx, tx, input)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *EventService) completeEvent(ctx context.Context, tx *repository.Store, input CompleteEventInput) (*CompletionResult, error) {
	event, err := loadEvent(ctx, tx, input.EventID)
	if err != nil {
		return nil, err
	}

	if err := ensureTransitionAllowed(event); err != nil {
		return nil, err
	}

	completionDate := s.clock.Now().UTC()
	if input.CompletionDate != nil {
		completionDate = input.CompletionDate.UTC()
	}

	event.Status = models.EventStatusCompleted
	event.CompletionDate = &completionDate
	if input.Notes != nil {
		event.CompletionNotes = *input.Notes
	}
	if input.CompletedBy != 0 {
		completedBy := input.CompletedBy
		event.CompletedByID = &completedBy
	}

	if err := tx.Events.SaveEvent(ctx, event); err != nil {
		return nil, apierrors.Unexpected("failed to save event", err)
	}

	next, err := s.scheduleSuccessor(ctx, tx, event)
	if err != nil {
		return nil, err
	}

	if err := s.archive(ctx, tx, event); err != nil {
		return nil, err
	}

	return &CompletionResult{Event: event, Next: next}, nil
}

// scheduleSuccessor inserts the next occurrence, anchored on the completed
// event's due date rather than its completion date.
func (s *EventService) scheduleSuccessor(ctx context.Context, tx *repository.Store, event *models.Event) (*models.Event, error) {
	template := event.TaskTemplate
	switch {
	case event.TaskTemplateID == nil:
		return nil, nil
	case template == nil || !models.IsActive(template.DeletedAt):
		logger.Warn("Task template not found, skipping recurrence",
			"event_id", event.ID, "task_template_id", *event.TaskTemplateID)
		return nil, nil
	case !template.Generates():
		logger.Info("Task template inactive or without interval, skipping recurrence",
			"event_id", event.ID, "task_template_id", template.ID)
		return nil, nil
	}

	dueDate, err := recurrence.NextDueDate(event.DueDate, template.Interval())
	if err != nil {
		return nil, apierrors.Unexpected("failed to compute next due date", err)
	}

	next := &models.Event{
		TaskTemplateID: event.TaskTemplateID,
		HouseholdID:    event.HouseholdID,
		AssigneeID:     event.AssigneeID,
		DueDate:        dueDate,
		Status:         models.EventStatusPending,
		Priority:       event.Priority,
		CreatedByID:    event.CreatedByID,
	}
	if err := tx.Events.InsertEvent(ctx, next); err != nil {
		return nil, apierrors.Unexpected("failed to create next event", err)
	}
	return next, nil
}

func (s *EventService) archive(ctx context.Context, tx *repository.Store, event *models.Event) error {
	household, err := tx.Households.LoadHouseholdWithPlan(ctx, event.HouseholdID)
	if err != nil {
		if isNotFound(err) {
			return ErrHouseholdNotFound
		}
		return apierrors.Unexpected("failed to load household", err)
	}
	if !household.PlanType.IncludesHistory {
		return nil
	}

	history := &models.EventHistory{
		EventID:        event.ID,
		TaskTemplateID: event.TaskTemplateID,
		HouseholdID:    event.HouseholdID,
		AssigneeID:     event.AssigneeID,
		CompletedByID:  event.CompletedByID,
		DueDate:        event.DueDate,
		CompletionDate: *event.CompletionDate,
		Notes:          event.CompletionNotes,
	}
	if event.TaskTemplate != nil {
		history.TaskName = event.TaskTemplate.Name
	}
	if err := tx.Events.InsertEventHistory(ctx, history); err != nil {
		return apierrors.Unexpected("failed to archive event", err)
	}
	return nil
}

// PostponeEvent moves an open event to a later due date. The first
// postponement remembers the original due date.
func (s *EventService) PostponeEvent(ctx context.Context, eventID uint64, newDueDate time.Time, reason string) (*models.Event, error) {
	if len(reason) > constants.MaxPostponeReason {
		return nil, ErrPostponeReasonTooLong
	}

	event, err := loadEvent(ctx, s.store, eventID)
	if err != nil {
		return nil, err
	}

	if err := ensureTransitionAllowed(event); err != nil {
		return nil, err
	}

	if !newDueDate.After(s.clock.Now()) {
		return nil, ErrPostponeNotInFuture
	}

	if event.PostponedFromDate == nil {
		original := event.DueDate
		event.PostponedFromDate = &original
	}
	event.DueDate = newDueDate.UTC()
	event.Status = models.EventStatusPostponed
	event.PostponeReason = reason

	if err := s.store.Events.SaveEvent(ctx, event); err != nil {
		return nil, apierrors.Unexpected("failed to postpone event", err)
	}
	return event, nil
}

// CancelEvent cancels an open event and records the reason in its completion notes.
func (s *EventService) CancelEvent(ctx context.Context, eventID uint64, reason string) (*models.Event, error) {
	event, err := loadEvent(ctx, s.store, eventID)
	if err != nil {
		return nil, err
	}

	if err := ensureTransitionAllowed(event); err != nil {
		return nil, err
	}

	event.Status = models.EventStatusCancelled
	event.CompletionNotes = CancellationNote(reason)

	if err := s.store.Events.SaveEvent(ctx, event); err != nil {
		return nil, apierrors.Unexpected("failed to cancel event", err)
	}
	return event, nil
}

// CancellationNote formats the completion notes of a cancelled event.
func CancellationNote(reason string) string {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return constants.CancelledNote
	}
	return constants.CancelledNotePrefix + reason
}

// DeleteEvent soft deletes an event without touching its status.
func (s *EventService) DeleteEvent(ctx context.Context, eventID uint64) error {
	if _, err := loadEvent(ctx, s.store, eventID); err != nil {
		return err
	}
	if err := s.store.Events.Delete(ctx, eventID); err != nil {
		return apierrors.Unexpected("failed to delete event", err)
	}
	return nil
}

// GetEvent returns an event with its template.
func (s *EventService) GetEvent(ctx context.Context, eventID uint64) (*models.Event, error) {
	return loadEvent(ctx, s.store, eventID)
}

// ListEvents returns a household's events ordered by due date.
func (s *EventService) ListEvents(ctx context.Context, input ListEventsInput) ([]models.Event, int64, error) {
	if input.Status != nil && !input.Status.Valid() {
		return nil, 0, apierrors.New(apierrors.KindValidation, "unknown event status")
	}
	if input.From != nil && input.To != nil && !input.From.Before(*input.To) {
		return nil, 0, ErrInvalidDateRange
	}

	events, total, err := s.store.Events.List(ctx, repository.EventFilter{
		HouseholdID:    input.HouseholdID,
		TaskTemplateID: input.TaskTemplateID,
		Status:         input.Status,
		AssigneeID:     input.AssigneeID,
		DueFrom:        input.From,
		DueTo:          input.To,
		Page:           input.Page,
		PageSize:       input.PageSize,
	})
	if err != nil {
		return nil, 0, apierrors.Unexpected("failed to list events", err)
	}
	return events, total, nil
}

// ListHistory returns the archived completions of a household, newest first.
func (s *EventService) ListHistory(ctx context.Context, householdID uint64, page, pageSize int) ([]models.EventHistory, int64, error) {
	history, total, err := s.store.Events.ListHistory(ctx, householdID, page, pageSize)
	if err != nil {
		return nil, 0, apierrors.Unexpected("failed to list history", err)
	}
	return history, total, nil
}

// ensureTransitionAllowed refuses any status change of a completed or cancelled event.
func ensureTransitionAllowed(event *models.Event) error {
	if !event.Status.IsTerminal() {
		return nil
	}
	if event.Status == models.EventStatusCancelled {
		return ErrEventCancelled
	}
	return ErrEventAlreadyCompleted
}

func loadEvent(ctx context.Context, store *repository.Store, eventID uint64) (*models.Event, error) {
	event, err := store.Events.LoadEventWithTemplate(ctx, eventID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrEventNotFound
		}
		return nil, apierrors.Unexpected("failed to load event", err)
	}
	return event, nil
}

// ensureMember returns notMember unless userID is an active member of the household.
func ensureMember(ctx context.Context, store *repository.Store, householdID, userID uint64, notMember error) error {
	if _, err := store.Households.FindMember(ctx, householdID, userID); err != nil {
		if isNotFound(err) {
			return notMember
		}
		return apierrors.Unexpected("failed to check membership", err)
	}
	return nil
}
