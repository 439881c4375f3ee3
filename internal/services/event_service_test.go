package services

import (
	"errors"
	"time"

	apierrors "github.com/yukikurage/household-task-api/internal/errors"
	"github.com/yukikurage/household-task-api/internal/models"
	"github.com/yukikurage/household-task-api/internal/recurrence"
	"gorm.io/gorm"
)

func (suite *ServiceTestSuite) TestCompleteEvent_SuccessorAnchoredOnDueDate() {
	owner := suite.createUser("alice")
	household := suite.createHousehold(models.PlanFree, owner)
	template := suite.createTemplate(household, owner, recurrence.Interval{Months: 1})
	event := suite.createEvent(template, date(2024, 1, 15))

	completedOn := date(2024, 1, 20)
	notes := "done"
	result, err := suite.events.CompleteEvent(suite.ctx, CompleteEventInput{
		EventID:        event.ID,
		CompletionDate: &completedOn,
		Notes:          &notes,
		CompletedBy:    owner.ID,
	})
	suite.Require().NoError(err)

	suite.Equal(models.EventStatusCompleted, result.Event.Status)
	suite.sameTime(completedOn, *result.Event.CompletionDate)
	suite.Equal("done", result.Event.CompletionNotes)

	suite.Require().NotNil(result.Next)
	suite.sameTime(date(2024, 2, 15), result.Next.DueDate)
	suite.Equal(models.EventStatusPending, result.Next.Status)
	suite.Equal(models.PriorityHigh, result.Next.Priority)
	suite.Equal(household.ID, result.Next.HouseholdID)
	suite.Equal(owner.ID, result.Next.CreatedByID)
	suite.Empty(result.Next.Notes)

	stored := suite.reloadEvent(event.ID)
	suite.Equal(models.EventStatusCompleted, stored.Status)
	suite.Require().NotNil(stored.CompletedByID)
	suite.Equal(owner.ID, *stored.CompletedByID)
	suite.Equal(int64(2), suite.countEvents(template.ID))
}

func (suite *ServiceTestSuite) TestCompleteEvent_AppliesComponentsInOrder() {
	owner := suite.createUser("alice")
	household := suite.createHousehold(models.PlanFree, owner)
	template := suite.createTemplate(household, owner, recurrence.Interval{Years: 1, Months: 2, Weeks: 1, Days: 3})
	event := suite.createEvent(template, date(2024, 1, 1))

	result, err := suite.events.CompleteEvent(suite.ctx, CompleteEventInput{EventID: event.ID, CompletedBy: owner.ID})
	suite.Require().NoError(err)
	suite.Require().NotNil(result.Next)
	suite.sameTime(date(2025, 3, 11), result.Next.DueDate)
	suite.sameTime(suite.clock.Now(), *result.Event.CompletionDate)
}

func (suite *ServiceTestSuite) TestCompleteEvent_OneSuccessorForEveryNonZeroInterval() {
	owner := suite.createUser("alice")
	household := suite.createHousehold(models.PlanFree, owner)

	intervals := []recurrence.Interval{
		{Days: 1},
		{Weeks: 2},
		{Months: 1},
		{Months: 1, Days: 1},
		{Years: 1},
		{Years: 2, Weeks: 3},
	}
	base := date(2024, 1, 31)

	for _, interval := range intervals {
		template := suite.createTemplate(household, owner, interval)
		event := suite.createEvent(template, base)

		result, err := suite.events.CompleteEvent(suite.ctx, CompleteEventInput{EventID: event.ID, CompletedBy: owner.ID})
		suite.Require().NoError(err)

		expected, err := recurrence.NextDueDate(base, interval)
		suite.Require().NoError(err)
		suite.Require().NotNil(result.Next, "interval %+v", interval)
		suite.sameTime(expected, result.Next.DueDate)
		suite.Equal(int64(2), suite.countEvents(template.ID), "interval %+v", interval)
	}
}

func (suite *ServiceTestSuite) TestCompleteEvent_ZeroIntervalCreatesNoSuccessor() {
	owner := suite.createUser("alice")
	household := suite.createHousehold(models.PlanFree, owner)
	template := suite.createTemplate(household, owner, recurrence.Interval{})
	event := suite.createEvent(template, date(2024, 1, 15))

	result, err := suite.events.CompleteEvent(suite.ctx, CompleteEventInput{EventID: event.ID, CompletedBy: owner.ID})
	suite.Require().NoError(err)
	suite.Nil(result.Next)
	suite.Equal(int64(1), suite.countEvents(template.ID))
}

func (suite *ServiceTestSuite) TestCompleteEvent_WithoutTemplate() {
	owner := suite.createUser("alice")
	household := suite.createHousehold(models.PlanFree, owner)

	event, err := suite.events.CreateEvent(suite.ctx, CreateEventInput{
		HouseholdID: household.ID,
		DueDate:     date(2024, 1, 15),
		CreatedBy:   owner.ID,
	})
	suite.Require().NoError(err)
	suite.Equal(models.PriorityMedium, event.Priority)

	result, err := suite.events.CompleteEvent(suite.ctx, CompleteEventInput{EventID: event.ID, CompletedBy: owner.ID})
	suite.Require().NoError(err)
	suite.Nil(result.Next)
}

func (suite *ServiceTestSuite) TestCompleteEvent_SkipsDeletedOrInactiveTemplate() {
	owner := suite.createUser("alice")
	household := suite.createHousehold(models.PlanFree, owner)

	deleted := suite.createTemplate(household, owner, recurrence.Interval{Weeks: 1})
	deletedEvent := suite.createEvent(deleted, date(2024, 1, 15))
	suite.Require().NoError(suite.store.Tasks.Delete(suite.ctx, deleted.ID))

	result, err := suite.events.CompleteEvent(suite.ctx, CompleteEventInput{EventID: deletedEvent.ID, CompletedBy: owner.ID})
	suite.Require().NoError(err)
	suite.Nil(result.Next)

	inactive := suite.createTemplate(household, owner, recurrence.Interval{Weeks: 1})
	inactiveEvent := suite.createEvent(inactive, date(2024, 1, 15))
	inactive.IsActive = false
	suite.Require().NoError(suite.store.Tasks.Update(suite.ctx, inactive))

	result, err = suite.events.CompleteEvent(suite.ctx, CompleteEventInput{EventID: inactiveEvent.ID, CompletedBy: owner.ID})
	suite.Require().NoError(err)
	suite.Nil(result.Next)
	suite.Equal(int64(1), suite.countEvents(inactive.ID))
}

func (suite *ServiceTestSuite) TestCompleteEvent_AlreadyCompletedIsConflict() {
	owner := suite.createUser("alice")
	household := suite.createHousehold(models.PlanFree, owner)
	template := suite.createTemplate(household, owner, recurrence.Interval{Days: 7})
	event := suite.createEvent(template, date(2024, 1, 15))

	_, err := suite.events.CompleteEvent(suite.ctx, CompleteEventInput{EventID: event.ID, CompletedBy: owner.ID})
	suite.Require().NoError(err)

	for i := 0; i < 3; i++ {
		_, err = suite.events.CompleteEvent(suite.ctx, CompleteEventInput{EventID: event.ID, CompletedBy: owner.ID})
		suite.True(errors.Is(err, ErrEventAlreadyCompleted))
		suite.True(apierrors.Is(err, apierrors.KindConflict))
	}
	suite.Equal(int64(2), suite.countEvents(template.ID))
}

func (suite *ServiceTestSuite) TestCompleteEvent_NotFound() {
	_, err := suite.events.CompleteEvent(suite.ctx, CompleteEventInput{EventID: 404})
	suite.True(errors.Is(err, ErrEventNotFound))
	suite.True(apierrors.Is(err, apierrors.KindNotFound))

	owner := suite.createUser("alice")
	household := suite.createHousehold(models.PlanFree, owner)
	template := suite.createTemplate(household, owner, recurrence.Interval{Days: 7})
	event := suite.createEvent(template, date(2024, 1, 15))
	suite.Require().NoError(suite.events.DeleteEvent(suite.ctx, event.ID))

	_, err = suite.events.CompleteEvent(suite.ctx, CompleteEventInput{EventID: event.ID})
	suite.True(errors.Is(err, ErrEventNotFound))
}

func (suite *ServiceTestSuite) TestCompleteEvent_RollsBackWhenSuccessorInsertFails() {
	owner := suite.createUser("alice")
	household := suite.createHousehold(models.PlanPremium, owner)
	template := suite.createTemplate(household, owner, recurrence.Interval{Months: 1})
	event := suite.createEvent(template, date(2024, 1, 15))

	insertFailed := errors.New("insert failed")
	suite.Require().NoError(suite.db.Callback().Create().Before("gorm:create").Register("test:fail_event_insert", func(tx *gorm.DB) {
		if tx.Statement.Table == "events" {
			tx.AddError(insertFailed)
		}
	}))

	_, err := suite.events.CompleteEvent(suite.ctx, CompleteEventInput{EventID: event.ID, CompletedBy: owner.ID})
	suite.Require().Error(err)
	suite.True(errors.Is(err, insertFailed))
	suite.True(apierrors.Is(err, apierrors.KindUnexpected))

	stored := suite.reloadEvent(event.ID)
	suite.Equal(models.EventStatusPending, stored.Status)
	suite.Nil(stored.CompletionDate)
	suite.Equal(int64(1), suite.countEvents(template.ID))

	var history int64
	suite.Require().NoError(suite.db.Model(&models.EventHistory{}).Count(&history).Error)
	suite.Zero(history)
}

func (suite *ServiceTestSuite) TestCompleteEvent_ArchivesHistoryOnlyWhenPlanIncludesIt() {
	owner := suite.createUser("alice")

	free := suite.createHousehold(models.PlanFree, owner)
	freeEvent := suite.createEvent(suite.createTemplate(free, owner, recurrence.Interval{Days: 1}), date(2024, 1, 15))
	_, err := suite.events.CompleteEvent(suite.ctx, CompleteEventInput{EventID: freeEvent.ID, CompletedBy: owner.ID})
	suite.Require().NoError(err)

	history, total, err := suite.events.ListHistory(suite.ctx, free.ID, 1, 20)
	suite.Require().NoError(err)
	suite.Zero(total)
	suite.Empty(history)

	premium := suite.createHousehold(models.PlanPremium, owner)
	premiumTemplate := suite.createTemplate(premium, owner, recurrence.Interval{Days: 1})
	premiumEvent := suite.createEvent(premiumTemplate, date(2024, 1, 15))
	notes := "all good"
	_, err = suite.events.CompleteEvent(suite.ctx, CompleteEventInput{EventID: premiumEvent.ID, Notes: &notes, CompletedBy: owner.ID})
	suite.Require().NoError(err)

	history, total, err = suite.events.ListHistory(suite.ctx, premium.ID, 1, 20)
	suite.Require().NoError(err)
	suite.Equal(int64(1), total)
	suite.Require().Len(history, 1)
	suite.Equal(premiumEvent.ID, history[0].EventID)
	suite.Equal("Replace filter", history[0].TaskName)
	suite.Equal("all good", history[0].Notes)
	suite.sameTime(date(2024, 1, 15), history[0].DueDate)
	suite.Require().NotNil(history[0].CompletedByID)
	suite.Equal(owner.ID, *history[0].CompletedByID)
}

func (suite *ServiceTestSuite) TestPostponeEvent_KeepsFirstOriginalDueDate() {
	owner := suite.createUser("alice")
	household := suite.createHousehold(models.PlanFree, owner)
	template := suite.createTemplate(household, owner, recurrence.Interval{Months: 3})
	event := suite.createEvent(template, date(2024, 1, 15))

	postponed, err := suite.events.PostponeEvent(suite.ctx, event.ID, date(2024, 2, 1), "parts delayed")
	suite.Require().NoError(err)
	suite.Equal(models.EventStatusPostponed, postponed.Status)
	suite.sameTime(date(2024, 2, 1), postponed.DueDate)
	suite.Require().NotNil(postponed.PostponedFromDate)
	suite.sameTime(date(2024, 1, 15), *postponed.PostponedFromDate)
	suite.Equal("parts delayed", postponed.PostponeReason)

	again, err := suite.events.PostponeEvent(suite.ctx, event.ID, date(2024, 3, 1), "still delayed")
	suite.Require().NoError(err)
	suite.sameTime(date(2024, 3, 1), again.DueDate)
	suite.sameTime(date(2024, 1, 15), *again.PostponedFromDate)

	stored := suite.reloadEvent(event.ID)
	suite.Equal(models.EventStatusPostponed, stored.Status)
	suite.sameTime(date(2024, 1, 15), *stored.PostponedFromDate)
}

func (suite *ServiceTestSuite) TestPostponeEvent_Guards() {
	owner := suite.createUser("alice")
	household := suite.createHousehold(models.PlanFree, owner)
	template := suite.createTemplate(household, owner, recurrence.Interval{Days: 7})
	event := suite.createEvent(template, date(2024, 1, 15))

	_, err := suite.events.PostponeEvent(suite.ctx, event.ID, suite.clock.Now(), "now is not later")
	suite.True(errors.Is(err, ErrPostponeNotInFuture))
	suite.True(apierrors.Is(err, apierrors.KindValidation))

	_, err = suite.events.PostponeEvent(suite.ctx, 404, date(2024, 2, 1), "")
	suite.True(errors.Is(err, ErrEventNotFound))

	_, err = suite.events.CompleteEvent(suite.ctx, CompleteEventInput{EventID: event.ID, CompletedBy: owner.ID})
	suite.Require().NoError(err)

	_, err = suite.events.PostponeEvent(suite.ctx, event.ID, date(2024, 2, 1), "")
	suite.True(errors.Is(err, ErrEventAlreadyCompleted))
}

func (suite *ServiceTestSuite) TestPostponedEventCanBeCompleted() {
	owner := suite.createUser("alice")
	household := suite.createHousehold(models.PlanFree, owner)
	template := suite.createTemplate(household, owner, recurrence.Interval{Months: 1})
	event := suite.createEvent(template, date(2024, 1, 15))

	_, err := suite.events.PostponeEvent(suite.ctx, event.ID, date(2024, 1, 25), "away")
	suite.Require().NoError(err)

	result, err := suite.events.CompleteEvent(suite.ctx, CompleteEventInput{EventID: event.ID, CompletedBy: owner.ID})
	suite.Require().NoError(err)
	suite.Require().NotNil(result.Next)
	suite.sameTime(date(2024, 2, 25), result.Next.DueDate)
}

func (suite *ServiceTestSuite) TestCancelEvent() {
	owner := suite.createUser("alice")
	household := suite.createHousehold(models.PlanFree, owner)
	template := suite.createTemplate(household, owner, recurrence.Interval{Days: 7})
	event := suite.createEvent(template, date(2024, 1, 15))

	cancelled, err := suite.events.CancelEvent(suite.ctx, event.ID, "moved out")
	suite.Require().NoError(err)
	suite.Equal(models.EventStatusCancelled, cancelled.Status)
	suite.Equal("Cancelled: moved out", cancelled.CompletionNotes)
	suite.Equal(int64(1), suite.countEvents(template.ID))

	_, err = suite.events.CancelEvent(suite.ctx, event.ID, "again")
	suite.True(errors.Is(err, ErrEventCancelled))

	_, err = suite.events.CompleteEvent(suite.ctx, CompleteEventInput{EventID: event.ID, CompletedBy: owner.ID})
	suite.True(errors.Is(err, ErrEventCancelled))
	suite.True(apierrors.Is(err, apierrors.KindConflict))

	_, err = suite.events.PostponeEvent(suite.ctx, event.ID, date(2024, 2, 1), "")
	suite.True(errors.Is(err, ErrEventCancelled))

	_, err = suite.events.CancelEvent(suite.ctx, 404, "")
	suite.True(errors.Is(err, ErrEventNotFound))
}

func (suite *ServiceTestSuite) TestCancellationNote() {
	suite.Equal("Cancelled: broken", CancellationNote("broken"))
	suite.Equal("Cancelled", CancellationNote("  "))
}

func (suite *ServiceTestSuite) TestCreateEvent_StoresOffsetDueDateAsUTC() {
	owner := suite.createUser("alice")
	household := suite.createHousehold(models.PlanFree, owner)
	template := suite.createTemplate(household, owner, recurrence.Interval{Days: 7})

	jst := time.FixedZone("JST", 9*60*60)
	// 08:00 UTC, one hour before the suite clock
	past := suite.createEvent(template, time.Date(2024, 1, 10, 17, 0, 0, 0, jst))
	suite.createEvent(template, date(2024, 1, 17))

	suite.Equal(time.UTC, past.DueDate.Location())
	suite.sameTime(date(2024, 1, 10).Add(8*time.Hour), suite.reloadEvent(past.ID).DueDate)

	open, err := suite.store.Events.CountOpenAfter(suite.ctx, template.ID, suite.clock.Now())
	suite.Require().NoError(err)
	suite.Equal(1, open)
}

func (suite *ServiceTestSuite) TestPostponeAndComplete_StoreUTC() {
	owner := suite.createUser("alice")
	household := suite.createHousehold(models.PlanFree, owner)
	template := suite.createTemplate(household, owner, recurrence.Interval{Days: 7})
	event := suite.createEvent(template, date(2024, 1, 15))

	est := time.FixedZone("EST", -5*60*60)
	postponed, err := suite.events.PostponeEvent(suite.ctx, event.ID, time.Date(2024, 1, 20, 22, 0, 0, 0, est), "")
	suite.Require().NoError(err)
	suite.Equal(time.UTC, postponed.DueDate.Location())
	suite.sameTime(date(2024, 1, 21).Add(3*time.Hour), suite.reloadEvent(event.ID).DueDate)

	completedAt := time.Date(2024, 1, 10, 4, 0, 0, 0, est)
	result, err := suite.events.CompleteEvent(suite.ctx, CompleteEventInput{EventID: event.ID, CompletionDate: &completedAt})
	suite.Require().NoError(err)
	suite.Require().NotNil(result.Event.CompletionDate)
	suite.Equal(time.UTC, result.Event.CompletionDate.Location())
	stored := suite.reloadEvent(event.ID)
	suite.Require().NotNil(stored.CompletionDate)
	suite.sameTime(date(2024, 1, 10).Add(9*time.Hour), *stored.CompletionDate)
}

func (suite *ServiceTestSuite) TestEnsureTransitionAllowed() {
	suite.NoError(ensureTransitionAllowed(&models.Event{Status: models.EventStatusPending}))
	suite.NoError(ensureTransitionAllowed(&models.Event{Status: models.EventStatusPostponed}))
	suite.True(errors.Is(ensureTransitionAllowed(&models.Event{Status: models.EventStatusCompleted}), ErrEventAlreadyCompleted))
	suite.True(errors.Is(ensureTransitionAllowed(&models.Event{Status: models.EventStatusCancelled}), ErrEventCancelled))
}

func (suite *ServiceTestSuite) TestDeleteEvent_KeepsStatus() {
	owner := suite.createUser("alice")
	household := suite.createHousehold(models.PlanFree, owner)
	template := suite.createTemplate(household, owner, recurrence.Interval{Days: 7})
	event := suite.createEvent(template, date(2024, 1, 15))

	suite.Require().NoError(suite.events.DeleteEvent(suite.ctx, event.ID))

	_, err := suite.events.GetEvent(suite.ctx, event.ID)
	suite.True(errors.Is(err, ErrEventNotFound))

	stored := suite.reloadEvent(event.ID)
	suite.Equal(models.EventStatusPending, stored.Status)
	suite.True(stored.DeletedAt.Valid)

	suite.True(errors.Is(suite.events.DeleteEvent(suite.ctx, event.ID), ErrEventNotFound))
}

func (suite *ServiceTestSuite) TestCreateEvent_Validation() {
	owner := suite.createUser("alice")
	household := suite.createHousehold(models.PlanFree, owner)
	other := suite.createHousehold(models.PlanFree, owner)
	template := suite.createTemplate(household, owner, recurrence.Interval{Days: 7})
	templateID := template.ID

	low := models.PriorityLow
	event, err := suite.events.CreateEvent(suite.ctx, CreateEventInput{
		HouseholdID:    household.ID,
		TaskTemplateID: &templateID,
		DueDate:        date(2024, 1, 15),
		Priority:       &low,
		CreatedBy:      owner.ID,
	})
	suite.Require().NoError(err)
	suite.Equal(models.PriorityLow, event.Priority)
	suite.Equal(models.EventStatusPending, event.Status)

	_, err = suite.events.CreateEvent(suite.ctx, CreateEventInput{HouseholdID: household.ID, TaskTemplateID: &templateID, CreatedBy: owner.ID})
	suite.True(errors.Is(err, ErrDueDateRequired))

	_, err = suite.events.CreateEvent(suite.ctx, CreateEventInput{HouseholdID: other.ID, TaskTemplateID: &templateID, DueDate: date(2024, 1, 15)})
	suite.True(errors.Is(err, ErrTemplateMismatch))

	stranger := suite.createUser("mallory")
	_, err = suite.events.CreateEvent(suite.ctx, CreateEventInput{HouseholdID: household.ID, AssigneeID: &stranger.ID, DueDate: date(2024, 1, 15)})
	suite.True(errors.Is(err, ErrInvalidAssignee))

	suite.Require().NoError(suite.store.Tasks.Delete(suite.ctx, template.ID))
	_, err = suite.events.CreateEvent(suite.ctx, CreateEventInput{HouseholdID: household.ID, TaskTemplateID: &templateID, DueDate: date(2024, 1, 15)})
	suite.True(errors.Is(err, ErrTaskNotFound))
	suite.True(apierrors.Is(err, apierrors.KindNotFound))
}

func (suite *ServiceTestSuite) TestListEvents_Filters() {
	owner := suite.createUser("alice")
	household := suite.createHousehold(models.PlanFree, owner)
	template := suite.createTemplate(household, owner, recurrence.Interval{Days: 7})
	first := suite.createEvent(template, date(2024, 1, 15))
	suite.createEvent(template, date(2024, 1, 22))
	suite.createEvent(template, date(2024, 1, 29))

	_, err := suite.events.CancelEvent(suite.ctx, first.ID, "")
	suite.Require().NoError(err)

	pending := models.EventStatusPending
	events, total, err := suite.events.ListEvents(suite.ctx, ListEventsInput{HouseholdID: household.ID, Status: &pending})
	suite.Require().NoError(err)
	suite.Equal(int64(2), total)
	suite.Len(events, 2)

	from, to := date(2024, 1, 20), date(2024, 1, 25)
	events, _, err = suite.events.ListEvents(suite.ctx, ListEventsInput{HouseholdID: household.ID, From: &from, To: &to})
	suite.Require().NoError(err)
	suite.Require().Len(events, 1)
	suite.sameTime(date(2024, 1, 22), events[0].DueDate)

	_, _, err = suite.events.ListEvents(suite.ctx, ListEventsInput{HouseholdID: household.ID, From: &to, To: &from})
	suite.True(errors.Is(err, ErrInvalidDateRange))

	unknown := models.EventStatus("sleeping")
	_, _, err = suite.events.ListEvents(suite.ctx, ListEventsInput{HouseholdID: household.ID, Status: &unknown})
	suite.True(apierrors.Is(err, apierrors.KindValidation))
}
