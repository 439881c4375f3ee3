// Package ics renders a household's events as an iCalendar feed.
package ics

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"
	"github.com/yukikurage/household-task-api/internal/models"
)

const productID = "-//household-task-api//chores//EN"

// EventUID is stable for an event so calendar clients update rather than duplicate it.
func EventUID(householdID, eventID uint64) string {
	name := fmt.Sprintf("household/%d/event/%d", householdID, eventID)
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String() + "@household-task-api"
}

// BuildCalendar renders one all-day VEVENT per event. templateNames maps a
// template ID to its task name; events without a known template are titled
// by their notes.
func BuildCalendar(household models.Household, events []models.Event, templateNames map[uint64]string, now time.Time) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)
	cal.SetXWRCalName(household.Name)

	for _, event := range events {
		vevent := cal.AddEvent(EventUID(household.ID, event.ID))
		vevent.SetDtStampTime(now)
		vevent.SetAllDayStartAt(event.DueDate)
		vevent.SetAllDayEndAt(event.DueDate.AddDate(0, 0, 1))
		vevent.SetSummary(summary(event, templateNames))
		vevent.SetStatus(status(event.Status))
		vevent.SetProperty(ical.ComponentPropertyPriority, strconv.Itoa(priority(event.Priority)))
		if description := describe(event); description != "" {
			vevent.SetDescription(description)
		}
	}

	return cal.Serialize()
}

func summary(event models.Event, templateNames map[uint64]string) string {
	if event.TaskTemplateID != nil {
		if name, ok := templateNames[*event.TaskTemplateID]; ok {
			return name
		}
	}
	if event.Notes != "" {
		return event.Notes
	}
	return "Chore"
}

func status(s models.EventStatus) ical.ObjectStatus {
	switch s {
	case models.EventStatusPostponed:
		return ical.ObjectStatusTentative
	case models.EventStatusCancelled:
		return ical.ObjectStatusCancelled
	default:
		return ical.ObjectStatusConfirmed
	}
}

// priority maps onto the RFC 5545 scale where 1 is highest.
func priority(p models.Priority) int {
	switch p {
	case models.PriorityHigh:
		return 1
	case models.PriorityLow:
		return 9
	default:
		return 5
	}
}

func describe(event models.Event) string {
	var lines []string
	if event.Status == models.EventStatusCompleted {
		lines = append(lines, "COMPLETED")
		if event.CompletionNotes != "" {
			lines = append(lines, event.CompletionNotes)
		}
	}
	if event.Status == models.EventStatusCancelled && event.CompletionNotes != "" {
		lines = append(lines, event.CompletionNotes)
	}
	if event.PostponedFromDate != nil {
		line := "Postponed from " + event.PostponedFromDate.Format("2006-01-02")
		if event.PostponeReason != "" {
			line += ": " + event.PostponeReason
		}
		lines = append(lines, line)
	}
	if event.Notes != "" && event.TaskTemplateID != nil {
		lines = append(lines, event.Notes)
	}
	return strings.Join(lines, "\n")
}
