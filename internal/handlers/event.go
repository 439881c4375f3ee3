package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/household-task-api/internal/dto"
	apierrors "github.com/yukikurage/household-task-api/internal/errors"
	"github.com/yukikurage/household-task-api/internal/middleware"
	"github.com/yukikurage/household-task-api/internal/models"
	"github.com/yukikurage/household-task-api/internal/services"
)

// EventHandler serves single events and their status transitions.
type EventHandler struct {
	events     *services.EventService
	households *services.HouseholdService
}

func NewEventHandler(events *services.EventService, households *services.HouseholdService) *EventHandler {
	return &EventHandler{
		events:     events,
		households: households,
	}
}

// CreateEvent schedules a one-off event or an extra occurrence of a task
func (h *EventHandler) CreateEvent(c *gin.Context) {
	type CreateEventRequest struct {
		HouseholdID uint64           `json:"household_id" binding:"required"`
		TaskID      *uint64          `json:"task_id"`
		AssigneeID  *uint64          `json:"assignee_id"`
		DueDate     string           `json:"due_date" binding:"required"`
		Priority    *models.Priority `json:"priority"`
		Notes       string           `json:"notes"`
	}

	userID, _ := middleware.GetUserID(c)

	var req CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequestWithDetails(c, "Invalid request body", err.Error())
		return
	}

	dueDate, err := parseDate(req.DueDate)
	if err != nil {
		apierrors.BadRequest(c, "Invalid due_date")
		return
	}

	if err := h.households.EnsureMember(c.Request.Context(), req.HouseholdID, userID); err != nil {
		apierrors.Respond(c, err)
		return
	}

	event, err := h.events.CreateEvent(c.Request.Context(), services.CreateEventInput{
		HouseholdID:    req.HouseholdID,
		TaskTemplateID: req.TaskID,
		AssigneeID:     req.AssigneeID,
		DueDate:        dueDate,
		Priority:       req.Priority,
		Notes:          req.Notes,
		CreatedBy:      userID,
	})
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToEventDTO(*event))
}

// GetEvent returns an event loaded by RequireEventAccess
func (h *EventHandler) GetEvent(c *gin.Context) {
	event, ok := middleware.GetEvent(c)
	if !ok {
		apierrors.InternalError(c, "Event not loaded")
		return
	}

	c.JSON(http.StatusOK, dto.ToEventDTO(event))
}

func (h *EventHandler) DeleteEvent(c *gin.Context) {
	event, _ := middleware.GetEvent(c)

	if err := h.events.DeleteEvent(c.Request.Context(), event.ID); err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Event deleted successfully"})
}

// CompleteEvent completes the event and returns its successor, if one was scheduled
func (h *EventHandler) CompleteEvent(c *gin.Context) {
	event, _ := middleware.GetEvent(c)
	userID, _ := middleware.GetUserID(c)

	req, ok := bindCompletion(c)
	if !ok {
		return
	}

	result, err := h.events.CompleteEvent(c.Request.Context(), services.CompleteEventInput{
		EventID:        event.ID,
		CompletionDate: req.completionDate,
		Notes:          req.notes,
		CompletedBy:    userID,
	})
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToCompletionDTO(*result.Event, result.Next))
}

func (h *EventHandler) PostponeEvent(c *gin.Context) {
	type PostponeRequest struct {
		NewDueDate string `json:"new_due_date" binding:"required"`
		Reason     string `json:"reason"`
	}

	event, _ := middleware.GetEvent(c)

	var req PostponeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequestWithDetails(c, "Invalid request body", err.Error())
		return
	}

	newDue, err := parseDate(req.NewDueDate)
	if err != nil {
		apierrors.BadRequest(c, "Invalid new_due_date")
		return
	}

	updated, err := h.events.PostponeEvent(c.Request.Context(), event.ID, newDue, req.Reason)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToEventDTO(*updated))
}

func (h *EventHandler) CancelEvent(c *gin.Context) {
	type CancelRequest struct {
		Reason string `json:"reason"`
	}

	event, _ := middleware.GetEvent(c)

	var req CancelRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	updated, err := h.events.CancelEvent(c.Request.Context(), event.ID, req.Reason)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToEventDTO(*updated))
}

type completionRequest struct {
	completionDate *time.Time
	notes          *string
}

// bindCompletion reads an optional {completion_date, notes} body.
func bindCompletion(c *gin.Context) (completionRequest, bool) {
	type CompleteRequest struct {
		CompletionDate *string `json:"completion_date"`
		Notes          *string `json:"notes"`
	}

	var req CompleteRequest
	if !bindOptionalJSON(c, &req) {
		return completionRequest{}, false
	}

	completionDate, err := parseOptionalDate(req.CompletionDate)
	if err != nil {
		apierrors.BadRequest(c, "Invalid completion_date")
		return completionRequest{}, false
	}

	return completionRequest{completionDate: completionDate, notes: req.Notes}, true
}
