package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/household-task-api/internal/clock"
	"github.com/yukikurage/household-task-api/internal/dto"
	apierrors "github.com/yukikurage/household-task-api/internal/errors"
	"github.com/yukikurage/household-task-api/internal/ics"
	"github.com/yukikurage/household-task-api/internal/middleware"
	"github.com/yukikurage/household-task-api/internal/models"
	"github.com/yukikurage/household-task-api/internal/services"
	"github.com/yukikurage/household-task-api/internal/utils"
)

// HouseholdHandler serves household membership, plan and per-household listings.
type HouseholdHandler struct {
	households *services.HouseholdService
	tasks      *services.TaskService
	events     *services.EventService
	clock      clock.Clock
}

// NewHouseholdHandler creates a new HouseholdHandler. clk stamps calendar exports.
func NewHouseholdHandler(households *services.HouseholdService, tasks *services.TaskService, events *services.EventService, clk clock.Clock) *HouseholdHandler {
	return &HouseholdHandler{
		households: households,
		tasks:      tasks,
		events:     events,
		clock:      clk,
	}
}

// CreateHousehold creates a household owned by the current user
func (h *HouseholdHandler) CreateHousehold(c *gin.Context) {
	type CreateHouseholdRequest struct {
		Name string `json:"name" binding:"required,min=1,max=255"`
	}

	userID, _ := middleware.GetUserID(c)

	var req CreateHouseholdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequestWithDetails(c, "Invalid request body", err.Error())
		return
	}

	household, err := h.households.CreateHousehold(c.Request.Context(), services.CreateHouseholdInput{
		Name:    req.Name,
		OwnerID: userID,
	})
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToHouseholdDTO(*household, true))
}

// ListHouseholds returns all households the user is a member of
func (h *HouseholdHandler) ListHouseholds(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	memberships, err := h.households.ListHouseholdsForUser(c.Request.Context(), userID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	households := make([]dto.HouseholdWithRoleDTO, len(memberships))
	for i, member := range memberships {
		households[i] = dto.ToHouseholdWithRoleDTO(member)
	}

	c.JSON(http.StatusOK, gin.H{"households": households})
}

// JoinHouseholdByInvite joins a household using its invite code
func (h *HouseholdHandler) JoinHouseholdByInvite(c *gin.Context) {
	type JoinRequest struct {
		InviteCode string `json:"invite_code" binding:"required"`
	}

	userID, _ := middleware.GetUserID(c)

	var req JoinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequestWithDetails(c, "Invalid request body", err.Error())
		return
	}

	household, err := h.households.JoinHouseholdByInvite(c.Request.Context(), userID, req.InviteCode)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToHouseholdDTO(*household, true))
}

// GetHousehold returns the household with its members
func (h *HouseholdHandler) GetHousehold(c *gin.Context) {
	household, _ := middleware.GetHousehold(c)
	member, _ := middleware.GetMembership(c)

	loaded, members, err := h.households.GetHouseholdWithMembers(c.Request.Context(), household.ID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToHouseholdDetailDTO(*loaded, members, member.Role))
}

// UpdateHousehold renames a household (owner only)
func (h *HouseholdHandler) UpdateHousehold(c *gin.Context) {
	type UpdateHouseholdRequest struct {
		Name string `json:"name" binding:"required,min=1,max=255"`
	}

	household, _ := middleware.GetHousehold(c)

	var req UpdateHouseholdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequestWithDetails(c, "Invalid request body", err.Error())
		return
	}

	updated, err := h.households.UpdateHouseholdName(c.Request.Context(), household.ID, req.Name)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToHouseholdDTO(*updated, true))
}

// DeleteHousehold deletes a household with its tasks and events (owner only)
func (h *HouseholdHandler) DeleteHousehold(c *gin.Context) {
	household, _ := middleware.GetHousehold(c)

	if err := h.households.DeleteHousehold(c.Request.Context(), household.ID); err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Household deleted successfully"})
}

// RegenerateInviteCode issues a new invite code (owner only)
func (h *HouseholdHandler) RegenerateInviteCode(c *gin.Context) {
	household, _ := middleware.GetHousehold(c)

	updated, err := h.households.RegenerateInviteCode(c.Request.Context(), household.ID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"invite_code": updated.InviteCode})
}

// RemoveMember removes a member from the household (owner only)
func (h *HouseholdHandler) RemoveMember(c *gin.Context) {
	household, _ := middleware.GetHousehold(c)
	userID, _ := middleware.GetUserID(c)

	targetID, err := strconv.ParseUint(c.Param("user_id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid user ID")
		return
	}

	if err := h.households.RemoveMember(c.Request.Context(), household.ID, userID, targetID); err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Member removed successfully"})
}

// ChangePlan moves the household to another plan (owner only)
func (h *HouseholdHandler) ChangePlan(c *gin.Context) {
	type ChangePlanRequest struct {
		Plan string `json:"plan" binding:"required"`
	}

	household, _ := middleware.GetHousehold(c)

	var req ChangePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequestWithDetails(c, "Invalid request body", err.Error())
		return
	}

	updated, err := h.households.ChangePlan(c.Request.Context(), household.ID, req.Plan)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToHouseholdDTO(*updated, true))
}

// GetUsage returns the household's recounted usage counters
func (h *HouseholdHandler) GetUsage(c *gin.Context) {
	household, _ := middleware.GetHousehold(c)

	usage, err := h.households.Usage(c.Request.Context(), household.ID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	counters := make([]dto.UsageDTO, len(usage))
	for i, u := range usage {
		counters[i] = dto.ToUsageDTO(u)
	}

	c.JSON(http.StatusOK, gin.H{"usage": counters})
}

// ListPlans returns every plan type
func (h *HouseholdHandler) ListPlans(c *gin.Context) {
	plans, err := h.households.ListPlans(c.Request.Context())
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	planDTOs := make([]dto.PlanDTO, len(plans))
	for i, plan := range plans {
		planDTOs[i] = dto.ToPlanDTO(plan)
	}

	c.JSON(http.StatusOK, gin.H{"plans": planDTOs})
}

// RefillEvents tops up future events for the household's recurring tasks
func (h *HouseholdHandler) RefillEvents(c *gin.Context) {
	household, _ := middleware.GetHousehold(c)

	generated, err := h.events.RefillEvents(c.Request.Context(), household.ID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"generated": generated})
}

// ListTasks returns the household's tasks
// Supports ?active=true and ?category_id= filters
func (h *HouseholdHandler) ListTasks(c *gin.Context) {
	household, _ := middleware.GetHousehold(c)
	params := utils.GetPaginationParams(c)

	input := services.ListTasksInput{
		HouseholdID: household.ID,
		ActiveOnly:  c.Query("active") == "true",
		Page:        params.Page,
		PageSize:    params.Limit,
	}
	if raw := c.Query("category_id"); raw != "" {
		categoryID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid category_id")
			return
		}
		input.CategoryID = &categoryID
	}

	tasks, total, err := h.tasks.ListTasks(c.Request.Context(), input)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewListResponse(dto.ToTaskDTOs(tasks), params.Page, params.Limit, total))
}

// ListEvents returns the household's events
// Supports task_id, status, assignee_id, from and to (YYYY-MM-DD) filters
func (h *HouseholdHandler) ListEvents(c *gin.Context) {
	household, _ := middleware.GetHousehold(c)
	params := utils.GetPaginationParams(c)

	input, ok := bindEventFilters(c)
	if !ok {
		return
	}
	input.HouseholdID = household.ID
	input.Page = params.Page
	input.PageSize = params.Limit

	events, total, err := h.events.ListEvents(c.Request.Context(), input)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewListResponse(dto.ToEventDTOs(events), params.Page, params.Limit, total))
}

// ListHistory returns archived completions, newest first
func (h *HouseholdHandler) ListHistory(c *gin.Context) {
	household, _ := middleware.GetHousehold(c)
	params := utils.GetPaginationParams(c)

	history, total, err := h.events.ListHistory(c.Request.Context(), household.ID, params.Page, params.Limit)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewListResponse(dto.ToHistoryDTOs(history), params.Page, params.Limit, total))
}

// ExportCalendar renders the household's events as iCalendar. Accepts the same
// filters as ListEvents; at most calendarExportLimit events, earliest first.
func (h *HouseholdHandler) ExportCalendar(c *gin.Context) {
	household, _ := middleware.GetHousehold(c)

	input, ok := bindEventFilters(c)
	if !ok {
		return
	}
	input.HouseholdID = household.ID
	input.Page = 1
	input.PageSize = calendarExportLimit

	events, _, err := h.events.ListEvents(c.Request.Context(), input)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	names := make(map[uint64]string)
	for _, event := range events {
		if event.TaskTemplate != nil {
			names[event.TaskTemplate.ID] = event.TaskTemplate.Name
		}
	}

	body := ics.BuildCalendar(household, events, names, h.clock.Now())
	c.Header("Content-Disposition", `attachment; filename="household-`+strconv.FormatUint(household.ID, 10)+`.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(body))
}

const calendarExportLimit = 1000

func bindEventFilters(c *gin.Context) (services.ListEventsInput, bool) {
	var input services.ListEventsInput

	if raw := c.Query("task_id"); raw != "" {
		taskID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid task_id")
			return input, false
		}
		input.TaskTemplateID = &taskID
	}

	if raw := c.Query("assignee_id"); raw != "" {
		assigneeID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid assignee_id")
			return input, false
		}
		input.AssigneeID = &assigneeID
	}

	if raw := c.Query("status"); raw != "" {
		status := models.EventStatus(raw)
		if !status.Valid() {
			apierrors.BadRequest(c, "Invalid status")
			return input, false
		}
		input.Status = &status
	}

	for _, bound := range []struct {
		key    string
		target **time.Time
	}{{"from", &input.From}, {"to", &input.To}} {
		raw := c.Query(bound.key)
		if raw == "" {
			continue
		}
		parsed, err := parseDate(raw)
		if err != nil {
			apierrors.BadRequest(c, "Invalid "+bound.key+" date, expected YYYY-MM-DD")
			return input, false
		}
		*bound.target = &parsed
	}

	return input, true
}
