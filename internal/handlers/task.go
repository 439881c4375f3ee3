package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/household-task-api/internal/dto"
	apierrors "github.com/yukikurage/household-task-api/internal/errors"
	"github.com/yukikurage/household-task-api/internal/middleware"
	"github.com/yukikurage/household-task-api/internal/models"
	"github.com/yukikurage/household-task-api/internal/services"
)

type TaskHandler struct {
	tasks *services.TaskService
}

func NewTaskHandler(tasks *services.TaskService) *TaskHandler {
	return &TaskHandler{
		tasks: tasks,
	}
}

// CreateTask creates a task in a household the user belongs to.
// With first_due_date set, the first event is scheduled in the same request.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	type CreateTaskRequest struct {
		HouseholdID     uint64          `json:"household_id" binding:"required"`
		CategoryID      *uint64         `json:"category_id"`
		Name            string          `json:"name" binding:"required"`
		Description     string          `json:"description"`
		Interval        dto.IntervalDTO `json:"interval"`
		DefaultPriority models.Priority `json:"default_priority"`
		FirstDueDate    *string         `json:"first_due_date"`
		AssigneeID      *uint64         `json:"assignee_id"`
	}

	userID, _ := middleware.GetUserID(c)

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequestWithDetails(c, "Invalid request body", err.Error())
		return
	}

	firstDue, err := parseOptionalDate(req.FirstDueDate)
	if err != nil {
		apierrors.BadRequest(c, "Invalid first_due_date")
		return
	}

	task, err := h.tasks.CreateTask(c.Request.Context(), services.CreateTaskInput{
		HouseholdID:     req.HouseholdID,
		CategoryID:      req.CategoryID,
		Name:            req.Name,
		Description:     req.Description,
		Interval:        req.Interval.Interval(),
		DefaultPriority: req.DefaultPriority,
		FirstDueDate:    firstDue,
		AssigneeID:      req.AssigneeID,
		CreatorID:       userID,
	})
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// GetTask returns a specific task
// Task is already loaded by RequireTaskAccess middleware
func (h *TaskHandler) GetTask(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not loaded")
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(task))
}

// UpdateTask applies a partial update
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	type UpdateTaskRequest struct {
		Name            *string          `json:"name"`
		Description     *string          `json:"description"`
		Interval        *dto.IntervalDTO `json:"interval"`
		DefaultPriority *models.Priority `json:"default_priority"`
		IsActive        *bool            `json:"is_active"`
		CategoryID      *uint64          `json:"category_id"`
		ClearCategory   bool             `json:"clear_category"`
	}

	task, _ := middleware.GetTask(c)

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequestWithDetails(c, "Invalid request body", err.Error())
		return
	}

	input := services.UpdateTaskInput{
		Name:            req.Name,
		Description:     req.Description,
		DefaultPriority: req.DefaultPriority,
		IsActive:        req.IsActive,
		CategoryID:      req.CategoryID,
		ClearCategory:   req.ClearCategory,
	}
	if req.Interval != nil {
		interval := req.Interval.Interval()
		input.Interval = &interval
	}

	updated, err := h.tasks.UpdateTask(c.Request.Context(), task.ID, input)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*updated))
}

// DeleteTask soft deletes a task. Its events stay in place.
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	task, _ := middleware.GetTask(c)

	if err := h.tasks.DeleteTask(c.Request.Context(), task.ID); err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}

// CompleteTask completes the task's earliest open event
func (h *TaskHandler) CompleteTask(c *gin.Context) {
	task, _ := middleware.GetTask(c)
	userID, _ := middleware.GetUserID(c)

	req, ok := bindCompletion(c)
	if !ok {
		return
	}

	result, err := h.tasks.CompleteTask(c.Request.Context(), services.CompleteTaskInput{
		TaskID:         task.ID,
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
