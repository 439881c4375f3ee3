package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/household-task-api/internal/constants"
	apierrors "github.com/yukikurage/household-task-api/internal/errors"
	"github.com/yukikurage/household-task-api/internal/models"
	"github.com/yukikurage/household-task-api/internal/repository"
)

// RequireTaskAccess checks if the user has access to a task.
// User must be a member of the task's household.
func RequireTaskAccess(store *repository.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		taskID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid task ID")
			c.Abort()
			return
		}

		userID, exists := GetUserID(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		task, err := store.Tasks.LoadTaskTemplate(c.Request.Context(), taskID)
		if err != nil {
			abortLookup(c, err, "Task not found")
			return
		}

		if _, err := store.Households.FindMember(c.Request.Context(), task.HouseholdID, userID); err != nil {
			abortLookup(c, err, "Task not found")
			return
		}

		c.Set(constants.ContextKeyTask, *task)
		c.Next()
	}
}

// RequireEventAccess checks if the user is a member of the event's household
func RequireEventAccess(store *repository.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid event ID")
			c.Abort()
			return
		}

		userID, exists := GetUserID(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		event, err := store.Events.LoadEventWithTemplate(c.Request.Context(), eventID)
		if err != nil {
			abortLookup(c, err, "Event not found")
			return
		}

		if _, err := store.Households.FindMember(c.Request.Context(), event.HouseholdID, userID); err != nil {
			abortLookup(c, err, "Event not found")
			return
		}

		c.Set(constants.ContextKeyEvent, *event)
		c.Next()
	}
}

// GetTask returns the task loaded by RequireTaskAccess
func GetTask(c *gin.Context) (models.TaskTemplate, bool) {
	value, exists := c.Get(constants.ContextKeyTask)
	if !exists {
		return models.TaskTemplate{}, false
	}
	task, ok := value.(models.TaskTemplate)
	return task, ok
}

// GetEvent returns the event loaded by RequireEventAccess
func GetEvent(c *gin.Context) (models.Event, bool) {
	value, exists := c.Get(constants.ContextKeyEvent)
	if !exists {
		return models.Event{}, false
	}
	event, ok := value.(models.Event)
	return event, ok
}
