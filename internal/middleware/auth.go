package middleware

import (
	"errors"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/household-task-api/internal/constants"
	apierrors "github.com/yukikurage/household-task-api/internal/errors"
	"github.com/yukikurage/household-task-api/internal/logger"
	"github.com/yukikurage/household-task-api/internal/repository"
	"gorm.io/gorm"
)

// RequireAuth resolves the session user against the store. A session whose
// user no longer exists is cleared and treated as unauthenticated.
func RequireAuth(store *repository.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID, ok := sessionUserID(session.Get(constants.ContextKeyUserID))
		if !ok {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		user, err := store.Users.FindByID(c.Request.Context(), userID)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				c.Error(err)
				apierrors.InternalError(c, "")
				c.Abort()
				return
			}

			logger.Info("Session user no longer exists, clearing session", "user_id", userID)
			session.Clear()
			if err := session.Save(); err != nil {
				c.Error(err)
			}
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyUserID, user.ID)
		c.Next()
	}
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (uint64, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return 0, false
	}
	return sessionUserID(userID)
}

// sessionUserID accepts the integer types a session codec may hand back.
func sessionUserID(v interface{}) (uint64, bool) {
	switch id := v.(type) {
	case uint64:
		return id, true
	case uint:
		return uint64(id), true
	case int:
		if id < 0 {
			return 0, false
		}
		return uint64(id), true
	case int64:
		if id < 0 {
			return 0, false
		}
		return uint64(id), true
	default:
		return 0, false
	}
}
