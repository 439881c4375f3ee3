package middleware

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/household-task-api/internal/constants"
	apierrors "github.com/yukikurage/household-task-api/internal/errors"
	"github.com/yukikurage/household-task-api/internal/models"
	"github.com/yukikurage/household-task-api/internal/repository"
	"gorm.io/gorm"
)

// RequireHouseholdAccess checks if the user is a member of the household in :id
func RequireHouseholdAccess(store *repository.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		householdID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid household ID")
			c.Abort()
			return
		}

		userID, exists := GetUserID(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		household, err := store.Households.LoadHouseholdWithPlan(c.Request.Context(), householdID)
		if err != nil {
			abortLookup(c, err, "Household not found")
			return
		}

		member, err := store.Households.FindMember(c.Request.Context(), householdID, userID)
		if err != nil {
			// 404 rather than 403 so non-members cannot probe for households
			abortLookup(c, err, "Household not found")
			return
		}

		c.Set(constants.ContextKeyHousehold, *household)
		c.Set(constants.ContextKeyMembership, *member)
		c.Next()
	}
}

// RequireHouseholdOwner checks if the user owns the household.
// Must run after RequireHouseholdAccess.
func RequireHouseholdOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		member, ok := GetMembership(c)
		if !ok {
			apierrors.Forbidden(c, "Household access required")
			c.Abort()
			return
		}

		if member.Role != models.RoleOwner {
			apierrors.Forbidden(c, "Only household owners can perform this action")
			c.Abort()
			return
		}

		c.Next()
	}
}

// GetHousehold returns the household loaded by RequireHouseholdAccess
func GetHousehold(c *gin.Context) (models.Household, bool) {
	value, exists := c.Get(constants.ContextKeyHousehold)
	if !exists {
		return models.Household{}, false
	}
	household, ok := value.(models.Household)
	return household, ok
}

// GetMembership returns the caller's membership loaded by RequireHouseholdAccess
func GetMembership(c *gin.Context) (models.HouseholdMember, bool) {
	value, exists := c.Get(constants.ContextKeyMembership)
	if !exists {
		return models.HouseholdMember{}, false
	}
	member, ok := value.(models.HouseholdMember)
	return member, ok
}

func abortLookup(c *gin.Context, err error, notFound string) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		apierrors.NotFound(c, notFound)
	} else {
		c.Error(err)
		apierrors.InternalError(c, "")
	}
	c.Abort()
}
