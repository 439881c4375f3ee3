package services

import (
	"errors"

	apierrors "github.com/yukikurage/household-task-api/internal/errors"
	"gorm.io/gorm"
)

var (
	ErrHouseholdNotFound    = apierrors.New(apierrors.KindNotFound, "household not found")
	ErrNotHouseholdMember   = apierrors.New(apierrors.KindForbidden, "user is not a member of the household")
	ErrNotHouseholdOwner    = apierrors.New(apierrors.KindForbidden, "only the household owner can perform this action")
	ErrInvalidHouseholdName = apierrors.New(apierrors.KindValidation, "household name cannot be empty")
	ErrInvalidInviteCode    = apierrors.New(apierrors.KindNotFound, "invalid invite code")
	ErrAlreadyMember        = apierrors.New(apierrors.KindConflict, "user is already a member of this household")
	ErrCannotRemoveYourself = apierrors.New(apierrors.KindValidation, "cannot remove yourself from the household")
	ErrMemberNotFound       = apierrors.New(apierrors.KindNotFound, "household member not found")
	ErrPlanNotFound         = apierrors.New(apierrors.KindNotFound, "plan not found")
	ErrInvalidUsageType     = apierrors.New(apierrors.KindValidation, "unknown usage type")

	ErrTaskLimitExceeded   = apierrors.New(apierrors.KindLimitExceeded, "task limit of the household plan reached")
	ErrMemberLimitExceeded = apierrors.New(apierrors.KindLimitExceeded, "member limit of the household plan reached")

	ErrTaskNotFound       = apierrors.New(apierrors.KindNotFound, "task not found")
	ErrTaskNameRequired   = apierrors.New(apierrors.KindValidation, "task name is required")
	ErrTaskNameTooLong    = apierrors.New(apierrors.KindValidation, "task name is too long")
	ErrInvalidInterval    = apierrors.New(apierrors.KindValidation, "interval components must not be negative")
	ErrInvalidPriority    = apierrors.New(apierrors.KindValidation, "priority must be low, medium or high")
	ErrTaskHasNoOpenEvent = apierrors.New(apierrors.KindConflict, "task has no pending or postponed event")

	ErrEventNotFound         = apierrors.New(apierrors.KindNotFound, "event not found")
	ErrEventAlreadyCompleted = apierrors.New(apierrors.KindConflict, "event is already completed")
	ErrEventCancelled        = apierrors.New(apierrors.KindConflict, "event is cancelled")
	ErrDueDateRequired       = apierrors.New(apierrors.KindValidation, "due date is required")
	ErrPostponeNotInFuture   = apierrors.New(apierrors.KindValidation, "new due date must be in the future")
	ErrPostponeReasonTooLong = apierrors.New(apierrors.KindValidation, "postpone reason is too long")
	ErrTemplateMismatch      = apierrors.New(apierrors.KindValidation, "task belongs to another household")
	ErrInvalidAssignee       = apierrors.New(apierrors.KindValidation, "assignee is not a member of the household")
	ErrInvalidDateRange      = apierrors.New(apierrors.KindValidation, "from must be before to")

	ErrUserNotFound       = apierrors.New(apierrors.KindNotFound, "user not found")
	ErrUsernameRequired   = apierrors.New(apierrors.KindValidation, "username is required")
	ErrPasswordTooShort   = apierrors.New(apierrors.KindValidation, "password is too short")
	ErrUsernameTaken      = apierrors.New(apierrors.KindConflict, "username already exists")
	ErrInvalidCredentials = apierrors.New(apierrors.KindUnauthorized, "invalid credentials")
)

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
