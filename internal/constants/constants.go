package constants

// Session and context keys
const (
	ContextKeyUserID     = "user_id"
	ContextKeyRequestID  = "request_id"
	ContextKeyHousehold  = "household"
	ContextKeyMembership = "household_member"
	ContextKeyEvent      = "event"
	ContextKeyTask       = "task"
	SessionCookieName    = "household_session"
	RequestIDHeader      = "X-Request-ID"
)

// Validation limits
const (
	MinPasswordLength = 8
	MaxTaskNameLength = 255
	MaxPostponeReason = 500
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Completion notes written by a cancellation: the bare marker, or the prefix before a reason.
const (
	CancelledNote       = "Cancelled"
	CancelledNotePrefix = CancelledNote + ": "
)
