package errors

import "fmt"

// ErrorCode identifies an application error condition.
type ErrorCode string

// Generic codes
const (
	ErrInternalServer             ErrorCode = "INTERNAL_SERVER_ERROR"
	ErrInvalidInput               ErrorCode = "INVALID_INPUT"
	ErrInvalidRequestData         ErrorCode = "INVALID_REQUEST_DATA"
	ErrUnauthorized               ErrorCode = "UNAUTHORIZED"
	ErrForbidden                  ErrorCode = "FORBIDDEN"
	ErrNotFound                   ErrorCode = "NOT_FOUND"
	ErrAlreadyExists              ErrorCode = "ALREADY_EXISTS"
	ErrTokenExpired               ErrorCode = "TOKEN_EXPIRED"
	ErrInvalidTokenFormat         ErrorCode = "INVALID_TOKEN_FORMAT"
	ErrMissingAuthorizationHeader ErrorCode = "MISSING_AUTHORIZATION_HEADER"
)

// Admission and lifecycle codes. These are expected user-facing outcomes,
// not system faults, and must not be retried automatically.
const (
	ErrUserBlocked      ErrorCode = "USER_BLOCKED"
	ErrEventNotJoinable ErrorCode = "EVENT_NOT_JOINABLE"
	ErrEventFull        ErrorCode = "EVENT_FULL"
	ErrAlreadyJoined    ErrorCode = "ALREADY_JOINED"
	ErrGenderNotSet     ErrorCode = "GENDER_NOT_SET"
	ErrGenderMismatch   ErrorCode = "GENDER_MISMATCH"
	ErrNotAParticipant  ErrorCode = "NOT_A_PARTICIPANT"
	ErrRemovedFromEvent ErrorCode = "REMOVED_FROM_EVENT"
)

// Moderation codes
const (
	ErrNoActiveBlock        ErrorCode = "NO_ACTIVE_BLOCK"
	ErrAppealAlreadyPending ErrorCode = "APPEAL_ALREADY_PENDING"
)

// Recurrence and store codes
const (
	ErrInvalidRecurrenceRule ErrorCode = "INVALID_RECURRENCE_RULE"
	ErrContention            ErrorCode = "CONTENTION"
)

// AppError is the error type passed between service and controller layers.
type AppError struct {
	Code    ErrorCode
	Message string
	Err     error
}

func NewAppError(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is reports whether err is an *AppError carrying the given code.
func Is(err error, code ErrorCode) bool {
	ae, ok := err.(*AppError)
	return ok && ae != nil && ae.Code == code
}
