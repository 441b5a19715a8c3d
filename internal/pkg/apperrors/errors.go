package apperrors

import "errors"

// Common errors
var (
	// Resource errors
	ErrResourceNotFound      = errors.New("resource not found")
	ErrResourceAlreadyExists = errors.New("resource already exists")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrInvalidFormat      = errors.New("invalid token format")
	ErrAccountDisabled    = errors.New("account is disabled")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")
)

// Scheduling engine errors
var (
	// ErrIllegalTransition is returned when the requested status transition is
	// not permitted from the current status for the given actor role.
	ErrIllegalTransition = errors.New("illegal status transition")
	// ErrSchedulingConflict marks a detected room/group/lecturer overlap. It is
	// a valid outcome, not a hard failure: the term lands in CONFLICT status and
	// the wrapped CustomError carries the matching-dimension combination.
	ErrSchedulingConflict = errors.New("scheduling conflict")
	// ErrConcurrentModification is returned when the term changed between
	// validation and commit; the caller should retry the whole operation.
	ErrConcurrentModification = errors.New("term was modified concurrently")
	// ErrRejectionReasonRequired is returned when rejecting without a reason.
	ErrRejectionReasonRequired = errors.New("rejection reason is required")
	// ErrSessionImmutable is returned when changing the bounds of a session
	// that already owns exam terms.
	ErrSessionImmutable = errors.New("session bounds cannot change while terms exist")
	// ErrSessionOverlap is returned when a new session overlaps an existing one.
	ErrSessionOverlap = errors.New("session overlaps an existing session")
)

// Entity lookup errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrTermNotFound       = errors.New("exam term not found")
	ErrSessionNotFound    = errors.New("exam session not found")
	ErrRoomNotFound       = errors.New("room not found")
	ErrCourseNotFound     = errors.New("course not found")
	ErrGroupNotFound      = errors.New("student group not found")
	ErrEmailAlreadyExists = errors.New("email already exists")
)

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Code    string
	Details map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// WithCode adds an error code
func (e *CustomError) WithCode(code string) *CustomError {
	e.Code = code
	return e
}

// NewValidationError creates a validation error carrying the stable
// identifiers of every violated rule, so the caller can render one message
// per violation instead of just the first.
func NewValidationError(rules []string) *CustomError {
	return &CustomError{
		Err:     ErrValidationFailed,
		Message: "exam term validation failed",
		Details: map[string]interface{}{"violatedRules": rules},
	}
}

// NewConflictError creates a scheduling conflict error carrying the
// matching-dimension combination label (e.g. "room,group") for display.
func NewConflictError(combination string) *CustomError {
	return &CustomError{
		Err:     ErrSchedulingConflict,
		Message: "exam term conflicts with an existing term: " + combination,
		Details: map[string]interface{}{"conflictingDimensions": combination},
	}
}

// NewForbiddenError creates a new custom error for permission denied with a message
func NewForbiddenError(message string) error {
	return &CustomError{
		Err:     ErrPermissionDenied,
		Message: message,
	}
}

// NewBadRequestError creates a new custom error for bad request with a message
func NewBadRequestError(message string) error {
	return &CustomError{
		Err:     ErrBadRequest,
		Message: message,
	}
}
