package apperrors

import "errors"

// Common errors
var (
	// Resource errors
	ErrResourceNotFound      = errors.New("resource not found")
	ErrResourceAlreadyExists = errors.New("resource already exists")
	ErrConflict              = errors.New("conflict")

	// Authentication errors
	ErrTokenExpired  = errors.New("token expired")
	ErrTokenInvalid  = errors.New("invalid token")
	ErrTokenNotFound = errors.New("token not found")
	ErrInvalidFormat = errors.New("invalid token format")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")

	// Validation errors
	ErrBadRequest = errors.New("bad request")
)

// Community errors
var (
	ErrCommunityNotFound   = errors.New("community not found")
	ErrCommunityNameExists = errors.New("a community with this name already exists")
	ErrNotMember           = errors.New("user is not a member of this community")
	ErrMembershipRequired  = errors.New("membership is required for this action")
	ErrAlreadyMember       = errors.New("user is already a member of this community")
	ErrUserBanned          = errors.New("user is banned from this community")
	ErrOwnerCannotLeave    = errors.New("the community owner cannot leave the community")
	ErrCannotBanOwner      = errors.New("the community owner cannot be banned")
	ErrModeratorNotFound   = errors.New("moderator not found")
)

// Post errors
var (
	ErrPostNotFound = errors.New("post not found")
)

// User errors
var (
	ErrUserNotFound = errors.New("user not found")
)

// NewResourceNotFoundError creates a new custom error for resource not found with a message
func NewResourceNotFoundError(message string) error {
	return &CustomError{
		Err:     ErrResourceNotFound,
		Message: message,
	}
}

// NewConflictError creates a new custom error for conflict situations with a message
func NewConflictError(message string) error {
	return &CustomError{
		Err:     ErrConflict,
		Message: message,
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

// Is returns whether target matches any of the errors in errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err       error
	Message   string
	StatusMsg string
	Code      string
	Details   map[string]interface{}
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
