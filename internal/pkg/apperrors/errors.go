package apperrors

import "errors"

// Common errors
var (
	// Resource errors
	ErrResourceNotFound      = errors.New("resource not found")
	ErrResourceAlreadyExists = errors.New("resource already exists")
	ErrConflict              = errors.New("conflict")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrTokenNotFound      = errors.New("token not found")
	ErrTokenRevoked       = errors.New("token revoked")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")

	// Storage errors
	ErrStorageFault = errors.New("storage fault")
)

// User errors
var (
	ErrUserNotFound      = NewCustomError(ErrResourceNotFound, "user not found")
	ErrUsernameTaken     = NewCustomError(ErrValidationFailed, "a user with that username already exists")
	ErrInvalidUserInput  = NewCustomError(ErrValidationFailed, "invalid user data")
	ErrMalformedUserData = NewCustomError(ErrValidationFailed, "invalid JSON format for user data")
	ErrUserDataRequired  = NewCustomError(ErrValidationFailed, "user data is required")
)

// Faculty errors
var (
	ErrFacultyNotFound = NewCustomError(ErrResourceNotFound, "faculty not found")
)

// Student errors
var (
	ErrStudentNotFound = NewCustomError(ErrResourceNotFound, "student not found")
)

// Profile picture errors
var (
	ErrPictureMissing       = NewCustomError(ErrValidationFailed, "no file provided")
	ErrPictureTooLarge      = NewCustomError(ErrValidationFailed, "image file too large (> 5MB)")
	ErrPictureBadExtension  = NewCustomError(ErrValidationFailed, "unsupported file extension")
	ErrPictureBadMimeType   = NewCustomError(ErrValidationFailed, "invalid file type")
	ErrPictureBadDimensions = NewCustomError(ErrValidationFailed, "image dimensions too large")
)

// NewResourceNotFoundError creates a new custom error for resource not found with a message
func NewResourceNotFoundError(message string) error {
	return &CustomError{
		Err:     ErrResourceNotFound,
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

// NewValidationError creates a new custom error for invalid input with a message
func NewValidationError(message string) error {
	return &CustomError{
		Err:     ErrValidationFailed,
		Message: message,
	}
}

// Is returns whether err matches target or any of the errors in errList
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

// Is matches another CustomError with the same cause and message, so copies
// made by WithDetails or WithCode still match their sentinel.
func (e *CustomError) Is(target error) bool {
	t, ok := target.(*CustomError)
	return ok && t.Err == e.Err && t.Message == e.Message
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails returns a copy of the error carrying context details
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	clone := *e
	clone.Details = details
	return &clone
}

// WithCode returns a copy of the error carrying an error code
func (e *CustomError) WithCode(code string) *CustomError {
	clone := *e
	clone.Code = code
	return &clone
}

// PublicMessage extracts the most specific user-facing message in the chain.
func PublicMessage(err error) string {
	var custom *CustomError
	if errors.As(err, &custom) && custom.Message != "" {
		return custom.Message
	}
	return ""
}
