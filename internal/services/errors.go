package services

import (
	"errors"
	"fmt"

	"github.com/AssessHub-IN/portal-service/internal/validator"
)

// ===== SENTINEL ERRORS =====

var (
	// Payments
	ErrOrderNotFound      = errors.New("payment order not found")
	ErrPaymentNotDecided  = errors.New("payment is not awaiting verification")
	ErrPaymentTerminal    = errors.New("payment is already decided")
	ErrProofRequired      = errors.New("payment proof file is required")
	ErrProofInvalid       = errors.New("payment proof file is invalid")
	ErrSubjectNotUnlocked = errors.New("subject has not been paid for")

	// Catalog
	ErrExamNotFound   = errors.New("exam not found")
	ErrCourseNotFound = errors.New("interview course not found")

	// Identity
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameTaken      = errors.New("username is already taken")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidOTP         = errors.New("invalid or expired otp")

	// Submissions
	ErrSubmissionNotFound = errors.New("submission not found")

	// Scheduling
	ErrScheduleNotFound       = errors.New("schedule request not found")
	ErrScheduleNotTransitable = errors.New("schedule request is not in the expected state")
)

// ===== STRUCTURED ERRORS =====

// ValidationServiceError wraps field-level validation failures
type ValidationServiceError struct {
	Errors validator.ValidationErrors
}

func (e *ValidationServiceError) Error() string {
	return fmt.Sprintf("validation failed: %s", e.Errors.Error())
}

// NewValidationError wraps validator output into a service error
func NewValidationError(errs validator.ValidationErrors) error {
	return &ValidationServiceError{Errors: errs}
}

// PermissionError signals that the caller may not perform an operation
type PermissionError struct {
	UserID    uint
	Resource  string
	Operation string
	Reason    string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("user %d cannot %s %s: %s", e.UserID, e.Operation, e.Resource, e.Reason)
}

// NewPermissionError creates a permission error for an operation
func NewPermissionError(userID uint, resource, operation, reason string) error {
	return &PermissionError{
		UserID:    userID,
		Resource:  resource,
		Operation: operation,
		Reason:    reason,
	}
}

// ConflictError signals that a concurrent actor got there first
type ConflictError struct {
	Resource string
	Detail   string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict on %s: %s", e.Resource, e.Detail)
}

// NewConflictError creates a conflict error
func NewConflictError(resource, detail string) error {
	return &ConflictError{Resource: resource, Detail: detail}
}

// ===== PREDICATES =====

// IsValidationError reports whether err carries field validation failures
func IsValidationError(err error) bool {
	var ve *ValidationServiceError
	return errors.As(err, &ve)
}

// IsPermissionError reports whether err is a permission denial
func IsPermissionError(err error) bool {
	var pe *PermissionError
	return errors.As(err, &pe)
}

// IsConflictError reports whether err is a concurrency conflict
func IsConflictError(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

// IsNotFoundError reports whether err is one of the not-found sentinels
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrOrderNotFound) ||
		errors.Is(err, ErrExamNotFound) ||
		errors.Is(err, ErrCourseNotFound) ||
		errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrSubmissionNotFound) ||
		errors.Is(err, ErrScheduleNotFound)
}
