package errors

import (
	"fmt"
)

// ErrorCode represents a specific error type for profile operations.
type ErrorCode string

const (
	// ErrCodeUnauthenticated indicates the caller has no valid session.
	ErrCodeUnauthenticated ErrorCode = "UNAUTHENTICATED"
	// ErrCodeInvalidGender indicates the gender value is outside the allowed enum.
	ErrCodeInvalidGender ErrorCode = "INVALID_GENDER"
	// ErrCodeInvalidNickname indicates the nickname failed validation.
	ErrCodeInvalidNickname ErrorCode = "INVALID_NICKNAME"
	// ErrCodePersistenceFailure indicates the record store rejected or could not confirm a write.
	ErrCodePersistenceFailure ErrorCode = "PERSISTENCE_FAILURE"
	// ErrCodeRateLimitExceeded indicates the per-user write rate limit has been exceeded.
	ErrCodeRateLimitExceeded ErrorCode = "RATE_LIMIT_EXCEEDED"
)

// ProfileError represents a structured error for profile operations.
type ProfileError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *ProfileError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *ProfileError) Unwrap() error {
	return e.Cause
}

// UserMessage returns the text surfaced to the caller. Persistence
// failures pass the underlying store message through verbatim.
func (e *ProfileError) UserMessage() string {
	if e.Code == ErrCodePersistenceFailure && e.Cause != nil {
		return e.Cause.Error()
	}
	return e.Message
}

// Convenience constructors for the writer's error taxonomy.

// Unauthenticated creates an unauthenticated error.
func Unauthenticated(msg string) *ProfileError {
	return &ProfileError{Code: ErrCodeUnauthenticated, Message: msg}
}

// InvalidGender creates an invalid gender error.
func InvalidGender(value string) *ProfileError {
	return &ProfileError{
		Code:    ErrCodeInvalidGender,
		Message: fmt.Sprintf("invalid gender selection: %s", value),
	}
}

// InvalidNickname creates an invalid nickname error.
func InvalidNickname(msg string) *ProfileError {
	return &ProfileError{Code: ErrCodeInvalidNickname, Message: msg}
}

// PersistenceFailure creates a persistence failure error.
func PersistenceFailure(cause error) *ProfileError {
	return &ProfileError{Code: ErrCodePersistenceFailure, Message: "failed to persist profile", Cause: cause}
}

// RateLimitExceeded creates a rate limit exceeded error.
func RateLimitExceeded(msg string) *ProfileError {
	return &ProfileError{Code: ErrCodeRateLimitExceeded, Message: msg}
}

// IsCode checks if an error is of a specific code.
func IsCode(err error, code ErrorCode) bool {
	if perr, ok := err.(*ProfileError); ok {
		return perr.Code == code
	}
	return false
}

// GetCodeFromError extracts the error code from any error.
// Returns the provided default code if the error is not a ProfileError.
func GetCodeFromError(err error, defaultCode ErrorCode) ErrorCode {
	if perr, ok := err.(*ProfileError); ok {
		return perr.Code
	}
	return defaultCode
}
