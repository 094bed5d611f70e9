package errors

import (
	"errors"
	"fmt"
)

// InkError is the structured error type for inkdex.
// It provides rich context for error handling, logging, and user presentation.
type InkError struct {
	// Code is the unique error code (e.g., "ERR_203_INDEX_CORRUPT").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, IO, Validation, Internal).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Suggestion is an actionable suggestion for the user.
	Suggestion string
}

// Error implements the error interface.
func (e *InkError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *InkError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches the target error by code.
// This enables errors.Is() to work with InkError.
func (e *InkError) Is(target error) bool {
	if t, ok := target.(*InkError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
// Returns the error for method chaining.
func (e *InkError) WithDetail(key, value string) *InkError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion adds an actionable suggestion for the user.
// Returns the error for method chaining.
func (e *InkError) WithSuggestion(suggestion string) *InkError {
	e.Suggestion = suggestion
	return e
}

// New creates a new InkError with the given code and message.
// Category and severity are derived from the code.
func New(code string, message string, cause error) *InkError {
	return &InkError{
		Code:     code,
		Message:  message,
		Category: categoryFromCode(code),
		Severity: severityFromCode(code),
		Cause:    cause,
	}
}

// Wrap creates an InkError from an existing error.
// The error's message becomes the InkError message.
func Wrap(code string, err error) *InkError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// IOError creates an I/O-related error.
func IOError(message string, cause error) *InkError {
	return New(ErrCodeFileNotFound, message, cause)
}

// ValidationError creates a validation-related error.
func ValidationError(message string, cause error) *InkError {
	return New(ErrCodeInvalidInput, message, cause)
}

// InternalError creates an internal error.
func InternalError(message string, cause error) *InkError {
	return New(ErrCodeInternal, message, cause)
}

// IsFatal checks if an error has fatal severity.
// Fatal errors should abort the current operation.
func IsFatal(err error) bool {
	var ie *InkError
	if errors.As(err, &ie) {
		return ie.Severity == SeverityFatal
	}
	return false
}

// GetCode extracts the error code from an InkError anywhere in the chain.
// Returns empty string if no InkError is present.
func GetCode(err error) string {
	var ie *InkError
	if errors.As(err, &ie) {
		return ie.Code
	}
	return ""
}

// GetCategory extracts the category from an InkError anywhere in the chain.
// Returns empty string if no InkError is present.
func GetCategory(err error) Category {
	var ie *InkError
	if errors.As(err, &ie) {
		return ie.Category
	}
	return ""
}
