package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeSource represents dataset loading errors
	ErrorTypeSource ErrorType = "source"
	// ErrorTypeRecord represents malformed issue/event records
	ErrorTypeRecord ErrorType = "record"
	// ErrorTypeConfig represents configuration errors
	ErrorTypeConfig ErrorType = "config"
	// ErrorTypeAnalysis represents analysis selection/execution errors
	ErrorTypeAnalysis ErrorType = "analysis"
	// ErrorTypeRender represents layout and figure rendering errors
	ErrorTypeRender ErrorType = "render"
)

// BaseError is the base error type with common fields
type BaseError struct {
	Type      ErrorType
	Message   string
	Timestamp time.Time
	Err       error // Wrapped error
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the wrapped error for error unwrapping
func (e *BaseError) Unwrap() error {
	return e.Err
}

// Category returns the error category. Typed errors embedding *BaseError
// inherit it, which is what IsErrorType relies on.
func (e *BaseError) Category() ErrorType {
	return e.Type
}

// NewBaseError creates a new base error
func NewBaseError(errType ErrorType, message string, err error) *BaseError {
	return &BaseError{
		Type:      errType,
		Message:   message,
		Timestamp: time.Now(),
		Err:       err,
	}
}

// Source Errors

// ErrSourceNotFound is returned when the selected dataset cannot be located
type ErrSourceNotFound struct {
	*BaseError
	Path string
}

func NewSourceNotFound(path string, err error) *ErrSourceNotFound {
	return &ErrSourceNotFound{
		BaseError: NewBaseError(ErrorTypeSource, fmt.Sprintf("dataset not found: %s", path), err),
		Path:      path,
	}
}

// ErrSourceDecodeFailed is returned when a dataset is not a JSON array of issues
type ErrSourceDecodeFailed struct {
	*BaseError
	Path string
}

func NewSourceDecodeFailed(path string, err error) *ErrSourceDecodeFailed {
	return &ErrSourceDecodeFailed{
		BaseError: NewBaseError(ErrorTypeSource, fmt.Sprintf("failed to decode dataset: %s", path), err),
		Path:      path,
	}
}

// Record Errors

// ErrMalformedRecord is returned when an issue cannot contribute to an analysis,
// e.g. it has no creator. Only surfaced under the fail policy; the default
// policy skips and counts such records.
type ErrMalformedRecord struct {
	*BaseError
	Index  int
	Reason string
}

func NewMalformedRecord(index int, reason string) *ErrMalformedRecord {
	return &ErrMalformedRecord{
		BaseError: NewBaseError(ErrorTypeRecord, fmt.Sprintf("malformed record at index %d: %s", index, reason), nil),
		Index:     index,
		Reason:    reason,
	}
}

// Config Errors

// ErrConfigValidationFailed is returned when configuration validation fails
type ErrConfigValidationFailed struct {
	*BaseError
	Field  string
	Reason string
}

func NewConfigValidationFailed(field, reason string) *ErrConfigValidationFailed {
	return &ErrConfigValidationFailed{
		BaseError: NewBaseError(ErrorTypeConfig, fmt.Sprintf("config validation failed: %s - %s", field, reason), nil),
		Field:     field,
		Reason:    reason,
	}
}

// ErrConfigMissingRequired is returned when a required config value is missing
type ErrConfigMissingRequired struct {
	*BaseError
	Field string
}

func NewConfigMissingRequired(field string) *ErrConfigMissingRequired {
	return &ErrConfigMissingRequired{
		BaseError: NewBaseError(ErrorTypeConfig, fmt.Sprintf("missing required config: %s", field), nil),
		Field:     field,
	}
}

// Analysis Errors

// ErrUnknownFeature is returned when --feature does not name a registered analysis
type ErrUnknownFeature struct {
	*BaseError
	Feature int
}

func NewUnknownFeature(feature int) *ErrUnknownFeature {
	return &ErrUnknownFeature{
		BaseError: NewBaseError(ErrorTypeAnalysis, fmt.Sprintf("unknown feature %d: need to specify which feature to run with --feature flag", feature), nil),
		Feature:   feature,
	}
}

// Render Errors

// ErrRenderFailed is returned when a figure cannot represent its input
type ErrRenderFailed struct {
	*BaseError
	Figure string
}

func NewRenderFailed(figure, reason string, err error) *ErrRenderFailed {
	return &ErrRenderFailed{
		BaseError: NewBaseError(ErrorTypeRender, fmt.Sprintf("%s: %s", figure, reason), err),
		Figure:    figure,
	}
}

// Helper functions

type categorized interface {
	Category() ErrorType
}

// IsErrorType checks if an error, or any error it wraps, is of a specific type
func IsErrorType(err error, errType ErrorType) bool {
	for err != nil {
		if c, ok := err.(categorized); ok && c.Category() == errType {
			return true
		}
		err = stderrors.Unwrap(err)
	}
	return false
}

// IsRetryable checks if an error is retryable. Every operation here is a
// deterministic transform over local data, so nothing is.
func IsRetryable(err error) bool {
	return false
}
