package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeStorage    ErrorType = "STORAGE"
	ErrTypeValidation ErrorType = "VALIDATION"
	ErrTypeNotFound   ErrorType = "NOT_FOUND"
	ErrTypeConfig     ErrorType = "CONFIG"
)

// Sentinels matched with errors.Is against the typed domain errors below.
var (
	ErrDataLoad     = errors.New("data load failed")
	ErrInvalidRange = errors.New("invalid date range")
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// NewStorageError creates a storage-related error
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

// NewAppValidationError creates a validation error for AppError type
func NewAppValidationError(message string) *AppError {
	return NewAppError(ErrTypeValidation, message, nil)
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	return NewAppError(ErrTypeNotFound, fmt.Sprintf("%s not found", resource), nil)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// DataLoadError reports a source file that cannot be turned into a dataset:
// unreadable, missing required columns, or a row without a usable date.
// It is fatal for the load and never retried.
type DataLoadError struct {
	Path           string
	MissingColumns []string
	Row            int // 1-based data row, 0 when not row specific
	Cause          error
}

func (e *DataLoadError) Error() string {
	var b strings.Builder
	b.WriteString("error loading data")
	if e.Path != "" {
		fmt.Fprintf(&b, " from %s", e.Path)
	}
	switch {
	case len(e.MissingColumns) > 0:
		fmt.Fprintf(&b, ": missing required columns: %s", strings.Join(e.MissingColumns, ", "))
	case e.Row > 0 && e.Cause != nil:
		fmt.Fprintf(&b, ": row %d: %v", e.Row, e.Cause)
	case e.Cause != nil:
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

func (e *DataLoadError) Unwrap() error { return e.Cause }

// Is lets errors.Is(err, ErrDataLoad) match any DataLoadError.
func (e *DataLoadError) Is(target error) bool { return target == ErrDataLoad }

// NewDataLoadError wraps an I/O or parse failure of the source at path.
func NewDataLoadError(path string, cause error) *DataLoadError {
	return &DataLoadError{Path: path, Cause: cause}
}

// InvalidRangeError reports a date range whose start is after its end.
type InvalidRangeError struct {
	Start string
	End   string
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid date range: start %s is after end %s", e.Start, e.End)
}

// Is lets errors.Is(err, ErrInvalidRange) match any InvalidRangeError.
func (e *InvalidRangeError) Is(target error) bool { return target == ErrInvalidRange }
