// Package errors defines the application error taxonomy for the ingestion
// pipeline and its HTTP surface.
//
// Row- and group-level failures never become errors at all: they are absorbed
// by the parsers and only reduce data volume. The types here cover the two
// halting conditions (missing base directory, empty dataset after aggregation)
// plus the ambient parsing/config/validation kinds.
package errors

import (
	"errors"
	"fmt"
)

// ErrorType classifies an application error.
type ErrorType string

const (
	ErrTypeDirectoryMissing ErrorType = "DIRECTORY_MISSING"
	ErrTypeSourceUnreadable ErrorType = "SOURCE_UNREADABLE"
	ErrTypeEmptyDataset     ErrorType = "EMPTY_DATASET"
	ErrTypeParsing          ErrorType = "PARSING"
	ErrTypeValidation       ErrorType = "VALIDATION"
	ErrTypeConfig           ErrorType = "CONFIG"
)

// AppError is an application-specific error with a type, an optional cause
// and free-form context values.
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds a context value to the error.
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error.
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// NewDirectoryMissingError reports that the configured base data directory
// does not exist. This halts ingestion immediately.
func NewDirectoryMissingError(path string, cause error) *AppError {
	return NewAppError(ErrTypeDirectoryMissing,
		fmt.Sprintf("data directory %q not found", path), cause).
		WithContext("path", path)
}

// NewSourceError reports that one group's source file could not be read or
// parsed. Recoverable: the group contributes zero rows and the run continues.
func NewSourceError(group, message string, cause error) *AppError {
	return NewAppError(ErrTypeSourceUnreadable,
		fmt.Sprintf("group %s: %s", group, message), cause).
		WithContext("group", group)
}

// NewEmptyDatasetError reports that a unified table ended up empty after
// aggregation. The dataset name identifies which table ("environmental",
// "growth", or both). The message deliberately distinguishes this from a
// missing directory: files were present but unusable.
func NewEmptyDatasetError(dataset string) *AppError {
	return NewAppError(ErrTypeEmptyDataset,
		fmt.Sprintf("%s dataset is empty: source files were found but produced no usable rows", dataset), nil).
		WithContext("dataset", dataset)
}

// NewParsingError creates a parsing-related error.
func NewParsingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, message, cause)
}

// NewValidationError creates a validation error.
func NewValidationError(message string) *AppError {
	return NewAppError(ErrTypeValidation, message, nil)
}

// NewConfigError creates a configuration error.
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// TypeOf returns the ErrorType of err if it is (or wraps) an AppError,
// or the empty string otherwise.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ""
}

// IsDirectoryMissing reports whether err is a missing-base-directory error.
func IsDirectoryMissing(err error) bool {
	return TypeOf(err) == ErrTypeDirectoryMissing
}

// IsEmptyDataset reports whether err is a post-aggregation empty-dataset error.
func IsEmptyDataset(err error) bool {
	return TypeOf(err) == ErrTypeEmptyDataset
}
