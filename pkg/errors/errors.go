// Package errors defines the application error type used at the ingestion
// service's boundaries: files, templates, configuration, and the CLI.
//
// Expected bad data inside the pipeline (malformed dates, unparseable
// amounts, incomplete mappings) is never raised as an error; it travels as
// data in transform results and validation results. This package covers the
// conditions around that core: a file that cannot be opened, a template that
// cannot be parsed, an allocation that does not add up.
package errors

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ErrorCategory represents different categories of errors
type ErrorCategory string

const (
	CategoryFile          ErrorCategory = "file"
	CategoryParse         ErrorCategory = "parse"
	CategoryMapping       ErrorCategory = "mapping"
	CategoryValidation    ErrorCategory = "validation"
	CategoryAllocation    ErrorCategory = "allocation"
	CategoryConfiguration ErrorCategory = "configuration"
	CategoryInternal      ErrorCategory = "internal"
)

// ErrorCode represents specific error codes within categories
type ErrorCode string

const (
	// File errors
	CodeFileNotFound   ErrorCode = "file_not_found"
	CodeFilePermission ErrorCode = "file_permission"
	CodeFileCorrupted  ErrorCode = "file_corrupted"
	CodeDirectoryError ErrorCode = "directory_error"

	// Parse errors
	CodeInvalidFormat ErrorCode = "invalid_format"
	CodeEncodingError ErrorCode = "encoding_error"
	CodeEmptyFile     ErrorCode = "empty_file"

	// Mapping errors
	CodeInvalidMapping  ErrorCode = "invalid_mapping"
	CodeDuplicateField  ErrorCode = "duplicate_field"
	CodeMissingMapping  ErrorCode = "missing_mapping"

	// Validation errors
	CodeInvalidAmount ErrorCode = "invalid_amount"
	CodeInvalidDate   ErrorCode = "invalid_date"
	CodeMissingField  ErrorCode = "missing_field"

	// Allocation errors
	CodeAllocationMismatch ErrorCode = "allocation_mismatch"
	CodeInvalidShare       ErrorCode = "invalid_share"
	CodeEmptyGroup         ErrorCode = "empty_group"

	// Configuration errors
	CodeInvalidConfig ErrorCode = "invalid_config"
	CodeMissingConfig ErrorCode = "missing_config"

	// Internal errors
	CodeUnexpectedError ErrorCode = "unexpected_error"
)

// IngestError is the base error type for all application errors
type IngestError struct {
	Category   ErrorCategory     `json:"category"`
	Code       ErrorCode         `json:"code"`
	Message    string            `json:"message"`
	Suggestion string            `json:"suggestion,omitempty"`
	Context    Context           `json:"context,omitempty"`
	Cause      error             `json:"-"`
	StackTrace errors.StackTrace `json:"-"`
}

// Context provides additional information about the error
type Context map[string]interface{}

// Error implements the error interface
func (e *IngestError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%s (suggestion: %s)", e.Message, e.Suggestion)
	}
	return e.Message
}

// Unwrap returns the underlying cause error
func (e *IngestError) Unwrap() error {
	return e.Cause
}

// GetExitCode returns an appropriate exit code for the error
func (e *IngestError) GetExitCode() int {
	switch e.Category {
	case CategoryFile:
		return 2
	case CategoryParse, CategoryValidation:
		return 3
	case CategoryMapping, CategoryConfiguration:
		return 4
	case CategoryAllocation, CategoryInternal:
		return 5
	default:
		return 1
	}
}

// WithContext adds context information to the error
func (e *IngestError) WithContext(key string, value interface{}) *IngestError {
	if e.Context == nil {
		e.Context = make(Context)
	}
	e.Context[key] = value
	return e
}

// WithSuggestion adds a suggestion for fixing the error
func (e *IngestError) WithSuggestion(suggestion string) *IngestError {
	e.Suggestion = suggestion
	return e
}

// New creates a new IngestError
func New(category ErrorCategory, code ErrorCode, message string) *IngestError {
	return &IngestError{
		Category:   category,
		Code:       code,
		Message:    message,
		StackTrace: errors.New("").(stackTracer).StackTrace(),
	}
}

// Wrap wraps an existing error with IngestError context
func Wrap(err error, category ErrorCategory, code ErrorCode, message string) *IngestError {
	if err == nil {
		return nil
	}

	return &IngestError{
		Category:   category,
		Code:       code,
		Message:    message,
		Cause:      err,
		StackTrace: errors.WithStack(err).(stackTracer).StackTrace(),
	}
}

// stackTracer interface for extracting stack traces
type stackTracer interface {
	StackTrace() errors.StackTrace
}

// FileError creates a file-related error
func FileError(code ErrorCode, path string, err error) *IngestError {
	var message, suggestion string

	switch code {
	case CodeFileNotFound:
		message = fmt.Sprintf("file not found: %s", path)
		suggestion = "check if the file path is correct and the file exists"
	case CodeFilePermission:
		message = fmt.Sprintf("permission denied accessing file: %s", path)
		suggestion = "check file permissions"
	case CodeFileCorrupted:
		message = fmt.Sprintf("file appears to be corrupted: %s", path)
		suggestion = "verify the file integrity and re-export the statement"
	case CodeDirectoryError:
		message = fmt.Sprintf("directory error: %s", path)
		suggestion = "ensure the directory exists and is accessible"
	default:
		message = fmt.Sprintf("file error: %s", path)
		suggestion = "check the file and try again"
	}

	var result *IngestError
	if err != nil {
		result = Wrap(err, CategoryFile, code, message)
	} else {
		result = New(CategoryFile, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("file_path", path)
}

// ParseError creates a parsing-related error for a file at a given line
func ParseError(code ErrorCode, file string, line int, detail string, err error) *IngestError {
	var message, suggestion string

	switch code {
	case CodeInvalidFormat:
		message = fmt.Sprintf("invalid format in file %s at line %d: %s", file, line, detail)
		suggestion = "check the file is a comma-delimited CSV"
	case CodeEncodingError:
		message = fmt.Sprintf("encoding error in file %s at line %d", file, line)
		suggestion = "save the file in UTF-8 encoding and try again"
	case CodeEmptyFile:
		message = fmt.Sprintf("file %s contains no data rows", file)
		suggestion = "ensure the export includes at least one transaction row"
	default:
		message = fmt.Sprintf("parse error in file %s at line %d: %s", file, line, detail)
		suggestion = "check the file format and data integrity"
	}

	var result *IngestError
	if err != nil {
		result = Wrap(err, CategoryParse, code, message)
	} else {
		result = New(CategoryParse, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("file", file).
		WithContext("line", line)
}

// MappingError creates a column-mapping-related error
func MappingError(code ErrorCode, detail string, err error) *IngestError {
	var message, suggestion string

	switch code {
	case CodeInvalidMapping:
		message = fmt.Sprintf("column mapping is not valid: %s", detail)
		suggestion = "map a date column, a description column, and an amount representation"
	case CodeDuplicateField:
		message = fmt.Sprintf("column mapping assigns a field more than once: %s", detail)
		suggestion = "each field except 'other' may be assigned to only one column"
	case CodeMissingMapping:
		message = fmt.Sprintf("no column mapping available: %s", detail)
		suggestion = "infer a mapping from headers or load a saved template"
	default:
		message = fmt.Sprintf("mapping error: %s", detail)
		suggestion = "review the column mapping"
	}

	var result *IngestError
	if err != nil {
		result = Wrap(err, CategoryMapping, code, message)
	} else {
		result = New(CategoryMapping, code, message)
	}

	return result.WithSuggestion(suggestion)
}

// AllocationError creates an allocation-related error
func AllocationError(code ErrorCode, detail string, err error) *IngestError {
	var message, suggestion string

	switch code {
	case CodeAllocationMismatch:
		message = fmt.Sprintf("allocation does not add up: %s", detail)
		suggestion = "member amounts must sum exactly to the transaction total"
	case CodeInvalidShare:
		message = fmt.Sprintf("invalid allocation share: %s", detail)
		suggestion = "percentages must be between 0 and 100 and sum to exactly 100"
	case CodeEmptyGroup:
		message = fmt.Sprintf("allocation has no members: %s", detail)
		suggestion = "select at least one member to split with"
	default:
		message = fmt.Sprintf("allocation error: %s", detail)
		suggestion = "review the allocation inputs"
	}

	var result *IngestError
	if err != nil {
		result = Wrap(err, CategoryAllocation, code, message)
	} else {
		result = New(CategoryAllocation, code, message)
	}

	return result.WithSuggestion(suggestion)
}

// ConfigurationError creates a configuration-related error
func ConfigurationError(code ErrorCode, setting string, value interface{}, err error) *IngestError {
	var message, suggestion string

	switch code {
	case CodeInvalidConfig:
		message = fmt.Sprintf("invalid configuration for '%s': %v", setting, value)
		suggestion = "check the configuration documentation for valid values"
	case CodeMissingConfig:
		message = fmt.Sprintf("missing required configuration: %s", setting)
		suggestion = "provide this setting via a flag, environment variable, or config file"
	default:
		message = fmt.Sprintf("configuration error: %s", setting)
		suggestion = "check your configuration and try again"
	}

	var result *IngestError
	if err != nil {
		result = Wrap(err, CategoryConfiguration, code, message)
	} else {
		result = New(CategoryConfiguration, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("setting", setting).
		WithContext("value", value)
}

// InternalError creates an internal error
func InternalError(code ErrorCode, operation string, err error) *IngestError {
	message := fmt.Sprintf("unexpected error during %s", operation)

	var result *IngestError
	if err != nil {
		result = Wrap(err, CategoryInternal, code, message)
	} else {
		result = New(CategoryInternal, code, message)
	}

	return result.
		WithSuggestion("this is likely a bug - please report it with the error details").
		WithContext("operation", operation)
}

// IsIngestError checks if an error is an IngestError
func IsIngestError(err error) bool {
	_, ok := err.(*IngestError)
	return ok
}

// AsIngestError extracts an IngestError from an error chain
func AsIngestError(err error) (*IngestError, bool) {
	var ingestErr *IngestError
	if errors.As(err, &ingestErr) {
		return ingestErr, true
	}
	return nil, false
}

// WrapIfNeeded wraps an error if it's not already an IngestError
func WrapIfNeeded(err error, category ErrorCategory, code ErrorCode, message string) *IngestError {
	if err == nil {
		return nil
	}

	if ingestErr, ok := AsIngestError(err); ok {
		return ingestErr
	}

	return Wrap(err, category, code, message)
}

// FormatCategories renders category counts for log lines and summaries.
func FormatCategories(counts map[ErrorCategory]int) string {
	if len(counts) == 0 {
		return "no errors"
	}

	var parts []string
	for category, count := range counts {
		parts = append(parts, fmt.Sprintf("%s: %d", category, count))
	}
	return strings.Join(parts, ", ")
}
