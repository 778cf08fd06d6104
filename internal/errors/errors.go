package errors

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"time"
)

// Error types for the lightning-document-search system
type ErrorType string

const (
	// Query errors
	ErrorTypeQuery ErrorType = "query"

	// File errors
	ErrorTypeFileNotFound ErrorType = "file_not_found"
	ErrorTypePermission   ErrorType = "permission"
	ErrorTypeFileRead     ErrorType = "file_read"
	ErrorTypeDirectory    ErrorType = "directory"

	// Text errors
	ErrorTypeRange ErrorType = "range"

	// Configuration errors
	ErrorTypeConfig ErrorType = "config"
)

// Sentinels for errors.Is checks. Every typed error below unwraps to one of these
// in addition to its underlying cause.
var (
	ErrInvalidQuery      = stderrors.New("invalid query")
	ErrFileUnreadable    = stderrors.New("file unreadable")
	ErrSubtreeUnreadable = stderrors.New("subtree unreadable")
	ErrInvalidRange      = stderrors.New("invalid range")
	ErrBinaryFile        = stderrors.New("binary file")
	ErrFileTooLarge      = stderrors.New("file too large")
)

// QueryError represents a malformed query: bad pattern syntax or an empty literal.
// It is the only error that aborts a whole search.
type QueryError struct {
	Type       ErrorType
	Query      string
	Underlying error
	Timestamp  time.Time
}

// NewQueryError creates a new query error
func NewQueryError(query string, err error) *QueryError {
	return &QueryError{
		Type:       ErrorTypeQuery,
		Query:      query,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *QueryError) Error() string {
	return fmt.Sprintf("invalid query %q: %v", e.Query, e.Underlying)
}

// Unwrap returns the underlying error and the ErrInvalidQuery sentinel
func (e *QueryError) Unwrap() []error {
	return []error{ErrInvalidQuery, e.Underlying}
}

// FileError represents a file-related error
type FileError struct {
	Type       ErrorType
	Path       string
	Operation  string
	Underlying error
	Timestamp  time.Time
}

// NewFileError creates a new file error
func NewFileError(op, path string, err error) *FileError {
	return &FileError{
		Type:       classify(err, ErrorTypeFileRead),
		Path:       path,
		Operation:  op,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *FileError) Error() string {
	return fmt.Sprintf("file %s failed for %s: %v", e.Operation, e.Path, e.Underlying)
}

// Unwrap returns the underlying error and the ErrFileUnreadable sentinel
func (e *FileError) Unwrap() []error {
	return []error{ErrFileUnreadable, e.Underlying}
}

// DirError represents a directory that could not be enumerated
type DirError struct {
	Type       ErrorType
	Path       string
	Underlying error
	Timestamp  time.Time
}

// NewDirError creates a new directory error
func NewDirError(path string, err error) *DirError {
	return &DirError{
		Type:       classify(err, ErrorTypeDirectory),
		Path:       path,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *DirError) Error() string {
	return fmt.Sprintf("cannot read directory %s: %v", e.Path, e.Underlying)
}

// Unwrap returns the underlying error and the ErrSubtreeUnreadable sentinel
func (e *DirError) Unwrap() []error {
	return []error{ErrSubtreeUnreadable, e.Underlying}
}

// RangeError is returned when a byte range cannot be sliced into valid text
type RangeError struct {
	Type      ErrorType
	Start     int
	End       int
	Length    int
	Timestamp time.Time
}

// NewRangeError creates a new range error
func NewRangeError(start, end, length int) *RangeError {
	return &RangeError{
		Type:      ErrorTypeRange,
		Start:     start,
		End:       end,
		Length:    length,
		Timestamp: time.Now(),
	}
}

// Error implements the error interface
func (e *RangeError) Error() string {
	return fmt.Sprintf("invalid byte range [%d:%d] for text of length %d", e.Start, e.End, e.Length)
}

// Unwrap returns ErrInvalidRange
func (e *RangeError) Unwrap() error {
	return ErrInvalidRange
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field      string
	Value      string
	Underlying error
	Timestamp  time.Time
}

// NewConfigError creates a new config error
func NewConfigError(field, value string, err error) *ConfigError {
	return &ConfigError{
		Field:      field,
		Value:      value,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error for field %s (value %s): %v", e.Field, e.Value, e.Underlying)
}

// Unwrap returns the underlying error
func (e *ConfigError) Unwrap() error {
	return e.Underlying
}

// MultiError represents multiple errors
type MultiError struct {
	Errors []error
}

// NewMultiError creates a new multi-error
func NewMultiError(errs []error) *MultiError {
	// Filter out nil errors
	filtered := make([]error, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	return &MultiError{Errors: filtered}
}

// ErrOrNil returns nil when no errors were collected
func (e *MultiError) ErrOrNil() error {
	if e == nil || len(e.Errors) == 0 {
		return nil
	}
	return e
}

// Error implements the error interface
func (e *MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d errors: %v", len(e.Errors), e.Errors)
}

// Unwrap returns all errors
func (e *MultiError) Unwrap() []error {
	return e.Errors
}

// classify maps an os-level error to an ErrorType
func classify(err error, fallback ErrorType) ErrorType {
	switch {
	case stderrors.Is(err, fs.ErrPermission):
		return ErrorTypePermission
	case stderrors.Is(err, fs.ErrNotExist):
		return ErrorTypeFileNotFound
	default:
		return fallback
	}
}
