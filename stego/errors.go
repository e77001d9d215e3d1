package stego

import (
	"errors"
	"fmt"
)

// Sentinel errors for programmatic error handling.
// Use errors.Is() to check for these error types.
var (
	// ErrCarrierOpen indicates the carrier image could not be opened or inspected.
	ErrCarrierOpen = errors.New("cannot open carrier")

	// ErrSecretOpen indicates the secret file could not be opened or inspected.
	ErrSecretOpen = errors.New("cannot open secret file")

	// ErrOutputCreate indicates the output file could not be created or written.
	ErrOutputCreate = errors.New("cannot create output file")

	// ErrInsufficientCapacity indicates the carrier is too small for the framed payload.
	ErrInsufficientCapacity = errors.New("insufficient carrier capacity")

	// ErrMarkerTooLong indicates a marker of MarkerMaxLen bytes or more.
	ErrMarkerTooLong = errors.New("marker too long")

	// ErrMarkerMismatch indicates the embedded marker differs from the expected one.
	ErrMarkerMismatch = errors.New("marker mismatch")

	// ErrTruncatedStream indicates the carrier ended before a field was complete.
	ErrTruncatedStream = errors.New("truncated carrier stream")

	// ErrEmptyMarker indicates no marker was supplied.
	ErrEmptyMarker = errors.New("empty marker")

	// ErrNoExtension indicates the secret file name has no '.' extension.
	ErrNoExtension = errors.New("secret file has no extension")

	// ErrFieldTooLarge indicates a field length above the configured bound.
	ErrFieldTooLarge = errors.New("field too large")

	// ErrUnsafeExtension indicates a decoded extension that would escape the output directory.
	ErrUnsafeExtension = errors.New("unsafe extension")
)

// FieldError reports a failure while reading or writing one framed field.
type FieldError struct {
	Err      error  // Underlying sentinel error
	Field    string // Field being processed (marker, extension, payload, header)
	Expected string
	Actual   string
}

func (e *FieldError) Error() string {
	if e.Expected != "" || e.Actual != "" {
		return fmt.Sprintf("%s in %s field: expected %s, got %s", e.Err.Error(), e.Field, e.Expected, e.Actual)
	}
	return fmt.Sprintf("%s in %s field", e.Err.Error(), e.Field)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// CapacityError reports the outcome of a failed capacity check in carrier bytes.
type CapacityError struct {
	Available int64
	Required  int64
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("%s: %d carrier bytes available, %d required", ErrInsufficientCapacity.Error(), e.Available, e.Required)
}

func (e *CapacityError) Unwrap() error {
	return ErrInsufficientCapacity
}

// FileError wraps a file-system failure with the path involved.
type FileError struct {
	Err   error  // Underlying sentinel error (ErrCarrierOpen, etc.)
	Path  string // Path that failed
	Cause error  // Original error from the os package
}

func (e *FileError) Error() string {
	if e.Path == "" {
		if e.Cause != nil {
			return fmt.Sprintf("%s: %v", e.Err.Error(), e.Cause)
		}
		return e.Err.Error()
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s %s: %v", e.Err.Error(), e.Path, e.Cause)
	}
	return fmt.Sprintf("%s %s", e.Err.Error(), e.Path)
}

// Unwrap returns both the sentinel and the cause, so errors.Is matches
// either one.
func (e *FileError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

func newFieldError(err error, field, expected, actual string) *FieldError {
	return &FieldError{Err: err, Field: field, Expected: expected, Actual: actual}
}

func newFileError(err error, path string, cause error) *FileError {
	return &FileError{Err: err, Path: path, Cause: cause}
}
