package catalog

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	// ErrValidation indicates missing or blank required input.
	ErrValidation = errors.New("validation error")

	// ErrNotImplemented indicates an operation the catalog does not provide.
	ErrNotImplemented = errors.New("not implemented")

	// ErrCloneTimeout indicates the clone did not finish within its deadline.
	ErrCloneTimeout = errors.New("clone timed out")
)

// ValidationError returns an error wrapping ErrValidation with a message.
func ValidationError(message string) error {
	return fmt.Errorf("%w: %s", ErrValidation, message)
}

// CloneError reports a transport, authentication, or repository-not-found
// failure while fetching a repository.
type CloneError struct {
	url     string
	cause   error
	timeout bool
}

// NewCloneError creates a new CloneError.
func NewCloneError(url string, cause error) *CloneError {
	return &CloneError{url: url, cause: cause}
}

// NewCloneTimeoutError creates a CloneError for an expired clone deadline.
func NewCloneTimeoutError(url string, cause error) *CloneError {
	return &CloneError{url: url, cause: cause, timeout: true}
}

// Error implements the error interface.
func (e *CloneError) Error() string {
	if e.timeout {
		return fmt.Sprintf("clone %s: %v: %v", e.url, ErrCloneTimeout, e.cause)
	}
	return fmt.Sprintf("clone %s: %v", e.url, e.cause)
}

// Unwrap returns the underlying cause, plus ErrCloneTimeout for timeouts.
func (e *CloneError) Unwrap() []error {
	if e.timeout {
		return []error{ErrCloneTimeout, e.cause}
	}
	return []error{e.cause}
}

// URL returns the repository URL that failed to clone.
func (e *CloneError) URL() string { return e.url }

// Timeout reports whether the clone deadline expired.
func (e *CloneError) Timeout() bool { return e.timeout }

// EnumerationError reports a filesystem walk failure after a successful clone.
type EnumerationError struct {
	path  string
	cause error
}

// NewEnumerationError creates a new EnumerationError.
func NewEnumerationError(path string, cause error) *EnumerationError {
	return &EnumerationError{path: path, cause: cause}
}

// Error implements the error interface.
func (e *EnumerationError) Error() string {
	return fmt.Sprintf("enumerate %s: %v", e.path, e.cause)
}

// Unwrap returns the underlying cause.
func (e *EnumerationError) Unwrap() error { return e.cause }

// Path returns the path being enumerated.
func (e *EnumerationError) Path() string { return e.path }

// CatalogError reports a failure of the catalog store itself.
type CatalogError struct {
	op    string
	cause error
}

// NewCatalogError creates a new CatalogError.
func NewCatalogError(op string, cause error) *CatalogError {
	return &CatalogError{op: op, cause: cause}
}

// Error implements the error interface.
func (e *CatalogError) Error() string {
	return fmt.Sprintf("catalog %s: %v", e.op, e.cause)
}

// Unwrap returns the underlying cause.
func (e *CatalogError) Unwrap() error { return e.cause }

// IsCloneError reports whether err wraps a CloneError.
func IsCloneError(err error) bool {
	var target *CloneError
	return errors.As(err, &target)
}

// IsEnumerationError reports whether err wraps an EnumerationError.
func IsEnumerationError(err error) bool {
	var target *EnumerationError
	return errors.As(err, &target)
}
