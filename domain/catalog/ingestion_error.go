package catalog

import (
	"errors"
	"time"
)

// ErrorKind classifies an ingestion failure.
type ErrorKind string

// ErrorKind values.
const (
	ErrorKindValidation  ErrorKind = "validation"
	ErrorKindClone       ErrorKind = "clone"
	ErrorKindEnumeration ErrorKind = "enumeration"
	ErrorKindCatalog     ErrorKind = "catalog"
	ErrorKindUnknown     ErrorKind = "unknown"
)

// IngestionError records a failure to clone or enumerate one URL of a batch.
type IngestionError struct {
	repositoryURL string
	message       string
	kind          ErrorKind
	batchID       string
	occurredAt    time.Time
}

// NewIngestionError creates a new IngestionError stamped with the current time.
func NewIngestionError(repositoryURL, message string, kind ErrorKind, batchID string) IngestionError {
	return IngestionError{
		repositoryURL: repositoryURL,
		message:       message,
		kind:          kind,
		batchID:       batchID,
		occurredAt:    time.Now().UTC(),
	}
}

// ReconstructIngestionError recreates an IngestionError from persistence.
func ReconstructIngestionError(repositoryURL, message string, kind ErrorKind, batchID string, occurredAt time.Time) IngestionError {
	return IngestionError{
		repositoryURL: repositoryURL,
		message:       message,
		kind:          kind,
		batchID:       batchID,
		occurredAt:    occurredAt,
	}
}

// RepositoryURL returns the URL that failed.
func (e IngestionError) RepositoryURL() string { return e.repositoryURL }

// Message returns the failure message.
func (e IngestionError) Message() string { return e.message }

// Kind returns the failure classification.
func (e IngestionError) Kind() ErrorKind { return e.kind }

// BatchID returns the id of the batch the URL belonged to.
func (e IngestionError) BatchID() string { return e.batchID }

// OccurredAt returns when the failure was recorded.
func (e IngestionError) OccurredAt() time.Time { return e.occurredAt }

// KindOf classifies err by the ingestion error types it wraps.
func KindOf(err error) ErrorKind {
	var catalogErr *CatalogError
	switch {
	case errors.Is(err, ErrValidation):
		return ErrorKindValidation
	case IsCloneError(err):
		return ErrorKindClone
	case IsEnumerationError(err):
		return ErrorKindEnumeration
	case errors.As(err, &catalogErr):
		return ErrorKindCatalog
	default:
		return ErrorKindUnknown
	}
}
