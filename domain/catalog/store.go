package catalog

import "context"

// Store is the catalog's only shared mutable state: an ordered list of entries
// and an ordered error log.
//
// Implementations preserve insertion order, do not deduplicate, and serialise
// Reset against every other operation.
type Store interface {
	// Append adds entries to the end of the catalog.
	Append(ctx context.Context, entries ...Entry) error

	// RecordError adds a failure to the end of the error log.
	RecordError(ctx context.Context, failure IngestionError) error

	// Entries returns all entries in insertion order.
	Entries(ctx context.Context) ([]Entry, error)

	// Errors returns the error log in insertion order.
	Errors(ctx context.Context) ([]IngestionError, error)

	// Reset clears entries and errors and leaves exactly the seed entry.
	Reset(ctx context.Context, seed Entry) error
}
