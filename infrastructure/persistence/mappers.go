package persistence

import (
	"github.com/helixml/gitsearch/domain/catalog"
)

// EntryMapper maps between domain Entry and persistence EntryModel.
type EntryMapper struct{}

// ToDomain converts an EntryModel to a domain Entry.
func (m EntryMapper) ToDomain(e EntryModel) catalog.Entry {
	return catalog.NewEntry(e.RepositoryURL, e.FileName)
}

// ToModel converts a domain Entry to an EntryModel.
func (m EntryMapper) ToModel(e catalog.Entry) EntryModel {
	return EntryModel{
		RepositoryURL: e.RepositoryURL(),
		FileName:      e.FileName(),
	}
}

// IngestionErrorMapper maps between domain IngestionError and IngestionErrorModel.
type IngestionErrorMapper struct{}

// ToDomain converts an IngestionErrorModel to a domain IngestionError.
func (m IngestionErrorMapper) ToDomain(e IngestionErrorModel) catalog.IngestionError {
	return catalog.ReconstructIngestionError(
		e.RepositoryURL,
		e.Message,
		catalog.ErrorKind(e.Kind),
		e.BatchID,
		e.OccurredAt.UTC(),
	)
}

// ToModel converts a domain IngestionError to an IngestionErrorModel.
func (m IngestionErrorMapper) ToModel(e catalog.IngestionError) IngestionErrorModel {
	return IngestionErrorModel{
		RepositoryURL: e.RepositoryURL(),
		Message:       e.Message(),
		Kind:          string(e.Kind()),
		BatchID:       e.BatchID(),
		OccurredAt:    e.OccurredAt(),
	}
}
