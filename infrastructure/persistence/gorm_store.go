package persistence

import (
	"context"
	"fmt"
	"sync"

	"gorm.io/gorm"

	"github.com/helixml/gitsearch/domain/catalog"
	"github.com/helixml/gitsearch/internal/database"
)

// GormStore keeps the catalog in a SQL database so several replicas can share
// it. Implements catalog.Store interface.
type GormStore struct {
	// mu serialises Reset against other operations within this process;
	// the transaction covers other processes.
	mu      sync.RWMutex
	db      database.Database
	entries database.Repository[catalog.Entry, EntryModel]
	errors  database.Repository[catalog.IngestionError, IngestionErrorModel]
}

// NewGormStore creates a GormStore, migrating the schema first.
func NewGormStore(db database.Database) (*GormStore, error) {
	if err := AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return &GormStore{
		db:      db,
		entries: database.NewRepository[catalog.Entry, EntryModel](db, EntryMapper{}, "catalog entry"),
		errors:  database.NewRepository[catalog.IngestionError, IngestionErrorModel](db, IngestionErrorMapper{}, "ingestion error"),
	}, nil
}

// Append adds entries to the end of the catalog in one transaction.
func (s *GormStore) Append(ctx context.Context, entries ...catalog.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return database.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		return s.entries.CreateAll(tx, entries...)
	})
}

// RecordError adds a failure to the end of the error log.
func (s *GormStore) RecordError(ctx context.Context, failure catalog.IngestionError) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errors.CreateAll(s.errors.DB(ctx), failure)
}

// Entries returns all entries in insertion order.
func (s *GormStore) Entries(ctx context.Context) ([]catalog.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entries.All(ctx)
}

// Errors returns the error log in insertion order.
func (s *GormStore) Errors(ctx context.Context) ([]catalog.IngestionError, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errors.All(ctx)
}

// Reset clears entries and errors and leaves exactly the seed entry.
func (s *GormStore) Reset(ctx context.Context, seed catalog.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return database.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		if err := s.entries.DeleteAll(tx); err != nil {
			return err
		}
		if err := s.errors.DeleteAll(tx); err != nil {
			return err
		}
		return s.entries.CreateAll(tx, seed)
	})
}

// Close closes the underlying database connection.
func (s *GormStore) Close() error {
	return s.db.Close()
}

var _ catalog.Store = (*GormStore)(nil)
