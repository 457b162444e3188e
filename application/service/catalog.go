package service

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/helixml/gitsearch/domain/catalog"
)

// Listing is a snapshot of the catalog: either repository URLs only or
// full (repository URL, file name) pairs, in insertion order.
type Listing struct {
	includeFiles bool
	entries      []catalog.Entry
}

// IncludeFiles reports whether the listing carries file names.
func (l Listing) IncludeFiles() bool { return l.includeFiles }

// Len returns the number of rows in the listing.
func (l Listing) Len() int { return len(l.entries) }

// URLs returns one repository URL per entry, duplicates included.
func (l Listing) URLs() []string { return catalog.URLs(l.entries) }

// Pairs returns one (repository URL, file name) pair per entry.
func (l Listing) Pairs() [][2]string {
	pairs := make([][2]string, len(l.entries))
	for i, e := range l.entries {
		pairs[i] = e.Pair()
	}
	return pairs
}

// Entries returns a copy of the underlying entries.
func (l Listing) Entries() []catalog.Entry {
	result := make([]catalog.Entry, len(l.entries))
	copy(result, l.entries)
	return result
}

// Rows returns URLs or pairs depending on IncludeFiles, ready for encoding.
func (l Listing) Rows() any {
	if l.includeFiles {
		return l.Pairs()
	}
	return l.URLs()
}

// Catalog provides read and reset operations over the catalog store.
type Catalog struct {
	store   catalog.Store
	seed    catalog.Entry
	metrics *Metrics
	closed  *atomic.Bool
	logger  *slog.Logger
}

// NewCatalog creates a new Catalog service.
func NewCatalog(store catalog.Store, seed catalog.Entry, metrics *Metrics, closed *atomic.Bool, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}
	return &Catalog{
		store:   store,
		seed:    seed,
		metrics: metrics,
		closed:  closed,
		logger:  logger,
	}
}

// Seed returns the entry a reset leaves behind.
func (s *Catalog) Seed() catalog.Entry { return s.seed }

// List returns the catalog in insertion order. With includeFiles false only
// repository URLs are returned, one per entry.
func (s *Catalog) List(ctx context.Context, includeFiles bool) (Listing, error) {
	if s.isClosed() {
		return Listing{}, ErrClientClosed
	}
	entries, err := s.store.Entries(ctx)
	if err != nil {
		return Listing{}, catalog.NewCatalogError("list", err)
	}
	return Listing{includeFiles: includeFiles, entries: entries}, nil
}

// Errors returns the ingestion error log in insertion order.
func (s *Catalog) Errors(ctx context.Context) ([]catalog.IngestionError, error) {
	if s.isClosed() {
		return nil, ErrClientClosed
	}
	failures, err := s.store.Errors(ctx)
	if err != nil {
		return nil, catalog.NewCatalogError("errors", err)
	}
	return failures, nil
}

// Reset clears the catalog and error log and re-seeds it. It reports false
// only when the store could not be reset; the failure is logged.
func (s *Catalog) Reset(ctx context.Context) bool {
	if s.isClosed() {
		return false
	}
	if err := s.store.Reset(ctx, s.seed); err != nil {
		s.logger.Error("failed to reset catalog",
			slog.Any("error", catalog.NewCatalogError("reset", err)),
		)
		s.metrics.recordReset(false)
		return false
	}

	s.logger.Info("catalog reset",
		slog.String("seed_url", s.seed.RepositoryURL()),
		slog.String("seed_file", s.seed.FileName()),
	)
	s.metrics.recordReset(true)
	return true
}

func (s *Catalog) isClosed() bool {
	return s.closed != nil && s.closed.Load()
}
