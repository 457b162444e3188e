package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/helixml/gitsearch/domain/catalog"
	"github.com/helixml/gitsearch/domain/service"
)

// AddParams configures an ingestion batch.
type AddParams struct {
	URLs   []string
	Filter string
}

// URLOutcome describes what happened to one URL of a batch.
type URLOutcome struct {
	URL   string
	Added int
	Err   error
}

// Failed reports whether the URL was recorded in the error log.
func (o URLOutcome) Failed() bool { return o.Err != nil }

// AddResult summarises an ingestion batch.
type AddResult struct {
	batchID  string
	total    int
	outcomes []URLOutcome
}

// BatchID returns the identifier shared by the batch's logs and error records.
func (r AddResult) BatchID() string { return r.batchID }

// TotalAdded returns the number of entries appended across all URLs.
func (r AddResult) TotalAdded() int { return r.total }

// Outcomes returns one outcome per input URL, in input order.
func (r AddResult) Outcomes() []URLOutcome {
	result := make([]URLOutcome, len(r.outcomes))
	copy(result, r.outcomes)
	return result
}

// Failures returns the number of URLs recorded in the error log.
func (r AddResult) Failures() int {
	n := 0
	for _, o := range r.outcomes {
		if o.Failed() {
			n++
		}
	}
	return n
}

// Ingestion clones repositories, enumerates their files and appends the
// results to the catalog, isolating failures per URL.
type Ingestion struct {
	store      catalog.Store
	fetcher    service.Fetcher
	enumerator service.Enumerator
	metrics    *Metrics
	closed     *atomic.Bool
	logger     *slog.Logger
}

// NewIngestion creates a new Ingestion service.
func NewIngestion(
	store catalog.Store,
	fetcher service.Fetcher,
	enumerator service.Enumerator,
	metrics *Metrics,
	closed *atomic.Bool,
	logger *slog.Logger,
) *Ingestion {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ingestion{
		store:      store,
		fetcher:    fetcher,
		enumerator: enumerator,
		metrics:    metrics,
		closed:     closed,
		logger:     logger,
	}
}

// NormalizeURLs turns a single URL or a sequence of URLs into a slice.
// Any other shape is rejected with catalog.ErrValidation. Blank entries are
// kept so that they are recorded per URL.
func NormalizeURLs(v any) ([]string, error) {
	switch urls := v.(type) {
	case string:
		return []string{urls}, nil
	case []string:
		result := make([]string, len(urls))
		copy(result, urls)
		return result, nil
	case []any:
		result := make([]string, 0, len(urls))
		for i, u := range urls {
			s, ok := u.(string)
			if !ok {
				return nil, catalog.ValidationError(fmt.Sprintf("urls[%d] must be a string, got %T", i, u))
			}
			result = append(result, s)
		}
		return result, nil
	case nil:
		return nil, catalog.ValidationError("urls is required")
	default:
		return nil, catalog.ValidationError(fmt.Sprintf("urls must be a string or a list of strings, got %T", v))
	}
}

// Add ingests every URL in order and returns the total number of catalog
// entries appended. Per-URL failures are recorded in the error log and never
// returned; the only errors are an empty URL list and a closed client.
func (s *Ingestion) Add(ctx context.Context, params *AddParams) (AddResult, error) {
	if s.closed != nil && s.closed.Load() {
		return AddResult{}, ErrClientClosed
	}
	if params == nil || len(params.URLs) == 0 {
		return AddResult{}, catalog.ValidationError("at least one URL is required")
	}

	result := AddResult{
		batchID:  uuid.NewString(),
		outcomes: make([]URLOutcome, 0, len(params.URLs)),
	}
	logger := s.logger.With(slog.String("batch_id", result.batchID))
	logger.Info("ingestion started",
		slog.Int("urls", len(params.URLs)),
		slog.String("filter", params.Filter),
	)

	start := time.Now()
	for _, url := range params.URLs {
		outcome := s.addOne(ctx, result.batchID, url, params.Filter, logger)
		result.total += outcome.Added
		result.outcomes = append(result.outcomes, outcome)
	}

	logger.Info("ingestion finished",
		slog.Int("total_added", result.total),
		slog.Int("failures", result.Failures()),
		slog.Duration("duration", time.Since(start)),
	)
	return result, nil
}

// addOne runs one clone, enumerate and append cycle. The workspace is
// released on every path.
func (s *Ingestion) addOne(ctx context.Context, batchID, url, filter string, logger *slog.Logger) URLOutcome {
	outcome := URLOutcome{URL: url}

	if strings.TrimSpace(url) == "" {
		outcome.Err = catalog.ValidationError("URL is empty or whitespace")
		s.fail(ctx, batchID, url, outcome.Err, catalog.ErrorKindValidation, logger)
		return outcome
	}

	cloneStart := time.Now()
	workspace, err := s.fetcher.Fetch(ctx, url)
	s.metrics.recordClone(cloneStart, err)
	if err != nil {
		outcome.Err = err
		kind := catalog.ErrorKindClone
		if errors.Is(err, catalog.ErrValidation) {
			kind = catalog.ErrorKindValidation
		}
		s.fail(ctx, batchID, url, err, kind, logger)
		return outcome
	}
	defer func() {
		if err := workspace.Release(); err != nil {
			logger.Warn("failed to release workspace",
				slog.String("url", url),
				slog.String("path", workspace.Path()),
				slog.Any("error", err),
			)
		}
	}()

	var entries []catalog.Entry
	for name, err := range s.enumerator.Enumerate(ctx, workspace, filter) {
		if err != nil {
			if !catalog.IsEnumerationError(err) {
				err = catalog.NewEnumerationError(workspace.Path(), err)
			}
			outcome.Err = err
			s.fail(ctx, batchID, url, err, catalog.ErrorKindEnumeration, logger)
			return outcome
		}
		entries = append(entries, catalog.NewEntry(url, name))
	}

	if err := s.store.Append(ctx, entries...); err != nil {
		outcome.Err = catalog.NewCatalogError("append", err)
		s.fail(ctx, batchID, url, outcome.Err, catalog.ErrorKindCatalog, logger)
		return outcome
	}

	outcome.Added = len(entries)
	s.metrics.recordURL(outcomeAdded)
	s.metrics.recordFiles(outcome.Added)
	logger.Info("repository ingested",
		slog.String("url", url),
		slog.Int("files", outcome.Added),
	)
	return outcome
}

// fail logs err and records it in the error log. A store failure here is
// logged and otherwise ignored so the batch can continue.
func (s *Ingestion) fail(ctx context.Context, batchID, url string, err error, kind catalog.ErrorKind, logger *slog.Logger) {
	s.metrics.recordURL(string(kind) + "_error")
	logger.Warn("repository ingestion failed",
		slog.String("url", url),
		slog.String("kind", string(kind)),
		slog.Any("error", err),
	)

	failure := catalog.NewIngestionError(url, err.Error(), kind, batchID)
	if recErr := s.store.RecordError(ctx, failure); recErr != nil {
		logger.Error("failed to record ingestion error",
			slog.String("url", url),
			slog.Any("error", recErr),
		)
	}
}
