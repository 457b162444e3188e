// Package gitsearch maintains a catalog of the files found in git
// repositories.
//
// Callers submit repository URLs; each one is cloned into a temporary
// workspace, its working tree is enumerated under a glob filter, and every
// matching file name is appended to the catalog. Failures are isolated per
// URL and recorded in an error log.
//
// Basic usage:
//
//	client, err := gitsearch.New(
//	    gitsearch.WithSQLite(".gitsearch/catalog.db"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	result, err := client.Ingestion.Add(ctx, &service.AddParams{
//	    URLs:   []string{"https://github.com/junegunn/fzf"},
//	    Filter: "*.md",
//	})
//
//	listing, err := client.Catalog.List(ctx, true)
//	for _, pair := range listing.Pairs() {
//	    fmt.Println(pair[0], pair[1])
//	}
package gitsearch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/helixml/gitsearch/application/service"
	"github.com/helixml/gitsearch/domain/catalog"
	domainservice "github.com/helixml/gitsearch/domain/service"
	"github.com/helixml/gitsearch/infrastructure/git"
	"github.com/helixml/gitsearch/infrastructure/persistence"
	"github.com/helixml/gitsearch/internal/database"
)

// Client is the main entry point for the gitsearch library.
//
// Access operations via struct fields:
//
//	client.Ingestion.Add(ctx, params)
//	client.Catalog.List(ctx, includeFiles)
//	client.Catalog.Reset(ctx)
type Client struct {
	Catalog   *service.Catalog
	Ingestion *service.Ingestion

	store    catalog.Store
	closers  []io.Closer
	gatherer prometheus.Gatherer
	apiKeys  []string
	logger   *slog.Logger
	closed   atomic.Bool
	mu       sync.Mutex
}

// New creates a new Client with the given options. Without a database the
// catalog is kept in memory and always starts from the seed entry. With a
// database the catalog is reset to the seed unless WithResetOnStart(false).
func New(opts ...Option) (*Client, error) {
	cfg := newClientConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	ctx := context.Background()

	store, closers, err := openStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	fetcher := cfg.fetcher
	if fetcher == nil {
		fetcher, err = newFetcher(cfg, logger)
		if err != nil {
			return nil, errors.Join(err, closeAll(closers))
		}
	}

	registerer, gatherer := cfg.registry()
	metrics := service.NewMetrics(registerer)

	client := &Client{
		store:    store,
		closers:  closers,
		gatherer: gatherer,
		apiKeys:  cfg.apiKeys,
		logger:   logger,
	}
	client.Catalog = service.NewCatalog(store, cfg.seed, metrics, &client.closed, logger)
	client.Ingestion = service.NewIngestion(
		store,
		fetcher,
		git.NewFileEnumerator(logger),
		metrics,
		&client.closed,
		logger,
	)

	if (cfg.resetOnStart || cfg.dbURL == "") && !client.Catalog.Reset(ctx) {
		return nil, errors.Join(ErrResetFailed, closeAll(closers))
	}

	return client, nil
}

func openStore(ctx context.Context, cfg *clientConfig, logger *slog.Logger) (catalog.Store, []io.Closer, error) {
	if cfg.dbURL == "" {
		logger.Debug("catalog kept in memory")
		return persistence.NewMemoryStore(), nil, nil
	}

	db, err := database.NewDatabase(ctx, cfg.dbURL)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}

	if db.IsPostgres() {
		// Ingestion writes once per URL; size the pool to the clone limit.
		if err := db.ConfigurePool(cfg.maxConcurrentClones+2, cfg.maxConcurrentClones, 30*time.Minute); err != nil {
			return nil, nil, errors.Join(err, db.Close())
		}
	}

	store, err := persistence.NewGormStore(db)
	if err != nil {
		return nil, nil, errors.Join(err, db.Close())
	}
	return store, []io.Closer{store}, nil
}

func newFetcher(cfg *clientConfig, logger *slog.Logger) (domainservice.Fetcher, error) {
	adapter, err := git.NewAdapter(
		git.ParseProvider(cfg.gitProvider),
		logger,
		git.WithDepth(cfg.cloneDepth),
		git.WithAuthToken(cfg.gitAuthToken),
	)
	if err != nil {
		return nil, fmt.Errorf("create git adapter: %w", err)
	}
	return git.NewWorkspaceFetcher(adapter, cfg.workDir, logger,
		git.WithCloneTimeout(cfg.cloneTimeout),
		git.WithMaxConcurrentClones(cfg.maxConcurrentClones),
		git.WithLocalRepositories(cfg.localRepos),
	), nil
}

// Close releases the catalog store. Operations on a closed client fail with
// ErrClientClosed.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return ErrClientClosed
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := closeAll(c.closers); err != nil {
		return fmt.Errorf("close store: %w", err)
	}

	c.logger.Info("gitsearch client closed")
	return nil
}

// Closed reports whether Close has been called.
func (c *Client) Closed() bool {
	return c.closed.Load()
}

// Logger returns the client's logger.
func (c *Client) Logger() *slog.Logger {
	return c.logger
}

// Gatherer returns the Prometheus gatherer holding the client's metrics.
func (c *Client) Gatherer() prometheus.Gatherer {
	return c.gatherer
}

// APIKeys returns the tokens the HTTP API accepts.
func (c *Client) APIKeys() []string {
	keys := make([]string, len(c.apiKeys))
	copy(keys, c.apiKeys)
	return keys
}

func closeAll(closers []io.Closer) error {
	var errs []error
	for _, closer := range closers {
		errs = append(errs, closer.Close())
	}
	return errors.Join(errs...)
}
