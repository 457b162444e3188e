package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/helixml/gitsearch"
	"github.com/helixml/gitsearch/infrastructure/api"
	"github.com/helixml/gitsearch/internal/config"
	"github.com/helixml/gitsearch/internal/log"
)

const shutdownTimeout = 30 * time.Second

// errNoToken is returned when serve is started without any access token.
var errNoToken = errors.New("refusing to start: set BEARER_TOKEN or API_KEYS")

func serveCmd() *cobra.Command {
	var (
		envFiles []string
		host     string
		port     int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start the HTTP API server.

Configuration is loaded in the following order (later sources override earlier):
  1. Default values
  2. .env files (each --env-file in order, or .env in the current directory)
  3. Environment variables
  4. Command line flags

Environment variables:
  HOST                         Server host to bind to (default: 0.0.0.0)
  PORT                         Server port to listen on (default: 8080)
  DATA_DIR                     Data directory (default: ~/.gitsearch)
  WORK_DIR                     Directory for temporary clones (default: system temp)
  DB_URL                       sqlite:///path or postgres:// URL (default: in memory)
  LOG_LEVEL                    Log level: DEBUG, INFO, WARN, ERROR (default: INFO)
  LOG_FORMAT                   Log format: pretty, json (default: pretty)
  BEARER_TOKEN                 Access token accepted by the API
  API_KEYS                     Comma-separated list of additional access tokens
  GIT_PROVIDER                 Clone backend: gogit, gitea (default: gogit)
  GIT_AUTH_TOKEN               Token for cloning private HTTPS repositories
  CLONE_TIMEOUT_SECONDS        Per-repository clone timeout (default: 300)
  CLONE_DEPTH                  Shallow clone depth, 0 for full history (default: 1)
  MAX_CONCURRENT_CLONES        Clones running at once (default: 4)
  REQUEST_TIMEOUT_SECONDS      HTTP request timeout (default: 600)
  SEED_URL, SEED_FILE_NAME     Entry restored on every reset
  RESET_ON_START               Reset a database-backed catalog at startup (default: true)
  ALLOW_LOCAL_REPOSITORIES     Accept local paths and file:// URLs (default: false)
  CORS_ALLOWED_ORIGINS         Comma-separated browser origins (default: *)`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), envFiles, host, port)
		},
	}

	cmd.Flags().StringArrayVar(&envFiles, "env-file", nil, "Path to .env file, repeatable; the first file setting a variable wins (default: .env in current directory)")
	cmd.Flags().StringVar(&host, "host", "", "Server host to bind to (default: 0.0.0.0)")
	cmd.Flags().IntVar(&port, "port", 0, "Server port to listen on (default: 8080)")

	return cmd
}

func runServe(ctx context.Context, envFiles []string, host string, port int) error {
	cfg, err := loadConfig(envFiles...)
	if err != nil {
		return err
	}
	cfg = applyServeOverrides(cfg, host, port)

	if len(cfg.APIKeys()) == 0 {
		return errNoToken
	}

	logger := log.Configure(cfg)

	attrs := append([]slog.Attr{slog.String("version", version)}, cfg.LogAttrs()...)
	logger.LogAttrs(context.Background(), slog.LevelInfo, "starting gitsearch", attrs...)

	client, err := gitsearch.New(
		gitsearch.WithConfig(cfg),
		gitsearch.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("create gitsearch client: %w", err)
	}
	defer func() {
		if err := client.Close(); err != nil {
			logger.Error("failed to close gitsearch client", slog.Any("error", err))
		}
	}()

	apiServer := api.NewAPIServer(client,
		api.WithCORSAllowedOrigins(cfg.CORSAllowedOrigins()),
		api.WithRequestTimeout(cfg.RequestTimeout()),
		api.WithVersion(version),
	)

	server := api.NewServer(cfg.Addr(), logger, api.WithWriteTimeout(cfg.RequestTimeout()+shutdownTimeout))
	server.Router().Mount("/", apiServer.Handler())

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(server.Start)
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// applyServeOverrides applies command line flag overrides to the config.
func applyServeOverrides(cfg config.AppConfig, host string, port int) config.AppConfig {
	var opts []config.AppConfigOption

	if host != "" {
		opts = append(opts, config.WithHost(host))
	}
	if port != 0 {
		opts = append(opts, config.WithPort(port))
	}

	return cfg.Apply(opts...)
}
