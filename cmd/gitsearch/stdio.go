package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/helixml/gitsearch"
	"github.com/helixml/gitsearch/internal/log"
	"github.com/helixml/gitsearch/internal/mcp"
)

func stdioCmd() *cobra.Command {
	var envFiles []string

	cmd := &cobra.Command{
		Use:   "stdio",
		Short: "Start MCP server on stdio",
		Long: `Start the MCP (Model Context Protocol) server on stdio.

This lets AI assistants list, extend and reset the catalog.
Configuration is loaded from environment variables and .env file.
Logs are written to stderr.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runStdio(envFiles)
		},
	}

	cmd.Flags().StringArrayVar(&envFiles, "env-file", nil, "Path to .env file (repeatable)")

	return cmd
}

func runStdio(envFiles []string) error {
	cfg, err := loadConfig(envFiles...)
	if err != nil {
		return err
	}

	// stdout carries the protocol.
	logger := log.Configure(cfg)

	logger.Info("starting MCP server",
		slog.String("version", version),
		slog.Bool("persistent", cfg.IsPersistent()),
	)

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

	mcpServer := mcp.NewServer(client.Catalog, client.Ingestion, version, logger)

	return mcpServer.ServeStdio()
}
