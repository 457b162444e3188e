package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/helixml/gitsearch"
	"github.com/helixml/gitsearch/application/service"
	"github.com/helixml/gitsearch/domain/catalog"
	domainservice "github.com/helixml/gitsearch/domain/service"
	"github.com/helixml/gitsearch/internal/log"
)

// Output formats accepted by the index command.
const (
	outputJSON = "json"
	outputYAML = "yaml"
)

type indexEntry struct {
	Repository string `json:"repository" yaml:"repository"`
	File       string `json:"file" yaml:"file"`
}

type indexOutcome struct {
	URL   string `json:"url" yaml:"url"`
	Added int    `json:"added" yaml:"added"`
	Kind  string `json:"kind,omitempty" yaml:"kind,omitempty"`
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

type indexReport struct {
	BatchID    string         `json:"batch_id" yaml:"batch_id"`
	TotalAdded int            `json:"total_added" yaml:"total_added"`
	Outcomes   []indexOutcome `json:"outcomes" yaml:"outcomes"`
	Entries    []indexEntry   `json:"entries" yaml:"entries"`
}

func indexCmd() *cobra.Command {
	var (
		envFiles []string
		filter   string
		output   string
	)

	cmd := &cobra.Command{
		Use:   "index URL [URL...]",
		Short: "Clone repositories once and print the resulting catalog",
		Long: `Clone each repository, add the names of the files matching --filter to the
catalog and print the batch outcome together with the full catalog.

The catalog is kept in memory unless DB_URL is set.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndex(cmd, envFiles, args, filter, output)
		},
	}

	cmd.Flags().StringArrayVar(&envFiles, "env-file", nil, "Path to .env file (repeatable)")
	cmd.Flags().StringVar(&filter, "filter", domainservice.DefaultFilter, "Glob pattern selecting files")
	cmd.Flags().StringVarP(&output, "output", "o", outputJSON, "Output format: json or yaml")

	return cmd
}

func runIndex(cmd *cobra.Command, envFiles []string, urls []string, filter, output string) error {
	output = strings.ToLower(strings.TrimSpace(output))
	if output != outputJSON && output != outputYAML {
		return fmt.Errorf("unsupported output format %q", output)
	}

	cfg, err := loadConfig(envFiles...)
	if err != nil {
		return err
	}
	logger := log.Configure(cfg)

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

	ctx := cmd.Context()
	result, err := client.Ingestion.Add(ctx, &service.AddParams{URLs: urls, Filter: filter})
	if err != nil {
		return fmt.Errorf("add repositories: %w", err)
	}

	listing, err := client.Catalog.List(ctx, true)
	if err != nil {
		return fmt.Errorf("list catalog: %w", err)
	}

	return renderReport(cmd.OutOrStdout(), output, newIndexReport(result, listing.Entries()))
}

func newIndexReport(result service.AddResult, entries []catalog.Entry) indexReport {
	report := indexReport{
		BatchID:    result.BatchID(),
		TotalAdded: result.TotalAdded(),
		Outcomes:   make([]indexOutcome, 0, len(result.Outcomes())),
		Entries:    make([]indexEntry, len(entries)),
	}
	for _, o := range result.Outcomes() {
		outcome := indexOutcome{URL: o.URL, Added: o.Added}
		if o.Failed() {
			outcome.Kind = string(catalog.KindOf(o.Err))
			outcome.Error = o.Err.Error()
		}
		report.Outcomes = append(report.Outcomes, outcome)
	}
	for i, e := range entries {
		report.Entries[i] = indexEntry{Repository: e.RepositoryURL(), File: e.FileName()}
	}
	return report
}

func renderReport(w io.Writer, format string, report indexReport) error {
	switch format {
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
}
