// Package mcp provides Model Context Protocol server functionality.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/helixml/gitsearch/application/service"
	"github.com/helixml/gitsearch/domain/catalog"
)

// CatalogReader provides read and reset operations for MCP tools.
type CatalogReader interface {
	List(ctx context.Context, includeFiles bool) (service.Listing, error)
	Errors(ctx context.Context) ([]catalog.IngestionError, error)
	Reset(ctx context.Context) bool
}

// Ingester adds repositories to the catalog for MCP tools.
type Ingester interface {
	Add(ctx context.Context, params *service.AddParams) (service.AddResult, error)
}

// Server wraps the MCP server with catalog tools.
type Server struct {
	mcpServer *server.MCPServer
	catalog   CatalogReader
	ingestion Ingester
	logger    *slog.Logger
}

// NewServer creates a new MCP server with the given dependencies.
func NewServer(catalog CatalogReader, ingestion Ingester, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		catalog:   catalog,
		ingestion: ingestion,
		logger:    logger,
	}

	mcpServer := server.NewMCPServer(
		"gitsearch",
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	s.registerTools(mcpServer)

	s.mcpServer = mcpServer
	return s
}

func (s *Server) registerTools(mcpServer *server.MCPServer) {
	listTool := mcp.NewTool("list_repositories",
		mcp.WithDescription("List the repositories in the catalog, optionally with the file names indexed for each"),
		mcp.WithBoolean("include_files",
			mcp.Description("Return [repository URL, file name] pairs instead of URLs (default: false)"),
		),
	)
	mcpServer.AddTool(listTool, s.handleList)

	addTool := mcp.NewTool("add_repositories",
		mcp.WithDescription("Clone git repositories and add their matching file names to the catalog"),
		mcp.WithArray("urls",
			mcp.Required(),
			mcp.Description("Repository URLs to clone"),
			mcp.WithStringItems(),
		),
		mcp.WithString("filter",
			mcp.Description("Glob pattern selecting files (default: */*)"),
		),
	)
	mcpServer.AddTool(addTool, s.handleAdd)

	resetTool := mcp.NewTool("reset_catalog",
		mcp.WithDescription("Reset the catalog to its single seed entry"),
	)
	mcpServer.AddTool(resetTool, s.handleReset)

	errorsTool := mcp.NewTool("list_ingestion_errors",
		mcp.WithDescription("List the per-repository failures recorded since the last reset"),
	)
	mcpServer.AddTool(errorsTool, s.handleErrors)
}

func (s *Server) handleList(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	includeFiles := request.GetBool("include_files", false)

	listing, err := s.catalog.List(ctx, includeFiles)
	if err != nil {
		s.logger.Error("list repositories failed", slog.Any("error", err))
		return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
	}

	return jsonResult(map[string]any{"results": listing.Rows()})
}

func (s *Server) handleAdd(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	urls, err := service.NormalizeURLs(request.GetArguments()["urls"])
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	params := &service.AddParams{
		URLs:   urls,
		Filter: request.GetString("filter", ""),
	}

	result, err := s.ingestion.Add(ctx, params)
	if err != nil {
		if errors.Is(err, catalog.ErrValidation) {
			return mcp.NewToolResultError(err.Error()), nil
		}
		s.logger.Error("add repositories failed", slog.Any("error", err))
		return mcp.NewToolResultError(fmt.Sprintf("add failed: %v", err)), nil
	}

	return jsonResult(map[string]any{
		"total_added": result.TotalAdded(),
		"failures":    result.Failures(),
		"batch_id":    result.BatchID(),
	})
}

func (s *Server) handleReset(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(map[string]any{"success": s.catalog.Reset(ctx)})
}

func (s *Server) handleErrors(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	failures, err := s.catalog.Errors(ctx)
	if err != nil {
		s.logger.Error("list ingestion errors failed", slog.Any("error", err))
		return mcp.NewToolResultError(fmt.Sprintf("list errors failed: %v", err)), nil
	}

	type ingestionError struct {
		URL        string `json:"url"`
		Message    string `json:"message"`
		Kind       string `json:"kind"`
		BatchID    string `json:"batch_id,omitempty"`
		OccurredAt string `json:"occurred_at"`
	}

	results := make([]ingestionError, len(failures))
	for i, f := range failures {
		results[i] = ingestionError{
			URL:        f.RepositoryURL(),
			Message:    f.Message(),
			Kind:       string(f.Kind()),
			BatchID:    f.BatchID(),
			OccurredAt: f.OccurredAt().UTC().Format(time.RFC3339),
		}
	}

	return jsonResult(map[string]any{"results": results})
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonBytes, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

// MCPServer returns the underlying MCP server for stdio serving.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio runs the MCP server on stdio.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
