// Package service provides domain service interfaces.
package service

import (
	"context"

	"github.com/helixml/gitsearch/domain/catalog"
)

// Fetcher materializes a repository's working tree into a scoped workspace.
type Fetcher interface {
	// Fetch clones url into a fresh temporary workspace. The caller must
	// Release the returned workspace. On failure nothing is left on disk.
	Fetch(ctx context.Context, url string) (catalog.Workspace, error)
}
