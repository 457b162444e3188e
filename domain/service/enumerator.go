package service

import (
	"context"
	"iter"

	"github.com/helixml/gitsearch/domain/catalog"
)

// DefaultFilter matches any file nested exactly one directory deep.
const DefaultFilter = "*/*"

// Enumerator lists the files of a materialized workspace.
type Enumerator interface {
	// Enumerate yields the base names of files matching filter. An empty filter
	// means DefaultFilter. The sequence is lazy and can be ranged over once.
	Enumerate(ctx context.Context, workspace catalog.Workspace, filter string) iter.Seq2[string, error]
}
