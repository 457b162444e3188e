package git

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/helixml/gitsearch/domain/catalog"
	"github.com/helixml/gitsearch/domain/service"
)

// errStopWalk unwinds WalkDir when the consumer stops ranging early.
var errStopWalk = errors.New("stop walk")

// FileEnumerator lists the files of a cloned working tree.
// Implements domain/service.Enumerator interface.
type FileEnumerator struct {
	logger *slog.Logger
}

// NewFileEnumerator creates a new FileEnumerator.
func NewFileEnumerator(logger *slog.Logger) *FileEnumerator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileEnumerator{logger: logger}
}

// Enumerate yields the base names of files under the workspace that match
// filter, in lexical walk order.
//
// A filter containing "/" is matched against the slash-separated path relative
// to the workspace root, so "*/*" matches files exactly one directory deep. A
// filter without "/" is matched against the base name at any depth. The .git
// directory is never walked. A root that is not a directory yields nothing.
func (e *FileEnumerator) Enumerate(ctx context.Context, workspace catalog.Workspace, filter string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		root := workspace.Path()
		pattern := strings.TrimSpace(filter)
		if pattern == "" {
			pattern = service.DefaultFilter
		}
		pattern = filepath.ToSlash(pattern)

		if !doublestar.ValidatePattern(pattern) {
			yield("", catalog.NewEnumerationError(root, fmt.Errorf("invalid filter %q: %w", pattern, doublestar.ErrBadPattern)))
			return
		}

		info, err := os.Stat(root)
		if err != nil || !info.IsDir() {
			e.logger.Debug("workspace root is not a directory",
				slog.String("repository", workspace.URI()),
				slog.String("path", root),
			)
			return
		}

		matchPath := strings.Contains(pattern, "/")

		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if d.IsDir() {
				if d.Name() == ".git" && path != root {
					return filepath.SkipDir
				}
				return nil
			}

			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			subject := d.Name()
			if matchPath {
				subject = filepath.ToSlash(rel)
			}

			ok, err := doublestar.Match(pattern, subject)
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}
			if !yield(d.Name(), nil) {
				return errStopWalk
			}
			return nil
		})

		switch {
		case err == nil, errors.Is(err, errStopWalk):
			return
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			yield("", err)
		default:
			yield("", catalog.NewEnumerationError(root, err))
		}
	}
}

// Ensure FileEnumerator implements Enumerator.
var _ service.Enumerator = (*FileEnumerator)(nil)
