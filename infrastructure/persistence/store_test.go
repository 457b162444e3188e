package persistence

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixml/gitsearch/domain/catalog"
	"github.com/helixml/gitsearch/internal/testdb"
)

func stores(t *testing.T) map[string]catalog.Store {
	t.Helper()
	gormStore, err := NewGormStore(testdb.New(t))
	require.NoError(t, err)
	return map[string]catalog.Store{
		"memory": NewMemoryStore(),
		"gorm":   gormStore,
	}
}

func TestStore_AppendPreservesOrderAndDuplicates(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			require.NoError(t, store.Append(ctx,
				catalog.NewEntry("https://example.com/b.git", "one.txt"),
				catalog.NewEntry("https://example.com/a.git", "two.txt"),
			))
			require.NoError(t, store.Append(ctx))
			require.NoError(t, store.Append(ctx,
				catalog.NewEntry("https://example.com/b.git", "one.txt"),
			))

			entries, err := store.Entries(ctx)
			require.NoError(t, err)
			require.Len(t, entries, 3)
			assert.Equal(t, [2]string{"https://example.com/b.git", "one.txt"}, entries[0].Pair())
			assert.Equal(t, [2]string{"https://example.com/a.git", "two.txt"}, entries[1].Pair())
			assert.Equal(t, [2]string{"https://example.com/b.git", "one.txt"}, entries[2].Pair())
		})
	}
}

func TestStore_RecordError(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			first := catalog.NewIngestionError("https://example.com/a.git", "not found", catalog.ErrorKindClone, "batch-1")
			second := catalog.NewIngestionError("  ", "URL is empty", catalog.ErrorKindValidation, "batch-1")
			require.NoError(t, store.RecordError(ctx, first))
			require.NoError(t, store.RecordError(ctx, second))

			failures, err := store.Errors(ctx)
			require.NoError(t, err)
			require.Len(t, failures, 2)
			assert.Equal(t, "https://example.com/a.git", failures[0].RepositoryURL())
			assert.Equal(t, catalog.ErrorKindClone, failures[0].Kind())
			assert.Equal(t, "batch-1", failures[0].BatchID())
			assert.Equal(t, "not found", failures[0].Message())
			assert.WithinDuration(t, first.OccurredAt(), failures[0].OccurredAt(), time.Second)
			assert.Equal(t, catalog.ErrorKindValidation, failures[1].Kind())
		})
	}
}

func TestStore_ResetLeavesOnlySeed(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			seed := catalog.DefaultSeed()

			require.NoError(t, store.Append(ctx, catalog.NewEntry("https://example.com/a.git", "x")))
			require.NoError(t, store.RecordError(ctx,
				catalog.NewIngestionError("bad", "boom", catalog.ErrorKindClone, "b")))

			for range 2 {
				require.NoError(t, store.Reset(ctx, seed))

				entries, err := store.Entries(ctx)
				require.NoError(t, err)
				require.Len(t, entries, 1)
				assert.True(t, entries[0].Equal(seed))

				failures, err := store.Errors(ctx)
				require.NoError(t, err)
				assert.Empty(t, failures)
			}
		})
	}
}

func TestStore_ConcurrentAppendAndReset(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			seed := catalog.DefaultSeed()

			var wg sync.WaitGroup
			for i := range 8 {
				wg.Add(1)
				go func() {
					defer wg.Done()
					if i%4 == 0 {
						assert.NoError(t, store.Reset(ctx, seed))
						return
					}
					assert.NoError(t, store.Append(ctx,
						catalog.NewEntry("https://example.com/r.git", "a"),
						catalog.NewEntry("https://example.com/r.git", "b"),
					))
				}()
			}
			wg.Wait()

			require.NoError(t, store.Reset(ctx, seed))
			entries, err := store.Entries(ctx)
			require.NoError(t, err)
			require.Len(t, entries, 1)
		})
	}
}
