package service

import (
	"context"
	"errors"
	"iter"
	"sync"

	"github.com/helixml/gitsearch/domain/catalog"
)

// --- fakes ---

type fakeStore struct {
	mu        sync.Mutex
	entries   []catalog.Entry
	errors    []catalog.IngestionError
	appends   int
	resetErr  error
	appendErr error
}

func (f *fakeStore) Append(_ context.Context, entries ...catalog.Entry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		return f.appendErr
	}
	f.appends++
	f.entries = append(f.entries, entries...)
	return nil
}

func (f *fakeStore) RecordError(_ context.Context, failure catalog.IngestionError) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errors = append(f.errors, failure)
	return nil
}

func (f *fakeStore) Entries(_ context.Context) ([]catalog.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]catalog.Entry(nil), f.entries...), nil
}

func (f *fakeStore) Errors(_ context.Context) ([]catalog.IngestionError, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]catalog.IngestionError(nil), f.errors...), nil
}

func (f *fakeStore) Reset(_ context.Context, seed catalog.Entry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.resetErr != nil {
		return f.resetErr
	}
	f.entries = []catalog.Entry{seed}
	f.errors = nil
	return nil
}

// fakeFetcher serves workspaces for known URLs and fails the rest.
type fakeFetcher struct {
	repos    map[string][]string
	fetched  []string
	released map[string]int
}

func newFakeFetcher(repos map[string][]string) *fakeFetcher {
	return &fakeFetcher{repos: repos, released: map[string]int{}}
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (catalog.Workspace, error) {
	f.fetched = append(f.fetched, url)
	if _, ok := f.repos[url]; !ok {
		return catalog.Workspace{}, catalog.NewCloneError(url, errors.New("repository not found"))
	}
	return catalog.NewWorkspace("/ws/"+url, url, func() error {
		f.released[url]++
		return nil
	}), nil
}

// fakeEnumerator yields the files the fetcher registered for the workspace
// URI, failing after failAfter names when failAfter >= 0.
type fakeEnumerator struct {
	fetcher   *fakeFetcher
	failAfter map[string]int
	filters   []string
}

func (f *fakeEnumerator) Enumerate(_ context.Context, ws catalog.Workspace, filter string) iter.Seq2[string, error] {
	f.filters = append(f.filters, filter)
	return func(yield func(string, error) bool) {
		limit, failing := f.failAfter[ws.URI()]
		for i, name := range f.fetcher.repos[ws.URI()] {
			if failing && i == limit {
				yield("", catalog.NewEnumerationError(ws.Path(), errors.New("permission denied")))
				return
			}
			if !yield(name, nil) {
				return
			}
		}
	}
}
