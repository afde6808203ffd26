// Package library owns the in-memory state the browse experience reads:
// the normalized catalog, the fuzzy search index and the available filter
// values, replaced together as one snapshot on every refresh.
package library

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"vinylapi/internal/catalog"
	"vinylapi/internal/search"
	"vinylapi/internal/store"
	"vinylapi/internal/view"
)

// ErrSourceUnavailable reports that the record store could not be reached
// or answered with a non-success status. The previous snapshot stays in
// place; the caller may retry the refresh.
var ErrSourceUnavailable = errors.New("record source unavailable")

// Library holds the current catalog snapshot. Reads are served from
// whatever snapshot is installed; Refresh prepares the next snapshot fully
// (normalize, sort, index, filter values) before swapping it in, so no
// query ever observes a catalog mid-replacement.
type Library struct {
	repo  store.Repository
	cache *store.Cache

	mu   sync.RWMutex
	snap snapshot
}

type snapshot struct {
	entries   []catalog.Entry
	index     *search.Index
	values    catalog.Values
	fetchedAt time.Time
}

// New creates a library reading from repo. cache may be nil; when present,
// every successful refresh writes a snapshot and LoadCached can restore it.
func New(repo store.Repository, cache *store.Cache) *Library {
	return &Library{repo: repo, cache: cache}
}

// Refresh refetches the full record set and atomically replaces the
// snapshot. On failure the previous snapshot is left untouched and the
// error wraps ErrSourceUnavailable.
func (l *Library) Refresh(ctx context.Context) error {
	raws, err := l.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}

	l.install(raws, time.Now())

	if l.cache != nil {
		// Best effort; a failed cache write must not fail the refresh.
		_ = l.cache.Save(raws)
	}
	return nil
}

// LoadCached installs the last cached record set, for startup when the
// store is down. Returns os.ErrNotExist when no snapshot was ever saved.
func (l *Library) LoadCached() error {
	if l.cache == nil {
		return errors.New("no cache configured")
	}
	raws, fetchedAt, err := l.cache.Load()
	if err != nil {
		return err
	}
	l.install(raws, fetchedAt)
	return nil
}

func (l *Library) install(raws []catalog.RawRecord, fetchedAt time.Time) {
	entries := catalog.NormalizeAll(raws)

	idx := search.New(search.Options{})
	idx.Build(entries)

	next := snapshot{
		entries:   entries,
		index:     idx,
		values:    catalog.FilterValues(entries),
		fetchedAt: fetchedAt,
	}

	l.mu.Lock()
	l.snap = next
	l.mu.Unlock()
}

// Search runs a fuzzy query against the current snapshot, ranked best
// match first. Empty and one-character queries yield an empty result.
func (l *Library) Search(query string) []catalog.Entry {
	l.mu.RLock()
	snap := l.snap
	l.mu.RUnlock()

	if snap.index == nil {
		return []catalog.Entry{}
	}
	return snap.index.Search(query)
}

// Browse returns one page of the catalog under the given selectors.
func (l *Library) Browse(status, artist string, page, pageSize int) view.Page {
	l.mu.RLock()
	snap := l.snap
	l.mu.RUnlock()

	filtered := view.Filter(snap.entries, status, artist)
	return view.Paginate(filtered, page, pageSize)
}

// FilterValues returns the distinct statuses and artists present in the
// current snapshot.
func (l *Library) FilterValues() catalog.Values {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.snap.values
}

// Entries returns a copy of the full normalized catalog in artist order.
func (l *Library) Entries() []catalog.Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	entries := make([]catalog.Entry, len(l.snap.entries))
	copy(entries, l.snap.entries)
	return entries
}

// Count reports the snapshot size.
func (l *Library) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.snap.entries)
}

// FetchedAt reports when the snapshot's record set was fetched from the
// store; zero when nothing has been loaded yet.
func (l *Library) FetchedAt() time.Time {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.snap.fetchedAt
}
