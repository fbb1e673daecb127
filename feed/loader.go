package feed

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/robertmeta/techfolio/model"
)

// Snapshot is the published state of the article feed.
type Snapshot struct {
	Articles  []model.Article
	Connected bool
	Loading   bool
	Err       error
}

// Loader owns the article feed snapshot for one identity. Each Refresh is
// stamped with a generation and only the newest one may publish, so a slow
// fetch can never overwrite the result of a later one.
type Loader struct {
	source Source
	logger *slog.Logger

	mu   sync.RWMutex
	snap Snapshot
	gen  uint64
}

// NewLoader creates a loader over source. A nil source means no article
// source is connected; the snapshot then stays empty.
func NewLoader(source Source, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Loader{
		source: source,
		logger: logger,
		snap:   Snapshot{Connected: source != nil},
	}
}

// Prime publishes articles without fetching, typically from a cache.
// It is ignored while a refresh is in flight.
func (l *Loader) Prime(articles []model.Article) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.snap.Loading {
		return
	}
	l.snap.Articles = append([]model.Article(nil), articles...)
	l.snap.Err = nil
}

// Snapshot returns the current state. The article slice is shared and
// must not be modified.
func (l *Loader) Snapshot() Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.snap
}

// Refresh fetches from the source and publishes the result if no newer
// refresh has started meanwhile. A failed fetch publishes an empty list
// together with the error. The returned error is the fetch error.
func (l *Loader) Refresh(ctx context.Context) error {
	if l.source == nil {
		return nil
	}

	l.mu.Lock()
	l.gen++
	gen := l.gen
	l.snap.Loading = true
	l.mu.Unlock()

	articles, err := l.source.Fetch(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()
	if gen != l.gen {
		l.logger.Debug("dropping stale article fetch", "generation", gen, "current", l.gen)
		return err
	}
	l.snap.Loading = false
	if err != nil {
		l.logger.Warn("article fetch failed", "error", err)
		l.snap.Articles = []model.Article{}
		l.snap.Err = err
		return err
	}
	l.snap.Articles = articles
	l.snap.Err = nil
	return nil
}
