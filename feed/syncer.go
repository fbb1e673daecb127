package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/gofrs/flock"
	"github.com/robertmeta/techfolio/model"
)

// ErrSyncInProgress is returned when another process holds the sync lock.
var ErrSyncInProgress = errors.New("another sync is already running")

// DefaultConcurrency limits parallel source fetches.
const DefaultConcurrency = 8

// Cache is the article cache a Syncer writes to.
type Cache interface {
	GetSources(ctx context.Context, profileID string) ([]*model.Source, error)
	ReplaceArticles(ctx context.Context, src *model.Source, articles []model.Article) error
}

// SyncResult reports the outcome for one source.
type SyncResult struct {
	SourceID string           `json:"source_id"`
	Kind     model.SourceKind `json:"kind"`
	Target   string           `json:"target"`
	Articles int              `json:"articles"`
	Error    string           `json:"error,omitempty"`
}

// Syncer fetches every source of a profile and replaces its cached
// articles. A source that fails to fetch keeps its previous cache.
type Syncer struct {
	Cache       Cache
	Options     Options
	Concurrency int

	// LockPath, if set, names a file locked for the duration of a sync so
	// that two processes never write the cache at once.
	LockPath string

	// NewSource overrides New, mostly for tests.
	NewSource func(*model.Source, Options) (Source, error)

	Logger *slog.Logger
}

func (s *Syncer) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return s.Logger
}

// Sync runs one sync for the profile. Per-source failures are reported in
// the results; the error covers only the lock and the source listing.
func (s *Syncer) Sync(ctx context.Context, profileID string) ([]SyncResult, error) {
	if s.LockPath != "" {
		lock := flock.New(s.LockPath)
		locked, err := lock.TryLock()
		if err != nil {
			return nil, fmt.Errorf("failed to acquire sync lock: %w", err)
		}
		if !locked {
			return nil, ErrSyncInProgress
		}
		defer lock.Unlock()
	}

	sources, err := s.Cache.GetSources(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}

	newSource := s.NewSource
	if newSource == nil {
		newSource = New
	}
	limit := s.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	log := s.logger()
	results := make([]SyncResult, len(sources))
	var wg sync.WaitGroup
	sem := make(chan struct{}, limit)

	for i, src := range sources {
		wg.Add(1)
		go func(i int, src *model.Source) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			res := SyncResult{SourceID: src.ID, Kind: src.Kind, Target: src.Target}
			defer func() { results[i] = res }()

			fetcher, err := newSource(src, s.Options)
			if err != nil {
				res.Error = err.Error()
				return
			}
			articles, err := fetcher.Fetch(ctx)
			if err != nil {
				log.Warn("source fetch failed", "source", src.ID, "target", src.Target, "error", err)
				res.Error = err.Error()
				return
			}
			if err := s.Cache.ReplaceArticles(ctx, src, articles); err != nil {
				res.Error = err.Error()
				return
			}
			res.Articles = len(articles)
			log.Debug("source synced", "source", src.ID, "articles", len(articles))
		}(i, src)
	}

	wg.Wait()
	return results, nil
}

// Failed joins the errors of failed results, or returns nil.
func Failed(results []SyncResult) error {
	var errs []error
	for _, r := range results {
		if r.Error != "" {
			errs = append(errs, fmt.Errorf("%s %s: %s", r.Kind, r.Target, r.Error))
		}
	}
	return errors.Join(errs...)
}
