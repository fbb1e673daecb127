// Package portfolio assembles the timeline and statistics for an identity
// from the store, the article feed and the demo dataset.
package portfolio

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/robertmeta/techfolio/demo"
	"github.com/robertmeta/techfolio/feed"
	"github.com/robertmeta/techfolio/model"
	"github.com/robertmeta/techfolio/stats"
	"github.com/robertmeta/techfolio/store"
	"github.com/robertmeta/techfolio/tagcolor"
	"github.com/robertmeta/techfolio/timeline"
)

// Repository is the persistence the service needs. *store.Store satisfies it.
type Repository interface {
	feed.Cache
	GetProfileByTokenHash(ctx context.Context, tokenHash string) (*model.Profile, error)
	SaveProfile(ctx context.Context, p *model.Profile, tokenHash string) error
	SaveSource(ctx context.Context, src *model.Source) error
	GetProjects(ctx context.Context, profileID string, opts store.ProjectQuery) ([]model.Project, error)
	GetTags(ctx context.Context) ([]model.Tag, error)
	GetArticles(ctx context.Context, profileID string, opts store.ArticleQuery) ([]model.Article, error)
}

// Options configures a Service.
type Options struct {
	PageSize   int
	StatsLimit int
	Feed       feed.Options
	LockPath   string
	Logger     *slog.Logger

	// NewSource overrides feed.New when building article sources.
	NewSource func(*model.Source, feed.Options) (feed.Source, error)
}

// Service answers timeline and stats queries per identity.
type Service struct {
	repo       Repository
	demo       demo.Dataset
	syncer     *feed.Syncer
	pageSize   int
	statsLimit int
	logger     *slog.Logger

	mu      sync.Mutex
	loaders map[string]*feed.Loader
}

// NewService creates a service over repo.
func NewService(repo Repository, opts Options) (*Service, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	d, err := demo.Load()
	if err != nil {
		return nil, err
	}

	return &Service{
		repo: repo,
		demo: d,
		syncer: &feed.Syncer{
			Cache:     repo,
			Options:   opts.Feed,
			LockPath:  opts.LockPath,
			NewSource: opts.NewSource,
			Logger:    logger,
		},
		pageSize:   opts.PageSize,
		statsLimit: opts.StatsLimit,
		logger:     logger,
		loaders:    make(map[string]*feed.Loader),
	}, nil
}

// DemoProfile returns the profile shown to visitors without a token.
func (s *Service) DemoProfile() model.Profile { return s.demo.Profile }

// Projects returns every project of the identity in creation order. The
// result must not be modified.
func (s *Service) Projects(ctx context.Context, id Identity) ([]model.Project, error) {
	if id.Demo() {
		return s.demo.Projects, nil
	}
	projects, err := s.repo.GetProjects(ctx, id.ProfileID(), store.ProjectQuery{})
	if err != nil {
		return nil, fmt.Errorf("loading projects: %w", err)
	}
	return projects, nil
}

// Catalog returns the tag catalog visible to the identity.
func (s *Service) Catalog(ctx context.Context, id Identity) ([]model.Tag, error) {
	if id.Demo() {
		return s.demo.Tags, nil
	}
	tags, err := s.repo.GetTags(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading tags: %w", err)
	}
	return tags, nil
}

// Colors returns a tag color resolver over the identity's catalog.
func (s *Service) Colors(ctx context.Context, id Identity) (*tagcolor.Resolver, error) {
	catalog, err := s.Catalog(ctx, id)
	if err != nil {
		return nil, err
	}
	return tagcolor.New(catalog), nil
}

// Roles returns the role names known for the identity.
func (s *Service) Roles(ctx context.Context, id Identity) ([]string, error) {
	if id.Demo() {
		return s.demo.Roles, nil
	}
	projects, err := s.Projects(ctx, id)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0)
	for _, r := range stats.RoleStats(projects) {
		names = append(names, r.RoleName)
	}
	return names, nil
}

// Articles returns the current article feed snapshot for the identity.
func (s *Service) Articles(ctx context.Context, id Identity) (timeline.Articles, error) {
	l, err := s.Loader(ctx, id)
	if err != nil {
		return timeline.Articles{}, err
	}
	snap := l.Snapshot()
	return timeline.Articles{
		Items:     snap.Articles,
		Connected: snap.Connected,
		Loading:   snap.Loading,
		Err:       snap.Err,
	}, nil
}

// Loader returns the identity's article loader, creating it on first use.
// A profile loader starts primed from the article cache; refreshing it
// syncs every source first.
func (s *Service) Loader(ctx context.Context, id Identity) (*feed.Loader, error) {
	key := id.ProfileID()

	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.loaders[key]; ok {
		return l, nil
	}

	var l *feed.Loader
	if id.Demo() {
		l = feed.NewLoader(feed.Static(s.demo.Articles), s.logger)
		l.Prime(s.demo.Articles)
	} else {
		sources, err := s.repo.GetSources(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("loading sources: %w", err)
		}
		cached, err := s.repo.GetArticles(ctx, key, store.ArticleQuery{})
		if err != nil {
			return nil, fmt.Errorf("loading cached articles: %w", err)
		}

		var src feed.Source
		if len(sources) > 0 {
			src = s.syncSource(key)
		}
		l = feed.NewLoader(src, s.logger.With("profile", key))
		l.Prime(cached)
	}

	s.loaders[key] = l
	return l, nil
}

// Forget drops the cached loader of a profile, e.g. after its sources change.
func (s *Service) Forget(id Identity) {
	s.mu.Lock()
	delete(s.loaders, id.ProfileID())
	s.mu.Unlock()
}

// syncSource syncs the profile's sources and then reads the merged cache.
// Some sources failing is tolerated; only a sync where every source failed
// is reported as a fetch error.
func (s *Service) syncSource(profileID string) feed.Source {
	return feed.SourceFunc(func(ctx context.Context) ([]model.Article, error) {
		results, err := s.syncer.Sync(ctx, profileID)
		if err != nil {
			return nil, err
		}
		if failed := feed.Failed(results); failed != nil {
			if countFailed(results) == len(results) {
				return nil, failed
			}
			s.logger.Warn("some sources failed to sync", "profile", profileID, "error", failed)
		}
		return s.repo.GetArticles(ctx, profileID, store.ArticleQuery{})
	})
}

func countFailed(results []feed.SyncResult) int {
	n := 0
	for _, r := range results {
		if r.Error != "" {
			n++
		}
	}
	return n
}

// Refresh refetches the identity's articles and publishes the result.
func (s *Service) Refresh(ctx context.Context, id Identity) error {
	l, err := s.Loader(ctx, id)
	if err != nil {
		return err
	}
	return l.Refresh(ctx)
}

// Sync fetches every source of the profile into the article cache.
func (s *Service) Sync(ctx context.Context, id Identity) ([]feed.SyncResult, error) {
	profileID, err := id.RequireProfile()
	if err != nil {
		return nil, err
	}
	results, err := s.syncer.Sync(ctx, profileID)
	if err != nil {
		return nil, err
	}
	s.Forget(id)
	return results, nil
}
