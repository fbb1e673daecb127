package feed

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/gofrs/flock"
	"github.com/robertmeta/techfolio/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memCache struct {
	mu       sync.Mutex
	sources  []*model.Source
	articles map[string][]model.Article
}

func (c *memCache) GetSources(ctx context.Context, profileID string) ([]*model.Source, error) {
	var out []*model.Source
	for _, s := range c.sources {
		if s.ProfileID == profileID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (c *memCache) ReplaceArticles(ctx context.Context, src *model.Source, articles []model.Article) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.articles == nil {
		c.articles = make(map[string][]model.Article)
	}
	c.articles[src.ID] = articles
	return nil
}

func stubSources(src *model.Source, _ Options) (Source, error) {
	switch src.Target {
	case "broken":
		return SourceFunc(func(context.Context) ([]model.Article, error) {
			return nil, errors.New("connection refused")
		}), nil
	case "unknown":
		return nil, ErrUnknownSourceKind
	}
	return Static([]model.Article{{ID: src.Target + "-1"}, {ID: src.Target + "-2"}}), nil
}

func TestSyncer_Sync(t *testing.T) {
	cache := &memCache{
		sources: []*model.Source{
			{ID: "s1", ProfileID: "alice", Kind: model.SourceQiita, Target: "alice_dev"},
			{ID: "s2", ProfileID: "alice", Kind: model.SourceFeed, Target: "broken"},
			{ID: "s3", ProfileID: "alice", Kind: model.SourceFeed, Target: "blog"},
			{ID: "s4", ProfileID: "bob", Kind: model.SourceFeed, Target: "bob"},
		},
		articles: map[string][]model.Article{"s2": {{ID: "kept"}}},
	}
	s := &Syncer{Cache: cache, NewSource: stubSources, Concurrency: 2}

	results, err := s.Sync(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "s1", results[0].SourceID)
	assert.Equal(t, 2, results[0].Articles)
	assert.Empty(t, results[0].Error)

	assert.Equal(t, "s2", results[1].SourceID)
	assert.Contains(t, results[1].Error, "connection refused")

	assert.Equal(t, 2, results[2].Articles)

	assert.Len(t, cache.articles["s1"], 2)
	assert.Equal(t, []model.Article{{ID: "kept"}}, cache.articles["s2"], "failed sources keep their cache")
	assert.NotContains(t, cache.articles, "s4")

	err = Failed(results)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "feed broken")
}

func TestSyncer_NoSources(t *testing.T) {
	s := &Syncer{Cache: &memCache{}, NewSource: stubSources}

	results, err := s.Sync(context.Background(), "alice")
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.NoError(t, Failed(results))
}

func TestSyncer_Lock(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "sync.lock")
	s := &Syncer{Cache: &memCache{}, NewSource: stubSources, LockPath: lockPath}

	held := flock.New(lockPath)
	locked, err := held.TryLock()
	require.NoError(t, err)
	require.True(t, locked)

	_, err = s.Sync(context.Background(), "alice")
	assert.ErrorIs(t, err, ErrSyncInProgress)

	require.NoError(t, held.Unlock())
	_, err = s.Sync(context.Background(), "alice")
	assert.NoError(t, err)
}
