package store

import (
	"context"
	"testing"
	"time"

	"github.com/robertmeta/techfolio/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestProfile(t *testing.T, s *Store, id string) *model.Profile {
	t.Helper()
	p := &model.Profile{ID: id, DisplayName: "Dev " + id, CreatedAt: time.Now().UTC()}
	require.NoError(t, s.SaveProfile(context.Background(), p, "hash-"+id))
	return p
}

func TestNewStore(t *testing.T) {
	s, err := New(":memory:")
	require.NoError(t, err)
	require.NotNil(t, s)
	defer s.Close()
}

func TestStore_Profiles(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	p := newTestProfile(t, s, "alice")

	got, err := s.GetProfile(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, p.DisplayName, got.DisplayName)
	assert.Equal(t, p.CreatedAt.Unix(), got.CreatedAt.Unix())

	got, err = s.GetProfileByTokenHash(ctx, "hash-alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.ID)

	_, err = s.GetProfileByTokenHash(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)

	err = s.SaveProfile(ctx, &model.Profile{ID: "alice", DisplayName: "again"}, "other")
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestStore_SaveAndGetProject(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	newTestProfile(t, s, "alice")

	p := &model.Project{
		ProfileID:   "alice",
		Title:       "Portfolio site",
		Summary:     "Personal site",
		PeriodStart: "2023-01",
		PeriodEnd:   "2023-06",
		Tags:        []model.Tag{{Name: "React", Color: "#61DAFB"}, {Name: "TypeScript"}, {Name: "React"}},
		RoleNames:   []string{"Frontend", " Frontend ", "PM"},
	}
	require.NoError(t, s.SaveProject(ctx, p))
	assert.NotEmpty(t, p.ID, "Project ID should be set after save")
	assert.False(t, p.CreatedAt.IsZero())

	got, err := s.GetProject(ctx, "alice", p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Portfolio site", got.Title)
	assert.Equal(t, model.YearMonth("2023-06"), got.PeriodEnd)
	require.Len(t, got.Tags, 2)
	assert.Equal(t, "React", got.Tags[0].Name)
	assert.Equal(t, "#61DAFB", got.Tags[0].Color)
	assert.Equal(t, "TypeScript", got.Tags[1].Name)
	assert.Empty(t, got.Tags[1].Color)
	assert.Equal(t, []string{"Frontend", "PM"}, got.RoleNames)
}

func TestStore_SaveProjectRejectsInvalid(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	newTestProfile(t, s, "alice")

	p := &model.Project{ProfileID: "alice", PeriodStart: "2023-01"}
	err := s.SaveProject(ctx, p)
	assert.ErrorIs(t, err, model.ErrInvalidProject)
	assert.Empty(t, p.ID)
}

func TestStore_SaveProjectUnknownProfile(t *testing.T) {
	s := newTestStore(t)

	p := &model.Project{ProfileID: "ghost", Title: "x", PeriodStart: "2023-01"}
	err := s.SaveProject(context.Background(), p)
	assert.Error(t, err)
	assert.Empty(t, p.ID, "ID should be cleared when the insert fails")
}

func TestStore_UpdateProject(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	newTestProfile(t, s, "alice")
	newTestProfile(t, s, "bob")

	p := &model.Project{ProfileID: "alice", Title: "v1", PeriodStart: "2023-01", Tags: []model.Tag{{Name: "Go"}}}
	require.NoError(t, s.SaveProject(ctx, p))

	p.Title = "v2"
	p.IsOngoing = true
	p.Tags = []model.Tag{{Name: "Rust"}}
	require.NoError(t, s.SaveProject(ctx, p))

	got, err := s.GetProject(ctx, "alice", p.ID)
	require.NoError(t, err)
	assert.Equal(t, "v2", got.Title)
	assert.True(t, got.IsOngoing)
	require.Len(t, got.Tags, 1)
	assert.Equal(t, "Rust", got.Tags[0].Name)

	// Another profile cannot overwrite it.
	stolen := *p
	stolen.ProfileID = "bob"
	assert.ErrorIs(t, s.SaveProject(ctx, &stolen), ErrNotFound)
}

func TestStore_GetProjects(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	newTestProfile(t, s, "alice")
	newTestProfile(t, s, "bob")

	projects := []*model.Project{
		{ProfileID: "alice", Title: "A", PeriodStart: "2021-01", Tags: []model.Tag{{Name: "Go"}}, RoleNames: []string{"Backend"}},
		{ProfileID: "alice", Title: "B", PeriodStart: "2022-01", Tags: []model.Tag{{Name: "React"}}, RoleNames: []string{"Frontend"}},
		{ProfileID: "alice", Title: "C", PeriodStart: "2023-01", Tags: []model.Tag{{Name: "Go"}, {Name: "React"}}},
		{ProfileID: "bob", Title: "D", PeriodStart: "2023-01", Tags: []model.Tag{{Name: "Go"}}},
	}
	for _, p := range projects {
		require.NoError(t, s.SaveProject(ctx, p))
	}

	all, err := s.GetProjects(ctx, "alice", ProjectQuery{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "A", all[0].Title)
	assert.Equal(t, "C", all[2].Title)

	goOnly, err := s.GetProjects(ctx, "alice", ProjectQuery{Tag: "Go"})
	require.NoError(t, err)
	assert.Len(t, goOnly, 2)

	lower, err := s.GetProjects(ctx, "alice", ProjectQuery{Tag: "go"})
	require.NoError(t, err)
	assert.Empty(t, lower, "tag filtering is exact")

	frontend, err := s.GetProjects(ctx, "alice", ProjectQuery{Role: "Frontend"})
	require.NoError(t, err)
	require.Len(t, frontend, 1)
	assert.Equal(t, "B", frontend[0].Title)

	page, err := s.GetProjects(ctx, "alice", ProjectQuery{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "B", page[0].Title)

	rest, err := s.GetProjects(ctx, "alice", ProjectQuery{Offset: 2})
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, "C", rest[0].Title)

	none, err := s.GetProjects(ctx, "nobody", ProjectQuery{})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestStore_DeleteProject(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	newTestProfile(t, s, "alice")

	p := &model.Project{ProfileID: "alice", Title: "A", PeriodStart: "2021-01", Tags: []model.Tag{{Name: "Go"}}}
	require.NoError(t, s.SaveProject(ctx, p))

	require.NoError(t, s.DeleteProject(ctx, "alice", p.ID))

	_, err := s.GetProject(ctx, "alice", p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.DeleteProject(ctx, "alice", p.ID), ErrNotFound)

	// The catalog keeps the tag.
	tags, err := s.GetTags(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, "Go", tags[0].Name)
}

func TestStore_Catalog(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	tag := &model.Tag{Name: "TypeScript", Color: "#3178C6"}
	require.NoError(t, s.SaveTag(ctx, tag))
	assert.NotZero(t, tag.ID)

	// Saving without a color keeps the stored one.
	again := &model.Tag{Name: "TypeScript"}
	require.NoError(t, s.SaveTag(ctx, again))
	assert.Equal(t, tag.ID, again.ID)

	require.NoError(t, s.SaveTag(ctx, &model.Tag{Name: "Go"}))
	assert.Error(t, s.SaveTag(ctx, &model.Tag{Name: "  "}))

	tags, err := s.GetTags(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "Go", tags[0].Name)
	assert.Equal(t, "TypeScript", tags[1].Name)
	assert.Equal(t, "#3178C6", tags[1].Color)

	require.NoError(t, s.SaveRole(ctx, "PM"))
	require.NoError(t, s.SaveRole(ctx, "Backend"))
	require.NoError(t, s.SaveRole(ctx, "PM"))

	roles, err := s.GetRoles(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"PM", "Backend"}, roles)
}

func TestStore_Sources(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	newTestProfile(t, s, "alice")

	src := &model.Source{ProfileID: "alice", Kind: model.SourceQiita, Target: "alice_dev"}
	require.NoError(t, s.SaveSource(ctx, src))
	assert.NotEmpty(t, src.ID)

	dup := &model.Source{ProfileID: "alice", Kind: model.SourceQiita, Target: "alice_dev"}
	assert.ErrorIs(t, s.SaveSource(ctx, dup), ErrDuplicate)

	feed := &model.Source{ProfileID: "alice", Kind: model.SourceFeed, Target: "https://example.com/feed", Title: "Blog"}
	require.NoError(t, s.SaveSource(ctx, feed))

	feed.Category = "tech"
	require.NoError(t, s.SaveSource(ctx, feed))

	sources, err := s.GetSources(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, sources, 2)
	assert.Equal(t, model.SourceQiita, sources[0].Kind)
	assert.Equal(t, "tech", sources[1].Category)

	require.NoError(t, s.DeleteSource(ctx, "alice", src.ID))
	assert.ErrorIs(t, s.DeleteSource(ctx, "alice", src.ID), ErrNotFound)
}

func TestStore_ReplaceAndGetArticles(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	newTestProfile(t, s, "alice")

	src := &model.Source{ProfileID: "alice", Kind: model.SourceQiita, Target: "alice_dev"}
	require.NoError(t, s.SaveSource(ctx, src))

	now := time.Now().UTC().Truncate(time.Second)
	first := []model.Article{
		{ID: "a1", Title: "Old", URL: "https://qiita.com/a1", CreatedAt: now.Add(-48 * time.Hour), Tags: []string{"Go"}},
		{ID: "a2", Title: "New", URL: "https://qiita.com/a2", CreatedAt: now.Add(-time.Hour), LikeCount: 5, StockCount: 2, Tags: []string{"React", "tech"}},
	}
	require.NoError(t, s.ReplaceArticles(ctx, src, first))

	got, err := s.GetArticles(ctx, "alice", ArticleQuery{})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a2", got[0].ID, "newest first")
	assert.Equal(t, 5, got[0].LikeCount)
	assert.Equal(t, 2, got[0].StockCount)
	assert.Equal(t, []string{"React", "tech"}, got[0].Tags)
	assert.Equal(t, "qiita", got[0].Source)
	assert.True(t, now.Add(-time.Hour).Equal(got[0].CreatedAt))

	since := now.Add(-24 * time.Hour).Unix()
	recent, err := s.GetArticles(ctx, "alice", ArticleQuery{SinceTime: &since})
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "a2", recent[0].ID)

	limited, err := s.GetArticles(ctx, "alice", ArticleQuery{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	// A second sync replaces the set.
	require.NoError(t, s.ReplaceArticles(ctx, src, []model.Article{{ID: "a3", Title: "Only", CreatedAt: now}}))
	got, err = s.GetArticles(ctx, "alice", ArticleQuery{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a3", got[0].ID)
	assert.Empty(t, got[0].Tags)

	// Disconnecting the source drops its articles.
	require.NoError(t, s.DeleteSource(ctx, "alice", src.ID))
	got, err = s.GetArticles(ctx, "alice", ArticleQuery{})
	require.NoError(t, err)
	assert.Empty(t, got)
}
