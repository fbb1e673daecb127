package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/robertmeta/techfolio/feed"
	"github.com/robertmeta/techfolio/model"
	"github.com/robertmeta/techfolio/portfolio"
	"github.com/robertmeta/techfolio/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	handler http.Handler
	svc     *portfolio.Service
	store   *store.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	s, err := store.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	svc, err := portfolio.NewService(s, portfolio.Options{
		PageSize: 3,
		NewSource: func(*model.Source, feed.Options) (feed.Source, error) {
			return feed.Static([]model.Article{
				{ID: "q1", Title: "Synced post", CreatedAt: time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)},
			}), nil
		},
	})
	require.NoError(t, err)
	return &testEnv{handler: New(svc, nil), svc: svc, store: s}
}

func (e *testEnv) do(t *testing.T, method, target, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

type timelineBody struct {
	Entries []struct {
		Kind    string `json:"kind"`
		Project *struct {
			Title string `json:"title"`
		} `json:"project"`
		Article *struct {
			ID string `json:"id"`
		} `json:"article"`
	} `json:"entries"`
	HasMore            bool              `json:"has_more"`
	PageCount          int               `json:"page_count"`
	TotalProjectCount  int               `json:"total_project_count"`
	TotalArticleCount  int               `json:"total_article_count"`
	TotalFilteredCount int               `json:"total_filtered_count"`
	ArticlesLoading    bool              `json:"articles_loading"`
	TagColors          map[string]string `json:"tag_colors"`
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestTimeline_Demo(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/timeline", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[timelineBody](t, rec)

	assert.Len(t, body.Entries, 3)
	assert.True(t, body.HasMore)
	assert.Equal(t, 4, body.TotalProjectCount)
	assert.Equal(t, 3, body.TotalArticleCount)
	assert.Equal(t, 7, body.TotalFilteredCount)
	assert.Equal(t, "article", body.Entries[0].Kind)
	assert.NotEmpty(t, body.TagColors)
}

func TestTimeline_QueryParameters(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/timeline?kinds=project&pages=2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[timelineBody](t, rec)
	assert.Len(t, body.Entries, 4)
	assert.False(t, body.HasMore)
	assert.Equal(t, 2, body.PageCount)
	for _, e := range body.Entries {
		assert.Equal(t, "project", e.Kind)
	}

	rec = env.do(t, http.MethodGet, "/api/timeline?tag=React&tag=Python&page_size=10", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body = decode[timelineBody](t, rec)
	// Two React projects, one Python project and the lowercase "react" article.
	assert.Equal(t, 4, body.TotalFilteredCount)

	rec = env.do(t, http.MethodGet, "/api/timeline?text=dashboard", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body = decode[timelineBody](t, rec)
	require.Len(t, body.Entries, 1)
	assert.Equal(t, "Sales dashboard", body.Entries[0].Project.Title)

	rec = env.do(t, http.MethodGet, "/api/timeline?role=Design", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body = decode[timelineBody](t, rec)
	assert.Equal(t, 2, body.TotalFilteredCount)
	for _, e := range body.Entries {
		assert.Nil(t, e.Article, "a role filter excludes articles")
	}
}

func TestTimeline_BadRequest(t *testing.T) {
	env := newTestEnv(t)

	tests := []string{
		"/api/timeline?kinds=video",
		"/api/timeline?page_size=abc",
		"/api/timeline?pages=-1",
		"/api/stats?limit=ten",
	}
	for _, target := range tests {
		t.Run(target, func(t *testing.T) {
			rec := env.do(t, http.MethodGet, target, "")
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, decode[map[string]string](t, rec), "error")
		})
	}
}

func TestStats_Demo(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/stats?limit=3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	st := decode[portfolio.Stats](t, rec)
	require.Len(t, st.Skills, 3)
	assert.Equal(t, "Go", st.Skills[0].TagName)
	assert.NotEmpty(t, st.Roles)
}

func TestTags_Demo(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/tags", "")
	require.Equal(t, http.StatusOK, rec.Code)
	tags := decode[[]tagResponse](t, rec)
	require.NotEmpty(t, tags)
	for _, tag := range tags {
		assert.NotEmpty(t, tag.Color, "every tag resolves to a color")
	}
}

func TestAuth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/timeline", "tf_bogus")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	_, token, err := env.svc.CreateProfile(context.Background(), "Alice", "")
	require.NoError(t, err)

	rec = env.do(t, http.MethodGet, "/api/timeline", token)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[timelineBody](t, rec)
	assert.Equal(t, 0, body.TotalProjectCount, "a fresh profile does not see demo data")
	assert.Empty(t, body.Entries)
}

func TestSync(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	p, token, err := env.svc.CreateProfile(ctx, "Alice", "alice_dev")
	require.NoError(t, err)
	require.NoError(t, env.store.SaveProject(ctx, &model.Project{ProfileID: p.ID, Title: "API", PeriodStart: "2024-01"}))

	rec := env.do(t, http.MethodPost, "/api/sync", token)
	require.Equal(t, http.StatusAccepted, rec.Code)

	require.Eventually(t, func() bool {
		rec := env.do(t, http.MethodGet, "/api/timeline", token)
		body := decode[timelineBody](t, rec)
		return !body.ArticlesLoading && body.TotalArticleCount == 1
	}, 2*time.Second, 10*time.Millisecond)

	rec = env.do(t, http.MethodGet, "/api/timeline", token)
	body := decode[timelineBody](t, rec)
	require.Len(t, body.Entries, 2)
	assert.Equal(t, "q1", body.Entries[0].Article.ID)
}
