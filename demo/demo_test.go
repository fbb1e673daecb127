package demo

import (
	"testing"

	"github.com/robertmeta/techfolio/stats"
	"github.com/robertmeta/techfolio/timeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	d, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "Demo Engineer", d.Profile.DisplayName)
	assert.Len(t, d.Projects, 4)
	assert.Len(t, d.Articles, 3)
	assert.NotEmpty(t, d.Roles)

	first := d.Projects[0]
	assert.True(t, first.IsOngoing)
	assert.Equal(t, "#00ADD8", first.Tags[0].Color, "project tags take catalog colors")

	for _, a := range d.Articles {
		assert.False(t, a.CreatedAt.IsZero(), "article %s should be dated", a.ID)
	}
}

func TestLoad_ReturnsCopies(t *testing.T) {
	d, err := Load()
	require.NoError(t, err)
	d.Projects[0].Tags[0].Name = "mutated"
	d.Articles = nil

	again, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "Go", again.Projects[0].Tags[0].Name)
	assert.Len(t, again.Articles, 3)
}

func TestDatasetFeedsPipeline(t *testing.T) {
	d, err := Load()
	require.NoError(t, err)

	entries := timeline.Merge(d.Projects, d.Articles, timeline.AllKinds(), timeline.Filter{})
	require.Len(t, entries, 7)
	assert.Equal(t, "demo-a1", entries[0].Article.ID)

	skills := stats.SkillStats(d.Projects, 3)
	require.Len(t, skills, 3)
	assert.Equal(t, "Go", skills[0].TagName)
	assert.Equal(t, 2, skills[0].UsageCount)
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte("projects: [{title: '', period_start: '2024-01'}]"))
	assert.Error(t, err)

	_, err = Parse([]byte("projects: {"))
	assert.Error(t, err)
}
