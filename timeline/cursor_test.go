package timeline

import (
	"fmt"
	"testing"
	"time"

	"github.com/robertmeta/techfolio/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEntries(n int) []Entry {
	out := make([]Entry, 0, n)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		a := &model.Article{ID: fmt.Sprint(i), Title: fmt.Sprintf("a%d", i), CreatedAt: base.AddDate(0, 0, -i)}
		out = append(out, ArticleEntry(a))
	}
	return out
}

func TestCursor_ExamplePaging(t *testing.T) {
	sorted := sampleEntries(5)
	c := NewCursor(2)

	assert.Len(t, c.Visible(sorted), 2)
	assert.True(t, c.HasMore(sorted))

	assert.True(t, c.Advance(sorted))
	assert.Len(t, c.Visible(sorted), 4)
	assert.True(t, c.HasMore(sorted))

	assert.True(t, c.Advance(sorted))
	assert.Len(t, c.Visible(sorted), 5)
	assert.False(t, c.HasMore(sorted))

	assert.False(t, c.Advance(sorted))
	assert.Len(t, c.Visible(sorted), 5)
	assert.Equal(t, 3, c.PageCount())
}

func TestCursor_Monotonic(t *testing.T) {
	sorted := sampleEntries(23)
	c := NewCursor(4)

	prev := c.Visible(sorted)
	for c.HasMore(sorted) {
		require.True(t, c.Advance(sorted))
		next := c.Visible(sorted)
		require.Greater(t, len(next), len(prev))
		assert.Equal(t, prev, next[:len(prev)])
		prev = next
	}
	assert.Len(t, prev, 23)
}

func TestCursor_DefaultPageSize(t *testing.T) {
	assert.Equal(t, DefaultPageSize, NewCursor(0).PageSize())
	assert.Equal(t, DefaultPageSize, NewCursor(-3).PageSize())
}

func TestCursor_EmptyList(t *testing.T) {
	c := NewCursor(3)
	assert.Empty(t, c.Visible(nil))
	assert.False(t, c.HasMore(nil))
	assert.False(t, c.Advance(nil))
}

func TestCursor_Trigger(t *testing.T) {
	sorted := sampleEntries(10)
	c := NewCursor(3)

	assert.False(t, c.Trigger(sorted, false, false), "no signal")
	assert.False(t, c.Trigger(sorted, true, true), "loading suppresses")
	assert.True(t, c.Trigger(sorted, true, false), "first edge after loading fires")
	assert.False(t, c.Trigger(sorted, true, false), "level signal does not refire")
	assert.Equal(t, 2, c.PageCount())

	assert.False(t, c.Trigger(sorted, false, false))
	assert.True(t, c.Trigger(sorted, true, false))
	assert.False(t, c.Trigger(sorted, false, false))
	assert.True(t, c.Trigger(sorted, true, false))
	assert.Equal(t, 4, c.PageCount())
	assert.False(t, c.HasMore(sorted))

	assert.False(t, c.Trigger(sorted, false, false))
	assert.False(t, c.Trigger(sorted, true, false), "no more pages")
	assert.Equal(t, 4, c.PageCount())
}
