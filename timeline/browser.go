package timeline

import (
	"github.com/robertmeta/techfolio/model"
)

// Articles is the article-feed input: the current article list and the
// state of the feed that produced it.
type Articles struct {
	Items     []model.Article
	Connected bool
	Loading   bool
	Err       error
}

// View is one computed window of the timeline.
type View struct {
	Entries            []Entry `json:"entries"`
	HasMore            bool    `json:"has_more"`
	PageSize           int     `json:"page_size"`
	PageCount          int     `json:"page_count"`
	TotalProjectCount  int     `json:"total_project_count"`
	TotalArticleCount  int     `json:"total_article_count"`
	TotalFilteredCount int     `json:"total_filtered_count"`
	ArticlesConnected  bool    `json:"articles_connected"`
	ArticlesLoading    bool    `json:"articles_loading"`
	ArticleError       string  `json:"article_error,omitempty"`
}

// Browser owns the filter state and pagination cursor for one viewer.
// Every effective change to the filter or kind toggles rewinds the cursor
// to the first page. A Browser is not safe for concurrent use.
type Browser struct {
	filter Filter
	kinds  Kinds
	cursor *Cursor

	// sorted caches the last merge so Advance and Trigger work on the
	// same list the viewer is looking at.
	sorted []Entry
}

// NewBrowser returns a browser with no filter and both kinds active.
func NewBrowser(pageSize int) *Browser {
	return &Browser{kinds: AllKinds(), cursor: NewCursor(pageSize)}
}

// Filter returns a copy of the current filter.
func (b *Browser) Filter() Filter {
	f := b.filter
	f.Tags = append([]string(nil), b.filter.Tags...)
	return f
}

// Kinds returns the active kind toggles.
func (b *Browser) Kinds() Kinds { return b.kinds }

// Cursor exposes the pagination cursor.
func (b *Browser) Cursor() *Cursor { return b.cursor }

// SetFilter replaces the whole filter.
func (b *Browser) SetFilter(f Filter) {
	if b.filter.Equal(f) {
		return
	}
	b.filter = Filter{Text: f.Text, Role: f.Role, Tags: append([]string(nil), f.Tags...)}
	b.cursor.Reset()
}

// SetText changes the search text.
func (b *Browser) SetText(text string) {
	f := b.Filter()
	f.Text = text
	b.SetFilter(f)
}

// SetTags replaces the tag selection.
func (b *Browser) SetTags(tags []string) {
	f := b.Filter()
	f.Tags = tags
	b.SetFilter(f)
}

// ToggleTag adds the tag to the selection or removes it.
func (b *Browser) ToggleTag(tag string) {
	f := b.Filter()
	for i, t := range f.Tags {
		if t == tag {
			f.Tags = append(f.Tags[:i], f.Tags[i+1:]...)
			b.SetFilter(f)
			return
		}
	}
	f.Tags = append(f.Tags, tag)
	b.SetFilter(f)
}

// SetRole selects a role; "" clears the role filter.
func (b *Browser) SetRole(role string) {
	f := b.Filter()
	f.Role = role
	b.SetFilter(f)
}

// SetKinds changes the kind toggles.
func (b *Browser) SetKinds(k Kinds) {
	if b.kinds == k {
		return
	}
	b.kinds = k
	b.cursor.Reset()
}

// Window recomputes the merged list from the snapshots and returns the
// visible window over it.
func (b *Browser) Window(projects []model.Project, articles Articles) View {
	b.sorted = Merge(projects, articles.Items, b.kinds, b.filter)
	v := View{
		Entries:            b.cursor.Visible(b.sorted),
		HasMore:            b.cursor.HasMore(b.sorted),
		PageSize:           b.cursor.PageSize(),
		PageCount:          b.cursor.PageCount(),
		TotalProjectCount:  len(projects),
		TotalArticleCount:  len(articles.Items),
		TotalFilteredCount: len(b.sorted),
		ArticlesConnected:  articles.Connected,
		ArticlesLoading:    articles.Loading,
	}
	if articles.Err != nil {
		v.ArticleError = articles.Err.Error()
	}
	return v
}

// Advance reveals one more page of the last computed list.
func (b *Browser) Advance() bool {
	return b.cursor.Advance(b.sorted)
}

// Trigger forwards a near-end signal to the cursor against the last
// computed list.
func (b *Browser) Trigger(nearEnd, loading bool) bool {
	return b.cursor.Trigger(b.sorted, nearEnd, loading)
}

// Page computes the window after revealing pages pages in one go, for
// stateless callers such as the HTTP API.
func Page(projects []model.Project, articles Articles, kinds Kinds, f Filter, pageSize, pages int) View {
	b := NewBrowser(pageSize)
	b.SetFilter(f)
	b.SetKinds(kinds)
	b.Window(projects, articles)
	for i := 1; i < pages; i++ {
		if !b.Advance() {
			break
		}
	}
	return b.Window(projects, articles)
}
