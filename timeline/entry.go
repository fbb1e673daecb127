// Package timeline merges projects and articles into one chronologically
// sorted, filtered and incrementally paginated list.
package timeline

import (
	"time"

	"github.com/robertmeta/techfolio/model"
)

// Entry is a project or article normalized for display on the timeline.
// Exactly one of Project and Article is set, matching Kind.
type Entry struct {
	Kind     model.Kind     `json:"kind"`
	Project  *model.Project `json:"project,omitempty"`
	Article  *model.Article `json:"article,omitempty"`
	SortDate time.Time      `json:"sort_date"`
	// Dated is false when the source date could not be parsed.
	// Undated entries sort after every dated one.
	Dated bool `json:"-"`
}

// ProjectEntry wraps a project; its sort date is the period start.
func ProjectEntry(p *model.Project) Entry {
	d, ok := p.PeriodStart.Time()
	return Entry{Kind: model.KindProject, Project: p, SortDate: d, Dated: ok}
}

// ArticleEntry wraps an article; its sort date is the publication time.
func ArticleEntry(a *model.Article) Entry {
	return Entry{Kind: model.KindArticle, Article: a, SortDate: a.CreatedAt, Dated: !a.CreatedAt.IsZero()}
}

// Title returns the display title of the underlying record.
func (e Entry) Title() string {
	switch {
	case e.Project != nil:
		return e.Project.Title
	case e.Article != nil:
		return e.Article.Title
	}
	return ""
}

// TagNames returns the tag names attached to the underlying record.
func (e Entry) TagNames() []string {
	switch {
	case e.Project != nil:
		names := make([]string, 0, len(e.Project.Tags))
		for _, t := range e.Project.Tags {
			names = append(names, t.Name)
		}
		return names
	case e.Article != nil:
		return e.Article.Tags
	}
	return nil
}
