package timeline

import (
	"sort"

	"github.com/robertmeta/techfolio/model"
)

// Kinds toggles which record kinds take part in the timeline.
type Kinds struct {
	Project bool `json:"project"`
	Article bool `json:"article"`
}

// AllKinds enables both projects and articles.
func AllKinds() Kinds {
	return Kinds{Project: true, Article: true}
}

// Merge normalizes the active sources into entries, keeps those matching f,
// and sorts them newest first. Projects precede articles before the stable
// sort, so a project wins an exact date tie; undated entries go last.
// Inputs are not modified; entries point into the given slices.
func Merge(projects []model.Project, articles []model.Article, kinds Kinds, f Filter) []Entry {
	capacity := 0
	if kinds.Project {
		capacity += len(projects)
	}
	if kinds.Article {
		capacity += len(articles)
	}
	out := make([]Entry, 0, capacity)

	m := newMatcher(f)
	if kinds.Project {
		for i := range projects {
			if e := ProjectEntry(&projects[i]); m.match(e) {
				out = append(out, e)
			}
		}
	}
	if kinds.Article && f.Role == "" {
		for i := range articles {
			if e := ArticleEntry(&articles[i]); m.match(e) {
				out = append(out, e)
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Dated != b.Dated {
			return a.Dated
		}
		return a.SortDate.After(b.SortDate)
	})
	return out
}
