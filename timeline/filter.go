package timeline

import (
	"strings"

	"github.com/robertmeta/techfolio/model"
)

// Filter is the user-controlled filter state.
type Filter struct {
	// Text is matched case-insensitively; blank matches everything.
	Text string `json:"text,omitempty"`
	// Tags selects entries carrying any of the names.
	Tags []string `json:"tags,omitempty"`
	// Role restricts to projects listing it. Empty means no role filter.
	Role string `json:"role,omitempty"`
}

// Equal reports whether two filters select the same entries.
func (f Filter) Equal(o Filter) bool {
	if f.Text != o.Text || f.Role != o.Role || len(f.Tags) != len(o.Tags) {
		return false
	}
	for i := range f.Tags {
		if f.Tags[i] != o.Tags[i] {
			return false
		}
	}
	return true
}

// Matches reports whether the entry satisfies the text, tag and role
// predicates together.
func Matches(e Entry, f Filter) bool {
	return TextMatches(e, f.Text) && TagsMatch(e, f.Tags) && RoleMatches(e, f.Role)
}

// TextMatches checks the project title or summary, or the article title.
func TextMatches(e Entry, text string) bool {
	needle := strings.ToLower(strings.TrimSpace(text))
	if needle == "" {
		return true
	}
	return textMatchesLower(e, needle)
}

func textMatchesLower(e Entry, needle string) bool {
	switch e.Kind {
	case model.KindProject:
		if e.Project == nil {
			return false
		}
		return strings.Contains(strings.ToLower(e.Project.Title), needle) ||
			strings.Contains(strings.ToLower(e.Project.Summary), needle)
	case model.KindArticle:
		if e.Article == nil {
			return false
		}
		return strings.Contains(strings.ToLower(e.Article.Title), needle)
	}
	return false
}

// TagsMatch passes when tags is empty or any selected tag is attached.
// Project tags compare exactly; article tags ignore case.
func TagsMatch(e Entry, tags []string) bool {
	if len(tags) == 0 {
		return true
	}
	for _, name := range tags {
		switch e.Kind {
		case model.KindProject:
			if e.Project != nil && e.Project.HasTag(name) {
				return true
			}
		case model.KindArticle:
			if e.Article != nil && e.Article.HasTag(name) {
				return true
			}
		}
	}
	return false
}

// RoleMatches passes when role is empty. Otherwise only projects listing
// the role pass: articles carry no roles, so an active role filter
// excludes every article.
func RoleMatches(e Entry, role string) bool {
	if role == "" {
		return true
	}
	if e.Kind != model.KindProject || e.Project == nil {
		return false
	}
	return e.Project.HasRole(role)
}

// matcher is Matches with the per-call work hoisted out of the merge loop.
type matcher struct {
	needle      string
	projectTags map[string]struct{}
	articleTags map[string]struct{}
	role        string
}

func newMatcher(f Filter) matcher {
	m := matcher{
		needle: strings.ToLower(strings.TrimSpace(f.Text)),
		role:   f.Role,
	}
	if len(f.Tags) > 0 {
		m.projectTags = make(map[string]struct{}, len(f.Tags))
		m.articleTags = make(map[string]struct{}, len(f.Tags))
		for _, t := range f.Tags {
			m.projectTags[t] = struct{}{}
			m.articleTags[strings.ToLower(t)] = struct{}{}
		}
	}
	return m
}

func (m matcher) match(e Entry) bool {
	if m.needle != "" && !textMatchesLower(e, m.needle) {
		return false
	}
	if !RoleMatches(e, m.role) {
		return false
	}
	if m.projectTags == nil {
		return true
	}
	switch e.Kind {
	case model.KindProject:
		for _, t := range e.Project.Tags {
			if _, ok := m.projectTags[t.Name]; ok {
				return true
			}
		}
	case model.KindArticle:
		for _, t := range e.Article.Tags {
			if _, ok := m.articleTags[strings.ToLower(t)]; ok {
				return true
			}
		}
	}
	return false
}
