// Package model defines the core data structures for techfolio.
package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidProject is returned by Project.Validate.
var ErrInvalidProject = errors.New("invalid project")

// Kind discriminates the two record types shown on the timeline.
type Kind string

const (
	KindProject Kind = "project"
	KindArticle Kind = "article"
)

// YearMonth is a "2006-01" period boundary as stored for projects.
type YearMonth string

var yearMonthLayouts = []string{"2006-01", "2006-1", "2006-01-02", time.RFC3339}

// Time parses the value as the first instant of its month in UTC.
// The second result is false when the value is empty or unparseable.
func (ym YearMonth) Time() (time.Time, bool) {
	s := strings.TrimSpace(string(ym))
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range yearMonthLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// Tag is a skill/technology label from the tag catalog.
type Tag struct {
	ID    int64  `json:"id,omitempty" yaml:"id,omitempty"`
	Name  string `json:"name" yaml:"name"`
	Color string `json:"color,omitempty" yaml:"color,omitempty"`
}

// Project is a portfolio entry owned by a profile.
type Project struct {
	ID          string    `json:"id" yaml:"id"`
	ProfileID   string    `json:"profile_id,omitempty" yaml:"-"`
	Title       string    `json:"title" yaml:"title"`
	Summary     string    `json:"summary,omitempty" yaml:"summary"`
	PeriodStart YearMonth `json:"period_start" yaml:"period_start"`
	PeriodEnd   YearMonth `json:"period_end,omitempty" yaml:"period_end"`
	IsOngoing   bool      `json:"is_ongoing" yaml:"is_ongoing"`
	Tags        []Tag     `json:"tags,omitempty" yaml:"tags"`
	RoleNames   []string  `json:"roles,omitempty" yaml:"roles"`
	CreatedAt   time.Time `json:"created_at" yaml:"-"`
}

// Validate checks if the project has required fields and a coherent period.
func (p *Project) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidProject)
	}
	start, ok := p.PeriodStart.Time()
	if !ok {
		return fmt.Errorf("%w: period start %q is not a year-month", ErrInvalidProject, p.PeriodStart)
	}
	if p.IsOngoing || p.PeriodEnd == "" {
		return nil
	}
	end, ok := p.PeriodEnd.Time()
	if !ok {
		return fmt.Errorf("%w: period end %q is not a year-month", ErrInvalidProject, p.PeriodEnd)
	}
	if end.Before(start) {
		return fmt.Errorf("%w: period ends before it starts", ErrInvalidProject)
	}
	return nil
}

// EffectiveEnd returns the end boundary, or "" when the project is ongoing.
// Storage may still carry an end date for ongoing projects; it is ignored.
func (p *Project) EffectiveEnd() YearMonth {
	if p.IsOngoing {
		return ""
	}
	return p.PeriodEnd
}

// HasTag reports whether the project carries the tag, compared exactly.
func (p *Project) HasTag(name string) bool {
	for _, t := range p.Tags {
		if t.Name == name {
			return true
		}
	}
	return false
}

// HasRole reports whether the project lists the role, compared exactly.
func (p *Project) HasRole(role string) bool {
	for _, r := range p.RoleNames {
		if r == role {
			return true
		}
	}
	return false
}

// Article is an externally authored post pulled from an article source.
type Article struct {
	ID         string    `json:"id" yaml:"id"`
	Title      string    `json:"title" yaml:"title"`
	URL        string    `json:"url" yaml:"url"`
	CreatedAt  time.Time `json:"created_at" yaml:"created_at"`
	LikeCount  int       `json:"likes_count" yaml:"likes_count"`
	StockCount int       `json:"stocks_count" yaml:"stocks_count"`
	Tags       []string  `json:"tags,omitempty" yaml:"tags"`
	Source     string    `json:"source,omitempty" yaml:"source,omitempty"`
}

// HasTag checks if the article has the tag, ignoring case.
func (a *Article) HasTag(tag string) bool {
	for _, t := range a.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// Age returns how long ago the article was published.
func (a *Article) Age() time.Duration {
	return time.Since(a.CreatedAt)
}

// SkillStat counts how many projects use a tag.
type SkillStat struct {
	TagName    string `json:"tag_name"`
	UsageCount int    `json:"usage_count"`
}

// RoleStat counts how many projects list a role.
type RoleStat struct {
	RoleName string `json:"role_name"`
	Count    int    `json:"count"`
}

// Profile is the identity that owns projects and article sources.
type Profile struct {
	ID          string    `json:"id" yaml:"id"`
	DisplayName string    `json:"display_name" yaml:"display_name"`
	QiitaUser   string    `json:"qiita_user,omitempty" yaml:"qiita_user"`
	CreatedAt   time.Time `json:"created_at" yaml:"-"`
}

// SourceKind names an article source implementation.
type SourceKind string

const (
	SourceQiita SourceKind = "qiita"
	SourceFeed  SourceKind = "feed"
)

// Source is an article source connected to a profile.
// Target is a Qiita user ID for SourceQiita and a feed URL for SourceFeed.
type Source struct {
	ID        string     `json:"id"`
	ProfileID string     `json:"profile_id"`
	Kind      SourceKind `json:"kind"`
	Target    string     `json:"target"`
	Title     string     `json:"title,omitempty"`
	Category  string     `json:"category,omitempty"`
}

// Validate checks if the source has a known kind and a target.
func (s *Source) Validate() error {
	switch s.Kind {
	case SourceQiita, SourceFeed:
	default:
		return fmt.Errorf("unknown source kind %q", s.Kind)
	}
	if strings.TrimSpace(s.Target) == "" {
		return errors.New("source target is required")
	}
	return nil
}
