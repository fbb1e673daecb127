package portfolio

import (
	"context"

	"github.com/robertmeta/techfolio/model"
	"github.com/robertmeta/techfolio/stats"
	"github.com/robertmeta/techfolio/timeline"
)

// TimelineQuery selects a window of the timeline.
type TimelineQuery struct {
	Filter   timeline.Filter
	Kinds    timeline.Kinds
	PageSize int
	Pages    int
}

// Timeline computes the filtered, paginated timeline for the identity.
func (s *Service) Timeline(ctx context.Context, id Identity, q TimelineQuery) (timeline.View, error) {
	projects, err := s.Projects(ctx, id)
	if err != nil {
		return timeline.View{}, err
	}
	articles, err := s.Articles(ctx, id)
	if err != nil {
		return timeline.View{}, err
	}

	pageSize := q.PageSize
	if pageSize <= 0 {
		pageSize = s.pageSize
	}
	pages := q.Pages
	if pages < 1 {
		pages = 1
	}
	return timeline.Page(projects, articles, q.Kinds, q.Filter, pageSize, pages), nil
}

// Stats is the aggregate skill and role usage of a portfolio.
type Stats struct {
	Skills []model.SkillStat `json:"skills"`
	Roles  []model.RoleStat  `json:"roles"`
}

// Stats aggregates over every project of the identity, ignoring any
// timeline filter. limit <= 0 uses the configured limit.
func (s *Service) Stats(ctx context.Context, id Identity, limit int) (Stats, error) {
	projects, err := s.Projects(ctx, id)
	if err != nil {
		return Stats{}, err
	}
	if limit <= 0 {
		limit = s.statsLimit
	}
	return Stats{
		Skills: stats.SkillStats(projects, limit),
		Roles:  stats.RoleStats(projects),
	}, nil
}
