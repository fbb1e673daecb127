// Package stats reduces a project collection into frequency-ranked
// skill (tag) and role statistics.
package stats

import (
	"sort"

	"github.com/robertmeta/techfolio/model"
)

// DefaultSkillLimit is the number of skills returned when no limit is given.
const DefaultSkillLimit = 10

// counter accumulates counts while remembering first-seen order,
// so ties sort the same way on every run.
type counter struct {
	index  map[string]int
	names  []string
	counts []int
}

func newCounter() *counter {
	return &counter{index: make(map[string]int)}
}

func (c *counter) add(name string) {
	i, ok := c.index[name]
	if !ok {
		i = len(c.names)
		c.index[name] = i
		c.names = append(c.names, name)
		c.counts = append(c.counts, 0)
	}
	c.counts[i]++
}

// ranked returns first-seen indexes ordered by count descending.
func (c *counter) ranked() []int {
	order := make([]int, len(c.names))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return c.counts[order[a]] > c.counts[order[b]]
	})
	return order
}

// SkillStats counts, for each tag name, the projects that carry it.
// A tag is counted once per project even if listed twice.
// Results are ordered by count descending with ties in first-seen order,
// truncated to limit (DefaultSkillLimit when limit <= 0).
func SkillStats(projects []model.Project, limit int) []model.SkillStat {
	if limit <= 0 {
		limit = DefaultSkillLimit
	}

	c := newCounter()
	for i := range projects {
		seen := make(map[string]struct{}, len(projects[i].Tags))
		for _, t := range projects[i].Tags {
			if _, dup := seen[t.Name]; dup {
				continue
			}
			seen[t.Name] = struct{}{}
			c.add(t.Name)
		}
	}

	order := c.ranked()
	if len(order) > limit {
		order = order[:limit]
	}
	out := make([]model.SkillStat, 0, len(order))
	for _, i := range order {
		out = append(out, model.SkillStat{TagName: c.names[i], UsageCount: c.counts[i]})
	}
	return out
}

// RoleStats counts, for each role name, the projects that list it.
// Roles are only ever added when encountered, so every count is positive.
func RoleStats(projects []model.Project) []model.RoleStat {
	c := newCounter()
	for i := range projects {
		seen := make(map[string]struct{}, len(projects[i].RoleNames))
		for _, r := range projects[i].RoleNames {
			if _, dup := seen[r]; dup {
				continue
			}
			seen[r] = struct{}{}
			c.add(r)
		}
	}

	order := c.ranked()
	out := make([]model.RoleStat, 0, len(order))
	for _, i := range order {
		if c.counts[i] == 0 {
			continue
		}
		out = append(out, model.RoleStat{RoleName: c.names[i], Count: c.counts[i]})
	}
	return out
}
