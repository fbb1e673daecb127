package stats

import (
	"testing"

	"github.com/robertmeta/techfolio/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tags(names ...string) []model.Tag {
	out := make([]model.Tag, 0, len(names))
	for _, n := range names {
		out = append(out, model.Tag{Name: n})
	}
	return out
}

func TestSkillStats_OrderAndTies(t *testing.T) {
	projects := []model.Project{
		{ID: "1", Tags: tags("TypeScript", "React")},
		{ID: "2", Tags: tags("Go", "React")},
		{ID: "3", Tags: tags("Go", "Docker")},
		{ID: "4", Tags: tags("React")},
	}

	got := SkillStats(projects, 10)
	assert.Equal(t, []model.SkillStat{
		{TagName: "React", UsageCount: 3},
		{TagName: "Go", UsageCount: 2},
		{TagName: "TypeScript", UsageCount: 1},
		{TagName: "Docker", UsageCount: 1},
	}, got)
}

func TestSkillStats_DistinctPerProject(t *testing.T) {
	projects := []model.Project{
		{ID: "1", Tags: tags("Go", "Go", "Go")},
		{ID: "2", Tags: tags("Go")},
	}

	got := SkillStats(projects, 0)
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].UsageCount)
}

func TestSkillStats_SumEqualsDistinctPairs(t *testing.T) {
	projects := []model.Project{
		{Tags: tags("a", "b", "a")},
		{Tags: tags("b", "c")},
		{Tags: nil},
		{Tags: tags("c", "c", "d", "e")},
	}

	pairs := 0
	maxTags := 0
	for _, p := range projects {
		distinct := map[string]bool{}
		for _, t := range p.Tags {
			distinct[t.Name] = true
		}
		pairs += len(distinct)
		if len(p.Tags) > maxTags {
			maxTags = len(p.Tags)
		}
	}

	sum := 0
	for _, s := range SkillStats(projects, 100) {
		sum += s.UsageCount
	}
	assert.Equal(t, pairs, sum)
	assert.LessOrEqual(t, sum, len(projects)*maxTags)
}

func TestSkillStats_Limit(t *testing.T) {
	var projects []model.Project
	for i := 0; i < 15; i++ {
		projects = append(projects, model.Project{Tags: tags(string(rune('a' + i)))})
	}

	assert.Len(t, SkillStats(projects, 3), 3)
	assert.Len(t, SkillStats(projects, 0), DefaultSkillLimit)
	assert.Len(t, SkillStats(projects, -1), DefaultSkillLimit)
	assert.Equal(t, "a", SkillStats(projects, 3)[0].TagName)
}

func TestSkillStats_DoesNotMutateInput(t *testing.T) {
	projects := []model.Project{{Tags: tags("b", "a", "b")}}
	SkillStats(projects, 10)
	assert.Equal(t, tags("b", "a", "b"), projects[0].Tags)
}

func TestRoleStats(t *testing.T) {
	projects := []model.Project{
		{RoleNames: []string{"design", "implementation"}},
		{RoleNames: []string{"implementation", "implementation", "testing"}},
		{RoleNames: nil},
	}

	got := RoleStats(projects)
	assert.Equal(t, []model.RoleStat{
		{RoleName: "implementation", Count: 2},
		{RoleName: "design", Count: 1},
		{RoleName: "testing", Count: 1},
	}, got)
	for _, r := range got {
		assert.Positive(t, r.Count)
	}
}

func TestStats_EmptyInput(t *testing.T) {
	skills := SkillStats(nil, 10)
	roles := RoleStats([]model.Project{})

	assert.NotNil(t, skills)
	assert.Empty(t, skills)
	assert.NotNil(t, roles)
	assert.Empty(t, roles)
}
