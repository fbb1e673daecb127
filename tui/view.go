package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/robertmeta/techfolio/model"
	"github.com/robertmeta/techfolio/tagcolor"
	"github.com/robertmeta/techfolio/timeline"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7DCFFF"))
	subtleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#E5C07B"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F7768E"))
	projectMark   = lipgloss.NewStyle().Foreground(lipgloss.Color("#98C379")).Render("◆")
	articleMark   = lipgloss.NewStyle().Foreground(lipgloss.Color("#61AFEF")).Render("●")
)

// View renders the browser.
func (m Model) View() string {
	if m.err != nil {
		return errorStyle.Render("error: "+m.err.Error()) + "\n\n" + subtleStyle.Render("q to quit") + "\n"
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("techfolio"))
	if m.id.Demo() {
		b.WriteString(subtleStyle.Render("  demo"))
	} else {
		b.WriteString(subtleStyle.Render("  " + m.id.Profile.DisplayName))
	}
	b.WriteString("\n")
	b.WriteString(m.renderFilter())
	b.WriteString("\n\n")

	if len(m.view.Entries) == 0 {
		b.WriteString(subtleStyle.Render("  nothing matches"))
		b.WriteString("\n")
	}

	start, end := m.visibleRange()
	for i := start; i < end; i++ {
		b.WriteString(m.renderEntry(m.view.Entries[i], i == m.selected))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	b.WriteString("\n")
	return b.String()
}

// visibleRange scrolls the list so the selection stays on screen.
func (m Model) visibleRange() (int, int) {
	n := len(m.view.Entries)
	rows := m.height - 6
	if rows <= 0 || rows >= n {
		return 0, n
	}
	start := m.selected - rows/2
	if start < 0 {
		start = 0
	}
	if start+rows > n {
		start = n - rows
	}
	return start, start + rows
}

func (m Model) renderFilter() string {
	f := m.browser.Filter()
	k := m.browser.Kinds()

	if m.mode == modeSearch {
		return "/" + m.input.View()
	}

	var parts []string
	if strings.TrimSpace(f.Text) != "" {
		parts = append(parts, fmt.Sprintf("text:%q", f.Text))
	}
	for _, t := range f.Tags {
		parts = append(parts, badge(t, m.colors))
	}
	if f.Role != "" {
		parts = append(parts, "role:"+f.Role)
	}
	if !k.Project {
		parts = append(parts, "-projects")
	}
	if !k.Article {
		parts = append(parts, "-articles")
	}
	if len(parts) == 0 {
		return subtleStyle.Render("no filters")
	}
	return strings.Join(parts, " ")
}

func (m Model) renderEntry(e timeline.Entry, selected bool) string {
	mark := articleMark
	if e.Kind == model.KindProject {
		mark = projectMark
	}

	date := "       "
	if e.Dated {
		date = e.SortDate.Format("2006-01")
	}

	title := e.Title()
	if e.Project != nil && e.Project.IsOngoing {
		title += subtleStyle.Render(" (ongoing)")
	}
	if selected {
		title = selectedStyle.Render("> " + title)
	} else {
		title = "  " + title
	}

	var badges []string
	for _, name := range e.TagNames() {
		badges = append(badges, badge(name, m.colors))
	}

	line := fmt.Sprintf("%s %s %s", mark, subtleStyle.Render(date), title)
	if len(badges) > 0 {
		line += " " + strings.Join(badges, " ")
	}
	return line
}

// badge renders a tag on its catalog color.
func badge(name string, colors *tagcolor.Resolver) string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(lipgloss.Color(colors.ColorFor(name))).
		Padding(0, 1).
		Render(name)
}

func (m Model) renderStatus() string {
	v := m.view
	status := fmt.Sprintf("%d of %d shown · %d projects · %d articles",
		len(v.Entries), v.TotalFilteredCount, v.TotalProjectCount, v.TotalArticleCount)
	if v.HasMore {
		status += " · scroll for more"
	}

	switch {
	case v.ArticlesLoading:
		status += " · loading articles…"
	case v.ArticleError != "":
		status += " · " + errorStyle.Render("articles: "+v.ArticleError)
	case !v.ArticlesConnected:
		status += " · no article source"
	}

	help := "j/k move · / search · t tag · r role · p/a kinds · c clear · R refresh · q quit"
	return subtleStyle.Render(status) + "\n" + subtleStyle.Render(help)
}
