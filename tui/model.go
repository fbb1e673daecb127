// Package tui is an interactive terminal browser for the techfolio
// timeline.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/robertmeta/techfolio/model"
	"github.com/robertmeta/techfolio/portfolio"
	"github.com/robertmeta/techfolio/tagcolor"
	"github.com/robertmeta/techfolio/timeline"
)

// nearEndRows is how close to the last visible entry the selection must be
// to request the next page.
const nearEndRows = 3

// Source is what the browser reads. *portfolio.Service satisfies it.
type Source interface {
	Projects(ctx context.Context, id portfolio.Identity) ([]model.Project, error)
	Articles(ctx context.Context, id portfolio.Identity) (timeline.Articles, error)
	Colors(ctx context.Context, id portfolio.Identity) (*tagcolor.Resolver, error)
	Roles(ctx context.Context, id portfolio.Identity) ([]string, error)
	Refresh(ctx context.Context, id portfolio.Identity) error
}

type mode int

const (
	modeNormal mode = iota
	modeSearch
)

// loadedMsg carries a full reload of the inputs.
type loadedMsg struct {
	projects []model.Project
	articles timeline.Articles
	colors   *tagcolor.Resolver
	roles    []string
	err      error
}

// articlesMsg carries the article snapshot after a refresh.
type articlesMsg struct {
	articles timeline.Articles
}

// Model is the bubbletea model of the browser.
type Model struct {
	ctx  context.Context
	src  Source
	id   portfolio.Identity
	keys KeyMap

	browser  *timeline.Browser
	projects []model.Project
	articles timeline.Articles
	colors   *tagcolor.Resolver
	roles    []string
	view     timeline.View

	selected int
	mode     mode
	input    textinput.Model
	width    int
	height   int
	err      error
}

// New creates a browser for the identity.
func New(ctx context.Context, src Source, id portfolio.Identity, pageSize int) Model {
	ti := textinput.New()
	ti.Placeholder = "Search titles and summaries..."
	ti.CharLimit = 128

	return Model{
		ctx:     ctx,
		src:     src,
		id:      id,
		keys:    DefaultKeyMap(),
		browser: timeline.NewBrowser(pageSize),
		input:   ti,
	}
}

// Run starts the browser in the alternate screen and blocks until it quits.
func Run(ctx context.Context, src Source, id portfolio.Identity, pageSize int) error {
	_, err := tea.NewProgram(New(ctx, src, id, pageSize), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

// Init loads the inputs.
func (m Model) Init() tea.Cmd {
	return m.load
}

func (m Model) load() tea.Msg {
	var msg loadedMsg
	msg.projects, msg.err = m.src.Projects(m.ctx, m.id)
	if msg.err != nil {
		return msg
	}
	msg.articles, msg.err = m.src.Articles(m.ctx, m.id)
	if msg.err != nil {
		return msg
	}
	msg.colors, msg.err = m.src.Colors(m.ctx, m.id)
	if msg.err != nil {
		return msg
	}
	msg.roles, msg.err = m.src.Roles(m.ctx, m.id)
	return msg
}

func (m Model) refresh() tea.Msg {
	// The fetch error is published in the snapshot.
	_ = m.src.Refresh(m.ctx, m.id)
	articles, err := m.src.Articles(m.ctx, m.id)
	if err != nil {
		return loadedMsg{err: err}
	}
	return articlesMsg{articles: articles}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.projects = msg.projects
		m.articles = msg.articles
		m.colors = msg.colors
		m.roles = msg.roles
		m.recompute()
		return m, nil

	case articlesMsg:
		m.articles = msg.articles
		m.recompute()
		return m, nil

	case tea.KeyMsg:
		if m.mode == modeSearch {
			return m.handleSearchMode(msg)
		}
		return m.handleNormalMode(msg)
	}
	return m, nil
}

func (m Model) handleNormalMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.selected > 0 {
			m.selected--
		}
		m.scrolled()

	case key.Matches(msg, m.keys.Down):
		if m.selected < len(m.view.Entries)-1 {
			m.selected++
		}
		m.scrolled()

	case key.Matches(msg, m.keys.Search):
		m.mode = modeSearch
		m.input.SetValue(m.browser.Filter().Text)
		m.input.CursorEnd()
		return m, m.input.Focus()

	case key.Matches(msg, m.keys.Tag):
		if e, ok := m.current(); ok {
			if names := e.TagNames(); len(names) > 0 {
				m.browser.ToggleTag(names[0])
				m.refiltered()
			}
		}

	case key.Matches(msg, m.keys.Role):
		m.browser.SetRole(nextRole(m.roles, m.browser.Filter().Role))
		m.refiltered()

	case key.Matches(msg, m.keys.Projects):
		k := m.browser.Kinds()
		k.Project = !k.Project
		m.browser.SetKinds(k)
		m.refiltered()

	case key.Matches(msg, m.keys.Articles):
		k := m.browser.Kinds()
		k.Article = !k.Article
		m.browser.SetKinds(k)
		m.refiltered()

	case key.Matches(msg, m.keys.Clear):
		m.browser.SetFilter(timeline.Filter{})
		m.browser.SetKinds(timeline.AllKinds())
		m.refiltered()

	case key.Matches(msg, m.keys.Refresh):
		if m.articles.Loading {
			return m, nil
		}
		m.articles.Loading = true
		m.recompute()
		return m, m.refresh
	}
	return m, nil
}

func (m Model) handleSearchMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		m.mode = modeNormal
		m.input.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)

	// Filter as the user types.
	m.browser.SetText(m.input.Value())
	m.refiltered()
	return m, cmd
}

// recompute rebuilds the visible window and keeps the selection in range.
func (m *Model) recompute() {
	m.view = m.browser.Window(m.projects, m.articles)
	if m.selected >= len(m.view.Entries) {
		m.selected = max(len(m.view.Entries)-1, 0)
	}
}

// refiltered is recompute after a filter change, which rewinds the window
// to its first page.
func (m *Model) refiltered() {
	m.selected = 0
	m.recompute()
}

// scrolled feeds the near-end signal to the cursor after a selection move.
func (m *Model) scrolled() {
	nearEnd := len(m.view.Entries)-1-m.selected < nearEndRows
	if m.browser.Trigger(nearEnd, m.articles.Loading) {
		m.recompute()
	}
}

func (m Model) current() (timeline.Entry, bool) {
	if m.selected < 0 || m.selected >= len(m.view.Entries) {
		return timeline.Entry{}, false
	}
	return m.view.Entries[m.selected], true
}

// nextRole cycles "" -> roles[0] -> ... -> roles[n-1] -> "".
func nextRole(roles []string, current string) string {
	if current == "" {
		if len(roles) == 0 {
			return ""
		}
		return roles[0]
	}
	for i, r := range roles {
		if r == current && i+1 < len(roles) {
			return roles[i+1]
		}
	}
	return ""
}
