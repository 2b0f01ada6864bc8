// Package tui is a read-only terminal browser over the persisted weekly
// bundles: week list, article list, article detail.
package tui

import (
	"fmt"
	"strings"

	"newsweave/aggregate"
	"newsweave/types"

	tea "github.com/charmbracelet/bubbletea"
)

type view int

const (
	viewWeeks view = iota
	viewArticles
	viewDetail
)

// Model is the browser state machine.
type Model struct {
	dataDir string

	view    view
	weeks   []aggregate.WeekInfo
	bundle  *types.WeeklyBundle
	cursor  int
	article int
	width   int
	err     error
}

func New(dataDir string) Model {
	return Model{
		dataDir: dataDir,
		weeks:   aggregate.ListWeeks(dataDir),
		width:   80,
	}
}

// Run starts the browser in the alternate screen.
func Run(dataDir string) error {
	_, err := tea.NewProgram(New(dataDir), tea.WithAltScreen()).Run()
	return err
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			m.moveCursor(-1)
		case "down", "j":
			m.moveCursor(1)
		case "enter":
			return m.enter(), nil
		case "esc":
			return m.back(), nil
		}
	}
	return m, nil
}

func (m *Model) moveCursor(delta int) {
	limit := 0
	switch m.view {
	case viewWeeks:
		limit = len(m.weeks)
	case viewArticles:
		limit = m.articleCount()
	}
	if limit == 0 {
		return
	}
	pos := m.cursorFor(m.view) + delta
	if pos < 0 {
		pos = 0
	}
	if pos > limit-1 {
		pos = limit - 1
	}
	if m.view == viewArticles {
		m.article = pos
	} else {
		m.cursor = pos
	}
}

func (m Model) enter() Model {
	switch m.view {
	case viewWeeks:
		if len(m.weeks) == 0 {
			return m
		}
		bundle, err := aggregate.LoadBundle(m.dataDir, m.weeks[m.cursor].Week)
		if err != nil {
			m.err = err
			return m
		}
		m.bundle, m.err = bundle, nil
		m.article = 0
		m.view = viewArticles
	case viewArticles:
		if m.articleCount() > 0 {
			m.view = viewDetail
		}
	}
	return m
}

func (m Model) back() Model {
	switch m.view {
	case viewDetail:
		m.view = viewArticles
	case viewArticles:
		m.view = viewWeeks
	}
	return m
}

func (m Model) articleCount() int {
	if m.bundle == nil {
		return 0
	}
	return len(m.bundle.Articles)
}

func (m Model) cursorFor(v view) int {
	if v == viewArticles {
		return m.article
	}
	return m.cursor
}

func (m Model) View() string {
	var b strings.Builder

	switch m.view {
	case viewWeeks:
		b.WriteString(titleStyle.Render("Weekly AI News"))
		b.WriteString("\n")
		if len(m.weeks) == 0 {
			b.WriteString(dimStyle.Render("No weekly bundles found. Run the pipeline first."))
			b.WriteString("\n")
		}
		for i, wk := range m.weeks {
			line := fmt.Sprintf("%s  %d articles  (%s)", wk.Week, wk.ArticleCount, strings.Join(wk.Sources, ", "))
			if i == m.cursor {
				line = selectedStyle.Render(line)
			}
			b.WriteString(line + "\n")
		}
		b.WriteString(dimStyle.Render("\n↑/↓ move · enter open · q quit"))

	case viewArticles:
		b.WriteString(titleStyle.Render("Week " + m.bundle.Week))
		b.WriteString("\n")
		for i, a := range m.bundle.Articles {
			line := fmt.Sprintf("%s  %s", sourceStyle.Render("["+a.Source+"]"), truncate(a.Title, m.width-12))
			if i == m.article {
				line = selectedStyle.Render(fmt.Sprintf("[%s]  %s", a.Source, truncate(a.Title, m.width-12)))
			}
			b.WriteString(line + "\n")
		}
		b.WriteString(dimStyle.Render("\n↑/↓ move · enter detail · esc back · q quit"))

	case viewDetail:
		a := m.bundle.Articles[m.article]
		body := fmt.Sprintf("%s\n\n%s\n\n%s\n%s",
			titleStyle.Render(a.Title),
			a.Summary,
			dimStyle.Render(a.Date),
			dimStyle.Render(a.Link))
		b.WriteString(detailStyle.Width(min(m.width-4, 100)).Render(body))
		b.WriteString(dimStyle.Render("\nesc back · q quit"))
	}

	if m.err != nil {
		b.WriteString("\n" + errorStyle.Render(m.err.Error()))
	}
	return b.String()
}

func truncate(s string, limit int) string {
	if limit < 10 {
		limit = 10
	}
	if len(s) <= limit {
		return s
	}
	return s[:limit-1] + "…"
}
