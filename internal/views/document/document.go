// Package document shows a rendered markdown document in a scrollable
// viewport. It backs the learning center screen and the rubric and
// background modals.
package document

import (
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/irsim/irsim/internal/content"
	"github.com/irsim/irsim/internal/logger"
	"github.com/irsim/irsim/internal/theme"
)

// Model is a titled markdown viewer.
type Model struct {
	Title    string
	Help     string
	markdown string
	renderer *content.Renderer
	vp       viewport.Model
	width    int
	height   int
}

// New creates a viewer that renders with r.
func New(title, help string, r *content.Renderer) Model {
	return Model{
		Title:    title,
		Help:     help,
		renderer: r,
		vp:       viewport.New(0, 0),
	}
}

// SetMarkdown replaces the document and scrolls to the top.
func (m *Model) SetMarkdown(md string) {
	m.markdown = md
	m.render()
	m.vp.GotoTop()
}

// Markdown returns the raw document.
func (m Model) Markdown() string { return m.markdown }

// SetSize updates the rendering area and re-wraps the document.
func (m *Model) SetSize(width, height int) {
	if width == m.width && height == m.height {
		return
	}
	m.width, m.height = width, height
	m.vp.Width = max(width-6, 20)
	m.vp.Height = max(height-6, 3)
	m.render()
}

func (m *Model) render() {
	if m.renderer == nil {
		m.vp.SetContent(m.markdown)
		return
	}
	out, err := m.renderer.Render(m.markdown, m.vp.Width)
	if err != nil {
		logger.ComponentLogger("document").Warn("markdown render failed", "title", m.Title, "error", err)
	}
	m.vp.SetContent(out)
}

// Update forwards scrolling keys and mouse events to the viewport.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return m, cmd
}

// View renders the document inside a bordered panel.
func (m Model) View() string {
	title := theme.StyleTitle.Render(m.Title)
	help := theme.StyleDimmed.Render(m.Help)
	body := lipgloss.JoinVertical(lipgloss.Left, title, "", m.vp.View(), "", help)
	return theme.StyleBorder.Padding(0, 1).Render(body)
}
