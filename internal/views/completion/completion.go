// Package completion renders the end-of-run summary: a stats row and the
// recommendations grouped by category.
package completion

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/irsim/irsim/internal/content"
	"github.com/irsim/irsim/internal/format"
	"github.com/irsim/irsim/internal/logger"
	"github.com/irsim/irsim/internal/sim"
	"github.com/irsim/irsim/internal/theme"
)

// Model holds the completion screen state.
type Model struct {
	Title    string
	summary  *sim.SummaryView
	renderer *content.Renderer
	vp       viewport.Model
	width    int
	height   int
}

// New creates an empty completion screen.
func New(r *content.Renderer) Model {
	return Model{renderer: r, vp: viewport.New(0, 0)}
}

// SetSummary replaces the summary shown.
func (m *Model) SetSummary(title string, s *sim.SummaryView) {
	m.Title = title
	m.summary = s
	m.render()
	m.vp.GotoTop()
}

// SetSize updates the layout.
func (m *Model) SetSize(width, height int) {
	m.width, m.height = width, height
	m.vp.Width = max(width-6, 30)
	m.vp.Height = max(height-12, 5)
	m.render()
}

func (m *Model) render() {
	if m.summary == nil {
		m.vp.SetContent("")
		return
	}
	md := Markdown(m.summary)
	if m.renderer == nil {
		m.vp.SetContent(md)
		return
	}
	out, err := m.renderer.Render(md, m.vp.Width)
	if err != nil {
		logger.ComponentLogger("completion").Warn("markdown render failed", "error", err)
	}
	m.vp.SetContent(out)
}

// Markdown builds the recommendations document.
func Markdown(s *sim.SummaryView) string {
	var b strings.Builder
	b.WriteString("## Recommendations\n\n")
	if len(s.Categories) == 0 {
		b.WriteString(s.DefaultMessage + "\n")
		return b.String()
	}
	for _, c := range s.Categories {
		fmt.Fprintf(&b, "### %s\n\n", format.EscapeMarkdown(c.Title))
		for _, r := range c.Items {
			line := "- **" + format.EscapeMarkdown(r.Title) + "**"
			if r.Priority != "" {
				line += " _(" + format.EscapeMarkdown(r.Priority) + " priority)_"
			}
			if r.Description != "" {
				line += ": " + format.EscapeMarkdown(r.Description)
			}
			b.WriteString(line + "\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}

// Update scrolls the recommendations.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return m, cmd
}

// View renders the stats row and recommendations.
func (m Model) View() string {
	width := max(m.width, 40)
	header := theme.StyleTitle.Render("Scenario Complete")
	if m.Title != "" {
		header += theme.StyleDimmed.Render("  " + m.Title)
	}

	if m.summary == nil {
		body := theme.StyleDimmed.Render("  Calculating results...")
		return lipgloss.JoinVertical(lipgloss.Left, header, "", body)
	}

	help := theme.StyleDimmed.Render("  s: back to scenario  r: restart  m: menu  j/k: scroll  q: quit")
	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		m.renderStatsRow(width),
		theme.StyleBorder.Width(m.vp.Width).Render(m.vp.View()),
		help,
	)
}

func (m Model) renderStatsRow(width int) string {
	s := m.summary
	frac := float64(s.Percentage) / 100
	color := theme.ScoreColor(frac)
	statStyle := lipgloss.NewStyle().Padding(0, 1)

	stats := []string{
		statStyle.Foreground(theme.ColorBright).Render(fmt.Sprintf("Score: %d/%d", s.Score, s.MaxScore)),
		statStyle.Foreground(color).Bold(true).Render(fmt.Sprintf("%d%%", s.Percentage)),
		statStyle.Render(renderBar(frac, 24, color)),
		statStyle.Foreground(color).Render(grade(s.Percentage)),
	}
	content := strings.Join(stats, lipgloss.NewStyle().Foreground(theme.ColorBorder).Render(" | "))

	return lipgloss.NewStyle().
		Width(width-2).
		Padding(0, 1).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.ColorBorder).
		Render(content)
}

func grade(pct int) string {
	switch {
	case pct >= 80:
		return "Excellent response"
	case pct >= 50:
		return "Room to improve"
	default:
		return "Review the playbook"
	}
}

func renderBar(pct float64, width int, color lipgloss.Color) string {
	filled := max(0, min(int(pct*float64(width)), width))
	bar := lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", filled))
	return bar + lipgloss.NewStyle().Foreground(theme.ColorBorder).Render(strings.Repeat("░", width-filled))
}
