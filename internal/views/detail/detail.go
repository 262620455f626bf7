// Package detail renders the feedback detail overlay: the chosen option and
// every alternative ranked by score.
package detail

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/irsim/irsim/internal/sim"
	"github.com/irsim/irsim/internal/theme"
)

const (
	panelWidth = 72
	barWidth   = 10
	labelWidth = 14
)

var (
	stylePanel = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.ColorBorder).
			Padding(0, 1)

	styleLabel = lipgloss.NewStyle().
			Foreground(theme.ColorDimmed).
			Width(labelWidth)

	styleValue = lipgloss.NewStyle().
			Foreground(theme.ColorBright)

	styleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.ColorBright)

	styleFooter = lipgloss.NewStyle().
			Foreground(theme.ColorDimmed)

	styleSectionHeader = lipgloss.NewStyle().
				Bold(true).
				Foreground(theme.ColorDimmed)
)

// Model holds the state for the feedback detail overlay.
type Model struct {
	Detail *sim.FeedbackDetailView
	Scroll int
	Height int
}

// New creates a detail model for a resolved decision.
func New(d *sim.FeedbackDetailView) Model {
	return Model{Detail: d}
}

// ScrollDown moves the option list down one line.
func (m *Model) ScrollDown() { m.Scroll++ }

// ScrollUp moves the option list up one line.
func (m *Model) ScrollUp() { m.Scroll = max(m.Scroll-1, 0) }

// View renders the detail panel. Returns an empty string if nothing was
// resolved yet.
func (m Model) View() string {
	if m.Detail == nil {
		return ""
	}
	inner := m.renderInner(m.Detail)
	if m.Height > 0 {
		inner = clip(inner, m.Scroll, max(m.Height-4, 5))
	}
	return stylePanel.Width(panelWidth).Render(inner)
}

func (m Model) renderInner(d *sim.FeedbackDetailView) string {
	var b strings.Builder

	b.WriteString(styleTitle.Render("Decision Analysis") + "\n")
	b.WriteString(strings.Repeat("─", panelWidth-4) + "\n")

	if sel := d.Selected; sel != nil {
		b.WriteString(styleSectionHeader.Render("Your choice") + "\n")
		writeRow(&b, "Option", sel.Text)
		writeRow(&b, "Score", renderScore(d.AwardedScore, d.MaxScore, sel.Label))
		writeRow(&b, "Feedback", sel.Feedback)
		if sel.Explanation != "" {
			writeRow(&b, "Why", sel.Explanation)
		}
		b.WriteString("\n")
	}

	b.WriteString(styleSectionHeader.Render(fmt.Sprintf("All options (%d)", len(d.Options))) + "\n")
	for i, o := range d.Options {
		b.WriteString(renderOption(i+1, o, d.MaxScore) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(styleFooter.Render("[j/k] scroll  [esc] close"))
	return b.String()
}

func renderOption(rank int, o sim.OptionDetail, maxScore int) string {
	marker := "  "
	if o.Selected {
		marker = "▶ "
	}
	head := fmt.Sprintf("%s%d. %s", marker, rank, o.Text)
	if o.Selected {
		head = lipgloss.NewStyle().Bold(true).Foreground(theme.ColorBright).Render(head)
	}
	lines := []string{
		head,
		"     " + renderScore(o.Score, maxScore, o.Label),
		"     " + styleValue.Render(o.Feedback),
	}
	if o.Explanation != "" {
		lines = append(lines, "     "+theme.StyleDimmed.Render(o.Explanation))
	}
	return strings.Join(lines, "\n")
}

func renderScore(score, maxScore int, label string) string {
	color := theme.LabelColor(label)
	badge := lipgloss.NewStyle().Bold(true).Foreground(color).Render("[" + label + "]")
	frac := 0.0
	if maxScore > 0 {
		frac = float64(score) / float64(maxScore)
	}
	return renderBar(frac, barWidth, color) + fmt.Sprintf(" %d/%d ", score, maxScore) + badge
}

func writeRow(b *strings.Builder, label, value string) {
	value = lipgloss.NewStyle().Width(panelWidth - labelWidth - 4).Render(value)
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, styleLabel.Render(label+":"), styleValue.Render(value)) + "\n")
}

func renderBar(pct float64, width int, color lipgloss.Color) string {
	pct = max(0, min(pct, 1))
	filled := int(pct * float64(width))
	empty := width - filled
	bar := strings.Repeat("█", filled) + strings.Repeat("░", empty)
	return lipgloss.NewStyle().Foreground(color).Render(bar)
}

// clip returns at most height lines of s starting at offset.
func clip(s string, offset, height int) string {
	lines := strings.Split(s, "\n")
	offset = min(offset, max(len(lines)-height, 0))
	end := min(offset+height, len(lines))
	return strings.Join(lines[offset:end], "\n")
}
