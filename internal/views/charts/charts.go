// Package charts renders the metric series as unicode sparklines.
package charts

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/irsim/irsim/internal/sim"
	"github.com/irsim/irsim/internal/theme"
)

var blocks = []rune("▁▂▃▄▅▆▇█")

// Scale bounds a sparkline. A zero Max scales to the data.
type Scale struct {
	Min, Max float64
}

// Percent is the fixed 0-100 scale used for CPU and memory.
var Percent = Scale{Min: 0, Max: 100}

// Sparkline draws the last width values. Missing positions on the left are
// padded with spaces so the newest sample always sits at the right edge.
func Sparkline(values []float64, width int, sc Scale) string {
	if width < 1 {
		return ""
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}
	if len(values) == 0 {
		return strings.Repeat(" ", width)
	}

	lo, hi := sc.Min, sc.Max
	if hi <= lo {
		lo, hi = values[0], values[0]
		for _, v := range values[1:] {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
		lo = math.Min(lo, 0)
	}

	var b strings.Builder
	b.Grow(width * 3)
	b.WriteString(strings.Repeat(" ", width-len(values)))
	for _, v := range values {
		pos := 0
		if hi > lo {
			r := (v - lo) / (hi - lo)
			pos = int(math.Round(r * float64(len(blocks)-1)))
		}
		pos = max(0, min(pos, len(blocks)-1))
		b.WriteRune(blocks[pos])
	}
	return b.String()
}

// Model renders the chart panel beside the event feed.
type Model struct {
	Width  int
	Charts []sim.ChartView
}

// New creates an empty chart panel.
func New() Model { return Model{} }

// View renders one labelled sparkline per series.
func (m Model) View() string {
	width := m.Width
	if width < 24 {
		width = 24
	}
	sparkW := width - 4

	var rows []string
	for i, c := range m.Charts {
		sc := Percent
		if !strings.HasSuffix(c.Label, "(%)") {
			sc = Scale{}
		}
		label := lipgloss.JoinHorizontal(lipgloss.Top,
			theme.StyleDimmed.Render(c.Label+" "),
			theme.StyleHeader.Render(c.Latest),
		)
		line := lipgloss.NewStyle().
			Foreground(seriesColor(i)).
			Render(Sparkline(c.Values, sparkW, sc))
		rows = append(rows, label, line, "")
	}
	if len(rows) == 0 {
		rows = append(rows, theme.StyleDimmed.Render("No metrics yet"))
	}
	return theme.StyleBorder.
		Width(width - 2).
		Padding(0, 1).
		Render(strings.TrimRight(lipgloss.JoinVertical(lipgloss.Left, rows...), "\n"))
}

func seriesColor(i int) lipgloss.Color {
	switch i {
	case 0:
		return theme.ColorCPU
	case 1:
		return theme.ColorMemory
	default:
		return theme.ColorConnections
	}
}
