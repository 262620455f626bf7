// Package theme provides the Lip Gloss color palette and reusable styles
// for the trainer TUI. It is a leaf package with no internal imports
// to avoid import cycles.
package theme

import "github.com/charmbracelet/lipgloss"

// Severity colors.
var (
	ColorLow      = lipgloss.Color("#22c55e")
	ColorMedium   = lipgloss.Color("#d97706")
	ColorHigh     = lipgloss.Color("#f97316")
	ColorCritical = lipgloss.Color("#dc2626")
	ColorDefault  = lipgloss.Color("#9ca3af")
)

// Feedback colors.
var (
	ColorCorrect   = lipgloss.Color("#16a34a")
	ColorIncorrect = lipgloss.Color("#dc2626")
	ColorPartial   = lipgloss.Color("#d97706")
)

// Chart colors.
var (
	ColorCPU         = lipgloss.Color("#3b82f6")
	ColorMemory      = lipgloss.Color("#a855f7")
	ColorConnections = lipgloss.Color("#06b6d4")
)

// Score bar thresholds.
var (
	ColorScoreLow  = lipgloss.Color("#dc2626") // <50%
	ColorScoreMid  = lipgloss.Color("#d97706") // 50-80%
	ColorScoreHigh = lipgloss.Color("#22c55e") // >=80%
)

// UI chrome colors.
var (
	ColorBorder  = lipgloss.Color("#4b5563")
	ColorDimmed  = lipgloss.Color("#6b7280")
	ColorBright  = lipgloss.Color("#f9fafb")
	ColorAccent  = lipgloss.Color("#7c3aed")
	ColorHealthy = lipgloss.Color("#22c55e")
	ColorWarning = lipgloss.Color("#d97706")
	ColorDanger  = lipgloss.Color("#dc2626")
)

// SeverityColor returns the color for an event severity.
func SeverityColor(severity string) lipgloss.Color {
	switch severity {
	case "low":
		return ColorLow
	case "medium":
		return ColorMedium
	case "high":
		return ColorHigh
	case "critical":
		return ColorCritical
	default:
		return ColorDefault
	}
}

// SeverityBadge returns a colored upper-case badge such as "[HIGH]".
func SeverityBadge(severity string) string {
	label := "[?]"
	switch severity {
	case "low":
		label = "[LOW]"
	case "medium":
		label = "[MED]"
	case "high":
		label = "[HIGH]"
	case "critical":
		label = "[CRIT]"
	}
	return lipgloss.NewStyle().Bold(true).Foreground(SeverityColor(severity)).Render(label)
}

// ScoreColor returns the color for a score fraction in [0, 1].
func ScoreColor(frac float64) lipgloss.Color {
	switch {
	case frac >= 0.8:
		return ColorScoreHigh
	case frac >= 0.5:
		return ColorScoreMid
	default:
		return ColorScoreLow
	}
}

// LabelColor returns the color for an option grade label.
func LabelColor(label string) lipgloss.Color {
	switch label {
	case "Optimal/Strong":
		return ColorCorrect
	case "Partial":
		return ColorPartial
	default:
		return ColorIncorrect
	}
}

// Reusable styles.
var (
	StyleBorder = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder)

	StyleHeader = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorBright)

	StyleTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorAccent)

	StyleDimmed = lipgloss.NewStyle().
		Foreground(ColorDimmed)

	StyleSelected = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorBright)

	StyleCorrect = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorCorrect)

	StyleIncorrect = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorIncorrect)
)

// Panel returns the shared double-bordered style used by overlays.
func Panel(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Width(width).
		Padding(1, 2).
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(ColorBorder)
}
