// Package status renders the top bar: API reachability, the active scenario
// and an animated score bar.
package status

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"
	"github.com/irsim/irsim/internal/theme"
)

const (
	fps      = 30
	barWidth = 20
	settle   = 0.001
)

// FrameMsg advances the score bar animation.
type FrameMsg struct{}

// Model holds the status bar state.
type Model struct {
	Reachable bool
	Title     string
	Busy      string // spinner frame while a request is in flight
	Width     int

	hasScore  bool
	score     int
	maxScore  int
	target    float64
	pos       float64
	vel       float64
	spring    harmonica.Spring
	animating bool
}

// New creates a status bar model.
func New() Model {
	return Model{
		Reachable: true,
		spring:    harmonica.NewSpring(harmonica.FPS(fps), 6.0, 1.0),
	}
}

// SetScore updates the score and starts animating the bar toward the new
// fraction. The returned command drives the animation.
func (m *Model) SetScore(score, maxScore int) tea.Cmd {
	m.hasScore = true
	m.score = score
	m.maxScore = maxScore
	m.target = 0
	if maxScore > 0 {
		m.target = math.Max(0, math.Min(1, float64(score)/float64(maxScore)))
	}
	if m.animating {
		return nil
	}
	m.animating = true
	return frame()
}

// ClearScore hides the score bar.
func (m *Model) ClearScore() {
	m.hasScore = false
	m.score, m.maxScore = 0, 0
	m.target, m.pos, m.vel = 0, 0, 0
	m.animating = false
}

// Fraction returns the currently drawn fill fraction.
func (m Model) Fraction() float64 { return m.pos }

// Update advances the animation on FrameMsg.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if _, ok := msg.(FrameMsg); !ok || !m.animating {
		return m, nil
	}
	m.pos, m.vel = m.spring.Update(m.pos, m.vel, m.target)
	if math.Abs(m.pos-m.target) < settle && math.Abs(m.vel) < settle {
		m.pos, m.vel = m.target, 0
		m.animating = false
		return m, nil
	}
	return m, frame()
}

func frame() tea.Cmd {
	return tea.Tick(time.Second/fps, func(time.Time) tea.Msg { return FrameMsg{} })
}

// View renders the status bar.
func (m Model) View() string {
	width := max(m.Width, 40)

	var connStr string
	if m.Reachable {
		connStr = lipgloss.NewStyle().Foreground(theme.ColorHealthy).Render("● API")
	} else {
		connStr = lipgloss.NewStyle().Foreground(theme.ColorDanger).Render("○ API unreachable")
	}

	sep := lipgloss.NewStyle().Foreground(theme.ColorBorder).Render(" | ")
	content := connStr
	if m.Title != "" {
		content += sep + theme.StyleHeader.Render(m.Title)
	}
	if m.hasScore {
		content += sep + m.scoreBar()
	}
	if m.Busy != "" {
		content += sep + m.Busy
	}

	return lipgloss.NewStyle().
		Width(width).
		Padding(0, 1).
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(theme.ColorBorder).
		Render(content)
}

func (m Model) scoreBar() string {
	filled := int(math.Round(math.Max(0, math.Min(1, m.pos)) * barWidth))
	color := theme.ScoreColor(m.target)
	bar := lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", filled))
	bar += lipgloss.NewStyle().Foreground(theme.ColorBorder).Render(strings.Repeat("░", barWidth-filled))
	label := fmt.Sprintf(" Score: %d/%d (%.0f%%)", m.score, m.maxScore, m.target*100)
	return bar + lipgloss.NewStyle().Foreground(color).Render(label)
}
