// Package debug provides a scrollable overlay listing API calls, navigation
// and errors recorded during the run.
package debug

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/irsim/irsim/internal/format"
	"github.com/irsim/irsim/internal/theme"
)

const maxEntries = 200

// Entry kinds.
const (
	KindAPI     = "api"
	KindErr     = "err"
	KindNav     = "nav"
	KindSession = "sess"
)

// Entry is a single event log line.
type Entry struct {
	Time    time.Time
	Kind    string
	Message string
}

// Model holds debug log state.
type Model struct {
	Entries []Entry
	Offset  int // scroll offset (from bottom)
	now     func() time.Time
}

// New creates an empty debug model.
func New() Model {
	return Model{now: time.Now}
}

// Add appends a log entry and caps the buffer.
func (m *Model) Add(kind, message string) {
	now := time.Now
	if m.now != nil {
		now = m.now
	}
	m.Entries = append(m.Entries, Entry{
		Time:    now(),
		Kind:    kind,
		Message: format.Sanitize(message),
	})
	if len(m.Entries) > maxEntries {
		m.Entries = m.Entries[len(m.Entries)-maxEntries:]
	}
	// Reset scroll to bottom on new entry.
	m.Offset = 0
}

// Addf is Add with printf-style formatting.
func (m *Model) Addf(kind, msg string, args ...any) {
	m.Add(kind, fmt.Sprintf(msg, args...))
}

// ScrollUp moves the viewport up.
func (m *Model) ScrollUp(n int) {
	m.Offset = min(m.Offset+n, max(len(m.Entries)-1, 0))
}

// ScrollDown moves the viewport down.
func (m *Model) ScrollDown(n int) {
	m.Offset = max(m.Offset-n, 0)
}

// View renders the debug log as an overlay panel.
func (m Model) View(width, height int) string {
	innerW := max(width-4, 20)
	visibleLines := max(height-6, 3)

	title := theme.StyleHeader.Render(" DEBUG LOG ")
	help := theme.StyleDimmed.Render(fmt.Sprintf("j/k:scroll  esc:close  %d entries", len(m.Entries)))

	if len(m.Entries) == 0 {
		body := theme.StyleDimmed.Render("  No events recorded yet.")
		content := lipgloss.JoinVertical(lipgloss.Left, title, "", body, "", help)
		return theme.Panel(innerW).Render(content)
	}

	end := max(len(m.Entries)-m.Offset, 0)
	start := max(end-visibleLines, 0)

	msgW := max(innerW-20, 10)
	lines := make([]string, 0, end-start)
	for _, e := range m.Entries[start:end] {
		tsStr := theme.StyleDimmed.Render(e.Time.Format("15:04:05.000"))
		kindStr := lipgloss.NewStyle().Foreground(kindToColor(e.Kind)).Width(4).Render(e.Kind)
		lines = append(lines, fmt.Sprintf("%s %s %s", tsStr, kindStr, format.Truncate(e.Message, msgW)))
	}

	body := strings.Join(lines, "\n")
	scrollIndicator := ""
	if m.Offset > 0 {
		scrollIndicator = theme.StyleDimmed.Render(fmt.Sprintf(" ↓ %d more", m.Offset))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, title, body, scrollIndicator, help)
	return theme.Panel(innerW).Render(content)
}

func kindToColor(kind string) lipgloss.Color {
	switch kind {
	case KindAPI:
		return theme.ColorCPU
	case KindErr:
		return theme.ColorDanger
	case KindNav:
		return theme.ColorAccent
	case KindSession:
		return theme.ColorWarning
	default:
		return theme.ColorDimmed
	}
}
