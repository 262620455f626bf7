// Package simulation renders a running scenario: the sub-scenario tabs, the
// event feed, the metric charts and the decision or feedback panel.
package simulation

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/irsim/irsim/internal/sim"
	"github.com/irsim/irsim/internal/theme"
	"github.com/irsim/irsim/internal/views/charts"
)

const chartWidth = 34

// KeyMap holds the bindings the simulation view handles itself.
type KeyMap struct {
	Up   key.Binding
	Down key.Binding
}

// DefaultKeyMap returns the default simulation key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "prev option / scroll"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "next option / scroll"),
		),
	}
}

// Model is the simulation screen.
type Model struct {
	keys   KeyMap
	vm     sim.ViewModel
	feed   viewport.Model
	charts charts.Model

	tabs        []string
	activeTab   int
	description string

	optCursor  int
	decisionID string
	rendered   int // events written to the feed

	Spinner string
	width   int
	height  int
}

// New creates an empty simulation screen.
func New() Model {
	return Model{
		keys:   DefaultKeyMap(),
		feed:   viewport.New(0, 0),
		charts: charts.New(),
	}
}

// SetSize updates the layout.
func (m *Model) SetSize(width, height int) {
	m.width, m.height = width, height
	m.charts.Width = chartWidth
	m.feed.Width = max(width-chartWidth-4, 30)
	m.feed.Height = max(height-m.chromeHeight(), 5)
	m.rendered = -1
	m.refreshFeed()
}

// chromeHeight is the number of rows used by everything except the feed.
func (m Model) chromeHeight() int {
	h := 8 // status bar, title, help, borders
	if len(m.tabs) > 0 {
		h += 3
	}
	if m.vm.Decision != nil {
		h += 4 + len(m.vm.Decision.Options)
	} else if m.vm.Feedback != nil {
		h += 6
	}
	return h
}

// SetTabs sets the sub-scenario strip. An empty label list hides it.
func (m *Model) SetTabs(labels []string, active int, description string) {
	m.tabs = labels
	m.activeTab = active
	m.description = description
}

// Reset clears everything tied to the previous run.
func (m *Model) Reset() {
	m.vm = sim.ViewModel{}
	m.optCursor = 0
	m.decisionID = ""
	m.rendered = 0
	m.feed.SetContent("")
	m.feed.GotoTop()
	m.charts.Charts = nil
}

// SetViewModel swaps in a fresh projection of the session.
func (m *Model) SetViewModel(vm sim.ViewModel) {
	if vm.SessionID != m.vm.SessionID {
		m.rendered = -1
	}
	m.vm = vm
	m.charts.Charts = vm.Charts
	switch {
	case vm.Decision == nil:
		m.decisionID = ""
		m.optCursor = 0
	case vm.Decision.ID != m.decisionID:
		m.decisionID = vm.Decision.ID
		m.optCursor = 0
	}
	m.feed.Height = max(m.height-m.chromeHeight(), 5)
	m.refreshFeed()
}

// ViewModel returns the current projection.
func (m Model) ViewModel() sim.ViewModel { return m.vm }

func (m *Model) refreshFeed() {
	if len(m.vm.Events) == m.rendered {
		return
	}
	atBottom := m.feed.AtBottom() || m.rendered <= 0
	m.rendered = len(m.vm.Events)
	m.feed.SetContent(renderEvents(m.vm.Events, m.feed.Width))
	if atBottom {
		m.feed.GotoBottom()
	}
}

// SelectedOption returns the option under the cursor.
func (m Model) SelectedOption() (string, bool) {
	return m.OptionAt(m.optCursor)
}

// OptionAt returns the id of the i-th option of the shown decision.
func (m Model) OptionAt(i int) (string, bool) {
	d := m.vm.Decision
	if d == nil || i < 0 || i >= len(d.Options) {
		return "", false
	}
	return d.Options[i].ID, true
}

// Update moves the option cursor while a decision is shown and scrolls the
// feed otherwise.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && m.vm.Decision != nil && !m.vm.Decision.Submitting {
		n := len(m.vm.Decision.Options)
		switch {
		case n == 0:
		case key.Matches(k, m.keys.Up):
			m.optCursor = (m.optCursor - 1 + n) % n
			return m, nil
		case key.Matches(k, m.keys.Down):
			m.optCursor = (m.optCursor + 1) % n
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.feed, cmd = m.feed.Update(msg)
	return m, cmd
}

// View renders the screen.
func (m Model) View() string {
	var sections []string

	sections = append(sections, theme.StyleTitle.Render(m.vm.Title))
	if len(m.tabs) > 0 {
		sections = append(sections, m.renderTabs())
		if m.description != "" {
			sections = append(sections, theme.StyleDimmed.Width(max(m.width-4, 20)).Render(m.description))
		}
	}

	feed := theme.StyleBorder.Width(m.feed.Width).Render(m.feed.View())
	if len(m.vm.Events) == 0 {
		placeholder := theme.StyleDimmed.Render("Waiting for events...")
		feed = theme.StyleBorder.Width(m.feed.Width).Height(m.feed.Height).Render(placeholder)
	}
	sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Top, feed, m.charts.View()))

	switch {
	case m.vm.Decision != nil:
		sections = append(sections, m.renderDecision())
	case m.vm.Feedback != nil:
		sections = append(sections, m.renderFeedback())
	}

	sections = append(sections, theme.StyleDimmed.Render(m.helpLine()))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderTabs() string {
	var parts []string
	for i, label := range m.tabs {
		style := lipgloss.NewStyle().Padding(0, 1).Foreground(theme.ColorDimmed)
		if i == m.activeTab {
			style = style.Bold(true).Foreground(theme.ColorBright).Underline(true)
		}
		parts = append(parts, style.Render(fmt.Sprintf("%d %s", i+1, label)))
	}
	sep := lipgloss.NewStyle().Foreground(theme.ColorBorder).Render("│")
	return strings.Join(parts, sep)
}

func (m Model) renderDecision() string {
	d := m.vm.Decision
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWarning).Render("⚠ Decision required") + "\n")
	b.WriteString(lipgloss.NewStyle().Width(max(m.width-8, 20)).Render(d.Description) + "\n\n")
	for i, o := range d.Options {
		prefix := "  "
		style := lipgloss.NewStyle().Foreground(theme.ColorDefault)
		if i == m.optCursor {
			prefix = "> "
			style = theme.StyleSelected
		}
		b.WriteString(prefix + style.Render(fmt.Sprintf("%d. %s", i+1, o.Text)) + "\n")
	}
	if d.Submitting {
		b.WriteString(theme.StyleDimmed.Render(m.Spinner + " Submitting..."))
	}
	return theme.StyleBorder.
		BorderForeground(theme.ColorWarning).
		Width(max(m.width-4, 30)).
		Padding(0, 1).
		Render(strings.TrimRight(b.String(), "\n"))
}

func (m Model) renderFeedback() string {
	f := m.vm.Feedback
	headStyle := theme.StyleIncorrect
	border := theme.ColorIncorrect
	if f.Correct {
		headStyle = theme.StyleCorrect
		border = theme.ColorCorrect
	}
	lines := []string{headStyle.Render(f.Headline) + theme.StyleDimmed.Render(fmt.Sprintf("  +%d/%d", f.Score, f.MaxScore))}
	if f.Message != "" {
		lines = append(lines, f.Message)
	}
	if f.Explanation != "" {
		lines = append(lines, theme.StyleDimmed.Render(f.Explanation))
	}
	if m.vm.State == sim.Resolving {
		lines = append(lines, theme.StyleDimmed.Render(m.Spinner+" Continuing shortly..."))
	}
	return theme.StyleBorder.
		BorderForeground(border).
		Width(max(m.width-4, 30)).
		Padding(0, 1).
		Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m Model) helpLine() string {
	parts := []string{}
	switch {
	case m.vm.Decision != nil:
		parts = append(parts, "j/k: choose", "1-9/enter: submit")
	case m.vm.NextVisible:
		parts = append(parts, "n: next event")
	case m.vm.CompleteVisible:
		parts = append(parts, "c: complete scenario")
	case m.vm.Waiting:
		parts = append(parts, m.Spinner+" loading")
	}
	if m.vm.Feedback != nil {
		parts = append(parts, "f: feedback details")
	}
	if len(m.tabs) > 1 {
		parts = append(parts, "tab: next part")
	}
	parts = append(parts, "b: background", "g: rubric", "m: menu", "d: debug", "q: quit")
	return "  " + strings.Join(parts, "  ")
}

func renderEvents(events []sim.EventView, width int) string {
	blocks := make([]string, 0, len(events))
	inner := max(width-2, 20)
	for _, e := range events {
		blocks = append(blocks, renderEvent(e, inner))
	}
	return strings.Join(blocks, "\n\n")
}

func renderEvent(e sim.EventView, width int) string {
	sev := string(e.Severity)
	head := theme.SeverityBadge(sev) + " " + theme.StyleHeader.Render(e.Title)
	meta := theme.StyleDimmed.Render(e.Time + "  ·  " + e.Source)
	lines := []string{head, meta}
	if e.Description != "" {
		lines = append(lines, lipgloss.NewStyle().Width(width).Render(e.Description))
	}
	if e.LogEntry != "" {
		log := lipgloss.NewStyle().
			Foreground(theme.SeverityColor(sev)).
			Width(width - 2).
			PaddingLeft(1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderLeft(true).
			BorderForeground(theme.ColorBorder).
			Render(e.LogEntry)
		lines = append(lines, log)
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
