// Package selection provides the main menu: the scenario list.
package selection

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/irsim/irsim/internal/catalog"
	"github.com/irsim/irsim/internal/client"
	"github.com/irsim/irsim/internal/format"
	"github.com/irsim/irsim/internal/theme"
)

// LoadedMsg is returned after fetching the scenario list.
type LoadedMsg struct {
	Scenarios []client.Scenario
	Err       error
}

// ChosenMsg is emitted when the trainee picks a scenario.
type ChosenMsg struct {
	Scenario client.Scenario
}

// KeyMap holds the menu key bindings.
type KeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Choose key.Binding
}

// DefaultKeyMap returns the default menu key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "prev scenario"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "next scenario"),
		),
		Choose: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "start"),
		),
	}
}

// Model is the scenario menu.
type Model struct {
	keys      KeyMap
	scenarios []client.Scenario
	cursor    int
	loading   bool
	loadErr   string
	width     int
}

// New creates a menu in the loading state.
func New() Model {
	return Model{keys: DefaultKeyMap(), loading: true}
}

// Load fetches the scenario list into cat.
func Load(ctx context.Context, cat *catalog.Catalog, l catalog.Lister) tea.Cmd {
	return func() tea.Msg {
		list, err := cat.Load(ctx, l)
		return LoadedMsg{Scenarios: list, Err: err}
	}
}

// SetWidth updates the rendering width.
func (m *Model) SetWidth(w int) { m.width = w }

// Loading reports whether the list is still being fetched.
func (m Model) Loading() bool { return m.loading }

// Selected returns the highlighted scenario.
func (m Model) Selected() (client.Scenario, bool) {
	if m.cursor < 0 || m.cursor >= len(m.scenarios) {
		return client.Scenario{}, false
	}
	return m.scenarios[m.cursor], true
}

// Update handles the list result and navigation keys.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case LoadedMsg:
		m.loading = false
		if msg.Err != nil {
			m.loadErr = msg.Err.Error()
			return m, nil
		}
		m.loadErr = ""
		m.scenarios = msg.Scenarios
		m.cursor = min(m.cursor, max(len(m.scenarios)-1, 0))
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.loading || len(m.scenarios) == 0 {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.Up):
		m.cursor = (m.cursor - 1 + len(m.scenarios)) % len(m.scenarios)
	case key.Matches(msg, m.keys.Down):
		m.cursor = (m.cursor + 1) % len(m.scenarios)
	case key.Matches(msg, m.keys.Choose):
		sc := m.scenarios[m.cursor]
		return m, func() tea.Msg { return ChosenMsg{Scenario: sc} }
	}
	return m, nil
}

// MarkLoading puts the menu back into the loading state before a reload.
func (m *Model) MarkLoading() {
	m.loading = true
	m.loadErr = ""
}

// View renders the menu.
func (m Model) View() string {
	width := max(m.width, 40)
	header := theme.StyleTitle.Render("Incident Response Trainer")
	sub := theme.StyleDimmed.Render("Choose a scenario to begin")

	var body string
	switch {
	case m.loading:
		body = theme.StyleDimmed.Render("  Loading scenarios...")
	case m.loadErr != "":
		body = lipgloss.NewStyle().Foreground(theme.ColorDanger).Render("  Could not load scenarios: " + format.Sanitize(m.loadErr))
	case len(m.scenarios) == 0:
		body = theme.StyleDimmed.Render("  No scenarios available")
	default:
		body = m.renderList(width - 6)
	}

	help := theme.StyleDimmed.Render("  j/k: move  enter: start  l: learning center  r: reload  q: quit")
	content := lipgloss.JoinVertical(lipgloss.Left, header, sub, "", body, "", help)
	return theme.StyleBorder.Width(width - 2).Padding(0, 1).Render(content)
}

func (m Model) renderList(width int) string {
	var rows []string
	for i, sc := range m.scenarios {
		selected := i == m.cursor
		prefix := "  "
		nameStyle := lipgloss.NewStyle().Foreground(theme.ColorDefault)
		if selected {
			prefix = "> "
			nameStyle = theme.StyleSelected
		}
		name := format.SanitizeOr(sc.Name, sc.ID)
		line := prefix + nameStyle.Render(name)
		if t := format.Sanitize(sc.Type); t != "" {
			line += theme.StyleDimmed.Render("  [" + t + "]")
		}
		if sc.HasSubScenarios() {
			line += theme.StyleDimmed.Render(fmt.Sprintf("  %d parts", len(sc.SubScenarios)))
		}
		rows = append(rows, line)
		if desc := format.Sanitize(sc.Description); desc != "" && selected {
			wrapped := lipgloss.NewStyle().Width(max(width-4, 20)).Render(desc)
			rows = append(rows, indent(theme.StyleDimmed.Render(wrapped), "    "))
		}
	}
	return strings.Join(rows, "\n")
}

func indent(s, pad string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = pad + l
	}
	return strings.Join(lines, "\n")
}
