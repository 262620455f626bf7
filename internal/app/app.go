package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/irsim/irsim/internal/catalog"
	"github.com/irsim/irsim/internal/client"
	"github.com/irsim/irsim/internal/config"
	"github.com/irsim/irsim/internal/content"
	"github.com/irsim/irsim/internal/logger"
	"github.com/irsim/irsim/internal/screen"
	"github.com/irsim/irsim/internal/sim"
	"github.com/irsim/irsim/internal/theme"
	"github.com/irsim/irsim/internal/views/completion"
	"github.com/irsim/irsim/internal/views/debug"
	"github.com/irsim/irsim/internal/views/detail"
	"github.com/irsim/irsim/internal/views/document"
	"github.com/irsim/irsim/internal/views/selection"
	"github.com/irsim/irsim/internal/views/simulation"
	"github.com/irsim/irsim/internal/views/status"
)

// Options tunes the root model.
type Options struct {
	// ResumeDelay is how long decision feedback stays up before the
	// timeline continues.
	ResumeDelay time.Duration
	// ChartCapacity bounds each metric series.
	ChartCapacity int
	// MarkdownStyle is a glamour standard style name.
	MarkdownStyle string
}

// DefaultOptions mirrors the config defaults.
func DefaultOptions() Options {
	return Options{
		ResumeDelay:   config.DefaultResumeDelay,
		ChartCapacity: config.DefaultChartPoints,
		MarkdownStyle: "dark",
	}
}

// Model is the root Bubble Tea model.
type Model struct {
	api    client.API
	opts   Options
	ctx    context.Context
	cancel context.CancelFunc
	log    *slog.Logger

	keys   KeyMap
	width  int
	height int

	nav     screen.Controller
	cat     *catalog.Catalog
	tabs    catalog.Tabs
	machine *sim.Machine

	// startSeq identifies the latest start/restart request; older results
	// are dropped.
	startSeq int
	starting bool
	prevTab  int

	// Sub-views.
	spinner    spinner.Model
	statusBar  status.Model
	menu       selection.Model
	simView    simulation.Model
	done       completion.Model
	learning   document.Model
	rubric     document.Model
	background document.Model
	detail     detail.Model
	debug      debug.Model
}

// New creates the root model.
func New(api client.API, opts Options) Model {
	ctx, cancel := context.WithCancel(context.Background())
	if opts.ChartCapacity <= 0 {
		opts.ChartCapacity = config.DefaultChartPoints
	}
	renderer := content.NewRenderer(opts.MarkdownStyle)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.ColorAccent)

	m := Model{
		api:        api,
		opts:       opts,
		ctx:        ctx,
		cancel:     cancel,
		log:        logger.ComponentLogger("app"),
		keys:       DefaultKeyMap(),
		cat:        catalog.New(),
		machine:    sim.NewMachine(sim.Options{ChartCapacity: opts.ChartCapacity}),
		spinner:    sp,
		statusBar:  status.New(),
		menu:       selection.New(),
		simView:    simulation.New(),
		done:       completion.New(renderer),
		learning:   document.New("Learning Center", "j/k: scroll  esc: back", renderer),
		rubric:     document.New("Scoring Rubric", "j/k: scroll  esc: close", renderer),
		background: document.New("Scenario Background", "esc: close", renderer),
		debug:      debug.New(),
	}
	m.learning.SetMarkdown(content.Learning())
	m.rubric.SetMarkdown(content.Rubric())
	return m
}

// Init loads the scenario list.
func (m Model) Init() tea.Cmd {
	return tea.Batch(selection.Load(m.ctx, m.cat, m.api), m.spinner.Tick)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.refreshBusy()
		return m, cmd

	case status.FrameMsg:
		var cmd tea.Cmd
		m.statusBar, cmd = m.statusBar.Update(msg)
		return m, cmd

	case selection.LoadedMsg:
		m.menu, _ = m.menu.Update(msg)
		if msg.Err != nil {
			m.fail("load scenarios", msg.Err)
			m.nav.Notify("Error", "Failed to load scenarios. Is the API running?")
			return m, nil
		}
		m.statusBar.Reachable = true
		m.debug.Addf(debug.KindAPI, "loaded %d scenarios", len(msg.Scenarios))
		return m, nil

	case selection.ChosenMsg:
		cmd := m.beginStart(msg.Scenario.ID)
		return m, cmd

	case sessionStartedMsg:
		return m.handleStarted(msg)

	case eventsMsg:
		return m.handleEvents(msg)

	case decisionMsg:
		return m.handleDecision(msg)

	case resumeMsg:
		if !m.machine.Resume(msg.Token) {
			m.debug.Add(debug.KindSession, "stale resume dropped")
			return m, nil
		}
		m.sync()
		sid := m.machine.Session().ID()
		m.debug.Addf(debug.KindAPI, "POST next, GET events since=%d", m.machine.Watermark())
		return m, advanceCmd(m.ctx, m.api, sid, m.machine.Watermark())

	case statusMsg:
		if !m.machine.Active(msg.SessionID) {
			return m, nil
		}
		if msg.Err != nil {
			m.fail("refresh score", msg.Err)
			return m, nil
		}
		m.statusBar.Reachable = true
		m.machine.SetStatus(*msg.Status)
		m.sync()
		cmd := m.statusBar.SetScore(msg.Status.Score, msg.Status.MaxScore)
		return m, cmd

	case completedMsg:
		return m.handleCompleted(msg)

	case restartMsg:
		if msg.Seq != m.startSeq {
			return m, nil
		}
		if msg.Err != nil {
			m.starting = false
			m.fail("restart", msg.Err)
			m.nav.Notify("Restart failed", catalog.RestartFailedMessage)
			return m, nil
		}
		cmd := m.beginStart(msg.Scenario.ID)
		return m, cmd
	}

	return m, nil
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.statusBar.Width = width
	m.menu.SetWidth(width)
	bodyH := height - 3
	m.simView.SetSize(width, bodyH)
	m.done.SetSize(width, bodyH)
	m.learning.SetSize(width, bodyH)
	m.rubric.SetSize(min(width, 90), bodyH)
	m.background.SetSize(min(width, 90), bodyH)
	m.detail.Height = bodyH
}

// beginStart issues a new scenario start and invalidates older ones.
func (m *Model) beginStart(scenarioID string) tea.Cmd {
	m.startSeq++
	m.starting = true
	m.debug.Addf(debug.KindAPI, "GET /scenarios/%s, POST /sessions", scenarioID)
	return startScenarioCmd(m.ctx, m.api, m.startSeq, scenarioID)
}

func (m Model) handleStarted(msg sessionStartedMsg) (tea.Model, tea.Cmd) {
	if msg.Seq != m.startSeq {
		m.debug.Add(debug.KindSession, "stale session start dropped")
		return m, nil
	}
	m.starting = false
	if msg.Err != nil {
		m.fail("start session", msg.Err)
		if msg.Kind == startTab {
			m.tabs.Select(m.prevTab)
			m.refreshTabs()
			m.nav.Notify("Error", "Failed to start sub-scenario. Please try again.")
		} else {
			m.nav.Notify("Error", "Failed to start scenario. Please try again.")
		}
		return m, nil
	}
	m.statusBar.Reachable = true

	sc := msg.Scenario
	if msg.Kind == startScenario {
		m.cat.Put(sc)
		m.tabs = catalog.NewTabs(sc)
	}
	// Start supersedes any resume scheduled for the previous run.
	m.machine.Start(msg.SessionID, sc, msg.SubIndex)
	logger.WithSession(msg.SessionID).Info("session started", "scenario", sc.ID, "sub", msg.SubIndex)
	m.debug.Addf(debug.KindSession, "started %s (%s)", msg.SessionID, sc.ID)

	m.simView.Reset()
	m.refreshTabs()
	m.statusBar.ClearScore()
	m.nav.CloseAll()
	m.nav.Show(screen.Simulation)
	m.sync()

	return m, tea.Batch(
		fetchEventsCmd(m.ctx, m.api, msg.SessionID, sim.FromStart, true),
		statusCmd(m.ctx, m.api, msg.SessionID),
	)
}

func (m Model) handleEvents(msg eventsMsg) (tea.Model, tea.Cmd) {
	if !m.machine.Active(msg.SessionID) {
		m.debug.Add(debug.KindSession, "stale events dropped")
		return m, nil
	}
	if msg.Err != nil {
		m.machine.AdvanceFailed()
		m.fail("fetch events", msg.Err)
		if msg.Initial {
			m.nav.Notify("Error", "Failed to load scenario events. Please try again.")
		}
		m.sync()
		return m, nil
	}
	m.statusBar.Reachable = true
	if msg.Rejected {
		m.debug.Add(debug.KindSession, "advance rejected, resyncing")
		m.machine.AdvanceRejected()
	}

	eff := m.machine.Apply(msg.Batch)
	m.sync()
	m.debug.Addf(debug.KindAPI, "events: %d, has_more=%t, effect=%s", len(msg.Batch.Events), msg.Batch.HasMore, eff)

	switch eff {
	case sim.EffectShowDecision:
		return m, nil
	case sim.EffectComplete:
		m.debug.Add(debug.KindAPI, "POST complete")
		return m, completeCmd(m.ctx, m.api, msg.SessionID)
	}
	return m, nil
}

func (m Model) handleDecision(msg decisionMsg) (tea.Model, tea.Cmd) {
	if !m.machine.Active(msg.SessionID) {
		return m, nil
	}
	if msg.Err != nil {
		m.machine.SubmitFailed()
		m.sync()
		m.fail("submit decision", msg.Err)
		m.nav.Notify("Error", "Failed to submit decision. Please try again.")
		return m, nil
	}
	m.statusBar.Reachable = true
	tok, ok := m.machine.Resolve(*msg.Feedback)
	if !ok {
		return m, nil
	}
	m.sync()
	m.debug.Addf(debug.KindSession, "decision scored %d/%d", msg.Feedback.Score, msg.Feedback.MaxScore)
	return m, tea.Batch(
		resumeAfter(m.opts.ResumeDelay, tok),
		statusCmd(m.ctx, m.api, msg.SessionID),
	)
}

func (m Model) handleCompleted(msg completedMsg) (tea.Model, tea.Cmd) {
	if !m.machine.Active(msg.SessionID) {
		return m, nil
	}
	if msg.Err != nil {
		// The complete control stays visible for a retry.
		m.fail("complete", msg.Err)
		return m, nil
	}
	m.statusBar.Reachable = true
	if !m.machine.Finish(*msg.Result) {
		return m, nil
	}
	vm := m.sync()
	m.done.SetSummary(vm.Title, vm.Summary)
	m.nav.Show(screen.Completion)
	m.debug.Addf(debug.KindSession, "completed with %d/%d", msg.Result.Score, msg.Result.MaxScore)
	cmd := m.statusBar.SetScore(msg.Result.Score, msg.Result.MaxScore)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.nav.Blocked() {
		switch {
		case msg.String() == "ctrl+c":
			m.cancel()
			return m, tea.Quit
		case key.Matches(msg, m.keys.Escape), key.Matches(msg, m.keys.Enter):
			m.nav.Dismiss()
		}
		return m, nil
	}

	if top := m.nav.Top(); top != screen.ModalNone {
		return m.handleModalKey(top, msg)
	}

	if key.Matches(msg, m.keys.Quit) {
		m.cancel()
		return m, tea.Quit
	}

	switch m.nav.Active() {
	case screen.Selection:
		return m.handleSelectionKey(msg)
	case screen.Learning:
		return m.handleLearningKey(msg)
	case screen.Simulation:
		return m.handleSimulationKey(msg)
	case screen.Completion:
		return m.handleCompletionKey(msg)
	}
	return m, nil
}

func (m Model) handleModalKey(top screen.Modal, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Escape) {
		m.nav.CloseTop()
		return m, nil
	}
	var cmd tea.Cmd
	switch top {
	case screen.ModalDebug:
		switch {
		case key.Matches(msg, m.keys.Debug):
			m.nav.Close(screen.ModalDebug)
		case key.Matches(msg, m.keys.Up):
			m.debug.ScrollUp(1)
		case key.Matches(msg, m.keys.Down):
			m.debug.ScrollDown(1)
		}
	case screen.ModalFeedbackDetail:
		switch {
		case key.Matches(msg, m.keys.Feedback):
			m.nav.Close(screen.ModalFeedbackDetail)
		case key.Matches(msg, m.keys.Up):
			m.detail.ScrollUp()
		case key.Matches(msg, m.keys.Down):
			m.detail.ScrollDown()
		}
	case screen.ModalRubric:
		if key.Matches(msg, m.keys.Rubric) {
			m.nav.Close(screen.ModalRubric)
			return m, nil
		}
		m.rubric, cmd = m.rubric.Update(msg)
	case screen.ModalBackground:
		if key.Matches(msg, m.keys.Background) {
			m.nav.Close(screen.ModalBackground)
			return m, nil
		}
		m.background, cmd = m.background.Update(msg)
	}
	return m, cmd
}

func (m Model) handleSelectionKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Learning):
		m.nav.Show(screen.Learning)
		m.debug.Add(debug.KindNav, "learning center")
		return m, nil
	case key.Matches(msg, m.keys.Reload):
		m.menu.MarkLoading()
		m.debug.Add(debug.KindAPI, "GET /scenarios")
		return m, selection.Load(m.ctx, m.cat, m.api)
	case key.Matches(msg, m.keys.Debug):
		m.nav.Toggle(screen.ModalDebug)
		return m, nil
	}
	if m.starting {
		return m, nil
	}
	var cmd tea.Cmd
	m.menu, cmd = m.menu.Update(msg)
	return m, cmd
}

func (m Model) handleLearningKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape), key.Matches(msg, m.keys.Learning), key.Matches(msg, m.keys.Menu):
		m.nav.Show(screen.Selection)
		return m, nil
	}
	var cmd tea.Cmd
	m.learning, cmd = m.learning.Update(msg)
	return m, cmd
}

func (m Model) handleSimulationKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := m.machine.Session()
	switch {
	case key.Matches(msg, m.keys.Menu):
		m.toMenu()
		return m, nil

	case key.Matches(msg, m.keys.Debug):
		m.nav.Toggle(screen.ModalDebug)
		return m, nil

	case key.Matches(msg, m.keys.Rubric):
		m.nav.Open(screen.ModalRubric)
		return m, nil

	case key.Matches(msg, m.keys.Background):
		if s != nil {
			md, _ := content.Background(s.Scenario().ID)
			m.background.SetMarkdown(md)
			m.nav.Open(screen.ModalBackground)
		}
		return m, nil

	case key.Matches(msg, m.keys.Feedback):
		if s != nil && s.Resolution() != nil {
			m.detail = detail.New(sim.ProjectFeedbackDetail(s.Resolution()))
			m.detail.Height = m.height - 3
			m.nav.Open(screen.ModalFeedbackDetail)
		}
		return m, nil

	case key.Matches(msg, m.keys.Next):
		if !m.machine.BeginAdvance() {
			return m, nil
		}
		m.sync()
		m.debug.Addf(debug.KindAPI, "POST next, GET events since=%d", m.machine.Watermark())
		return m, advanceCmd(m.ctx, m.api, s.ID(), m.machine.Watermark())

	case key.Matches(msg, m.keys.Complete):
		if !m.machine.CanComplete() {
			return m, nil
		}
		m.debug.Add(debug.KindAPI, "POST complete")
		return m, completeCmd(m.ctx, m.api, s.ID())

	case key.Matches(msg, m.keys.Enter):
		if id, ok := m.simView.SelectedOption(); ok {
			return m.submit(id)
		}
		return m, nil

	case key.Matches(msg, m.keys.Options):
		if id, ok := m.simView.OptionAt(int(msg.Runes[0] - '1')); ok {
			return m.submit(id)
		}
		return m, nil

	case key.Matches(msg, m.keys.NextTab):
		return m.switchTab(1)

	case key.Matches(msg, m.keys.PrevTab):
		return m.switchTab(-1)
	}

	var cmd tea.Cmd
	m.simView, cmd = m.simView.Update(msg)
	return m, cmd
}

func (m Model) handleCompletionKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.nav.Show(screen.Simulation)
		m.debug.Add(debug.KindNav, "back to scenario")
		return m, nil

	case key.Matches(msg, m.keys.Restart):
		s := m.machine.Session()
		if s == nil || m.starting {
			return m, nil
		}
		m.startSeq++
		m.starting = true
		sc := s.Scenario()
		m.debug.Addf(debug.KindNav, "restart %s", sc.ID)
		return m, restartCmd(m.ctx, m.cat, m.api, m.startSeq, sc.ID, sc.Name)

	case key.Matches(msg, m.keys.Menu):
		m.toMenu()
		return m, nil

	case key.Matches(msg, m.keys.Rubric):
		m.nav.Open(screen.ModalRubric)
		return m, nil

	case key.Matches(msg, m.keys.Debug):
		m.nav.Toggle(screen.ModalDebug)
		return m, nil
	}
	var cmd tea.Cmd
	m.done, cmd = m.done.Update(msg)
	return m, cmd
}

func (m Model) submit(optionID string) (tea.Model, tea.Cmd) {
	decisionID, ok := m.machine.BeginSubmit(optionID)
	if !ok {
		return m, nil
	}
	m.sync()
	sid := m.machine.Session().ID()
	m.debug.Addf(debug.KindAPI, "POST action %s/%s", decisionID, optionID)
	return m, submitCmd(m.ctx, m.api, sid, decisionID, optionID)
}

// switchTab moves the tab strip and starts a fresh session for the new
// part. Sub-scenarios are not resumable; the old run is abandoned once the
// new session exists. Until then it keeps running, including any scheduled
// resume, so a failed start leaves it usable.
func (m Model) switchTab(dir int) (tea.Model, tea.Cmd) {
	s := m.machine.Session()
	if s == nil || m.starting {
		return m, nil
	}
	prev := m.tabs.Active()
	var moved bool
	if dir < 0 {
		moved = m.tabs.Prev()
	} else {
		moved = m.tabs.Next()
	}
	if !moved {
		return m, nil
	}
	m.prevTab = prev
	m.refreshTabs()
	m.startSeq++
	m.starting = true
	idx := m.tabs.Active()
	m.debug.Addf(debug.KindNav, "switch to part %d", idx+1)
	return m, startTabCmd(m.ctx, m.api, m.startSeq, s.Scenario(), idx)
}

func (m *Model) toMenu() {
	m.startSeq++
	m.starting = false
	m.machine.Reset()
	m.tabs = catalog.Tabs{}
	m.simView.Reset()
	m.refreshTabs()
	m.statusBar.ClearScore()
	m.statusBar.Title = ""
	m.nav.CloseAll()
	m.nav.Show(screen.Selection)
	m.debug.Add(debug.KindNav, "main menu")
}

func (m *Model) refreshTabs() {
	m.simView.SetTabs(m.tabs.Labels(), m.tabs.Active(), m.tabs.Description())
}

// sync re-projects the session into the views.
func (m *Model) sync() sim.ViewModel {
	vm := sim.Project(m.machine)
	m.simView.SetViewModel(vm)
	m.statusBar.Title = vm.Title
	m.refreshBusy()
	return vm
}

func (m *Model) refreshBusy() {
	busy := m.starting || m.menu.Loading() || m.simView.ViewModel().Waiting
	frame := m.spinner.View()
	m.simView.Spinner = frame
	if busy {
		m.statusBar.Busy = frame
	} else {
		m.statusBar.Busy = ""
	}
}

// fail records a failed operation in the log and the debug overlay.
func (m *Model) fail(op string, err error) {
	if client.IsNetwork(err) {
		m.statusBar.Reachable = false
	}
	if errors.Is(err, context.Canceled) {
		return
	}
	m.log.Error(op+" failed", "error", err)
	m.debug.Add(debug.KindErr, fmt.Sprintf("%s: %v", op, err))
}

// View renders the full TUI.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	var body string
	switch m.nav.Active() {
	case screen.Selection:
		body = m.menu.View()
	case screen.Learning:
		body = m.learning.View()
	case screen.Simulation:
		body = m.simView.View()
	case screen.Completion:
		body = m.done.View()
	}

	bodyH := max(m.height-3, 1)
	if top := m.nav.Top(); top != screen.ModalNone {
		body = lipgloss.Place(m.width, bodyH, lipgloss.Center, lipgloss.Center, m.modalView(top))
	}
	if n := m.nav.Notice(); n != nil {
		body = lipgloss.Place(m.width, bodyH, lipgloss.Center, lipgloss.Center, noticeView(n))
	}

	return lipgloss.JoinVertical(lipgloss.Left, m.statusBar.View(), body)
}

func (m Model) modalView(top screen.Modal) string {
	switch top {
	case screen.ModalRubric:
		return m.rubric.View()
	case screen.ModalBackground:
		return m.background.View()
	case screen.ModalFeedbackDetail:
		return m.detail.View()
	case screen.ModalDebug:
		return m.debug.View(min(m.width, 120), m.height-3)
	}
	return ""
}

func noticeView(n *screen.Notice) string {
	title := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorDanger).Render(n.Title)
	msg := lipgloss.NewStyle().Width(50).Render(n.Message)
	help := theme.StyleDimmed.Render("enter/esc: dismiss")
	return lipgloss.NewStyle().
		Padding(1, 2).
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(theme.ColorDanger).
		Render(lipgloss.JoinVertical(lipgloss.Left, title, "", msg, "", help))
}
