// Package sim holds the client-side session state machine: which step the
// trainee is at, whether a decision is pending, and which events have already
// been rendered. It has no UI or network dependencies; the app feeds it API
// responses and renders Project's output.
package sim

import (
	"time"

	"github.com/irsim/irsim/internal/client"
	"github.com/irsim/irsim/internal/metrics"
)

// State is the position of the active run in its lifecycle.
type State int

const (
	Idle State = iota
	Streaming
	AwaitingDecision
	Resolving
	Complete
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Streaming:
		return "streaming"
	case AwaitingDecision:
		return "awaiting_decision"
	case Resolving:
		return "resolving"
	case Complete:
		return "complete"
	default:
		return "unknown"
	}
}

// FromStart is the watermark used before any decision has been resolved.
const FromStart = -1

// NoSubScenario is the sub-scenario index of runs that are not tabbed.
const NoSubScenario = -1

// Cursor is the server-facing position of a session.
type Cursor struct {
	CurrentStep      int
	LastDecisionStep int
	// PendingDecisionStep is only meaningful when HasPending is set.
	PendingDecisionStep int
	HasPending          bool
}

// Resolution records a submitted decision and the feedback it earned.
type Resolution struct {
	Decision client.DecisionPoint
	OptionID string
	Feedback client.Feedback
}

// Session is the state of one run of a (sub-)scenario. A new Session is
// built for every start, tab switch and restart.
type Session struct {
	id       string
	scenario client.Scenario
	subIndex int

	state  State
	cursor Cursor

	hasMore bool
	busy    bool // advance/fetch in flight
	resync  bool // advance was rejected, waiting for the decision to arrive

	seen   map[string]struct{}
	events []client.Event

	decision   *client.DecisionPoint
	submitting bool
	chosen     string

	resolution   *Resolution
	showFeedback bool

	status    client.Status
	hasStatus bool
	summary   *client.CompletionResult

	metrics *metrics.Set
}

// ID returns the server-assigned session id.
func (s *Session) ID() string { return s.id }

// Scenario returns the scenario the session runs.
func (s *Session) Scenario() client.Scenario { return s.scenario }

// SubIndex returns the sub-scenario index, or NoSubScenario.
func (s *Session) SubIndex() int { return s.subIndex }

// State returns the lifecycle state.
func (s *Session) State() State { return s.state }

// Cursor returns a copy of the step cursor.
func (s *Session) Cursor() Cursor { return s.cursor }

// HasMore reports whether the server said more events follow.
func (s *Session) HasMore() bool { return s.hasMore }

// Busy reports whether an advance or fetch is in flight.
func (s *Session) Busy() bool { return s.busy }

// Events returns the rendered events in arrival order.
func (s *Session) Events() []client.Event { return s.events }

// Decision returns the decision point awaiting an answer, if any.
func (s *Session) Decision() *client.DecisionPoint { return s.decision }

// Submitting reports whether a decision submission is in flight.
func (s *Session) Submitting() bool { return s.submitting }

// Resolution returns the most recently resolved decision.
func (s *Session) Resolution() *Resolution { return s.resolution }

// Status returns the last known score and whether one was received.
func (s *Session) Status() (client.Status, bool) { return s.status, s.hasStatus }

// Summary returns the completion result once the run is finished.
func (s *Session) Summary() *client.CompletionResult { return s.summary }

// Metrics returns the charted series.
func (s *Session) Metrics() *metrics.Set { return s.metrics }

// Seen reports whether an event key has already been rendered.
func (s *Session) Seen(e client.Event) bool {
	_, ok := s.seen[eventKey(e)]
	return ok
}

// merge appends events that have not been rendered yet and reports whether
// the last event of the batch was new. Decision-point entries are remembered
// but never rendered.
func (s *Session) merge(events []client.Event) (lastIsNew bool) {
	for i, e := range events {
		key := eventKey(e)
		_, dup := s.seen[key]
		if i == len(events)-1 {
			lastIsNew = !dup
		}
		if dup {
			continue
		}
		s.seen[key] = struct{}{}
		if e.Type == client.EventTypeDecisionPoint {
			continue
		}
		s.events = append(s.events, e)
	}
	return lastIsNew
}

// eventKey identifies an event for de-duplication. Events without an id
// fall back to their timestamp, source and title.
func eventKey(e client.Event) string {
	if e.ID != "" {
		return "id:" + e.ID
	}
	return "anon:" + e.Timestamp + "\x00" + e.Source + "\x00" + e.Title
}

func newSession(id string, sc client.Scenario, subIndex int, chartCapacity int) *Session {
	return &Session{
		id:       id,
		scenario: sc,
		subIndex: subIndex,
		state:    Streaming,
		cursor:   Cursor{LastDecisionStep: FromStart},
		busy:     true,
		seen:     make(map[string]struct{}),
		metrics:  metrics.NewSet(chartCapacity),
	}
}

// Options configures a Machine.
type Options struct {
	// ChartCapacity bounds each metric series; zero uses the default.
	ChartCapacity int
	// Now stamps chart samples; nil uses time.Now.
	Now func() time.Time
}
