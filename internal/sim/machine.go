package sim

import (
	"time"

	"github.com/irsim/irsim/internal/client"
)

// Effect tells the caller what to do after a batch has been applied.
type Effect int

const (
	// EffectNone: nothing new to act on.
	EffectNone Effect = iota
	// EffectAllowNext: more events follow and the trainee may advance.
	EffectAllowNext
	// EffectShowDecision: a decision point was just revealed.
	EffectShowDecision
	// EffectComplete: the timeline is exhausted; complete the session.
	EffectComplete
)

func (e Effect) String() string {
	switch e {
	case EffectAllowNext:
		return "allow_next"
	case EffectShowDecision:
		return "show_decision"
	case EffectComplete:
		return "complete"
	default:
		return "none"
	}
}

// ResumeToken identifies a scheduled post-decision resume. It is only
// honoured while it matches the live session and generation.
type ResumeToken struct {
	SessionID  string
	Generation int
}

// Machine owns the active Session and performs every transition on it.
type Machine struct {
	opts       Options
	session    *Session
	generation int
}

// NewMachine creates an idle machine.
func NewMachine(opts Options) *Machine {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Machine{opts: opts}
}

// Session returns the active session, or nil when idle.
func (m *Machine) Session() *Session { return m.session }

// State returns the active session's state, or Idle.
func (m *Machine) State() State {
	if m.session == nil {
		return Idle
	}
	return m.session.state
}

// Active reports whether sessionID is the live session. Responses for any
// other session are stale and must be dropped.
func (m *Machine) Active(sessionID string) bool {
	return m.session != nil && sessionID != "" && m.session.id == sessionID
}

// Watermark is the "since" cursor for event fetches.
func (m *Machine) Watermark() int {
	if m.session == nil {
		return FromStart
	}
	return m.session.cursor.LastDecisionStep
}

// Start discards any previous run and begins a fresh one. The caller fetches
// the first batch from the start of the timeline.
func (m *Machine) Start(sessionID string, sc client.Scenario, subIndex int) *Session {
	m.generation++
	m.session = newSession(sessionID, sc, subIndex, m.opts.ChartCapacity)
	return m.session
}

// Reset returns to Idle, discarding the run and cancelling any pending resume.
func (m *Machine) Reset() {
	m.generation++
	m.session = nil
}

// Apply merges a fetched batch into the session and decides what comes next.
func (m *Machine) Apply(b *client.EventBatch) Effect {
	s := m.session
	if s == nil || b == nil || s.state == Complete || s.state == Resolving {
		return EffectNone
	}
	s.busy = false
	if b.CurrentStep != nil {
		s.cursor.CurrentStep = *b.CurrentStep
	}
	s.hasMore = b.HasMore

	if s.merge(b.Events) && len(b.Events) > 0 {
		s.metrics.Observe(m.opts.Now(), b.Events[len(b.Events)-1].Metrics)
	}

	if b.DecisionPoint != nil {
		s.resync = false
		if s.cursor.HasPending {
			// Only one decision may be on screen. A re-sent decision fills
			// the slot if it is empty, otherwise it is ignored.
			if s.decision == nil {
				dp := *b.DecisionPoint
				s.decision = &dp
			}
			s.state = AwaitingDecision
			return EffectNone
		}
		dp := *b.DecisionPoint
		s.decision = &dp
		s.cursor.PendingDecisionStep = s.cursor.CurrentStep
		s.cursor.HasPending = true
		s.submitting = false
		s.showFeedback = false
		s.state = AwaitingDecision
		return EffectShowDecision
	}

	if s.cursor.HasPending {
		return EffectNone
	}
	s.resync = false
	if !b.HasMore {
		s.state = Complete
		return EffectComplete
	}
	s.state = Streaming
	return EffectAllowNext
}

// CanAdvance reports whether the "next" action is available.
func (m *Machine) CanAdvance() bool {
	s := m.session
	return s != nil && s.state == Streaming && s.hasMore && !s.cursor.HasPending && !s.busy
}

// BeginAdvance marks an advance as in flight. It fails when advancing is not
// currently allowed.
func (m *Machine) BeginAdvance() bool {
	if !m.CanAdvance() {
		return false
	}
	m.session.busy = true
	return true
}

// AdvanceRejected handles the server refusing to advance because a decision
// is pending. The machine moves to AwaitingDecision and the caller re-fetches
// at the current watermark; the de-dup set keeps rendering idempotent.
func (m *Machine) AdvanceRejected() {
	s := m.session
	if s == nil || s.state == Complete {
		return
	}
	s.state = AwaitingDecision
	s.resync = true
	s.busy = true
}

// AdvanceFailed clears the in-flight flag after a failed advance or fetch.
func (m *Machine) AdvanceFailed() {
	if s := m.session; s != nil {
		s.busy = false
		if s.resync && s.decision == nil {
			s.resync = false
			s.state = Streaming
		}
	}
}

// BeginSubmit marks optionID as being submitted and returns the decision id
// to send. It fails when no decision is shown, a submission is already in
// flight, or the option does not belong to the decision.
func (m *Machine) BeginSubmit(optionID string) (decisionID string, ok bool) {
	s := m.session
	if s == nil || s.state != AwaitingDecision || s.decision == nil || s.submitting {
		return "", false
	}
	if _, found := s.decision.Option(optionID); !found {
		return "", false
	}
	s.submitting = true
	s.chosen = optionID
	return s.decision.ID, true
}

// SubmitFailed leaves the decision on screen so the trainee can retry.
func (m *Machine) SubmitFailed() {
	if s := m.session; s != nil {
		s.submitting = false
		s.chosen = ""
	}
}

// Resolve records the feedback for the in-flight submission, commits the
// pending step as the new watermark and schedules a resume.
func (m *Machine) Resolve(fb client.Feedback) (ResumeToken, bool) {
	s := m.session
	if s == nil || s.state != AwaitingDecision || !s.submitting || s.decision == nil {
		return ResumeToken{}, false
	}
	s.resolution = &Resolution{Decision: *s.decision, OptionID: s.chosen, Feedback: fb}
	s.showFeedback = true
	if s.cursor.HasPending {
		s.cursor.LastDecisionStep = s.cursor.PendingDecisionStep
		s.cursor.HasPending = false
		s.cursor.PendingDecisionStep = 0
	}
	s.decision = nil
	s.submitting = false
	s.chosen = ""
	s.state = Resolving

	m.generation++
	return ResumeToken{SessionID: s.id, Generation: m.generation}, true
}

// Resume moves a resolving session back to streaming when the token is still
// current. The caller then advances and fetches at the watermark.
func (m *Machine) Resume(tok ResumeToken) bool {
	s := m.session
	if s == nil || tok.SessionID != s.id || tok.Generation != m.generation || s.state != Resolving {
		return false
	}
	s.state = Streaming
	s.busy = true
	return true
}

// SetStatus records a refreshed score.
func (m *Machine) SetStatus(st client.Status) {
	if s := m.session; s != nil {
		s.status = st
		s.hasStatus = true
	}
}

// Finish stores the completion result. Completing is only valid once the
// timeline is exhausted and no decision is pending.
func (m *Machine) Finish(res client.CompletionResult) bool {
	s := m.session
	if s == nil || s.cursor.HasPending || s.state != Complete {
		return false
	}
	s.summary = &res
	s.status = client.Status{Score: res.Score, MaxScore: res.MaxScore}
	s.hasStatus = true
	return true
}

// CanComplete reports whether the manual completion control is available.
func (m *Machine) CanComplete() bool {
	s := m.session
	return s != nil && s.state == Complete && !s.cursor.HasPending
}
