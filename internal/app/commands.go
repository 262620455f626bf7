package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/irsim/irsim/internal/catalog"
	"github.com/irsim/irsim/internal/client"
	"github.com/irsim/irsim/internal/sim"
)

// Every network result carries the session id (or start sequence) it was
// issued for; Update drops results that no longer match the live run.

// startKind tells sessionStartedMsg handling what kind of start it was.
type startKind int

const (
	startScenario startKind = iota
	startTab
)

type sessionStartedMsg struct {
	Seq       int
	Kind      startKind
	Scenario  client.Scenario
	SubIndex  int
	SessionID string
	Err       error
}

type eventsMsg struct {
	SessionID string
	Batch     *client.EventBatch
	Rejected  bool // advance was refused because a decision is pending
	Initial   bool
	Err       error
}

type decisionMsg struct {
	SessionID string
	Feedback  *client.Feedback
	Err       error
}

type resumeMsg struct {
	Token sim.ResumeToken
}

type statusMsg struct {
	SessionID string
	Status    *client.Status
	Err       error
}

type completedMsg struct {
	SessionID string
	Result    *client.CompletionResult
	Err       error
}

type restartMsg struct {
	Seq      int
	Scenario client.Scenario
	Err      error
}

// startScenarioCmd fetches the scenario detail and creates a session. Split
// scenarios start on their first sub-scenario.
func startScenarioCmd(ctx context.Context, api client.API, seq int, scenarioID string) tea.Cmd {
	return func() tea.Msg {
		msg := sessionStartedMsg{Seq: seq, Kind: startScenario, SubIndex: sim.NoSubScenario}
		sc, err := api.GetScenario(ctx, scenarioID)
		if err != nil {
			msg.Err = fmt.Errorf("load scenario %s: %w", scenarioID, err)
			return msg
		}
		msg.Scenario = *sc
		var sub *int
		if sc.HasSubScenarios() {
			first := 0
			sub = &first
			msg.SubIndex = 0
		}
		msg.SessionID, msg.Err = api.CreateSession(ctx, sc.ID, sub)
		if msg.Err != nil {
			msg.Err = fmt.Errorf("create session: %w", msg.Err)
		}
		return msg
	}
}

// startTabCmd creates a fresh session for one sub-scenario.
func startTabCmd(ctx context.Context, api client.API, seq int, sc client.Scenario, index int) tea.Cmd {
	return func() tea.Msg {
		msg := sessionStartedMsg{Seq: seq, Kind: startTab, Scenario: sc, SubIndex: index}
		msg.SessionID, msg.Err = api.CreateSession(ctx, sc.ID, &index)
		if msg.Err != nil {
			msg.Err = fmt.Errorf("create session for part %d: %w", index+1, msg.Err)
		}
		return msg
	}
}

func fetchEventsCmd(ctx context.Context, api client.API, sessionID string, since int, initial bool) tea.Cmd {
	return func() tea.Msg {
		batch, err := api.FetchEvents(ctx, sessionID, since)
		return eventsMsg{SessionID: sessionID, Batch: batch, Initial: initial, Err: err}
	}
}

// advanceCmd moves the server timeline forward and fetches at the
// watermark. A rejected advance still fetches, so the pending decision
// arrives in the same message.
func advanceCmd(ctx context.Context, api client.API, sessionID string, since int) tea.Cmd {
	return func() tea.Msg {
		msg := eventsMsg{SessionID: sessionID}
		if err := api.Advance(ctx, sessionID); err != nil {
			if !errors.Is(err, client.ErrDecisionRequired) {
				msg.Err = err
				return msg
			}
			msg.Rejected = true
		}
		msg.Batch, msg.Err = api.FetchEvents(ctx, sessionID, since)
		return msg
	}
}

func submitCmd(ctx context.Context, api client.API, sessionID, decisionID, optionID string) tea.Cmd {
	return func() tea.Msg {
		fb, err := api.SubmitDecision(ctx, sessionID, decisionID, optionID)
		return decisionMsg{SessionID: sessionID, Feedback: fb, Err: err}
	}
}

func statusCmd(ctx context.Context, api client.API, sessionID string) tea.Cmd {
	return func() tea.Msg {
		st, err := api.Status(ctx, sessionID)
		return statusMsg{SessionID: sessionID, Status: st, Err: err}
	}
}

func completeCmd(ctx context.Context, api client.API, sessionID string) tea.Cmd {
	return func() tea.Msg {
		res, err := api.Complete(ctx, sessionID)
		return completedMsg{SessionID: sessionID, Result: res, Err: err}
	}
}

func restartCmd(ctx context.Context, cat *catalog.Catalog, api client.API, seq int, id, name string) tea.Cmd {
	return func() tea.Msg {
		sc, err := cat.Resolve(ctx, api, id, name)
		return restartMsg{Seq: seq, Scenario: sc, Err: err}
	}
}

func resumeAfter(d time.Duration, tok sim.ResumeToken) tea.Cmd {
	if d <= 0 {
		return func() tea.Msg { return resumeMsg{Token: tok} }
	}
	return tea.Tick(d, func(time.Time) tea.Msg { return resumeMsg{Token: tok} })
}
