// Package client provides the HTTP client for the scenario/session API.
// Types mirror the API wire format.
package client

import (
	"bytes"
	"encoding/json"
	"sort"
)

// Severity grades an event.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// OrDefault returns the severity, or medium when unset.
func (s Severity) OrDefault() Severity {
	if s == "" {
		return SeverityMedium
	}
	return s
}

// EventTypeDecisionPoint marks timeline entries that only carry a decision
// and are never rendered as events.
const EventTypeDecisionPoint = "decision_point"

// SubScenarioInfo describes one independently runnable part of a scenario.
type SubScenarioInfo struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Scenario is a training exercise definition.
type Scenario struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Type         string            `json:"type"`
	Description  string            `json:"description"`
	SubScenarios []SubScenarioInfo `json:"sub_scenarios_info,omitempty"`
}

// HasSubScenarios reports whether the scenario is split into tabs.
func (s Scenario) HasSubScenarios() bool { return len(s.SubScenarios) > 0 }

// Metrics is the host snapshot attached to an event. Every field is optional.
type Metrics struct {
	CPUUsage           *float64 `json:"cpu_usage,omitempty"`
	MemoryUsage        *float64 `json:"memory_usage,omitempty"`
	InboundConnections *int     `json:"inbound_connections,omitempty"`
}

// Event is a single simulated security event on the timeline.
type Event struct {
	ID          string   `json:"id"`
	Type        string   `json:"type,omitempty"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity,omitempty"`
	Source      string   `json:"source"`
	Timestamp   string   `json:"timestamp"`
	LogEntry    string   `json:"log_entry,omitempty"`
	Metrics     *Metrics `json:"metrics,omitempty"`
}

// Option is one answer to a decision point.
type Option struct {
	ID          string `json:"id"`
	Text        string `json:"text"`
	Score       int    `json:"score"`
	Feedback    string `json:"feedback,omitempty"`
	Explanation string `json:"explanation,omitempty"`
}

// DecisionPoint pauses the timeline until one option is chosen.
type DecisionPoint struct {
	ID          string   `json:"id"`
	Description string   `json:"description"`
	Options     []Option `json:"options"`
	MaxScore    int      `json:"max_score,omitempty"`
}

// Option returns the option with the given id.
func (d *DecisionPoint) Option(id string) (Option, bool) {
	if d == nil {
		return Option{}, false
	}
	for _, o := range d.Options {
		if o.ID == id {
			return o, true
		}
	}
	return Option{}, false
}

// EventBatch is the response of GET /sessions/{id}/events.
type EventBatch struct {
	Events        []Event        `json:"events"`
	DecisionPoint *DecisionPoint `json:"decision_point,omitempty"`
	HasMore       bool           `json:"has_more"`
	CurrentStep   *int           `json:"current_step,omitempty"`
}

// Feedback is returned after a decision is submitted.
type Feedback struct {
	Correct     bool   `json:"correct"`
	Feedback    string `json:"feedback"`
	Explanation string `json:"explanation,omitempty"`
	Score       int    `json:"score"`
	MaxScore    int    `json:"max_score"`
}

// Status is the running score of a session.
type Status struct {
	Score    int `json:"score"`
	MaxScore int `json:"max_score"`
}

// Recommendation is one follow-up item on the completion report.
type Recommendation struct {
	Title       string `json:"title"`
	Priority    string `json:"priority,omitempty"`
	Description string `json:"description,omitempty"`
}

// Recommendations groups recommendations by category. Decoding tolerates
// payloads that are not an object, and categories whose value is not a
// list, by dropping them.
type Recommendations map[string][]Recommendation

// UnmarshalJSON implements json.Unmarshaler.
func (r *Recommendations) UnmarshalJSON(data []byte) error {
	*r = nil
	if len(bytes.TrimSpace(data)) == 0 || data[0] != '{' {
		return nil
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	out := make(Recommendations, len(raw))
	for category, v := range raw {
		var items []Recommendation
		if err := json.Unmarshal(v, &items); err != nil {
			continue
		}
		out[category] = items
	}
	*r = out
	return nil
}

// Categories returns the category names in a stable order.
func (r Recommendations) Categories() []string {
	out := make([]string, 0, len(r))
	for k := range r {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// CompletionResult is returned by POST /sessions/{id}/complete.
type CompletionResult struct {
	Score           int             `json:"score"`
	MaxScore        int             `json:"max_score"`
	Percentage      *float64        `json:"percentage,omitempty"`
	Recommendations Recommendations `json:"recommendations,omitempty"`
}

// --- request bodies ---

type createSessionRequest struct {
	ScenarioID       string `json:"scenario_id"`
	SubScenarioIndex *int   `json:"sub_scenario_index,omitempty"`
}

type createSessionResponse struct {
	SessionID string `json:"session_id"`
}

type actionRequest struct {
	ActionID string `json:"action_id"`
	OptionID string `json:"option_id"`
}

type errorBody struct {
	Error string `json:"error"`
}
