package simulation

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/irsim/irsim/internal/client"
	"github.com/irsim/irsim/internal/sim"
)

func baseVM() sim.ViewModel {
	return sim.ViewModel{
		State:     sim.Streaming,
		SessionID: "s-1",
		Title:     "DDoS Attack",
		Events: []sim.EventView{{
			ID:          "e1",
			Title:       "Traffic spike",
			Source:      "edge-fw",
			Time:        "2024-01-01 10:00:00",
			Description: "Inbound traffic is 40x baseline",
			LogEntry:    "SYN flood from 203.0.113.0/24",
			Severity:    client.SeverityHigh,
		}},
		NextVisible: true,
	}
}

func sized() Model {
	m := New()
	m.SetSize(120, 40)
	return m
}

func TestViewStreaming(t *testing.T) {
	m := sized()
	m.SetViewModel(baseVM())
	v := m.View()
	for _, want := range []string{"DDoS Attack", "[HIGH]", "Traffic spike", "edge-fw", "SYN flood", "n: next event"} {
		if !strings.Contains(v, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestViewWaitingForEvents(t *testing.T) {
	m := sized()
	vm := baseVM()
	vm.Events = nil
	vm.NextVisible = false
	vm.Waiting = true
	m.SetViewModel(vm)
	if v := m.View(); !strings.Contains(v, "Waiting for events") {
		t.Error("empty feed should show a placeholder")
	}
}

func TestDecisionCursor(t *testing.T) {
	m := sized()
	vm := baseVM()
	vm.State = sim.AwaitingDecision
	vm.NextVisible = false
	vm.Decision = &sim.DecisionView{
		ID:          "dp1",
		Description: "How do you respond?",
		Options:     []sim.OptionView{{ID: "a", Text: "Block"}, {ID: "b", Text: "Wait"}},
	}
	m.SetViewModel(vm)

	v := m.View()
	for _, want := range []string{"Decision required", "How do you respond?", "> 1. Block", "2. Wait"} {
		if !strings.Contains(v, want) {
			t.Errorf("view missing %q", want)
		}
	}
	if strings.Contains(v, "n: next event") {
		t.Error("next must not be offered while a decision is shown")
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if id, _ := m.SelectedOption(); id != "b" {
		t.Errorf("after down, selected %q, want b", id)
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if id, _ := m.SelectedOption(); id != "a" {
		t.Errorf("cursor should wrap, selected %q", id)
	}
	if _, ok := m.OptionAt(5); ok {
		t.Error("OptionAt out of range should fail")
	}

	// Same decision re-projected keeps the cursor; a new one resets it.
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m.SetViewModel(vm)
	if id, _ := m.SelectedOption(); id != "b" {
		t.Errorf("re-projection moved cursor to %q", id)
	}
	vm2 := vm
	vm2.Decision = &sim.DecisionView{ID: "dp2", Options: []sim.OptionView{{ID: "x", Text: "X"}, {ID: "y", Text: "Y"}}}
	m.SetViewModel(vm2)
	if id, _ := m.SelectedOption(); id != "x" {
		t.Errorf("new decision should reset cursor, got %q", id)
	}
}

func TestViewFeedback(t *testing.T) {
	m := sized()
	vm := baseVM()
	vm.State = sim.Resolving
	vm.NextVisible = false
	vm.Feedback = &sim.FeedbackView{
		Correct:     true,
		Headline:    "✓ Correct!",
		Message:     "Good call",
		Explanation: "Scrubbing absorbs the flood",
		Score:       10,
		MaxScore:    10,
	}
	m.SetViewModel(vm)
	v := m.View()
	for _, want := range []string{"✓ Correct!", "+10/10", "Good call", "Scrubbing absorbs", "Continuing shortly", "f: feedback details"} {
		if !strings.Contains(v, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestViewTabs(t *testing.T) {
	m := sized()
	m.SetTabs([]string{"Initial Access", "Exfiltration"}, 1, "Data leaves through DNS")
	m.SetViewModel(baseVM())
	v := m.View()
	for _, want := range []string{"1 Initial Access", "2 Exfiltration", "Data leaves through DNS", "tab: next part"} {
		if !strings.Contains(v, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestViewComplete(t *testing.T) {
	m := sized()
	vm := baseVM()
	vm.State = sim.Complete
	vm.NextVisible = false
	vm.CompleteVisible = true
	m.SetViewModel(vm)
	if v := m.View(); !strings.Contains(v, "c: complete scenario") {
		t.Error("exhausted timeline should offer completion")
	}
}
