package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/irsim/irsim/internal/client"
)

type fakeLister struct {
	list  []client.Scenario
	err   error
	calls int
}

func (f *fakeLister) ListScenarios(ctx context.Context) ([]client.Scenario, error) {
	f.calls++
	return f.list, f.err
}

func TestReplaceKeepsOrder(t *testing.T) {
	c := New()
	c.Replace([]client.Scenario{
		{ID: "b", Name: "Breach"},
		{ID: "a", Name: "DDoS"},
		{ID: "", Name: "Broken"},
		{ID: "b", Name: "Breach v2"},
	})
	list := c.List()
	if len(list) != 2 || list[0].ID != "b" || list[1].ID != "a" {
		t.Fatalf("List() = %+v", list)
	}
	if list[0].Name != "Breach v2" {
		t.Errorf("duplicate id should keep the last definition, got %q", list[0].Name)
	}
}

func TestPut(t *testing.T) {
	c := New()
	c.Replace([]client.Scenario{{ID: "a", Name: "DDoS"}})
	c.Put(client.Scenario{ID: "a", Name: "DDoS", SubScenarios: []client.SubScenarioInfo{{Name: "x"}}})
	c.Put(client.Scenario{ID: "z", Name: "Ransomware"})
	if c.Len() != 2 {
		t.Fatalf("Len() = %d", c.Len())
	}
	if sc, _ := c.Get("a"); !sc.HasSubScenarios() {
		t.Error("Put should refresh the cached scenario")
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name      string
		cached    []client.Scenario
		remote    []client.Scenario
		remoteErr error
		id        string
		scName    string
		wantID    string
		wantErr   error
		wantCalls int
	}{
		{
			name:   "by id",
			cached: []client.Scenario{{ID: "ddos", Name: "DDoS"}},
			id:     "ddos",
			wantID: "ddos",
		},
		{
			name:   "by cached name",
			cached: []client.Scenario{{ID: "ddos-2", Name: "DDoS"}},
			id:     "ddos",
			scName: "DDoS",
			wantID: "ddos-2",
		},
		{
			name:      "by name after reload",
			remote:    []client.Scenario{{ID: "r1", Name: "Ransomware"}},
			id:        "gone",
			scName:    "Ransomware",
			wantID:    "r1",
			wantCalls: 1,
		},
		{
			name:      "not found",
			remote:    []client.Scenario{{ID: "r1", Name: "Ransomware"}},
			id:        "gone",
			scName:    "Gone",
			wantErr:   ErrScenarioNotFound,
			wantCalls: 1,
		},
		{
			name:      "reload fails",
			remoteErr: errors.New("boom"),
			id:        "gone",
			wantErr:   errors.New("boom"),
			wantCalls: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New()
			c.Replace(tt.cached)
			l := &fakeLister{list: tt.remote, err: tt.remoteErr}
			sc, err := c.Resolve(context.Background(), l, tt.id, tt.scName)
			switch {
			case tt.wantErr == ErrScenarioNotFound:
				if !errors.Is(err, ErrScenarioNotFound) {
					t.Fatalf("err = %v, want ErrScenarioNotFound", err)
				}
			case tt.wantErr != nil:
				if err == nil {
					t.Fatal("expected an error")
				}
			default:
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if sc.ID != tt.wantID {
					t.Errorf("resolved %q, want %q", sc.ID, tt.wantID)
				}
			}
			if l.calls != tt.wantCalls {
				t.Errorf("ListScenarios called %d times, want %d", l.calls, tt.wantCalls)
			}
		})
	}
}

func TestTabs(t *testing.T) {
	tabs := NewTabs(client.Scenario{SubScenarios: []client.SubScenarioInfo{
		{Name: "Scenario 1: Initial Access", Description: "Phish"},
		{Name: "Scenario 2: Lateral Movement", Description: "Pivot"},
		{Name: "Cleanup"},
	}})
	labels := tabs.Labels()
	want := []string{"Initial Access", "Lateral Movement", "Cleanup"}
	for i := range want {
		if labels[i] != want[i] {
			t.Errorf("label %d = %q, want %q", i, labels[i], want[i])
		}
	}
	if tabs.Active() != 0 || tabs.Description() != "Phish" {
		t.Errorf("initial tab = %d %q", tabs.Active(), tabs.Description())
	}
	if tabs.Select(0) {
		t.Error("selecting the active tab should be a no-op")
	}
	if tabs.Select(3) {
		t.Error("out-of-range select should fail")
	}
	if !tabs.Select(1) || tabs.Description() != "Pivot" {
		t.Errorf("Select(1) -> %d %q", tabs.Active(), tabs.Description())
	}
	tabs.Next()
	tabs.Next()
	if tabs.Active() != 0 {
		t.Errorf("Next should wrap, got %d", tabs.Active())
	}
	tabs.Prev()
	if tabs.Active() != 2 {
		t.Errorf("Prev should wrap, got %d", tabs.Active())
	}
}

func TestTabsEmpty(t *testing.T) {
	tabs := NewTabs(client.Scenario{})
	if tabs.Active() != -1 || tabs.Len() != 0 || tabs.Next() || tabs.Description() != "" {
		t.Error("scenario without sub-scenarios should have an inert strip")
	}
}
