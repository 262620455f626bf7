package mockapi

import (
	"strings"
	"testing"
	"time"
)

func TestDefaultCatalog(t *testing.T) {
	c := DefaultCatalog()

	rw, ok := c.Get("ransomware")
	if !ok {
		t.Fatal("ransomware missing")
	}
	d := rw.Timeline[1].Decision
	if d == nil {
		t.Fatal("ransomware decision missing")
	}
	if got := d.maxScore(); got != 10 {
		t.Errorf("maxScore fallback = %d, want 10", got)
	}
	if rw.Timeline[1].Event.Type != "decision_point" {
		t.Errorf("type = %q", rw.Timeline[1].Event.Type)
	}

	ddos, _ := c.Get("ddos")
	if got := ddos.Timeline[2].Event.Offset; got != 2*time.Minute {
		t.Errorf("offset = %v, want 2m", got)
	}
}

func TestParseCatalogValidation(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "missing id",
			yaml:    "scenarios:\n  - name: x\n    timeline: [{event: {id: e}}]\n",
			wantErr: "has no id",
		},
		{
			name: "duplicate id",
			yaml: "scenarios:\n" +
				"  - id: a\n    timeline: [{event: {id: e}}]\n" +
				"  - id: a\n    timeline: [{event: {id: e}}]\n",
			wantErr: "duplicate",
		},
		{
			name:    "empty timeline",
			yaml:    "scenarios:\n  - id: a\n    sub_scenarios:\n      - name: one\n",
			wantErr: "empty timeline",
		},
		{
			name:    "decision without options",
			yaml:    "scenarios:\n  - id: a\n    timeline: [{event: {id: e}, decision: {id: d}}]\n",
			wantErr: "no options",
		},
		{
			name:    "bad yaml",
			yaml:    "scenarios: [",
			wantErr: "parse catalog",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(tt.yaml))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("got %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestPartSelection(t *testing.T) {
	c := DefaultCatalog()
	db, _ := c.Get("data_breach")

	p, err := db.Part(nil)
	if err != nil || p.Name != "Scenario 1: Initial Compromise" {
		t.Errorf("default part = %q, %v", p.Name, err)
	}
	two := 1
	p, _ = db.Part(&two)
	if p.Name != "Scenario 2: Data Exfiltration" {
		t.Errorf("part 1 = %q", p.Name)
	}

	sum := db.Summary()
	if len(sum.SubScenarios) != 2 || sum.SubScenarios[1].Description == "" {
		t.Errorf("summary = %+v", sum)
	}
}
