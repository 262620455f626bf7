package charts

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/irsim/irsim/internal/sim"
)

func TestSparkline(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		width  int
		scale  Scale
		want   string
	}{
		{"empty", nil, 4, Percent, "    "},
		{"fixed scale", []float64{0, 50, 100}, 3, Percent, "▁▅█"},
		{"left padded", []float64{100}, 3, Percent, "  █"},
		{"keeps newest", []float64{0, 0, 100, 100}, 2, Percent, "██"},
		{"auto scale", []float64{0, 10}, 2, Scale{}, "▁█"},
		{"flat zero", []float64{0, 0}, 2, Scale{}, "▁▁"},
		{"clamped", []float64{150, -5}, 2, Percent, "█▁"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sparkline(tt.values, tt.width, tt.scale)
			if got != tt.want {
				t.Errorf("Sparkline(%v) = %q, want %q", tt.values, got, tt.want)
			}
			if n := utf8.RuneCountInString(got); n != tt.width {
				t.Errorf("width = %d, want %d", n, tt.width)
			}
		})
	}
}

func TestViewShowsLabelsAndLatest(t *testing.T) {
	m := New()
	m.Width = 40
	m.Charts = []sim.ChartView{
		{Label: "CPU Usage (%)", Values: []float64{10, 20}, Latest: "20%"},
		{Label: "Inbound Connections", Values: []float64{1000, 2000}, Latest: "2,000"},
	}
	v := m.View()
	for _, want := range []string{"CPU Usage (%)", "20%", "Inbound Connections", "2,000"} {
		if !strings.Contains(v, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestViewEmpty(t *testing.T) {
	if v := New().View(); !strings.Contains(v, "No metrics yet") {
		t.Error("empty panel should say so")
	}
}
