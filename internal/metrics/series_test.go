package metrics

import (
	"testing"
	"time"

	"github.com/irsim/irsim/internal/client"
)

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

func TestSeriesCapacityFIFO(t *testing.T) {
	s := NewSeries("cpu", 20)
	base := time.Unix(0, 0)
	for i := 0; i < 35; i++ {
		s.Push(base.Add(time.Duration(i)*time.Second), float64(i))
		if s.Len() > 20 {
			t.Fatalf("after %d pushes Len() = %d, exceeds capacity", i+1, s.Len())
		}
	}

	vals := s.Values()
	if len(vals) != 20 {
		t.Fatalf("expected 20 samples, got %d", len(vals))
	}
	if vals[0] != 15 {
		t.Errorf("oldest sample = %v, want 15", vals[0])
	}
	if vals[19] != 34 {
		t.Errorf("newest sample = %v, want 34", vals[19])
	}
}

func TestSeriesDefaultCapacity(t *testing.T) {
	s := NewSeries("x", 0)
	if s.Cap() != DefaultCapacity {
		t.Errorf("Cap() = %d, want %d", s.Cap(), DefaultCapacity)
	}
}

func TestSeriesLatestAndReset(t *testing.T) {
	s := NewSeries("mem", 3)
	if _, ok := s.Latest(); ok {
		t.Fatal("empty series should have no latest sample")
	}
	s.Push(time.Now(), 10)
	s.Push(time.Now(), 20)
	latest, ok := s.Latest()
	if !ok || latest.Value != 20 {
		t.Errorf("Latest() = %v, %v; want 20, true", latest.Value, ok)
	}
	s.Reset()
	if s.Len() != 0 {
		t.Errorf("Len() after Reset = %d", s.Len())
	}
}

func TestSamplesReturnsCopy(t *testing.T) {
	s := NewSeries("x", 5)
	s.Push(time.Now(), 1)
	got := s.Samples()
	got[0].Value = 99
	if v, _ := s.Latest(); v.Value != 1 {
		t.Error("mutating Samples() result changed the series")
	}
}

func TestSetObserve(t *testing.T) {
	tests := []struct {
		name            string
		snap            *client.Metrics
		wantRecorded    bool
		cpu, mem, conns int
	}{
		{"nil snapshot", nil, false, 0, 0, 0},
		{"empty snapshot", &client.Metrics{}, false, 0, 0, 0},
		{"cpu only", &client.Metrics{CPUUsage: floatPtr(45)}, true, 1, 0, 0},
		{
			"all fields",
			&client.Metrics{CPUUsage: floatPtr(90), MemoryUsage: floatPtr(70), InboundConnections: intPtr(15000)},
			true, 1, 1, 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := NewSet(20)
			if got := set.Observe(time.Now(), tt.snap); got != tt.wantRecorded {
				t.Errorf("Observe() = %v, want %v", got, tt.wantRecorded)
			}
			if set.CPU.Len() != tt.cpu || set.Memory.Len() != tt.mem || set.Connections.Len() != tt.conns {
				t.Errorf("lens = %d/%d/%d, want %d/%d/%d",
					set.CPU.Len(), set.Memory.Len(), set.Connections.Len(), tt.cpu, tt.mem, tt.conns)
			}
		})
	}
}

func TestSetReset(t *testing.T) {
	set := NewSet(20)
	set.Observe(time.Now(), &client.Metrics{CPUUsage: floatPtr(1), MemoryUsage: floatPtr(2), InboundConnections: intPtr(3)})
	set.Reset()
	for _, s := range set.All() {
		if s.Len() != 0 {
			t.Errorf("%s not cleared", s.Label)
		}
	}
}
