// Package metrics keeps the bounded time series charted beside the event
// feed: CPU, memory and inbound connection count.
package metrics

import (
	"time"

	"github.com/irsim/irsim/internal/client"
)

// DefaultCapacity is the number of samples kept per series.
const DefaultCapacity = 20

// Sample is a single charted point.
type Sample struct {
	At    time.Time
	Value float64
}

// Series is a FIFO buffer of samples that evicts the oldest sample once
// capacity is exceeded.
type Series struct {
	Label    string
	capacity int
	samples  []Sample
}

// NewSeries creates an empty series. A non-positive capacity falls back to
// DefaultCapacity.
func NewSeries(label string, capacity int) *Series {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Series{Label: label, capacity: capacity}
}

// Push appends a sample, evicting from the front when over capacity.
func (s *Series) Push(at time.Time, v float64) {
	s.samples = append(s.samples, Sample{At: at, Value: v})
	if over := len(s.samples) - s.capacity; over > 0 {
		s.samples = append(s.samples[:0:0], s.samples[over:]...)
	}
}

// Len returns the number of buffered samples.
func (s *Series) Len() int { return len(s.samples) }

// Cap returns the series capacity.
func (s *Series) Cap() int { return s.capacity }

// Samples returns a copy of the buffered samples, oldest first.
func (s *Series) Samples() []Sample {
	out := make([]Sample, len(s.samples))
	copy(out, s.samples)
	return out
}

// Values returns the sample values, oldest first.
func (s *Series) Values() []float64 {
	out := make([]float64, len(s.samples))
	for i, smp := range s.samples {
		out[i] = smp.Value
	}
	return out
}

// Latest returns the newest sample.
func (s *Series) Latest() (Sample, bool) {
	if len(s.samples) == 0 {
		return Sample{}, false
	}
	return s.samples[len(s.samples)-1], true
}

// Reset drops every sample.
func (s *Series) Reset() { s.samples = nil }

// Set groups the three charted series.
type Set struct {
	CPU         *Series
	Memory      *Series
	Connections *Series
}

// NewSet creates the three empty series with the given capacity.
func NewSet(capacity int) *Set {
	return &Set{
		CPU:         NewSeries("CPU Usage (%)", capacity),
		Memory:      NewSeries("Memory Usage (%)", capacity),
		Connections: NewSeries("Inbound Connections", capacity),
	}
}

// All returns the series in display order.
func (s *Set) All() []*Series {
	return []*Series{s.CPU, s.Memory, s.Connections}
}

// Observe records one sample per field present in the snapshot and reports
// whether anything was recorded.
func (s *Set) Observe(at time.Time, m *client.Metrics) bool {
	if m == nil {
		return false
	}
	recorded := false
	if m.CPUUsage != nil {
		s.CPU.Push(at, *m.CPUUsage)
		recorded = true
	}
	if m.MemoryUsage != nil {
		s.Memory.Push(at, *m.MemoryUsage)
		recorded = true
	}
	if m.InboundConnections != nil {
		s.Connections.Push(at, float64(*m.InboundConnections))
		recorded = true
	}
	return recorded
}

// Reset clears every series.
func (s *Set) Reset() {
	for _, series := range s.All() {
		series.Reset()
	}
}
