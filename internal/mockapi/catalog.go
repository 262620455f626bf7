package mockapi

import (
	_ "embed"
	"fmt"
	"time"

	"github.com/irsim/irsim/internal/client"
	"gopkg.in/yaml.v3"
)

//go:embed scenarios.yaml
var defaultCatalog []byte

// Step is one position on a timeline.
type Step struct {
	Event    EventDef     `yaml:"event"`
	Decision *DecisionDef `yaml:"decision,omitempty"`
}

// EventDef is a scripted event. Offset is added to the session start time to
// produce the event timestamp.
type EventDef struct {
	ID          string          `yaml:"id"`
	Type        string          `yaml:"type,omitempty"`
	Title       string          `yaml:"title"`
	Description string          `yaml:"description"`
	Severity    client.Severity `yaml:"severity,omitempty"`
	Source      string          `yaml:"source"`
	Offset      time.Duration   `yaml:"offset"`
	LogEntry    string          `yaml:"log_entry,omitempty"`
	Metrics     *MetricsDef     `yaml:"metrics,omitempty"`
}

type MetricsDef struct {
	CPUUsage           *float64 `yaml:"cpu_usage,omitempty"`
	MemoryUsage        *float64 `yaml:"memory_usage,omitempty"`
	InboundConnections *int     `yaml:"inbound_connections,omitempty"`
}

type DecisionDef struct {
	ID          string      `yaml:"id"`
	Description string      `yaml:"description"`
	MaxScore    int         `yaml:"max_score,omitempty"`
	Options     []OptionDef `yaml:"options"`
}

type OptionDef struct {
	ID          string `yaml:"id"`
	Text        string `yaml:"text"`
	Score       int    `yaml:"score"`
	Feedback    string `yaml:"feedback"`
	Explanation string `yaml:"explanation,omitempty"`
}

type RecommendationDef struct {
	Title       string `yaml:"title"`
	Priority    string `yaml:"priority,omitempty"`
	Description string `yaml:"description,omitempty"`
}

// Part is a runnable timeline: a whole scenario or one sub-scenario.
type Part struct {
	Name            string                         `yaml:"name"`
	Description     string                         `yaml:"description,omitempty"`
	Timeline        []Step                         `yaml:"timeline"`
	Recommendations map[string][]RecommendationDef `yaml:"recommendations,omitempty"`
}

// ScenarioDef is a catalog entry. Scenarios either carry a timeline directly
// or are split into sub-scenarios.
type ScenarioDef struct {
	ID              string                         `yaml:"id"`
	Name            string                         `yaml:"name"`
	Type            string                         `yaml:"type"`
	Description     string                         `yaml:"description"`
	Timeline        []Step                         `yaml:"timeline,omitempty"`
	SubScenarios    []Part                         `yaml:"sub_scenarios,omitempty"`
	Recommendations map[string][]RecommendationDef `yaml:"recommendations,omitempty"`
}

// Part returns the timeline a session runs. index is ignored for scenarios
// without sub-scenarios.
func (s *ScenarioDef) Part(index *int) (Part, error) {
	if len(s.SubScenarios) == 0 {
		return Part{Name: s.Name, Timeline: s.Timeline, Recommendations: s.Recommendations}, nil
	}
	i := 0
	if index != nil {
		i = *index
	}
	if i < 0 || i >= len(s.SubScenarios) {
		return Part{}, fmt.Errorf("sub-scenario index %d out of range", i)
	}
	return s.SubScenarios[i], nil
}

// Summary is the list form of the scenario.
func (s *ScenarioDef) Summary() client.Scenario {
	sc := client.Scenario{ID: s.ID, Name: s.Name, Type: s.Type, Description: s.Description}
	for _, sub := range s.SubScenarios {
		sc.SubScenarios = append(sc.SubScenarios, client.SubScenarioInfo{Name: sub.Name, Description: sub.Description})
	}
	return sc
}

// Catalog is the set of scenarios a server offers, in file order.
type Catalog struct {
	Scenarios []ScenarioDef `yaml:"scenarios"`
}

// Get looks a scenario up by id.
func (c *Catalog) Get(id string) (*ScenarioDef, bool) {
	for i := range c.Scenarios {
		if c.Scenarios[i].ID == id {
			return &c.Scenarios[i], true
		}
	}
	return nil, false
}

// ParseCatalog decodes and validates a YAML catalog.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// DefaultCatalog returns the embedded catalog.
func DefaultCatalog() *Catalog {
	c, err := ParseCatalog(defaultCatalog)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Catalog) validate() error {
	seen := make(map[string]bool)
	for _, s := range c.Scenarios {
		if s.ID == "" {
			return fmt.Errorf("scenario %q has no id", s.Name)
		}
		if seen[s.ID] {
			return fmt.Errorf("duplicate scenario id %q", s.ID)
		}
		seen[s.ID] = true

		parts := s.SubScenarios
		if len(parts) == 0 {
			parts = []Part{{Name: s.Name, Timeline: s.Timeline}}
		}
		for _, p := range parts {
			if len(p.Timeline) == 0 {
				return fmt.Errorf("scenario %q: %q has an empty timeline", s.ID, p.Name)
			}
			for i, st := range p.Timeline {
				if st.Decision != nil && len(st.Decision.Options) == 0 {
					return fmt.Errorf("scenario %q: decision at step %d has no options", s.ID, i)
				}
			}
		}
	}
	return nil
}

func (e EventDef) wire(start time.Time) client.Event {
	ev := client.Event{
		ID:          e.ID,
		Type:        e.Type,
		Title:       e.Title,
		Description: e.Description,
		Severity:    e.Severity,
		Source:      e.Source,
		Timestamp:   start.Add(e.Offset).UTC().Format(time.RFC3339),
		LogEntry:    e.LogEntry,
	}
	if e.Metrics != nil {
		ev.Metrics = &client.Metrics{
			CPUUsage:           e.Metrics.CPUUsage,
			MemoryUsage:        e.Metrics.MemoryUsage,
			InboundConnections: e.Metrics.InboundConnections,
		}
	}
	return ev
}

// maxScore is the declared maximum, or the best option's score.
func (d *DecisionDef) maxScore() int {
	if d.MaxScore > 0 {
		return d.MaxScore
	}
	best := 0
	for _, o := range d.Options {
		best = max(best, o.Score)
	}
	return best
}

func (d *DecisionDef) option(id string) (OptionDef, bool) {
	for _, o := range d.Options {
		if o.ID == id {
			return o, true
		}
	}
	return OptionDef{}, false
}

func (d *DecisionDef) wire() *client.DecisionPoint {
	dp := &client.DecisionPoint{ID: d.ID, Description: d.Description, MaxScore: d.MaxScore}
	for _, o := range d.Options {
		dp.Options = append(dp.Options, client.Option{
			ID:          o.ID,
			Text:        o.Text,
			Score:       o.Score,
			Feedback:    o.Feedback,
			Explanation: o.Explanation,
		})
	}
	return dp
}
