package mockapi

import (
	"errors"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/irsim/irsim/internal/client"
)

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrScenarioNotFound = errors.New("scenario not found")
	ErrUnknownDecision  = errors.New("unknown decision")
	ErrUnknownOption    = errors.New("unknown option")
	ErrAlreadyAnswered  = errors.New("decision already made")
	// ErrDecisionPending carries the exact message clients match on.
	ErrDecisionPending = errors.New(client.DecisionRequiredMessage)
)

// run is the server side of one session: a cursor over a timeline and the
// answers given so far.
type run struct {
	id      string
	part    Part
	start   time.Time
	current int
	answers map[string]int
}

func (r *run) pending() *DecisionDef {
	d := r.part.Timeline[r.current].Decision
	if d == nil {
		return nil
	}
	if _, ok := r.answers[d.ID]; ok {
		return nil
	}
	return d
}

func (r *run) status() client.Status {
	var st client.Status
	for _, step := range r.part.Timeline {
		if step.Decision != nil {
			st.MaxScore += step.Decision.maxScore()
		}
	}
	for _, score := range r.answers {
		st.Score += score
	}
	return st
}

// Store holds live sessions.
type Store struct {
	mu      sync.Mutex
	catalog *Catalog
	runs    map[string]*run
	now     func() time.Time
}

func NewStore(c *Catalog) *Store {
	return &Store{
		catalog: c,
		runs:    make(map[string]*run),
		now:     time.Now,
	}
}

// Create starts a session on a scenario. The first step is revealed at once.
func (s *Store) Create(scenarioID string, subIndex *int) (string, error) {
	sc, ok := s.catalog.Get(scenarioID)
	if !ok {
		return "", ErrScenarioNotFound
	}
	part, err := sc.Part(subIndex)
	if err != nil {
		return "", err
	}
	r := &run{
		id:      uuid.NewString(),
		part:    part,
		start:   s.now(),
		answers: make(map[string]int),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[r.id] = r
	return r.id, nil
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.runs)
}

// Events returns the revealed events after since (negative means from the
// start), plus the decision blocking the current step if it is unanswered.
func (s *Store) Events(id string, since int) (client.EventBatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.runs[id]
	if !ok {
		return client.EventBatch{}, ErrSessionNotFound
	}

	batch := client.EventBatch{Events: []client.Event{}}
	for i := max(since+1, 0); i <= r.current; i++ {
		batch.Events = append(batch.Events, r.part.Timeline[i].Event.wire(r.start))
	}
	if d := r.pending(); d != nil {
		batch.DecisionPoint = d.wire()
	}
	batch.HasMore = r.current < len(r.part.Timeline)-1
	step := r.current
	batch.CurrentStep = &step
	return batch, nil
}

// Next reveals the following step. It refuses while a decision is open and
// is a no-op at the end of the timeline.
func (s *Store) Next(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.runs[id]
	if !ok {
		return ErrSessionNotFound
	}
	if r.pending() != nil {
		return ErrDecisionPending
	}
	if r.current < len(r.part.Timeline)-1 {
		r.current++
	}
	return nil
}

// Act records the answer to a revealed decision.
func (s *Store) Act(id, decisionID, optionID string) (client.Feedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.runs[id]
	if !ok {
		return client.Feedback{}, ErrSessionNotFound
	}

	var dec *DecisionDef
	for i := 0; i <= r.current; i++ {
		if d := r.part.Timeline[i].Decision; d != nil && d.ID == decisionID {
			dec = d
			break
		}
	}
	if dec == nil {
		return client.Feedback{}, ErrUnknownDecision
	}
	if _, done := r.answers[dec.ID]; done {
		return client.Feedback{}, ErrAlreadyAnswered
	}
	opt, ok := dec.option(optionID)
	if !ok {
		return client.Feedback{}, ErrUnknownOption
	}

	r.answers[dec.ID] = opt.Score
	best := dec.maxScore()
	return client.Feedback{
		Correct:     opt.Score >= best,
		Feedback:    opt.Feedback,
		Explanation: opt.Explanation,
		Score:       opt.Score,
		MaxScore:    best,
	}, nil
}

// Status returns the running score.
func (s *Store) Status(id string) (client.Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.runs[id]
	if !ok {
		return client.Status{}, ErrSessionNotFound
	}
	return r.status(), nil
}

// Complete returns the final report for a session.
func (s *Store) Complete(id string) (client.CompletionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.runs[id]
	if !ok {
		return client.CompletionResult{}, ErrSessionNotFound
	}

	st := r.status()
	pct := 0.0
	if st.MaxScore > 0 {
		pct = math.Round(float64(st.Score)/float64(st.MaxScore)*1000) / 10
	}
	res := client.CompletionResult{
		Score:      st.Score,
		MaxScore:   st.MaxScore,
		Percentage: &pct,
	}
	if len(r.part.Recommendations) > 0 {
		res.Recommendations = make(client.Recommendations, len(r.part.Recommendations))
		for category, items := range r.part.Recommendations {
			for _, it := range items {
				res.Recommendations[category] = append(res.Recommendations[category], client.Recommendation{
					Title:       it.Title,
					Priority:    it.Priority,
					Description: it.Description,
				})
			}
		}
	}
	return res, nil
}
