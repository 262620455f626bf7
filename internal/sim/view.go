package sim

import (
	"sort"
	"strconv"
	"strings"

	"github.com/irsim/irsim/internal/client"
	"github.com/irsim/irsim/internal/format"
	"github.com/irsim/irsim/internal/metrics"
)

// DefaultMaxScore is shown when the API reports no maximum.
const DefaultMaxScore = 10

// DefaultRecommendation is shown on the completion screen when the API sends
// no recommendations.
const DefaultRecommendation = "Great job completing this scenario! Review your decision and consider how you could improve your response time and accuracy."

// EventView is a rendered event with all text sanitized.
type EventView struct {
	ID          string
	Title       string
	Source      string
	Time        string
	Description string
	LogEntry    string
	Severity    client.Severity
}

// OptionView is one selectable answer.
type OptionView struct {
	ID   string
	Text string
}

// DecisionView is the decision prompt.
type DecisionView struct {
	ID          string
	Description string
	Options     []OptionView
	Submitting  bool
}

// FeedbackView is the inline feedback shown after a submission.
type FeedbackView struct {
	Correct     bool
	Headline    string
	Message     string
	Explanation string
	Score       int
	MaxScore    int
}

// ChartView is one metric series ready to draw.
type ChartView struct {
	Label  string
	Values []float64
	Latest string
}

// ViewModel is everything the simulation and completion screens render.
type ViewModel struct {
	State           State
	SessionID       string
	Title           string
	Events          []EventView
	Decision        *DecisionView
	Feedback        *FeedbackView
	NextVisible     bool
	CompleteVisible bool
	Waiting         bool
	Score           int
	MaxScore        int
	ScoreFraction   float64
	HasScore        bool
	Charts          []ChartView
	Summary         *SummaryView
}

// Project builds the view model for the machine's active session.
func Project(m *Machine) ViewModel {
	s := m.Session()
	if s == nil {
		return ViewModel{State: Idle}
	}
	vm := ViewModel{
		State:           s.state,
		SessionID:       s.id,
		Title:           format.Sanitize(s.scenario.Name),
		NextVisible:     s.state == Streaming && s.hasMore && !s.cursor.HasPending,
		CompleteVisible: m.CanComplete(),
		Waiting:         s.busy || s.submitting,
	}
	if s.subIndex >= 0 && s.subIndex < len(s.scenario.SubScenarios) {
		vm.Title += " — " + format.Sanitize(format.TabLabel(s.scenario.SubScenarios[s.subIndex].Name))
	}

	vm.Events = make([]EventView, 0, len(s.events))
	for _, e := range s.events {
		vm.Events = append(vm.Events, projectEvent(e))
	}

	if dp := s.decision; dp != nil {
		dv := &DecisionView{
			ID:          dp.ID,
			Description: format.Sanitize(dp.Description),
			Submitting:  s.submitting,
		}
		for _, o := range dp.Options {
			dv.Options = append(dv.Options, OptionView{ID: o.ID, Text: format.Sanitize(o.Text)})
		}
		vm.Decision = dv
	}

	if s.showFeedback && s.resolution != nil {
		vm.Feedback = projectFeedback(s.resolution)
	}

	if st, ok := s.Status(); ok {
		vm.HasScore = true
		vm.Score = st.Score
		vm.MaxScore = st.MaxScore
		vm.ScoreFraction = format.Percentage(st.Score, st.MaxScore) / 100
	}

	vm.Charts = projectCharts(s.metrics)

	if s.summary != nil {
		sv := ProjectSummary(*s.summary)
		vm.Summary = &sv
	}
	return vm
}

func projectEvent(e client.Event) EventView {
	return EventView{
		ID:          e.ID,
		Title:       format.SanitizeOr(e.Title, "Event"),
		Source:      format.SanitizeOr(e.Source, "Unknown"),
		Time:        format.Timestamp(e.Timestamp),
		Description: format.Sanitize(e.Description),
		LogEntry:    format.Sanitize(e.LogEntry),
		Severity:    e.Severity.OrDefault(),
	}
}

func projectFeedback(r *Resolution) *FeedbackView {
	fb := r.Feedback
	explanation := fb.Explanation
	if explanation == "" {
		if opt, ok := r.Decision.Option(r.OptionID); ok {
			explanation = opt.Explanation
		}
	}
	headline := "✗ Incorrect"
	if fb.Correct {
		headline = "✓ Correct!"
	}
	return &FeedbackView{
		Correct:     fb.Correct,
		Headline:    headline,
		Message:     format.Sanitize(fb.Feedback),
		Explanation: format.Sanitize(explanation),
		Score:       fb.Score,
		MaxScore:    fb.MaxScore,
	}
}

func projectCharts(set *metrics.Set) []ChartView {
	out := make([]ChartView, 0, 3)
	for _, series := range set.All() {
		cv := ChartView{Label: series.Label, Values: series.Values(), Latest: "—"}
		if latest, ok := series.Latest(); ok {
			if series == set.Connections {
				cv.Latest = format.Count(int(latest.Value))
			} else {
				cv.Latest = strconv.FormatFloat(latest.Value, 'f', -1, 64) + "%"
			}
		}
		out = append(out, cv)
	}
	return out
}

// OptionDetail is one row of the feedback detail comparison.
type OptionDetail struct {
	ID          string
	Text        string
	Feedback    string
	Explanation string
	Score       int
	Label       string
	Selected    bool
}

// FeedbackDetailView is the detailed analysis of a resolved decision.
type FeedbackDetailView struct {
	Selected     *OptionDetail
	AwardedScore int
	MaxScore     int
	Options      []OptionDetail
}

// ScoreLabel grades an option score.
func ScoreLabel(score int) string {
	switch {
	case score >= 8:
		return "Optimal/Strong"
	case score >= 5:
		return "Partial"
	default:
		return "Incorrect"
	}
}

// ProjectFeedbackDetail builds the feedback detail modal content: the chosen
// option followed by every option sorted by score, highest first.
func ProjectFeedbackDetail(r *Resolution) *FeedbackDetailView {
	if r == nil {
		return nil
	}
	maxScore := r.Feedback.MaxScore
	if maxScore == 0 {
		maxScore = r.Decision.MaxScore
	}
	if maxScore == 0 {
		maxScore = DefaultMaxScore
	}

	selected, hasSelected := r.Decision.Option(r.OptionID)
	awarded := r.Feedback.Score

	dv := &FeedbackDetailView{AwardedScore: awarded, MaxScore: maxScore}

	opts := make([]client.Option, len(r.Decision.Options))
	copy(opts, r.Decision.Options)
	sort.SliceStable(opts, func(i, j int) bool { return opts[i].Score > opts[j].Score })

	for _, o := range opts {
		isSel := hasSelected && o.ID == selected.ID
		score := o.Score
		if isSel {
			score = awarded
		}
		d := OptionDetail{
			ID:          o.ID,
			Text:        format.Sanitize(o.Text),
			Feedback:    format.SanitizeOr(o.Feedback, "No feedback available"),
			Explanation: format.Sanitize(o.Explanation),
			Score:       score,
			Label:       ScoreLabel(score),
			Selected:    isSel,
		}
		if isSel {
			sel := d
			dv.Selected = &sel
		}
		dv.Options = append(dv.Options, d)
	}
	return dv
}

// RecommendationView is one recommendation line.
type RecommendationView struct {
	Title       string
	Priority    string
	Description string
}

// CategoryView groups recommendations under a heading.
type CategoryView struct {
	Title string
	Items []RecommendationView
}

// SummaryView is the completion screen content.
type SummaryView struct {
	Score          int
	MaxScore       int
	Percentage     int
	Categories     []CategoryView
	DefaultMessage string
}

// ProjectSummary builds the completion screen content. The percentage comes
// from the payload when present and is computed otherwise.
func ProjectSummary(res client.CompletionResult) SummaryView {
	maxScore := res.MaxScore
	if maxScore == 0 {
		maxScore = DefaultMaxScore
	}
	pct := format.Percentage(res.Score, res.MaxScore)
	if res.Percentage != nil {
		pct = *res.Percentage
	}
	sv := SummaryView{
		Score:      res.Score,
		MaxScore:   maxScore,
		Percentage: int(pct + 0.5),
	}
	if len(res.Recommendations) == 0 {
		sv.DefaultMessage = DefaultRecommendation
		return sv
	}
	for _, cat := range res.Recommendations.Categories() {
		cv := CategoryView{Title: CategoryTitle(cat)}
		for _, r := range res.Recommendations[cat] {
			cv.Items = append(cv.Items, RecommendationView{
				Title:       format.Sanitize(r.Title),
				Priority:    format.Sanitize(r.Priority),
				Description: format.Sanitize(r.Description),
			})
		}
		sv.Categories = append(sv.Categories, cv)
	}
	return sv
}

// CategoryTitle turns "initial_response" into "Initial response".
func CategoryTitle(category string) string {
	category = format.Sanitize(strings.ReplaceAll(category, "_", " "))
	if category == "" {
		return ""
	}
	r := []rune(category)
	return strings.ToUpper(string(r[0])) + string(r[1:])
}
