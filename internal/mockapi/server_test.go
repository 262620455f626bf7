package mockapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/irsim/irsim/internal/client"
)

func newTestClient(t *testing.T, serverToken, clientToken string) (*client.HTTPClient, *Server) {
	t.Helper()
	srv := NewServer(DefaultCatalog(), serverToken)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return client.NewHTTPClient(ts.URL+Prefix, clientToken, 0), srv
}

func eventIDs(b *client.EventBatch) []string {
	out := make([]string, 0, len(b.Events))
	for _, e := range b.Events {
		out = append(out, e.ID)
	}
	return out
}

func TestListScenarios(t *testing.T) {
	c, _ := newTestClient(t, "", "")
	list, err := c.ListScenarios(context.Background())
	if err != nil {
		t.Fatalf("ListScenarios: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("got %d scenarios, want 3", len(list))
	}
	want := []string{"ddos", "data_breach", "ransomware"}
	for i, id := range want {
		if list[i].ID != id {
			t.Errorf("scenario %d = %q, want %q", i, list[i].ID, id)
		}
	}
	if n := len(list[1].SubScenarios); n != 2 {
		t.Errorf("data_breach has %d sub-scenarios, want 2", n)
	}
	if list[0].HasSubScenarios() {
		t.Error("ddos should not be split")
	}
}

func TestGetScenarioNotFound(t *testing.T) {
	c, _ := newTestClient(t, "", "")
	_, err := c.GetScenario(context.Background(), "nope")
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", apiErr.StatusCode)
	}
}

func TestDDoSTimeline(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestClient(t, "", "")

	sid, err := c.CreateSession(ctx, "ddos", nil)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	b, err := c.FetchEvents(ctx, sid, -1)
	if err != nil {
		t.Fatalf("FetchEvents: %v", err)
	}
	if len(b.Events) != 1 || !b.HasMore || b.DecisionPoint != nil || *b.CurrentStep != 0 {
		t.Fatalf("first batch = %+v", b)
	}
	if b.Events[0].Metrics == nil || *b.Events[0].Metrics.InboundConnections != 4210 {
		t.Errorf("metrics not carried: %+v", b.Events[0].Metrics)
	}

	if err := c.Advance(ctx, sid); err != nil {
		t.Fatalf("Advance: %v", err)
	}
	b, _ = c.FetchEvents(ctx, sid, -1)
	if got := eventIDs(b); len(got) != 2 || got[1] != "ddos-2" {
		t.Fatalf("events = %v", got)
	}
	if b.DecisionPoint == nil || b.DecisionPoint.ID != "ddos-d1" {
		t.Fatalf("decision = %+v", b.DecisionPoint)
	}

	if err := c.Advance(ctx, sid); !errors.Is(err, client.ErrDecisionRequired) {
		t.Fatalf("Advance with open decision: got %v, want ErrDecisionRequired", err)
	}

	fb, err := c.SubmitDecision(ctx, sid, "ddos-d1", "ddos-d1-b")
	if err != nil {
		t.Fatalf("SubmitDecision: %v", err)
	}
	if fb.Correct || fb.Score != 5 || fb.MaxScore != 10 {
		t.Errorf("feedback = %+v", fb)
	}

	st, _ := c.Status(ctx, sid)
	if st.Score != 5 || st.MaxScore != 20 {
		t.Errorf("status = %+v, want 5/20", st)
	}

	// The decision step is the watermark from here on.
	if err := c.Advance(ctx, sid); err != nil {
		t.Fatalf("Advance after decision: %v", err)
	}
	b, _ = c.FetchEvents(ctx, sid, 1)
	if got := eventIDs(b); len(got) != 1 || got[0] != "ddos-3" {
		t.Fatalf("events since 1 = %v", got)
	}
	if b.DecisionPoint != nil {
		t.Error("answered decision re-sent")
	}

	c.Advance(ctx, sid)
	b, _ = c.FetchEvents(ctx, sid, 1)
	if b.DecisionPoint == nil || b.DecisionPoint.ID != "ddos-d2" {
		t.Fatalf("second decision = %+v", b.DecisionPoint)
	}
	if _, err := c.SubmitDecision(ctx, sid, "ddos-d2", "ddos-d2-a"); err != nil {
		t.Fatalf("SubmitDecision: %v", err)
	}
	c.Advance(ctx, sid)
	b, _ = c.FetchEvents(ctx, sid, 3)
	if b.HasMore || b.DecisionPoint != nil {
		t.Fatalf("final batch = %+v", b)
	}

	res, err := c.Complete(ctx, sid)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if res.Score != 15 || res.MaxScore != 20 || res.Percentage == nil || *res.Percentage != 75 {
		t.Errorf("result = %+v", res)
	}
	if len(res.Recommendations["network_defense"]) != 2 {
		t.Errorf("recommendations = %+v", res.Recommendations)
	}
}

func TestAdvanceAtEndIsNoop(t *testing.T) {
	ctx := context.Background()
	c, srv := newTestClient(t, "", "")
	sid, _ := c.CreateSession(ctx, "ransomware", nil)

	c.Advance(ctx, sid)
	if _, err := c.SubmitDecision(ctx, sid, "rw-d1", "rw-d1-a"); err != nil {
		t.Fatal(err)
	}
	for range 3 {
		if err := c.Advance(ctx, sid); err != nil {
			t.Fatalf("Advance: %v", err)
		}
	}
	b, _ := c.FetchEvents(ctx, sid, -1)
	if len(b.Events) != 3 || b.HasMore {
		t.Errorf("events = %v has_more=%t", eventIDs(b), b.HasMore)
	}
	if srv.Store().Len() != 1 {
		t.Errorf("store has %d sessions", srv.Store().Len())
	}
}

func TestSubScenarioSessions(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestClient(t, "", "")

	tests := []struct {
		name    string
		index   int
		first   string
		wantErr bool
	}{
		{name: "first part", index: 0, first: "db1-1"},
		{name: "second part", index: 1, first: "db2-1"},
		{name: "out of range", index: 2, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx := tt.index
			sid, err := c.CreateSession(ctx, "data_breach", &idx)
			if tt.wantErr {
				var apiErr *client.APIError
				if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusBadRequest {
					t.Fatalf("got %v, want 400", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			b, _ := c.FetchEvents(ctx, sid, -1)
			if b.Events[0].ID != tt.first {
				t.Errorf("first event = %q, want %q", b.Events[0].ID, tt.first)
			}
		})
	}
}

func TestSubmitErrors(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestClient(t, "", "")
	sid, _ := c.CreateSession(ctx, "ddos", nil)
	c.Advance(ctx, sid)

	tests := []struct {
		name       string
		decision   string
		option     string
		wantErrMsg string
	}{
		{name: "unknown decision", decision: "ddos-d9", option: "x", wantErrMsg: ErrUnknownDecision.Error()},
		{name: "unrevealed decision", decision: "ddos-d2", option: "ddos-d2-a", wantErrMsg: ErrUnknownDecision.Error()},
		{name: "unknown option", decision: "ddos-d1", option: "nope", wantErrMsg: ErrUnknownOption.Error()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.SubmitDecision(ctx, sid, tt.decision, tt.option)
			if !errors.Is(err, client.ErrSubmission) {
				t.Fatalf("got %v, want ErrSubmission", err)
			}
			var apiErr *client.APIError
			errors.As(err, &apiErr)
			if apiErr.Message != tt.wantErrMsg {
				t.Errorf("message = %q, want %q", apiErr.Message, tt.wantErrMsg)
			}
		})
	}

	if _, err := c.SubmitDecision(ctx, sid, "ddos-d1", "ddos-d1-a"); err != nil {
		t.Fatal(err)
	}
	if _, err := c.SubmitDecision(ctx, sid, "ddos-d1", "ddos-d1-a"); !errors.Is(err, client.ErrSubmission) {
		t.Errorf("second answer: got %v, want ErrSubmission", err)
	}
}

func TestUnknownSession(t *testing.T) {
	c, _ := newTestClient(t, "", "")
	_, err := c.Status(context.Background(), "missing")
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusNotFound {
		t.Fatalf("got %v, want 404", err)
	}
}

func TestAuth(t *testing.T) {
	tests := []struct {
		name   string
		token  string
		wantOK bool
	}{
		{name: "matching token", token: "s3cret", wantOK: true},
		{name: "wrong token", token: "guess"},
		{name: "no token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, "s3cret", tt.token)
			_, err := c.ListScenarios(context.Background())
			if tt.wantOK {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var apiErr *client.APIError
			if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusUnauthorized {
				t.Fatalf("got %v, want 401", err)
			}
		})
	}
}

func TestSecurityHeaders(t *testing.T) {
	srv := NewServer(DefaultCatalog(), "")
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, Prefix+"/scenarios", nil)
	srv.Handler().ServeHTTP(rec, req)

	want := map[string]string{
		"X-Content-Type-Options": "nosniff",
		"Cache-Control":          "no-store",
		"Content-Type":           "application/json",
	}
	for header, expected := range want {
		if got := rec.Header().Get(header); got != expected {
			t.Errorf("header %s = %q, want %q", header, got, expected)
		}
	}
}
