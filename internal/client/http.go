package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultTimeout bounds every API request.
const DefaultTimeout = 10 * time.Second

// API is the scenario/session API consumed by the trainer.
type API interface {
	ListScenarios(ctx context.Context) ([]Scenario, error)
	GetScenario(ctx context.Context, id string) (*Scenario, error)
	CreateSession(ctx context.Context, scenarioID string, subIndex *int) (string, error)
	FetchEvents(ctx context.Context, sessionID string, since int) (*EventBatch, error)
	Advance(ctx context.Context, sessionID string) error
	SubmitDecision(ctx context.Context, sessionID, decisionID, optionID string) (*Feedback, error)
	Status(ctx context.Context, sessionID string) (*Status, error)
	Complete(ctx context.Context, sessionID string) (*CompletionResult, error)
}

// HTTPClient makes REST calls to the scenario API.
type HTTPClient struct {
	baseURL string
	token   string
	client  *http.Client
}

var _ API = (*HTTPClient)(nil)

// NewHTTPClient creates a client targeting the given base URL
// (e.g. "http://127.0.0.1:8000/api"). A zero timeout uses DefaultTimeout.
func NewHTTPClient(baseURL, token string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: timeout},
	}
}

// BaseURL returns the API prefix the client targets.
func (c *HTTPClient) BaseURL() string { return c.baseURL }

// ListScenarios fetches GET /scenarios.
func (c *HTTPClient) ListScenarios(ctx context.Context) ([]Scenario, error) {
	var out []Scenario
	if err := c.do(ctx, http.MethodGet, "/scenarios", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetScenario fetches GET /scenarios/{id}. The returned scenario always
// carries the requested id, even when the detail payload omits it.
func (c *HTTPClient) GetScenario(ctx context.Context, id string) (*Scenario, error) {
	var s Scenario
	if err := c.do(ctx, http.MethodGet, "/scenarios/"+url.PathEscape(id), nil, &s); err != nil {
		return nil, err
	}
	if s.ID == "" {
		s.ID = id
	}
	return &s, nil
}

// CreateSession sends POST /sessions. subIndex may be nil for scenarios
// without sub-scenarios.
func (c *HTTPClient) CreateSession(ctx context.Context, scenarioID string, subIndex *int) (string, error) {
	body := createSessionRequest{ScenarioID: scenarioID, SubScenarioIndex: subIndex}
	var out createSessionResponse
	if err := c.do(ctx, http.MethodPost, "/sessions", body, &out); err != nil {
		return "", err
	}
	if out.SessionID == "" {
		return "", fmt.Errorf("POST /sessions: response carried no session_id")
	}
	return out.SessionID, nil
}

// FetchEvents fetches GET /sessions/{id}/events. A negative since asks for
// the timeline from the start and omits the query parameter.
func (c *HTTPClient) FetchEvents(ctx context.Context, sessionID string, since int) (*EventBatch, error) {
	path := sessionPath(sessionID, "events")
	if since >= 0 {
		path += "?since=" + strconv.Itoa(since)
	}
	var out EventBatch
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Advance sends POST /sessions/{id}/next. It returns an error wrapping
// ErrDecisionRequired when a decision point is unresolved.
func (c *HTTPClient) Advance(ctx context.Context, sessionID string) error {
	err := c.do(ctx, http.MethodPost, sessionPath(sessionID, "next"), nil, nil)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message == DecisionRequiredMessage {
		apiErr.Kind = ErrDecisionRequired
	}
	return err
}

// SubmitDecision sends POST /sessions/{id}/action.
func (c *HTTPClient) SubmitDecision(ctx context.Context, sessionID, decisionID, optionID string) (*Feedback, error) {
	body := actionRequest{ActionID: decisionID, OptionID: optionID}
	var out Feedback
	if err := c.do(ctx, http.MethodPost, sessionPath(sessionID, "action"), body, &out); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			apiErr.Kind = ErrSubmission
		}
		return nil, err
	}
	return &out, nil
}

// Status fetches GET /sessions/{id}/status.
func (c *HTTPClient) Status(ctx context.Context, sessionID string) (*Status, error) {
	var out Status
	if err := c.do(ctx, http.MethodGet, sessionPath(sessionID, "status"), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Complete sends POST /sessions/{id}/complete.
func (c *HTTPClient) Complete(ctx context.Context, sessionID string) (*CompletionResult, error) {
	var out CompletionResult
	if err := c.do(ctx, http.MethodPost, sessionPath(sessionID, "complete"), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func sessionPath(sessionID, action string) string {
	return "/sessions/" + url.PathEscape(sessionID) + "/" + action
}

// do performs a request. Transport failures come back as *NetworkError and
// non-2xx responses as *APIError; out may be nil to discard the body.
func (c *HTTPClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	c.setAuth(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return &NetworkError{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return &APIError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(respBody),
		}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// errorMessage extracts the structured error text, falling back to the
// trimmed raw body.
func errorMessage(body []byte) string {
	var eb errorBody
	if json.Unmarshal(body, &eb) == nil && eb.Error != "" {
		return eb.Error
	}
	return strings.TrimSpace(string(body))
}

func (c *HTTPClient) setAuth(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}
