package client

import (
	"errors"
	"fmt"
)

// DecisionRequiredMessage is the error text the API returns when advancing
// while a decision point is unresolved.
const DecisionRequiredMessage = "Must make a decision first"

var (
	// ErrDecisionRequired is returned by Advance when a decision point must be
	// resolved first. It is recoverable.
	ErrDecisionRequired = errors.New("decision required before advancing")

	// ErrSubmission marks a rejected decision submission.
	ErrSubmission = errors.New("decision submission rejected")
)

// APIError is a non-2xx response from the API.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	// Message is the structured {"error": ...} text, or the raw body.
	Message string
	// Kind is an optional sentinel that classifies the failure.
	Kind error
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("%s %s: %d", e.Method, e.Path, e.StatusCode)
	if e.Message != "" {
		msg += " " + e.Message
	}
	return msg
}

// Unwrap exposes Kind to errors.Is.
func (e *APIError) Unwrap() error { return e.Kind }

// NetworkError is a transport failure: the request never produced a response.
type NetworkError struct {
	Method string
	Path   string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// IsNetwork reports whether err is a transport failure.
func IsNetwork(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}
