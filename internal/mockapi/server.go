// Package mockapi serves the scenario/session API from an embedded YAML
// catalog. It backs `irsim mock` and the end-to-end tests.
package mockapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/irsim/irsim/internal/client"
	"github.com/irsim/irsim/internal/logger"
)

// Prefix is the path every route is mounted under.
const Prefix = "/api"

type Server struct {
	catalog   *Catalog
	store     *Store
	authToken string
	log       *slog.Logger
}

// NewServer creates a server for the catalog. A non-empty authToken makes
// every request require a matching bearer token.
func NewServer(c *Catalog, authToken string) *Server {
	return &Server{
		catalog:   c,
		store:     NewStore(c),
		authToken: authToken,
		log:       logger.ComponentLogger("mockapi"),
	}
}

// Store exposes the session store.
func (s *Server) Store() *Store { return s.store }

func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET "+Prefix+"/scenarios", s.handleScenarios)
	mux.HandleFunc("GET "+Prefix+"/scenarios/{id}", s.handleScenario)
	mux.HandleFunc("POST "+Prefix+"/sessions", s.handleCreate)
	mux.HandleFunc("GET "+Prefix+"/sessions/{id}/events", s.handleEvents)
	mux.HandleFunc("POST "+Prefix+"/sessions/{id}/next", s.handleNext)
	mux.HandleFunc("POST "+Prefix+"/sessions/{id}/action", s.handleAction)
	mux.HandleFunc("GET "+Prefix+"/sessions/{id}/status", s.handleStatus)
	mux.HandleFunc("POST "+Prefix+"/sessions/{id}/complete", s.handleComplete)
}

// Handler returns the routed handler with auth and headers applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.SetupRoutes(mux)
	return securityHeaders(s.requireAuth(mux))
}

func (s *Server) handleScenarios(w http.ResponseWriter, r *http.Request) {
	out := make([]client.Scenario, 0, len(s.catalog.Scenarios))
	for i := range s.catalog.Scenarios {
		out = append(out, s.catalog.Scenarios[i].Summary())
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleScenario(w http.ResponseWriter, r *http.Request) {
	sc, ok := s.catalog.Get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, ErrScenarioNotFound.Error())
		return
	}
	writeJSON(w, http.StatusOK, sc.Summary())
}

type createRequest struct {
	ScenarioID       string `json:"scenario_id"`
	SubScenarioIndex *int   `json:"sub_scenario_index,omitempty"`
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	id, err := s.store.Create(req.ScenarioID, req.SubScenarioIndex)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, ErrScenarioNotFound) {
			status = http.StatusNotFound
		}
		writeError(w, status, err.Error())
		return
	}
	s.log.Info("session created", "session", id, "scenario", req.ScenarioID)
	writeJSON(w, http.StatusCreated, map[string]string{"session_id": id})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	since := -1
	if v := r.URL.Query().Get("since"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid since")
			return
		}
		since = n
	}
	batch, err := s.store.Events(r.PathValue("id"), since)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, batch)
}

func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Next(r.PathValue("id")); err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type actionRequest struct {
	ActionID string `json:"action_id"`
	OptionID string `json:"option_id"`
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	fb, err := s.store.Act(r.PathValue("id"), req.ActionID, req.OptionID)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, fb)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st, err := s.store.Status(r.PathValue("id"))
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleComplete(w http.ResponseWriter, r *http.Request) {
	res, err := s.store.Complete(r.PathValue("id"))
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) writeStoreError(w http.ResponseWriter, err error) {
	status := http.StatusBadRequest
	if errors.Is(err, ErrSessionNotFound) {
		status = http.StatusNotFound
	}
	writeError(w, status, err.Error())
}

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.authorize(r) {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) authorize(r *http.Request) bool {
	if s.authToken == "" {
		return true
	}
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.authToken
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// ListenAndServe serves the API on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	s.log.Info("mock API listening", "addr", ln.Addr().String(), "prefix", Prefix)
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
