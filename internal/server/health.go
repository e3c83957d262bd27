package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// Health status constants for health check responses.
const (
	healthStatusOK       = "ok"
	healthStatusNotReady = "not ready"
	healthStatusFailing  = "failing"
	healthStatusPending  = "pending"
)

// HealthChecker reports liveness and the state of scheduled runs.
type HealthChecker struct {
	mu        sync.RWMutex
	startTime time.Time
	runs      int
	failures  int
	lastRun   time.Time
	lastErr   error
}

// NewHealthChecker creates a new HealthChecker.
func NewHealthChecker() *HealthChecker {
	return &HealthChecker{startTime: time.Now()}
}

// RecordRun stores the outcome of one scheduled run.
func (h *HealthChecker) RecordRun(at time.Time, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.runs++
	if err != nil {
		h.failures++
	}
	h.lastRun = at
	h.lastErr = err
}

// IsReady reports whether the last run, if any, succeeded.
func (h *HealthChecker) IsReady() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.lastErr == nil
}

// HealthResponse represents the JSON response for health endpoints.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// DetailedHealthResponse provides comprehensive health information.
type DetailedHealthResponse struct {
	Status    string `json:"status"`
	Uptime    string `json:"uptime"`
	Runs      int    `json:"runs"`
	Failures  int    `json:"failures"`
	LastRun   string `json:"last_run,omitempty"`
	LastError string `json:"last_error,omitempty"`
}

// LivenessHandler returns an HTTP handler for the /healthz endpoint.
func (h *HealthChecker) LivenessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, HealthResponse{Status: healthStatusOK})
	})
}

// ReadinessHandler returns an HTTP handler for the /readyz endpoint. It
// fails while the most recent scheduled run is failed.
func (h *HealthChecker) ReadinessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		h.mu.RLock()
		runs, lastErr := h.runs, h.lastErr
		h.mu.RUnlock()

		checks := map[string]string{"last_run": healthStatusOK}
		switch {
		case runs == 0:
			checks["last_run"] = healthStatusPending
		case lastErr != nil:
			checks["last_run"] = healthStatusFailing
			writeJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: healthStatusNotReady, Checks: checks})
			return
		}
		writeJSON(w, http.StatusOK, HealthResponse{Status: healthStatusOK, Checks: checks})
	})
}

// DetailedHealthHandler returns an HTTP handler for the /healthz/detailed endpoint.
func (h *HealthChecker) DetailedHealthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		h.mu.RLock()
		response := DetailedHealthResponse{
			Status:   healthStatusOK,
			Uptime:   time.Since(h.startTime).Truncate(time.Second).String(),
			Runs:     h.runs,
			Failures: h.failures,
		}
		if !h.lastRun.IsZero() {
			response.LastRun = h.lastRun.UTC().Format(time.RFC3339)
		}
		if h.lastErr != nil {
			response.Status = healthStatusNotReady
			response.LastError = h.lastErr.Error()
		}
		h.mu.RUnlock()

		status := http.StatusOK
		if response.LastError != "" {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, response)
	})
}

// RegisterHealthEndpoints registers health check endpoints on the given mux.
func (h *HealthChecker) RegisterHealthEndpoints(mux *http.ServeMux) {
	mux.Handle("/healthz", h.LivenessHandler())
	mux.Handle("/readyz", h.ReadinessHandler())
	mux.Handle("/healthz/detailed", h.DetailedHealthHandler())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
