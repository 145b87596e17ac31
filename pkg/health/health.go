package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

const checkTimeout = 5 * time.Second

// Checker probes one dependency and reports an error when it is unhealthy.
type Checker func(ctx context.Context) error

// Status is the reported health of a component.
type Status string

const (
	StatusUp Status = "up"
	// StatusDegraded means only non-critical dependencies are failing; the
	// service keeps accepting traffic.
	StatusDegraded Status = "degraded"
	StatusDown     Status = "down"
)

// Response is the body of a health endpoint reply.
type Response struct {
	Status    Status                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
}

// CheckResult is the outcome of one dependency probe.
type CheckResult struct {
	Status   Status `json:"status"`
	Critical bool   `json:"critical"`
	Error    string `json:"error,omitempty"`
}

type checker struct {
	probe    Checker
	critical bool
}

// Handler serves liveness and readiness endpoints over a set of registered
// dependency checkers.
type Handler struct {
	mu       sync.RWMutex
	checkers map[string]checker
}

func NewHandler() *Handler {
	return &Handler{checkers: make(map[string]checker)}
}

// Register adds a critical dependency checker. Safe for concurrent use.
func (h *Handler) Register(name string, probe Checker) {
	h.RegisterCritical(name, probe)
}

// RegisterCritical adds a checker whose failure makes the service not ready.
func (h *Handler) RegisterCritical(name string, probe Checker) {
	h.register(name, probe, true)
}

// RegisterNonCritical adds a checker whose failure only degrades the
// reported status. Readiness still returns 200.
func (h *Handler) RegisterNonCritical(name string, probe Checker) {
	h.register(name, probe, false)
}

func (h *Handler) register(name string, probe Checker, critical bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checkers[name] = checker{probe: probe, critical: critical}
}

// LivenessHandler reports up whenever the process is serving requests. It
// never consults the registered checkers.
func (h *Handler) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeResponse(w, http.StatusOK, Response{
			Status:    StatusUp,
			Timestamp: time.Now().UTC(),
		})
	}
}

// ReadinessHandler runs every registered checker. A failing critical
// dependency produces 503; failing non-critical dependencies produce a 200
// with status degraded.
func (h *Handler) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
		defer cancel()

		h.mu.RLock()
		checkers := make(map[string]checker, len(h.checkers))
		for name, c := range h.checkers {
			checkers[name] = c
		}
		h.mu.RUnlock()

		checks := make(map[string]CheckResult, len(checkers))
		overall := StatusUp

		for name, c := range checkers {
			result := CheckResult{Status: StatusUp, Critical: c.critical}
			if err := c.probe(ctx); err != nil {
				result.Status = StatusDown
				result.Error = err.Error()
				if c.critical {
					overall = StatusDown
				} else if overall == StatusUp {
					overall = StatusDegraded
				}
			}
			checks[name] = result
		}

		code := http.StatusOK
		if overall == StatusDown {
			code = http.StatusServiceUnavailable
		}
		writeResponse(w, code, Response{
			Status:    overall,
			Timestamp: time.Now().UTC(),
			Checks:    checks,
		})
	}
}

func writeResponse(w http.ResponseWriter, code int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp)
}
