package handlers

import (
	"context"
	"net/http"
	"time"
)

// HealthChecker is satisfied by the Postgres and Redis wrappers
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// HealthHandler reports the state of the API's backing stores. The
// database is required; the cache is optional and only degrades the
// report when it is configured but unreachable.
type HealthHandler struct {
	db    HealthChecker
	cache HealthChecker
}

func NewHealthHandler(db, cache HealthChecker) *HealthHandler {
	return &HealthHandler{db: db, cache: cache}
}

type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Services  map[string]string `json:"services"`
}

func probe(ctx context.Context, c HealthChecker) (string, bool) {
	if err := c.HealthCheck(ctx); err != nil {
		return "unhealthy: " + err.Error(), false
	}
	return "healthy", true
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	services := make(map[string]string)
	overall := "healthy"
	code := http.StatusOK

	dbState, dbOK := probe(ctx, h.db)
	services["database"] = dbState
	if !dbOK {
		overall = "unhealthy"
		code = http.StatusServiceUnavailable
	}

	if h.cache != nil {
		cacheState, cacheOK := probe(ctx, h.cache)
		services["cache"] = cacheState
		if !cacheOK && overall == "healthy" {
			overall = "degraded"
		}
	}

	respondJSON(w, code, HealthResponse{
		Status:    overall,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Services:  services,
	})
}

// Ready handles GET /ready. Readiness tracks the database only; the
// API serves without the cache.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if _, ok := probe(ctx, h.db); !ok {
		http.Error(w, "not ready", http.StatusServiceUnavailable)
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// Live handles GET /live
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("alive"))
}
