package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ardwiinoo/launch-indexer/internal/infrastructure/scanapi"
)

// CycleRunner runs one sync cycle on demand
type CycleRunner interface {
	RunCycle(ctx context.Context) error
}

// SyncHandler exposes the manual sync trigger
type SyncHandler struct {
	runner CycleRunner
	logger *zap.Logger
}

// NewSyncHandler creates a new sync trigger handler
func NewSyncHandler(runner CycleRunner, logger *zap.Logger) *SyncHandler {
	return &SyncHandler{
		runner: runner,
		logger: logger,
	}
}

// RegisterRoutes registers the sync routes
func (h *SyncHandler) RegisterRoutes(r chi.Router) {
	r.Post("/sync", h.TriggerSync)
}

// TriggerSync handles POST /api/v1/sync. It runs one cycle inline and
// reports the outcome; a failed cycle leaves the cursor untouched so
// re-triggering is always safe.
func (h *SyncHandler) TriggerSync(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.runner.RunCycle(ctx); err != nil {
		h.logger.Error("Manual sync cycle failed", zap.Error(err))

		status := http.StatusBadGateway
		if errors.Is(err, scanapi.ErrDecode) {
			// Schema mismatch is not transient; flag it differently
			// so operators don't just retry.
			status = http.StatusUnprocessableEntity
		}
		respondJSON(w, status, map[string]string{
			"status": "failed",
			"error":  err.Error(),
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "completed"})
}
