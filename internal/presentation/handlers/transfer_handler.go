package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ardwiinoo/launch-indexer/internal/application/services"
	"github.com/ardwiinoo/launch-indexer/internal/domain/entities"
)

// TransferHandler handles HTTP requests for transfers
type TransferHandler struct {
	service *services.TransferService
	logger  *zap.Logger
}

// NewTransferHandler creates a new transfer handler
func NewTransferHandler(service *services.TransferService, logger *zap.Logger) *TransferHandler {
	return &TransferHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the transfer routes
func (h *TransferHandler) RegisterRoutes(r chi.Router) {
	r.Get("/transfers", h.GetTransfers)
}

// GetTransfers handles GET /api/v1/transfers
func (h *TransferHandler) GetTransfers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	filter := entities.DefaultTransferFilter()
	filter.Limit, filter.Offset = parsePagination(r)

	if v := r.URL.Query().Get("token"); v != "" {
		if !isValidAddress(v) {
			respondError(w, http.StatusBadRequest, "Invalid token address format")
			return
		}
		token := strings.ToLower(v)
		filter.TokenAddress = &token
	}
	if v := r.URL.Query().Get("from"); v != "" {
		if !isValidAddress(v) {
			respondError(w, http.StatusBadRequest, "Invalid from address format")
			return
		}
		from := strings.ToLower(v)
		filter.FromAddress = &from
	}
	if v := r.URL.Query().Get("to"); v != "" {
		if !isValidAddress(v) {
			respondError(w, http.StatusBadRequest, "Invalid to address format")
			return
		}
		to := strings.ToLower(v)
		filter.ToAddress = &to
	}
	if v := r.URL.Query().Get("address"); v != "" {
		if !isValidAddress(v) {
			respondError(w, http.StatusBadRequest, "Invalid address format")
			return
		}
		addr := strings.ToLower(v)
		filter.Address = &addr
	}

	response, err := h.service.GetTransfers(ctx, filter)
	if err != nil {
		h.logger.Error("Failed to get transfers", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to get transfers")
		return
	}

	respondJSON(w, http.StatusOK, response)
}
