package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/techzoneai/revive-voice-service/internal/services/call"
	"github.com/techzoneai/revive-voice-service/pkg/logger"
	"go.uber.org/zap"
)

// TriggerHandler exposes the batch-initiation surface. The response is an
// initiation acknowledgment, not a per-call result: call completion arrives
// asynchronously through the webhook path.
type TriggerHandler struct {
	service *call.Service
}

// NewTriggerHandler creates the trigger handler.
func NewTriggerHandler(service *call.Service) *TriggerHandler {
	return &TriggerHandler{service: service}
}

// SetupTriggerRoutes registers the trigger surface.
func (h *TriggerHandler) SetupTriggerRoutes(router *mux.Router) {
	router.HandleFunc("/execute", h.HandleExecute).Methods(http.MethodPost)
	logger.Base().Info("trigger routes registered")
}

// ExecuteRequest is the trigger payload. An empty lead_ids list runs every
// lead still in status NEW.
type ExecuteRequest struct {
	LeadIDs []string `json:"lead_ids"`
}

// ExecuteResponse acknowledges batch initiation.
type ExecuteResponse struct {
	Message string          `json:"message"`
	Summary call.RunSummary `json:"summary"`
}

// HandleExecute triggers the lead processing workflow.
// POST /execute
func (h *TriggerHandler) HandleExecute(w http.ResponseWriter, r *http.Request) {
	var request ExecuteRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		logger.Base().Error("invalid execute request body", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid request body"})
		return
	}
	for _, id := range request.LeadIDs {
		if id == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "lead_ids must not contain empty ids"})
			return
		}
	}

	summary, err := h.service.Run(r.Context(), request.LeadIDs)
	if err != nil {
		logger.Base().Error("run failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "An error occurred while executing the workflow"})
		return
	}

	if summary.Loaded == 0 {
		writeJSON(w, http.StatusOK, ExecuteResponse{Message: "No leads found.", Summary: summary})
		return
	}
	writeJSON(w, http.StatusOK, ExecuteResponse{
		Message: "Calls initiated successfully for all leads.",
		Summary: summary,
	})
}
