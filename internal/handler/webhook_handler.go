package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/techzoneai/revive-voice-service/internal/domain"
	"github.com/techzoneai/revive-voice-service/internal/provider"
	"github.com/techzoneai/revive-voice-service/internal/services/call"
	"github.com/techzoneai/revive-voice-service/internal/tools"
	"github.com/techzoneai/revive-voice-service/pkg/logger"
	"go.uber.org/zap"
)

// WebhookHandler receives the voice provider's inbound events. Each
// delivery is processed independently: parse, verify the signature, classify
// and route. No event is queued or retried here; the provider's own delivery
// semantics govern redelivery.
type WebhookHandler struct {
	service  *call.Service
	provider provider.VoiceProvider
	registry *tools.Registry
}

// NewWebhookHandler creates the webhook handler.
func NewWebhookHandler(service *call.Service, prov provider.VoiceProvider, registry *tools.Registry) *WebhookHandler {
	return &WebhookHandler{
		service:  service,
		provider: prov,
		registry: registry,
	}
}

// SetupWebhookRoutes registers the webhook surface.
func (h *WebhookHandler) SetupWebhookRoutes(router *mux.Router) {
	router.HandleFunc("/webhook", h.HandleWebhook).Methods(http.MethodPost)
	logger.Base().Info("webhook routes registered", zap.String("provider", h.provider.Name()))
}

// HandleWebhook drives the per-request event state machine:
// parse → signature check → classify → {tool dispatch | end-of-call pipeline
// | acknowledge}. Tool-invocation responses are synchronous because the
// provider blocks on them to continue the live conversation.
func (h *WebhookHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		logger.Base().Error("failed to read webhook body", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid webhook payload"})
		return
	}
	defer r.Body.Close()

	if !json.Valid(body) {
		logger.Base().Error("webhook payload is not valid JSON", zap.ByteString("body", body))
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid webhook payload"})
		return
	}

	signature := r.Header.Get(h.provider.SignatureHeader())
	if !h.provider.VerifyWebhook(body, signature) {
		logger.Base().Warn("unauthorized webhook rejected",
			zap.String("provider", h.provider.Name()),
			zap.String("remote_addr", r.RemoteAddr))
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})
		return
	}

	ev, err := h.provider.ClassifyEvent(body)
	if err != nil {
		logger.Base().Error("webhook classification failed",
			zap.ByteString("body", body), zap.Error(err))
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid webhook payload"})
		return
	}

	switch ev.Kind {
	case provider.KindToolCall:
		resp, err := h.provider.DispatchToolCalls(r.Context(), ev, h.registry)
		if err != nil {
			logger.Base().Error("tool dispatch failed",
				zap.ByteString("body", body), zap.Error(err))
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid tool payload"})
			return
		}
		writeJSON(w, http.StatusOK, resp)

	case provider.KindEndOfCall:
		if err := h.service.HandleEndOfCall(r.Context(), body); err != nil {
			var malformed *domain.MalformedPayloadError
			if errors.As(err, &malformed) {
				logger.Base().Error("malformed end-of-call report",
					zap.ByteString("body", body), zap.Error(err))
				writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid webhook payload"})
				return
			}
			logger.Base().Error("end-of-call pipeline failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Internal Server Error"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})

	case provider.KindLifecycle:
		logger.Base().Info("lifecycle event acknowledged", zap.String("event", ev.Type))
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})

	default:
		// New provider event types must not break the endpoint.
		logger.Base().Info("unhandled event type ignored", zap.String("event", ev.Type))
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// writeJSON writes a JSON response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Base().Error("failed to encode response", zap.Error(err))
	}
}
