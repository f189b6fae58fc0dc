package provider

import (
	"bytes"
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/techzoneai/revive-voice-service/internal/domain"
	"github.com/techzoneai/revive-voice-service/internal/tools"
	"github.com/techzoneai/revive-voice-service/pkg/logger"
	"go.uber.org/zap"
)

const defaultVapiBaseURL = "https://api.vapi.ai"

// Vapi webhook discriminators (message.type).
const (
	vapiTypeToolCalls       = "tool-calls"
	vapiTypeEndOfCallReport = "end-of-call-report"
	vapiTypeStatusUpdate    = "status-update"
	vapiTypeSpeechUpdate    = "speech-update"
	vapiTypeTranscript      = "transcript"
)

// VapiProvider places calls through the Vapi API and interprets its
// webhook events. Webhook authenticity relies on the shared server secret
// Vapi echoes in the x-vapi-secret header.
type VapiProvider struct {
	BaseURL       string
	APIKey        string
	WebhookSecret string
	HTTPClient    *http.Client
}

// NewVapiProvider creates a Vapi-backed voice provider.
func NewVapiProvider(apiKey, webhookSecret string) *VapiProvider {
	if webhookSecret == "" {
		logger.Base().Warn("vapi webhook secret not configured, inbound webhooks will be accepted unverified")
	}
	return &VapiProvider{
		BaseURL:       defaultVapiBaseURL,
		APIKey:        apiKey,
		WebhookSecret: webhookSecret,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Name identifies the vendor in logs.
func (p *VapiProvider) Name() string { return "vapi" }

// SignatureHeader names the header carrying the shared webhook secret.
func (p *VapiProvider) SignatureHeader() string { return "x-vapi-secret" }

type vapiCallRequest struct {
	AssistantID        string        `json:"assistantId"`
	PhoneNumberID      string        `json:"phoneNumberId"`
	Customer           vapiCustomer  `json:"customer"`
	AssistantOverrides vapiOverrides `json:"assistantOverrides"`
}

type vapiCustomer struct {
	Number string `json:"number"`
}

type vapiOverrides struct {
	VariableValues map[string]string `json:"variableValues"`
}

// PlaceCall creates an outbound call via POST /call.
func (p *VapiProvider) PlaceCall(ctx context.Context, params domain.CallParameters) (string, error) {
	payload, err := json.Marshal(vapiCallRequest{
		AssistantID:   params.AgentID,
		PhoneNumberID: params.FromNumberID,
		Customer:      vapiCustomer{Number: params.PhoneNumber},
		AssistantOverrides: vapiOverrides{
			VariableValues: params.Variables,
		},
	})
	if err != nil {
		return "", &domain.ProviderError{Provider: p.Name(), Op: "place_call", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+"/call", bytes.NewReader(payload))
	if err != nil {
		return "", &domain.ProviderError{Provider: p.Name(), Op: "place_call", Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+p.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.HTTPClient.Do(req)
	if err != nil {
		return "", &domain.ProviderError{Provider: p.Name(), Op: "place_call", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &domain.ProviderError{Provider: p.Name(), Op: "place_call", Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &domain.ProviderError{
			Provider: p.Name(),
			Op:       "place_call",
			Err:      fmt.Errorf("status %d: %s", resp.StatusCode, string(body)),
		}
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &created); err != nil {
		return "", &domain.ProviderError{Provider: p.Name(), Op: "place_call", Err: err}
	}
	return created.ID, nil
}

type vapiAssistantRequest struct {
	Name  string    `json:"name,omitempty"`
	Model vapiModel `json:"model"`
}

type vapiModel struct {
	Provider string        `json:"provider"`
	Model    string        `json:"model"`
	Messages []vapiMessage `json:"messages"`
}

type vapiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ProvisionAssistant installs the system prompt on the provider-side
// assistant: POST /assistant creates one when assistantID is empty, PATCH
// /assistant/{id} updates it otherwise. Returns the assistant id.
func (p *VapiProvider) ProvisionAssistant(ctx context.Context, assistantID, name, systemPrompt string) (string, error) {
	payload, err := json.Marshal(vapiAssistantRequest{
		Name: name,
		Model: vapiModel{
			Provider: "openai",
			Model:    "gpt-4o",
			Messages: []vapiMessage{{Role: "system", Content: systemPrompt}},
		},
	})
	if err != nil {
		return "", &domain.ProviderError{Provider: p.Name(), Op: "provision_assistant", Err: err}
	}

	method, endpoint := http.MethodPost, p.BaseURL+"/assistant"
	if assistantID != "" {
		method, endpoint = http.MethodPatch, p.BaseURL+"/assistant/"+assistantID
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", &domain.ProviderError{Provider: p.Name(), Op: "provision_assistant", Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+p.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.HTTPClient.Do(req)
	if err != nil {
		return "", &domain.ProviderError{Provider: p.Name(), Op: "provision_assistant", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &domain.ProviderError{Provider: p.Name(), Op: "provision_assistant", Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &domain.ProviderError{
			Provider: p.Name(),
			Op:       "provision_assistant",
			Err:      fmt.Errorf("status %d: %s", resp.StatusCode, string(body)),
		}
	}

	var assistant struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &assistant); err != nil {
		return "", &domain.ProviderError{Provider: p.Name(), Op: "provision_assistant", Err: err}
	}
	return assistant.ID, nil
}

// VerifyWebhook compares the x-vapi-secret header against the configured
// server secret in constant time. An unset secret accepts everything, which
// is only acceptable for local development.
func (p *VapiProvider) VerifyWebhook(body []byte, signature string) bool {
	if p.WebhookSecret == "" {
		return true
	}
	return subtle.ConstantTimeCompare([]byte(signature), []byte(p.WebhookSecret)) == 1
}

type vapiEnvelope struct {
	Message struct {
		Type         string `json:"type"`
		ToolCallList []struct {
			ID       string `json:"id"`
			Function struct {
				Name      string          `json:"name"`
				Arguments json.RawMessage `json:"arguments"`
			} `json:"function"`
		} `json:"toolCallList"`
	} `json:"message"`
}

// ClassifyEvent routes on message.type.
func (p *VapiProvider) ClassifyEvent(body []byte) (Event, error) {
	var envelope vapiEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return Event{}, &domain.MalformedPayloadError{Msg: "unparsable vapi webhook payload"}
	}
	if envelope.Message.Type == "" {
		return Event{}, &domain.MalformedPayloadError{Msg: "vapi webhook payload missing message.type"}
	}

	ev := Event{Type: envelope.Message.Type, Payload: body}
	switch envelope.Message.Type {
	case vapiTypeToolCalls:
		ev.Kind = KindToolCall
		for _, tc := range envelope.Message.ToolCallList {
			ev.ToolCalls = append(ev.ToolCalls, ToolInvocation{
				ID:   tc.ID,
				Name: tc.Function.Name,
				Args: decodeToolArgs(tc.Function.Arguments),
			})
		}
	case vapiTypeEndOfCallReport:
		ev.Kind = KindEndOfCall
	case vapiTypeStatusUpdate, vapiTypeSpeechUpdate, vapiTypeTranscript:
		ev.Kind = KindLifecycle
	default:
		ev.Kind = KindUnknown
	}
	return ev, nil
}

type vapiReport struct {
	Message struct {
		DurationMinutes *float64 `json:"durationMinutes"`
		Cost            float64  `json:"cost"`
		EndedReason     string   `json:"endedReason"`
		StartedAt       string   `json:"startedAt"`
		EndedAt         string   `json:"endedAt"`
		Artifact        struct {
			Transcript *string `json:"transcript"`
		} `json:"artifact"`
		Call struct {
			ID                 string `json:"id"`
			Status             string `json:"status"`
			AssistantOverrides struct {
				VariableValues map[string]any `json:"variableValues"`
			} `json:"assistantOverrides"`
		} `json:"call"`
	} `json:"message"`
}

// ExtractOutcome normalizes an end-of-call-report payload. Call id, status
// and transcript are required; durationMinutes falls back to the
// startedAt/endedAt difference when Vapi does not report it.
func (p *VapiProvider) ExtractOutcome(body []byte) (domain.CallOutcome, error) {
	var report vapiReport
	if err := json.Unmarshal(body, &report); err != nil {
		return domain.CallOutcome{}, &domain.MalformedPayloadError{Msg: "unparsable vapi end-of-call report"}
	}

	msg := report.Message
	switch {
	case msg.Call.ID == "":
		return domain.CallOutcome{}, &domain.MalformedPayloadError{Msg: "vapi report missing call id"}
	case msg.Call.Status == "":
		return domain.CallOutcome{}, &domain.MalformedPayloadError{Msg: "vapi report missing call status"}
	case msg.Artifact.Transcript == nil:
		return domain.CallOutcome{}, &domain.MalformedPayloadError{Msg: "vapi report missing transcript"}
	}

	duration := 0.0
	if msg.DurationMinutes != nil {
		duration = *msg.DurationMinutes
	} else if msg.StartedAt != "" && msg.EndedAt != "" {
		computed, err := domain.DurationMinutes(msg.StartedAt, msg.EndedAt)
		if err != nil {
			logger.Base().Warn("vapi report has unusable timestamps, duration set to zero",
				zap.String("call_id", msg.Call.ID), zap.Error(err))
		} else {
			duration = computed
		}
	}

	return domain.CallOutcome{
		CallID:          msg.Call.ID,
		Status:          msg.Call.Status,
		DurationMinutes: duration,
		Cost:            msg.Cost,
		EndedReason:     msg.EndedReason,
		Transcript:      *msg.Artifact.Transcript,
		LeadInfo:        stringifyValues(msg.Call.AssistantOverrides.VariableValues),
	}, nil
}

type vapiToolResult struct {
	Name       string `json:"name"`
	ToolCallID string `json:"toolCallId"`
	Result     string `json:"result"`
}

// DispatchToolCalls executes every invocation in the event and returns the
// {"results": [...]} body Vapi blocks on to continue the conversation.
func (p *VapiProvider) DispatchToolCalls(ctx context.Context, ev Event, registry *tools.Registry) (any, error) {
	results := make([]vapiToolResult, 0, len(ev.ToolCalls))
	for _, call := range ev.ToolCalls {
		results = append(results, vapiToolResult{
			Name:       call.Name,
			ToolCallID: call.ID,
			Result:     registry.Dispatch(ctx, call.Name, call.Args),
		})
	}
	return map[string]any{"results": results}, nil
}

// decodeToolArgs accepts either a JSON object or a JSON-encoded object
// string; Vapi emits both shapes.
func decodeToolArgs(raw json.RawMessage) map[string]any {
	if len(raw) == 0 {
		return map[string]any{}
	}
	var args map[string]any
	if err := json.Unmarshal(raw, &args); err == nil {
		return args
	}
	var encoded string
	if err := json.Unmarshal(raw, &encoded); err == nil {
		if err := json.Unmarshal([]byte(encoded), &args); err == nil {
			return args
		}
	}
	return map[string]any{}
}

func stringifyValues(values map[string]any) map[string]string {
	out := make(map[string]string, len(values))
	for k, v := range values {
		if s, ok := v.(string); ok {
			out[k] = s
			continue
		}
		out[k] = fmt.Sprint(v)
	}
	return out
}
