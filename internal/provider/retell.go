package provider

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
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

const defaultRetellBaseURL = "https://api.retellai.com"

// Retell webhook event names. call_analyzed is the terminal event carrying
// the transcript, so it is the one that triggers the post-call pipeline;
// call_ended arrives earlier without analysis artifacts.
const (
	retellEventCallStarted  = "call_started"
	retellEventCallEnded    = "call_ended"
	retellEventCallAnalyzed = "call_analyzed"
)

// RetellProvider places calls through the Retell API and interprets its
// webhook events. Webhooks are authenticated with an HMAC-SHA256 signature
// of the body keyed by the API key.
type RetellProvider struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// NewRetellProvider creates a Retell-backed voice provider.
func NewRetellProvider(apiKey string) *RetellProvider {
	return &RetellProvider{
		BaseURL: defaultRetellBaseURL,
		APIKey:  apiKey,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Name identifies the vendor in logs.
func (p *RetellProvider) Name() string { return "retell" }

// SignatureHeader names the header carrying the webhook signature.
func (p *RetellProvider) SignatureHeader() string { return "X-Retell-Signature" }

type retellCallRequest struct {
	FromNumber       string            `json:"from_number"`
	ToNumber         string            `json:"to_number"`
	OverrideAgentID  string            `json:"override_agent_id,omitempty"`
	DynamicVariables map[string]string `json:"retell_llm_dynamic_variables"`
}

// PlaceCall creates an outbound call via POST /v2/create-phone-call.
func (p *RetellProvider) PlaceCall(ctx context.Context, params domain.CallParameters) (string, error) {
	payload, err := json.Marshal(retellCallRequest{
		FromNumber:       params.FromNumberID,
		ToNumber:         params.PhoneNumber,
		OverrideAgentID:  params.AgentID,
		DynamicVariables: params.Variables,
	})
	if err != nil {
		return "", &domain.ProviderError{Provider: p.Name(), Op: "place_call", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+"/v2/create-phone-call", bytes.NewReader(payload))
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
		CallID string `json:"call_id"`
	}
	if err := json.Unmarshal(body, &created); err != nil {
		return "", &domain.ProviderError{Provider: p.Name(), Op: "place_call", Err: err}
	}
	return created.CallID, nil
}

// ProvisionAgentPrompt installs the system prompt on the Retell LLM backing
// the agent via PATCH /update-retell-llm/{llm_id}.
func (p *RetellProvider) ProvisionAgentPrompt(ctx context.Context, llmID, systemPrompt string) error {
	if llmID == "" {
		return &domain.ProviderError{
			Provider: p.Name(),
			Op:       "provision_agent",
			Err:      fmt.Errorf("retell llm id is required"),
		}
	}

	payload, err := json.Marshal(map[string]string{"general_prompt": systemPrompt})
	if err != nil {
		return &domain.ProviderError{Provider: p.Name(), Op: "provision_agent", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, p.BaseURL+"/update-retell-llm/"+llmID, bytes.NewReader(payload))
	if err != nil {
		return &domain.ProviderError{Provider: p.Name(), Op: "provision_agent", Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+p.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.HTTPClient.Do(req)
	if err != nil {
		return &domain.ProviderError{Provider: p.Name(), Op: "provision_agent", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &domain.ProviderError{Provider: p.Name(), Op: "provision_agent", Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &domain.ProviderError{
			Provider: p.Name(),
			Op:       "provision_agent",
			Err:      fmt.Errorf("status %d: %s", resp.StatusCode, string(body)),
		}
	}
	return nil
}

// VerifyWebhook checks the HMAC-SHA256 hex signature of the raw body.
func (p *RetellProvider) VerifyWebhook(body []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(p.APIKey))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

type retellEnvelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
	// Tool invocations arrive without an event discriminator.
	Name string          `json:"name"`
	Args json.RawMessage `json:"args"`
}

// ClassifyEvent routes on the top-level event field. Payloads without one
// are tool invocations: Retell posts {name, args} to the tool endpoint and
// blocks on the response.
func (p *RetellProvider) ClassifyEvent(body []byte) (Event, error) {
	var envelope retellEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return Event{}, &domain.MalformedPayloadError{Msg: "unparsable retell webhook payload"}
	}

	ev := Event{Type: envelope.Event, Payload: body}
	switch envelope.Event {
	case "":
		if envelope.Name == "" {
			return Event{}, &domain.MalformedPayloadError{Msg: "retell payload has neither event nor tool name"}
		}
		ev.Kind = KindToolCall
		ev.Type = "tool_call"
		ev.ToolCalls = []ToolInvocation{{
			Name: envelope.Name,
			Args: decodeToolArgs(envelope.Args),
		}}
	case retellEventCallAnalyzed:
		ev.Kind = KindEndOfCall
	case retellEventCallStarted, retellEventCallEnded:
		ev.Kind = KindLifecycle
	default:
		ev.Kind = KindUnknown
	}
	return ev, nil
}

type retellCallData struct {
	CallID              string  `json:"call_id"`
	CallStatus          string  `json:"call_status"`
	StartTimestamp      int64   `json:"start_timestamp"`
	EndTimestamp        int64   `json:"end_timestamp"`
	Transcript          *string `json:"transcript"`
	DisconnectionReason string  `json:"disconnection_reason"`
	CallCost            struct {
		CombinedCost float64 `json:"combined_cost"`
	} `json:"call_cost"`
	DynamicVariables map[string]any `json:"retell_llm_dynamic_variables"`
}

// ExtractOutcome normalizes a call_analyzed payload. Call id, status and
// transcript are required; duration comes from the millisecond timestamps.
func (p *RetellProvider) ExtractOutcome(body []byte) (domain.CallOutcome, error) {
	var envelope struct {
		Data retellCallData `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return domain.CallOutcome{}, &domain.MalformedPayloadError{Msg: "unparsable retell call report"}
	}

	data := envelope.Data
	switch {
	case data.CallID == "":
		return domain.CallOutcome{}, &domain.MalformedPayloadError{Msg: "retell report missing call id"}
	case data.CallStatus == "":
		return domain.CallOutcome{}, &domain.MalformedPayloadError{Msg: "retell report missing call status"}
	case data.Transcript == nil:
		return domain.CallOutcome{}, &domain.MalformedPayloadError{Msg: "retell report missing transcript"}
	}

	duration := 0.0
	if data.EndTimestamp > data.StartTimestamp && data.StartTimestamp > 0 {
		duration = float64(data.EndTimestamp-data.StartTimestamp) / 1000 / 60
	} else if data.StartTimestamp > 0 {
		logger.Base().Warn("retell report has unusable timestamps, duration set to zero",
			zap.String("call_id", data.CallID))
	}

	return domain.CallOutcome{
		CallID:          data.CallID,
		Status:          data.CallStatus,
		DurationMinutes: duration,
		Cost:            data.CallCost.CombinedCost,
		EndedReason:     data.DisconnectionReason,
		Transcript:      *data.Transcript,
		LeadInfo:        stringifyValues(data.DynamicVariables),
	}, nil
}

// DispatchToolCalls runs the single invocation and returns the {name, result}
// body Retell blocks on.
func (p *RetellProvider) DispatchToolCalls(ctx context.Context, ev Event, registry *tools.Registry) (any, error) {
	if len(ev.ToolCalls) == 0 {
		return nil, &domain.MalformedPayloadError{Msg: "retell tool event without invocation"}
	}
	call := ev.ToolCalls[0]
	return map[string]any{
		"name":   call.Name,
		"result": registry.Dispatch(ctx, call.Name, call.Args),
	}, nil
}
