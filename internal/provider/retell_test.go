package provider

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/techzoneai/revive-voice-service/internal/domain"
	"github.com/techzoneai/revive-voice-service/internal/tools"
)

func retellSign(key string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestRetellPlaceCall(t *testing.T) {
	var captured retellCallRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v2/create-phone-call", r.URL.Path)
		assert.Equal(t, "Bearer key_1", r.Header.Get("Authorization"))

		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		json.NewEncoder(w).Encode(map[string]string{"call_id": "call_r1"})
	}))
	defer server.Close()

	p := NewRetellProvider("key_1")
	p.BaseURL = server.URL

	callID, err := p.PlaceCall(context.Background(), domain.CallParameters{
		PhoneNumber:  "+15550001111",
		AgentID:      "agent_1",
		FromNumberID: "+15559990000",
		Variables:    map[string]string{domain.VarLeadID: "rec1"},
	})
	require.NoError(t, err)
	assert.Equal(t, "call_r1", callID)

	assert.Equal(t, "+15559990000", captured.FromNumber)
	assert.Equal(t, "+15550001111", captured.ToNumber)
	assert.Equal(t, "agent_1", captured.OverrideAgentID)
	assert.Equal(t, "rec1", captured.DynamicVariables[domain.VarLeadID])
}

func TestRetellProvisionAgentPrompt(t *testing.T) {
	var captured map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/update-retell-llm/llm_1", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	p := NewRetellProvider("key_1")
	p.BaseURL = server.URL

	require.NoError(t, p.ProvisionAgentPrompt(context.Background(), "llm_1", "You are Alex."))
	assert.Equal(t, "You are Alex.", captured["general_prompt"])
}

func TestRetellProvisionAgentPromptRequiresLLMID(t *testing.T) {
	p := NewRetellProvider("key_1")

	err := p.ProvisionAgentPrompt(context.Background(), "", "You are Alex.")
	require.Error(t, err)

	var perr *domain.ProviderError
	assert.ErrorAs(t, err, &perr)
}

func TestRetellVerifyWebhook(t *testing.T) {
	p := NewRetellProvider("key_1")
	body := []byte(`{"event":"call_started"}`)

	assert.True(t, p.VerifyWebhook(body, retellSign("key_1", body)))
	assert.False(t, p.VerifyWebhook(body, retellSign("other_key", body)))
	assert.False(t, p.VerifyWebhook(body, ""))

	// Signature over a different body must not validate.
	assert.False(t, p.VerifyWebhook([]byte(`{"event":"call_ended"}`), retellSign("key_1", body)))
}

func TestRetellClassifyEvent(t *testing.T) {
	p := NewRetellProvider("key_1")

	tests := []struct {
		name string
		body string
		kind EventKind
	}{
		{"call analyzed", `{"event":"call_analyzed","data":{}}`, KindEndOfCall},
		{"call started", `{"event":"call_started","data":{}}`, KindLifecycle},
		{"call ended", `{"event":"call_ended","data":{}}`, KindLifecycle},
		{"unknown event", `{"event":"agent_interrupted"}`, KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := p.ClassifyEvent([]byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.kind, ev.Kind)
		})
	}
}

func TestRetellClassifyToolInvocation(t *testing.T) {
	p := NewRetellProvider("key_1")

	// Tool invocations arrive with no event field at all.
	ev, err := p.ClassifyEvent([]byte(`{"name":"bookAppointment","args":{"date":"2024-06-01T10:00:00"}}`))
	require.NoError(t, err)
	assert.Equal(t, KindToolCall, ev.Kind)
	require.Len(t, ev.ToolCalls, 1)
	assert.Equal(t, "bookAppointment", ev.ToolCalls[0].Name)
	assert.Equal(t, "2024-06-01T10:00:00", ev.ToolCalls[0].Args["date"])
}

func TestRetellClassifyEventNeitherEventNorName(t *testing.T) {
	p := NewRetellProvider("key_1")

	_, err := p.ClassifyEvent([]byte(`{"data":{}}`))
	require.Error(t, err)

	var merr *domain.MalformedPayloadError
	assert.ErrorAs(t, err, &merr)
}

func TestRetellExtractOutcome(t *testing.T) {
	p := NewRetellProvider("key_1")

	body := `{"event":"call_analyzed","data":{
		"call_id":"call_r1",
		"call_status":"ended",
		"start_timestamp":1704103200000,
		"end_timestamp":1704103410000,
		"transcript":"Agent: Hello\nUser: Hi",
		"disconnection_reason":"user_hangup",
		"call_cost":{"combined_cost":0.3},
		"retell_llm_dynamic_variables":{"leadID":"rec1","firstName":"Ada"}
	}}`

	outcome, err := p.ExtractOutcome([]byte(body))
	require.NoError(t, err)
	assert.Equal(t, "call_r1", outcome.CallID)
	assert.Equal(t, "ended", outcome.Status)
	assert.InDelta(t, 3.5, outcome.DurationMinutes, 1e-9)
	assert.Equal(t, 0.3, outcome.Cost)
	assert.Equal(t, "user_hangup", outcome.EndedReason)
	assert.Equal(t, "rec1", outcome.LeadID())
	assert.Equal(t, "Ada", outcome.LeadName())
}

func TestRetellExtractOutcomeMissingFields(t *testing.T) {
	p := NewRetellProvider("key_1")

	tests := []struct {
		name string
		body string
	}{
		{"missing call id", `{"data":{"call_status":"ended","transcript":"t"}}`},
		{"missing status", `{"data":{"call_id":"c1","transcript":"t"}}`},
		{"missing transcript", `{"data":{"call_id":"c1","call_status":"ended"}}`},
		{"not json", `not json`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.ExtractOutcome([]byte(tt.body))
			require.Error(t, err)

			var merr *domain.MalformedPayloadError
			assert.ErrorAs(t, err, &merr)
		})
	}
}

func TestRetellDispatchToolCalls(t *testing.T) {
	p := NewRetellProvider("key_1")
	registry := tools.NewRegistry(map[string]tools.Func{
		"greet": func(ctx context.Context, args map[string]any) (string, error) {
			return "hello", nil
		},
	})

	ev := Event{Kind: KindToolCall, ToolCalls: []ToolInvocation{
		{Name: "greet", Args: map[string]any{}},
	}}

	resp, err := p.DispatchToolCalls(context.Background(), ev, registry)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "greet", "result": "hello"}, resp)
}

func TestRetellDispatchToolCallsWithoutInvocation(t *testing.T) {
	p := NewRetellProvider("key_1")

	_, err := p.DispatchToolCalls(context.Background(), Event{Kind: KindToolCall}, tools.NewRegistry(nil))
	require.Error(t, err)
}
