// Package provider integrates with the external AI voice-calling services.
// Every vendor hides behind the VoiceProvider interface; the orchestrator and
// the webhook handler never touch a concrete variant.
package provider

import (
	"context"
	"encoding/json"

	"github.com/techzoneai/revive-voice-service/internal/domain"
	"github.com/techzoneai/revive-voice-service/internal/tools"
)

// EventKind is the family an inbound webhook event belongs to after
// classification.
type EventKind int

const (
	// KindLifecycle is an informational event (call started, call ended).
	KindLifecycle EventKind = iota
	// KindEndOfCall carries the terminal call report and triggers the
	// post-call pipeline.
	KindEndOfCall
	// KindToolCall means the provider is mid-call and blocks on a tool
	// result; the response body gates live conversation flow.
	KindToolCall
	// KindUnknown is any discriminator outside the known set. Logged and
	// acknowledged, never an error, so new provider event types do not
	// break the endpoint.
	KindUnknown
)

// ToolInvocation is one tool execution requested by the provider mid-call.
type ToolInvocation struct {
	ID   string
	Name string
	Args map[string]any
}

// Event is a classified inbound webhook payload.
type Event struct {
	Kind      EventKind
	Type      string
	Payload   json.RawMessage
	ToolCalls []ToolInvocation
}

// VoiceProvider is the capability contract for a voice-calling vendor.
type VoiceProvider interface {
	// Name identifies the vendor in logs.
	Name() string

	// PlaceCall initiates an outbound call and returns the provider call
	// reference. Failures are ProviderError; the caller skips the lead.
	PlaceCall(ctx context.Context, params domain.CallParameters) (string, error)

	// SignatureHeader names the HTTP header carrying the webhook signature.
	SignatureHeader() string

	// VerifyWebhook reports whether the payload is authentic. Must be
	// evaluated before any event-specific handling.
	VerifyWebhook(body []byte, signature string) bool

	// ClassifyEvent parses the payload and assigns it an event family.
	ClassifyEvent(body []byte) (Event, error)

	// ExtractOutcome normalizes an end-of-call payload into a CallOutcome.
	// Missing required fields are a MalformedPayloadError.
	ExtractOutcome(body []byte) (domain.CallOutcome, error)

	// DispatchToolCalls runs the event's tool invocations against the
	// registry and returns the vendor-shaped response body the provider
	// blocks on.
	DispatchToolCalls(ctx context.Context, ev Event, registry *tools.Registry) (any, error)
}
