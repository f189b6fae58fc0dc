package call

import (
	"context"

	"github.com/techzoneai/revive-voice-service/internal/domain"
)

// RunSummary reports what a batch run did. Calls complete asynchronously via
// the webhook path, so the summary only covers initiation.
type RunSummary struct {
	Requested int `json:"requested"`
	Loaded    int `json:"loaded"`
	Called    int `json:"called"`
	Skipped   int `json:"skipped"`
}

// CallConfig carries the static provider-side identifiers every call uses.
type CallConfig struct {
	// AgentID is the provider assistant/agent to run the conversation.
	AgentID string
	// FromNumberID is the provider-side originating number identifier.
	FromNumberID string
}

// PreCallHook is the per-deployment customization point run before a lead's
// call parameters are built (web research, enrichment). A returned error
// skips the lead without aborting the batch. Nil means no pre-call work.
type PreCallHook func(ctx context.Context, lead *domain.Lead) error

// ParamsBuilder maps a lead plus static call configuration into a
// provider call-initiation payload. Deployments swap in their own builder to
// change the variable mapping without touching the orchestrator.
type ParamsBuilder interface {
	Build(lead domain.Lead) domain.CallParameters
}
