package call

import (
	"github.com/techzoneai/revive-voice-service/internal/domain"
	"github.com/techzoneai/revive-voice-service/internal/leadstore"
)

// Reconcile merges a call outcome with its transcript analysis into the CRM
// update map. The merge is deterministic: call metadata is always present,
// the analysis triple only when analysis succeeded. A nil analysis leaves
// the interest fields out entirely rather than writing placeholders.
func Reconcile(outcome domain.CallOutcome, analysis *domain.CallAnalysis) map[string]any {
	updates := map[string]any{
		leadstore.FieldStatus:     domain.LeadStatusContacted,
		leadstore.FieldCallID:     outcome.CallID,
		leadstore.FieldCallStatus: outcome.Status,
		leadstore.FieldDuration:   outcome.DurationMinutes,
		leadstore.FieldCost:       outcome.Cost,
		leadstore.FieldEndReason:  outcome.EndedReason,
		leadstore.FieldTranscript: outcome.Transcript,
	}
	if analysis != nil {
		updates[leadstore.FieldCallSummary] = analysis.Summary
		updates[leadstore.FieldInterested] = analysis.Interested
		updates[leadstore.FieldComment] = analysis.Justification
	}
	return updates
}
