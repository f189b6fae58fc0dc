package call

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/techzoneai/revive-voice-service/internal/domain"
	"github.com/techzoneai/revive-voice-service/internal/leadstore"
)

func sampleOutcome() domain.CallOutcome {
	return domain.CallOutcome{
		CallID:          "call_1",
		Status:          "ended",
		DurationMinutes: 3.5,
		Cost:            0.42,
		EndedReason:     "customer-ended-call",
		Transcript:      "AI: Hello\nUser: Hi",
		LeadInfo:        map[string]string{domain.VarLeadID: "rec123"},
	}
}

func TestReconcileWithAnalysis(t *testing.T) {
	analysis := &domain.CallAnalysis{
		Summary:       "Prospect wants a follow-up next week.",
		Interested:    domain.InterestInterested,
		Justification: "Asked for pricing details.",
	}

	updates := Reconcile(sampleOutcome(), analysis)

	assert.Equal(t, domain.LeadStatusContacted, updates[leadstore.FieldStatus])
	assert.Equal(t, "call_1", updates[leadstore.FieldCallID])
	assert.Equal(t, "ended", updates[leadstore.FieldCallStatus])
	assert.Equal(t, 3.5, updates[leadstore.FieldDuration])
	assert.Equal(t, 0.42, updates[leadstore.FieldCost])
	assert.Equal(t, "customer-ended-call", updates[leadstore.FieldEndReason])
	assert.Equal(t, "AI: Hello\nUser: Hi", updates[leadstore.FieldTranscript])
	assert.Equal(t, "Prospect wants a follow-up next week.", updates[leadstore.FieldCallSummary])
	assert.Equal(t, domain.InterestInterested, updates[leadstore.FieldInterested])
	assert.Equal(t, "Asked for pricing details.", updates[leadstore.FieldComment])
}

func TestReconcileWithoutAnalysis(t *testing.T) {
	updates := Reconcile(sampleOutcome(), nil)

	// Call metadata is always present; the analysis triple is omitted, not
	// written as placeholders.
	assert.Contains(t, updates, leadstore.FieldCallID)
	assert.NotContains(t, updates, leadstore.FieldCallSummary)
	assert.NotContains(t, updates, leadstore.FieldInterested)
	assert.NotContains(t, updates, leadstore.FieldComment)
}

func TestReconcileIdempotent(t *testing.T) {
	outcome := sampleOutcome()
	analysis := &domain.CallAnalysis{
		Summary:    "Short call.",
		Interested: domain.InterestUndecided,
	}

	first := Reconcile(outcome, analysis)
	second := Reconcile(outcome, analysis)
	require.Equal(t, first, second)
}
