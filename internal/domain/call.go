package domain

import (
	"fmt"
	"time"
)

// Variable keys echoed back by the voice provider inside the end-of-call
// webhook. The leadID entry is the only channel correlating an async webhook
// to its originating lead; there is no call-id-to-lead-id table.
const (
	VarLeadID    = "leadID"
	VarFirstName = "firstName"
	VarLastName  = "lastName"
	VarEmail     = "email"
	VarAddress   = "address"
	VarDate      = "date"
)

// CallParameters is a provider call-initiation request. Built once per lead
// per run, handed to the voice provider and discarded.
type CallParameters struct {
	// PhoneNumber is taken verbatim from the lead. No E.164 normalization
	// is applied; malformed numbers fail at the provider.
	PhoneNumber string

	// AgentID is the provider-side assistant/agent identifier.
	AgentID string

	// FromNumberID is the provider-side originating number identifier.
	FromNumberID string

	// Variables carries the call-scoped personalization values. Must include
	// at least VarLeadID so the webhook can be reconciled.
	Variables map[string]string
}

// CallOutcome is the normalized result of a completed call, produced from a
// provider's end-of-call payload.
type CallOutcome struct {
	CallID          string
	Status          string
	DurationMinutes float64
	Cost            float64
	EndedReason     string
	Transcript      string
	// LeadInfo is the variable mapping echoed from CallParameters.
	LeadInfo map[string]string
}

// LeadID returns the originating lead id recovered from the echoed variables.
func (o CallOutcome) LeadID() string {
	return o.LeadInfo[VarLeadID]
}

// LeadName returns the lead display name recovered from the echoed variables.
func (o CallOutcome) LeadName() string {
	first := o.LeadInfo[VarFirstName]
	last := o.LeadInfo[VarLastName]
	switch {
	case first == "":
		return last
	case last == "":
		return first
	default:
		return first + " " + last
	}
}

// Interest levels the analyzer is allowed to produce.
const (
	InterestInterested    = "Interested"
	InterestNotInterested = "Not Interested"
	InterestUndecided     = "Undecided"
)

// ValidInterest reports whether v is one of the three enumerated levels.
func ValidInterest(v string) bool {
	return v == InterestInterested || v == InterestNotInterested || v == InterestUndecided
}

// CallAnalysis is the structured interest classification produced from a
// call transcript.
type CallAnalysis struct {
	Summary       string `json:"summary"`
	Interested    string `json:"interested"`
	Justification string `json:"justification,omitempty"`
}

// DurationMinutes computes the call duration in minutes from RFC3339
// start/end timestamps. Used when the provider does not report the duration
// directly.
func DurationMinutes(startedAt, endedAt string) (float64, error) {
	start, err := time.Parse(time.RFC3339, startedAt)
	if err != nil {
		return 0, fmt.Errorf("parse startedAt %q: %w", startedAt, err)
	}
	end, err := time.Parse(time.RFC3339, endedAt)
	if err != nil {
		return 0, fmt.Errorf("parse endedAt %q: %w", endedAt, err)
	}
	return end.Sub(start).Minutes(), nil
}
