package domain

import "fmt"

// ValidationError marks bad input at the trigger surface or lead construction.
// Surfaced as a client error.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// ProviderError marks a call-placement or provider-API failure. The
// orchestrator treats it as fatal for the affected lead only.
type ProviderError struct {
	Provider string
	Op       string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Provider, e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// MalformedPayloadError marks a webhook payload missing required provider
// fields. Treated as a provider-contract violation, not a recoverable
// condition.
type MalformedPayloadError struct {
	Msg string
}

func (e *MalformedPayloadError) Error() string { return e.Msg }

// AnalysisError marks a language-model response that failed schema
// validation. Non-fatal to the webhook acknowledgment; the CRM update
// proceeds without interest fields.
type AnalysisError struct {
	Msg string
	Err error
}

func (e *AnalysisError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *AnalysisError) Unwrap() error { return e.Err }

// StoreError marks a lead-store read or write failure.
type StoreError struct {
	Store string
	Op    string
	Err   error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Store, e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }
