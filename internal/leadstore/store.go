// Package leadstore provides access to the external CRM-like store of
// record. Each adapter translates its store-native records to and from the
// canonical Lead at this boundary; the rest of the service only speaks the
// canonical field vocabulary below.
package leadstore

import (
	"context"

	"github.com/techzoneai/revive-voice-service/internal/domain"
)

// Canonical CRM field vocabulary. Adapters for stores with a different
// naming scheme (e.g. HubSpot) map to these names at their own boundary.
const (
	FieldFirstName = "First Name"
	FieldLastName  = "Last Name"
	FieldAddress   = "Address"
	FieldEmail     = "Email"
	FieldPhone     = "Phone"
	FieldStatus    = "Status"

	FieldCallID      = "Call ID"
	FieldCallStatus  = "Call Status"
	FieldDuration    = "Duration"
	FieldCost        = "Cost"
	FieldEndReason   = "End Reason"
	FieldTranscript  = "Transcript"
	FieldCallSummary = "Call Summary"
	FieldInterested  = "Interested"
	FieldComment     = "Comment"
)

// Update pairs a lead id with the fields to write back to the store.
type Update struct {
	ID     string
	Fields map[string]any
}

// Store is the narrow interface through which the service reaches the CRM.
// The store of record owns all persistence and conflict resolution; this
// service performs no optimistic locking of its own.
type Store interface {
	// Fetch returns the leads for the given store-native ids. Ids that do
	// not resolve to a record are skipped, not errors.
	Fetch(ctx context.Context, ids []string) ([]domain.Lead, error)

	// FetchByStatus returns the leads whose status field matches status.
	FetchByStatus(ctx context.Context, status string) ([]domain.Lead, error)

	// Update writes the given fields to one record.
	Update(ctx context.Context, id string, fields map[string]any) error

	// UpdateBatch applies each update independently, skipping failures.
	// It returns the ids that were updated successfully.
	UpdateBatch(ctx context.Context, updates []Update) ([]string, error)
}
