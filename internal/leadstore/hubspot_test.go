package leadstore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/techzoneai/revive-voice-service/internal/domain"
)

func newTestHubSpotStore(t *testing.T, handler http.HandlerFunc) *HubSpotStore {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	store := NewHubSpotStore("token_1")
	store.BaseURL = server.URL
	return store
}

func TestHubSpotPropertyName(t *testing.T) {
	assert.Equal(t, "firstname", hubspotPropertyName(FieldFirstName))
	assert.Equal(t, "hs_lead_status", hubspotPropertyName(FieldStatus))
	// Unmapped canonical names fall back to lower snake case.
	assert.Equal(t, "call_summary", hubspotPropertyName(FieldCallSummary))
	assert.Equal(t, "end_reason", hubspotPropertyName(FieldEndReason))
}

func TestHubSpotFetch(t *testing.T) {
	store := newTestHubSpotStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer token_1", r.Header.Get("Authorization"))

		switch r.URL.Path {
		case "/crm/v3/objects/contacts/101":
			json.NewEncoder(w).Encode(hubspotContact{
				ID: "101",
				Properties: map[string]string{
					"firstname": "Grace",
					"lastname":  "Hopper",
					"phone":     "+15550002222",
				},
			})
		default:
			http.Error(w, `{"status":"error"}`, http.StatusNotFound)
		}
	})

	leads, err := store.Fetch(context.Background(), []string{"101", "404"})
	require.NoError(t, err)
	require.Len(t, leads, 1)
	assert.Equal(t, "101", leads[0].ID)
	assert.Equal(t, "Grace Hopper", leads[0].FullName())
}

func TestHubSpotFetchByStatus(t *testing.T) {
	store := newTestHubSpotStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/crm/v3/objects/contacts", r.URL.Path)
		json.NewEncoder(w).Encode(hubspotListResponse{Results: []hubspotContact{
			{ID: "101", Properties: map[string]string{"firstname": "Grace", "hs_lead_status": "NEW"}},
			{ID: "102", Properties: map[string]string{"firstname": "Ada", "hs_lead_status": "CONTACTED"}},
		}})
	})

	leads, err := store.FetchByStatus(context.Background(), domain.LeadStatusNew)
	require.NoError(t, err)
	require.Len(t, leads, 1)
	assert.Equal(t, "101", leads[0].ID)
}

func TestHubSpotUpdateTranslatesFieldNames(t *testing.T) {
	var captured struct {
		Properties map[string]string `json:"properties"`
	}
	store := newTestHubSpotStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/crm/v3/objects/contacts/101", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		json.NewEncoder(w).Encode(hubspotContact{ID: "101"})
	})

	err := store.Update(context.Background(), "101", map[string]any{
		FieldStatus:   domain.LeadStatusContacted,
		FieldCallID:   "call_1",
		FieldDuration: 3.5,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.LeadStatusContacted, captured.Properties["hs_lead_status"])
	assert.Equal(t, "call_1", captured.Properties["call_id"])
	assert.Equal(t, "3.5", captured.Properties["duration"])
}
