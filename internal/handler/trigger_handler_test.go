package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/techzoneai/revive-voice-service/internal/domain"
	"github.com/techzoneai/revive-voice-service/internal/services/call"
)

func newTriggerFixture(store *stubStore) *TriggerHandler {
	service := call.NewService(store, &stubProvider{}, nil, nil,
		call.NewStandardParamsBuilder(call.CallConfig{}),
		call.WithCallPacing(time.Millisecond))
	return NewTriggerHandler(service)
}

func postExecute(h *TriggerHandler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/execute", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	h.HandleExecute(rec, req)
	return rec
}

func TestExecute(t *testing.T) {
	store := &stubStore{leads: []domain.Lead{
		{ID: "rec1", Phone: "+15550001111"},
		{ID: "rec2", Phone: "+15550002222"},
	}}
	h := newTriggerFixture(store)

	rec := postExecute(h, `{"lead_ids":["rec1","rec2"]}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp ExecuteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Calls initiated successfully for all leads.", resp.Message)
	assert.Equal(t, 2, resp.Summary.Called)
}

func TestExecuteNoLeadsFound(t *testing.T) {
	h := newTriggerFixture(&stubStore{})

	rec := postExecute(h, `{"lead_ids":["recMissing"]}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp ExecuteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "No leads found.", resp.Message)
	assert.Zero(t, resp.Summary.Called)
}

func TestExecuteEmptyListRunsNewLeads(t *testing.T) {
	store := &stubStore{leads: []domain.Lead{{ID: "rec1", Phone: "+15550001111"}}}
	h := newTriggerFixture(store)

	rec := postExecute(h, `{"lead_ids":[]}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp ExecuteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Summary.Called)
}

func TestExecuteRejectsInvalidBody(t *testing.T) {
	h := newTriggerFixture(&stubStore{})

	rec := postExecute(h, `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExecuteRejectsEmptyLeadID(t *testing.T) {
	h := newTriggerFixture(&stubStore{})

	rec := postExecute(h, `{"lead_ids":["rec1",""]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
