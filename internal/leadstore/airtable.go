package leadstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/techzoneai/revive-voice-service/internal/domain"
	"github.com/techzoneai/revive-voice-service/pkg/logger"
	"go.uber.org/zap"
)

const defaultAirtableBaseURL = "https://api.airtable.com/v0"

// AirtableStore reads and writes leads through the Airtable REST API.
// Airtable field names are already the canonical vocabulary, so no mapping
// is needed beyond record assembly.
type AirtableStore struct {
	BaseURL    string
	Token      string
	BaseID     string
	TableName  string
	HTTPClient *http.Client
}

// NewAirtableStore creates an Airtable-backed lead store.
func NewAirtableStore(token, baseID, tableName string) *AirtableStore {
	return &AirtableStore{
		BaseURL:   defaultAirtableBaseURL,
		Token:     token,
		BaseID:    baseID,
		TableName: tableName,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type airtableRecord struct {
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
}

type airtableListResponse struct {
	Records []airtableRecord `json:"records"`
}

// Fetch returns the leads for the given record ids. Missing records are
// skipped with a warning so one stale id does not abort a batch.
func (s *AirtableStore) Fetch(ctx context.Context, ids []string) ([]domain.Lead, error) {
	leads := make([]domain.Lead, 0, len(ids))
	for _, id := range ids {
		rec, err := s.getRecord(ctx, id)
		if err != nil {
			logger.Base().Warn("airtable record fetch failed, skipping",
				zap.String("lead_id", id), zap.Error(err))
			continue
		}
		lead, err := leadFromFields(rec.ID, rec.Fields)
		if err != nil {
			logger.Base().Warn("airtable record invalid, skipping",
				zap.String("lead_id", id), zap.Error(err))
			continue
		}
		leads = append(leads, lead)
	}
	return leads, nil
}

// FetchByStatus returns the leads whose Status field matches status.
func (s *AirtableStore) FetchByStatus(ctx context.Context, status string) ([]domain.Lead, error) {
	formula := fmt.Sprintf(`{%s}=%q`, FieldStatus, status)
	endpoint := fmt.Sprintf("%s/%s/%s?filterByFormula=%s",
		s.BaseURL, s.BaseID, url.PathEscape(s.TableName), url.QueryEscape(formula))

	body, err := s.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &domain.StoreError{Store: "airtable", Op: "list", Err: err}
	}

	var list airtableListResponse
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, &domain.StoreError{Store: "airtable", Op: "list", Err: err}
	}

	leads := make([]domain.Lead, 0, len(list.Records))
	for _, rec := range list.Records {
		lead, err := leadFromFields(rec.ID, rec.Fields)
		if err != nil {
			continue
		}
		leads = append(leads, lead)
	}
	return leads, nil
}

// Update writes the given fields to one record via PATCH, which merges with
// the record's existing fields on the Airtable side.
func (s *AirtableStore) Update(ctx context.Context, id string, fields map[string]any) error {
	endpoint := fmt.Sprintf("%s/%s/%s/%s", s.BaseURL, s.BaseID, url.PathEscape(s.TableName), id)
	payload, err := json.Marshal(map[string]any{"fields": fields})
	if err != nil {
		return &domain.StoreError{Store: "airtable", Op: "update", Err: err}
	}
	if _, err := s.do(ctx, http.MethodPatch, endpoint, payload); err != nil {
		return &domain.StoreError{Store: "airtable", Op: "update", Err: err}
	}
	return nil
}

// UpdateBatch applies each update independently. Failures are logged and
// skipped; the returned slice holds the ids that were written.
func (s *AirtableStore) UpdateBatch(ctx context.Context, updates []Update) ([]string, error) {
	updated := make([]string, 0, len(updates))
	for _, u := range updates {
		if err := s.Update(ctx, u.ID, u.Fields); err != nil {
			logger.Base().Warn("airtable batch update failed, skipping",
				zap.String("lead_id", u.ID), zap.Error(err))
			continue
		}
		updated = append(updated, u.ID)
	}
	return updated, nil
}

func (s *AirtableStore) getRecord(ctx context.Context, id string) (*airtableRecord, error) {
	endpoint := fmt.Sprintf("%s/%s/%s/%s", s.BaseURL, s.BaseID, url.PathEscape(s.TableName), id)
	body, err := s.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	var rec airtableRecord
	if err := json.Unmarshal(body, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *AirtableStore) do(ctx context.Context, method, endpoint string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.Token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}

// leadFromFields assembles a canonical Lead from a record id plus canonical
// field values.
func leadFromFields(id string, fields map[string]any) (domain.Lead, error) {
	return domain.NewLead(
		id,
		stringField(fields, FieldFirstName),
		stringField(fields, FieldLastName),
		stringField(fields, FieldAddress),
		stringField(fields, FieldEmail),
		stringField(fields, FieldPhone),
	)
}

func stringField(fields map[string]any, key string) string {
	if v, ok := fields[key].(string); ok {
		return v
	}
	return ""
}
