package leadstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/techzoneai/revive-voice-service/internal/domain"
	"github.com/techzoneai/revive-voice-service/pkg/logger"
	"go.uber.org/zap"
)

const defaultHubSpotBaseURL = "https://api.hubapi.com"

// hubspotProperties are the contact properties requested on every read.
var hubspotProperties = []string{"email", "firstname", "lastname", "hs_lead_status", "address", "phone"}

// hubspotFieldNames maps the canonical field vocabulary to HubSpot contact
// property names. Fields missing from the map are lower-snake-cased, since
// HubSpot property names cannot carry spaces.
var hubspotFieldNames = map[string]string{
	FieldFirstName: "firstname",
	FieldLastName:  "lastname",
	FieldAddress:   "address",
	FieldEmail:     "email",
	FieldPhone:     "phone",
	FieldStatus:    "hs_lead_status",
}

// HubSpotStore reads and writes leads through the HubSpot contacts API.
type HubSpotStore struct {
	BaseURL     string
	AccessToken string
	HTTPClient  *http.Client
}

// NewHubSpotStore creates a HubSpot-backed lead store.
func NewHubSpotStore(accessToken string) *HubSpotStore {
	return &HubSpotStore{
		BaseURL:     defaultHubSpotBaseURL,
		AccessToken: accessToken,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type hubspotContact struct {
	ID         string            `json:"id"`
	Properties map[string]string `json:"properties"`
}

type hubspotListResponse struct {
	Results []hubspotContact `json:"results"`
}

// Fetch returns the leads for the given contact ids, skipping ids that do
// not resolve.
func (s *HubSpotStore) Fetch(ctx context.Context, ids []string) ([]domain.Lead, error) {
	leads := make([]domain.Lead, 0, len(ids))
	for _, id := range ids {
		endpoint := fmt.Sprintf("%s/crm/v3/objects/contacts/%s?properties=%s",
			s.BaseURL, id, strings.Join(hubspotProperties, ","))
		body, err := s.do(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			logger.Base().Warn("hubspot contact fetch failed, skipping",
				zap.String("lead_id", id), zap.Error(err))
			continue
		}
		var contact hubspotContact
		if err := json.Unmarshal(body, &contact); err != nil {
			logger.Base().Warn("hubspot contact unreadable, skipping",
				zap.String("lead_id", id), zap.Error(err))
			continue
		}
		lead, err := leadFromContact(contact)
		if err != nil {
			continue
		}
		leads = append(leads, lead)
	}
	return leads, nil
}

// FetchByStatus pages the contact list and keeps contacts whose
// hs_lead_status matches status.
func (s *HubSpotStore) FetchByStatus(ctx context.Context, status string) ([]domain.Lead, error) {
	endpoint := fmt.Sprintf("%s/crm/v3/objects/contacts?limit=100&archived=false&properties=%s",
		s.BaseURL, strings.Join(hubspotProperties, ","))
	body, err := s.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &domain.StoreError{Store: "hubspot", Op: "list", Err: err}
	}

	var list hubspotListResponse
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, &domain.StoreError{Store: "hubspot", Op: "list", Err: err}
	}

	leads := make([]domain.Lead, 0, len(list.Results))
	for _, contact := range list.Results {
		if contact.Properties["hs_lead_status"] != status {
			continue
		}
		lead, err := leadFromContact(contact)
		if err != nil {
			continue
		}
		leads = append(leads, lead)
	}
	return leads, nil
}

// Update writes the given canonical fields to one contact, translating field
// names into HubSpot properties.
func (s *HubSpotStore) Update(ctx context.Context, id string, fields map[string]any) error {
	properties := make(map[string]string, len(fields))
	for name, value := range fields {
		properties[hubspotPropertyName(name)] = fmt.Sprint(value)
	}
	payload, err := json.Marshal(map[string]any{"properties": properties})
	if err != nil {
		return &domain.StoreError{Store: "hubspot", Op: "update", Err: err}
	}

	endpoint := fmt.Sprintf("%s/crm/v3/objects/contacts/%s", s.BaseURL, id)
	if _, err := s.do(ctx, http.MethodPatch, endpoint, payload); err != nil {
		return &domain.StoreError{Store: "hubspot", Op: "update", Err: err}
	}
	return nil
}

// UpdateBatch applies each update independently, skipping failures.
func (s *HubSpotStore) UpdateBatch(ctx context.Context, updates []Update) ([]string, error) {
	updated := make([]string, 0, len(updates))
	for _, u := range updates {
		if err := s.Update(ctx, u.ID, u.Fields); err != nil {
			logger.Base().Warn("hubspot batch update failed, skipping",
				zap.String("lead_id", u.ID), zap.Error(err))
			continue
		}
		updated = append(updated, u.ID)
	}
	return updated, nil
}

func (s *HubSpotStore) do(ctx context.Context, method, endpoint string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.AccessToken)
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
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}

func leadFromContact(contact hubspotContact) (domain.Lead, error) {
	props := contact.Properties
	return domain.NewLead(
		contact.ID,
		props["firstname"],
		props["lastname"],
		props["address"],
		props["email"],
		props["phone"],
	)
}

func hubspotPropertyName(canonical string) string {
	if name, ok := hubspotFieldNames[canonical]; ok {
		return name
	}
	return strings.ReplaceAll(strings.ToLower(canonical), " ", "_")
}
