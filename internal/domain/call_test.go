package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLead(t *testing.T) {
	lead, err := NewLead("rec123", "Ada", "Lovelace", "12 Analytical Rd", "ada@example.com", "+15550001111")
	require.NoError(t, err)
	assert.Equal(t, "rec123", lead.ID)
	assert.Equal(t, "Ada Lovelace", lead.FullName())
}

func TestNewLeadRequiresID(t *testing.T) {
	_, err := NewLead("", "Ada", "", "", "", "")
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestNewLeadAllowsBlankFields(t *testing.T) {
	lead, err := NewLead("rec123", "", "", "", "", "")
	require.NoError(t, err)
	assert.Empty(t, lead.Phone)
	assert.Empty(t, lead.FullName())
}

func TestDurationMinutes(t *testing.T) {
	tests := []struct {
		name      string
		startedAt string
		endedAt   string
		want      float64
		wantErr   bool
	}{
		{
			name:      "three and a half minutes",
			startedAt: "2024-01-01T10:00:00Z",
			endedAt:   "2024-01-01T10:03:30Z",
			want:      3.5,
		},
		{
			name:      "zero duration",
			startedAt: "2024-01-01T10:00:00Z",
			endedAt:   "2024-01-01T10:00:00Z",
			want:      0,
		},
		{
			name:      "unparsable start",
			startedAt: "yesterday",
			endedAt:   "2024-01-01T10:03:30Z",
			wantErr:   true,
		},
		{
			name:      "unparsable end",
			startedAt: "2024-01-01T10:00:00Z",
			endedAt:   "",
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DurationMinutes(tt.startedAt, tt.endedAt)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestValidInterest(t *testing.T) {
	assert.True(t, ValidInterest(InterestInterested))
	assert.True(t, ValidInterest(InterestNotInterested))
	assert.True(t, ValidInterest(InterestUndecided))
	assert.False(t, ValidInterest("Maybe"))
	assert.False(t, ValidInterest(""))
	assert.False(t, ValidInterest("interested"))
}

func TestCallOutcomeLeadIdentity(t *testing.T) {
	outcome := CallOutcome{
		LeadInfo: map[string]string{
			VarLeadID:    "rec42",
			VarFirstName: "Grace",
			VarLastName:  "Hopper",
		},
	}
	assert.Equal(t, "rec42", outcome.LeadID())
	assert.Equal(t, "Grace Hopper", outcome.LeadName())

	assert.Empty(t, CallOutcome{}.LeadID())
}
