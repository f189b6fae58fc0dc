package call

import (
	"time"

	"github.com/techzoneai/revive-voice-service/internal/domain"
)

// dateLayout is the minute-precision local timestamp injected into every
// call so the agent can speak the current date naturally.
const dateLayout = "2006-01-02 15:04"

// StandardParamsBuilder is the default ParamsBuilder. The phone number is
// taken verbatim from the lead with no E.164 normalization; malformed
// numbers surface as provider-side failures.
type StandardParamsBuilder struct {
	Config CallConfig

	// now is swappable for tests; nil uses the wall clock.
	now func() time.Time
}

// NewStandardParamsBuilder creates the default builder.
func NewStandardParamsBuilder(cfg CallConfig) *StandardParamsBuilder {
	return &StandardParamsBuilder{Config: cfg}
}

// Build produces the call-initiation payload for one lead. The variable
// mapping always carries the lead id so the end-of-call webhook can be
// reconciled back to the originating record, plus a freshly computed date
// string so personalization is never stale.
func (b *StandardParamsBuilder) Build(lead domain.Lead) domain.CallParameters {
	clock := b.now
	if clock == nil {
		clock = time.Now
	}
	return domain.CallParameters{
		PhoneNumber:  lead.Phone,
		AgentID:      b.Config.AgentID,
		FromNumberID: b.Config.FromNumberID,
		Variables: map[string]string{
			domain.VarLeadID:    lead.ID,
			domain.VarFirstName: lead.FirstName,
			domain.VarLastName:  lead.LastName,
			domain.VarEmail:     lead.Email,
			domain.VarAddress:   lead.Address,
			domain.VarDate:      clock().Format(dateLayout),
		},
	}
}
