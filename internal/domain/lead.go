package domain

// Lead statuses recognized by the reactivation campaign.
const (
	LeadStatusNew       = "NEW"
	LeadStatusContacted = "CONTACTED"
)

// Lead is the canonical in-memory representation of a CRM record,
// independent of any store's field naming. The ID is the store-native
// primary key; every other field is best-effort and may be blank.
type Lead struct {
	ID        string
	FirstName string
	LastName  string
	Address   string
	Email     string
	Phone     string
}

// NewLead builds a Lead from canonical field values. The id is the only
// required field; construction fails without it because the webhook leg
// cannot be reconciled back to a store record otherwise.
func NewLead(id, firstName, lastName, address, email, phone string) (Lead, error) {
	if id == "" {
		return Lead{}, &ValidationError{Msg: "lead id is required"}
	}
	return Lead{
		ID:        id,
		FirstName: firstName,
		LastName:  lastName,
		Address:   address,
		Email:     email,
		Phone:     phone,
	}, nil
}

// FullName returns the lead's display name for prompts and logs.
func (l Lead) FullName() string {
	switch {
	case l.FirstName == "":
		return l.LastName
	case l.LastName == "":
		return l.FirstName
	default:
		return l.FirstName + " " + l.LastName
	}
}
