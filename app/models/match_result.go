package models

// Method constants. Each matching stage reports exactly one method string,
// and every method carries a fixed confidence; confidences are never blended.
const (
	MethodExactNameCity  = "exact_name_city"
	MethodNicknameCity   = "nickname_city"
	MethodExactNameState = "exact_name_state"
	MethodPhoneticCity   = "phonetic_city"
	MethodInitialCity    = "initial_city"
	MethodMiddleNameCity = "middle_name_city"
	MethodUnmatched      = "unmatched"
)

// Fixed per-stage confidence values, strictly decreasing with stage order.
const (
	ConfidenceExactNameCity  = 1.00
	ConfidenceNicknameCity   = 0.90
	ConfidenceExactNameState = 0.85
	ConfidencePhoneticCity   = 0.80
	ConfidenceInitialCity    = 0.75
	ConfidenceMiddleNameCity = 0.70
	ConfidenceUnmatched      = 0.0
)

// MatchResult is one output row per input donation. Unmatched donations are
// retained with an empty identity reference, never dropped.
type MatchResult struct {
	DonationID string  `json:"donation_id" bson:"donation_id"`
	IdentityID string  `json:"identity_id,omitempty" bson:"identity_id,omitempty"`
	AddressID  string  `json:"address_id,omitempty" bson:"address_id,omitempty"`
	Confidence float64 `json:"confidence" bson:"confidence"`
	Method     string  `json:"method" bson:"method"`

	// Original donation attributes carried through for downstream
	// reporting and audit display.
	CommitteeName string  `json:"committee_name" bson:"committee_name"`
	FullName      string  `json:"full_name" bson:"full_name"`
	City          string  `json:"city" bson:"city"`
	State         string  `json:"state" bson:"state"`
	PostalCode    string  `json:"postal_code,omitempty" bson:"postal_code,omitempty"`
	Amount        float64 `json:"amount" bson:"amount"`
	ElectionType  string  `json:"election_type" bson:"election_type"`
	ElectionYear  int     `json:"election_year" bson:"election_year"`
}

// Matched reports whether the donation resolved to an identity.
func (r *MatchResult) Matched() bool {
	return r.Method != MethodUnmatched && r.IdentityID != ""
}

// MethodConfidence maps a method string to its fixed confidence value.
func MethodConfidence(method string) float64 {
	switch method {
	case MethodExactNameCity:
		return ConfidenceExactNameCity
	case MethodNicknameCity:
		return ConfidenceNicknameCity
	case MethodExactNameState:
		return ConfidenceExactNameState
	case MethodPhoneticCity:
		return ConfidencePhoneticCity
	case MethodInitialCity:
		return ConfidenceInitialCity
	case MethodMiddleNameCity:
		return ConfidenceMiddleNameCity
	default:
		return ConfidenceUnmatched
	}
}
