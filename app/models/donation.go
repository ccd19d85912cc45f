package models

// DonationRecord is one row of a campaign-donation batch, produced by the
// upstream filing ingestion step. Read-only to the matching engine.
type DonationRecord struct {
	DonationID    string  `json:"donation_id" bson:"donation_id"`
	CommitteeName string  `json:"committee_name" bson:"committee_name"`
	FullName      string  `json:"full_name" bson:"full_name"`
	FirstName     string  `json:"first_name" bson:"first_name"`
	MiddleName    string  `json:"middle_name,omitempty" bson:"middle_name,omitempty"`
	LastName      string  `json:"last_name" bson:"last_name"`
	City          string  `json:"city" bson:"city"`
	State         string  `json:"state" bson:"state"`
	PostalCode    string  `json:"postal_code,omitempty" bson:"postal_code,omitempty"` // untrusted, kept for audit display only
	Employer      string  `json:"employer,omitempty" bson:"employer,omitempty"`
	Occupation    string  `json:"occupation,omitempty" bson:"occupation,omitempty"`
	Amount        float64 `json:"amount" bson:"amount"`
	ElectionType  string  `json:"election_type" bson:"election_type"`
	ElectionYear  int     `json:"election_year" bson:"election_year"`
}
