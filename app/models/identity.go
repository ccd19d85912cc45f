package models

// IdentityRecord is one resolved person from the canonical registry
// snapshot, carrying its resolved current address. Read-only to the engine;
// the registry is owned by the upstream identity-resolution process.
type IdentityRecord struct {
	IdentityID string `json:"identity_id" bson:"identity_id"`
	FirstName  string `json:"first_name" bson:"first_name"`
	MiddleName string `json:"middle_name,omitempty" bson:"middle_name,omitempty"`
	LastName   string `json:"last_name" bson:"last_name"`
	AddressID  string `json:"address_id" bson:"address_id"`
	City       string `json:"city" bson:"city"`
	State      string `json:"state" bson:"state"`
	PostalCode string `json:"postal_code,omitempty" bson:"postal_code,omitempty"`
	County     string `json:"county,omitempty" bson:"county,omitempty"`
}
