package models

// MethodStats is the per-method slice of the verification report.
type MethodStats struct {
	Method        string  `json:"method" bson:"method"`
	Count         int     `json:"count" bson:"count"`
	Percent       float64 `json:"percent" bson:"percent"`
	AvgConfidence float64 `json:"avg_confidence" bson:"avg_confidence"`
}

// NearMiss is a report-only audit entry: the closest identity found for an
// unmatched donation. Never feeds back into matching decisions.
type NearMiss struct {
	DonationID   string  `json:"donation_id" bson:"donation_id"`
	DonorName    string  `json:"donor_name" bson:"donor_name"`
	IdentityID   string  `json:"identity_id" bson:"identity_id"`
	IdentityName string  `json:"identity_name" bson:"identity_name"`
	Similarity   float64 `json:"similarity" bson:"similarity"`
}

// MatchStatistics is the verification report for one full batch run,
// intended for operator review before the result table is promoted.
type MatchStatistics struct {
	TotalDonations int     `json:"total_donations" bson:"total_donations"`
	MatchedCount   int     `json:"matched_count" bson:"matched_count"`
	UnmatchedCount int     `json:"unmatched_count" bson:"unmatched_count"`
	MatchRate      float64 `json:"match_rate" bson:"match_rate"`
	AvgConfidence  float64 `json:"avg_confidence" bson:"avg_confidence"`

	// ByMethod is ordered by stage confidence, unmatched last.
	ByMethod []MethodStats `json:"by_method" bson:"by_method"`

	// Donations whose best confidence was shared by more than one
	// candidate identity. The tie-break resolves them deterministically;
	// the counts let operators audit ambiguity rates per stage.
	AmbiguousMatches  int            `json:"ambiguous_matches" bson:"ambiguous_matches"`
	AmbiguousByMethod map[string]int `json:"ambiguous_by_method,omitempty" bson:"ambiguous_by_method,omitempty"`

	// Matches produced by the optional state-only fallback stage are a
	// known cross-city false-positive hazard and are reported separately.
	StateFallbackMatches int `json:"state_fallback_matches" bson:"state_fallback_matches"`

	NearMisses []NearMiss `json:"near_misses,omitempty" bson:"near_misses,omitempty"`
}
