package matcher

import (
	"testing"

	"github.com/donor-resolver/app/models"
)

func TestResolve_HighestConfidenceWins(t *testing.T) {
	res := Resolve([]Candidate{
		{DonationID: "d1", IdentityID: "v2", AddressID: "a2", Confidence: 0.75, Method: models.MethodInitialCity},
		{DonationID: "d1", IdentityID: "v1", AddressID: "a1", Confidence: 1.0, Method: models.MethodExactNameCity},
	})
	best, ok := res.Best["d1"]
	if !ok {
		t.Fatal("no winner for d1")
	}
	if best.IdentityID != "v1" || best.Confidence != 1.0 {
		t.Errorf("winner = %+v", best)
	}
	if len(res.Ambiguous) != 0 {
		t.Errorf("different confidences are not ambiguous: %v", res.Ambiguous)
	}
}

func TestResolve_TieBreaksToLowestIdentityID(t *testing.T) {
	res := Resolve([]Candidate{
		{DonationID: "d1", IdentityID: "v9", AddressID: "a1", Confidence: 1.0, Method: models.MethodExactNameCity},
		{DonationID: "d1", IdentityID: "v10", AddressID: "a2", Confidence: 1.0, Method: models.MethodExactNameCity},
		{DonationID: "d1", IdentityID: "v2", AddressID: "a3", Confidence: 1.0, Method: models.MethodExactNameCity},
	})
	best := res.Best["d1"]
	// IDs are opaque strings; "v10" sorts before "v2" and "v9".
	if best.IdentityID != "v10" {
		t.Errorf("winner = %s, expected lexicographically lowest v10", best.IdentityID)
	}
	if res.Ambiguous[models.MethodExactNameCity] != 1 {
		t.Errorf("ambiguous = %v, expected 1 for exact stage", res.Ambiguous)
	}
}

func TestResolve_TieBreaksToLowestAddressID(t *testing.T) {
	res := Resolve([]Candidate{
		{DonationID: "d1", IdentityID: "v1", AddressID: "a2", Confidence: 0.9, Method: models.MethodNicknameCity},
		{DonationID: "d1", IdentityID: "v1", AddressID: "a1", Confidence: 0.9, Method: models.MethodNicknameCity},
	})
	best := res.Best["d1"]
	if best.AddressID != "a1" {
		t.Errorf("winner address = %s, expected a1", best.AddressID)
	}
	if res.Ambiguous[models.MethodNicknameCity] != 1 {
		t.Errorf("ambiguous = %v", res.Ambiguous)
	}
}

func TestResolve_AmbiguityCountsPerDonationNotPerCandidate(t *testing.T) {
	res := Resolve([]Candidate{
		{DonationID: "d1", IdentityID: "v1", AddressID: "a1", Confidence: 1.0, Method: models.MethodExactNameCity},
		{DonationID: "d1", IdentityID: "v2", AddressID: "a2", Confidence: 1.0, Method: models.MethodExactNameCity},
		{DonationID: "d1", IdentityID: "v3", AddressID: "a3", Confidence: 1.0, Method: models.MethodExactNameCity},
		{DonationID: "d2", IdentityID: "v4", AddressID: "a4", Confidence: 0.75, Method: models.MethodInitialCity},
		{DonationID: "d2", IdentityID: "v5", AddressID: "a5", Confidence: 0.75, Method: models.MethodInitialCity},
	})
	if res.Ambiguous[models.MethodExactNameCity] != 1 {
		t.Errorf("exact ambiguity = %d, expected 1", res.Ambiguous[models.MethodExactNameCity])
	}
	if res.Ambiguous[models.MethodInitialCity] != 1 {
		t.Errorf("initial ambiguity = %d, expected 1", res.Ambiguous[models.MethodInitialCity])
	}
}

func TestResolve_LowerConfidenceNeverCountsAsTie(t *testing.T) {
	res := Resolve([]Candidate{
		{DonationID: "d1", IdentityID: "v1", AddressID: "a1", Confidence: 1.0, Method: models.MethodExactNameCity},
		{DonationID: "d1", IdentityID: "v2", AddressID: "a2", Confidence: 0.75, Method: models.MethodInitialCity},
		{DonationID: "d1", IdentityID: "v3", AddressID: "a3", Confidence: 0.75, Method: models.MethodInitialCity},
	})
	if len(res.Ambiguous) != 0 {
		t.Errorf("ambiguous = %v, expected none", res.Ambiguous)
	}
	if res.Best["d1"].IdentityID != "v1" {
		t.Errorf("winner = %s", res.Best["d1"].IdentityID)
	}
}

func TestResolve_OrderIndependent(t *testing.T) {
	cands := []Candidate{
		{DonationID: "d1", IdentityID: "v3", AddressID: "a3", Confidence: 0.9, Method: models.MethodNicknameCity},
		{DonationID: "d1", IdentityID: "v1", AddressID: "a1", Confidence: 0.9, Method: models.MethodNicknameCity},
		{DonationID: "d1", IdentityID: "v2", AddressID: "a2", Confidence: 0.9, Method: models.MethodNicknameCity},
	}
	forward := Resolve(cands)

	reversed := make([]Candidate, len(cands))
	for i := range cands {
		reversed[i] = cands[len(cands)-1-i]
	}
	backward := Resolve(reversed)

	if forward.Best["d1"] != backward.Best["d1"] {
		t.Errorf("winner depends on candidate order: %+v vs %+v",
			forward.Best["d1"], backward.Best["d1"])
	}
	if forward.Best["d1"].IdentityID != "v1" {
		t.Errorf("winner = %s, expected v1", forward.Best["d1"].IdentityID)
	}
}

func TestResolve_Empty(t *testing.T) {
	res := Resolve(nil)
	if len(res.Best) != 0 || len(res.Ambiguous) != 0 {
		t.Errorf("empty input should resolve to nothing: %+v", res)
	}
}
