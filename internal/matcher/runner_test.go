package matcher

import (
	"reflect"
	"testing"

	"go.uber.org/zap"

	"github.com/donor-resolver/app/models"
	"github.com/donor-resolver/internal/nickname"
	"github.com/donor-resolver/internal/normalizer"
)

func donation(id, first, last, city, state string) models.DonationRecord {
	return models.DonationRecord{
		DonationID: id,
		FirstName:  first,
		LastName:   last,
		City:       city,
		State:      state,
	}
}

func identity(id, first, middle, last, addr, city, state string) models.IdentityRecord {
	return models.IdentityRecord{
		IdentityID: id,
		FirstName:  first,
		MiddleName: middle,
		LastName:   last,
		AddressID:  addr,
		City:       city,
		State:      state,
	}
}

func runWaterfall(t *testing.T, opts Options, donations []models.DonationRecord, identities []models.IdentityRecord) []Candidate {
	t.Helper()
	norm, err := normalizer.New(128, zap.NewNop())
	if err != nil {
		t.Fatalf("normalizer.New: %v", err)
	}
	donKeys := make([]normalizer.NormalizedKey, len(donations))
	for i := range donations {
		donKeys[i] = norm.NormalizeDonation(&donations[i])
	}
	idKeys := make([]normalizer.NormalizedKey, len(identities))
	for j := range identities {
		idKeys[j] = norm.NormalizeIdentity(&identities[j])
	}
	runner := NewRunner(nickname.Default(), opts, zap.NewNop())
	return runner.Run(donations, donKeys, identities, idKeys)
}

func singleCandidate(t *testing.T, cands []Candidate) Candidate {
	t.Helper()
	if len(cands) != 1 {
		t.Fatalf("expected 1 candidate, got %d: %+v", len(cands), cands)
	}
	return cands[0]
}

func TestRun_ExactNameCity(t *testing.T) {
	cands := runWaterfall(t, DefaultOptions(),
		[]models.DonationRecord{donation("d1", "James", "Leitner", "Madison", "NJ")},
		[]models.IdentityRecord{identity("v1", "JAMES", "", "LEITNER", "a1", "MADISON", "NJ")},
	)
	c := singleCandidate(t, cands)
	if c.Method != models.MethodExactNameCity {
		t.Errorf("method = %s", c.Method)
	}
	if c.Confidence != 1.0 {
		t.Errorf("confidence = %v", c.Confidence)
	}
	if c.IdentityID != "v1" || c.AddressID != "a1" {
		t.Errorf("identity = %s/%s", c.IdentityID, c.AddressID)
	}
}

func TestRun_NicknameCity(t *testing.T) {
	cands := runWaterfall(t, DefaultOptions(),
		[]models.DonationRecord{donation("d1", "Greg", "Smith", "Chatham", "NJ")},
		[]models.IdentityRecord{identity("v1", "GREGORY", "", "SMITH", "a1", "CHATHAM", "NJ")},
	)
	c := singleCandidate(t, cands)
	if c.Method != models.MethodNicknameCity {
		t.Errorf("method = %s, expected %s", c.Method, models.MethodNicknameCity)
	}
	if c.Confidence != 0.90 {
		t.Errorf("confidence = %v", c.Confidence)
	}
}

func TestRun_NicknameRequiresEquivalence(t *testing.T) {
	// Same last name, city, and state but unrelated given names must not
	// produce a nickname candidate. DAVID shares no canonical with GREGORY,
	// and the phonetic stage separates them too (D130 vs G626).
	cands := runWaterfall(t, DefaultOptions(),
		[]models.DonationRecord{donation("d1", "David", "Smith", "Chatham", "NJ")},
		[]models.IdentityRecord{identity("v1", "GREGORY", "", "SMITH", "a1", "CHATHAM", "NJ")},
	)
	for _, c := range cands {
		if c.Method == models.MethodNicknameCity {
			t.Fatalf("unexpected nickname candidate: %+v", c)
		}
	}
}

func TestRun_PhoneticCity(t *testing.T) {
	cands := runWaterfall(t, DefaultOptions(),
		[]models.DonationRecord{donation("d1", "Jon", "Smyth", "Summit", "NJ")},
		[]models.IdentityRecord{identity("v1", "JOHN", "", "SMITH", "a1", "SUMMIT", "NJ")},
	)
	c := singleCandidate(t, cands)
	if c.Method != models.MethodPhoneticCity {
		t.Errorf("method = %s, expected %s", c.Method, models.MethodPhoneticCity)
	}
	if c.Confidence != 0.80 {
		t.Errorf("confidence = %v", c.Confidence)
	}
}

func TestRun_InitialCity(t *testing.T) {
	cands := runWaterfall(t, DefaultOptions(),
		[]models.DonationRecord{donation("d1", "J", "Leitner", "Madison", "NJ")},
		[]models.IdentityRecord{identity("v1", "JAMES", "", "LEITNER", "a1", "MADISON", "NJ")},
	)
	c := singleCandidate(t, cands)
	if c.Method != models.MethodInitialCity {
		t.Errorf("method = %s, expected %s", c.Method, models.MethodInitialCity)
	}
	if c.Confidence != 0.75 {
		t.Errorf("confidence = %v", c.Confidence)
	}
}

func TestRun_MiddleNameCity(t *testing.T) {
	// Donor goes by a middle name: the donation's first name joins against
	// the identity's middle name.
	cands := runWaterfall(t, DefaultOptions(),
		[]models.DonationRecord{donation("d1", "Alan", "Turner", "Summit", "NJ")},
		[]models.IdentityRecord{identity("v1", "CHRISTOPHER", "ALAN", "TURNER", "a1", "SUMMIT", "NJ")},
	)
	c := singleCandidate(t, cands)
	if c.Method != models.MethodMiddleNameCity {
		t.Errorf("method = %s, expected %s", c.Method, models.MethodMiddleNameCity)
	}
	if c.Confidence != 0.70 {
		t.Errorf("confidence = %v", c.Confidence)
	}
}

func TestRun_MiddleNameMinLength(t *testing.T) {
	// A bare middle initial never satisfies the middle-name stage.
	cands := runWaterfall(t, DefaultOptions(),
		[]models.DonationRecord{donation("d1", "Alan", "Turner", "Summit", "NJ")},
		[]models.IdentityRecord{identity("v1", "CHRISTOPHER", "A", "TURNER", "a1", "SUMMIT", "NJ")},
	)
	if len(cands) != 0 {
		t.Fatalf("expected no candidates, got %+v", cands)
	}
}

func TestRun_CrossCityRejectedByDefault(t *testing.T) {
	// Exact name but different cities: with the state-only fallback
	// disabled, the record falls all the way through.
	cands := runWaterfall(t, DefaultOptions(),
		[]models.DonationRecord{donation("d1", "James", "Leitner", "Madison", "NJ")},
		[]models.IdentityRecord{identity("v1", "JAMES", "", "LEITNER", "a1", "PRINCETON", "NJ")},
	)
	if len(cands) != 0 {
		t.Fatalf("expected no candidates, got %+v", cands)
	}
}

func TestRun_StateFallbackEnabled(t *testing.T) {
	opts := DefaultOptions()
	opts.EnableStateFallback = true
	cands := runWaterfall(t, opts,
		[]models.DonationRecord{donation("d1", "James", "Leitner", "Madison", "NJ")},
		[]models.IdentityRecord{identity("v1", "JAMES", "", "LEITNER", "a1", "PRINCETON", "NJ")},
	)
	c := singleCandidate(t, cands)
	if c.Method != models.MethodExactNameState {
		t.Errorf("method = %s, expected %s", c.Method, models.MethodExactNameState)
	}
	if c.Confidence != 0.85 {
		t.Errorf("confidence = %v", c.Confidence)
	}
}

func TestRun_NoMatch(t *testing.T) {
	cands := runWaterfall(t, DefaultOptions(),
		[]models.DonationRecord{donation("d1", "Xavier", "Quintanilla", "Erewhon", "ZZ")},
		[]models.IdentityRecord{identity("v1", "JAMES", "", "LEITNER", "a1", "MADISON", "NJ")},
	)
	if len(cands) != 0 {
		t.Fatalf("expected no candidates, got %+v", cands)
	}
}

func TestRun_InvalidDonationSkipped(t *testing.T) {
	cands := runWaterfall(t, DefaultOptions(),
		[]models.DonationRecord{donation("d1", "", "Leitner", "Madison", "NJ")},
		[]models.IdentityRecord{identity("v1", "JAMES", "", "LEITNER", "a1", "MADISON", "NJ")},
	)
	if len(cands) != 0 {
		t.Fatalf("nameless donation should produce no candidates, got %+v", cands)
	}
}

func TestRun_EarlierStageExcludesLater(t *testing.T) {
	// One donation, two identities: an exact hit and a phonetic-only hit.
	// The exact stage matches the donation and removes it from the working
	// set, so the phonetic stage never sees it.
	cands := runWaterfall(t, DefaultOptions(),
		[]models.DonationRecord{donation("d1", "John", "Smith", "Summit", "NJ")},
		[]models.IdentityRecord{
			identity("v1", "JOHN", "", "SMITH", "a1", "SUMMIT", "NJ"),
			identity("v2", "JON", "", "SMYTH", "a2", "SUMMIT", "NJ"),
		},
	)
	c := singleCandidate(t, cands)
	if c.Method != models.MethodExactNameCity || c.IdentityID != "v1" {
		t.Errorf("got %+v, expected exact match against v1", c)
	}
}

func TestRun_MultipleCandidatesSameStage(t *testing.T) {
	// Two identities with identical names in the same city both surface as
	// candidates; picking a winner is the conflict resolver's job.
	cands := runWaterfall(t, DefaultOptions(),
		[]models.DonationRecord{donation("d1", "James", "Leitner", "Madison", "NJ")},
		[]models.IdentityRecord{
			identity("v2", "JAMES", "", "LEITNER", "a2", "MADISON", "NJ"),
			identity("v1", "JAMES", "", "LEITNER", "a1", "MADISON", "NJ"),
		},
	)
	if len(cands) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(cands))
	}
	for _, c := range cands {
		if c.Method != models.MethodExactNameCity {
			t.Errorf("method = %s", c.Method)
		}
	}
}

func TestRun_DeterministicAcrossWorkerCounts(t *testing.T) {
	donations := []models.DonationRecord{
		donation("d1", "James", "Leitner", "Madison", "NJ"),
		donation("d2", "Greg", "Smith", "Chatham", "NJ"),
		donation("d3", "J", "Honeyman", "Summit", "NJ"),
		donation("d4", "Alan", "Turner", "Summit", "NJ"),
		donation("d5", "Nobody", "Anywhere", "Erewhon", "ZZ"),
		donation("d6", "Jon", "Smyth", "Summit", "NJ"),
	}
	identities := []models.IdentityRecord{
		identity("v1", "JAMES", "", "LEITNER", "a1", "MADISON", "NJ"),
		identity("v2", "GREGORY", "", "SMITH", "a2", "CHATHAM", "NJ"),
		identity("v3", "JOSEPH", "", "HONEYMAN", "a3", "SUMMIT", "NJ"),
		identity("v4", "CHRISTOPHER", "ALAN", "TURNER", "a4", "SUMMIT", "NJ"),
		identity("v5", "JOHN", "", "SMITH", "a5", "SUMMIT", "NJ"),
	}

	var baseline []Candidate
	for _, workers := range []int{1, 2, 4, 8} {
		opts := DefaultOptions()
		opts.Workers = workers
		cands := runWaterfall(t, opts, donations, identities)
		if baseline == nil {
			baseline = cands
			continue
		}
		if !reflect.DeepEqual(baseline, cands) {
			t.Errorf("workers=%d produced a different candidate stream", workers)
		}
	}
}
