package normalizer

import (
	"testing"

	"go.uber.org/zap"

	"github.com/donor-resolver/app/models"
)

func newTestNormalizer(t *testing.T) *Normalizer {
	t.Helper()
	n, err := New(128, zap.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return n
}

func TestCleanName(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "Lowercase", input: "james", expected: "JAMES"},
		{name: "SurroundingSpace", input: "  Leitner  ", expected: "LEITNER"},
		{name: "ApostropheVanishes", input: "O'Brien", expected: "OBRIEN"},
		{name: "HyphenBecomesSpace", input: "Smith-Jones", expected: "SMITH JONES"},
		{name: "Diacritics", input: "Müller", expected: "MULLER"},
		{name: "AccentedVowels", input: "José", expected: "JOSE"},
		{name: "DigitsDropped", input: "Smith 3rd", expected: "SMITH RD"},
		{name: "PunctuationDropped", input: "St. John", expected: "ST JOHN"},
		{name: "CollapsedWhitespace", input: "Mary   Ann", expected: "MARY ANN"},
		{name: "Empty", input: "", expected: ""},
		{name: "OnlyPunctuation", input: "...", expected: ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := CleanName(tc.input)
			if got != tc.expected {
				t.Errorf("CleanName(%q) = %q, expected %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestNormalizeDonation(t *testing.T) {
	n := newTestNormalizer(t)

	d := models.DonationRecord{
		FirstName:  "Gregory",
		MiddleName: "Alan",
		LastName:   "O'Brien",
		City:       "  chatham ",
		State:      "nj",
	}
	k := n.NormalizeDonation(&d)

	if k.FirstClean != "GREGORY" {
		t.Errorf("FirstClean = %q", k.FirstClean)
	}
	if k.MiddleClean != "ALAN" {
		t.Errorf("MiddleClean = %q", k.MiddleClean)
	}
	if k.LastClean != "OBRIEN" {
		t.Errorf("LastClean = %q", k.LastClean)
	}
	if k.FirstInitial != "G" {
		t.Errorf("FirstInitial = %q", k.FirstInitial)
	}
	if k.FirstSoundex != Soundex("GREGORY") {
		t.Errorf("FirstSoundex = %q", k.FirstSoundex)
	}
	if k.LastSoundex != Soundex("OBRIEN") {
		t.Errorf("LastSoundex = %q", k.LastSoundex)
	}
	if k.CityClean != "CHATHAM" {
		t.Errorf("CityClean = %q", k.CityClean)
	}
	if k.State != "NJ" {
		t.Errorf("State = %q", k.State)
	}
	if !k.Valid() {
		t.Error("key should be valid")
	}
}

func TestNormalizedKey_Valid(t *testing.T) {
	n := newTestNormalizer(t)

	testCases := []struct {
		name  string
		first string
		last  string
		valid bool
	}{
		{name: "BothPresent", first: "James", last: "Leitner", valid: true},
		{name: "MissingFirst", first: "", last: "Leitner", valid: false},
		{name: "MissingLast", first: "James", last: "", valid: false},
		{name: "FirstIsOnlyPunctuation", first: "...", last: "Leitner", valid: false},
		{name: "BothMissing", first: "", last: "", valid: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			d := models.DonationRecord{FirstName: tc.first, LastName: tc.last, City: "Madison", State: "NJ"}
			k := n.NormalizeDonation(&d)
			if k.Valid() != tc.valid {
				t.Errorf("Valid() = %v, expected %v", k.Valid(), tc.valid)
			}
		})
	}
}

func TestCityCacheReturnsSameCleaning(t *testing.T) {
	n := newTestNormalizer(t)

	id := models.IdentityRecord{FirstName: "A", LastName: "B", City: "New  York", State: "NY"}
	first := n.NormalizeIdentity(&id)
	second := n.NormalizeIdentity(&id)
	if first.CityClean != "NEW YORK" || second.CityClean != first.CityClean {
		t.Errorf("city cleaning unstable: %q then %q", first.CityClean, second.CityClean)
	}
}

func TestFoldToASCII(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{input: "café", expected: "cafe"},
		{input: "Łukasz", expected: "Lukasz"},
		{input: "plain", expected: "plain"},
	}
	for _, tc := range testCases {
		if got := FoldToASCII(tc.input); got != tc.expected {
			t.Errorf("FoldToASCII(%q) = %q, expected %q", tc.input, got, tc.expected)
		}
	}
}
