package matcher

import (
	"strings"

	"github.com/donor-resolver/app/models"
	"github.com/donor-resolver/internal/nickname"
	"github.com/donor-resolver/internal/normalizer"
)

// Candidate is one potential donation-to-identity match produced by a
// stage. Candidates are ephemeral: many may exist per donation, and the
// conflict resolver consumes them immediately.
type Candidate struct {
	DonationID string
	IdentityID string
	AddressID  string
	Confidence float64
	Method     string
}

// Stage is one strategy of the matching waterfall: an equality join between
// donation and identity records on a key built from normalized fields,
// optionally refined by a predicate over the two keys. The join is always
// on derived keys, never raw text, and always through a hash index so a
// stage costs O(donations + identities).
type Stage struct {
	Method     string
	Confidence float64

	// DonationKey and IdentityKey build the join key for each side. The
	// boolean is false when the record cannot participate in this stage
	// (for example a missing first initial), which acts as a sentinel key
	// that never matches.
	DonationKey func(k *normalizer.NormalizedKey) (string, bool)
	IdentityKey func(k *normalizer.NormalizedKey) (string, bool)

	// Accept refines a key collision. Nil means key equality suffices.
	Accept func(d, i *normalizer.NormalizedKey) bool
}

const keySep = "\x1f"

func joinKey(parts ...string) (string, bool) {
	for _, p := range parts {
		if p == "" {
			return "", false
		}
	}
	return strings.Join(parts, keySep), true
}

// buildStages returns the waterfall in execution order. Confidences are
// strictly decreasing; the optional state-only fallback sits between the
// nickname and phonetic stages and is excluded unless enabled, because its
// cross-city matches are a known false-positive hazard.
func buildStages(table *nickname.Table, opts Options) []Stage {
	exact := Stage{
		Method:     models.MethodExactNameCity,
		Confidence: models.ConfidenceExactNameCity,
		DonationKey: func(k *normalizer.NormalizedKey) (string, bool) {
			return joinKey(k.FirstClean, k.LastClean, k.CityClean, k.State)
		},
		IdentityKey: func(k *normalizer.NormalizedKey) (string, bool) {
			return joinKey(k.FirstClean, k.LastClean, k.CityClean, k.State)
		},
	}

	nick := Stage{
		Method:     models.MethodNicknameCity,
		Confidence: models.ConfidenceNicknameCity,
		DonationKey: func(k *normalizer.NormalizedKey) (string, bool) {
			return joinKey(k.LastClean, k.CityClean, k.State)
		},
		IdentityKey: func(k *normalizer.NormalizedKey) (string, bool) {
			return joinKey(k.LastClean, k.CityClean, k.State)
		},
		Accept: func(d, i *normalizer.NormalizedKey) bool {
			return table.Equivalent(d.FirstClean, i.FirstClean)
		},
	}

	stateOnly := Stage{
		Method:     models.MethodExactNameState,
		Confidence: models.ConfidenceExactNameState,
		DonationKey: func(k *normalizer.NormalizedKey) (string, bool) {
			return joinKey(k.FirstClean, k.LastClean, k.State)
		},
		IdentityKey: func(k *normalizer.NormalizedKey) (string, bool) {
			return joinKey(k.FirstClean, k.LastClean, k.State)
		},
	}

	phonetic := Stage{
		Method:     models.MethodPhoneticCity,
		Confidence: models.ConfidencePhoneticCity,
		DonationKey: func(k *normalizer.NormalizedKey) (string, bool) {
			return joinKey(k.FirstSoundex, k.LastSoundex, k.CityClean, k.State)
		},
		IdentityKey: func(k *normalizer.NormalizedKey) (string, bool) {
			return joinKey(k.FirstSoundex, k.LastSoundex, k.CityClean, k.State)
		},
	}

	initial := Stage{
		Method:     models.MethodInitialCity,
		Confidence: models.ConfidenceInitialCity,
		DonationKey: func(k *normalizer.NormalizedKey) (string, bool) {
			return joinKey(k.FirstInitial, k.LastClean, k.CityClean, k.State)
		},
		IdentityKey: func(k *normalizer.NormalizedKey) (string, bool) {
			return joinKey(k.FirstInitial, k.LastClean, k.CityClean, k.State)
		},
	}

	minLen := opts.MiddleNameMinLength
	middle := Stage{
		Method:     models.MethodMiddleNameCity,
		Confidence: models.ConfidenceMiddleNameCity,
		// Catches people who go by their middle name: the donor's first
		// name joins against the identity's middle name. The length guard
		// keeps bare initials out of this stage on both sides.
		DonationKey: func(k *normalizer.NormalizedKey) (string, bool) {
			if len(k.FirstClean) < minLen {
				return "", false
			}
			return joinKey(k.FirstClean, k.LastClean, k.CityClean, k.State)
		},
		IdentityKey: func(k *normalizer.NormalizedKey) (string, bool) {
			if len(k.MiddleClean) < minLen {
				return "", false
			}
			return joinKey(k.MiddleClean, k.LastClean, k.CityClean, k.State)
		},
	}

	stages := []Stage{exact, nick}
	if opts.EnableStateFallback {
		stages = append(stages, stateOnly)
	}
	return append(stages, phonetic, initial, middle)
}
