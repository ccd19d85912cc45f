package report

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/xrash/smetrics"
	"go.uber.org/zap"

	"github.com/donor-resolver/app/models"
	"github.com/donor-resolver/internal/normalizer"
)

// nearMissThreshold is the minimum name similarity worth reporting.
const nearMissThreshold = 0.85

// Auditor finds the closest registry identity for unmatched donations.
// The output is a report-only aid for operators reviewing match quality;
// similarity scores never become matches and never feed back into the
// waterfall.
type Auditor struct {
	limit  int
	logger *zap.Logger
}

// NewAuditor creates an Auditor reporting at most limit entries.
// limit <= 0 disables the audit.
func NewAuditor(limit int, logger *zap.Logger) *Auditor {
	return &Auditor{limit: limit, logger: logger}
}

// Audit scans unmatched results and scores each against identities sharing
// the donation's last-name Soundex and state, so the comparison stays
// near-linear instead of scanning the whole registry per donation. Returns
// the highest-similarity entries, capped at the configured limit.
func (a *Auditor) Audit(
	results []models.MatchResult,
	donKeys map[string]*normalizer.NormalizedKey,
	identities []models.IdentityRecord,
	idKeys []normalizer.NormalizedKey,
) []models.NearMiss {
	if a.limit <= 0 || len(identities) == 0 {
		return nil
	}

	index := make(map[string][]int, len(identities))
	for j := range identities {
		k := &idKeys[j]
		if k.LastSoundex == "" || k.State == "" {
			continue
		}
		bucket := k.LastSoundex + keySep + k.State
		index[bucket] = append(index[bucket], j)
	}

	var misses []models.NearMiss
	for i := range results {
		r := &results[i]
		if r.Matched() {
			continue
		}
		dk, ok := donKeys[r.DonationID]
		if !ok || !dk.Valid() {
			continue
		}
		bucket := dk.LastSoundex + keySep + dk.State
		donorName := dk.FirstClean + " " + dk.LastClean

		bestScore := 0.0
		bestIdx := -1
		for _, j := range index[bucket] {
			ik := &idKeys[j]
			score := nameSimilarity(donorName, ik.FirstClean+" "+ik.LastClean)
			if score > bestScore {
				bestScore = score
				bestIdx = j
			}
		}
		if bestIdx >= 0 && bestScore >= nearMissThreshold {
			id := &identities[bestIdx]
			misses = append(misses, models.NearMiss{
				DonationID:   r.DonationID,
				DonorName:    r.FullName,
				IdentityID:   id.IdentityID,
				IdentityName: strings.TrimSpace(id.FirstName + " " + id.LastName),
				Similarity:   bestScore,
			})
		}
	}

	sort.Slice(misses, func(i, j int) bool {
		if misses[i].Similarity != misses[j].Similarity {
			return misses[i].Similarity > misses[j].Similarity
		}
		return misses[i].DonationID < misses[j].DonationID
	})
	if len(misses) > a.limit {
		misses = misses[:a.limit]
	}
	a.logger.Debug("near-miss audit completed", zap.Int("entries", len(misses)))
	return misses
}

const keySep = "\x1f"

// nameSimilarity takes the better of Jaro-Winkler and normalized
// Levenshtein similarity over cleaned "FIRST LAST" strings.
func nameSimilarity(a, b string) float64 {
	jw := smetrics.JaroWinkler(a, b, 0.7, 4)

	dist := levenshtein.ComputeDistance(a, b)
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	lev := 0.0
	if maxLen > 0 {
		lev = 1.0 - float64(dist)/float64(maxLen)
	}

	if lev > jw {
		return lev
	}
	return jw
}
