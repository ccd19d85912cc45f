package report

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/donor-resolver/app/models"
	"github.com/donor-resolver/internal/matcher"
)

// methodOrder is the reporting order for the per-method breakdown: stage
// confidence descending, unmatched last.
var methodOrder = []string{
	models.MethodExactNameCity,
	models.MethodNicknameCity,
	models.MethodExactNameState,
	models.MethodPhoneticCity,
	models.MethodInitialCity,
	models.MethodMiddleNameCity,
	models.MethodUnmatched,
}

// Assembler merges resolved candidates back over the full donation batch
// and derives the verification statistics.
type Assembler struct {
	logger *zap.Logger
}

// NewAssembler creates an Assembler.
func NewAssembler(logger *zap.Logger) *Assembler {
	return &Assembler{logger: logger}
}

// Assemble left-outer-joins every donation against its resolved candidate.
// The output always has exactly one row per input donation, in input order:
// unmatched donations are retained with an empty identity reference and
// confidence 0. An empty or degenerate identity snapshot therefore yields a
// complete, 100%-unmatched result set rather than a failed run, because
// downstream reporting depends on row-count stability.
func (a *Assembler) Assemble(donations []models.DonationRecord, res matcher.Resolution) ([]models.MatchResult, *models.MatchStatistics) {
	results := make([]models.MatchResult, 0, len(donations))

	for i := range donations {
		d := &donations[i]
		row := models.MatchResult{
			DonationID:    d.DonationID,
			Confidence:    models.ConfidenceUnmatched,
			Method:        models.MethodUnmatched,
			CommitteeName: d.CommitteeName,
			FullName:      d.FullName,
			City:          d.City,
			State:         d.State,
			PostalCode:    d.PostalCode,
			Amount:        d.Amount,
			ElectionType:  d.ElectionType,
			ElectionYear:  d.ElectionYear,
		}
		if best, ok := res.Best[d.DonationID]; ok {
			row.IdentityID = best.IdentityID
			row.AddressID = best.AddressID
			row.Confidence = best.Confidence
			row.Method = best.Method
		}
		results = append(results, row)
	}

	stats := a.statistics(results, res)
	a.logger.Info("batch assembled",
		zap.Int("total", stats.TotalDonations),
		zap.Int("matched", stats.MatchedCount),
		zap.Float64("match_rate", stats.MatchRate))
	return results, stats
}

func (a *Assembler) statistics(results []models.MatchResult, res matcher.Resolution) *models.MatchStatistics {
	stats := &models.MatchStatistics{
		TotalDonations: len(results),
	}

	counts := make(map[string]int)
	confSums := make(map[string]float64)
	var matchedConfSum float64

	for i := range results {
		r := &results[i]
		counts[r.Method]++
		confSums[r.Method] += r.Confidence
		if r.Matched() {
			stats.MatchedCount++
			matchedConfSum += r.Confidence
		}
	}
	stats.UnmatchedCount = stats.TotalDonations - stats.MatchedCount
	if stats.TotalDonations > 0 {
		stats.MatchRate = float64(stats.MatchedCount) / float64(stats.TotalDonations)
	}
	if stats.MatchedCount > 0 {
		stats.AvgConfidence = matchedConfSum / float64(stats.MatchedCount)
	}

	for _, method := range methodOrder {
		n := counts[method]
		if n == 0 {
			continue
		}
		stats.ByMethod = append(stats.ByMethod, models.MethodStats{
			Method:        method,
			Count:         n,
			Percent:       float64(n) / float64(stats.TotalDonations) * 100,
			AvgConfidence: confSums[method] / float64(n),
		})
	}

	stats.StateFallbackMatches = counts[models.MethodExactNameState]

	if len(res.Ambiguous) > 0 {
		stats.AmbiguousByMethod = make(map[string]int, len(res.Ambiguous))
		for method, n := range res.Ambiguous {
			stats.AmbiguousByMethod[method] = n
			stats.AmbiguousMatches += n
		}
	}
	return stats
}

// Fingerprint hashes the result rows in order. Two runs over identical
// snapshots must produce identical fingerprints; operators compare them to
// audit idempotence.
func Fingerprint(results []models.MatchResult) string {
	h := sha256.New()
	enc := json.NewEncoder(h)
	for i := range results {
		// Encoding cannot fail for these plain structs.
		_ = enc.Encode(&results[i])
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}
