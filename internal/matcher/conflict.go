package matcher

// Resolution is the outcome of conflict resolution: exactly one winning
// candidate per donation that produced any, plus per-method counts of
// donations whose best confidence was shared by more than one identity.
// Ties are resolved deterministically, never surfaced as errors; the counts
// exist so operators can audit ambiguity rates per stage.
type Resolution struct {
	Best      map[string]Candidate
	Ambiguous map[string]int
}

// Resolve collapses a candidate set to one winner per donation. The primary
// sort key is confidence; ties at the maximum confidence break to the
// lowest identity ID (a stable total order over the opaque IDs), then the
// lowest address ID. Lexicographic and never arbitrary, so reruns over the
// same snapshots pick the same winner every time.
func Resolve(candidates []Candidate) Resolution {
	res := Resolution{
		Best:      make(map[string]Candidate),
		Ambiguous: make(map[string]int),
	}
	ties := make(map[string]int)

	for _, c := range candidates {
		best, seen := res.Best[c.DonationID]
		if !seen {
			res.Best[c.DonationID] = c
			ties[c.DonationID] = 1
			continue
		}
		switch {
		case c.Confidence > best.Confidence:
			res.Best[c.DonationID] = c
			ties[c.DonationID] = 1
		case c.Confidence == best.Confidence:
			ties[c.DonationID]++
			if c.IdentityID < best.IdentityID ||
				(c.IdentityID == best.IdentityID && c.AddressID < best.AddressID) {
				res.Best[c.DonationID] = c
			}
		}
	}

	for donationID, n := range ties {
		if n > 1 {
			res.Ambiguous[res.Best[donationID].Method]++
		}
	}
	return res
}
