package matcher

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/donor-resolver/app/models"
	"github.com/donor-resolver/internal/nickname"
	"github.com/donor-resolver/internal/normalizer"
)

// Options controls the waterfall composition and intra-stage parallelism.
type Options struct {
	// EnableStateFallback turns on the exact-name, state-only stage.
	// Disabled by default; see buildStages.
	EnableStateFallback bool

	// MiddleNameMinLength is the minimum cleaned-name length for the
	// middle-name stage, keeping bare initials from matching.
	MiddleNameMinLength int

	// Workers is the number of goroutines probing each stage's index.
	Workers int
}

// DefaultOptions returns the production defaults.
func DefaultOptions() Options {
	return Options{
		EnableStateFallback: false,
		MiddleNameMinLength: 2,
		Workers:             4,
	}
}

// Runner executes the ordered matching waterfall. Stages run strictly
// sequentially because each stage receives only the donations not yet
// matched by a prior stage; that shrinking working set is what makes the
// per-stage confidence meaningful, not a performance trick. Parallelism
// lives inside a stage, where workers probe a shared read-only index.
type Runner struct {
	stages []Stage
	opts   Options
	logger *zap.Logger
}

// NewRunner builds a Runner over the given nickname table.
func NewRunner(table *nickname.Table, opts Options, logger *zap.Logger) *Runner {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.MiddleNameMinLength < 1 {
		opts.MiddleNameMinLength = 1
	}
	return &Runner{
		stages: buildStages(table, opts),
		opts:   opts,
		logger: logger,
	}
}

// Stages exposes the configured waterfall order for reporting.
func (r *Runner) Stages() []Stage {
	return r.stages
}

// Run produces the stage candidates for a donation batch against an
// identity snapshot. donKeys[i] must be the normalized key of donations[i],
// idKeys[j] of identities[j]. Donations whose key is invalid (missing first
// or last name) never enter any stage and flow to the unmatched output.
//
// The output is deterministic for fixed inputs regardless of Workers:
// candidates are ordered by stage, then donation input order, then identity
// input order.
func (r *Runner) Run(
	donations []models.DonationRecord,
	donKeys []normalizer.NormalizedKey,
	identities []models.IdentityRecord,
	idKeys []normalizer.NormalizedKey,
) []Candidate {
	working := make([]int, 0, len(donations))
	for i := range donations {
		if donKeys[i].Valid() {
			working = append(working, i)
		}
	}
	skipped := len(donations) - len(working)
	if skipped > 0 {
		r.logger.Info("donations excluded from candidate generation",
			zap.Int("count", skipped))
	}

	var all []Candidate
	for _, stage := range r.stages {
		if len(working) == 0 {
			break
		}
		start := time.Now()

		index := r.buildIndex(stage, identities, idKeys)
		cands, matched := r.probeStage(stage, donations, donKeys, identities, idKeys, working, index)

		all = append(all, cands...)
		working = subtract(working, matched)

		r.logger.Debug("stage completed",
			zap.String("method", stage.Method),
			zap.Float64("confidence", stage.Confidence),
			zap.Int("candidates", len(cands)),
			zap.Int("matched", len(matched)),
			zap.Int("remaining", len(working)),
			zap.Duration("duration", time.Since(start)))
	}
	return all
}

// buildIndex hashes the identity side of a stage's join. Identities with
// unusable keys (missing names, missing stage fields) simply never enter
// the index.
func (r *Runner) buildIndex(stage Stage, identities []models.IdentityRecord, idKeys []normalizer.NormalizedKey) map[string][]int {
	index := make(map[string][]int, len(identities))
	for j := range identities {
		if !idKeys[j].Valid() {
			continue
		}
		key, ok := stage.IdentityKey(&idKeys[j])
		if !ok {
			continue
		}
		index[key] = append(index[key], j)
	}
	return index
}

type stageChunk struct {
	cands   []Candidate
	matched []int
}

// probeStage probes the identity index with the working donation set,
// partitioned across workers. The index is shared read-only; each worker
// accumulates into its own buffers, merged in partition order so the result
// is independent of scheduling.
func (r *Runner) probeStage(
	stage Stage,
	donations []models.DonationRecord,
	donKeys []normalizer.NormalizedKey,
	identities []models.IdentityRecord,
	idKeys []normalizer.NormalizedKey,
	working []int,
	index map[string][]int,
) ([]Candidate, []int) {
	workers := r.opts.Workers
	if workers > len(working) {
		workers = len(working)
	}
	if workers < 1 {
		workers = 1
	}

	chunks := make([]stageChunk, workers)
	chunkSize := (len(working) + workers - 1) / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		lo := w * chunkSize
		if lo > len(working) {
			lo = len(working)
		}
		hi := lo + chunkSize
		if hi > len(working) {
			hi = len(working)
		}
		wg.Add(1)
		go func(w, lo, hi int) {
			defer wg.Done()
			chunk := &chunks[w]
			for _, di := range working[lo:hi] {
				dk := &donKeys[di]
				key, ok := stage.DonationKey(dk)
				if !ok {
					continue
				}
				hit := false
				for _, ij := range index[key] {
					if stage.Accept != nil && !stage.Accept(dk, &idKeys[ij]) {
						continue
					}
					chunk.cands = append(chunk.cands, Candidate{
						DonationID: donations[di].DonationID,
						IdentityID: identities[ij].IdentityID,
						AddressID:  identities[ij].AddressID,
						Confidence: stage.Confidence,
						Method:     stage.Method,
					})
					hit = true
				}
				if hit {
					chunk.matched = append(chunk.matched, di)
				}
			}
		}(w, lo, hi)
	}
	wg.Wait()

	var cands []Candidate
	var matched []int
	for w := range chunks {
		cands = append(cands, chunks[w].cands...)
		matched = append(matched, chunks[w].matched...)
	}
	return cands, matched
}

// subtract removes matched indices from the working set, preserving order.
// Both slices are ascending.
func subtract(working, matched []int) []int {
	if len(matched) == 0 {
		return working
	}
	drop := make(map[int]struct{}, len(matched))
	for _, di := range matched {
		drop[di] = struct{}{}
	}
	next := working[:0]
	for _, di := range working {
		if _, ok := drop[di]; !ok {
			next = append(next, di)
		}
	}
	return next
}
