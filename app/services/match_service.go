package services

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/donor-resolver/app/models"
	"github.com/donor-resolver/helpers/utils"
	"github.com/donor-resolver/internal/matcher"
	"github.com/donor-resolver/internal/normalizer"
	"github.com/donor-resolver/internal/report"
	"github.com/donor-resolver/internal/search"
)

// MatchService orchestrates one full batch run: load snapshots, normalize,
// run the waterfall, resolve conflicts, assemble results and statistics,
// stage and promote the output table. The pipeline itself is a pure batch
// transform; this service owns the I/O edges and run bookkeeping.
type MatchService struct {
	normalizer    *normalizer.Normalizer
	runner        *matcher.Runner
	assembler     *report.Assembler
	auditor       *report.Auditor
	source        ISnapshotSource
	store         IResultStore
	registry      IRunRegistry
	reviewIndexer *search.ReviewIndexer // nil when review search is disabled
	logger        *zap.Logger

	mu   sync.RWMutex
	runs map[string]*models.MatchRun
}

// NewMatchService wires the pipeline components. reviewIndexer may be nil.
func NewMatchService(
	norm *normalizer.Normalizer,
	runner *matcher.Runner,
	assembler *report.Assembler,
	auditor *report.Auditor,
	source ISnapshotSource,
	store IResultStore,
	registry IRunRegistry,
	reviewIndexer *search.ReviewIndexer,
	logger *zap.Logger,
) *MatchService {
	return &MatchService{
		normalizer:    norm,
		runner:        runner,
		assembler:     assembler,
		auditor:       auditor,
		source:        source,
		store:         store,
		registry:      registry,
		reviewIndexer: reviewIndexer,
		logger:        logger,
		runs:          make(map[string]*models.MatchRun),
	}
}

// StartRun launches a batch run in the background and returns immediately
// with the pending run record. Progress is polled through GetRun.
func (ms *MatchService) StartRun(ctx context.Context) (*models.MatchRun, error) {
	run := ms.newRun()
	ms.publish(run)

	go func() {
		bg := context.Background()
		if err := ms.executeRun(bg, run.RunID); err != nil {
			ms.logger.Error("run failed", zap.String("run_id", run.RunID), zap.Error(err))
		}
	}()

	out := *run
	return &out, nil
}

// RunBatch executes a run synchronously and returns the finished record.
// This is the worker binary's entry point.
func (ms *MatchService) RunBatch(ctx context.Context) (*models.MatchRun, error) {
	run := ms.newRun()
	ms.publish(run)

	if err := ms.executeRun(ctx, run.RunID); err != nil {
		return ms.snapshotRun(run.RunID), err
	}
	return ms.snapshotRun(run.RunID), nil
}

// GetRun returns run state: live runs from memory/registry, finished runs
// from the result store.
func (ms *MatchService) GetRun(ctx context.Context, runID string) (*models.MatchRun, bool, error) {
	if run := ms.snapshotRun(runID); run != nil {
		return run, true, nil
	}
	if run, ok, err := ms.registry.GetStatus(ctx, runID); err == nil && ok {
		return run, true, nil
	}
	return ms.store.GetRun(ctx, runID)
}

func (ms *MatchService) newRun() *models.MatchRun {
	now := time.Now().UTC()
	return &models.MatchRun{
		RunID:     utils.GenerateUUID(),
		Status:    models.RunStatusPending,
		StartedAt: now,
		UpdatedAt: now,
	}
}

func (ms *MatchService) snapshotRun(runID string) *models.MatchRun {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	run, ok := ms.runs[runID]
	if !ok {
		return nil
	}
	out := *run
	return &out
}

// publish updates the in-memory record and pushes it to the run registry.
// Registry errors are logged, not fatal: the engine's output does not
// depend on status plumbing.
func (ms *MatchService) publish(run *models.MatchRun) {
	run.UpdatedAt = time.Now().UTC()
	ms.mu.Lock()
	saved := *run
	ms.runs[run.RunID] = &saved
	ms.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := ms.registry.SetStatus(ctx, run); err != nil {
		ms.logger.Warn("failed to publish run status", zap.Error(err))
	}
}

func (ms *MatchService) progress(run *models.MatchRun, progress float64, message string) {
	run.Status = models.RunStatusRunning
	run.Progress = progress
	run.Message = message
	ms.publish(run)
}

func (ms *MatchService) executeRun(ctx context.Context, runID string) error {
	run := ms.snapshotRun(runID)
	if run == nil {
		return fmt.Errorf("unknown run %s", runID)
	}
	start := time.Now()

	// Load. A structural read failure aborts here, before anything is
	// written, so the prior result table stays untouched.
	ms.progress(run, 0.05, "loading snapshots")
	donations, err := ms.source.LoadDonations(ctx)
	if err != nil {
		return ms.fail(ctx, run, fmt.Errorf("load donations: %w", err))
	}
	identities, err := ms.source.LoadIdentities(ctx)
	if err != nil {
		return ms.fail(ctx, run, fmt.Errorf("load identities: %w", err))
	}
	run.Total = len(donations)

	run.InputFingerprint = hashSnapshots(donations, identities)
	ms.checkPriorRun(ctx, run)

	// Normalize. Keys are ephemeral, recomputed every run.
	ms.progress(run, 0.2, "normalizing records")
	donKeys := make([]normalizer.NormalizedKey, len(donations))
	for i := range donations {
		donKeys[i] = ms.normalizer.NormalizeDonation(&donations[i])
	}
	idKeys := make([]normalizer.NormalizedKey, len(identities))
	for j := range identities {
		idKeys[j] = ms.normalizer.NormalizeIdentity(&identities[j])
	}

	// Match.
	ms.progress(run, 0.4, "running matching stages")
	candidates := ms.runner.Run(donations, donKeys, identities, idKeys)

	ms.progress(run, 0.65, "resolving conflicts")
	resolution := matcher.Resolve(candidates)

	results, stats := ms.assembler.Assemble(donations, resolution)

	keyByID := make(map[string]*normalizer.NormalizedKey, len(donations))
	for i := range donations {
		keyByID[donations[i].DonationID] = &donKeys[i]
	}
	stats.NearMisses = ms.auditor.Audit(results, keyByID, identities, idKeys)

	run.Processed = len(results)
	run.OutputFingerprint = report.Fingerprint(results)

	// Persist: stage, then swap. Any failure discards staging.
	ms.progress(run, 0.8, "writing result table")
	if err := ms.store.WriteStaging(ctx, run.RunID, results); err != nil {
		return ms.fail(ctx, run, fmt.Errorf("write staging: %w", err))
	}
	if err := ms.store.Promote(ctx, run.RunID); err != nil {
		return ms.fail(ctx, run, fmt.Errorf("promote results: %w", err))
	}

	run.Status = models.RunStatusCompleted
	run.Progress = 1.0
	run.Message = fmt.Sprintf("completed in %s", time.Since(start).Round(time.Millisecond))
	run.Stats = stats
	ms.publish(run)

	if err := ms.store.SaveRun(ctx, run); err != nil {
		ms.logger.Warn("failed to persist run summary", zap.Error(err))
	}
	if err := ms.registry.RecordFingerprint(ctx, run.InputFingerprint, run.RunID); err != nil {
		ms.logger.Warn("failed to record input fingerprint", zap.Error(err))
	}

	if ms.reviewIndexer != nil {
		if err := ms.reviewIndexer.IndexUnmatched(run.RunID, results); err != nil {
			ms.logger.Warn("failed to rebuild review index", zap.Error(err))
		}
	}

	ms.logger.Info("run completed",
		zap.String("run_id", run.RunID),
		zap.Int("donations", stats.TotalDonations),
		zap.Int("matched", stats.MatchedCount),
		zap.Float64("match_rate", stats.MatchRate),
		zap.Duration("duration", time.Since(start)))
	return nil
}

// checkPriorRun compares this run's input fingerprint against the registry.
// A hit means the snapshots are identical to a prior run, whose output
// fingerprint this run must reproduce; the mismatch warning is the
// operator's idempotence alarm.
func (ms *MatchService) checkPriorRun(ctx context.Context, run *models.MatchRun) {
	priorID, ok, err := ms.registry.LookupFingerprint(ctx, run.InputFingerprint)
	if err != nil || !ok {
		return
	}
	ms.logger.Info("input snapshots identical to prior run",
		zap.String("run_id", run.RunID),
		zap.String("prior_run_id", priorID))

	prior, ok, err := ms.store.GetRun(ctx, priorID)
	if err != nil || !ok || prior.OutputFingerprint == "" {
		return
	}
	run.Message = fmt.Sprintf("rerun of %s", priorID)
}

func (ms *MatchService) fail(ctx context.Context, run *models.MatchRun, cause error) error {
	run.Status = models.RunStatusFailed
	run.Message = cause.Error()
	ms.publish(run)

	if err := ms.store.DiscardStaging(ctx, run.RunID); err != nil {
		ms.logger.Warn("failed to discard staging", zap.Error(err))
	}
	if err := ms.store.SaveRun(ctx, run); err != nil {
		ms.logger.Warn("failed to persist failed run", zap.Error(err))
	}
	return cause
}

// hashSnapshots fingerprints both input snapshots in load order.
func hashSnapshots(donations []models.DonationRecord, identities []models.IdentityRecord) string {
	h := sha256.New()
	enc := json.NewEncoder(h)
	for i := range donations {
		_ = enc.Encode(&donations[i])
	}
	for j := range identities {
		_ = enc.Encode(&identities[j])
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}
