package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/donor-resolver/app/models"
)

// MemoryStore is an in-process implementation of ISnapshotSource,
// IResultStore, and IRunRegistry, used in tests and for file-fed local runs
// where no warehouse is available.
type MemoryStore struct {
	mu           sync.RWMutex
	donations    []models.DonationRecord
	identities   []models.IdentityRecord
	staging      map[string][]models.MatchResult
	live         []models.MatchResult
	runs         map[string]*models.MatchRun
	fingerprints map[string]string
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		staging:      make(map[string][]models.MatchResult),
		runs:         make(map[string]*models.MatchRun),
		fingerprints: make(map[string]string),
	}
}

// SeedSnapshots loads the input snapshots the next run will read.
func (ms *MemoryStore) SeedSnapshots(donations []models.DonationRecord, identities []models.IdentityRecord) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.donations = donations
	ms.identities = identities
}

// LoadDonations returns the seeded donation batch.
func (ms *MemoryStore) LoadDonations(ctx context.Context) ([]models.DonationRecord, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	out := make([]models.DonationRecord, len(ms.donations))
	copy(out, ms.donations)
	return out, nil
}

// LoadIdentities returns the seeded identity snapshot.
func (ms *MemoryStore) LoadIdentities(ctx context.Context) ([]models.IdentityRecord, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	out := make([]models.IdentityRecord, len(ms.identities))
	copy(out, ms.identities)
	return out, nil
}

// WriteStaging stores the staged result set for a run.
func (ms *MemoryStore) WriteStaging(ctx context.Context, runID string, results []models.MatchResult) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	staged := make([]models.MatchResult, len(results))
	copy(staged, results)
	ms.staging[runID] = staged
	return nil
}

// Promote swaps staged results into the live table.
func (ms *MemoryStore) Promote(ctx context.Context, runID string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	staged, ok := ms.staging[runID]
	if !ok {
		return fmt.Errorf("no staged results for run %s", runID)
	}
	ms.live = staged
	delete(ms.staging, runID)
	return nil
}

// DiscardStaging drops staged results.
func (ms *MemoryStore) DiscardStaging(ctx context.Context, runID string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	delete(ms.staging, runID)
	return nil
}

// SaveRun upserts a run summary.
func (ms *MemoryStore) SaveRun(ctx context.Context, run *models.MatchRun) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	saved := *run
	ms.runs[run.RunID] = &saved
	return nil
}

// GetRun fetches a run summary.
func (ms *MemoryStore) GetRun(ctx context.Context, runID string) (*models.MatchRun, bool, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	run, ok := ms.runs[runID]
	if !ok {
		return nil, false, nil
	}
	out := *run
	return &out, true, nil
}

// CountResults returns the live table size.
func (ms *MemoryStore) CountResults(ctx context.Context) (int64, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return int64(len(ms.live)), nil
}

// Results returns a copy of the live result table.
func (ms *MemoryStore) Results() []models.MatchResult {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	out := make([]models.MatchResult, len(ms.live))
	copy(out, ms.live)
	return out
}

// SetStatus publishes run state (same record as SaveRun here).
func (ms *MemoryStore) SetStatus(ctx context.Context, run *models.MatchRun) error {
	return ms.SaveRun(ctx, run)
}

// GetStatus fetches run state.
func (ms *MemoryStore) GetStatus(ctx context.Context, runID string) (*models.MatchRun, bool, error) {
	return ms.GetRun(ctx, runID)
}

// RecordFingerprint remembers an input fingerprint.
func (ms *MemoryStore) RecordFingerprint(ctx context.Context, fingerprint, runID string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.fingerprints[fingerprint] = runID
	return nil
}

// LookupFingerprint returns the run that last saw a fingerprint.
func (ms *MemoryStore) LookupFingerprint(ctx context.Context, fingerprint string) (string, bool, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	runID, ok := ms.fingerprints[fingerprint]
	return runID, ok, nil
}
