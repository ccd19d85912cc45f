package services

import (
	"context"

	"github.com/donor-resolver/app/models"
)

// ISnapshotSource reads the two input snapshots for one run. Both are full
// snapshots, not deltas, returned in stable (ID-sorted) order.
type ISnapshotSource interface {
	// LoadDonations returns the donation batch.
	LoadDonations(ctx context.Context) ([]models.DonationRecord, error)

	// LoadIdentities returns the identity registry snapshot.
	LoadIdentities(ctx context.Context) ([]models.IdentityRecord, error)
}

// IResultStore persists run output with full-rebuild semantics: results
// land in a per-run staging table and replace the live table only on
// Promote, so a failed run leaves the prior table untouched.
type IResultStore interface {
	// WriteStaging writes the complete result set for a run to staging.
	WriteStaging(ctx context.Context, runID string, results []models.MatchResult) error

	// Promote atomically swaps the staged results into the live table.
	Promote(ctx context.Context, runID string) error

	// DiscardStaging drops a run's staged results after a failure.
	DiscardStaging(ctx context.Context, runID string) error

	// SaveRun upserts the run summary (status, fingerprints, statistics).
	SaveRun(ctx context.Context, run *models.MatchRun) error

	// GetRun fetches a persisted run summary.
	GetRun(ctx context.Context, runID string) (*models.MatchRun, bool, error)

	// CountResults returns the size of the live result table.
	CountResults(ctx context.Context) (int64, error)
}

// IRunRegistry tracks live run status and input fingerprints so operators
// can watch progress and audit that identical snapshots reproduce
// identical output.
type IRunRegistry interface {
	// SetStatus publishes the current run state.
	SetStatus(ctx context.Context, run *models.MatchRun) error

	// GetStatus fetches the current state of a run.
	GetStatus(ctx context.Context, runID string) (*models.MatchRun, bool, error)

	// RecordFingerprint remembers which run last processed an input
	// fingerprint.
	RecordFingerprint(ctx context.Context, fingerprint, runID string) error

	// LookupFingerprint returns the run that last processed a fingerprint.
	LookupFingerprint(ctx context.Context, fingerprint string) (string, bool, error)
}
