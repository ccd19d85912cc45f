package models

import "time"

// Run status values.
const (
	RunStatusPending   = "pending"
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// MatchRun tracks one full batch run of the engine. Persisted to the run
// registry while running and to the run collection once finished.
type MatchRun struct {
	RunID     string  `json:"run_id" bson:"run_id"`
	Status    string  `json:"status" bson:"status"`
	Progress  float64 `json:"progress" bson:"progress"`
	Processed int     `json:"processed" bson:"processed"`
	Total     int     `json:"total" bson:"total"`
	Message   string  `json:"message,omitempty" bson:"message,omitempty"`

	// InputFingerprint hashes both input snapshots; OutputFingerprint
	// hashes the emitted result rows. Reruns over unchanged snapshots must
	// reproduce both, which is how operators audit idempotence.
	InputFingerprint  string `json:"input_fingerprint,omitempty" bson:"input_fingerprint,omitempty"`
	OutputFingerprint string `json:"output_fingerprint,omitempty" bson:"output_fingerprint,omitempty"`

	Stats *MatchStatistics `json:"stats,omitempty" bson:"stats,omitempty"`

	StartedAt time.Time `json:"started_at" bson:"started_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}
