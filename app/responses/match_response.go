package responses

import "github.com/donor-resolver/app/models"

// ErrorResponse is the uniform API error shape.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// RunResponse wraps a run record.
type RunResponse struct {
	Run *models.MatchRun `json:"run"`
}

// ReportResponse is the verification report for a completed run.
type ReportResponse struct {
	RunID             string                  `json:"run_id"`
	OutputFingerprint string                  `json:"output_fingerprint,omitempty"`
	Stats             *models.MatchStatistics `json:"stats"`
}

// AdminStatsResponse summarizes the live result table.
type AdminStatsResponse struct {
	ResultRows int64  `json:"result_rows"`
	Status     string `json:"status"`
}

// HealthResponse is the health probe body.
type HealthResponse struct {
	Status  string `json:"status"`
	Uptime  string `json:"uptime"`
	Version string `json:"version"`
}
