package requests

// StartRunRequest is the body of POST /v1/matches/runs. The engine always
// processes the full snapshots; the optional note is logged for operator
// bookkeeping.
type StartRunRequest struct {
	Note string `json:"note,omitempty"`
}
