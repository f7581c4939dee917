package models

// ProgressSnapshot is the point-in-time state of a research job, keyed by
// case id. It is transient: it exists only while a job is active or just
// finished and is never persisted.
type ProgressSnapshot struct {
	CaseID  int64  `json:"case_id,omitempty"`
	Step    string `json:"step,omitempty"`
	Percent int    `json:"percent"`
	Message string `json:"message"`
	Status  string `json:"status"` // "processing", "complete", "error"
}

// Done reports whether the snapshot describes a finished job.
func (p *ProgressSnapshot) Done() bool {
	return p.Percent >= 100 || p.Status == "complete"
}

// ProgressUpdate is the payload broadcast over the websocket hub whenever a
// research job advances.
type ProgressUpdate struct {
	JobID    string  `json:"jobId"`
	CaseID   int64   `json:"case_id"`
	Message  string  `json:"message"`
	Progress float64 `json:"progress"`
	Status   string  `json:"status"`
	Done     bool    `json:"done"`
}
