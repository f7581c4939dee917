// This file defines the core data structures (models) for the application.
// These structs represent the tracked legal cases and their research state.

package models

import (
	"strings"
	"time"
)

// Case statuses as stored in the database. Comparisons are case-insensitive
// throughout the application.
const (
	StatusOpen    = "Open"
	StatusClosed  = "Closed"
	StatusVerdict = "Verdict Reached"
	StatusPending = "Pending"
)

// Processing statuses describe the lifecycle of a case's research job.
const (
	ProcessingIdle     = "idle"
	ProcessingQueued   = "queued"
	ProcessingActive   = "processing"
	ProcessingComplete = "complete"
)

// Case represents a single tracked legal matter.
type Case struct {
	ID               int64      `json:"id"`
	CaseName         string     `json:"case_name"`
	DocketURL        string     `json:"docket_url,omitempty"`
	VictimName       string     `json:"victim_name,omitempty"`
	SuspectName      string     `json:"suspect_name,omitempty"`
	Status           string     `json:"status"`
	NextHearingDate  *string    `json:"next_hearing_date"` // YYYY-MM-DD, nil when unknown
	LastHearingDate  *string    `json:"last_hearing_date"`
	LastCheckedDate  *time.Time `json:"last_checked_date"`
	Confidence       string     `json:"confidence,omitempty"` // high, medium, low
	Notes            string     `json:"notes,omitempty"`
	ProcessingStatus string     `json:"processing_status"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// IsClosed reports whether the case status means no further hearings are
// expected.
func (c *Case) IsClosed() bool {
	return strings.EqualFold(c.Status, StatusClosed)
}

// HasActiveJob reports whether a research job is in flight server-side. A
// client seeing this after a reload should resume polling rather than assume
// the job finished.
func (c *Case) HasActiveJob() bool {
	switch strings.ToLower(c.ProcessingStatus) {
	case ProcessingQueued, ProcessingActive:
		return true
	}
	return false
}

// Verdict is the outcome of one research run over a case. Fields carry the
// sentinel "Unknown" when the research could not determine them.
type Verdict struct {
	NextHearingDate       string `json:"next_hearing_date"`
	LastHearingDate       string `json:"last_hearing_date"`
	CaseStatus            string `json:"case_status"`
	VictimName            string `json:"victim_name"`
	SuspectName           string `json:"suspect_name"`
	Confidence            string `json:"confidence"`
	Notes                 string `json:"notes"`
	RequiresManualReview  bool   `json:"requires_manual_review"`
}

// Unknown is the sentinel used for fields research could not resolve.
const Unknown = "Unknown"

// IsUnknown reports whether a verdict field carries no usable value.
func IsUnknown(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "unknown", "none", "n/a":
		return true
	}
	return false
}
