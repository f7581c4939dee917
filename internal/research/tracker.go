package research

import (
	"sync"
	"time"

	"github.com/vrsandeep/casetrack-go/internal/models"
)

// Tracker holds the in-memory progress of active research jobs, keyed by
// case id. Snapshots are transient: they exist only while a job is running
// or just finished, and are discarded shortly after completion.
type Tracker struct {
	mu        sync.RWMutex
	snapshots map[int64]*models.ProgressSnapshot

	// retention is how long a completed snapshot stays queryable so a
	// client polling on an interval can still observe the terminal state.
	retention time.Duration
}

// NewTracker creates an empty progress tracker.
func NewTracker() *Tracker {
	return &Tracker{
		snapshots: make(map[int64]*models.ProgressSnapshot),
		retention: 30 * time.Second,
	}
}

// Update records the progress of a case's research job.
func (t *Tracker) Update(caseID int64, step string, percent int, message string) {
	t.set(caseID, step, percent, message, "processing")
}

// Complete marks a case's job as finished and schedules the snapshot for
// removal after the retention window.
func (t *Tracker) Complete(caseID int64, message string) {
	t.set(caseID, "complete", 100, message, "complete")
	time.AfterFunc(t.retention, func() { t.Forget(caseID) })
}

// Fail records a failed job. Failed snapshots follow the same retention
// rules as completed ones.
func (t *Tracker) Fail(caseID int64, message string) {
	t.set(caseID, "error", 100, message, "error")
	time.AfterFunc(t.retention, func() { t.Forget(caseID) })
}

func (t *Tracker) set(caseID int64, step string, percent int, message, status string) {
	if caseID == 0 {
		return
	}
	if percent > 100 {
		percent = 100
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.snapshots[caseID] = &models.ProgressSnapshot{
		CaseID:  caseID,
		Step:    step,
		Percent: percent,
		Message: message,
		Status:  status,
	}
}

// Snapshot returns the current progress for a case, or ok=false when no job
// is being tracked for it.
func (t *Tracker) Snapshot(caseID int64) (models.ProgressSnapshot, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	snap, ok := t.snapshots[caseID]
	if !ok {
		return models.ProgressSnapshot{}, false
	}
	return *snap, true
}

// Forget removes a case's snapshot.
func (t *Tracker) Forget(caseID int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.snapshots, caseID)
}
