package client

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/vrsandeep/casetrack-go/internal/models"
)

// ProgressView is where the poller reports job state. Implementations
// return false when the case's display target no longer exists (the row
// was removed by a concurrent refresh); the poller then stops silently.
type ProgressView interface {
	ShowProgress(caseID int64, percent int, message string) bool
	ShowCompleted(caseID int64) bool
}

// progressAPI is the slice of Client the poller needs.
type progressAPI interface {
	Progress(id int64) (Progress, error)
}

// Poller runs one cancellable polling task per case id. Starting a poller
// for an id that already has one cancels the old task first, so duplicate
// concurrent pollers for a single case cannot exist.
type Poller struct {
	api     progressAPI
	view    ProgressView
	refresh func()

	// interval is the tick period; completionDelay is how long the
	// completion marker stays up before the list refresh fires.
	interval        time.Duration
	completionDelay time.Duration

	mu     sync.Mutex
	active map[int64]*pollTask
}

// pollTask identifies one polling loop so a finished loop only removes
// its own handle, never a replacement started for the same id.
type pollTask struct {
	cancel context.CancelFunc
}

// NewPoller creates a poller. refresh is invoked exactly once after each
// job completes, following the completion delay.
func NewPoller(api progressAPI, view ProgressView, refresh func()) *Poller {
	return &Poller{
		api:             api,
		view:            view,
		refresh:         refresh,
		interval:        time.Second,
		completionDelay: 1500 * time.Millisecond,
		active:          make(map[int64]*pollTask),
	}
}

// SetTiming overrides the tick interval and completion delay.
func (p *Poller) SetTiming(interval, completionDelay time.Duration) {
	p.interval = interval
	p.completionDelay = completionDelay
}

// Start begins polling progress for a case. Any existing poller for the
// same id is cancelled and replaced.
func (p *Poller) Start(caseID int64) {
	ctx, cancel := context.WithCancel(context.Background())
	task := &pollTask{cancel: cancel}

	p.mu.Lock()
	if old, ok := p.active[caseID]; ok {
		old.cancel()
	}
	p.active[caseID] = task
	p.mu.Unlock()

	go p.loop(ctx, caseID, task)
}

// Stop cancels the poller for a case, if one is running.
func (p *Poller) Stop(caseID int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if task, ok := p.active[caseID]; ok {
		task.cancel()
		delete(p.active, caseID)
	}
}

// StopAll cancels every active poller.
func (p *Poller) StopAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for id, task := range p.active {
		task.cancel()
		delete(p.active, id)
	}
}

// IsPolling reports whether a poller is active for the case.
func (p *Poller) IsPolling(caseID int64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.active[caseID]
	return ok
}

// ResumeActive starts pollers for every case whose processing status
// indicates a job is in flight server-side. Called at startup so a
// restart resumes tracking instead of assuming jobs finished.
func (p *Poller) ResumeActive(cases []*models.Case) {
	for _, c := range cases {
		if c.HasActiveJob() {
			log.Printf("Resuming progress polling for case %d (%s)", c.ID, c.CaseName)
			p.Start(c.ID)
		}
	}
}

func (p *Poller) loop(ctx context.Context, caseID int64, task *pollTask) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		snap, err := p.api.Progress(caseID)
		if err != nil {
			// Transient poll failures never interrupt the job; keep ticking.
			log.Printf("Progress poll for case %d failed: %v", caseID, err)
			continue
		}

		if !p.view.ShowProgress(caseID, snap.Percent, snap.Message) {
			// Row is gone; stop without noise.
			p.remove(caseID, task)
			return
		}

		if snap.Done() {
			p.view.ShowCompleted(caseID)
			p.remove(caseID, task)

			select {
			case <-ctx.Done():
				return
			case <-time.After(p.completionDelay):
			}
			p.refresh()
			return
		}
	}
}

// remove drops the case's handle once the loop has decided to terminate
// on its own. A handle belonging to a replacement poller is left alone.
func (p *Poller) remove(caseID int64, task *pollTask) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.active[caseID] == task {
		delete(p.active, caseID)
	}
}
