package client

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/vrsandeep/casetrack-go/internal/models"
)

// fakeProgressAPI serves scripted snapshots per case id.
type fakeProgressAPI struct {
	mu    sync.Mutex
	snaps map[int64][]Progress
	errs  map[int64]error
	calls map[int64]int
}

func newFakeProgressAPI() *fakeProgressAPI {
	return &fakeProgressAPI{
		snaps: make(map[int64][]Progress),
		errs:  make(map[int64]error),
		calls: make(map[int64]int),
	}
}

func (f *fakeProgressAPI) Progress(id int64) (Progress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[id]++
	if err := f.errs[id]; err != nil {
		delete(f.errs, id) // fail once, then recover
		return Progress{}, err
	}
	script := f.snaps[id]
	if len(script) == 0 {
		return Progress{Percent: 0, Status: "idle"}, nil
	}
	snap := script[0]
	if len(script) > 1 {
		f.snaps[id] = script[1:]
	}
	return snap, nil
}

func (f *fakeProgressAPI) callCount(id int64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[id]
}

// fakeView records progress updates; rows can be marked gone.
type fakeView struct {
	mu        sync.Mutex
	gone      map[int64]bool
	progress  map[int64][]int
	completed map[int64]int
}

func newFakeView() *fakeView {
	return &fakeView{
		gone:      make(map[int64]bool),
		progress:  make(map[int64][]int),
		completed: make(map[int64]int),
	}
}

func (v *fakeView) ShowProgress(id int64, percent int, message string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.gone[id] {
		return false
	}
	v.progress[id] = append(v.progress[id], percent)
	return true
}

func (v *fakeView) ShowCompleted(id int64) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.completed[id]++
	return !v.gone[id]
}

func (v *fakeView) removeRow(id int64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.gone[id] = true
}

func (v *fakeView) completions(id int64) int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.completed[id]
}

func newTestPoller(api *fakeProgressAPI, view *fakeView, refreshes *atomic.Int32) *Poller {
	p := NewPoller(api, view, func() { refreshes.Add(1) })
	p.SetTiming(5*time.Millisecond, 10*time.Millisecond)
	return p
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		if cond() {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("Timed out waiting for %s", what)
		case <-time.After(5 * time.Millisecond):
		}
	}
}

// A terminal snapshot must stop the poller and trigger exactly one list
// refresh.
func TestPollerStopsAndRefreshesOnceOnCompletion(t *testing.T) {
	api := newFakeProgressAPI()
	api.snaps[1] = []Progress{
		{Percent: 40, Status: "processing"},
		{Percent: 100, Status: "complete"},
	}
	view := newFakeView()
	var refreshes atomic.Int32
	p := newTestPoller(api, view, &refreshes)

	p.Start(1)
	waitFor(t, "the refresh", func() bool { return refreshes.Load() == 1 })

	if p.IsPolling(1) {
		t.Error("Poller should have stopped after the terminal snapshot")
	}
	if view.completions(1) != 1 {
		t.Errorf("Expected 1 completion marker, got %d", view.completions(1))
	}

	// No further refreshes fire after termination.
	time.Sleep(50 * time.Millisecond)
	if got := refreshes.Load(); got != 1 {
		t.Errorf("Expected exactly 1 refresh, got %d", got)
	}
}

// Status "complete" alone is terminal even when percent never reached 100.
func TestPollerTreatsCompleteStatusAsTerminal(t *testing.T) {
	api := newFakeProgressAPI()
	api.snaps[1] = []Progress{{Percent: 90, Status: "complete"}}
	view := newFakeView()
	var refreshes atomic.Int32
	p := newTestPoller(api, view, &refreshes)

	p.Start(1)
	waitFor(t, "the refresh", func() bool { return refreshes.Load() == 1 })
}

// A poll error is logged and the loop keeps ticking.
func TestPollerContinuesThroughErrors(t *testing.T) {
	api := newFakeProgressAPI()
	api.errs[1] = fmt.Errorf("connection refused")
	api.snaps[1] = []Progress{
		{Percent: 50, Status: "processing"},
		{Percent: 100, Status: "complete"},
	}
	view := newFakeView()
	var refreshes atomic.Int32
	p := newTestPoller(api, view, &refreshes)

	p.Start(1)
	waitFor(t, "the refresh", func() bool { return refreshes.Load() == 1 })
	if api.callCount(1) < 3 {
		t.Errorf("Expected the loop to poll through the error, got %d calls", api.callCount(1))
	}
}

// When the row disappears the poller stops silently: no completion
// marker, no refresh.
func TestPollerStopsSilentlyWhenRowGone(t *testing.T) {
	api := newFakeProgressAPI()
	api.snaps[1] = []Progress{{Percent: 30, Status: "processing"}}
	view := newFakeView()
	view.removeRow(1)
	var refreshes atomic.Int32
	p := newTestPoller(api, view, &refreshes)

	p.Start(1)
	waitFor(t, "the poller to stop", func() bool { return !p.IsPolling(1) })

	time.Sleep(30 * time.Millisecond)
	if refreshes.Load() != 0 {
		t.Error("A silently stopped poller must not trigger a refresh")
	}
	if view.completions(1) != 0 {
		t.Error("A silently stopped poller must not show a completion marker")
	}
}

// Starting a poller for an id that already has one replaces it; two
// loops for one case cannot coexist.
func TestPollerReplacesDuplicateForSameID(t *testing.T) {
	api := newFakeProgressAPI()
	api.snaps[1] = []Progress{{Percent: 10, Status: "processing"}}
	view := newFakeView()
	var refreshes atomic.Int32
	p := newTestPoller(api, view, &refreshes)

	p.Start(1)
	p.Start(1)
	waitFor(t, "polling to begin", func() bool { return api.callCount(1) >= 2 })

	before := api.callCount(1)
	time.Sleep(60 * time.Millisecond)
	after := api.callCount(1)

	// One loop at a 5ms tick makes at most ~12 calls in 60ms plus
	// scheduling slack; two surviving loops would roughly double that.
	if delta := after - before; delta > 18 {
		t.Errorf("Call rate suggests duplicate pollers: %d calls in 60ms", delta)
	}
	p.StopAll()
}

// Cases with an in-flight processing status get pollers on startup with
// no user action.
func TestResumeActive(t *testing.T) {
	api := newFakeProgressAPI()
	view := newFakeView()
	var refreshes atomic.Int32
	p := newTestPoller(api, view, &refreshes)
	defer p.StopAll()

	cases := []*models.Case{
		{ID: 1, CaseName: "A", ProcessingStatus: models.ProcessingActive},
		{ID: 2, CaseName: "B", ProcessingStatus: models.ProcessingIdle},
		{ID: 3, CaseName: "C", ProcessingStatus: models.ProcessingQueued},
	}
	p.ResumeActive(cases)

	if !p.IsPolling(1) || !p.IsPolling(3) {
		t.Error("Expected pollers for the processing and queued cases")
	}
	if p.IsPolling(2) {
		t.Error("An idle case must not get a poller")
	}
}

func TestPollerStop(t *testing.T) {
	api := newFakeProgressAPI()
	api.snaps[1] = []Progress{{Percent: 10, Status: "processing"}}
	view := newFakeView()
	var refreshes atomic.Int32
	p := newTestPoller(api, view, &refreshes)

	p.Start(1)
	p.Stop(1)
	if p.IsPolling(1) {
		t.Error("Expected the poller to be stopped")
	}
}
