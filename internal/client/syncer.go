package client

import (
	"sync"
	"sync/atomic"

	"github.com/vrsandeep/casetrack-go/internal/models"
)

// listAPI is the slice of Client the syncer needs.
type listAPI interface {
	ListCases(status string) ([]*models.Case, error)
}

// Syncer owns the in-memory case list and the full-refresh cycle. A
// refresh fetches the complete list, replaces the held copy, and invokes
// the render callback. An atomic flag stops rapid user actions from
// overlapping refreshes.
type Syncer struct {
	api    listAPI
	render func([]*models.Case) error

	refreshing atomic.Bool

	mu         sync.Mutex
	cases      []*models.Case
	needsRetry bool
	lastErr    error
}

// NewSyncer creates a syncer. render receives the fresh list after every
// successful fetch; when it fails the table is considered broken and
// NeedsRetry reports true until a manual Refresh succeeds.
func NewSyncer(api listAPI, render func([]*models.Case) error) *Syncer {
	return &Syncer{api: api, render: render}
}

// Refresh performs one fetch-and-render cycle. A call arriving while a
// refresh is already running returns immediately without doing anything;
// there is no automatic retry, only explicit user-driven calls.
func (s *Syncer) Refresh() error {
	if !s.refreshing.CompareAndSwap(false, true) {
		return nil
	}
	defer s.refreshing.Store(false)

	cases, err := s.api.ListCases("")
	if err != nil {
		s.setFailure(err)
		return err
	}

	s.mu.Lock()
	s.cases = cases
	s.mu.Unlock()

	if err := s.render(cases); err != nil {
		s.setFailure(err)
		return err
	}

	s.setFailure(nil)
	return nil
}

func (s *Syncer) setFailure(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.needsRetry = err != nil
	s.lastErr = err
}

// Cases returns the currently held list.
func (s *Syncer) Cases() []*models.Case {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.Case, len(s.cases))
	copy(out, s.cases)
	return out
}

// NeedsRetry reports whether the last refresh failed and the retry
// affordance should be shown instead of the table.
func (s *Syncer) NeedsRetry() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.needsRetry, s.lastErr
}
