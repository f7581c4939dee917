// The research service owns the asynchronous research jobs: queueing,
// the worker pool, per-case progress tracking, and the websocket fanout.

package research

import (
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/vrsandeep/casetrack-go/internal/config"
	"github.com/vrsandeep/casetrack-go/internal/models"
	"github.com/vrsandeep/casetrack-go/internal/research/providers"
	"github.com/vrsandeep/casetrack-go/internal/store"
	"github.com/vrsandeep/casetrack-go/internal/websocket"
)

// maxSearchAttempts caps the search-analyze retry loop for one job.
const maxSearchAttempts = 3

// pagesPerAttempt is how many result pages each attempt reads.
const pagesPerAttempt = 2

// Notifier sends alerts when research detects changes on a case.
type Notifier interface {
	SendCaseAlert(c *models.Case, changes []string, v models.Verdict) error
}

// Service runs research jobs against queued cases.
type Service struct {
	st       *store.Store
	cfg      *config.Config
	hub      *websocket.Hub
	tracker  *Tracker
	notifier Notifier

	queue   chan int64
	workers int
	stop    chan struct{}
}

// NewService creates the research service. hub and notifier may be nil; the
// service then skips broadcasting and alerting.
func NewService(st *store.Store, cfg *config.Config, hub *websocket.Hub, notifier Notifier) *Service {
	workers := cfg.Research.Workers
	if workers < 1 {
		workers = 1
	}
	return &Service{
		st:       st,
		cfg:      cfg,
		hub:      hub,
		tracker:  NewTracker(),
		notifier: notifier,
		queue:    make(chan int64, workers),
		workers:  workers,
		stop:     make(chan struct{}),
	}
}

// Tracker exposes the progress tracker backing the /api/progress endpoint.
func (s *Service) Tracker() *Tracker {
	return s.tracker
}

// Start re-queues jobs interrupted by a restart and launches the worker
// pool plus the pump goroutine that feeds it.
func (s *Service) Start() {
	if err := s.st.ResetProcessingCases(); err != nil {
		log.Printf("Warning: could not re-queue interrupted research jobs: %v", err)
	}

	for i := 1; i <= s.workers; i++ {
		go s.worker(i)
	}

	go func() {
		ticker := time.NewTicker(5 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-s.stop:
				return
			case <-ticker.C:
				if len(s.queue) > 0 {
					continue
				}
				cases, err := s.st.GetQueuedCases(s.workers)
				if err != nil {
					log.Printf("Error fetching queued cases: %v", err)
					continue
				}
				for _, c := range cases {
					s.queue <- c.ID
				}
			}
		}
	}()
}

// Stop halts the pump. In-flight jobs finish on their own.
func (s *Service) Stop() {
	close(s.stop)
}

// Enqueue marks a case for research. The worker pool picks it up on the
// next pump cycle.
func (s *Service) Enqueue(caseID int64) error {
	if _, err := s.st.GetCaseByID(caseID); err != nil {
		if err == sql.ErrNoRows {
			return fmt.Errorf("case not found")
		}
		return err
	}
	return s.st.SetProcessingStatus(caseID, models.ProcessingQueued)
}

// EnqueueEligible runs the daily eligibility sweep: every open or pending
// case that ShouldResearch approves is queued. Returns how many were queued
// and how many were skipped.
func (s *Service) EnqueueEligible() (queued, skipped int, err error) {
	open, err := s.st.GetCasesByStatus(models.StatusOpen)
	if err != nil {
		return 0, 0, err
	}
	pending, err := s.st.GetCasesByStatus(models.StatusPending)
	if err != nil {
		return 0, 0, err
	}

	today := time.Now()
	for _, c := range append(open, pending...) {
		run, reason := ShouldResearch(c, today)
		if !run {
			log.Printf("Skipping case %d (%s): %s", c.ID, c.CaseName, reason)
			skipped++
			continue
		}
		if c.HasActiveJob() {
			log.Printf("Skipping case %d (%s): research already in flight", c.ID, c.CaseName)
			skipped++
			continue
		}
		log.Printf("Queueing research for case %d (%s): %s", c.ID, c.CaseName, reason)
		if err := s.st.SetProcessingStatus(c.ID, models.ProcessingQueued); err != nil {
			log.Printf("Error queueing case %d: %v", c.ID, err)
			continue
		}
		queued++
	}
	return queued, skipped, nil
}

func (s *Service) worker(id int) {
	log.Printf("Starting research worker %d", id)
	for caseID := range s.queue {
		c, err := s.st.GetCaseByID(caseID)
		if err != nil {
			// Deleted while queued; nothing to do.
			s.tracker.Forget(caseID)
			continue
		}
		if err := s.st.SetProcessingStatus(caseID, models.ProcessingActive); err != nil {
			log.Printf("Error marking case %d as processing: %v", caseID, err)
		}
		if err := s.processCase(c); err != nil {
			log.Printf("Research failed for case %d (%s): %v", c.ID, c.CaseName, err)
			s.st.SetProcessingStatus(caseID, models.ProcessingIdle)
			s.fail(caseID, fmt.Sprintf("Research failed: %v", err))
		} else {
			s.st.SetProcessingStatus(caseID, models.ProcessingComplete)
		}
	}
}

// processCase runs the full research pipeline for one case and persists
// the verdict.
func (s *Service) processCase(c *models.Case) error {
	provider, ok := providers.Get(s.cfg.Research.Provider)
	if !ok {
		return fmt.Errorf("research provider '%s' not found", s.cfg.Research.Provider)
	}

	log.Printf("Processing case %d: %s", c.ID, c.CaseName)
	s.progress(c.ID, "start", 5, "Initializing research...")

	verdict := s.runPipeline(provider, c)

	// First-run detection: a case with no hearing history, or one that was
	// bulk imported, always counts as changed so the initial result is
	// reported.
	firstRun := (c.NextHearingDate == nil && c.LastHearingDate == nil) ||
		containsImportedMarker(c.Notes)

	var changes []string
	if firstRun {
		changes = append(changes, "Initial research complete (first run)")
	}
	if !models.IsUnknown(verdict.NextHearingDate) && (c.NextHearingDate == nil || *c.NextHearingDate != verdict.NextHearingDate) {
		changes = append(changes, fmt.Sprintf("Next hearing: %s", verdict.NextHearingDate))
	}
	if !models.IsUnknown(verdict.CaseStatus) && verdict.CaseStatus != c.Status {
		changes = append(changes, fmt.Sprintf("Status update: %s", verdict.CaseStatus))
	}

	s.progress(c.ID, "finalize", 90, "Finalizing verdict...")

	updated, err := s.st.ApplyVerdict(c.ID, verdict, time.Now())
	if err != nil {
		return fmt.Errorf("could not save verdict: %w", err)
	}

	if len(changes) > 0 && s.notifier != nil {
		if err := s.notifier.SendCaseAlert(updated, changes, verdict); err != nil {
			// Alert failures never fail the job.
			log.Printf("Warning: alert for case %d not sent: %v", c.ID, err)
		}
	}

	s.complete(c.ID, "Research complete!")
	log.Printf("Case %d updated successfully", c.ID)
	return nil
}

// runPipeline is the search-analyze loop: the docket URL is read first when
// present, then web searches, retrying while the next hearing date is still
// unknown and attempts remain.
func (s *Service) runPipeline(provider models.Provider, c *models.Case) models.Verdict {
	var docs []string
	var verdict models.Verdict

	for attempt := 0; attempt < maxSearchAttempts; attempt++ {
		s.progress(c.ID, "search", 20+attempt*10, fmt.Sprintf("Searching: attempt %d", attempt+1))

		if attempt == 0 && c.DocketURL != "" {
			s.progress(c.ID, "search", 25, "Accessing official docket...")
			if html, err := provider.FetchPage(c.DocketURL); err == nil {
				if text := ExtractText(html, c.DocketURL); text != "" {
					docs = append(docs, "OFFICIAL DOCKET SOURCE ("+c.DocketURL+")\n"+text)
				}
			} else {
				log.Printf("Docket fetch failed for case %d: %v", c.ID, err)
			}
		}

		results, err := provider.Search(searchQuery(c.CaseName, attempt))
		if err != nil {
			log.Printf("Search error for case %d: %v", c.ID, err)
		}
		for i, r := range results {
			if i >= pagesPerAttempt {
				break
			}
			s.progress(c.ID, "search", 45+i*5+attempt*10, fmt.Sprintf("Reading source %d...", i+1))
			html, err := provider.FetchPage(r.URL)
			if err != nil {
				log.Printf("Fetch failed for %s: %v", r.URL, err)
				continue
			}
			if text := ExtractText(html, r.URL); text != "" {
				docs = append(docs, "Web source: "+r.URL+"\n"+text)
			}
			if r.Snippet != "" {
				docs = append(docs, r.Snippet)
			}
		}

		s.progress(c.ID, "analyze", 70, "Analyzing collected records...")
		verdict = Analyze(c.CaseName, docs, time.Now())
		if !models.IsUnknown(verdict.NextHearingDate) {
			return verdict
		}
	}

	// Out of attempts with no usable hearing date.
	verdict.RequiresManualReview = true
	verdict.Notes = verdict.Notes + " [Max search attempts reached]"
	return verdict
}

func searchQuery(caseName string, attempt int) string {
	switch attempt {
	case 0:
		return "latest court hearing " + caseName
	case 1:
		return "docket schedule " + caseName + " official record"
	default:
		return "court case status " + caseName
	}
}

func containsImportedMarker(notes string) bool {
	return strings.Contains(strings.ToLower(notes), "imported")
}

// progress records a step in the tracker and fans it out over the hub.
func (s *Service) progress(caseID int64, step string, percent int, message string) {
	s.tracker.Update(caseID, step, percent, message)
	s.broadcast(caseID, message, float64(percent), "processing", false)
}

func (s *Service) complete(caseID int64, message string) {
	s.tracker.Complete(caseID, message)
	s.broadcast(caseID, message, 100, "complete", true)
}

func (s *Service) fail(caseID int64, message string) {
	s.tracker.Fail(caseID, message)
	s.broadcast(caseID, message, 100, "error", true)
}

func (s *Service) broadcast(caseID int64, message string, percent float64, status string, done bool) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastJSON(models.ProgressUpdate{
		JobID:    "research",
		CaseID:   caseID,
		Message:  message,
		Progress: percent,
		Status:   status,
		Done:     done,
	})
}
