// Package scheduler runs the periodic eligibility sweep and one-time
// custom checks over the research service.
package scheduler

import (
	"fmt"
	"log"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/google/uuid"

	"github.com/vrsandeep/casetrack-go/internal/models"
	"github.com/vrsandeep/casetrack-go/internal/research"
)

// sweepTag marks the recurring daily job so Status can tell it apart
// from one-time custom checks.
const sweepTag = "daily-sweep"

// Service wraps the gocron scheduler with the case-checking jobs.
type Service struct {
	scheduler *gocron.Scheduler
	research  *research.Service
	interval  int
}

// New creates the scheduler service. intervalHours controls the sweep
// cadence; zero disables the recurring sweep.
func New(rs *research.Service, intervalHours int) *Service {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Service{
		scheduler: s,
		research:  rs,
		interval:  intervalHours,
	}
}

// Start schedules the recurring sweep and launches the scheduler.
func (s *Service) Start() {
	if s.interval > 0 {
		log.Printf("Scheduling case check sweep every %d hours", s.interval)
		_, err := s.scheduler.Every(s.interval).Hours().Tag(sweepTag).Do(s.runSweep)
		if err != nil {
			log.Printf("Error scheduling sweep job: %v", err)
		}
	} else {
		log.Println("Check interval is 0, the recurring sweep is disabled.")
	}

	log.Println("Starting background job scheduler...")
	s.scheduler.StartAsync()
}

// Stop halts the scheduler. Running jobs finish on their own.
func (s *Service) Stop() {
	s.scheduler.Stop()
}

// RunNow triggers the eligibility sweep immediately, outside the
// schedule.
func (s *Service) RunNow() (queued, skipped int, err error) {
	log.Println("Manual sweep triggered")
	return s.research.EnqueueEligible()
}

func (s *Service) runSweep() {
	log.Println("Scheduler is triggering the case check sweep")
	queued, skipped, err := s.research.EnqueueEligible()
	if err != nil {
		log.Printf("Sweep failed: %v", err)
		return
	}
	log.Printf("Sweep complete: %d cases queued, %d skipped", queued, skipped)
}

// ScheduleCustomCheck registers a one-time check of specific cases at the
// given time and returns the job's id.
func (s *Service) ScheduleCustomCheck(caseIDs []int64, runAt time.Time) (string, error) {
	if len(caseIDs) == 0 {
		return "", fmt.Errorf("no case ids given")
	}
	if runAt.Before(time.Now()) {
		return "", fmt.Errorf("run time %s is in the past", runAt.Format(time.RFC3339))
	}

	jobID := uuid.New().String()
	ids := append([]int64(nil), caseIDs...)
	_, err := s.scheduler.Every(1).Day().LimitRunsTo(1).StartAt(runAt).Tag(jobID).Do(func() {
		log.Printf("Running custom check %s for %d cases", jobID, len(ids))
		for _, id := range ids {
			if err := s.research.Enqueue(id); err != nil {
				log.Printf("Custom check %s: could not queue case %d: %v", jobID, id, err)
			}
		}
	})
	if err != nil {
		return "", fmt.Errorf("could not schedule custom check: %w", err)
	}
	log.Printf("Custom check %s scheduled for %s (%d cases)", jobID, runAt.Format(time.RFC3339), len(ids))
	return jobID, nil
}

// Status reports whether the scheduler is running and what jobs it holds.
func (s *Service) Status() (bool, []models.SchedulerJobInfo) {
	var jobs []models.SchedulerJobInfo
	for _, j := range s.scheduler.Jobs() {
		info := models.SchedulerJobInfo{}
		if tags := j.Tags(); len(tags) > 0 {
			info.ID = tags[0]
		}
		if info.ID == sweepTag {
			info.Name = "Daily case check sweep"
		} else {
			info.Name = "Custom case check"
		}
		if next := j.NextRun(); !next.IsZero() {
			formatted := next.UTC().Format(time.RFC3339)
			info.NextRun = &formatted
		}
		jobs = append(jobs, info)
	}
	return s.scheduler.IsRunning(), jobs
}
