package scheduler

import (
	"testing"
	"time"

	"github.com/vrsandeep/casetrack-go/internal/config"
	"github.com/vrsandeep/casetrack-go/internal/models"
	"github.com/vrsandeep/casetrack-go/internal/research"
	"github.com/vrsandeep/casetrack-go/internal/research/providers"
	"github.com/vrsandeep/casetrack-go/internal/research/providers/mockcourt"
	"github.com/vrsandeep/casetrack-go/internal/store"
	"github.com/vrsandeep/casetrack-go/internal/testutil"
)

func setupScheduler(t *testing.T, intervalHours int) (*Service, *store.Store) {
	t.Helper()
	providers.Register(mockcourt.New())
	t.Cleanup(providers.UnregisterAll)

	st := store.New(testutil.SetupTestDB(t))
	cfg := &config.Config{}
	cfg.Research.Provider = "mockcourt"
	cfg.Research.Workers = 1
	rs := research.NewService(st, cfg, nil, nil)

	svc := New(rs, intervalHours)
	t.Cleanup(svc.Stop)
	return svc, st
}

func TestStatusReportsSweepJob(t *testing.T) {
	svc, _ := setupScheduler(t, 24)
	svc.Start()

	running, jobs := svc.Status()
	if !running {
		t.Error("Expected the scheduler to report running")
	}
	if len(jobs) != 1 {
		t.Fatalf("Expected 1 job, got %d", len(jobs))
	}
	if jobs[0].ID != sweepTag {
		t.Errorf("Expected the sweep job, got %s", jobs[0].ID)
	}
	if jobs[0].NextRun == nil {
		t.Error("Expected a next run time for the sweep job")
	}
}

func TestZeroIntervalDisablesSweep(t *testing.T) {
	svc, _ := setupScheduler(t, 0)
	svc.Start()

	_, jobs := svc.Status()
	if len(jobs) != 0 {
		t.Errorf("Expected no jobs with a zero interval, got %d", len(jobs))
	}
}

func TestRunNowQueuesEligibleCases(t *testing.T) {
	svc, st := setupScheduler(t, 0)
	svc.Start()

	soon := time.Now().AddDate(0, 0, 2).Format("2006-01-02")
	st.CreateCase(&models.Case{CaseName: "Due", Status: models.StatusOpen, NextHearingDate: &soon})

	queued, skipped, err := svc.RunNow()
	if err != nil {
		t.Fatalf("RunNow failed: %v", err)
	}
	if queued != 1 || skipped != 0 {
		t.Errorf("Expected 1 queued / 0 skipped, got %d / %d", queued, skipped)
	}
}

func TestScheduleCustomCheck(t *testing.T) {
	svc, st := setupScheduler(t, 0)
	svc.Start()

	c, _ := st.CreateCase(&models.Case{CaseName: "State v. Doe"})

	jobID, err := svc.ScheduleCustomCheck([]int64{c.ID}, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("ScheduleCustomCheck failed: %v", err)
	}
	if jobID == "" {
		t.Fatal("Expected a job id")
	}

	_, jobs := svc.Status()
	if len(jobs) != 1 || jobs[0].ID != jobID {
		t.Fatalf("Expected the custom job in status, got %+v", jobs)
	}
	if jobs[0].Name != "Custom case check" {
		t.Errorf("Unexpected job name: %s", jobs[0].Name)
	}
}

func TestScheduleCustomCheckValidation(t *testing.T) {
	svc, _ := setupScheduler(t, 0)
	svc.Start()

	if _, err := svc.ScheduleCustomCheck(nil, time.Now().Add(time.Hour)); err == nil {
		t.Error("Expected an error with no case ids")
	}
	if _, err := svc.ScheduleCustomCheck([]int64{1}, time.Now().Add(-time.Hour)); err == nil {
		t.Error("Expected an error for a run time in the past")
	}
}
