// This test file covers the data access layer functions.
// It uses an in-memory SQLite database to ensure tests are fast and isolated.

package store

import (
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/vrsandeep/casetrack-go/internal/models"
	"github.com/vrsandeep/casetrack-go/internal/testutil"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return New(testutil.SetupTestDB(t))
}

func TestCreateAndGetCase(t *testing.T) {
	s := newTestStore(t)

	created, err := s.CreateCase(&models.Case{
		CaseName:  "State v. Doe",
		DocketURL: "https://courts.example.gov/docket/123",
		Notes:     "Case added, awaiting research.",
	})
	if err != nil {
		t.Fatalf("CreateCase failed: %v", err)
	}
	if created.ID == 0 {
		t.Error("Expected created case to have an id")
	}
	if created.Status != models.StatusPending {
		t.Errorf("Expected new case status 'Pending', got '%s'", created.Status)
	}
	if created.ProcessingStatus != models.ProcessingIdle {
		t.Errorf("Expected processing status 'idle', got '%s'", created.ProcessingStatus)
	}

	got, err := s.GetCaseByID(created.ID)
	if err != nil {
		t.Fatalf("GetCaseByID failed: %v", err)
	}
	if got.CaseName != "State v. Doe" {
		t.Errorf("Expected case name 'State v. Doe', got '%s'", got.CaseName)
	}
	if got.DocketURL != "https://courts.example.gov/docket/123" {
		t.Errorf("Unexpected docket URL: %s", got.DocketURL)
	}
	if got.NextHearingDate != nil {
		t.Errorf("Expected no hearing date, got %v", *got.NextHearingDate)
	}
}

func TestGetCasesByStatusIsCaseInsensitive(t *testing.T) {
	s := newTestStore(t)

	open := models.StatusOpen
	c, err := s.CreateCase(&models.Case{CaseName: "People v. Roe", Status: open})
	if err != nil {
		t.Fatalf("CreateCase failed: %v", err)
	}
	if _, err := s.CreateCase(&models.Case{CaseName: "People v. Poe", Status: models.StatusClosed}); err != nil {
		t.Fatalf("CreateCase failed: %v", err)
	}

	for _, filter := range []string{"Open", "open", "OPEN"} {
		cases, err := s.GetCasesByStatus(filter)
		if err != nil {
			t.Fatalf("GetCasesByStatus(%q) failed: %v", filter, err)
		}
		if len(cases) != 1 || cases[0].ID != c.ID {
			t.Errorf("GetCasesByStatus(%q): expected exactly the open case, got %d cases", filter, len(cases))
		}
	}
}

func TestUpdateCasePartial(t *testing.T) {
	s := newTestStore(t)

	c, err := s.CreateCase(&models.Case{CaseName: "State v. Smith"})
	if err != nil {
		t.Fatalf("CreateCase failed: %v", err)
	}

	date := "2025-09-15"
	status := models.StatusOpen
	updated, err := s.UpdateCase(c.ID, CaseUpdate{NextHearingDate: &date, Status: &status})
	if err != nil {
		t.Fatalf("UpdateCase failed: %v", err)
	}
	if updated.NextHearingDate == nil || *updated.NextHearingDate != date {
		t.Errorf("Expected next hearing date %s, got %v", date, updated.NextHearingDate)
	}
	if updated.Status != models.StatusOpen {
		t.Errorf("Expected status Open, got %s", updated.Status)
	}
	// Untouched fields survive.
	if updated.CaseName != "State v. Smith" {
		t.Errorf("Case name was clobbered: %s", updated.CaseName)
	}

	// Clearing a date with an empty string stores NULL.
	empty := ""
	updated, err = s.UpdateCase(c.ID, CaseUpdate{NextHearingDate: &empty})
	if err != nil {
		t.Fatalf("UpdateCase (clear) failed: %v", err)
	}
	if updated.NextHearingDate != nil {
		t.Errorf("Expected cleared hearing date, got %v", *updated.NextHearingDate)
	}

	// Updating a missing case reports sql.ErrNoRows.
	if _, err := s.UpdateCase(9999, CaseUpdate{Status: &status}); err != sql.ErrNoRows {
		t.Errorf("Expected sql.ErrNoRows for missing case, got %v", err)
	}
}

func TestHearingDatesReadBackVerbatim(t *testing.T) {
	s := newTestStore(t)

	next := "2024-05-01"
	last := "2024-04-12"
	c := &models.Case{CaseName: "State v. Dates", Status: models.StatusOpen}
	c.NextHearingDate = &next
	c.LastHearingDate = &last
	created, err := s.CreateCase(c)
	if err != nil {
		t.Fatalf("CreateCase failed: %v", err)
	}

	// The exact "YYYY-MM-DD" string must survive the round trip. A driver
	// conversion through time.Time would read back "2024-05-01T00:00:00Z".
	got, err := s.GetCaseByID(created.ID)
	if err != nil {
		t.Fatalf("GetCaseByID failed: %v", err)
	}
	if got.NextHearingDate == nil || *got.NextHearingDate != next {
		t.Errorf("Expected next hearing %q, got %v", next, got.NextHearingDate)
	}
	if got.LastHearingDate == nil || *got.LastHearingDate != last {
		t.Errorf("Expected last hearing %q, got %v", last, got.LastHearingDate)
	}

	all, err := s.GetAllCases()
	if err != nil {
		t.Fatalf("GetAllCases failed: %v", err)
	}
	if len(all) != 1 || all[0].NextHearingDate == nil || *all[0].NextHearingDate != next {
		t.Errorf("Expected the listed case to carry %q, got %v", next, all[0].NextHearingDate)
	}
}

func TestDeleteCaseIsIdempotent(t *testing.T) {
	s := newTestStore(t)

	c, err := s.CreateCase(&models.Case{CaseName: "State v. Gone"})
	if err != nil {
		t.Fatalf("CreateCase failed: %v", err)
	}
	if err := s.DeleteCase(c.ID); err != nil {
		t.Fatalf("DeleteCase failed: %v", err)
	}
	// Deleting again must not error.
	if err := s.DeleteCase(c.ID); err != nil {
		t.Errorf("DeleteCase of missing id returned error: %v", err)
	}
	if _, err := s.GetCaseByID(c.ID); err != sql.ErrNoRows {
		t.Errorf("Expected sql.ErrNoRows after delete, got %v", err)
	}
}

func TestUpcomingHearings(t *testing.T) {
	s := newTestStore(t)

	soon := time.Now().AddDate(0, 0, 3).Format("2006-01-02")
	far := time.Now().AddDate(0, 0, 45).Format("2006-01-02")
	past := time.Now().AddDate(0, 0, -3).Format("2006-01-02")

	mk := func(name, date string) {
		t.Helper()
		c := &models.Case{CaseName: name, Status: models.StatusOpen}
		c.NextHearingDate = &date
		if _, err := s.CreateCase(c); err != nil {
			t.Fatalf("CreateCase failed: %v", err)
		}
	}
	mk("Soon", soon)
	mk("Far", far)
	mk("Past", past)

	cases, err := s.UpcomingHearings(7)
	if err != nil {
		t.Fatalf("UpcomingHearings failed: %v", err)
	}
	if len(cases) != 1 || cases[0].CaseName != "Soon" {
		t.Fatalf("Expected only the 'Soon' case, got %d cases", len(cases))
	}
}

func TestProcessingStatusLifecycle(t *testing.T) {
	s := newTestStore(t)

	c, err := s.CreateCase(&models.Case{CaseName: "State v. Busy"})
	if err != nil {
		t.Fatalf("CreateCase failed: %v", err)
	}

	if err := s.SetProcessingStatus(c.ID, models.ProcessingQueued); err != nil {
		t.Fatalf("SetProcessingStatus failed: %v", err)
	}
	queued, err := s.GetQueuedCases(10)
	if err != nil {
		t.Fatalf("GetQueuedCases failed: %v", err)
	}
	if len(queued) != 1 || queued[0].ID != c.ID {
		t.Fatalf("Expected one queued case, got %d", len(queued))
	}

	// A case stuck in 'processing' is re-queued on startup.
	if err := s.SetProcessingStatus(c.ID, models.ProcessingActive); err != nil {
		t.Fatalf("SetProcessingStatus failed: %v", err)
	}
	if err := s.ResetProcessingCases(); err != nil {
		t.Fatalf("ResetProcessingCases failed: %v", err)
	}
	got, _ := s.GetCaseByID(c.ID)
	if got.ProcessingStatus != models.ProcessingQueued {
		t.Errorf("Expected re-queued case, got processing_status '%s'", got.ProcessingStatus)
	}
}

func TestApplyVerdict(t *testing.T) {
	s := newTestStore(t)

	victim := "Jane Roe"
	c, err := s.CreateCase(&models.Case{
		CaseName:   "State v. Verdict",
		Status:     models.StatusOpen,
		VictimName: victim,
	})
	if err != nil {
		t.Fatalf("CreateCase failed: %v", err)
	}

	now := time.Now()
	updated, err := s.ApplyVerdict(c.ID, models.Verdict{
		NextHearingDate: "2025-10-01",
		LastHearingDate: models.Unknown,
		CaseStatus:      models.StatusVerdict,
		VictimName:      models.Unknown, // must not clobber the stored name
		SuspectName:     "John Doe",
		Confidence:      "high",
		Notes:           "Verdict reached on all counts.",
	}, now)
	if err != nil {
		t.Fatalf("ApplyVerdict failed: %v", err)
	}

	if updated.Status != models.StatusVerdict {
		t.Errorf("Expected status 'Verdict Reached', got '%s'", updated.Status)
	}
	if updated.NextHearingDate == nil || *updated.NextHearingDate != "2025-10-01" {
		t.Errorf("Expected next hearing 2025-10-01, got %v", updated.NextHearingDate)
	}
	if updated.LastHearingDate != nil {
		t.Errorf("Unknown last hearing date should stay NULL, got %v", *updated.LastHearingDate)
	}
	if updated.VictimName != victim {
		t.Errorf("Unknown victim name clobbered stored value: '%s'", updated.VictimName)
	}
	if updated.SuspectName != "John Doe" {
		t.Errorf("Expected suspect 'John Doe', got '%s'", updated.SuspectName)
	}
	if updated.LastCheckedDate == nil {
		t.Error("Expected last_checked_date to be set")
	}
}
