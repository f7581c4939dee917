package research

import (
	"testing"
	"time"

	"github.com/vrsandeep/casetrack-go/internal/models"
)

var analyzeToday = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestAnalyzeFindsNextHearing(t *testing.T) {
	docs := []string{
		"The next hearing in the matter is scheduled for June 15, 2025 before Judge Harmon.\n" +
			"The defendant appeared at a previous hearing on 2025-04-10. The case remains open pending trial.",
	}
	v := Analyze("State v. Doe", docs, analyzeToday)

	if v.NextHearingDate != "2025-06-15" {
		t.Errorf("Expected next hearing 2025-06-15, got %s", v.NextHearingDate)
	}
	if v.LastHearingDate != "2025-04-10" {
		t.Errorf("Expected last hearing 2025-04-10, got %s", v.LastHearingDate)
	}
	if v.CaseStatus != models.StatusOpen {
		t.Errorf("Expected status Open, got %s", v.CaseStatus)
	}
	if v.Confidence != "high" {
		t.Errorf("Expected high confidence, got %s", v.Confidence)
	}
	if v.RequiresManualReview {
		t.Error("A verdict with a hearing date should not require manual review")
	}
}

func TestAnalyzePicksEarliestFutureDate(t *testing.T) {
	docs := []string{
		"A status hearing is scheduled for 2025-08-01.",
		"The trial is scheduled for 2025-06-20.",
	}
	v := Analyze("State v. Doe", docs, analyzeToday)
	if v.NextHearingDate != "2025-06-20" {
		t.Errorf("Expected the earliest future date 2025-06-20, got %s", v.NextHearingDate)
	}
}

func TestAnalyzeVerdictKeywords(t *testing.T) {
	docs := []string{"The jury returned its decision and the defendant was found guilty on all counts at the hearing on 2025-05-20."}
	v := Analyze("State v. Doe", docs, analyzeToday)
	if v.CaseStatus != models.StatusVerdict {
		t.Errorf("Expected 'Verdict Reached', got %s", v.CaseStatus)
	}
	if v.LastHearingDate != "2025-05-20" {
		t.Errorf("Expected last hearing 2025-05-20, got %s", v.LastHearingDate)
	}
}

func TestAnalyzeIgnoresDatesWithoutHearingContext(t *testing.T) {
	docs := []string{"The article was published on 2025-05-30 by the city desk."}
	v := Analyze("State v. Doe", docs, analyzeToday)
	if v.NextHearingDate != models.Unknown {
		t.Errorf("Expected Unknown next hearing, got %s", v.NextHearingDate)
	}
}

func TestAnalyzeEmptyInput(t *testing.T) {
	v := Analyze("State v. Doe", nil, analyzeToday)
	if !v.RequiresManualReview {
		t.Error("Empty input must be flagged for manual review")
	}
	if v.Confidence != "low" {
		t.Errorf("Expected low confidence, got %s", v.Confidence)
	}
	if v.NextHearingDate != models.Unknown || v.CaseStatus != models.Unknown {
		t.Errorf("Expected Unknown sentinels, got %+v", v)
	}
}

func TestAnalyzeExtractsParties(t *testing.T) {
	docs := []string{
		"Prosecutors said the victim, Jane Miller, testified at the hearing on 2025-04-02. " +
			"The defendant, Robert Stone, remains in custody awaiting trial.",
	}
	v := Analyze("State v. Stone", docs, analyzeToday)
	if v.VictimName != "Jane Miller" {
		t.Errorf("Expected victim 'Jane Miller', got %q", v.VictimName)
	}
	if v.SuspectName != "Robert Stone" {
		t.Errorf("Expected suspect 'Robert Stone', got %q", v.SuspectName)
	}
}
