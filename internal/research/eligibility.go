package research

import (
	"fmt"
	"time"

	"github.com/vrsandeep/casetrack-go/internal/models"
)

// ShouldResearch decides whether the daily sweep runs a research job for a
// case. The rules:
//   - Closed cases are never checked.
//   - No hearing date, an unparseable date, or a date in the past: check.
//   - Hearing within 7 days: check.
//   - Hearing more than 7 days out: skip until it gets close.
//
// The returned reason is for log output only.
func ShouldResearch(c *models.Case, today time.Time) (bool, string) {
	if c.IsClosed() {
		return false, "case is closed"
	}
	if c.NextHearingDate == nil {
		return true, "no hearing date set"
	}

	hearing, err := time.Parse("2006-01-02", *c.NextHearingDate)
	if err != nil {
		return true, fmt.Sprintf("could not parse hearing date %q", *c.NextHearingDate)
	}

	days := int(hearing.Sub(today.Truncate(24*time.Hour)).Hours() / 24)
	switch {
	case days < 0:
		return true, fmt.Sprintf("hearing date passed (%s)", *c.NextHearingDate)
	case days <= 7:
		return true, fmt.Sprintf("hearing in %d days", days)
	case days > 30:
		return false, fmt.Sprintf("hearing > 30 days away (%d days)", days)
	default:
		return false, fmt.Sprintf("hearing in %d days (between 7-30)", days)
	}
}
