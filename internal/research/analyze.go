package research

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/vrsandeep/casetrack-go/internal/models"
)

// Patterns for date mentions commonly seen in court coverage and dockets.
// Candidates are validated with dateparse before use.
var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`),
	regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{4}\b`),
	regexp.MustCompile(`\b(?:January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2},?\s+\d{4}\b`),
	regexp.MustCompile(`\b\d{1,2}\s+(?:January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{4}\b`),
}

var hearingKeywords = []string{
	"hearing", "trial", "arraignment", "sentencing", "appearance", "docket",
	"scheduled", "adjourned", "continued",
}

var victimRe = regexp.MustCompile(`(?i)victim[,:]?\s+([A-Z][a-z]+(?:\s[A-Z][a-z]+)+)`)
var suspectRe = regexp.MustCompile(`(?i)(?:defendant|suspect|accused)[,:]?\s+([A-Z][a-z]+(?:\s[A-Z][a-z]+)+)`)

// Analyze extracts a verdict from collected research text. The heuristics
// mirror what a paralegal would do with the same pages: find hearing dates
// near scheduling language, classify past vs. future relative to today, and
// read status from outcome keywords.
func Analyze(caseName string, docs []string, today time.Time) models.Verdict {
	text := strings.Join(docs, "\n\n")
	if strings.TrimSpace(text) == "" {
		return models.Verdict{
			NextHearingDate:      models.Unknown,
			LastHearingDate:      models.Unknown,
			CaseStatus:           models.Unknown,
			VictimName:           models.Unknown,
			SuspectName:          models.Unknown,
			Confidence:           "low",
			Notes:                "No data available to analyze.",
			RequiresManualReview: true,
		}
	}

	day := today.Truncate(24 * time.Hour)
	var nextHearing, lastHearing time.Time

	for _, sentence := range splitSentences(text) {
		if !containsHearingKeyword(sentence) {
			continue
		}
		for _, d := range findDates(sentence) {
			if d.Before(day) {
				if lastHearing.IsZero() || d.After(lastHearing) {
					lastHearing = d
				}
			} else {
				if nextHearing.IsZero() || d.Before(nextHearing) {
					nextHearing = d
				}
			}
		}
	}

	v := models.Verdict{
		NextHearingDate: models.Unknown,
		LastHearingDate: models.Unknown,
		CaseStatus:      detectStatus(text),
		VictimName:      extractName(victimRe, text),
		SuspectName:     extractName(suspectRe, text),
	}
	if !nextHearing.IsZero() {
		v.NextHearingDate = nextHearing.Format("2006-01-02")
	}
	if !lastHearing.IsZero() {
		v.LastHearingDate = lastHearing.Format("2006-01-02")
	}

	switch {
	case v.NextHearingDate != models.Unknown:
		v.Confidence = "high"
	case v.LastHearingDate != models.Unknown || v.CaseStatus != models.Unknown:
		v.Confidence = "medium"
	default:
		v.Confidence = "low"
		v.RequiresManualReview = true
	}

	v.Notes = summarize(caseName, v)
	return v
}

func splitSentences(text string) []string {
	var sentences []string
	for _, line := range strings.Split(text, "\n") {
		for _, s := range strings.Split(line, ". ") {
			s = strings.TrimSpace(s)
			if s != "" {
				sentences = append(sentences, s)
			}
		}
	}
	return sentences
}

func containsHearingKeyword(sentence string) bool {
	lower := strings.ToLower(sentence)
	for _, kw := range hearingKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func findDates(sentence string) []time.Time {
	var dates []time.Time
	for _, re := range datePatterns {
		for _, candidate := range re.FindAllString(sentence, -1) {
			d, err := dateparse.ParseAny(candidate)
			if err != nil {
				continue
			}
			dates = append(dates, d)
		}
	}
	return dates
}

// detectStatus reads the case status from outcome language. Verdict wording
// wins over closure wording since a verdict implies the case wrapped up.
func detectStatus(text string) string {
	lower := strings.ToLower(text)
	for _, kw := range []string{"verdict reached", "found guilty", "found not guilty", "acquitted", "jury returned"} {
		if strings.Contains(lower, kw) {
			return models.StatusVerdict
		}
	}
	for _, kw := range []string{"case closed", "case was closed", "dismissed", "sentenced to"} {
		if strings.Contains(lower, kw) {
			return models.StatusClosed
		}
	}
	for _, kw := range []string{"remains open", "pending trial", "awaiting trial", "case is open", "pretrial"} {
		if strings.Contains(lower, kw) {
			return models.StatusOpen
		}
	}
	return models.Unknown
}

func extractName(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if len(m) < 2 {
		return models.Unknown
	}
	return m[len(m)-1]
}

// summarize writes the short professional note stored on the case.
func summarize(caseName string, v models.Verdict) string {
	var parts []string
	if v.NextHearingDate != models.Unknown {
		parts = append(parts, fmt.Sprintf("Next hearing in %s is scheduled for %s.", caseName, v.NextHearingDate))
	} else {
		parts = append(parts, fmt.Sprintf("No upcoming hearing date found for %s.", caseName))
	}
	if v.CaseStatus != models.Unknown {
		parts = append(parts, fmt.Sprintf("Current status: %s.", v.CaseStatus))
	} else {
		parts = append(parts, "Case status could not be determined from available records.")
	}
	return strings.Join(parts, " ")
}
