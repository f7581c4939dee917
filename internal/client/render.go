package client

import (
	"strings"

	"github.com/vrsandeep/casetrack-go/internal/models"
)

// Row is the display description of one case: plain values ready to
// print, no side effects. BuildTable is the only place display rules
// live, so they are testable apart from any output surface.
type Row struct {
	ID          int64
	Name        string
	Parties     string
	Status      string
	NextHearing string
	// LowConfidence marks the next-hearing cell with a warning when the
	// research was not sure about the date.
	LowConfidence bool
	LastHearing   string
	Badge         string
	Notes         string
}

// BuildTable transforms the case list into renderable rows.
func BuildTable(cases []*models.Case) []Row {
	rows := make([]Row, 0, len(cases))
	for _, c := range cases {
		rows = append(rows, buildRow(c))
	}
	return rows
}

func buildRow(c *models.Case) Row {
	r := Row{
		ID:          c.ID,
		Name:        c.CaseName,
		Parties:     parties(c),
		Status:      c.Status,
		NextHearing: hearingCell(c),
		LastHearing: dateOrUnknown(c.LastHearingDate),
		Badge:       processingBadge(c.ProcessingStatus),
		Notes:       c.Notes,
	}
	r.LowConfidence = !c.IsClosed() &&
		strings.EqualFold(c.Confidence, "low") &&
		c.NextHearingDate != nil
	return r
}

// hearingCell applies the closed-case rule: a closed case shows
// "Case Closed" in the next-hearing column no matter what date is stored.
func hearingCell(c *models.Case) string {
	if c.IsClosed() {
		return "Case Closed"
	}
	return dateOrUnknown(c.NextHearingDate)
}

func dateOrUnknown(date *string) string {
	if date == nil || models.IsUnknown(*date) {
		return models.Unknown
	}
	return *date
}

func parties(c *models.Case) string {
	var parts []string
	if c.VictimName != "" && !models.IsUnknown(c.VictimName) {
		parts = append(parts, "V: "+c.VictimName)
	}
	if c.SuspectName != "" && !models.IsUnknown(c.SuspectName) {
		parts = append(parts, "S: "+c.SuspectName)
	}
	return strings.Join(parts, " / ")
}

func processingBadge(status string) string {
	switch strings.ToLower(status) {
	case models.ProcessingQueued:
		return "Queued"
	case models.ProcessingActive:
		return "Researching"
	case models.ProcessingComplete:
		return "Updated"
	}
	return ""
}
