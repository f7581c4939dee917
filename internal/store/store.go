// To handle all database interactions. This is our
// data access layer, keeping SQL queries separate from business logic.

package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/vrsandeep/casetrack-go/internal/models"
)

// Store provides all functions to interact with the database.
type Store struct {
	db *sql.DB
}

// New creates a new Store instance.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const caseColumns = `id, case_name, docket_url, victim_name, suspect_name, status,
	next_hearing_date, last_hearing_date, last_checked_date, confidence, notes,
	processing_status, created_at, updated_at`

func scanCase(row interface{ Scan(...interface{}) error }) (*models.Case, error) {
	var c models.Case
	var docketURL, victimName, suspectName, confidence, notes sql.NullString
	var nextHearing, lastHearing sql.NullString
	var lastChecked sql.NullTime
	err := row.Scan(
		&c.ID, &c.CaseName, &docketURL, &victimName, &suspectName, &c.Status,
		&nextHearing, &lastHearing, &lastChecked, &confidence, &notes,
		&c.ProcessingStatus, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.DocketURL = docketURL.String
	c.VictimName = victimName.String
	c.SuspectName = suspectName.String
	c.Confidence = confidence.String
	c.Notes = notes.String
	if nextHearing.Valid {
		c.NextHearingDate = &nextHearing.String
	}
	if lastHearing.Valid {
		c.LastHearingDate = &lastHearing.String
	}
	if lastChecked.Valid {
		c.LastCheckedDate = &lastChecked.Time
	}
	return &c, nil
}

func (s *Store) queryCases(query string, args ...interface{}) ([]*models.Case, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cases []*models.Case
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, err
		}
		cases = append(cases, c)
	}
	return cases, rows.Err()
}

// GetAllCases retrieves every case, newest first.
func (s *Store) GetAllCases() ([]*models.Case, error) {
	return s.queryCases("SELECT " + caseColumns + " FROM cases ORDER BY created_at DESC")
}

// GetCasesByStatus retrieves cases filtered by status. The comparison is
// case-insensitive so "open" and "Open" match the same rows.
func (s *Store) GetCasesByStatus(status string) ([]*models.Case, error) {
	query := "SELECT " + caseColumns + " FROM cases WHERE status = ? COLLATE NOCASE ORDER BY created_at DESC"
	return s.queryCases(query, status)
}

// GetCaseByID retrieves a single case. Returns sql.ErrNoRows when absent.
func (s *Store) GetCaseByID(id int64) (*models.Case, error) {
	row := s.db.QueryRow("SELECT "+caseColumns+" FROM cases WHERE id = ?", id)
	return scanCase(row)
}

// CreateCase inserts a new case and returns it with its assigned id.
func (s *Store) CreateCase(c *models.Case) (*models.Case, error) {
	if c.Status == "" {
		c.Status = models.StatusPending
	}
	if c.ProcessingStatus == "" {
		c.ProcessingStatus = models.ProcessingIdle
	}
	now := time.Now()
	res, err := s.db.Exec(`
		INSERT INTO cases (case_name, docket_url, victim_name, suspect_name, status,
			next_hearing_date, last_hearing_date, last_checked_date, confidence, notes,
			processing_status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.CaseName, nullify(c.DocketURL), nullify(c.VictimName), nullify(c.SuspectName),
		c.Status, c.NextHearingDate, c.LastHearingDate, c.LastCheckedDate,
		nullify(c.Confidence), nullify(c.Notes), c.ProcessingStatus, now, now,
	)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return s.GetCaseByID(id)
}

func nullify(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// CaseUpdate describes a partial update of a case. Nil fields are left
// untouched; a pointer to an empty string clears the column.
type CaseUpdate struct {
	CaseName        *string
	DocketURL       *string
	VictimName      *string
	SuspectName     *string
	Status          *string
	NextHearingDate *string
	LastHearingDate *string
	LastCheckedDate *time.Time
	Confidence      *string
	Notes           *string
}

// UpdateCase applies a partial update and returns the refreshed case.
// Returns sql.ErrNoRows when the case does not exist.
func (s *Store) UpdateCase(id int64, u CaseUpdate) (*models.Case, error) {
	var sets []string
	var args []interface{}
	add := func(col string, v interface{}) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}

	if u.CaseName != nil {
		add("case_name", *u.CaseName)
	}
	if u.DocketURL != nil {
		add("docket_url", nullify(*u.DocketURL))
	}
	if u.VictimName != nil {
		add("victim_name", nullify(*u.VictimName))
	}
	if u.SuspectName != nil {
		add("suspect_name", nullify(*u.SuspectName))
	}
	if u.Status != nil {
		add("status", *u.Status)
	}
	if u.NextHearingDate != nil {
		add("next_hearing_date", nullify(*u.NextHearingDate))
	}
	if u.LastHearingDate != nil {
		add("last_hearing_date", nullify(*u.LastHearingDate))
	}
	if u.LastCheckedDate != nil {
		add("last_checked_date", *u.LastCheckedDate)
	}
	if u.Confidence != nil {
		add("confidence", nullify(*u.Confidence))
	}
	if u.Notes != nil {
		add("notes", *u.Notes)
	}

	if len(sets) == 0 {
		return s.GetCaseByID(id)
	}
	add("updated_at", time.Now())

	query := fmt.Sprintf("UPDATE cases SET %s WHERE id = ?", strings.Join(sets, ", "))
	args = append(args, id)
	res, err := s.db.Exec(query, args...)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, sql.ErrNoRows
	}
	return s.GetCaseByID(id)
}

// DeleteCase removes a case. Deleting an id that does not exist is not an
// error; the operation is idempotent.
func (s *Store) DeleteCase(id int64) error {
	_, err := s.db.Exec("DELETE FROM cases WHERE id = ?", id)
	return err
}

// UpcomingHearings retrieves cases whose next hearing falls within the next
// N days, soonest first.
func (s *Store) UpcomingHearings(days int) ([]*models.Case, error) {
	today := time.Now().Format("2006-01-02")
	future := time.Now().AddDate(0, 0, days).Format("2006-01-02")
	query := "SELECT " + caseColumns + ` FROM cases
		WHERE next_hearing_date IS NOT NULL
		  AND next_hearing_date >= ? AND next_hearing_date <= ?
		ORDER BY next_hearing_date ASC`
	return s.queryCases(query, today, future)
}

// SetProcessingStatus changes a case's research job state.
func (s *Store) SetProcessingStatus(id int64, status string) error {
	_, err := s.db.Exec("UPDATE cases SET processing_status = ? WHERE id = ?", status, id)
	return err
}

// GetQueuedCases retrieves a limited number of cases waiting for research,
// oldest first.
func (s *Store) GetQueuedCases(limit int) ([]*models.Case, error) {
	query := "SELECT " + caseColumns + " FROM cases WHERE processing_status = 'queued' ORDER BY updated_at ASC LIMIT ?"
	return s.queryCases(query, limit)
}

// ResetProcessingCases sets cases from 'processing' back to 'queued' on
// startup so jobs interrupted by a restart are picked up again.
func (s *Store) ResetProcessingCases() error {
	_, err := s.db.Exec("UPDATE cases SET processing_status = 'queued' WHERE processing_status = 'processing'")
	return err
}

// ApplyVerdict writes a research verdict onto a case. Unknown sentinel values
// never overwrite existing data, matching the research contract: absence of
// evidence is not evidence of change.
func (s *Store) ApplyVerdict(id int64, v models.Verdict, checkedAt time.Time) (*models.Case, error) {
	u := CaseUpdate{
		LastCheckedDate: &checkedAt,
		Notes:           &v.Notes,
	}
	if !models.IsUnknown(v.NextHearingDate) {
		u.NextHearingDate = &v.NextHearingDate
	}
	if !models.IsUnknown(v.LastHearingDate) {
		u.LastHearingDate = &v.LastHearingDate
	}
	if !models.IsUnknown(v.VictimName) {
		u.VictimName = &v.VictimName
	}
	if !models.IsUnknown(v.SuspectName) {
		u.SuspectName = &v.SuspectName
	}
	if v.Confidence != "" {
		u.Confidence = &v.Confidence
	}
	if !models.IsUnknown(v.CaseStatus) && !strings.EqualFold(v.CaseStatus, models.StatusPending) {
		u.Status = &v.CaseStatus
	}
	return s.UpdateCase(id, u)
}
