// Package importer loads cases in bulk from CSV and XLSX files, either
// through the upload endpoint or from a watched drop directory.
package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/araddon/dateparse"
	"github.com/xuri/excelize/v2"

	"github.com/vrsandeep/casetrack-go/internal/models"
	"github.com/vrsandeep/casetrack-go/internal/store"
)

// Result summarizes one import run.
type Result struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

type Service struct {
	st *store.Store
}

func New(st *store.Store) *Service {
	return &Service{st: st}
}

// ImportFile imports a spreadsheet from disk, dispatching on the file
// extension.
func (s *Service) ImportFile(path string) (*Result, error) {
	name := filepath.Base(path)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return s.ImportCSV(f, name)
	case ".xlsx":
		f, err := excelize.OpenFile(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return s.importWorkbook(f, name)
	default:
		return nil, fmt.Errorf("unsupported import format: %s", name)
	}
}

// ImportCSV reads cases from CSV data. The first row must be a header;
// column order is free.
func (s *Service) ImportCSV(r io.Reader, sourceName string) (*Result, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("could not parse CSV: %w", err)
	}
	return s.importRows(rows, sourceName)
}

// ImportXLSX reads cases from the first sheet of an XLSX workbook.
func (s *Service) ImportXLSX(r io.Reader, sourceName string) (*Result, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("could not open workbook: %w", err)
	}
	defer f.Close()
	return s.importWorkbook(f, sourceName)
}

func (s *Service) importWorkbook(f *excelize.File, sourceName string) (*Result, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("could not read sheet %q: %w", sheets[0], err)
	}
	return s.importRows(rows, sourceName)
}

func (s *Service) importRows(rows [][]string, sourceName string) (*Result, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("file is empty")
	}

	cols := headerIndex(rows[0])
	if _, ok := cols["case_name"]; !ok {
		return nil, fmt.Errorf("missing required column 'case_name'")
	}

	existing, err := s.existingNames()
	if err != nil {
		return nil, err
	}

	result := &Result{}
	for i, row := range rows[1:] {
		cell := func(name string) string {
			idx, ok := cols[name]
			if !ok || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}

		name := cell("case_name")
		if name == "" {
			result.Skipped++
			continue
		}
		if existing[strings.ToLower(name)] {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: case %q already exists", i+2, name))
			continue
		}

		c := &models.Case{
			CaseName:    name,
			DocketURL:   cell("docket_url"),
			VictimName:  cell("victim_name"),
			SuspectName: cell("suspect_name"),
			Status:      normalizeStatus(cell("status")),
			Notes:       importNote(cell("notes"), sourceName),
		}
		if d := normalizeDate(cell("next_hearing_date")); d != "" {
			c.NextHearingDate = &d
		}
		if d := normalizeDate(cell("last_hearing_date")); d != "" {
			c.LastHearingDate = &d
		}

		if _, err := s.st.CreateCase(c); err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", i+2, err))
			continue
		}
		existing[strings.ToLower(name)] = true
		result.Imported++
	}

	log.Printf("Import from %s: %d imported, %d skipped", sourceName, result.Imported, result.Skipped)
	return result, nil
}

func (s *Service) existingNames() (map[string]bool, error) {
	cases, err := s.st.GetAllCases()
	if err != nil {
		return nil, err
	}
	names := make(map[string]bool, len(cases))
	for _, c := range cases {
		names[strings.ToLower(c.CaseName)] = true
	}
	return names, nil
}

// headerIndex maps normalized column names to their positions. "Next
// Hearing Date" and "next_hearing_date" are the same column.
func headerIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		key = strings.ReplaceAll(key, " ", "_")
		if key != "" {
			cols[key] = i
		}
	}
	return cols
}

// normalizeStatus maps free-form status text onto the known set.
// Unrecognized values become Open since imported cases are tracked ones.
func normalizeStatus(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "closed":
		return models.StatusClosed
	case "verdict reached", "verdict":
		return models.StatusVerdict
	case "pending":
		return models.StatusPending
	default:
		return models.StatusOpen
	}
}

// normalizeDate turns any recognizable date string into ISO form, or ""
// when the cell is empty or unparseable.
func normalizeDate(raw string) string {
	if raw == "" {
		return ""
	}
	d, err := dateparse.ParseAny(raw)
	if err != nil {
		return ""
	}
	return d.Format("2006-01-02")
}

func importNote(notes, sourceName string) string {
	marker := fmt.Sprintf("Imported from %s", sourceName)
	if notes == "" {
		return marker
	}
	return notes + " | " + marker
}
