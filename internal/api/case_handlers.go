package api

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/vrsandeep/casetrack-go/internal/models"
	"github.com/vrsandeep/casetrack-go/internal/store"
)

func caseIDParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "caseID"), 10, 64)
	return id, err == nil && id > 0
}

func (s *Server) handleListCases(w http.ResponseWriter, r *http.Request) {
	var cases []*models.Case
	var err error

	if status := r.URL.Query().Get("status"); status != "" {
		cases, err = s.store.GetCasesByStatus(status)
	} else {
		cases, err = s.store.GetAllCases()
	}
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to fetch cases")
		return
	}
	if cases == nil {
		cases = []*models.Case{}
	}
	RespondWithData(w, http.StatusOK, map[string]interface{}{
		"data":  cases,
		"count": len(cases),
	})
}

func (s *Server) handleGetCase(w http.ResponseWriter, r *http.Request) {
	id, ok := caseIDParam(r)
	if !ok {
		RespondWithError(w, http.StatusBadRequest, "Invalid case ID")
		return
	}
	c, err := s.store.GetCaseByID(id)
	if err != nil {
		if err == sql.ErrNoRows {
			RespondWithError(w, http.StatusNotFound, "Case not found")
		} else {
			RespondWithError(w, http.StatusInternalServerError, "Failed to fetch case")
		}
		return
	}
	RespondWithData(w, http.StatusOK, map[string]interface{}{"data": c})
}

// addCaseRequest is the payload for creating a case. Hearing dates accept
// sentinel strings ("Unknown", "N/A") which are stored as NULL.
type addCaseRequest struct {
	CaseName        string `json:"case_name"`
	DocketURL       string `json:"docket_url"`
	VictimName      string `json:"victim_name"`
	SuspectName     string `json:"suspect_name"`
	NextHearingDate string `json:"next_hearing_date"`
	LastHearingDate string `json:"last_hearing_date"`
	Notes           string `json:"notes"`
}

func (s *Server) handleAddCase(w http.ResponseWriter, r *http.Request) {
	var req addCaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.CaseName = strings.TrimSpace(req.CaseName)
	if req.CaseName == "" {
		RespondWithError(w, http.StatusBadRequest, "case_name is required")
		return
	}

	// New cases start Pending until research classifies them.
	c := &models.Case{
		CaseName:    req.CaseName,
		DocketURL:   strings.TrimSpace(req.DocketURL),
		VictimName:  strings.TrimSpace(req.VictimName),
		SuspectName: strings.TrimSpace(req.SuspectName),
		Status:      models.StatusPending,
		Notes:       req.Notes,
	}
	if d := cleanDate(req.NextHearingDate); d != "" {
		c.NextHearingDate = &d
	}
	if d := cleanDate(req.LastHearingDate); d != "" {
		c.LastHearingDate = &d
	}

	created, err := s.store.CreateCase(c)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to create case")
		return
	}
	RespondWithData(w, http.StatusCreated, map[string]interface{}{"data": created})
}

// cleanDate drops sentinel values so they become NULL instead of being
// stored as literal text.
func cleanDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if models.IsUnknown(raw) {
		return ""
	}
	return raw
}

// updateCaseRequest carries the allowed fields for a partial update.
// Absent fields are untouched; present-but-empty strings clear the column.
type updateCaseRequest struct {
	CaseName        *string `json:"case_name"`
	DocketURL       *string `json:"docket_url"`
	VictimName      *string `json:"victim_name"`
	SuspectName     *string `json:"suspect_name"`
	Status          *string `json:"status"`
	NextHearingDate *string `json:"next_hearing_date"`
	LastHearingDate *string `json:"last_hearing_date"`
	Confidence      *string `json:"confidence"`
	Notes           *string `json:"notes"`
}

func (s *Server) handleUpdateCase(w http.ResponseWriter, r *http.Request) {
	id, ok := caseIDParam(r)
	if !ok {
		RespondWithError(w, http.StatusBadRequest, "Invalid case ID")
		return
	}
	var req updateCaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Status != nil && !validStatus(*req.Status) {
		RespondWithError(w, http.StatusBadRequest, "Invalid status value")
		return
	}

	u := store.CaseUpdate{
		CaseName:    req.CaseName,
		DocketURL:   req.DocketURL,
		VictimName:  req.VictimName,
		SuspectName: req.SuspectName,
		Status:      req.Status,
		Confidence:  req.Confidence,
		Notes:       req.Notes,
	}
	if req.NextHearingDate != nil {
		d := cleanDate(*req.NextHearingDate)
		u.NextHearingDate = &d
	}
	if req.LastHearingDate != nil {
		d := cleanDate(*req.LastHearingDate)
		u.LastHearingDate = &d
	}

	updated, err := s.store.UpdateCase(id, u)
	if err != nil {
		if err == sql.ErrNoRows {
			RespondWithError(w, http.StatusNotFound, "Case not found")
		} else {
			RespondWithError(w, http.StatusInternalServerError, "Failed to update case")
		}
		return
	}
	RespondWithData(w, http.StatusOK, map[string]interface{}{"data": updated})
}

func validStatus(status string) bool {
	switch status {
	case models.StatusOpen, models.StatusClosed, models.StatusVerdict, models.StatusPending:
		return true
	}
	return false
}

func (s *Server) handleDeleteCase(w http.ResponseWriter, r *http.Request) {
	id, ok := caseIDParam(r)
	if !ok {
		RespondWithError(w, http.StatusBadRequest, "Invalid case ID")
		return
	}
	if err := s.store.DeleteCase(id); err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to delete case")
		return
	}
	RespondWithData(w, http.StatusOK, map[string]interface{}{"message": "Case deleted"})
}

func (s *Server) handleUpcomingHearings(w http.ResponseWriter, r *http.Request) {
	days := 7
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			RespondWithError(w, http.StatusBadRequest, "Invalid days value")
			return
		}
		days = parsed
	}
	cases, err := s.store.UpcomingHearings(days)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to fetch upcoming hearings")
		return
	}
	if cases == nil {
		cases = []*models.Case{}
	}
	RespondWithData(w, http.StatusOK, map[string]interface{}{
		"data":  cases,
		"count": len(cases),
		"days":  days,
	})
}
