package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/vrsandeep/casetrack-go/internal/models"
)

func (s *Server) handleSchedulerStatus(w http.ResponseWriter, r *http.Request) {
	running, jobs := s.scheduler.Status()
	if jobs == nil {
		jobs = []models.SchedulerJobInfo{}
	}
	RespondWithData(w, http.StatusOK, map[string]interface{}{
		"scheduler_running": running,
		"jobs":              jobs,
	})
}

func (s *Server) handleSchedulerRunNow(w http.ResponseWriter, r *http.Request) {
	queued, skipped, err := s.scheduler.RunNow()
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to run sweep")
		return
	}
	RespondWithData(w, http.StatusAccepted, map[string]interface{}{
		"queued":  queued,
		"skipped": skipped,
	})
}

type customCheckRequest struct {
	CaseIDs []int64 `json:"case_ids"`
	RunTime string  `json:"run_time"` // RFC 3339
}

func (s *Server) handleScheduleCustomCheck(w http.ResponseWriter, r *http.Request) {
	var req customCheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.CaseIDs) == 0 {
		RespondWithError(w, http.StatusBadRequest, "case_ids is required")
		return
	}
	runAt, err := time.Parse(time.RFC3339, req.RunTime)
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "run_time must be RFC 3339")
		return
	}

	jobID, err := s.scheduler.ScheduleCustomCheck(req.CaseIDs, runAt)
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	RespondWithData(w, http.StatusCreated, map[string]interface{}{
		"job_id":   jobID,
		"run_time": runAt.UTC().Format(time.RFC3339),
		"case_ids": req.CaseIDs,
	})
}
