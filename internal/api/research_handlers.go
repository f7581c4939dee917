package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// handleTriggerUpdate queues a research job for one case. The id comes
// from the URL, or from a {"case_id": N} body on the bare route.
func (s *Server) handleTriggerUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := caseIDParam(r)
	if !ok && chi.URLParam(r, "caseID") == "" {
		var body struct {
			CaseID int64 `json:"case_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err == nil && body.CaseID > 0 {
			id, ok = body.CaseID, true
		}
	}
	if !ok {
		RespondWithError(w, http.StatusBadRequest, "Invalid case ID")
		return
	}

	if err := s.research.Enqueue(id); err != nil {
		if err.Error() == "case not found" {
			RespondWithError(w, http.StatusNotFound, "Case not found")
		} else {
			RespondWithError(w, http.StatusInternalServerError, "Failed to queue research")
		}
		return
	}
	RespondWithData(w, http.StatusAccepted, map[string]interface{}{
		"message": "Research queued",
		"case_id": id,
	})
}

// handleTriggerAll runs the eligibility sweep immediately.
func (s *Server) handleTriggerAll(w http.ResponseWriter, r *http.Request) {
	queued, skipped, err := s.research.EnqueueEligible()
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to queue research")
		return
	}
	RespondWithData(w, http.StatusAccepted, map[string]interface{}{
		"queued":  queued,
		"skipped": skipped,
	})
}

// handleGetProgress returns the raw progress snapshot for a case. This
// endpoint intentionally has no success envelope; pollers read the
// fields directly.
func (s *Server) handleGetProgress(w http.ResponseWriter, r *http.Request) {
	id, ok := caseIDParam(r)
	if !ok {
		RespondWithError(w, http.StatusBadRequest, "Invalid case ID")
		return
	}
	snap, found := s.research.Tracker().Snapshot(id)
	if !found {
		RespondWithJSON(w, http.StatusOK, map[string]interface{}{
			"percent": 0,
			"message": "No active research",
			"status":  "idle",
		})
		return
	}
	RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"percent": snap.Percent,
		"message": snap.Message,
		"status":  snap.Status,
	})
}
