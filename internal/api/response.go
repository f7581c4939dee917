// Helper functions for sending standardized JSON responses. Every API
// response carries a success flag; errors additionally carry a message.

package api

import (
	"encoding/json"
	"net/http"
)

// RespondWithJSON writes a JSON response with the given status code and payload.
func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		// If marshaling fails, return an error response
		RespondWithError(w, http.StatusInternalServerError, "Failed to marshal response")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// RespondWithData writes a success envelope. The extra map is merged next
// to the success flag, so callers control the field names ("data",
// "count", "message", ...).
func RespondWithData(w http.ResponseWriter, code int, extra map[string]interface{}) {
	payload := map[string]interface{}{"success": true}
	for k, v := range extra {
		payload[k] = v
	}
	RespondWithJSON(w, code, payload)
}

// RespondWithError writes a standardized JSON error response.
func RespondWithError(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, map[string]interface{}{
		"success": false,
		"error":   message,
	})
}
