// ----- Shared HTTP response helpers -----

package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ternarybob/respondeo/internal/models"
)

// RequireMethod rejects requests with the wrong HTTP method. Returns true
// when the request may proceed.
func RequireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		WriteError(w, http.StatusMethodNotAllowed, models.ErrCodeBadRequest, "method not allowed", nil)
		return false
	}
	return true
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// WriteError writes the API's uniform error body.
func WriteError(w http.ResponseWriter, status int, code, message string, details map[string]interface{}) {
	WriteJSON(w, status, models.ErrorResponse{
		ErrorCode: code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
	})
}
