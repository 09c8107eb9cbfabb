package handlers

import (
	"encoding/json"
	"net/http"

	"home-gallery/internal/logging"
)

// writeJSON encodes v to the response. Encoding errors are logged; there is
// nothing else to do once the handler has committed to a response.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error("failed to encode JSON response: %v", err)
	}
}

func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	writeJSON(w, map[string]string{"error": message})
}
