package handlers

import (
	"encoding/json"
	"net/http"
)

// Fixed response strings. Internal error detail stays in the logs.
const (
	ErrMessageInternal    = "internal server error"
	ErrMessageUnavailable = "service unavailable"
)

// JSONError sends a JSON error response with a single "error" field.
func JSONError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
