package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/everestcap/skillforge/internal/models"
)

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]any{
		"success":   true,
		"data":      data,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// sanitizeErrorMessage truncates error messages before they leave the service
func sanitizeErrorMessage(message string) string {
	if len(message) > 200 {
		return message[:200] + "..."
	}
	return message
}

// respondJSONError sends an error JSON response with sanitized error messages
func respondJSONError(w http.ResponseWriter, status int, errorType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]any{
		"success":   false,
		"error":     errorType,
		"message":   sanitizeErrorMessage(message),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// respondStoreError maps the store's error taxonomy onto HTTP statuses
func respondStoreError(w http.ResponseWriter, err error) {
	switch {
	case models.IsValidation(err):
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
	case models.IsNotFound(err):
		respondJSONError(w, http.StatusNotFound, "Not Found", err.Error())
	case models.IsUnavailable(err):
		respondJSONError(w, http.StatusServiceUnavailable, "Service Unavailable", "store unavailable, retry later")
	default:
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "unexpected error")
	}
}
