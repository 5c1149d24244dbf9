package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/everestcap/skillforge/internal/database"
	"github.com/everestcap/skillforge/internal/models"
	"github.com/everestcap/skillforge/internal/validation"
)

// UsageHandler records skill usage events
type UsageHandler struct {
	usageRepo database.UsageRepositoryInterface
}

// NewUsageHandler creates a new usage handler
func NewUsageHandler(usageRepo database.UsageRepositoryInterface) *UsageHandler {
	return &UsageHandler{usageRepo: usageRepo}
}

// RecordUsageRequest represents a usage report for one application of a skill
type RecordUsageRequest struct {
	Success          bool    `json:"success"`
	TimeSavedMinutes int     `json:"time_saved_minutes"`
	Iterations       int     `json:"iterations"`
	Rating           *int    `json:"rating,omitempty"`
	Feedback         *string `json:"feedback,omitempty"`
}

// RecordUsage appends an immutable usage event for the skill in the path and
// returns the skill's recomputed aggregates
func (h *UsageHandler) RecordUsage(w http.ResponseWriter, r *http.Request) {
	skillID := mux.Vars(r)["id"]

	var req RecordUsageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	if req.Iterations == 0 {
		req.Iterations = 1
	}
	if req.Feedback != nil {
		sanitized := validation.SanitizeText(*req.Feedback)
		req.Feedback = &sanitized
	}

	event := &models.UsageEvent{
		ID:               uuid.New(),
		SkillID:          skillID,
		Success:          req.Success,
		TimeSavedMinutes: req.TimeSavedMinutes,
		Iterations:       req.Iterations,
		Rating:           req.Rating,
		Feedback:         req.Feedback,
		UsedAt:           time.Now().UTC(),
	}

	if err := validation.ValidateUsageEvent(event); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	if err := h.usageRepo.Record(r.Context(), event); err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, event)
}
