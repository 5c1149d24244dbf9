package handlers

import (
	"net/http"

	"github.com/everestcap/skillforge/internal/database"
)

// OverviewHandler serves the system-wide aggregate snapshot
type OverviewHandler struct {
	overviewRepo database.OverviewRepositoryInterface
}

// NewOverviewHandler creates a new overview handler
func NewOverviewHandler(overviewRepo database.OverviewRepositoryInterface) *OverviewHandler {
	return &OverviewHandler{overviewRepo: overviewRepo}
}

// GetOverview recomputes and returns the dashboard snapshot
func (h *OverviewHandler) GetOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.overviewRepo.Get(r.Context())
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, overview)
}
