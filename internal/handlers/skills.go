package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/everestcap/skillforge/internal/database"
)

// SkillHandler serves the skill read surface
type SkillHandler struct {
	skillRepo database.SkillRepositoryInterface
	usageRepo database.UsageRepositoryInterface
}

// NewSkillHandler creates a new skill handler
func NewSkillHandler(skillRepo database.SkillRepositoryInterface, usageRepo database.UsageRepositoryInterface) *SkillHandler {
	return &SkillHandler{skillRepo: skillRepo, usageRepo: usageRepo}
}

// RegisterRoutes registers skill routes on the given router.
// The router should already have the /skills prefix.
func (h *SkillHandler) RegisterRoutes(r *mux.Router, usage *UsageHandler) {
	r.HandleFunc("", h.ListSkills).Methods("GET")
	r.HandleFunc("/{id}", h.GetSkill).Methods("GET")
	r.HandleFunc("/{id}/usage", h.ListUsage).Methods("GET")
	r.HandleFunc("/{id}/usage", usage.RecordUsage).Methods("POST")
}

// ListSkills returns every skill with its live aggregates
func (h *SkillHandler) ListSkills(w http.ResponseWriter, r *http.Request) {
	skills, err := h.skillRepo.GetAll(r.Context())
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, skills)
}

// GetSkill returns one skill by id
func (h *SkillHandler) GetSkill(w http.ResponseWriter, r *http.Request) {
	skillID := mux.Vars(r)["id"]

	skill, err := h.skillRepo.GetByID(r.Context(), skillID)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, skill)
}

// ListUsage returns a skill's usage history in recording order
func (h *SkillHandler) ListUsage(w http.ResponseWriter, r *http.Request) {
	skillID := mux.Vars(r)["id"]

	if _, err := h.skillRepo.GetByID(r.Context(), skillID); err != nil {
		respondStoreError(w, err)
		return
	}

	events, err := h.usageRepo.GetBySkillID(r.Context(), skillID)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, events)
}
