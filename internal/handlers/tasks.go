package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/everestcap/skillforge/internal/database"
	"github.com/everestcap/skillforge/internal/models"
	"github.com/everestcap/skillforge/internal/validation"
)

// TaskHandler handles task documentation intake
type TaskHandler struct {
	taskRepo database.TaskRepositoryInterface
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(taskRepo database.TaskRepositoryInterface) *TaskHandler {
	return &TaskHandler{taskRepo: taskRepo}
}

// RegisterRoutes registers task routes on the given router.
// The router should already have the /tasks prefix.
func (h *TaskHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.CreateTask).Methods("POST")
	r.HandleFunc("/{id}", h.GetTask).Methods("GET")
}

// CreateTask documents one completed task. Re-submitting the same task_id
// updates the document without resetting its analyzed state.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	task, err := decodeTask(r)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	if err := validation.ValidateTask(task); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	if err := h.taskRepo.Upsert(r.Context(), task); err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, task)
}

// GetTask returns one task document by id
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	taskID := mux.Vars(r)["id"]

	task, err := h.taskRepo.GetByID(r.Context(), taskID)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, task)
}

func decodeTask(r *http.Request) (*models.Task, error) {
	var task models.Task
	if err := json.NewDecoder(r.Body).Decode(&task); err != nil {
		return nil, err
	}

	// Intake never sets server-owned fields
	task.Analyzed = false

	task.Title = validation.SanitizeText(task.Title)
	task.Description = validation.SanitizeText(task.Description)
	return &task, nil
}
