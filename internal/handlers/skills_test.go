package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"

	"github.com/everestcap/skillforge/internal/models"
)

func skillRouter(skills *fakeSkillRepo, usage *fakeUsageRepo) *mux.Router {
	router := mux.NewRouter()
	NewSkillHandler(skills, usage).RegisterRoutes(
		router.PathPrefix("/api/v1/skills").Subrouter(),
		NewUsageHandler(usage),
	)
	return router
}

func TestListSkills(t *testing.T) {
	t.Parallel()

	skills := newFakeSkillRepo()
	skills.skills["skill_a"] = &models.Skill{SkillID: "skill_a", Name: "A", Version: "1.0.0"}
	skills.skills["skill_b"] = &models.Skill{SkillID: "skill_b", Name: "B", Version: "1.2.0"}

	req := httptest.NewRequest("GET", "/api/v1/skills", nil)
	rec := httptest.NewRecorder()
	skillRouter(skills, newFakeUsageRepo()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var envelope struct {
		Data []*models.Skill `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data) != 2 {
		t.Errorf("got %d skills, want 2", len(envelope.Data))
	}
}

func TestGetSkillNotFound(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest("GET", "/api/v1/skills/skill_missing", nil)
	rec := httptest.NewRecorder()
	skillRouter(newFakeSkillRepo(), newFakeUsageRepo()).ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestRecordUsage(t *testing.T) {
	t.Parallel()

	skills := newFakeSkillRepo()
	skills.skills["skill_a"] = &models.Skill{SkillID: "skill_a", Name: "A", Version: "1.0.0"}
	usage := newFakeUsageRepo("skill_a")

	body := `{"success": true, "time_saved_minutes": 30, "iterations": 1, "rating": 5}`
	req := httptest.NewRequest("POST", "/api/v1/skills/skill_a/usage", strings.NewReader(body))
	rec := httptest.NewRecorder()
	skillRouter(skills, usage).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body: %s", rec.Code, rec.Body.String())
	}

	events := usage.events["skill_a"]
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	event := events[0]
	if !event.Success || event.TimeSavedMinutes != 30 || event.Rating == nil || *event.Rating != 5 {
		t.Errorf("unexpected event: %+v", event)
	}
	if event.ID.String() == "00000000-0000-0000-0000-000000000000" {
		t.Error("event id must be assigned server-side")
	}
}

func TestRecordUsageUnknownSkill(t *testing.T) {
	t.Parallel()

	body := `{"success": true, "iterations": 1}`
	req := httptest.NewRequest("POST", "/api/v1/skills/skill_missing/usage", strings.NewReader(body))
	rec := httptest.NewRecorder()
	skillRouter(newFakeSkillRepo(), newFakeUsageRepo()).ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404; unknown skill must be rejected, not auto-created", rec.Code)
	}
}

func TestRecordUsageValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{"malformed JSON", `{"success": `},
		{"rating out of range", `{"success": true, "iterations": 1, "rating": 6}`},
		{"negative time saved", `{"success": true, "iterations": 1, "time_saved_minutes": -5}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			usage := newFakeUsageRepo("skill_a")
			req := httptest.NewRequest("POST", "/api/v1/skills/skill_a/usage", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			skillRouter(newFakeSkillRepo(), usage).ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400; body: %s", rec.Code, rec.Body.String())
			}
			if len(usage.events["skill_a"]) != 0 {
				t.Error("invalid event must not persist")
			}
		})
	}
}

func TestListUsage(t *testing.T) {
	t.Parallel()

	skills := newFakeSkillRepo()
	skills.skills["skill_a"] = &models.Skill{SkillID: "skill_a", Name: "A", Version: "1.0.0"}
	usage := newFakeUsageRepo("skill_a")
	usage.events["skill_a"] = []*models.UsageEvent{
		{SkillID: "skill_a", Success: true, Iterations: 1},
		{SkillID: "skill_a", Success: false, Iterations: 3},
	}

	req := httptest.NewRequest("GET", "/api/v1/skills/skill_a/usage", nil)
	rec := httptest.NewRecorder()
	skillRouter(skills, usage).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var envelope struct {
		Data []*models.UsageEvent `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data) != 2 {
		t.Errorf("got %d events, want 2", len(envelope.Data))
	}
}

func TestGetOverview(t *testing.T) {
	t.Parallel()

	overview := &fakeOverviewRepo{overview: &models.Overview{
		TotalTasks:      42,
		PendingAnalysis: 7,
		TotalSkills:     3,
		TasksByCategory: map[models.Category]int{models.CategoryScraping: 12},
	}}

	router := mux.NewRouter()
	router.HandleFunc("/api/v1/overview", NewOverviewHandler(overview).GetOverview).Methods("GET")

	req := httptest.NewRequest("GET", "/api/v1/overview", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var envelope struct {
		Data models.Overview `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.TotalTasks != 42 || envelope.Data.TasksByCategory[models.CategoryScraping] != 12 {
		t.Errorf("unexpected overview: %+v", envelope.Data)
	}
}
