package models

import (
	"time"

	"github.com/google/uuid"
)

// UsageEvent records one application of a skill by an external consumer.
// Events are immutable once recorded; skill aggregates are always recomputed
// as a fold over them.
type UsageEvent struct {
	ID               uuid.UUID `json:"id"`
	SkillID          string    `json:"skill_id" validate:"required"`
	Success          bool      `json:"success"`
	TimeSavedMinutes int       `json:"time_saved_minutes" validate:"min=0"`
	Iterations       int       `json:"iterations" validate:"min=1"`
	Rating           *int      `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
	Feedback         *string   `json:"feedback,omitempty"`
	UsedAt           time.Time `json:"used_at"`
}

// Overview is the system-wide aggregate snapshot consumed by the dashboard.
// It is a derived, recomputable view over the four collections, never stored.
type Overview struct {
	TotalTasks          int              `json:"total_tasks"`
	PendingAnalysis     int              `json:"pending_analysis"`
	TotalPatterns       int              `json:"total_patterns"`
	TotalSkills         int              `json:"total_skills"`
	TotalUses           int              `json:"total_uses"`
	AvgSuccessRate      float64          `json:"avg_success_rate"`
	TotalTimeSavedHours float64          `json:"total_time_saved_hours"`
	TasksByCategory     map[Category]int `json:"tasks_by_category,omitempty"`
}
