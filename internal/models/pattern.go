package models

import "time"

// Pattern is a recurring implementation approach detected across tasks.
// Frequency always equals len(TaskReferences). Synthesized flips to true
// exactly once, when the generator turns the pattern into a skill.
type Pattern struct {
	PatternID        string    `json:"pattern_id" validate:"required"`
	Name             string    `json:"name" validate:"required"`
	Category         Category  `json:"category" validate:"required,category"`
	Frequency        int       `json:"frequency" validate:"min=1"`
	ConsistencyScore float64   `json:"consistency_score" validate:"min=1,max=10"`
	SkillViability   float64   `json:"skill_viability" validate:"min=1,max=10"`
	TaskReferences   []string  `json:"task_references" validate:"min=1"`
	Synthesized      bool      `json:"synthesized"`
	CreatedAt        time.Time `json:"created_at"`
}
