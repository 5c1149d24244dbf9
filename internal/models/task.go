package models

import "time"

// TaskType classifies the kind of work a task documented
type TaskType string

const (
	TaskTypeFeature     TaskType = "feature"
	TaskTypeBugfix      TaskType = "bugfix"
	TaskTypeRefactor    TaskType = "refactor"
	TaskTypeEnhancement TaskType = "enhancement"
	TaskTypeConfig      TaskType = "config"
)

// Valid reports whether the task type is one of the known values
func (t TaskType) Valid() bool {
	switch t {
	case TaskTypeFeature, TaskTypeBugfix, TaskTypeRefactor, TaskTypeEnhancement, TaskTypeConfig:
		return true
	default:
		return false
	}
}

// Category classifies the area of the system a task, pattern, or skill belongs to
type Category string

const (
	CategoryBackend    Category = "backend"
	CategoryFrontend   Category = "frontend"
	CategoryDatabase   Category = "database"
	CategoryAPI        Category = "api"
	CategoryScraping   Category = "scraping"
	CategoryML         Category = "ml"
	CategoryReporting  Category = "reporting"
	CategoryTesting    Category = "testing"
	CategoryDeployment Category = "deployment"
)

// Valid reports whether the category is one of the known values
func (c Category) Valid() bool {
	switch c {
	case CategoryBackend, CategoryFrontend, CategoryDatabase, CategoryAPI,
		CategoryScraping, CategoryML, CategoryReporting, CategoryTesting, CategoryDeployment:
		return true
	default:
		return false
	}
}

// ImplementationStep is one ordered step of a task's implementation
type ImplementationStep struct {
	Description string   `json:"description"`
	Files       []string `json:"files,omitempty"`
}

// Implementation describes how a task was carried out
type Implementation struct {
	Approach     string               `json:"approach"`
	Steps        []ImplementationStep `json:"steps,omitempty"`
	PatternsUsed []string             `json:"patterns_used,omitempty"`
}

// Challenge records a problem hit during a task and how it was resolved
type Challenge struct {
	Problem          string `json:"problem"`
	Resolution       string `json:"resolution"`
	TimeSpentMinutes int    `json:"time_spent_minutes,omitempty"`
}

// Outcome records how a task ended
type Outcome struct {
	Success    bool `json:"success"`
	Iterations int  `json:"iterations,omitempty"`
	TestsAdded bool `json:"tests_added,omitempty"`
}

// Task is one documented unit of completed engineering work.
// Tasks are append-only: they are created by the documentation intake and the
// only mutation ever applied is flipping Analyzed to true, exactly once.
type Task struct {
	TaskID          string         `json:"task_id" validate:"required"`
	Title           string         `json:"title" validate:"required"`
	Description     string         `json:"description,omitempty"`
	TaskType        TaskType       `json:"task_type" validate:"required,task_type"`
	Category        Category       `json:"category" validate:"required,category"`
	ComplexityScore int            `json:"complexity_score" validate:"min=1,max=10"`
	FilesAffected   []string       `json:"files_affected,omitempty"`
	Implementation  Implementation `json:"implementation"`
	Challenges      []Challenge    `json:"challenges,omitempty"`
	Outcome         Outcome        `json:"outcome"`
	SkillPotential  int            `json:"skill_potential" validate:"min=1,max=10"`
	Analyzed        bool           `json:"analyzed"`
	CreatedAt       time.Time      `json:"created_at"`
}
