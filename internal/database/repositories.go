package database

import (
	"context"

	"github.com/everestcap/skillforge/internal/models"
)

// TaskRepositoryInterface defines task store operations.
// Interfaces enable mock implementations for pipeline tests.
type TaskRepositoryInterface interface {
	Upsert(ctx context.Context, task *models.Task) error
	GetByID(ctx context.Context, taskID string) (*models.Task, error)
	GetByIDs(ctx context.Context, taskIDs []string) ([]*models.Task, error)
	GetUnanalyzed(ctx context.Context, limit int) ([]*models.Task, error)
	CountUnanalyzed(ctx context.Context) (int, error)
	MarkAnalyzed(ctx context.Context, taskIDs []string) (int, error)
}

// PatternRepositoryInterface defines pattern store operations
type PatternRepositoryInterface interface {
	Upsert(ctx context.Context, pattern *models.Pattern) error
	GetByID(ctx context.Context, patternID string) (*models.Pattern, error)
	GetPending(ctx context.Context, minViability float64) ([]*models.Pattern, error)
	MarkSynthesized(ctx context.Context, patternID string) (bool, error)
}

// SkillRepositoryInterface defines skill store operations
type SkillRepositoryInterface interface {
	Upsert(ctx context.Context, skill *models.Skill) error
	GetByID(ctx context.Context, skillID string) (*models.Skill, error)
	GetAll(ctx context.Context) ([]*models.Skill, error)
	GetUnderperforming(ctx context.Context, minUses int, successRateFloor float64, timeSavedFloor int) ([]*models.Skill, error)
	UpdateRevision(ctx context.Context, skillID, version, description, content string) error
}

// UsageRepositoryInterface defines usage event store operations
type UsageRepositoryInterface interface {
	Record(ctx context.Context, event *models.UsageEvent) error
	GetBySkillID(ctx context.Context, skillID string) ([]*models.UsageEvent, error)
}

// OverviewRepositoryInterface defines the aggregate read surface
type OverviewRepositoryInterface interface {
	Get(ctx context.Context) (*models.Overview, error)
}

// Ensure concrete types implement the interfaces
var (
	_ TaskRepositoryInterface     = (*TaskRepository)(nil)
	_ PatternRepositoryInterface  = (*PatternRepository)(nil)
	_ SkillRepositoryInterface    = (*SkillRepository)(nil)
	_ UsageRepositoryInterface    = (*UsageRepository)(nil)
	_ OverviewRepositoryInterface = (*OverviewRepository)(nil)
)
