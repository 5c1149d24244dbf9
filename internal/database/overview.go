package database

import (
	"context"
	"fmt"

	"github.com/everestcap/skillforge/internal/models"
)

// OverviewRepository computes the system-wide aggregate snapshot. The
// overview is a derived view over the four collections; nothing here is
// stored, so it can never drift from the source of truth.
type OverviewRepository struct {
	db *DB
}

// NewOverviewRepository creates a new overview repository
func NewOverviewRepository(db *DB) *OverviewRepository {
	return &OverviewRepository{db: db}
}

// Get computes the aggregate snapshot in a single query
func (r *OverviewRepository) Get(ctx context.Context) (*models.Overview, error) {
	overview := &models.Overview{}

	err := r.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM skill_tasks),
			(SELECT COUNT(*) FROM skill_tasks WHERE analyzed = FALSE),
			(SELECT COUNT(*) FROM skill_patterns),
			(SELECT COUNT(*) FROM ai_skills),
			(SELECT COALESCE(SUM(total_uses), 0) FROM ai_skills),
			(SELECT COALESCE(AVG(success_rate), 0) FROM ai_skills WHERE total_uses > 0),
			(SELECT COALESCE(SUM(avg_time_saved * total_uses), 0) / 60.0 FROM ai_skills)
	`).Scan(
		&overview.TotalTasks,
		&overview.PendingAnalysis,
		&overview.TotalPatterns,
		&overview.TotalSkills,
		&overview.TotalUses,
		&overview.AvgSuccessRate,
		&overview.TotalTimeSavedHours,
	)
	if err != nil {
		if mapped := mapReadError(err); models.IsUnavailable(mapped) {
			return nil, mapped
		}
		return nil, fmt.Errorf("failed to compute overview: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT category, COUNT(*) FROM skill_tasks GROUP BY category
	`)
	if err != nil {
		if mapped := mapReadError(err); models.IsUnavailable(mapped) {
			return nil, mapped
		}
		return nil, fmt.Errorf("failed to query category breakdown: %w", err)
	}
	defer rows.Close()

	overview.TasksByCategory = make(map[models.Category]int)
	for rows.Next() {
		var category models.Category
		var count int
		if err := rows.Scan(&category, &count); err != nil {
			return nil, fmt.Errorf("failed to scan category breakdown: %w", err)
		}
		overview.TasksByCategory[category] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category breakdown: %w", err)
	}

	return overview, nil
}
