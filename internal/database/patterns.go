package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/everestcap/skillforge/internal/models"
	"github.com/everestcap/skillforge/internal/validation"
)

// PatternRepository handles detected pattern records
type PatternRepository struct {
	db *DB
}

// NewPatternRepository creates a new pattern repository
func NewPatternRepository(db *DB) *PatternRepository {
	return &PatternRepository{db: db}
}

// Upsert creates or updates a pattern keyed by pattern_id. The synthesized
// flag is monotonic and owned by the generator, so a recomputed pattern never
// resets it.
func (r *PatternRepository) Upsert(ctx context.Context, pattern *models.Pattern) error {
	if err := validation.ValidatePattern(pattern); err != nil {
		return err
	}

	query := `
		INSERT INTO skill_patterns (pattern_id, name, category, frequency,
			consistency_score, skill_viability, task_references, synthesized, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE, NOW())
		ON CONFLICT (pattern_id) DO UPDATE SET
			name = EXCLUDED.name,
			category = EXCLUDED.category,
			frequency = EXCLUDED.frequency,
			consistency_score = EXCLUDED.consistency_score,
			skill_viability = EXCLUDED.skill_viability,
			task_references = EXCLUDED.task_references
		RETURNING synthesized, created_at
	`

	err := r.db.QueryRowContext(ctx, query,
		pattern.PatternID,
		pattern.Name,
		pattern.Category,
		pattern.Frequency,
		pattern.ConsistencyScore,
		pattern.SkillViability,
		pq.Array(pattern.TaskReferences),
	).Scan(&pattern.Synthesized, &pattern.CreatedAt)

	if err != nil {
		if mapped := mapWriteError(err, "pattern"); models.IsValidation(mapped) || models.IsUnavailable(mapped) {
			return mapped
		}
		return fmt.Errorf("failed to upsert pattern: %w", err)
	}

	return nil
}

// GetByID retrieves a pattern by its external identifier
func (r *PatternRepository) GetByID(ctx context.Context, patternID string) (*models.Pattern, error) {
	query := selectPatternColumns + ` WHERE pattern_id = $1`

	pattern, err := scanPattern(r.db.QueryRowContext(ctx, query, patternID))
	if err == sql.ErrNoRows {
		return nil, &models.NotFoundError{Entity: "pattern", ID: patternID}
	}
	if err != nil {
		if mapped := mapReadError(err); models.IsUnavailable(mapped) {
			return nil, mapped
		}
		return nil, fmt.Errorf("failed to get pattern: %w", err)
	}

	return pattern, nil
}

// GetPending retrieves unsynthesized patterns at or above the viability floor,
// most viable first
func (r *PatternRepository) GetPending(ctx context.Context, minViability float64) ([]*models.Pattern, error) {
	query := selectPatternColumns + `
		WHERE synthesized = FALSE AND skill_viability >= $1
		ORDER BY skill_viability DESC, pattern_id`

	rows, err := r.db.QueryContext(ctx, query, minViability)
	if err != nil {
		if mapped := mapReadError(err); models.IsUnavailable(mapped) {
			return nil, mapped
		}
		return nil, fmt.Errorf("failed to query pending patterns: %w", err)
	}
	defer rows.Close()

	var patterns []*models.Pattern
	for rows.Next() {
		pattern, err := scanPattern(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pattern: %w", err)
		}
		patterns = append(patterns, pattern)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating patterns: %w", err)
	}

	return patterns, nil
}

// MarkSynthesized flips synthesized to true for a pattern. Skips
// already-synthesized rows so a duplicate run is a no-op; returns whether
// this call performed the flip.
func (r *PatternRepository) MarkSynthesized(ctx context.Context, patternID string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE skill_patterns SET synthesized = TRUE WHERE pattern_id = $1 AND synthesized = FALSE`,
		patternID,
	)
	if err != nil {
		if mapped := mapWriteError(err, "pattern"); models.IsValidation(mapped) || models.IsUnavailable(mapped) {
			return false, mapped
		}
		return false, fmt.Errorf("failed to mark pattern synthesized: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return affected > 0, nil
}

const selectPatternColumns = `
	SELECT pattern_id, name, category, frequency, consistency_score,
		skill_viability, task_references, synthesized, created_at
	FROM skill_patterns`

func scanPattern(row rowScanner) (*models.Pattern, error) {
	pattern := &models.Pattern{}
	var refs pq.StringArray

	err := row.Scan(
		&pattern.PatternID,
		&pattern.Name,
		&pattern.Category,
		&pattern.Frequency,
		&pattern.ConsistencyScore,
		&pattern.SkillViability,
		&refs,
		&pattern.Synthesized,
		&pattern.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	pattern.TaskReferences = []string(refs)
	return pattern, nil
}
