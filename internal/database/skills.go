package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/everestcap/skillforge/internal/models"
	"github.com/everestcap/skillforge/internal/validation"
)

// SkillRepository handles synthesized skill records
type SkillRepository struct {
	db *DB
}

// NewSkillRepository creates a new skill repository
func NewSkillRepository(db *DB) *SkillRepository {
	return &SkillRepository{db: db}
}

// Upsert creates or updates a skill keyed by skill_id. Usage-derived counters
// and the version are never touched by an upsert: counters belong to the usage
// recorder and the version only moves through UpdateRevision.
func (r *SkillRepository) Upsert(ctx context.Context, skill *models.Skill) error {
	if err := validation.ValidateSkill(skill); err != nil {
		return err
	}

	query := `
		INSERT INTO ai_skills (skill_id, name, category, version, description,
			content, pattern_sources, total_uses, success_rate, avg_time_saved,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 0, 0, 0, NOW(), NOW())
		ON CONFLICT (skill_id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			content = EXCLUDED.content,
			pattern_sources = EXCLUDED.pattern_sources,
			updated_at = NOW()
		RETURNING version, total_uses, success_rate, avg_time_saved, created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		skill.SkillID,
		skill.Name,
		skill.Category,
		skill.Version,
		skill.Description,
		skill.Content,
		pq.Array(skill.PatternSources),
	).Scan(&skill.Version, &skill.TotalUses, &skill.SuccessRate, &skill.AvgTimeSaved, &skill.CreatedAt, &skill.UpdatedAt)

	if err != nil {
		if mapped := mapWriteError(err, "skill"); models.IsValidation(mapped) || models.IsUnavailable(mapped) {
			return mapped
		}
		return fmt.Errorf("failed to upsert skill: %w", err)
	}

	return nil
}

// GetByID retrieves a skill by its external identifier
func (r *SkillRepository) GetByID(ctx context.Context, skillID string) (*models.Skill, error) {
	query := selectSkillColumns + ` WHERE skill_id = $1`

	skill, err := scanSkill(r.db.QueryRowContext(ctx, query, skillID))
	if err == sql.ErrNoRows {
		return nil, &models.NotFoundError{Entity: "skill", ID: skillID}
	}
	if err != nil {
		if mapped := mapReadError(err); models.IsUnavailable(mapped) {
			return nil, mapped
		}
		return nil, fmt.Errorf("failed to get skill: %w", err)
	}

	return skill, nil
}

// GetAll retrieves all skills, most recently updated first
func (r *SkillRepository) GetAll(ctx context.Context) ([]*models.Skill, error) {
	query := selectSkillColumns + ` ORDER BY updated_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		if mapped := mapReadError(err); models.IsUnavailable(mapped) {
			return nil, mapped
		}
		return nil, fmt.Errorf("failed to query skills: %w", err)
	}
	defer rows.Close()

	return collectSkills(rows)
}

// GetUnderperforming retrieves skills with enough usage history whose success
// rate or time savings fall below the configured floors. A timeSavedFloor of 0
// disables the time-savings criterion.
func (r *SkillRepository) GetUnderperforming(ctx context.Context, minUses int, successRateFloor float64, timeSavedFloor int) ([]*models.Skill, error) {
	query := selectSkillColumns + `
		WHERE total_uses >= $1
		  AND (success_rate < $2 OR ($3 > 0 AND avg_time_saved < $3))
		ORDER BY success_rate, skill_id`

	rows, err := r.db.QueryContext(ctx, query, minUses, successRateFloor, timeSavedFloor)
	if err != nil {
		if mapped := mapReadError(err); models.IsUnavailable(mapped) {
			return nil, mapped
		}
		return nil, fmt.Errorf("failed to query underperforming skills: %w", err)
	}
	defer rows.Close()

	return collectSkills(rows)
}

// UpdateRevision replaces a skill's content and version after optimization.
// Usage counters are deliberately left alone: they track the skill identity's
// cumulative record, not a single version.
func (r *SkillRepository) UpdateRevision(ctx context.Context, skillID, version, description, content string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE ai_skills
		SET version = $2, description = $3, content = $4, updated_at = NOW()
		WHERE skill_id = $1
	`, skillID, version, description, content)
	if err != nil {
		if mapped := mapWriteError(err, "skill"); models.IsValidation(mapped) || models.IsUnavailable(mapped) {
			return mapped
		}
		return fmt.Errorf("failed to update skill revision: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return &models.NotFoundError{Entity: "skill", ID: skillID}
	}

	return nil
}

const selectSkillColumns = `
	SELECT skill_id, name, category, version, description, content,
		pattern_sources, total_uses, success_rate, avg_time_saved,
		created_at, updated_at
	FROM ai_skills`

func scanSkill(row rowScanner) (*models.Skill, error) {
	skill := &models.Skill{}
	var description, content sql.NullString
	var sources pq.StringArray

	err := row.Scan(
		&skill.SkillID,
		&skill.Name,
		&skill.Category,
		&skill.Version,
		&description,
		&content,
		&sources,
		&skill.TotalUses,
		&skill.SuccessRate,
		&skill.AvgTimeSaved,
		&skill.CreatedAt,
		&skill.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	skill.Description = description.String
	skill.Content = content.String
	skill.PatternSources = []string(sources)
	return skill, nil
}

func collectSkills(rows *sql.Rows) ([]*models.Skill, error) {
	var skills []*models.Skill
	for rows.Next() {
		skill, err := scanSkill(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan skill: %w", err)
		}
		skills = append(skills, skill)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating skills: %w", err)
	}
	return skills, nil
}
