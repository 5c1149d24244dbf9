package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/everestcap/skillforge/internal/models"
	"github.com/everestcap/skillforge/internal/validation"
)

// UsageRepository handles skill usage events and the aggregate counters
// derived from them
type UsageRepository struct {
	db *DB
}

// NewUsageRepository creates a new usage repository
func NewUsageRepository(db *DB) *UsageRepository {
	return &UsageRepository{db: db}
}

// Record inserts a usage event and recomputes the referenced skill's
// aggregates from the full event history, in one transaction. The aggregates
// are a fold over skill_usage rows, never an in-place increment, so duplicate
// or concurrent recorders converge instead of double-counting.
func (r *UsageRepository) Record(ctx context.Context, event *models.UsageEvent) error {
	if err := validation.ValidateUsageEvent(event); err != nil {
		return err
	}

	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.UsedAt.IsZero() {
		event.UsedAt = time.Now()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return &models.UnavailableError{Op: "store write", Err: err}
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Lock the skill row; also verifies the reference exists
	var skillID string
	err = tx.QueryRowContext(ctx,
		`SELECT skill_id FROM ai_skills WHERE skill_id = $1 FOR UPDATE`,
		event.SkillID,
	).Scan(&skillID)
	if err == sql.ErrNoRows {
		return &models.NotFoundError{Entity: "skill", ID: event.SkillID}
	}
	if err != nil {
		if mapped := mapReadError(err); models.IsUnavailable(mapped) {
			return mapped
		}
		return fmt.Errorf("failed to lock skill: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO skill_usage (id, skill_id, success, time_saved_minutes,
			iterations, rating, feedback, used_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		event.ID,
		event.SkillID,
		event.Success,
		event.TimeSavedMinutes,
		event.Iterations,
		event.Rating,
		event.Feedback,
		event.UsedAt,
	)
	if err != nil {
		if mapped := mapWriteError(err, "usage"); models.IsValidation(mapped) || models.IsUnavailable(mapped) {
			return mapped
		}
		return fmt.Errorf("failed to insert usage event: %w", err)
	}

	// Integer division for minutes matches the recorded precision of the column
	_, err = tx.ExecContext(ctx, `
		UPDATE ai_skills SET
			total_uses = stats.cnt,
			success_rate = stats.rate,
			avg_time_saved = stats.avg_saved,
			updated_at = NOW()
		FROM (
			SELECT COUNT(*) AS cnt,
				ROUND(SUM(CASE WHEN success THEN 1 ELSE 0 END)::numeric / COUNT(*), 3) AS rate,
				(SUM(time_saved_minutes) / COUNT(*))::int AS avg_saved
			FROM skill_usage
			WHERE skill_id = $1
		) AS stats
		WHERE ai_skills.skill_id = $1
	`, event.SkillID)
	if err != nil {
		if mapped := mapWriteError(err, "skill"); models.IsValidation(mapped) || models.IsUnavailable(mapped) {
			return mapped
		}
		return fmt.Errorf("failed to recompute skill aggregates: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return &models.UnavailableError{Op: "store write", Err: err}
	}

	return nil
}

// GetBySkillID retrieves all usage events for a skill, oldest first
func (r *UsageRepository) GetBySkillID(ctx context.Context, skillID string) ([]*models.UsageEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, skill_id, success, time_saved_minutes, iterations, rating, feedback, used_at
		FROM skill_usage
		WHERE skill_id = $1
		ORDER BY used_at
	`, skillID)
	if err != nil {
		if mapped := mapReadError(err); models.IsUnavailable(mapped) {
			return nil, mapped
		}
		return nil, fmt.Errorf("failed to query usage events: %w", err)
	}
	defer rows.Close()

	var events []*models.UsageEvent
	for rows.Next() {
		event := &models.UsageEvent{}
		var rating sql.NullInt64
		var feedback sql.NullString

		err := rows.Scan(
			&event.ID,
			&event.SkillID,
			&event.Success,
			&event.TimeSavedMinutes,
			&event.Iterations,
			&rating,
			&feedback,
			&event.UsedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan usage event: %w", err)
		}

		if rating.Valid {
			v := int(rating.Int64)
			event.Rating = &v
		}
		if feedback.Valid {
			event.Feedback = &feedback.String
		}

		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating usage events: %w", err)
	}

	return events, nil
}
