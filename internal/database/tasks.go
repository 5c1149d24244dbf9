package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/everestcap/skillforge/internal/models"
	"github.com/everestcap/skillforge/internal/validation"
)

// TaskRepository handles task documentation records
type TaskRepository struct {
	db *DB
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Upsert creates or updates a task keyed by task_id. The analyzed flag is
// monotonic and owned by the analyzer, so a re-submitted task never resets it.
func (r *TaskRepository) Upsert(ctx context.Context, task *models.Task) error {
	if err := validation.ValidateTask(task); err != nil {
		return err
	}

	filesJSON, err := json.Marshal(task.FilesAffected)
	if err != nil {
		return fmt.Errorf("failed to marshal files_affected: %w", err)
	}
	implJSON, err := json.Marshal(task.Implementation)
	if err != nil {
		return fmt.Errorf("failed to marshal implementation: %w", err)
	}
	challengesJSON, err := json.Marshal(task.Challenges)
	if err != nil {
		return fmt.Errorf("failed to marshal challenges: %w", err)
	}
	outcomeJSON, err := json.Marshal(task.Outcome)
	if err != nil {
		return fmt.Errorf("failed to marshal outcome: %w", err)
	}

	createdAt := task.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	query := `
		INSERT INTO skill_tasks (task_id, title, description, task_type, category,
			complexity_score, files_affected, implementation, challenges, outcome,
			skill_potential, analyzed, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, FALSE, $12)
		ON CONFLICT (task_id) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			task_type = EXCLUDED.task_type,
			category = EXCLUDED.category,
			complexity_score = EXCLUDED.complexity_score,
			files_affected = EXCLUDED.files_affected,
			implementation = EXCLUDED.implementation,
			challenges = EXCLUDED.challenges,
			outcome = EXCLUDED.outcome,
			skill_potential = EXCLUDED.skill_potential
		RETURNING analyzed, created_at
	`

	err = r.db.QueryRowContext(ctx, query,
		task.TaskID,
		task.Title,
		task.Description,
		task.TaskType,
		task.Category,
		task.ComplexityScore,
		filesJSON,
		implJSON,
		challengesJSON,
		outcomeJSON,
		task.SkillPotential,
		createdAt,
	).Scan(&task.Analyzed, &task.CreatedAt)

	if err != nil {
		if mapped := mapWriteError(err, "task"); models.IsValidation(mapped) || models.IsUnavailable(mapped) {
			return mapped
		}
		return fmt.Errorf("failed to upsert task: %w", err)
	}

	return nil
}

// GetByID retrieves a task by its external identifier
func (r *TaskRepository) GetByID(ctx context.Context, taskID string) (*models.Task, error) {
	query := selectTaskColumns + ` WHERE task_id = $1`

	task, err := scanTask(r.db.QueryRowContext(ctx, query, taskID))
	if err == sql.ErrNoRows {
		return nil, &models.NotFoundError{Entity: "task", ID: taskID}
	}
	if err != nil {
		if mapped := mapReadError(err); models.IsUnavailable(mapped) {
			return nil, mapped
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	return task, nil
}

// GetByIDs retrieves the tasks for a set of identifiers, skipping unknown ids
func (r *TaskRepository) GetByIDs(ctx context.Context, taskIDs []string) ([]*models.Task, error) {
	if len(taskIDs) == 0 {
		return nil, nil
	}

	query := selectTaskColumns + ` WHERE task_id = ANY($1) ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(taskIDs))
	if err != nil {
		if mapped := mapReadError(err); models.IsUnavailable(mapped) {
			return nil, mapped
		}
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	return collectTasks(rows)
}

// GetUnanalyzed retrieves tasks pending analysis, newest first
func (r *TaskRepository) GetUnanalyzed(ctx context.Context, limit int) ([]*models.Task, error) {
	query := selectTaskColumns + ` WHERE analyzed = FALSE ORDER BY created_at DESC LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		if mapped := mapReadError(err); models.IsUnavailable(mapped) {
			return nil, mapped
		}
		return nil, fmt.Errorf("failed to query unanalyzed tasks: %w", err)
	}
	defer rows.Close()

	return collectTasks(rows)
}

// CountUnanalyzed counts tasks pending analysis
func (r *TaskRepository) CountUnanalyzed(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM skill_tasks WHERE analyzed = FALSE`).Scan(&count)
	if err != nil {
		if mapped := mapReadError(err); models.IsUnavailable(mapped) {
			return 0, mapped
		}
		return 0, fmt.Errorf("failed to count unanalyzed tasks: %w", err)
	}
	return count, nil
}

// MarkAnalyzed flips analyzed to true for the given tasks. The WHERE clause
// skips already-analyzed rows, so the first writer wins and a racing second
// run observes zero affected rows. Returns how many rows actually flipped.
func (r *TaskRepository) MarkAnalyzed(ctx context.Context, taskIDs []string) (int, error) {
	if len(taskIDs) == 0 {
		return 0, nil
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE skill_tasks SET analyzed = TRUE WHERE task_id = ANY($1) AND analyzed = FALSE`,
		pq.Array(taskIDs),
	)
	if err != nil {
		if mapped := mapWriteError(err, "task"); models.IsValidation(mapped) || models.IsUnavailable(mapped) {
			return 0, mapped
		}
		return 0, fmt.Errorf("failed to mark tasks analyzed: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return int(affected), nil
}

const selectTaskColumns = `
	SELECT task_id, title, description, task_type, category, complexity_score,
		files_affected, implementation, challenges, outcome, skill_potential,
		analyzed, created_at
	FROM skill_tasks`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*models.Task, error) {
	task := &models.Task{}
	var description sql.NullString
	var filesJSON, implJSON, challengesJSON, outcomeJSON []byte

	err := row.Scan(
		&task.TaskID,
		&task.Title,
		&description,
		&task.TaskType,
		&task.Category,
		&task.ComplexityScore,
		&filesJSON,
		&implJSON,
		&challengesJSON,
		&outcomeJSON,
		&task.SkillPotential,
		&task.Analyzed,
		&task.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	task.Description = description.String

	if err := json.Unmarshal(filesJSON, &task.FilesAffected); err != nil {
		return nil, fmt.Errorf("failed to unmarshal files_affected: %w", err)
	}
	if err := json.Unmarshal(implJSON, &task.Implementation); err != nil {
		return nil, fmt.Errorf("failed to unmarshal implementation: %w", err)
	}
	if err := json.Unmarshal(challengesJSON, &task.Challenges); err != nil {
		return nil, fmt.Errorf("failed to unmarshal challenges: %w", err)
	}
	if err := json.Unmarshal(outcomeJSON, &task.Outcome); err != nil {
		return nil, fmt.Errorf("failed to unmarshal outcome: %w", err)
	}

	return task, nil
}

func collectTasks(rows *sql.Rows) ([]*models.Task, error) {
	var tasks []*models.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tasks: %w", err)
	}
	return tasks, nil
}
