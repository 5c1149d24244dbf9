package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/everestcap/skillforge/internal/database"
	"github.com/everestcap/skillforge/internal/models"
)

// Orchestrator is the entry point for the pipeline's operator-facing
// operations. Each operation is independently invokable and safe to re-run.
type Orchestrator struct {
	tasks     database.TaskRepositoryInterface
	overview  database.OverviewRepositoryInterface
	analyzer  *Analyzer
	generator *Generator
	optimizer *Optimizer
	threshold int
	logger    *zap.Logger
}

// NewOrchestrator wires the pipeline stages together
func NewOrchestrator(
	tasks database.TaskRepositoryInterface,
	overview database.OverviewRepositoryInterface,
	analyzer *Analyzer,
	generator *Generator,
	optimizer *Optimizer,
	threshold int,
	logger *zap.Logger,
) *Orchestrator {
	return &Orchestrator{
		tasks:     tasks,
		overview:  overview,
		analyzer:  analyzer,
		generator: generator,
		optimizer: optimizer,
		threshold: threshold,
		logger:    logger,
	}
}

// Status returns the system-wide aggregate snapshot
func (o *Orchestrator) Status(ctx context.Context) (*models.Overview, error) {
	return o.overview.Get(ctx)
}

// Analyze runs pattern analysis if enough tasks are pending. Below the
// threshold nothing runs and the result says so; this keeps early sparse data
// from producing noise patterns.
func (o *Orchestrator) Analyze(ctx context.Context) (*AnalyzeResult, error) {
	pending, err := o.tasks.CountUnanalyzed(ctx)
	if err != nil {
		return nil, err
	}

	if pending < o.threshold {
		o.logger.Info("analysis_skipped",
			zap.Int("pending_tasks", pending),
			zap.Int("threshold", o.threshold),
		)
		return &AnalyzeResult{
			PendingTasks: pending,
			Threshold:    o.threshold,
			Message:      fmt.Sprintf("threshold not met: %d pending tasks, need %d", pending, o.threshold),
		}, nil
	}

	result, err := o.analyzer.Run(ctx)
	if err != nil {
		return nil, err
	}
	result.ThresholdMet = true
	result.PendingTasks = pending
	result.Threshold = o.threshold
	return result, nil
}

// Generate synthesizes skills from qualifying patterns
func (o *Orchestrator) Generate(ctx context.Context) (*GenerateResult, error) {
	return o.generator.Run(ctx)
}

// Optimize revises underperforming skills
func (o *Orchestrator) Optimize(ctx context.Context) (*OptimizeResult, error) {
	return o.optimizer.Run(ctx)
}
