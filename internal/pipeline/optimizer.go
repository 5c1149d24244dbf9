package pipeline

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/everestcap/skillforge/internal/database"
	"github.com/everestcap/skillforge/internal/logger"
	"github.com/everestcap/skillforge/internal/models"
	"github.com/everestcap/skillforge/internal/services/ai"
)

// Optimizer revises underperforming skills. A candidate is a skill with enough
// uses to judge and a success rate or time saved below its floor. Revisions
// bump the minor version and replace description and content only; usage
// counters are derived from events and are never touched here.
type Optimizer struct {
	skills           database.SkillRepositoryInterface
	usage            database.UsageRepositoryInterface
	provider         ai.SynthesisProvider
	logger           *zap.Logger
	minUses          int
	successRateFloor float64
	timeSavedFloor   int
}

// NewOptimizer creates an optimizer over the given repositories and provider
func NewOptimizer(
	skills database.SkillRepositoryInterface,
	usage database.UsageRepositoryInterface,
	provider ai.SynthesisProvider,
	logger *zap.Logger,
	minUses int,
	successRateFloor float64,
	timeSavedFloor int,
) *Optimizer {
	return &Optimizer{
		skills:           skills,
		usage:            usage,
		provider:         provider,
		logger:           logger,
		minUses:          minUses,
		successRateFloor: successRateFloor,
		timeSavedFloor:   timeSavedFloor,
	}
}

// Run revises every candidate skill. Provider failures skip the skill and are
// reported; the skill stays a candidate for the next run.
func (o *Optimizer) Run(ctx context.Context) (*OptimizeResult, error) {
	candidates, err := o.skills.GetUnderperforming(ctx, o.minUses, o.successRateFloor, o.timeSavedFloor)
	if err != nil {
		return nil, err
	}

	result := &OptimizeResult{CandidatesFound: len(candidates)}

	for _, skill := range candidates {
		version, err := o.revise(ctx, skill)
		if err != nil {
			if isStoreUnavailable(err) {
				return nil, err
			}
			o.logger.Warn("skill_revision_failed",
				zap.String("skill_id", skill.SkillID),
				zap.String("error", logger.SanitizeError(err)),
			)
			result.Errors = append(result.Errors, StageError{Item: skill.SkillID, Message: err.Error()})
			continue
		}
		result.SkillsRevised = append(result.SkillsRevised, RevisedSkill{SkillID: skill.SkillID, Version: version})
	}

	o.logger.Info("optimization_run_complete",
		zap.Int("candidates_found", result.CandidatesFound),
		zap.Int("skills_revised", len(result.SkillsRevised)),
		zap.Int("errors", len(result.Errors)),
	)

	return result, nil
}

// revise diagnoses one skill from its usage history, asks the provider for an
// improved body, and persists it under the next minor version
func (o *Optimizer) revise(ctx context.Context, skill *models.Skill) (string, error) {
	events, err := o.usage.GetBySkillID(ctx, skill.SkillID)
	if err != nil {
		return "", err
	}

	diagnosis, feedback, avgIterations := diagnose(skill, events, o.successRateFloor, o.timeSavedFloor)

	artifact, err := o.provider.ReviseSkill(ctx, &ai.RevisionRequest{
		Skill:           skill,
		Diagnosis:       diagnosis,
		FailureFeedback: feedback,
		AvgIterations:   avgIterations,
	})
	if err != nil {
		return "", err
	}

	version, err := models.NextMinorVersion(skill.Version)
	if err != nil {
		return "", err
	}

	if err := o.skills.UpdateRevision(ctx, skill.SkillID, version, artifact.Description, artifact.Content); err != nil {
		return "", err
	}
	return version, nil
}

// diagnose summarizes what underperforms and collects feedback from failed
// uses for the revision prompt
func diagnose(skill *models.Skill, events []*models.UsageEvent, successRateFloor float64, timeSavedFloor int) (string, []string, float64) {
	var findings []string
	if skill.SuccessRate < successRateFloor {
		findings = append(findings, fmt.Sprintf("success rate %.1f%% is below the %.1f%% floor",
			skill.SuccessRate*100, successRateFloor*100))
	}
	if timeSavedFloor > 0 && skill.AvgTimeSaved < timeSavedFloor {
		findings = append(findings, fmt.Sprintf("average time saved %d minutes is below the %d minute floor",
			skill.AvgTimeSaved, timeSavedFloor))
	}
	if len(findings) == 0 {
		findings = append(findings, fmt.Sprintf("flagged for review after %d uses", skill.TotalUses))
	}

	var feedback []string
	iterations := 0
	for _, event := range events {
		iterations += event.Iterations
		if !event.Success && event.Feedback != nil && *event.Feedback != "" {
			feedback = append(feedback, *event.Feedback)
		}
	}

	avgIterations := 0.0
	if len(events) > 0 {
		avgIterations = float64(iterations) / float64(len(events))
	}

	return strings.Join(findings, "; "), feedback, avgIterations
}
