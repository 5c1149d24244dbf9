package pipeline

import (
	"context"
	"errors"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/everestcap/skillforge/internal/database"
	"github.com/everestcap/skillforge/internal/logger"
	"github.com/everestcap/skillforge/internal/models"
	"github.com/everestcap/skillforge/internal/services/ai"
	"github.com/everestcap/skillforge/internal/validation"
)

// Generator turns qualifying patterns into versioned skills via the synthesis
// provider. Patterns in the same category whose task references overlap beyond
// the threshold are merged into a single skill instead of near-duplicates.
type Generator struct {
	patterns         database.PatternRepositoryInterface
	tasks            database.TaskRepositoryInterface
	skills           database.SkillRepositoryInterface
	provider         ai.SynthesisProvider
	logger           *zap.Logger
	minViability     float64
	overlapThreshold float64
}

// NewGenerator creates a generator over the given repositories and provider
func NewGenerator(
	patterns database.PatternRepositoryInterface,
	tasks database.TaskRepositoryInterface,
	skills database.SkillRepositoryInterface,
	provider ai.SynthesisProvider,
	logger *zap.Logger,
	minViability, overlapThreshold float64,
) *Generator {
	return &Generator{
		patterns:         patterns,
		tasks:            tasks,
		skills:           skills,
		provider:         provider,
		logger:           logger,
		minViability:     minViability,
		overlapThreshold: overlapThreshold,
	}
}

// Run synthesizes one skill per merged pattern unit. A pattern is marked
// synthesized only after its skill row persisted; provider failures leave the
// unit's patterns pending for the next run and are reported per unit.
func (g *Generator) Run(ctx context.Context) (*GenerateResult, error) {
	pending, err := g.patterns.GetPending(ctx, g.minViability)
	if err != nil {
		return nil, err
	}

	result := &GenerateResult{PatternsConsidered: len(pending)}
	if len(pending) == 0 {
		return result, nil
	}

	units := mergeOverlapping(pending, g.overlapThreshold)
	for _, unit := range units {
		result.PatternsMerged += len(unit) - 1

		skillID, err := g.synthesize(ctx, unit)
		if err != nil {
			if isStoreUnavailable(err) {
				return nil, err
			}
			// provider errors can echo model output, so sanitize before logging
			g.logger.Warn("skill_synthesis_failed",
				zap.String("pattern_id", unit[0].PatternID),
				zap.String("error", logger.SanitizeError(err)),
			)
			result.Errors = append(result.Errors, StageError{Item: unit[0].PatternID, Message: err.Error()})
			continue
		}

		result.SkillsCreated = append(result.SkillsCreated, skillID)
	}

	g.logger.Info("generation_run_complete",
		zap.Int("patterns_considered", result.PatternsConsidered),
		zap.Int("patterns_merged", result.PatternsMerged),
		zap.Int("skills_created", len(result.SkillsCreated)),
		zap.Int("errors", len(result.Errors)),
	)

	return result, nil
}

// synthesize produces and persists one skill from a merged pattern unit,
// then flips every source pattern to synthesized
func (g *Generator) synthesize(ctx context.Context, unit []*models.Pattern) (string, error) {
	primary := unit[0]

	refs := make(map[string]bool)
	sources := make([]string, 0, len(unit))
	for _, pattern := range unit {
		sources = append(sources, pattern.PatternID)
		for _, id := range pattern.TaskReferences {
			refs[id] = true
		}
	}
	taskIDs := make([]string, 0, len(refs))
	for id := range refs {
		taskIDs = append(taskIDs, id)
	}
	sort.Strings(taskIDs)

	tasks, err := g.tasks.GetByIDs(ctx, taskIDs)
	if err != nil {
		return "", err
	}

	artifact, err := g.provider.GenerateSkill(ctx, &ai.SkillRequest{
		Category: primary.Category,
		Patterns: unit,
		Tasks:    tasks,
	})
	if err != nil {
		return "", err
	}

	skill := &models.Skill{
		SkillID:        skillIDForPattern(primary.PatternID),
		Name:           artifact.Name,
		Category:       primary.Category,
		Version:        models.InitialSkillVersion,
		Description:    artifact.Description,
		Content:        artifact.Content,
		PatternSources: sources,
	}
	if err := validation.ValidateSkill(skill); err != nil {
		return "", err
	}
	if err := g.skills.Upsert(ctx, skill); err != nil {
		return "", err
	}

	for _, pattern := range unit {
		if _, err := g.patterns.MarkSynthesized(ctx, pattern.PatternID); err != nil {
			return "", err
		}
	}

	return skill.SkillID, nil
}

// mergeOverlapping partitions pending patterns into synthesis units: patterns
// share a unit when they are in the same category and the Jaccard overlap of
// their task references meets the threshold (transitively). Each unit is
// sorted by viability descending, so unit[0] is the primary pattern.
func mergeOverlapping(pending []*models.Pattern, threshold float64) [][]*models.Pattern {
	parent := make([]int, len(pending))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		if parent[i] != i {
			parent[i] = find(parent[i])
		}
		return parent[i]
	}

	for i := 0; i < len(pending); i++ {
		for j := i + 1; j < len(pending); j++ {
			if pending[i].Category != pending[j].Category {
				continue
			}
			if jaccardOverlap(pending[i].TaskReferences, pending[j].TaskReferences) >= threshold {
				parent[find(i)] = find(j)
			}
		}
	}

	byRoot := make(map[int][]*models.Pattern)
	for i, pattern := range pending {
		root := find(i)
		byRoot[root] = append(byRoot[root], pattern)
	}

	units := make([][]*models.Pattern, 0, len(byRoot))
	for _, unit := range byRoot {
		sort.Slice(unit, func(i, j int) bool {
			if unit[i].SkillViability != unit[j].SkillViability {
				return unit[i].SkillViability > unit[j].SkillViability
			}
			return unit[i].PatternID < unit[j].PatternID
		})
		units = append(units, unit)
	}
	sort.Slice(units, func(i, j int) bool { return units[i][0].PatternID < units[j][0].PatternID })
	return units
}

// skillIDForPattern derives the deterministic skill id from the primary
// pattern id, keeping re-runs idempotent
func skillIDForPattern(patternID string) string {
	return "skill_" + strings.TrimPrefix(patternID, "pattern_")
}

// isStoreUnavailable distinguishes store outages, which abort the run, from
// provider outages, which only skip the current unit
func isStoreUnavailable(err error) bool {
	var unavailable *models.UnavailableError
	if !errors.As(err, &unavailable) {
		return false
	}
	return strings.HasPrefix(unavailable.Op, "store")
}
