package pipeline

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/everestcap/skillforge/internal/database"
	"github.com/everestcap/skillforge/internal/models"
)

// UngroupedViability pins leftover-bucket patterns to the floor of the scale
// so they can never qualify for synthesis
const UngroupedViability = minScore

// Analyzer groups unanalyzed tasks into recurring patterns and persists them.
// Runs are idempotent: pattern ids are derived deterministically from the
// grouping key, so re-running after a partial failure converges on the same
// records.
type Analyzer struct {
	tasks      database.TaskRepositoryInterface
	patterns   database.PatternRepositoryInterface
	logger     *zap.Logger
	batchLimit int
}

// NewAnalyzer creates an analyzer over the given repositories
func NewAnalyzer(tasks database.TaskRepositoryInterface, patterns database.PatternRepositoryInterface, logger *zap.Logger, batchLimit int) *Analyzer {
	return &Analyzer{
		tasks:      tasks,
		patterns:   patterns,
		logger:     logger,
		batchLimit: batchLimit,
	}
}

// Run fetches a batch of unanalyzed tasks, buckets them by category and
// pattern tag, and upserts a pattern per bucket. Tasks are marked analyzed
// only after every bucket they belong to persisted; a task whose buckets all
// failed stays unanalyzed and is retried next run.
func (a *Analyzer) Run(ctx context.Context) (*AnalyzeResult, error) {
	batch, err := a.tasks.GetUnanalyzed(ctx, a.batchLimit)
	if err != nil {
		return nil, err
	}

	result := &AnalyzeResult{}
	if len(batch) == 0 {
		return result, nil
	}

	groups, err := a.groupTasks(ctx, batch)
	if err != nil {
		return nil, err
	}
	persisted := make(map[string]bool)

	for _, group := range groups {
		pattern, created, err := a.persistGroup(ctx, group)
		if err != nil {
			if models.IsUnavailable(err) {
				return nil, err
			}
			a.logger.Warn("pattern_persist_failed",
				zap.String("pattern_id", group.id),
				zap.Error(err),
			)
			result.Errors = append(result.Errors, StageError{Item: group.id, Message: err.Error()})
			continue
		}

		if created {
			result.PatternsCreated++
		} else {
			result.PatternsUpdated++
		}
		result.PatternIDs = append(result.PatternIDs, pattern.PatternID)
		for _, task := range group.tasks {
			persisted[task.TaskID] = true
		}
	}

	if len(persisted) > 0 {
		ids := make([]string, 0, len(persisted))
		for id := range persisted {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		analyzed, err := a.tasks.MarkAnalyzed(ctx, ids)
		if err != nil {
			return nil, err
		}
		result.TasksAnalyzed = analyzed
	}

	a.logger.Info("analysis_run_complete",
		zap.Int("batch_size", len(batch)),
		zap.Int("tasks_analyzed", result.TasksAnalyzed),
		zap.Int("patterns_created", result.PatternsCreated),
		zap.Int("patterns_updated", result.PatternsUpdated),
		zap.Int("errors", len(result.Errors)),
	)

	return result, nil
}

// persistGroup upserts the pattern for one bucket, merging task references
// with any existing pattern under the same id. Scores are recomputed over the
// merged task set so repeated runs stay consistent with the references.
func (a *Analyzer) persistGroup(ctx context.Context, group taskGroup) (*models.Pattern, bool, error) {
	refs := make(map[string]bool, len(group.tasks))
	scored := make([]*models.Task, 0, len(group.tasks))
	for _, task := range group.tasks {
		refs[task.TaskID] = true
		scored = append(scored, task)
	}

	created := false
	existing, err := a.patterns.GetByID(ctx, group.id)
	switch {
	case err == nil:
		var prior []string
		for _, id := range existing.TaskReferences {
			if !refs[id] {
				refs[id] = true
				prior = append(prior, id)
			}
		}
		if len(prior) > 0 {
			priorTasks, err := a.tasks.GetByIDs(ctx, prior)
			if err != nil {
				return nil, false, err
			}
			scored = append(scored, priorTasks...)
		}
	case models.IsNotFound(err):
		created = true
	default:
		return nil, false, err
	}

	references := make([]string, 0, len(refs))
	for id := range refs {
		references = append(references, id)
	}
	sort.Strings(references)

	consistency := ConsistencyScore(scored)
	viability := UngroupedViability
	if !group.ungrouped {
		viability = ViabilityScore(consistency, len(references), AverageSkillPotential(scored))
	}

	pattern := &models.Pattern{
		PatternID:        group.id,
		Name:             group.name,
		Category:         group.category,
		Frequency:        len(references),
		ConsistencyScore: consistency,
		SkillViability:   viability,
		TaskReferences:   references,
	}

	if err := a.patterns.Upsert(ctx, pattern); err != nil {
		return nil, false, err
	}
	return pattern, created, nil
}

// taskGroup is one analysis bucket: tasks in the same category sharing a
// pattern tag, or a category's leftovers when ungrouped is set
type taskGroup struct {
	id        string
	name      string
	category  models.Category
	ungrouped bool
	tasks     []*models.Task
}

// groupTasks buckets a batch by (category, normalized pattern tag). Buckets
// with at least two tasks become pattern groups, as does a lone task whose
// bucket matches a pattern persisted by an earlier run, so existing patterns
// keep absorbing recurrences that arrive one per batch. Tasks covered by no
// such bucket fall into a per-category ungrouped group so they still get
// analyzed.
func (a *Analyzer) groupTasks(ctx context.Context, batch []*models.Task) ([]taskGroup, error) {
	type key struct {
		category models.Category
		tag      string
	}

	buckets := make(map[key][]*models.Task)
	for _, task := range batch {
		for _, tag := range normalizedTags(task) {
			k := key{category: task.Category, tag: tag}
			buckets[k] = append(buckets[k], task)
		}
	}

	covered := make(map[string]bool)
	var groups []taskGroup
	for k, tasks := range buckets {
		id := patternID(k.category, k.tag)
		if len(tasks) < 2 {
			exists, err := a.patternExists(ctx, id)
			if err != nil {
				return nil, err
			}
			if !exists {
				continue
			}
		}
		groups = append(groups, taskGroup{
			id:       id,
			name:     humanizeTag(k.tag),
			category: k.category,
			tasks:    tasks,
		})
		for _, task := range tasks {
			covered[task.TaskID] = true
		}
	}

	leftovers := make(map[models.Category][]*models.Task)
	for _, task := range batch {
		if !covered[task.TaskID] {
			leftovers[task.Category] = append(leftovers[task.Category], task)
		}
	}
	for category, tasks := range leftovers {
		groups = append(groups, taskGroup{
			id:        patternID(category, "ungrouped"),
			name:      "Ungrouped " + humanizeTag(string(category)) + " Tasks",
			category:  category,
			ungrouped: true,
			tasks:     tasks,
		})
	}

	sort.Slice(groups, func(i, j int) bool { return groups[i].id < groups[j].id })
	return groups, nil
}

// patternExists reports whether a pattern id is already persisted. Lookup
// failures other than not-found propagate and abort the run.
func (a *Analyzer) patternExists(ctx context.Context, id string) (bool, error) {
	_, err := a.patterns.GetByID(ctx, id)
	switch {
	case err == nil:
		return true, nil
	case models.IsNotFound(err):
		return false, nil
	default:
		return false, err
	}
}

func patternID(category models.Category, tag string) string {
	return "pattern_" + slugify(string(category)) + "_" + tag
}
