package pipeline

import (
	"context"
	"sort"
	"sync"

	"github.com/everestcap/skillforge/internal/models"
	"github.com/everestcap/skillforge/internal/services/ai"
)

// In-memory fakes for the repository interfaces. Error fields inject failures
// per method; zero values behave like an empty store.

type fakeTaskRepo struct {
	mu            sync.Mutex
	tasks         map[string]*models.Task
	order         []string
	upsertErr     error
	unanalyzedErr error
	markErr       error
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: make(map[string]*models.Task)}
}

func (r *fakeTaskRepo) Upsert(_ context.Context, task *models.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.upsertErr != nil {
		return r.upsertErr
	}
	if existing, ok := r.tasks[task.TaskID]; ok {
		task.Analyzed = existing.Analyzed
	} else {
		r.order = append(r.order, task.TaskID)
	}
	copied := *task
	r.tasks[task.TaskID] = &copied
	return nil
}

func (r *fakeTaskRepo) GetByID(_ context.Context, taskID string) (*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	task, ok := r.tasks[taskID]
	if !ok {
		return nil, &models.NotFoundError{Entity: "task", ID: taskID}
	}
	copied := *task
	return &copied, nil
}

func (r *fakeTaskRepo) GetByIDs(_ context.Context, taskIDs []string) ([]*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Task
	for _, id := range taskIDs {
		if task, ok := r.tasks[id]; ok {
			copied := *task
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeTaskRepo) GetUnanalyzed(_ context.Context, limit int) ([]*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.unanalyzedErr != nil {
		return nil, r.unanalyzedErr
	}
	var out []*models.Task
	for _, id := range r.order {
		task := r.tasks[id]
		if task.Analyzed {
			continue
		}
		copied := *task
		out = append(out, &copied)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *fakeTaskRepo) CountUnanalyzed(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, task := range r.tasks {
		if !task.Analyzed {
			count++
		}
	}
	return count, nil
}

func (r *fakeTaskRepo) MarkAnalyzed(_ context.Context, taskIDs []string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.markErr != nil {
		return 0, r.markErr
	}
	flipped := 0
	for _, id := range taskIDs {
		if task, ok := r.tasks[id]; ok && !task.Analyzed {
			task.Analyzed = true
			flipped++
		}
	}
	return flipped, nil
}

type fakePatternRepo struct {
	mu        sync.Mutex
	patterns  map[string]*models.Pattern
	upsertErr error
	markErr   error
}

func newFakePatternRepo() *fakePatternRepo {
	return &fakePatternRepo{patterns: make(map[string]*models.Pattern)}
}

func (r *fakePatternRepo) Upsert(_ context.Context, pattern *models.Pattern) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.upsertErr != nil {
		return r.upsertErr
	}
	if existing, ok := r.patterns[pattern.PatternID]; ok {
		pattern.Synthesized = existing.Synthesized
	}
	copied := *pattern
	r.patterns[pattern.PatternID] = &copied
	return nil
}

func (r *fakePatternRepo) GetByID(_ context.Context, patternID string) (*models.Pattern, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	pattern, ok := r.patterns[patternID]
	if !ok {
		return nil, &models.NotFoundError{Entity: "pattern", ID: patternID}
	}
	copied := *pattern
	return &copied, nil
}

func (r *fakePatternRepo) GetPending(_ context.Context, minViability float64) ([]*models.Pattern, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Pattern
	for _, pattern := range r.patterns {
		if pattern.Synthesized || pattern.SkillViability < minViability {
			continue
		}
		copied := *pattern
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SkillViability != out[j].SkillViability {
			return out[i].SkillViability > out[j].SkillViability
		}
		return out[i].PatternID < out[j].PatternID
	})
	return out, nil
}

func (r *fakePatternRepo) MarkSynthesized(_ context.Context, patternID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.markErr != nil {
		return false, r.markErr
	}
	pattern, ok := r.patterns[patternID]
	if !ok || pattern.Synthesized {
		return false, nil
	}
	pattern.Synthesized = true
	return true, nil
}

type fakeSkillRepo struct {
	mu          sync.Mutex
	skills      map[string]*models.Skill
	upsertErr   error
	reviseErr   error
	underperfer error
}

func newFakeSkillRepo() *fakeSkillRepo {
	return &fakeSkillRepo{skills: make(map[string]*models.Skill)}
}

func (r *fakeSkillRepo) Upsert(_ context.Context, skill *models.Skill) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.upsertErr != nil {
		return r.upsertErr
	}
	if existing, ok := r.skills[skill.SkillID]; ok {
		skill.Version = existing.Version
		skill.TotalUses = existing.TotalUses
		skill.SuccessRate = existing.SuccessRate
		skill.AvgTimeSaved = existing.AvgTimeSaved
	}
	copied := *skill
	r.skills[skill.SkillID] = &copied
	return nil
}

func (r *fakeSkillRepo) GetByID(_ context.Context, skillID string) (*models.Skill, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	skill, ok := r.skills[skillID]
	if !ok {
		return nil, &models.NotFoundError{Entity: "skill", ID: skillID}
	}
	copied := *skill
	return &copied, nil
}

func (r *fakeSkillRepo) GetAll(_ context.Context) ([]*models.Skill, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Skill
	for _, skill := range r.skills {
		copied := *skill
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SkillID < out[j].SkillID })
	return out, nil
}

func (r *fakeSkillRepo) GetUnderperforming(_ context.Context, minUses int, successRateFloor float64, timeSavedFloor int) ([]*models.Skill, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.underperfer != nil {
		return nil, r.underperfer
	}
	var out []*models.Skill
	for _, skill := range r.skills {
		if skill.TotalUses < minUses {
			continue
		}
		if skill.SuccessRate < successRateFloor || (timeSavedFloor > 0 && skill.AvgTimeSaved < timeSavedFloor) {
			copied := *skill
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SkillID < out[j].SkillID })
	return out, nil
}

func (r *fakeSkillRepo) UpdateRevision(_ context.Context, skillID, version, description, content string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.reviseErr != nil {
		return r.reviseErr
	}
	skill, ok := r.skills[skillID]
	if !ok {
		return &models.NotFoundError{Entity: "skill", ID: skillID}
	}
	skill.Version = version
	skill.Description = description
	skill.Content = content
	return nil
}

type fakeUsageRepo struct {
	mu     sync.Mutex
	events map[string][]*models.UsageEvent
	getErr error
}

func newFakeUsageRepo() *fakeUsageRepo {
	return &fakeUsageRepo{events: make(map[string][]*models.UsageEvent)}
}

func (r *fakeUsageRepo) Record(_ context.Context, event *models.UsageEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *event
	r.events[event.SkillID] = append(r.events[event.SkillID], &copied)
	return nil
}

func (r *fakeUsageRepo) GetBySkillID(_ context.Context, skillID string) ([]*models.UsageEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	return r.events[skillID], nil
}

type fakeOverviewRepo struct {
	overview *models.Overview
	err      error
}

func (r *fakeOverviewRepo) Get(_ context.Context) (*models.Overview, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.overview, nil
}

// fakeProvider returns canned artifacts or errors and records its inputs
type fakeProvider struct {
	mu           sync.Mutex
	artifact     *ai.SkillArtifact
	generateErr  error
	reviseErr    error
	generateReqs []*ai.SkillRequest
	reviseReqs   []*ai.RevisionRequest
}

func (p *fakeProvider) GenerateSkill(_ context.Context, req *ai.SkillRequest) (*ai.SkillArtifact, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.generateReqs = append(p.generateReqs, req)
	if p.generateErr != nil {
		return nil, p.generateErr
	}
	return p.artifact, nil
}

func (p *fakeProvider) ReviseSkill(_ context.Context, req *ai.RevisionRequest) (*ai.SkillArtifact, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reviseReqs = append(p.reviseReqs, req)
	if p.reviseErr != nil {
		return nil, p.reviseErr
	}
	return p.artifact, nil
}
