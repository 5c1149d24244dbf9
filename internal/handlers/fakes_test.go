package handlers

import (
	"context"

	"github.com/everestcap/skillforge/internal/models"
)

// Minimal in-memory fakes for the repository interfaces the handlers touch

type fakeTaskRepo struct {
	tasks     map[string]*models.Task
	upsertErr error
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: make(map[string]*models.Task)}
}

func (r *fakeTaskRepo) Upsert(_ context.Context, task *models.Task) error {
	if r.upsertErr != nil {
		return r.upsertErr
	}
	if existing, ok := r.tasks[task.TaskID]; ok {
		task.Analyzed = existing.Analyzed
	}
	copied := *task
	r.tasks[task.TaskID] = &copied
	return nil
}

func (r *fakeTaskRepo) GetByID(_ context.Context, taskID string) (*models.Task, error) {
	task, ok := r.tasks[taskID]
	if !ok {
		return nil, &models.NotFoundError{Entity: "task", ID: taskID}
	}
	return task, nil
}

func (r *fakeTaskRepo) GetByIDs(_ context.Context, taskIDs []string) ([]*models.Task, error) {
	var out []*models.Task
	for _, id := range taskIDs {
		if task, ok := r.tasks[id]; ok {
			out = append(out, task)
		}
	}
	return out, nil
}

func (r *fakeTaskRepo) GetUnanalyzed(context.Context, int) ([]*models.Task, error) { return nil, nil }
func (r *fakeTaskRepo) CountUnanalyzed(context.Context) (int, error)              { return 0, nil }
func (r *fakeTaskRepo) MarkAnalyzed(context.Context, []string) (int, error)       { return 0, nil }

type fakeSkillRepo struct {
	skills map[string]*models.Skill
	getErr error
}

func newFakeSkillRepo() *fakeSkillRepo {
	return &fakeSkillRepo{skills: make(map[string]*models.Skill)}
}

func (r *fakeSkillRepo) Upsert(_ context.Context, skill *models.Skill) error {
	copied := *skill
	r.skills[skill.SkillID] = &copied
	return nil
}

func (r *fakeSkillRepo) GetByID(_ context.Context, skillID string) (*models.Skill, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	skill, ok := r.skills[skillID]
	if !ok {
		return nil, &models.NotFoundError{Entity: "skill", ID: skillID}
	}
	return skill, nil
}

func (r *fakeSkillRepo) GetAll(_ context.Context) ([]*models.Skill, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	var out []*models.Skill
	for _, skill := range r.skills {
		out = append(out, skill)
	}
	return out, nil
}

func (r *fakeSkillRepo) GetUnderperforming(context.Context, int, float64, int) ([]*models.Skill, error) {
	return nil, nil
}

func (r *fakeSkillRepo) UpdateRevision(_ context.Context, skillID, version, description, content string) error {
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
	events    map[string][]*models.UsageEvent
	known     map[string]bool
	recordErr error
}

func newFakeUsageRepo(knownSkills ...string) *fakeUsageRepo {
	known := make(map[string]bool, len(knownSkills))
	for _, id := range knownSkills {
		known[id] = true
	}
	return &fakeUsageRepo{events: make(map[string][]*models.UsageEvent), known: known}
}

func (r *fakeUsageRepo) Record(_ context.Context, event *models.UsageEvent) error {
	if r.recordErr != nil {
		return r.recordErr
	}
	if !r.known[event.SkillID] {
		return &models.NotFoundError{Entity: "skill", ID: event.SkillID}
	}
	copied := *event
	r.events[event.SkillID] = append(r.events[event.SkillID], &copied)
	return nil
}

func (r *fakeUsageRepo) GetBySkillID(_ context.Context, skillID string) ([]*models.UsageEvent, error) {
	return r.events[skillID], nil
}

type fakeOverviewRepo struct {
	overview *models.Overview
	err      error
}

func (r *fakeOverviewRepo) Get(context.Context) (*models.Overview, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.overview, nil
}
