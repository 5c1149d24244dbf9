package pipeline

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/everestcap/skillforge/internal/models"
	"github.com/everestcap/skillforge/internal/services/ai"
)

func pendingPattern(id string, category models.Category, viability float64, refs ...string) *models.Pattern {
	return &models.Pattern{
		PatternID:        id,
		Name:             "Pattern " + id,
		Category:         category,
		Frequency:        len(refs),
		ConsistencyScore: 9.0,
		SkillViability:   viability,
		TaskReferences:   refs,
	}
}

func newGenerator(t *testing.T, patterns *fakePatternRepo, tasks *fakeTaskRepo, skills *fakeSkillRepo, provider *fakeProvider) *Generator {
	t.Helper()
	return NewGenerator(patterns, tasks, skills, provider, zap.NewNop(), 7.0, 0.6)
}

func TestGeneratorCreatesSkill(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	patterns := newFakePatternRepo()
	tasks := newFakeTaskRepo()
	skills := newFakeSkillRepo()
	provider := &fakeProvider{artifact: &ai.SkillArtifact{
		Name:        "Selenium Scraper Setup",
		Description: "Bootstrap a resilient scraper",
		Content:     "# Steps\n1. Configure the driver",
	}}

	seedTasks(t, tasks,
		taggedTask("task_1", models.CategoryScraping, "selenium_scraping"),
		taggedTask("task_2", models.CategoryScraping, "selenium_scraping"),
	)
	if err := patterns.Upsert(ctx, pendingPattern("pattern_scraping_selenium_scraping", models.CategoryScraping, 9.1, "task_1", "task_2")); err != nil {
		t.Fatalf("seed pattern: %v", err)
	}

	result, err := newGenerator(t, patterns, tasks, skills, provider).Run(ctx)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if result.PatternsConsidered != 1 || len(result.SkillsCreated) != 1 {
		t.Fatalf("considered/created = %d/%d, want 1/1", result.PatternsConsidered, len(result.SkillsCreated))
	}

	skill, err := skills.GetByID(ctx, "skill_scraping_selenium_scraping")
	if err != nil {
		t.Fatalf("skill not persisted: %v", err)
	}
	if skill.Version != models.InitialSkillVersion {
		t.Errorf("Version = %q, want %q", skill.Version, models.InitialSkillVersion)
	}
	if skill.TotalUses != 0 || skill.SuccessRate != 0 || skill.AvgTimeSaved != 0 {
		t.Errorf("new skill counters must be zero, got %d/%.1f/%d", skill.TotalUses, skill.SuccessRate, skill.AvgTimeSaved)
	}
	if len(skill.PatternSources) != 1 || skill.PatternSources[0] != "pattern_scraping_selenium_scraping" {
		t.Errorf("PatternSources = %v", skill.PatternSources)
	}

	pattern, err := patterns.GetByID(ctx, "pattern_scraping_selenium_scraping")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !pattern.Synthesized {
		t.Error("pattern must be marked synthesized after the skill persisted")
	}

	if len(provider.generateReqs) != 1 || len(provider.generateReqs[0].Tasks) != 2 {
		t.Errorf("provider should receive the referenced tasks, got %+v", provider.generateReqs)
	}
}

func TestGeneratorMergesOverlappingPatterns(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	patterns := newFakePatternRepo()
	tasks := newFakeTaskRepo()
	skills := newFakeSkillRepo()
	provider := &fakeProvider{artifact: &ai.SkillArtifact{
		Name:        "API Endpoint Scaffolding",
		Description: "Scaffold REST endpoints",
		Content:     "# Steps",
	}}

	seedTasks(t, tasks,
		taggedTask("task_1", models.CategoryAPI, "rest_endpoint"),
		taggedTask("task_2", models.CategoryAPI, "rest_endpoint"),
		taggedTask("task_3", models.CategoryAPI, "request_validation"),
	)
	// Jaccard overlap 2/3, above the 0.6 threshold
	if err := patterns.Upsert(ctx, pendingPattern("pattern_api_rest_endpoint", models.CategoryAPI, 8.5, "task_1", "task_2", "task_3")); err != nil {
		t.Fatalf("seed pattern: %v", err)
	}
	if err := patterns.Upsert(ctx, pendingPattern("pattern_api_request_validation", models.CategoryAPI, 7.5, "task_1", "task_2")); err != nil {
		t.Fatalf("seed pattern: %v", err)
	}

	result, err := newGenerator(t, patterns, tasks, skills, provider).Run(ctx)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if result.PatternsConsidered != 2 || result.PatternsMerged != 1 {
		t.Errorf("considered/merged = %d/%d, want 2/1", result.PatternsConsidered, result.PatternsMerged)
	}
	if len(result.SkillsCreated) != 1 {
		t.Fatalf("SkillsCreated = %v, want a single merged skill", result.SkillsCreated)
	}

	// Primary is the higher-viability pattern
	skill, err := skills.GetByID(ctx, "skill_api_rest_endpoint")
	if err != nil {
		t.Fatalf("merged skill not persisted: %v", err)
	}
	if len(skill.PatternSources) != 2 {
		t.Errorf("PatternSources = %v, want both merged patterns", skill.PatternSources)
	}

	for _, id := range []string{"pattern_api_rest_endpoint", "pattern_api_request_validation"} {
		pattern, err := patterns.GetByID(ctx, id)
		if err != nil {
			t.Fatalf("GetByID %s: %v", id, err)
		}
		if !pattern.Synthesized {
			t.Errorf("pattern %s should be synthesized after the merge", id)
		}
	}
}

func TestGeneratorKeepsDistinctCategoriesSeparate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	patterns := newFakePatternRepo()
	tasks := newFakeTaskRepo()
	skills := newFakeSkillRepo()
	provider := &fakeProvider{artifact: &ai.SkillArtifact{
		Name:        "Generated",
		Description: "d",
		Content:     "c",
	}}

	seedTasks(t, tasks,
		taggedTask("task_1", models.CategoryBackend, "worker_pool"),
		taggedTask("task_2", models.CategoryDatabase, "migration_script"),
	)
	// Same references but different categories: never merged
	if err := patterns.Upsert(ctx, pendingPattern("pattern_backend_worker_pool", models.CategoryBackend, 8.0, "task_1", "task_2")); err != nil {
		t.Fatalf("seed pattern: %v", err)
	}
	if err := patterns.Upsert(ctx, pendingPattern("pattern_database_migration_script", models.CategoryDatabase, 8.0, "task_1", "task_2")); err != nil {
		t.Fatalf("seed pattern: %v", err)
	}

	result, err := newGenerator(t, patterns, tasks, skills, provider).Run(ctx)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.SkillsCreated) != 2 || result.PatternsMerged != 0 {
		t.Errorf("created/merged = %d/%d, want 2/0", len(result.SkillsCreated), result.PatternsMerged)
	}
}

func TestGeneratorProviderUnavailable(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	patterns := newFakePatternRepo()
	tasks := newFakeTaskRepo()
	skills := newFakeSkillRepo()
	provider := &fakeProvider{generateErr: &models.UnavailableError{Op: "text generation", Err: errors.New("timeout")}}

	seedTasks(t, tasks,
		taggedTask("task_1", models.CategoryML, "model_training"),
		taggedTask("task_2", models.CategoryML, "model_training"),
	)
	if err := patterns.Upsert(ctx, pendingPattern("pattern_ml_model_training", models.CategoryML, 8.0, "task_1", "task_2")); err != nil {
		t.Fatalf("seed pattern: %v", err)
	}

	result, err := newGenerator(t, patterns, tasks, skills, provider).Run(ctx)
	if err != nil {
		t.Fatalf("provider outage must not abort the run: %v", err)
	}
	if len(result.Errors) != 1 || len(result.SkillsCreated) != 0 {
		t.Fatalf("errors/created = %d/%d, want 1/0", len(result.Errors), len(result.SkillsCreated))
	}

	pattern, err := patterns.GetByID(ctx, "pattern_ml_model_training")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if pattern.Synthesized {
		t.Error("pattern must stay pending when the provider failed")
	}
}

func TestGeneratorMalformedArtifact(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	patterns := newFakePatternRepo()
	tasks := newFakeTaskRepo()
	skills := newFakeSkillRepo()
	provider := &fakeProvider{generateErr: &models.MalformedArtifactError{Reason: "invalid JSON"}}

	seedTasks(t, tasks,
		taggedTask("task_1", models.CategoryFrontend, "form_wizard"),
		taggedTask("task_2", models.CategoryFrontend, "form_wizard"),
	)
	if err := patterns.Upsert(ctx, pendingPattern("pattern_frontend_form_wizard", models.CategoryFrontend, 7.2, "task_1", "task_2")); err != nil {
		t.Fatalf("seed pattern: %v", err)
	}

	result, err := newGenerator(t, patterns, tasks, skills, provider).Run(ctx)
	if err != nil {
		t.Fatalf("malformed artifact must not abort the run: %v", err)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("Errors = %v, want exactly one", result.Errors)
	}
	if _, err := skills.GetByID(ctx, "skill_frontend_form_wizard"); !models.IsNotFound(err) {
		t.Error("no skill row should exist for a malformed artifact")
	}
}

func TestGeneratorStoreUnavailableAborts(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	patterns := newFakePatternRepo()
	tasks := newFakeTaskRepo()
	skills := newFakeSkillRepo()
	skills.upsertErr = &models.UnavailableError{Op: "store write", Err: errors.New("connection refused")}
	provider := &fakeProvider{artifact: &ai.SkillArtifact{Name: "n", Description: "d", Content: "c"}}

	seedTasks(t, tasks,
		taggedTask("task_1", models.CategoryTesting, "fixture_builder"),
		taggedTask("task_2", models.CategoryTesting, "fixture_builder"),
	)
	if err := patterns.Upsert(ctx, pendingPattern("pattern_testing_fixture_builder", models.CategoryTesting, 8.8, "task_1", "task_2")); err != nil {
		t.Fatalf("seed pattern: %v", err)
	}

	if _, err := newGenerator(t, patterns, tasks, skills, provider).Run(ctx); !models.IsUnavailable(err) {
		t.Fatalf("expected UnavailableError, got %v", err)
	}
}

func TestGeneratorIdempotentRerun(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	patterns := newFakePatternRepo()
	tasks := newFakeTaskRepo()
	skills := newFakeSkillRepo()
	provider := &fakeProvider{artifact: &ai.SkillArtifact{Name: "n", Description: "d", Content: "c"}}

	seedTasks(t, tasks,
		taggedTask("task_1", models.CategoryDeployment, "blue_green"),
		taggedTask("task_2", models.CategoryDeployment, "blue_green"),
	)
	if err := patterns.Upsert(ctx, pendingPattern("pattern_deployment_blue_green", models.CategoryDeployment, 7.9, "task_1", "task_2")); err != nil {
		t.Fatalf("seed pattern: %v", err)
	}

	gen := newGenerator(t, patterns, tasks, skills, provider)
	if _, err := gen.Run(ctx); err != nil {
		t.Fatalf("first Run: %v", err)
	}

	second, err := gen.Run(ctx)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if second.PatternsConsidered != 0 || len(second.SkillsCreated) != 0 {
		t.Errorf("second run should be a no-op, got %+v", second)
	}
	if len(provider.generateReqs) != 1 {
		t.Errorf("provider called %d times, want 1", len(provider.generateReqs))
	}
}
