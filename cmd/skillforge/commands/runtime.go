package commands

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/everestcap/skillforge/internal/config"
	"github.com/everestcap/skillforge/internal/database"
	"github.com/everestcap/skillforge/internal/logger"
	"github.com/everestcap/skillforge/internal/pipeline"
	"github.com/everestcap/skillforge/internal/services/ai"
)

// runtime bundles the wired dependencies a command needs
type runtime struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *database.DB

	tasks    *database.TaskRepository
	patterns *database.PatternRepository
	skills   *database.SkillRepository
	usage    *database.UsageRepository
	overview *database.OverviewRepository

	orchestrator *pipeline.Orchestrator
}

// newRuntime loads config, connects to the store, and wires the pipeline.
// Commands that synthesize or revise skills set needProvider; the rest work
// without an API key. The returned cleanup closes the connection and flushes
// logs.
func newRuntime(needProvider bool) (*runtime, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	zapLogger, err := newCommandLogger(cfg.DebugMode)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		_ = logger.Sync(zapLogger)
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	cleanup := func() {
		if err := db.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
		}
		_ = logger.Sync(zapLogger)
	}

	var provider ai.SynthesisProvider
	if needProvider {
		provider, err = createProvider(cfg, zapLogger)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
	}

	rt := &runtime{
		cfg:      cfg,
		logger:   zapLogger,
		db:       db,
		tasks:    database.NewTaskRepository(db),
		patterns: database.NewPatternRepository(db),
		skills:   database.NewSkillRepository(db),
		usage:    database.NewUsageRepository(db),
		overview: database.NewOverviewRepository(db),
	}

	analyzer := pipeline.NewAnalyzer(rt.tasks, rt.patterns, zapLogger, cfg.AnalysisBatchLimit)
	generator := pipeline.NewGenerator(rt.patterns, rt.tasks, rt.skills, provider, zapLogger, cfg.MinSkillViability, cfg.PatternOverlapThreshold)
	optimizer := pipeline.NewOptimizer(rt.skills, rt.usage, provider, zapLogger, cfg.MinOptimizeUses, cfg.SuccessRateFloor, cfg.TimeSavedFloorMinutes)
	rt.orchestrator = pipeline.NewOrchestrator(rt.tasks, rt.overview, analyzer, generator, optimizer, cfg.AnalysisThreshold, zapLogger)

	return rt, cleanup, nil
}

// newCommandLogger picks console encoding for debug runs, where an operator
// is reading the output directly, and JSON otherwise
func newCommandLogger(debugMode bool) (*zap.Logger, error) {
	if debugMode {
		return logger.NewDevelopmentLogger(true)
	}
	return logger.NewProductionLogger(false)
}

// createProvider resolves AI_PROVIDER against the registry and builds the
// synthesis provider from configuration
func createProvider(cfg *config.Config, zapLogger *zap.Logger) (ai.SynthesisProvider, error) {
	if cfg.OpenAIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required for this command")
	}

	registry := ai.NewProviderRegistry()
	ai.RegisterOpenAI(registry)

	providerCfg := map[string]string{
		"api_key":  cfg.OpenAIKey,
		"base_url": cfg.AIBaseURL,
		"model":    cfg.AIModel,
	}
	if cfg.DebugMode {
		providerCfg["debug"] = "true"
	}
	return registry.GetProvider(cfg.AIProvider, providerCfg, zapLogger)
}
