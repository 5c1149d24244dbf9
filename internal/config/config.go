package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds application configuration
type Config struct {
	DatabaseURL string `yaml:"database_url"`
	ServerPort  string `yaml:"server_port"`
	CORSOrigins string `yaml:"cors_origins"`

	OpenAIKey  string `yaml:"openai_api_key"`
	AIProvider string `yaml:"ai_provider"`
	AIModel    string `yaml:"ai_model"`
	AIBaseURL  string `yaml:"ai_base_url"`

	// Pipeline trigger thresholds and floors
	AnalysisThreshold       int     `yaml:"analysis_threshold"`
	AnalysisBatchLimit      int     `yaml:"analysis_batch_limit"`
	MinSkillViability       float64 `yaml:"min_skill_viability"`
	PatternOverlapThreshold float64 `yaml:"pattern_overlap_threshold"`
	MinOptimizeUses         int     `yaml:"min_optimize_uses"`
	SuccessRateFloor        float64 `yaml:"success_rate_floor"`
	TimeSavedFloorMinutes   int     `yaml:"time_saved_floor_minutes"`

	DebugMode bool `yaml:"debug_mode"`
}

// Load loads configuration from an optional YAML file pointed at by
// SKILLFORGE_CONFIG, with environment variables taking precedence.
func Load() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("SKILLFORGE_CONFIG"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.ServerPort = getEnv("SERVER_PORT", cfg.ServerPort)
	cfg.CORSOrigins = getEnv("CORS_ORIGINS", cfg.CORSOrigins)
	cfg.OpenAIKey = getEnv("OPENAI_API_KEY", cfg.OpenAIKey)
	cfg.AIProvider = getEnv("AI_PROVIDER", cfg.AIProvider)
	cfg.AIModel = getEnv("AI_MODEL", cfg.AIModel)
	cfg.AIBaseURL = getEnv("AI_BASE_URL", cfg.AIBaseURL)
	cfg.AnalysisThreshold = getEnvInt("ANALYSIS_THRESHOLD", cfg.AnalysisThreshold)
	cfg.AnalysisBatchLimit = getEnvInt("ANALYSIS_BATCH_LIMIT", cfg.AnalysisBatchLimit)
	cfg.MinSkillViability = getEnvFloat("MIN_SKILL_VIABILITY", cfg.MinSkillViability)
	cfg.PatternOverlapThreshold = getEnvFloat("PATTERN_OVERLAP_THRESHOLD", cfg.PatternOverlapThreshold)
	cfg.MinOptimizeUses = getEnvInt("MIN_OPTIMIZE_USES", cfg.MinOptimizeUses)
	cfg.SuccessRateFloor = getEnvFloat("SUCCESS_RATE_FLOOR", cfg.SuccessRateFloor)
	cfg.TimeSavedFloorMinutes = getEnvInt("TIME_SAVED_FLOOR_MINUTES", cfg.TimeSavedFloorMinutes)
	cfg.DebugMode = getEnvBool("DEBUG_MODE", cfg.DebugMode)

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.AnalysisThreshold < 1 {
		return nil, fmt.Errorf("ANALYSIS_THRESHOLD must be at least 1, got %d", cfg.AnalysisThreshold)
	}
	if cfg.PatternOverlapThreshold <= 0 || cfg.PatternOverlapThreshold > 1 {
		return nil, fmt.Errorf("PATTERN_OVERLAP_THRESHOLD must be in (0, 1], got %g", cfg.PatternOverlapThreshold)
	}
	if cfg.SuccessRateFloor < 0 || cfg.SuccessRateFloor > 1 {
		return nil, fmt.Errorf("SUCCESS_RATE_FLOOR must be in [0, 1], got %g", cfg.SuccessRateFloor)
	}

	return cfg, nil
}

func defaults() *Config {
	return &Config{
		ServerPort:              "8080",
		CORSOrigins:             "*",
		AIProvider:              "openai",
		AnalysisThreshold:       10,
		AnalysisBatchLimit:      50,
		MinSkillViability:       7.0,
		PatternOverlapThreshold: 0.6,
		MinOptimizeUses:         5,
		SuccessRateFloor:        0.8,
		TimeSavedFloorMinutes:   0,
	}
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
