package ai

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/everestcap/skillforge/internal/models"
)

// SynthesisProvider is the boundary to the externally hosted language model.
// The pipeline prepares deterministic context and validates the returned
// shape; it never depends on the provider's output quality.
type SynthesisProvider interface {
	// GenerateSkill synthesizes a new skill artifact from a pattern group and
	// its referenced tasks
	GenerateSkill(ctx context.Context, req *SkillRequest) (*SkillArtifact, error)

	// ReviseSkill produces a revised skill body for an underperforming skill
	ReviseSkill(ctx context.Context, req *RevisionRequest) (*SkillArtifact, error)
}

// SkillRequest carries the structured context for synthesizing one skill
type SkillRequest struct {
	Category models.Category
	Patterns []*models.Pattern
	Tasks    []*models.Task
}

// RevisionRequest carries the structured context for revising one skill
type RevisionRequest struct {
	Skill *models.Skill
	// Diagnosis characterizes what is underperforming (low success rate vs
	// low time savings); the provider is told, never left to guess
	Diagnosis       string
	FailureFeedback []string
	AvgIterations   float64
}

// SkillArtifact is the structured content expected back from the provider
type SkillArtifact struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Content     string `json:"content"`
}

// Validate checks the artifact shape. A violation is a MalformedArtifactError:
// surfaced for operator review, never retried with the same input.
func (a *SkillArtifact) Validate() error {
	if a == nil {
		return &models.MalformedArtifactError{Reason: "empty artifact"}
	}
	if strings.TrimSpace(a.Name) == "" {
		return &models.MalformedArtifactError{Reason: "missing name"}
	}
	if strings.TrimSpace(a.Description) == "" {
		return &models.MalformedArtifactError{Reason: "missing description"}
	}
	if strings.TrimSpace(a.Content) == "" {
		return &models.MalformedArtifactError{Reason: "missing content"}
	}
	return nil
}

// ProviderFactory creates a synthesis provider from configuration
type ProviderFactory func(config map[string]string, logger *zap.Logger) (SynthesisProvider, error)

// ProviderRegistry maps provider names to factories so the AI_PROVIDER
// setting selects the backend without the commands knowing any of them
type ProviderRegistry struct {
	providers map[string]ProviderFactory
}

// NewProviderRegistry creates a new provider registry
func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{
		providers: make(map[string]ProviderFactory),
	}
}

// Register registers a provider factory under a name
func (r *ProviderRegistry) Register(name string, factory ProviderFactory) {
	r.providers[name] = factory
}

// GetProvider builds the named provider from configuration
func (r *ProviderRegistry) GetProvider(name string, config map[string]string, logger *zap.Logger) (SynthesisProvider, error) {
	factory, ok := r.providers[name]
	if !ok {
		return nil, &ErrProviderNotFound{Name: name}
	}
	return factory(config, logger)
}

// ErrProviderNotFound is returned when a provider is not found
type ErrProviderNotFound struct {
	Name string
}

func (e *ErrProviderNotFound) Error() string {
	return "synthesis provider not found: " + e.Name
}
