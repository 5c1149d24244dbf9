package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"go.uber.org/zap"

	"github.com/everestcap/skillforge/internal/models"
)

const (
	// DefaultOpenAIModel is the default model to use
	DefaultOpenAIModel = "gpt-4o-mini"
	// DefaultOpenAIBaseURL is the default OpenAI API base URL
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	// DefaultTimeout bounds every synthesis call; on expiry the error is
	// retryable, never a hang
	DefaultTimeout = 30 * time.Second

	// MaxTasksInPrompt caps how many referenced tasks are expanded into the
	// synthesis context
	MaxTasksInPrompt = 10
	// MaxFeedbackInPrompt caps how many failure feedback entries are expanded
	// into the revision context
	MaxFeedbackInPrompt = 10
)

// OpenAIProvider implements SynthesisProvider using OpenAI's chat completions
type OpenAIProvider struct {
	client    openai.Client
	model     string
	logger    *zap.Logger
	debugMode bool
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(apiKey, model string) *OpenAIProvider {
	return NewOpenAIProviderWithLogger(apiKey, DefaultOpenAIBaseURL, model, nil, false)
}

// NewOpenAIProviderWithLogger creates a new OpenAI provider with logger support
func NewOpenAIProviderWithLogger(apiKey, baseURL, model string, logger *zap.Logger, debugMode bool) *OpenAIProvider {
	if model == "" {
		model = DefaultOpenAIModel
	}
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}

	httpClient := &http.Client{
		Timeout: DefaultTimeout,
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
		option.WithHTTPClient(httpClient),
	)

	return &OpenAIProvider{
		client:    client,
		model:     model,
		logger:    logger,
		debugMode: debugMode,
	}
}

// GenerateSkill synthesizes a new skill artifact from a pattern group
func (p *OpenAIProvider) GenerateSkill(ctx context.Context, req *SkillRequest) (*SkillArtifact, error) {
	prompt := buildSkillPrompt(req)
	systemMsg := "You are a senior engineer who turns recurring implementation patterns into reusable skill documents. Respond with valid JSON only."

	content, err := p.complete(ctx, "generate_skill", systemMsg, prompt)
	if err != nil {
		return nil, err
	}

	return parseArtifact(content)
}

// ReviseSkill produces a revised skill body for an underperforming skill
func (p *OpenAIProvider) ReviseSkill(ctx context.Context, req *RevisionRequest) (*SkillArtifact, error) {
	prompt := buildRevisionPrompt(req)
	systemMsg := "You are a senior engineer who improves underperforming skill documents based on usage feedback. Respond with valid JSON only."

	content, err := p.complete(ctx, "revise_skill", systemMsg, prompt)
	if err != nil {
		return nil, err
	}

	return parseArtifact(content)
}

// complete sends one chat completion request and returns the response content
func (p *OpenAIProvider) complete(ctx context.Context, operation, systemMsg, prompt string) (string, error) {
	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(systemMsg),
		openai.UserMessage(prompt),
	}
	req := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(p.model),
		Messages: messages,
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	}

	if p.logger != nil && p.debugMode {
		p.logger.Debug("llm_api_request",
			zap.String("operation", operation),
			zap.String("model", p.model),
			zap.Int("prompt_length", len(prompt)),
			zap.String("prompt_preview", SanitizePrompt(prompt, true)),
		)
	}

	start := time.Now()
	resp, err := p.client.Chat.Completions.New(ctx, req)
	latency := time.Since(start)

	if err != nil {
		if p.logger != nil && p.debugMode {
			p.logger.Debug("llm_api_error",
				zap.String("operation", operation),
				zap.String("model", p.model),
				zap.Error(err),
				zap.Int64("latency_ms", latency.Milliseconds()),
			)
		}
		cause := err
		if apiErr := ExtractAPIError(err); apiErr != nil {
			cause = apiErr
		}
		p.warnThrottled(operation, cause)
		return "", &models.UnavailableError{Op: "text generation", Err: cause}
	}

	if len(resp.Choices) == 0 {
		return "", &models.MalformedArtifactError{Reason: "no choices in response"}
	}

	content := resp.Choices[0].Message.Content

	if p.logger != nil && p.debugMode {
		p.logger.Debug("llm_api_response",
			zap.String("operation", operation),
			zap.String("model", p.model),
			zap.Int("response_length", len(content)),
			zap.String("response_preview", SanitizeResponse(content, true)),
			zap.Int64("latency_ms", latency.Milliseconds()),
		)
	}

	return content, nil
}

// warnThrottled surfaces quota exhaustion and rate limiting at warn level.
// Quota errors need operator attention; a retry loop will not clear them.
func (p *OpenAIProvider) warnThrottled(operation string, err error) {
	if p.logger == nil {
		return
	}
	switch {
	case IsQuotaError(err):
		p.logger.Warn("llm_quota_exhausted",
			zap.String("operation", operation),
			zap.String("model", p.model),
		)
	case IsRateLimitError(err):
		p.logger.Warn("llm_rate_limited",
			zap.String("operation", operation),
			zap.String("model", p.model),
		)
	}
}

// parseArtifact parses and validates the model's JSON response. Models
// occasionally wrap JSON in prose; the brace-extraction fallback recovers it.
func parseArtifact(content string) (*SkillArtifact, error) {
	artifact := &SkillArtifact{}
	raw := content
	if err := json.Unmarshal([]byte(raw), artifact); err != nil {
		if len(raw) > 0 && raw[0] != '{' {
			start := bytes.Index([]byte(raw), []byte("{"))
			end := bytes.LastIndex([]byte(raw), []byte("}"))
			if start != -1 && end != -1 && end > start {
				raw = raw[start : end+1]
			}
		}
		if err := json.Unmarshal([]byte(raw), artifact); err != nil {
			return nil, &models.MalformedArtifactError{Reason: fmt.Sprintf("invalid JSON: %v", err)}
		}
	}

	if err := artifact.Validate(); err != nil {
		return nil, err
	}
	return artifact, nil
}

// buildSkillPrompt assembles the synthesis context for a pattern group
func buildSkillPrompt(req *SkillRequest) string {
	var sb strings.Builder

	sb.WriteString("Create a reusable engineering skill from the recurring pattern below.\n\n")

	sb.WriteString("Patterns being converted:\n")
	for _, pattern := range req.Patterns {
		fmt.Fprintf(&sb, "- %s (category %s, seen in %d tasks, consistency %.1f/10, viability %.1f/10)\n",
			pattern.Name, pattern.Category, pattern.Frequency, pattern.ConsistencyScore, pattern.SkillViability)
	}

	sb.WriteString("\nRepresentative tasks:\n")
	tasks := req.Tasks
	if len(tasks) > MaxTasksInPrompt {
		tasks = tasks[:MaxTasksInPrompt]
	}
	for _, task := range tasks {
		fmt.Fprintf(&sb, "\n## %s (%s, complexity %d/10)\n", task.Title, task.TaskType, task.ComplexityScore)
		if task.Implementation.Approach != "" {
			fmt.Fprintf(&sb, "Approach: %s\n", task.Implementation.Approach)
		}
		for i, step := range task.Implementation.Steps {
			fmt.Fprintf(&sb, "%d. %s\n", i+1, step.Description)
		}
		for _, challenge := range task.Challenges {
			fmt.Fprintf(&sb, "Challenge: %s -> %s\n", challenge.Problem, challenge.Resolution)
		}
	}

	sb.WriteString(`
Abstract the common approach across these tasks into a single skill document.
The content should be a step-by-step workflow with inputs required, expected
outputs, and known pitfalls. Make it immediately actionable.

Respond with a JSON object in this format:
{
  "name": "Action-oriented skill name",
  "description": "What the skill does and when to use it",
  "content": "The full skill body in markdown"
}

Return only valid JSON.`)

	return sb.String()
}

// buildRevisionPrompt assembles the optimization context for one skill
func buildRevisionPrompt(req *RevisionRequest) string {
	var sb strings.Builder
	skill := req.Skill

	sb.WriteString("Revise the underperforming skill below.\n\n")
	fmt.Fprintf(&sb, "Skill: %s (category %s, version %s)\n", skill.Name, skill.Category, skill.Version)
	fmt.Fprintf(&sb, "Performance: %d uses, %.1f%% success rate, %d minutes saved on average",
		skill.TotalUses, skill.SuccessRate*100, skill.AvgTimeSaved)
	if req.AvgIterations > 0 {
		fmt.Fprintf(&sb, ", %.1f iterations per use", req.AvgIterations)
	}
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "Diagnosis: %s\n", req.Diagnosis)

	feedback := req.FailureFeedback
	if len(feedback) > MaxFeedbackInPrompt {
		feedback = feedback[:MaxFeedbackInPrompt]
	}
	if len(feedback) > 0 {
		sb.WriteString("\nFeedback from failed uses:\n")
		for _, fb := range feedback {
			fmt.Fprintf(&sb, "- %s\n", fb)
		}
	}

	sb.WriteString("\nCurrent content:\n")
	sb.WriteString(skill.Content)

	sb.WriteString(`

Analyze why this skill underperforms and produce an improved version with
clearer instructions, better error handling guidance, and more concrete
examples. Keep the skill's scope unchanged.

Respond with a JSON object in this format:
{
  "name": "Skill name (keep unless misleading)",
  "description": "Updated description",
  "content": "The full revised skill body in markdown"
}

Return only valid JSON.`)

	return sb.String()
}

// RegisterOpenAI registers the OpenAI provider with the registry
func RegisterOpenAI(registry *ProviderRegistry) {
	registry.Register("openai", func(config map[string]string, logger *zap.Logger) (SynthesisProvider, error) {
		apiKey := config["api_key"]
		if apiKey == "" {
			return nil, fmt.Errorf("openai api_key is required")
		}
		debug := config["debug"] == "true"
		return NewOpenAIProviderWithLogger(apiKey, config["base_url"], config["model"], logger, debug), nil
	})
}
