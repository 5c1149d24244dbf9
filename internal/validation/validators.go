package validation

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/everestcap/skillforge/internal/models"
	"github.com/go-playground/validator/v10"
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()

	// Register custom validators for the closed enum sets
	if err := Validate.RegisterValidation("task_type", validateTaskType); err != nil {
		panic(fmt.Sprintf("failed to register task_type validator: %v", err))
	}
	if err := Validate.RegisterValidation("category", validateCategory); err != nil {
		panic(fmt.Sprintf("failed to register category validator: %v", err))
	}
}

// validateTaskType validates that a string is a valid TaskType enum value
func validateTaskType(fl validator.FieldLevel) bool {
	return models.TaskType(fl.Field().String()).Valid()
}

// validateCategory validates that a string is a valid Category enum value
func validateCategory(fl validator.FieldLevel) bool {
	return models.Category(fl.Field().String()).Valid()
}

// SanitizeText sanitizes text input by trimming whitespace and removing control characters
func SanitizeText(text string) string {
	text = strings.TrimSpace(text)

	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}

	return sanitized.String()
}

// ValidateTask validates a task record against the schema constraints,
// returning a ValidationError describing the first violated field.
func ValidateTask(task *models.Task) error {
	return wrapStructErr(Validate.Struct(task))
}

// ValidateUsageEvent validates a usage event against the schema constraints
func ValidateUsageEvent(event *models.UsageEvent) error {
	return wrapStructErr(Validate.Struct(event))
}

// ValidatePattern validates a pattern record against the schema constraints,
// including the frequency/task-reference cardinality invariant.
func ValidatePattern(pattern *models.Pattern) error {
	if err := wrapStructErr(Validate.Struct(pattern)); err != nil {
		return err
	}
	if pattern.Frequency != len(pattern.TaskReferences) {
		return &models.ValidationError{
			Field:   "frequency",
			Message: fmt.Sprintf("frequency %d does not match %d task references", pattern.Frequency, len(pattern.TaskReferences)),
		}
	}
	return nil
}

// ValidateSkill validates a skill record against the schema constraints
func ValidateSkill(skill *models.Skill) error {
	return wrapStructErr(Validate.Struct(skill))
}

// wrapStructErr converts validator errors into the store's ValidationError type
func wrapStructErr(err error) error {
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		first := verrs[0]
		return &models.ValidationError{
			Field:   strings.ToLower(first.Field()),
			Message: fmt.Sprintf("failed %q constraint", first.Tag()),
		}
	}
	return &models.ValidationError{Message: err.Error()}
}
