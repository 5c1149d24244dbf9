package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// InitialSkillVersion is the version every newly synthesized skill starts at
const InitialSkillVersion = "1.0.0"

// Skill is a versioned, reusable artifact synthesized from one or more patterns.
// TotalUses, SuccessRate, and AvgTimeSaved are derived exclusively from usage
// events; they survive content revisions because they track the skill identity,
// not a particular version.
type Skill struct {
	SkillID        string    `json:"skill_id" validate:"required"`
	Name           string    `json:"name" validate:"required"`
	Category       Category  `json:"category" validate:"required,category"`
	Version        string    `json:"version" validate:"required"`
	Description    string    `json:"description"`
	Content        string    `json:"content"`
	PatternSources []string  `json:"pattern_sources" validate:"min=1"`
	TotalUses      int       `json:"total_uses"`
	SuccessRate    float64   `json:"success_rate"`
	AvgTimeSaved   int       `json:"avg_time_saved"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NextMinorVersion bumps the minor component of a MAJOR.MINOR.PATCH version
// string and resets the patch, e.g. "1.0.0" -> "1.1.0". Optimization revisions
// are always minor bumps.
func NextMinorVersion(version string) (string, error) {
	parts := strings.Split(version, ".")
	if len(parts) != 3 {
		return "", fmt.Errorf("invalid version %q: expected MAJOR.MINOR.PATCH", version)
	}

	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return "", fmt.Errorf("invalid major version in %q: %w", version, err)
	}
	minor, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", fmt.Errorf("invalid minor version in %q: %w", version, err)
	}
	if _, err := strconv.Atoi(parts[2]); err != nil {
		return "", fmt.Errorf("invalid patch version in %q: %w", version, err)
	}

	return fmt.Sprintf("%d.%d.0", major, minor+1), nil
}
