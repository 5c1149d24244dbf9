package pipeline

import (
	"math"
	"sort"
	"strings"

	"github.com/everestcap/skillforge/internal/models"
)

// Score scale bounds shared by consistency and viability
const (
	minScore = 1.0
	maxScore = 10.0

	// frequencySaturation is the task count beyond which additional
	// occurrences stop raising viability
	frequencySaturation = 10
)

// ConsistencyScore measures how uniformly a group of tasks implements the
// same approach: the share of tasks matching the group's modal implementation
// signature (task type + normalized tag set), scaled onto 1-10.
func ConsistencyScore(tasks []*models.Task) float64 {
	if len(tasks) == 0 {
		return minScore
	}

	counts := make(map[string]int, len(tasks))
	modal := 0
	for _, task := range tasks {
		sig := implementationSignature(task)
		counts[sig]++
		if counts[sig] > modal {
			modal = counts[sig]
		}
	}

	share := float64(modal) / float64(len(tasks))
	return roundScore(minScore + (maxScore-minScore)*share)
}

// ViabilityScore combines consistency, frequency, and average skill potential
// into the score gating synthesis. Non-decreasing in every input: higher
// consistency and potential each raise it, and frequency adds a bonus that
// saturates at frequencySaturation occurrences.
func ViabilityScore(consistency float64, frequency int, avgSkillPotential float64) float64 {
	freq := frequency
	if freq > frequencySaturation {
		freq = frequencySaturation
	}
	if freq < 0 {
		freq = 0
	}

	v := 0.45*consistency + 0.45*avgSkillPotential + float64(freq)/float64(frequencySaturation)
	return roundScore(clampScore(v))
}

// AverageSkillPotential returns the mean skill_potential across tasks
func AverageSkillPotential(tasks []*models.Task) float64 {
	if len(tasks) == 0 {
		return 0
	}
	sum := 0
	for _, task := range tasks {
		sum += task.SkillPotential
	}
	return float64(sum) / float64(len(tasks))
}

// implementationSignature is the equality key for "implemented the same way":
// task type plus the sorted, normalized pattern-tag set
func implementationSignature(task *models.Task) string {
	tags := normalizedTags(task)
	return string(task.TaskType) + "|" + strings.Join(tags, ",")
}

// normalizedTags returns the task's pattern tags lowercased, slugged, deduped,
// and sorted
func normalizedTags(task *models.Task) []string {
	seen := make(map[string]bool, len(task.Implementation.PatternsUsed))
	var tags []string
	for _, tag := range task.Implementation.PatternsUsed {
		normalized := slugify(tag)
		if normalized == "" || seen[normalized] {
			continue
		}
		seen[normalized] = true
		tags = append(tags, normalized)
	}
	sort.Strings(tags)
	return tags
}

// slugify lowercases and replaces runs of non-alphanumerics with underscores
func slugify(s string) string {
	var sb strings.Builder
	lastUnderscore := true // suppress leading underscore
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			sb.WriteRune(r)
			lastUnderscore = false
		} else if !lastUnderscore {
			sb.WriteByte('_')
			lastUnderscore = true
		}
	}
	return strings.TrimSuffix(sb.String(), "_")
}

// humanizeTag turns a slug into a display name: "selenium_scraping" -> "Selenium Scraping"
func humanizeTag(tag string) string {
	words := strings.Split(tag, "_")
	for i, word := range words {
		if word == "" {
			continue
		}
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}

// jaccardOverlap returns |a intersect b| / |a union b| for two id sets
func jaccardOverlap(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	set := make(map[string]bool, len(a))
	for _, id := range a {
		set[id] = true
	}

	intersection := 0
	bSet := make(map[string]bool, len(b))
	for _, id := range b {
		if bSet[id] {
			continue
		}
		bSet[id] = true
		if set[id] {
			intersection++
		}
	}

	union := len(set) + len(bSet) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func clampScore(v float64) float64 {
	if v < minScore {
		return minScore
	}
	if v > maxScore {
		return maxScore
	}
	return v
}

// roundScore rounds to one decimal place, the precision the store records
func roundScore(v float64) float64 {
	return math.Round(v*10) / 10
}
