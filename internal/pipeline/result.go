package pipeline

// StageError reports one item a pipeline stage could not process. Item-level
// failures never abort a run; they are collected here instead.
type StageError struct {
	Item    string `json:"item"`
	Message string `json:"message"`
}

// AnalyzeResult summarizes one analysis run
type AnalyzeResult struct {
	ThresholdMet    bool         `json:"threshold_met"`
	PendingTasks    int          `json:"pending_tasks"`
	Threshold       int          `json:"threshold"`
	Message         string       `json:"message,omitempty"`
	TasksAnalyzed   int          `json:"tasks_analyzed"`
	PatternsCreated int          `json:"patterns_created"`
	PatternsUpdated int          `json:"patterns_updated"`
	PatternIDs      []string     `json:"pattern_ids,omitempty"`
	Errors          []StageError `json:"errors,omitempty"`
}

// GenerateResult summarizes one synthesis run
type GenerateResult struct {
	PatternsConsidered int          `json:"patterns_considered"`
	PatternsMerged     int          `json:"patterns_merged"`
	SkillsCreated      []string     `json:"skills_created,omitempty"`
	Errors             []StageError `json:"errors,omitempty"`
}

// RevisedSkill identifies one skill revision produced by an optimization run
type RevisedSkill struct {
	SkillID string `json:"skill_id"`
	Version string `json:"version"`
}

// OptimizeResult summarizes one optimization run
type OptimizeResult struct {
	CandidatesFound int            `json:"candidates_found"`
	SkillsRevised   []RevisedSkill `json:"skills_revised,omitempty"`
	Errors          []StageError   `json:"errors,omitempty"`
}
