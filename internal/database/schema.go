package database

// schemaStatements is the full schema, applied in order by Migrate.
// Constraints mirror the data model: closed enum CHECKs, 1-10 score ranges,
// uniqueness on the external identifiers, and the usage -> skill foreign key.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS skill_tasks (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		task_id TEXT UNIQUE NOT NULL,
		title TEXT NOT NULL,
		description TEXT,
		task_type TEXT CHECK (task_type IN ('feature', 'bugfix', 'refactor', 'enhancement', 'config')),
		category TEXT CHECK (category IN ('backend', 'frontend', 'database', 'api', 'scraping', 'ml', 'reporting', 'testing', 'deployment')),
		complexity_score INT CHECK (complexity_score BETWEEN 1 AND 10),
		files_affected JSONB DEFAULT '[]'::jsonb,
		implementation JSONB DEFAULT '{}'::jsonb,
		challenges JSONB DEFAULT '[]'::jsonb,
		outcome JSONB DEFAULT '{}'::jsonb,
		skill_potential INT CHECK (skill_potential BETWEEN 1 AND 10),
		analyzed BOOLEAN DEFAULT FALSE,
		created_at TIMESTAMPTZ DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_skill_tasks_analyzed ON skill_tasks(analyzed)`,
	`CREATE INDEX IF NOT EXISTS idx_skill_tasks_category ON skill_tasks(category)`,
	`CREATE INDEX IF NOT EXISTS idx_skill_tasks_potential ON skill_tasks(skill_potential)`,

	`CREATE TABLE IF NOT EXISTS skill_patterns (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		pattern_id TEXT UNIQUE NOT NULL,
		name TEXT NOT NULL,
		category TEXT NOT NULL,
		frequency INT DEFAULT 1 CHECK (frequency >= 1),
		consistency_score DECIMAL(3,1) CHECK (consistency_score BETWEEN 1 AND 10),
		skill_viability DECIMAL(3,1) CHECK (skill_viability BETWEEN 1 AND 10),
		task_references TEXT[] DEFAULT '{}',
		synthesized BOOLEAN DEFAULT FALSE,
		created_at TIMESTAMPTZ DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_patterns_viability ON skill_patterns(skill_viability)`,
	`CREATE INDEX IF NOT EXISTS idx_patterns_synthesized ON skill_patterns(synthesized)`,

	`CREATE TABLE IF NOT EXISTS ai_skills (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		skill_id TEXT UNIQUE NOT NULL,
		name TEXT NOT NULL,
		category TEXT NOT NULL,
		version TEXT DEFAULT '1.0.0',
		description TEXT,
		content TEXT,
		pattern_sources TEXT[] DEFAULT '{}',
		total_uses INT DEFAULT 0,
		success_rate DECIMAL(5,3) DEFAULT 0,
		avg_time_saved INT DEFAULT 0,
		created_at TIMESTAMPTZ DEFAULT NOW(),
		updated_at TIMESTAMPTZ DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_ai_skills_category ON ai_skills(category)`,
	`CREATE INDEX IF NOT EXISTS idx_ai_skills_success ON ai_skills(success_rate)`,

	`CREATE TABLE IF NOT EXISTS skill_usage (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		skill_id TEXT NOT NULL REFERENCES ai_skills(skill_id),
		success BOOLEAN NOT NULL,
		time_saved_minutes INT DEFAULT 0 CHECK (time_saved_minutes >= 0),
		iterations INT DEFAULT 1 CHECK (iterations >= 1),
		rating INT CHECK (rating BETWEEN 1 AND 5),
		feedback TEXT,
		used_at TIMESTAMPTZ DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_skill_usage_skill ON skill_usage(skill_id)`,
	`CREATE INDEX IF NOT EXISTS idx_skill_usage_date ON skill_usage(used_at)`,
}
