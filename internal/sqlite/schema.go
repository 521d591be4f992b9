package sqlite

import (
	"database/sql"
	"fmt"
)

// schemaVersion is written to PRAGMA user_version on creation. Version 2
// added the videos_recorded and app_opens counters to weekly_usage.
const schemaVersion = 2

// Schema DDL. Cascade rules live here, not in the engines: deleting a
// pattern removes its sessions and every cross-reference row naming it on
// either side, and nulls usage_events.pattern_id. Deleting a tag removes
// only its pattern_tags rows.
const (
	createPatterns = `CREATE TABLE IF NOT EXISTS patterns (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    difficulty INTEGER NOT NULL CHECK (difficulty BETWEEN 1 AND 10),
    ball_count INTEGER NOT NULL CHECK (ball_count >= 1),
    video_path TEXT,
    last_tested TEXT
);`

	createTestSessions = `CREATE TABLE IF NOT EXISTS test_sessions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    pattern_id INTEGER NOT NULL,
    date TEXT NOT NULL,
    duration INTEGER NOT NULL CHECK (duration >= 0),
    success_count INTEGER NOT NULL CHECK (success_count >= 0),
    attempt_count INTEGER NOT NULL CHECK (attempt_count >= 0),
    notes TEXT,
    video_path TEXT,
    FOREIGN KEY (pattern_id) REFERENCES patterns(id) ON DELETE CASCADE
);`

	createTags = `CREATE TABLE IF NOT EXISTS tags (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL UNIQUE,
    color INTEGER NOT NULL
);`

	createPatternTags = `CREATE TABLE IF NOT EXISTS pattern_tags (
    pattern_id INTEGER NOT NULL,
    tag_id INTEGER NOT NULL,
    PRIMARY KEY (pattern_id, tag_id),
    FOREIGN KEY (pattern_id) REFERENCES patterns(id) ON DELETE CASCADE,
    FOREIGN KEY (tag_id) REFERENCES tags(id) ON DELETE CASCADE
);`

	createPrerequisites = `CREATE TABLE IF NOT EXISTS pattern_prerequisites (
    pattern_id INTEGER NOT NULL,
    prerequisite_id INTEGER NOT NULL,
    PRIMARY KEY (pattern_id, prerequisite_id),
    FOREIGN KEY (pattern_id) REFERENCES patterns(id) ON DELETE CASCADE,
    FOREIGN KEY (prerequisite_id) REFERENCES patterns(id) ON DELETE CASCADE
);`

	createDependents = `CREATE TABLE IF NOT EXISTS pattern_dependents (
    pattern_id INTEGER NOT NULL,
    dependent_id INTEGER NOT NULL,
    PRIMARY KEY (pattern_id, dependent_id),
    FOREIGN KEY (pattern_id) REFERENCES patterns(id) ON DELETE CASCADE,
    FOREIGN KEY (dependent_id) REFERENCES patterns(id) ON DELETE CASCADE
);`

	createRelated = `CREATE TABLE IF NOT EXISTS pattern_related (
    pattern_id INTEGER NOT NULL,
    related_id INTEGER NOT NULL,
    PRIMARY KEY (pattern_id, related_id),
    FOREIGN KEY (pattern_id) REFERENCES patterns(id) ON DELETE CASCADE,
    FOREIGN KEY (related_id) REFERENCES patterns(id) ON DELETE CASCADE
);`

	createUsageEvents = `CREATE TABLE IF NOT EXISTS usage_events (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    event_type TEXT NOT NULL,
    timestamp TEXT NOT NULL,
    pattern_id INTEGER,
    duration INTEGER,
    metadata TEXT,
    FOREIGN KEY (pattern_id) REFERENCES patterns(id) ON DELETE SET NULL
);`

	createWeeklyUsage = `CREATE TABLE IF NOT EXISTS weekly_usage (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    week_start TEXT NOT NULL UNIQUE,
    points INTEGER NOT NULL DEFAULT 0,
    patterns_created INTEGER NOT NULL DEFAULT 0,
    tests_completed INTEGER NOT NULL DEFAULT 0,
    total_test_duration INTEGER NOT NULL DEFAULT 0,
    videos_recorded INTEGER NOT NULL DEFAULT 0,
    app_opens INTEGER NOT NULL DEFAULT 0,
    updated_at TEXT NOT NULL
);`
)

// Index DDL for common queries.
const (
	idxSessionsPattern  = `CREATE INDEX IF NOT EXISTS idx_test_sessions_pattern ON test_sessions(pattern_id);`
	idxUsagePattern     = `CREATE INDEX IF NOT EXISTS idx_usage_events_pattern ON usage_events(pattern_id);`
	idxUsageTimestamp   = `CREATE INDEX IF NOT EXISTS idx_usage_events_timestamp ON usage_events(timestamp);`
	idxPatternTagsTag   = `CREATE INDEX IF NOT EXISTS idx_pattern_tags_tag ON pattern_tags(tag_id);`
	idxPrerequisitesRev = `CREATE INDEX IF NOT EXISTS idx_prerequisites_prereq ON pattern_prerequisites(prerequisite_id);`
	idxDependentsRev    = `CREATE INDEX IF NOT EXISTS idx_dependents_dependent ON pattern_dependents(dependent_id);`
	idxRelatedRev       = `CREATE INDEX IF NOT EXISTS idx_related_related ON pattern_related(related_id);`
)

// schemaDDL lists all CREATE TABLE statements in dependency order.
var schemaDDL = []string{
	createPatterns,
	createTags,
	createPatternTags,
	createPrerequisites,
	createDependents,
	createRelated,
	createTestSessions,
	createUsageEvents,
	createWeeklyUsage,
}

// indexDDL lists all CREATE INDEX statements.
var indexDDL = []string{
	idxSessionsPattern,
	idxUsagePattern,
	idxUsageTimestamp,
	idxPatternTagsTag,
	idxPrerequisitesRev,
	idxDependentsRev,
	idxRelatedRev,
}

// applySchema creates all tables and indexes and stamps the schema version.
func applySchema(db *sql.DB) error {
	for _, stmt := range schemaDDL {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("creating table: %w", err)
		}
	}
	for _, stmt := range indexDDL {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("creating index: %w", err)
		}
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return fmt.Errorf("stamping schema version: %w", err)
	}
	return nil
}
