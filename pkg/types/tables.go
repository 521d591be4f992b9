package types

// Managed table names. These are the tables the backup engine snapshots and
// the restore engine clears and repopulates.
const (
	TablePatterns      = "patterns"
	TableTestSessions  = "test_sessions"
	TableTags          = "tags"
	TablePatternTags   = "pattern_tags"
	TablePrerequisites = "pattern_prerequisites"
	TableDependents    = "pattern_dependents"
	TableRelated       = "pattern_related"
	TableUsageEvents   = "usage_events"
	TableWeeklyUsage   = "weekly_usage"
)

// AllTables returns the managed table names in restore dependency order:
// patterns first so cross-references and sessions have valid targets, then
// tags, the four cross-reference relations, sessions, and the analytics
// tables. Restore inserts in this order; clearing runs in reverse.
func AllTables() []string {
	return []string{
		TablePatterns,
		TableTags,
		TablePatternTags,
		TablePrerequisites,
		TableDependents,
		TableRelated,
		TableTestSessions,
		TableUsageEvents,
		TableWeeklyUsage,
	}
}
