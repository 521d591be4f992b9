package types

import "time"

// Usage event types. The set is closed; RecordUsage rejects unknown values.
const (
	EventPatternViewed    = "pattern_viewed"
	EventSessionLogged    = "session_logged"
	EventHistoryViewed    = "history_viewed"
	EventProgressViewed   = "progress_viewed"
	EventSettingsAccessed = "settings_accessed"
	EventBackupCreated    = "backup_created"
	EventBackupRestored   = "backup_restored"
)

// validEventTypes is the set of recognized usage event types.
var validEventTypes = map[string]bool{
	EventPatternViewed:    true,
	EventSessionLogged:    true,
	EventHistoryViewed:    true,
	EventProgressViewed:   true,
	EventSettingsAccessed: true,
	EventBackupCreated:    true,
	EventBackupRestored:   true,
}

// ValidEventType reports whether t is a recognized usage event type.
func ValidEventType(t string) bool {
	return validEventTypes[t]
}

// UsageEvent is a single analytics event. PatternID is set to null, not
// cascade-deleted, when the referenced pattern is deleted.
type UsageEvent struct {
	ID        int64     `json:"id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
	PatternID *int64    `json:"pattern_id"`
	Duration  *int64    `json:"duration"` // Seconds, optional.
	Metadata  *string   `json:"metadata"` // Free-form, optional.
}

// WeeklyUsage aggregates analytics counters for one calendar week.
// One row per week start; upserted by analytics, never user-edited.
type WeeklyUsage struct {
	ID                int64     `json:"id"`
	WeekStart         time.Time `json:"week_start"` // Unique.
	Points            int       `json:"points"`
	PatternsCreated   int       `json:"patterns_created"`
	TestsCompleted    int       `json:"tests_completed"`
	TotalTestDuration int64     `json:"total_test_duration"`
	VideosRecorded    int       `json:"videos_recorded"`
	AppOpens          int       `json:"app_opens"`
	UpdatedAt         time.Time `json:"updated_at"`
}
