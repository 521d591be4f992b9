package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/jugglevault/jugglevault/pkg/types"
)

const usageColumns = "id, event_type, timestamp, pattern_id, duration, metadata"

// scanUsageEvent hydrates one usage_events row.
func scanUsageEvent(row rowScanner) (*types.UsageEvent, error) {
	var (
		e         types.UsageEvent
		timestamp string
		patternID sql.NullInt64
		duration  sql.NullInt64
		metadata  sql.NullString
	)
	if err := row.Scan(&e.ID, &e.EventType, &timestamp, &patternID, &duration, &metadata); err != nil {
		return nil, err
	}
	ts, err := parseTime(timestamp)
	if err != nil {
		return nil, fmt.Errorf("parsing timestamp: %w", err)
	}
	e.Timestamp = ts
	e.PatternID = int64Ptr(patternID)
	e.Duration = int64Ptr(duration)
	e.Metadata = strPtr(metadata)
	return &e, nil
}

const weeklyColumns = "id, week_start, points, patterns_created, tests_completed, total_test_duration, videos_recorded, app_opens, updated_at"

// scanWeeklyUsage hydrates one weekly_usage row.
func scanWeeklyUsage(row rowScanner) (*types.WeeklyUsage, error) {
	var (
		w         types.WeeklyUsage
		weekStart string
		updatedAt string
	)
	if err := row.Scan(&w.ID, &weekStart, &w.Points, &w.PatternsCreated, &w.TestsCompleted,
		&w.TotalTestDuration, &w.VideosRecorded, &w.AppOpens, &updatedAt); err != nil {
		return nil, err
	}
	ws, err := parseTime(weekStart)
	if err != nil {
		return nil, fmt.Errorf("parsing week_start: %w", err)
	}
	ua, err := parseTime(updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	w.WeekStart = ws
	w.UpdatedAt = ua
	return &w, nil
}

// RecordUsage inserts a usage event. The event type must be one of the
// recognized constants; the timestamp defaults to now when zero.
func (s *Store) RecordUsage(e *types.UsageEvent) error {
	if !types.ValidEventType(e.EventType) {
		return types.ErrInvalidData
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open {
		return types.ErrStoreClosed
	}

	res, err := s.db.Exec(
		"INSERT INTO usage_events (event_type, timestamp, pattern_id, duration, metadata) VALUES (?, ?, ?, ?, ?)",
		e.EventType, timeString(e.Timestamp), nullInt64(e.PatternID), nullInt64(e.Duration), nullString(e.Metadata),
	)
	if err != nil {
		return fmt.Errorf("inserting usage event: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading event id: %w", err)
	}
	e.ID = id
	return nil
}

// WeeklyDelta carries counter increments for BumpWeeklyUsage. Zero fields
// leave the corresponding counter unchanged.
type WeeklyDelta struct {
	Points            int
	PatternsCreated   int
	TestsCompleted    int
	TotalTestDuration int64
	VideosRecorded    int
	AppOpens          int
}

// BumpWeeklyUsage upserts the aggregate row for the calendar week containing
// t, adding the delta to its counters. The week starts on Monday 00:00 UTC.
func (s *Store) BumpWeeklyUsage(t time.Time, delta WeeklyDelta) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open {
		return types.ErrStoreClosed
	}

	weekStart := WeekStart(t)
	now := time.Now().UTC()
	_, err := s.db.Exec(`INSERT INTO weekly_usage
    (week_start, points, patterns_created, tests_completed, total_test_duration, videos_recorded, app_opens, updated_at)
    VALUES (?, ?, ?, ?, ?, ?, ?, ?)
    ON CONFLICT(week_start) DO UPDATE SET
    points = points + excluded.points,
    patterns_created = patterns_created + excluded.patterns_created,
    tests_completed = tests_completed + excluded.tests_completed,
    total_test_duration = total_test_duration + excluded.total_test_duration,
    videos_recorded = videos_recorded + excluded.videos_recorded,
    app_opens = app_opens + excluded.app_opens,
    updated_at = excluded.updated_at`,
		timeString(weekStart), delta.Points, delta.PatternsCreated, delta.TestsCompleted,
		delta.TotalTestDuration, delta.VideosRecorded, delta.AppOpens, timeString(now),
	)
	if err != nil {
		return fmt.Errorf("upserting weekly usage: %w", err)
	}
	return nil
}

// ListWeeklyUsage returns all weekly aggregates in primary-key order.
func (s *Store) ListWeeklyUsage() ([]*types.WeeklyUsage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.open {
		return nil, types.ErrStoreClosed
	}

	rows, err := s.db.Query("SELECT " + weeklyColumns + " FROM weekly_usage ORDER BY id ASC")
	if err != nil {
		return nil, fmt.Errorf("listing weekly usage: %w", err)
	}
	defer rows.Close()

	var weeks []*types.WeeklyUsage
	for rows.Next() {
		w, err := scanWeeklyUsage(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning weekly usage: %w", err)
		}
		weeks = append(weeks, w)
	}
	return weeks, rows.Err()
}

// WeekStart returns Monday 00:00 UTC of the week containing t.
func WeekStart(t time.Time) time.Time {
	t = t.UTC()
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday belongs to the week that started the prior Monday.
	}
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return day.AddDate(0, 0, -(weekday - 1))
}
