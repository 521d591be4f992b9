package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/jugglevault/jugglevault/pkg/types"
)

// This file implements the store access port consumed by the backup and
// restore engines: whole-table reads in primary-key order, destructive
// clears, and ordered inserts that reuse archive primary keys verbatim.

// queryer is satisfied by both *sql.DB and *sql.Tx, so the same read code
// serves single-table reads and the snapshot transaction.
type queryer interface {
	Query(query string, args ...any) (*sql.Rows, error)
}

// tableQueries maps each managed table to its ordered full-read statement.
var tableQueries = map[string]string{
	types.TablePatterns:      "SELECT " + patternColumns + " FROM patterns ORDER BY id ASC",
	types.TableTestSessions:  "SELECT " + sessionColumns + " FROM test_sessions ORDER BY id ASC",
	types.TableTags:          "SELECT id, name, color FROM tags ORDER BY id ASC",
	types.TablePatternTags:   "SELECT pattern_id, tag_id FROM pattern_tags ORDER BY pattern_id, tag_id",
	types.TablePrerequisites: "SELECT pattern_id, prerequisite_id FROM pattern_prerequisites ORDER BY pattern_id, prerequisite_id",
	types.TableDependents:    "SELECT pattern_id, dependent_id FROM pattern_dependents ORDER BY pattern_id, dependent_id",
	types.TableRelated:       "SELECT pattern_id, related_id FROM pattern_related ORDER BY pattern_id, related_id",
	types.TableUsageEvents:   "SELECT " + usageColumns + " FROM usage_events ORDER BY id ASC",
	types.TableWeeklyUsage:   "SELECT " + weeklyColumns + " FROM weekly_usage ORDER BY id ASC",
}

// ReadAllRows returns every row of the named table in primary-key ascending
// order, as typed pointers.
func (s *Store) ReadAllRows(table string) ([]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.open {
		return nil, types.ErrStoreClosed
	}
	return readTable(s.db, table)
}

// ReadSnapshot reads every managed table inside one transaction, so the
// backup engine sees a single point-in-time view even if a writer slips in
// between table reads.
func (s *Store) ReadSnapshot() (map[string][]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.open {
		return nil, types.ErrStoreClosed
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("beginning snapshot read: %w", err)
	}
	defer tx.Rollback()

	snapshot := make(map[string][]any, len(tableQueries))
	for _, table := range types.AllTables() {
		rows, err := readTable(tx, table)
		if err != nil {
			return nil, fmt.Errorf("snapshotting %s: %w", table, err)
		}
		snapshot[table] = rows
	}
	return snapshot, nil
}

// readTable runs the ordered full-read for one table and hydrates its rows.
func readTable(q queryer, table string) ([]any, error) {
	query, ok := tableQueries[table]
	if !ok {
		return nil, types.ErrUnknownTable
	}

	rows, err := q.Query(query)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", table, err)
	}
	defer rows.Close()

	var out []any
	for rows.Next() {
		row, err := scanTableRow(table, rows)
		if err != nil {
			return nil, fmt.Errorf("scanning %s: %w", table, err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// scanTableRow hydrates one row of the named table into its typed pointer.
func scanTableRow(table string, row rowScanner) (any, error) {
	switch table {
	case types.TablePatterns:
		return scanPattern(row)
	case types.TableTestSessions:
		return scanSession(row)
	case types.TableTags:
		return scanTag(row)
	case types.TablePatternTags:
		var x types.PatternTag
		if err := row.Scan(&x.PatternID, &x.TagID); err != nil {
			return nil, err
		}
		return &x, nil
	case types.TablePrerequisites:
		var x types.PatternPrerequisite
		if err := row.Scan(&x.PatternID, &x.PrerequisiteID); err != nil {
			return nil, err
		}
		return &x, nil
	case types.TableDependents:
		var x types.PatternDependent
		if err := row.Scan(&x.PatternID, &x.DependentID); err != nil {
			return nil, err
		}
		return &x, nil
	case types.TableRelated:
		var x types.PatternRelated
		if err := row.Scan(&x.PatternID, &x.RelatedID); err != nil {
			return nil, err
		}
		return &x, nil
	case types.TableUsageEvents:
		return scanUsageEvent(row)
	case types.TableWeeklyUsage:
		return scanWeeklyUsage(row)
	default:
		return nil, types.ErrUnknownTable
	}
}

// ClearTable removes every row from the named table.
func (s *Store) ClearTable(table string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open {
		return types.ErrStoreClosed
	}
	if _, ok := tableQueries[table]; !ok {
		return types.ErrUnknownTable
	}

	if _, err := s.db.Exec("DELETE FROM " + table); err != nil {
		return fmt.Errorf("clearing %s: %w", table, err)
	}
	// Reset the rowid sequence so a restored table hands out the same IDs a
	// fresh store would.
	if _, err := s.db.Exec("DELETE FROM sqlite_sequence WHERE name = ?", table); err != nil && !isMissingTable(err) {
		return fmt.Errorf("resetting sequence for %s: %w", table, err)
	}
	return nil
}

// isMissingTable reports whether err is SQLite's "no such table", which
// sqlite_sequence produces before any AUTOINCREMENT insert has happened.
func isMissingTable(err error) bool {
	return err != nil && strings.Contains(err.Error(), "no such table")
}

// InsertRows inserts rows in the given order, reusing primary keys already
// set on them. It returns the number of rows inserted before the first
// failure so the restore engine can report exact partial progress.
func (s *Store) InsertRows(table string, rows []any) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open {
		return 0, types.ErrStoreClosed
	}
	if _, ok := tableQueries[table]; !ok {
		return 0, types.ErrUnknownTable
	}

	for i, row := range rows {
		if err := s.insertRowLocked(table, row); err != nil {
			return i, fmt.Errorf("inserting %s row %d: %w", table, i, err)
		}
	}
	return len(rows), nil
}

// insertRowLocked inserts one typed row with its primary key verbatim.
// The caller must hold s.mu.
func (s *Store) insertRowLocked(table string, row any) error {
	switch table {
	case types.TablePatterns:
		p, ok := row.(*types.Pattern)
		if !ok {
			return types.ErrInvalidData
		}
		var lastTested sql.NullString
		if p.LastTested != nil {
			lastTested = sql.NullString{String: timeString(*p.LastTested), Valid: true}
		}
		_, err := s.db.Exec(
			"INSERT INTO patterns (id, name, difficulty, ball_count, video_path, last_tested) VALUES (?, ?, ?, ?, ?, ?)",
			p.ID, p.Name, p.Difficulty, p.BallCount, nullString(p.VideoPath), lastTested,
		)
		return err
	case types.TableTestSessions:
		sess, ok := row.(*types.TestSession)
		if !ok {
			return types.ErrInvalidData
		}
		_, err := s.db.Exec(
			"INSERT INTO test_sessions (id, pattern_id, date, duration, success_count, attempt_count, notes, video_path) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
			sess.ID, sess.PatternID, timeString(sess.Date), sess.Duration,
			sess.SuccessCount, sess.AttemptCount, nullString(sess.Notes), nullString(sess.VideoPath),
		)
		return err
	case types.TableTags:
		t, ok := row.(*types.Tag)
		if !ok {
			return types.ErrInvalidData
		}
		_, err := s.db.Exec("INSERT INTO tags (id, name, color) VALUES (?, ?, ?)", t.ID, t.Name, t.Color)
		return err
	case types.TablePatternTags:
		x, ok := row.(*types.PatternTag)
		if !ok {
			return types.ErrInvalidData
		}
		_, err := s.db.Exec("INSERT INTO pattern_tags (pattern_id, tag_id) VALUES (?, ?)", x.PatternID, x.TagID)
		return err
	case types.TablePrerequisites:
		x, ok := row.(*types.PatternPrerequisite)
		if !ok {
			return types.ErrInvalidData
		}
		_, err := s.db.Exec("INSERT INTO pattern_prerequisites (pattern_id, prerequisite_id) VALUES (?, ?)", x.PatternID, x.PrerequisiteID)
		return err
	case types.TableDependents:
		x, ok := row.(*types.PatternDependent)
		if !ok {
			return types.ErrInvalidData
		}
		_, err := s.db.Exec("INSERT INTO pattern_dependents (pattern_id, dependent_id) VALUES (?, ?)", x.PatternID, x.DependentID)
		return err
	case types.TableRelated:
		x, ok := row.(*types.PatternRelated)
		if !ok {
			return types.ErrInvalidData
		}
		_, err := s.db.Exec("INSERT INTO pattern_related (pattern_id, related_id) VALUES (?, ?)", x.PatternID, x.RelatedID)
		return err
	case types.TableUsageEvents:
		e, ok := row.(*types.UsageEvent)
		if !ok {
			return types.ErrInvalidData
		}
		_, err := s.db.Exec(
			"INSERT INTO usage_events (id, event_type, timestamp, pattern_id, duration, metadata) VALUES (?, ?, ?, ?, ?, ?)",
			e.ID, e.EventType, timeString(e.Timestamp), nullInt64(e.PatternID), nullInt64(e.Duration), nullString(e.Metadata),
		)
		return err
	case types.TableWeeklyUsage:
		w, ok := row.(*types.WeeklyUsage)
		if !ok {
			return types.ErrInvalidData
		}
		_, err := s.db.Exec(
			"INSERT INTO weekly_usage (id, week_start, points, patterns_created, tests_completed, total_test_duration, videos_recorded, app_opens, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
			w.ID, timeString(w.WeekStart), w.Points, w.PatternsCreated, w.TestsCompleted,
			w.TotalTestDuration, w.VideosRecorded, w.AppOpens, timeString(w.UpdatedAt),
		)
		return err
	default:
		return types.ErrUnknownTable
	}
}
