package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jugglevault/jugglevault/pkg/types"
)

const sessionColumns = "id, pattern_id, date, duration, success_count, attempt_count, notes, video_path"

// scanSession hydrates one test_sessions row.
func scanSession(row rowScanner) (*types.TestSession, error) {
	var (
		sess      types.TestSession
		date      string
		notes     sql.NullString
		videoPath sql.NullString
	)
	if err := row.Scan(&sess.ID, &sess.PatternID, &date, &sess.Duration,
		&sess.SuccessCount, &sess.AttemptCount, &notes, &videoPath); err != nil {
		return nil, err
	}
	d, err := parseTime(date)
	if err != nil {
		return nil, fmt.Errorf("parsing date: %w", err)
	}
	sess.Date = d
	sess.Notes = strPtr(notes)
	sess.VideoPath = strPtr(videoPath)
	return &sess, nil
}

// CreateSession validates and inserts a test session, assigning its ID.
// Also stamps the owning pattern's last_tested timestamp.
func (s *Store) CreateSession(sess *types.TestSession) error {
	if err := sess.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open {
		return types.ErrStoreClosed
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		"INSERT INTO test_sessions (pattern_id, date, duration, success_count, attempt_count, notes, video_path) VALUES (?, ?, ?, ?, ?, ?, ?)",
		sess.PatternID, timeString(sess.Date), sess.Duration,
		sess.SuccessCount, sess.AttemptCount, nullString(sess.Notes), nullString(sess.VideoPath),
	)
	if err != nil {
		return fmt.Errorf("inserting session: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading session id: %w", err)
	}

	if _, err := tx.Exec(
		"UPDATE patterns SET last_tested = ? WHERE id = ?",
		timeString(sess.Date), sess.PatternID,
	); err != nil {
		return fmt.Errorf("stamping last_tested: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing session: %w", err)
	}
	sess.ID = id
	return nil
}

// ListSessions returns all sessions for a pattern in primary-key order.
// A zero patternID returns every session.
func (s *Store) ListSessions(patternID int64) ([]*types.TestSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.open {
		return nil, types.ErrStoreClosed
	}

	query := "SELECT " + sessionColumns + " FROM test_sessions ORDER BY id ASC"
	args := []any{}
	if patternID != 0 {
		query = "SELECT " + sessionColumns + " FROM test_sessions WHERE pattern_id = ? ORDER BY id ASC"
		args = append(args, patternID)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*types.TestSession
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// DeleteSession removes a single session by ID.
func (s *Store) DeleteSession(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open {
		return types.ErrStoreClosed
	}

	res, err := s.db.Exec("DELETE FROM test_sessions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting session %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return types.ErrNotFound
	}
	return nil
}

// patternExistsLocked checks that a pattern row exists, mapping the miss to
// ErrNotFound for friendlier errors than a raw foreign-key failure. The
// caller must hold s.mu.
func (s *Store) patternExistsLocked(id int64) error {
	var one int
	err := s.db.QueryRow("SELECT 1 FROM patterns WHERE id = ?", id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return types.ErrNotFound
	}
	return err
}
