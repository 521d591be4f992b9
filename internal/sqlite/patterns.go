package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jugglevault/jugglevault/pkg/types"
)

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

const patternColumns = "id, name, difficulty, ball_count, video_path, last_tested"

// scanPattern hydrates one patterns row.
func scanPattern(row rowScanner) (*types.Pattern, error) {
	var (
		p          types.Pattern
		videoPath  sql.NullString
		lastTested sql.NullString
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Difficulty, &p.BallCount, &videoPath, &lastTested); err != nil {
		return nil, err
	}
	p.VideoPath = strPtr(videoPath)
	lt, err := timePtr(lastTested)
	if err != nil {
		return nil, fmt.Errorf("parsing last_tested: %w", err)
	}
	p.LastTested = lt
	return &p, nil
}

// CreatePattern validates and inserts a pattern, assigning its ID.
func (s *Store) CreatePattern(p *types.Pattern) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open {
		return types.ErrStoreClosed
	}

	var lastTested sql.NullString
	if p.LastTested != nil {
		lastTested = sql.NullString{String: timeString(*p.LastTested), Valid: true}
	}
	res, err := s.db.Exec(
		"INSERT INTO patterns (name, difficulty, ball_count, video_path, last_tested) VALUES (?, ?, ?, ?, ?)",
		p.Name, p.Difficulty, p.BallCount, nullString(p.VideoPath), lastTested,
	)
	if err != nil {
		return fmt.Errorf("inserting pattern: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading pattern id: %w", err)
	}
	p.ID = id
	return nil
}

// GetPattern retrieves a pattern by ID. Returns ErrNotFound if absent.
func (s *Store) GetPattern(id int64) (*types.Pattern, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.open {
		return nil, types.ErrStoreClosed
	}

	row := s.db.QueryRow("SELECT "+patternColumns+" FROM patterns WHERE id = ?", id)
	p, err := scanPattern(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("getting pattern %d: %w", id, err)
	}
	return p, nil
}

// ListPatterns returns all patterns in primary-key ascending order.
func (s *Store) ListPatterns() ([]*types.Pattern, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.open {
		return nil, types.ErrStoreClosed
	}

	rows, err := s.db.Query("SELECT " + patternColumns + " FROM patterns ORDER BY id ASC")
	if err != nil {
		return nil, fmt.Errorf("listing patterns: %w", err)
	}
	defer rows.Close()

	var patterns []*types.Pattern
	for rows.Next() {
		p, err := scanPattern(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning pattern: %w", err)
		}
		patterns = append(patterns, p)
	}
	return patterns, rows.Err()
}

// UpdatePattern overwrites an existing pattern's fields by ID.
func (s *Store) UpdatePattern(p *types.Pattern) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open {
		return types.ErrStoreClosed
	}

	var lastTested sql.NullString
	if p.LastTested != nil {
		lastTested = sql.NullString{String: timeString(*p.LastTested), Valid: true}
	}
	res, err := s.db.Exec(
		"UPDATE patterns SET name = ?, difficulty = ?, ball_count = ?, video_path = ?, last_tested = ? WHERE id = ?",
		p.Name, p.Difficulty, p.BallCount, nullString(p.VideoPath), lastTested, p.ID,
	)
	if err != nil {
		return fmt.Errorf("updating pattern %d: %w", p.ID, err)
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

// DeletePattern removes a pattern. The schema cascades the delete to its
// sessions and to every cross-reference row naming it on either side, and
// nulls usage_events.pattern_id.
func (s *Store) DeletePattern(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open {
		return types.ErrStoreClosed
	}

	res, err := s.db.Exec("DELETE FROM patterns WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting pattern %d: %w", id, err)
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
