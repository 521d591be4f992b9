package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jugglevault/jugglevault/pkg/types"
)

// scanTag hydrates one tags row.
func scanTag(row rowScanner) (*types.Tag, error) {
	var t types.Tag
	if err := row.Scan(&t.ID, &t.Name, &t.Color); err != nil {
		return nil, err
	}
	return &t, nil
}

// CreateTag validates and inserts a tag, assigning its ID. Tag names are
// unique; a duplicate name fails.
func (s *Store) CreateTag(t *types.Tag) error {
	if err := t.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open {
		return types.ErrStoreClosed
	}

	res, err := s.db.Exec("INSERT INTO tags (name, color) VALUES (?, ?)", t.Name, t.Color)
	if err != nil {
		return fmt.Errorf("inserting tag: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading tag id: %w", err)
	}
	t.ID = id
	return nil
}

// ListTags returns all tags in primary-key ascending order.
func (s *Store) ListTags() ([]*types.Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.open {
		return nil, types.ErrStoreClosed
	}

	rows, err := s.db.Query("SELECT id, name, color FROM tags ORDER BY id ASC")
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	defer rows.Close()

	var tags []*types.Tag
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning tag: %w", err)
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// DeleteTag removes a tag. The schema cascades removal of its pattern_tags
// rows only; patterns are untouched.
func (s *Store) DeleteTag(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open {
		return types.ErrStoreClosed
	}

	res, err := s.db.Exec("DELETE FROM tags WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting tag %d: %w", id, err)
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

// TagPattern links a pattern to a tag. The relation is a set: tagging an
// already-tagged pattern returns ErrDuplicatePair.
func (s *Store) TagPattern(patternID, tagID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open {
		return types.ErrStoreClosed
	}
	if err := s.patternExistsLocked(patternID); err != nil {
		return err
	}

	var one int
	err := s.db.QueryRow("SELECT 1 FROM tags WHERE id = ?", tagID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return types.ErrNotFound
	}
	if err != nil {
		return err
	}

	if _, err := s.db.Exec(
		"INSERT INTO pattern_tags (pattern_id, tag_id) VALUES (?, ?)",
		patternID, tagID,
	); err != nil {
		if isUniqueViolation(err) {
			return types.ErrDuplicatePair
		}
		return fmt.Errorf("tagging pattern %d: %w", patternID, err)
	}
	return nil
}

// UntagPattern removes the link between a pattern and a tag.
func (s *Store) UntagPattern(patternID, tagID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open {
		return types.ErrStoreClosed
	}

	res, err := s.db.Exec(
		"DELETE FROM pattern_tags WHERE pattern_id = ? AND tag_id = ?",
		patternID, tagID,
	)
	if err != nil {
		return fmt.Errorf("untagging pattern %d: %w", patternID, err)
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

// isUniqueViolation reports whether err is a SQLite unique or primary-key
// constraint failure.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
