package sqlite

import (
	"fmt"

	"github.com/jugglevault/jugglevault/pkg/types"
)

// Pattern-to-pattern relations. All three tables hold ordered id pairs with
// set semantics. A pair naming the same pattern on both sides is rejected
// with ErrSelfReference before touching the store; archives produced here
// therefore never contain one.

// AddPrerequisite records that prerequisiteID should be learned before
// patternID, and the inverse dependent pair in one transaction.
func (s *Store) AddPrerequisite(patternID, prerequisiteID int64) error {
	if patternID == prerequisiteID {
		return types.ErrSelfReference
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open {
		return types.ErrStoreClosed
	}
	for _, id := range []int64{patternID, prerequisiteID} {
		if err := s.patternExistsLocked(id); err != nil {
			return err
		}
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		"INSERT INTO pattern_prerequisites (pattern_id, prerequisite_id) VALUES (?, ?)",
		patternID, prerequisiteID,
	); err != nil {
		if isUniqueViolation(err) {
			return types.ErrDuplicatePair
		}
		return fmt.Errorf("adding prerequisite: %w", err)
	}
	if _, err := tx.Exec(
		"INSERT INTO pattern_dependents (pattern_id, dependent_id) VALUES (?, ?)",
		prerequisiteID, patternID,
	); err != nil {
		if isUniqueViolation(err) {
			return types.ErrDuplicatePair
		}
		return fmt.Errorf("adding dependent: %w", err)
	}
	return tx.Commit()
}

// RemovePrerequisite removes a prerequisite pair and its inverse dependent
// pair.
func (s *Store) RemovePrerequisite(patternID, prerequisiteID int64) error {
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
		"DELETE FROM pattern_prerequisites WHERE pattern_id = ? AND prerequisite_id = ?",
		patternID, prerequisiteID,
	)
	if err != nil {
		return fmt.Errorf("removing prerequisite: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return types.ErrNotFound
	}
	if _, err := tx.Exec(
		"DELETE FROM pattern_dependents WHERE pattern_id = ? AND dependent_id = ?",
		prerequisiteID, patternID,
	); err != nil {
		return fmt.Errorf("removing dependent: %w", err)
	}
	return tx.Commit()
}

// AddDependent records that dependentID builds on patternID. It is the
// inverse view of AddPrerequisite and maintains both tables the same way.
func (s *Store) AddDependent(patternID, dependentID int64) error {
	return s.AddPrerequisite(dependentID, patternID)
}

// RemoveDependent removes a dependent pair and its inverse prerequisite
// pair.
func (s *Store) RemoveDependent(patternID, dependentID int64) error {
	return s.RemovePrerequisite(dependentID, patternID)
}

// AddRelated links two related patterns. The pair is stored as given; the
// reverse pair is not created automatically.
func (s *Store) AddRelated(patternID, relatedID int64) error {
	if patternID == relatedID {
		return types.ErrSelfReference
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open {
		return types.ErrStoreClosed
	}
	for _, id := range []int64{patternID, relatedID} {
		if err := s.patternExistsLocked(id); err != nil {
			return err
		}
	}

	if _, err := s.db.Exec(
		"INSERT INTO pattern_related (pattern_id, related_id) VALUES (?, ?)",
		patternID, relatedID,
	); err != nil {
		if isUniqueViolation(err) {
			return types.ErrDuplicatePair
		}
		return fmt.Errorf("adding related: %w", err)
	}
	return nil
}

// RemoveRelated removes a related pair.
func (s *Store) RemoveRelated(patternID, relatedID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open {
		return types.ErrStoreClosed
	}

	res, err := s.db.Exec(
		"DELETE FROM pattern_related WHERE pattern_id = ? AND related_id = ?",
		patternID, relatedID,
	)
	if err != nil {
		return fmt.Errorf("removing related: %w", err)
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
