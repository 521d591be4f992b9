package types

import (
	"errors"
	"time"
)

// Difficulty bounds for a pattern.
const (
	MinDifficulty = 1
	MaxDifficulty = 10
)

// Pattern represents a juggling pattern tracked by the user.
// The ID is assigned by the store on creation and stays stable for the
// record's lifetime; archives reuse it verbatim on restore.
type Pattern struct {
	ID         int64      `json:"id"`
	Name       string     `json:"name"`        // Required, non-empty.
	Difficulty int        `json:"difficulty"`  // 1..10.
	BallCount  int        `json:"ball_count"`  // At least 1.
	VideoPath  *string    `json:"video_path"`  // Optional asset reference.
	LastTested *time.Time `json:"last_tested"` // Optional.
}

// Pattern validation errors.
var (
	ErrEmptyName         = errors.New("name must not be empty")
	ErrInvalidDifficulty = errors.New("difficulty must be between 1 and 10")
	ErrInvalidBallCount  = errors.New("ball count must be at least 1")
)

// Validate checks that the pattern is well-formed. It returns a sentinel
// error from this package on failure. The ID is not checked; zero means
// "assign on insert".
func (p *Pattern) Validate() error {
	if p.Name == "" {
		return ErrEmptyName
	}
	if p.Difficulty < MinDifficulty || p.Difficulty > MaxDifficulty {
		return ErrInvalidDifficulty
	}
	if p.BallCount < 1 {
		return ErrInvalidBallCount
	}
	return nil
}
