package types

import (
	"errors"
	"time"
)

// TestSession records one practice attempt run against a pattern.
// Sessions are deleted when their owning pattern is deleted.
//
// SuccessCount greater than AttemptCount is not structurally rejected;
// the counters round-trip through backup and restore verbatim.
type TestSession struct {
	ID           int64     `json:"id"`
	PatternID    int64     `json:"pattern_id"` // Required owning pattern.
	Date         time.Time `json:"date"`
	Duration     int64     `json:"duration"` // Seconds, non-negative.
	SuccessCount int       `json:"success_count"`
	AttemptCount int       `json:"attempt_count"`
	Notes        *string   `json:"notes"`
	VideoPath    *string   `json:"video_path"` // Optional recorded video.
}

// TestSession validation errors.
var (
	ErrMissingPattern   = errors.New("session requires an owning pattern")
	ErrNegativeDuration = errors.New("duration must be non-negative")
	ErrNegativeCount    = errors.New("counts must be non-negative")
)

// Validate checks that the session is well-formed.
func (s *TestSession) Validate() error {
	if s.PatternID == 0 {
		return ErrMissingPattern
	}
	if s.Duration < 0 {
		return ErrNegativeDuration
	}
	if s.SuccessCount < 0 || s.AttemptCount < 0 {
		return ErrNegativeCount
	}
	return nil
}
