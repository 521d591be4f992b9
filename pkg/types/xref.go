package types

import "errors"

// Cross-reference rows express relationships purely as id pairs. Every
// relation is a set: the same pair never appears twice. Pairs where both
// sides name the same pattern are rejected at write time with
// ErrSelfReference.

// PatternTag links a pattern to a tag (many-to-many).
type PatternTag struct {
	PatternID int64 `json:"pattern_id"`
	TagID     int64 `json:"tag_id"`
}

// PatternPrerequisite records that PrerequisiteID should be learned before
// PatternID.
type PatternPrerequisite struct {
	PatternID      int64 `json:"pattern_id"`
	PrerequisiteID int64 `json:"prerequisite_id"`
}

// PatternDependent is the inverse-direction bookkeeping of a prerequisite.
type PatternDependent struct {
	PatternID   int64 `json:"pattern_id"`
	DependentID int64 `json:"dependent_id"`
}

// PatternRelated links two related patterns. The pair is stored ordered;
// the reverse pair is not created automatically.
type PatternRelated struct {
	PatternID int64 `json:"pattern_id"`
	RelatedID int64 `json:"related_id"`
}

// Cross-reference errors.
var (
	ErrSelfReference = errors.New("pattern cannot reference itself")
	ErrDuplicatePair = errors.New("cross-reference pair already exists")
)
