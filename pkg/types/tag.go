package types

// Tag is a user-defined label applied to patterns. Names are unique.
// Deleting a tag removes its cross-reference rows only, never the patterns.
type Tag struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`  // Required, unique, non-empty.
	Color int64  `json:"color"` // Opaque numeric color value.
}

// Validate checks that the tag is well-formed.
func (t *Tag) Validate() error {
	if t.Name == "" {
		return ErrEmptyName
	}
	return nil
}
