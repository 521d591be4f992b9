package types

import "errors"

// Config holds the parameters for opening a Store.
type Config struct {
	DataDir  string `json:"data_dir" yaml:"data_dir"`   // Directory holding the database file.
	VideoDir string `json:"video_dir" yaml:"video_dir"` // Directory holding video assets.
}

// Config validation errors.
var (
	ErrDataDirEmpty = errors.New("data_dir must not be empty")
)

// Validate checks that the Config is well-formed. VideoDir may be empty; it
// defaults to a "videos" directory under DataDir.
func (c Config) Validate() error {
	if c.DataDir == "" {
		return ErrDataDirEmpty
	}
	return nil
}
