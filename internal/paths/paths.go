// Package paths resolves configuration, data, and video directory locations.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// CWD-relative directory names used when no override is active.
const (
	DefaultConfigDirName = ".jugglevault"
	DefaultDataDirName   = ".jugglevault-db"
	DefaultVideoDirName  = "videos"
)

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "JUGGLEVAULT_CONFIG_DIR"
	EnvDataDir   = "JUGGLEVAULT_DATA_DIR"
	EnvVideoDir  = "JUGGLEVAULT_VIDEO_DIR"
)

// platformDir holds platform-detection functions that can be overridden in tests.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// DefaultConfigDir returns the platform-specific default configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/jugglevault (fallback ~/.config/jugglevault)
// macOS:   ~/Library/Application Support/jugglevault
// Windows: %APPDATA%/jugglevault
func DefaultConfigDir() (string, error) {
	switch runtime.GOOS {
	case "linux":
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "jugglevault"), nil
		}
		home, err := platformDir.homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", "jugglevault"), nil
	default:
		// macOS and Windows use os.UserConfigDir which returns
		// ~/Library/Application Support on macOS and %APPDATA% on Windows.
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, "jugglevault"), nil
	}
}

// DefaultDataDir returns the platform-specific default data directory.
//
// Linux:   $XDG_DATA_HOME/jugglevault (fallback ~/.local/share/jugglevault)
// macOS:   ~/Library/Application Support/jugglevault
// Windows: %APPDATA%/jugglevault
func DefaultDataDir() (string, error) {
	switch runtime.GOOS {
	case "linux":
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			return filepath.Join(xdg, "jugglevault"), nil
		}
		home, err := platformDir.homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".local", "share", "jugglevault"), nil
	default:
		// macOS and Windows: same as config dir.
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, "jugglevault"), nil
	}
}

// ResolveConfigDir returns the configuration directory following the precedence
// chain: flag > JUGGLEVAULT_CONFIG_DIR env > DefaultConfigDir().
//
// If flag is non-empty it wins. Otherwise the JUGGLEVAULT_CONFIG_DIR
// environment variable is checked. If neither is set, the platform default is
// returned.
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultConfigDir()
}

// ResolveDataDir returns the data directory following the precedence chain:
// flag > configYAMLValue > JUGGLEVAULT_DATA_DIR env > $(CWD)/.jugglevault-db.
func ResolveDataDir(flag, configYAMLValue string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if configYAMLValue != "" {
		return filepath.Abs(configYAMLValue)
	}
	if env := os.Getenv(EnvDataDir); env != "" {
		return filepath.Abs(env)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, DefaultDataDirName), nil
}

// ResolveVideoDir returns the directory holding recorded video assets,
// following the precedence chain: flag > configYAMLValue >
// JUGGLEVAULT_VIDEO_DIR env > <dataDir>/videos.
func ResolveVideoDir(flag, configYAMLValue, dataDir string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if configYAMLValue != "" {
		return filepath.Abs(configYAMLValue)
	}
	if env := os.Getenv(EnvVideoDir); env != "" {
		return filepath.Abs(env)
	}
	return filepath.Join(dataDir, DefaultVideoDirName), nil
}
