// Shared helpers for jugglevault CLI commands.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jugglevault/jugglevault/internal/assets"
	"github.com/jugglevault/jugglevault/internal/sqlite"
	"github.com/jugglevault/jugglevault/pkg/types"
)

// openStore resolves the data directory and opens the SQLite store. The
// caller must defer store.Close().
func openStore() (*sqlite.Store, error) {
	dataDir, err := resolveDataDir()
	if err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}
	videoDir, err := resolveVideoDir(dataDir)
	if err != nil {
		return nil, fmt.Errorf("resolve video dir: %w", err)
	}

	store, err := sqlite.Open(types.Config{DataDir: dataDir, VideoDir: videoDir})
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return store, nil
}

// openAssets resolves the video directory and opens the filesystem asset
// store, creating the directory if needed.
func openAssets() (*assets.Dir, error) {
	dataDir, err := resolveDataDir()
	if err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}
	videoDir, err := resolveVideoDir(dataDir)
	if err != nil {
		return nil, fmt.Errorf("resolve video dir: %w", err)
	}

	dir, err := assets.NewDir(videoDir)
	if err != nil {
		return nil, fmt.Errorf("open asset dir: %w", err)
	}
	return dir, nil
}

// printJSON writes v as indented JSON to stdout.
func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

// consoleProgress prints engine progress to stdout and terminal errors to
// stderr. Completion payloads are rendered by the commands themselves.
type consoleProgress struct{}

func (consoleProgress) OnProgress(percent int, message string) {
	fmt.Printf("[%3d%%] %s\n", percent, message)
}

func (consoleProgress) OnComplete(any) {}

func (consoleProgress) OnError(message string, cause error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", message, cause)
}
