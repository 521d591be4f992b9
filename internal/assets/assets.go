// Package assets implements the asset store port on a plain directory.
// Asset references are file names relative to the managed directory; the
// bytes live outside the structured export document and travel alongside it
// in the archive's asset area.
package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/jugglevault/jugglevault/pkg/types"
)

// Dir is a filesystem-backed AssetStore rooted at one directory.
type Dir struct {
	root string
}

var _ types.AssetStore = (*Dir)(nil)

// NewDir creates the directory if needed and returns a store rooted there.
func NewDir(root string) (*Dir, error) {
	if root == "" {
		return nil, errors.New("asset directory must not be empty")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating asset dir: %w", err)
	}
	return &Dir{root: root}, nil
}

// Root returns the managed directory.
func (d *Dir) Root() string {
	return d.root
}

// ResolveAsset returns the bytes for a reference, or ErrAssetMissing when no
// file exists for it.
func (d *Dir) ResolveAsset(ref string) ([]byte, error) {
	path, err := d.refPath(ref)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, types.ErrAssetMissing
		}
		return nil, fmt.Errorf("reading asset %s: %w", ref, err)
	}
	return data, nil
}

// StoreAsset writes the bytes under the given name using the temp-file,
// sync, rename pattern and returns the reference that resolves to them.
// Names may carry subdirectories; missing parents are created.
func (d *Dir) StoreAsset(name string, data []byte) (string, error) {
	path, err := d.refPath(name)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("creating asset parent dir: %w", err)
	}

	tmp, err := os.CreateTemp(d.root, ".asset-*.tmp")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("writing asset: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("syncing asset: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("closing asset: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("renaming asset: %w", err)
	}
	return name, nil
}

// AssetExists reports whether the reference resolves to a stored file.
func (d *Dir) AssetExists(ref string) bool {
	path, err := d.refPath(ref)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// refPath maps a reference to a path under the root, rejecting references
// that would escape it.
func (d *Dir) refPath(ref string) (string, error) {
	if ref == "" {
		return "", types.ErrAssetMissing
	}
	clean := filepath.Clean(ref)
	if filepath.IsAbs(clean) || strings.HasPrefix(clean, "..") {
		return "", fmt.Errorf("asset reference %q escapes the asset directory", ref)
	}
	return filepath.Join(d.root, clean), nil
}
