package archive

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jugglevault/jugglevault/pkg/types"
)

// Archive entry layout. Asset blobs live under AssetDir named by the
// reference stored in their row.
const (
	MetadataEntry = "metadata.json"
	DocumentEntry = "database.json"
	AssetDir      = "assets/videos/"
)

// Contents holds one fully read archive.
type Contents struct {
	Meta     *types.BackupMetadata
	Document []byte            // Raw canonical bytes of database.json.
	Assets   map[string][]byte // Blob name -> bytes.
}

// WriteArchive writes metadata, the canonical document bytes, and the asset
// blobs as one zip file. The archive is built in a temporary file in the
// destination directory and renamed into place only after everything is
// written and synced, so a failure never leaves a partial archive at the
// caller-visible path.
func WriteArchive(dest string, meta *types.BackupMetadata, document []byte, assets map[string][]byte) error {
	metaBytes, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding metadata: %w", err)
	}

	dir := filepath.Dir(dest)
	tmp, err := os.CreateTemp(dir, ".jvbak-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp archive: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		tmp.Close()
		os.Remove(tmpName)
	}

	zw := zip.NewWriter(tmp)
	if err := writeEntry(zw, MetadataEntry, metaBytes); err != nil {
		cleanup()
		return err
	}
	if err := writeEntry(zw, DocumentEntry, document); err != nil {
		cleanup()
		return err
	}
	// Stable blob order keeps archives byte-comparable across runs.
	names := make([]string, 0, len(assets))
	for name := range assets {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := writeEntry(zw, AssetDir+name, assets[name]); err != nil {
			cleanup()
			return err
		}
	}
	if err := zw.Close(); err != nil {
		cleanup()
		return fmt.Errorf("finalizing archive: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("syncing archive: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing archive: %w", err)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("publishing archive: %w", err)
	}
	return nil
}

// writeEntry adds one named entry to the zip.
func writeEntry(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("creating entry %s: %w", name, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing entry %s: %w", name, err)
	}
	return nil
}

// OpenArchive reads and structurally validates an archive. A file that is
// not a zip, or that lacks the metadata or document entry, fails with
// ErrMalformedArchive. The checksum is not checked here; callers verify it
// against the metadata explicitly.
func OpenArchive(archivePath string) (*Contents, error) {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("opening archive: %w", err)
		}
		return nil, fmt.Errorf("%w: %v", types.ErrMalformedArchive, err)
	}
	defer zr.Close()

	contents := &Contents{Assets: make(map[string][]byte)}
	for _, f := range zr.File {
		data, err := readEntry(f)
		if err != nil {
			return nil, err
		}
		switch {
		case f.Name == MetadataEntry:
			meta, err := ParseMetadata(data)
			if err != nil {
				return nil, err
			}
			contents.Meta = meta
		case f.Name == DocumentEntry:
			contents.Document = data
		case strings.HasPrefix(f.Name, AssetDir) && f.Name != AssetDir:
			contents.Assets[strings.TrimPrefix(f.Name, AssetDir)] = data
		}
	}

	if contents.Meta == nil {
		return nil, fmt.Errorf("%w: missing %s", types.ErrMalformedArchive, MetadataEntry)
	}
	if contents.Document == nil {
		return nil, fmt.Errorf("%w: missing %s", types.ErrMalformedArchive, DocumentEntry)
	}
	return contents, nil
}

// readEntry reads one zip entry fully.
func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: opening entry %s: %v", types.ErrMalformedArchive, f.Name, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("reading entry %s: %w", f.Name, err)
	}
	return data, nil
}
