// Package archive implements the serializer and container for jugglevault
// backup archives. An archive is one zip file holding metadata.json, the
// canonical database export document (database.json), and an asset area of
// named video blobs.
//
// The checksum domain is fixed: SHA-256 over the bytes of database.json
// exactly as stored, and nothing else. Metadata and assets are excluded so
// independent implementations interoperate.
package archive

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/jugglevault/jugglevault/pkg/types"
)

// Render serializes the export document to its canonical byte encoding and
// returns the bytes with their hex SHA-256 checksum. Rendering is pure:
// field order follows the document's declaration, rows keep snapshot order,
// and the same document always yields the same bytes and checksum.
func Render(doc *types.DatabaseExport) ([]byte, string, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, "", fmt.Errorf("encoding export document: %w", err)
	}
	return data, Checksum(data), nil
}

// Checksum returns the hex SHA-256 digest of the canonical document bytes.
func Checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Parse decodes canonical document bytes back into an export document.
// Unknown additional fields are tolerated for forward-compatible minor
// versions; a stream that is not a valid encoding of the document schema
// fails with ErrMalformedArchive.
func Parse(data []byte) (*types.DatabaseExport, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	doc := types.NewDatabaseExport()
	if err := dec.Decode(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrMalformedArchive, err)
	}
	return doc, nil
}

// Verify recomputes the checksum over the document bytes and compares it to
// the expected value. Any difference surfaces as ErrChecksumMismatch; a
// mismatch is never ignored.
func Verify(data []byte, expected string) error {
	actual := Checksum(data)
	if actual != expected {
		return fmt.Errorf("%w: expected %s, computed %s", types.ErrChecksumMismatch, expected, actual)
	}
	return nil
}

// ParseMetadata decodes an archive's metadata document.
func ParseMetadata(data []byte) (*types.BackupMetadata, error) {
	var meta types.BackupMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("%w: metadata: %v", types.ErrMalformedArchive, err)
	}
	if meta.FormatVersion == "" {
		return nil, fmt.Errorf("%w: metadata missing format_version", types.ErrMalformedArchive)
	}
	return &meta, nil
}
