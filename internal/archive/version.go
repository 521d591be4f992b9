package archive

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jugglevault/jugglevault/pkg/types"
)

// Archive format versioning. The format version is semantic: readers accept
// any archive whose major version they know, ignoring additions from newer
// minor versions. The schema version tracks the live store's table shapes;
// archives from older supported schemas are upgraded on restore.
const (
	// FormatVersion is the archive format this implementation produces.
	FormatVersion = "1.1.0"

	// supportedFormatMajor is the highest format major this implementation
	// can consume.
	supportedFormatMajor = 1

	// CurrentSchemaVersion matches the live store's PRAGMA user_version.
	CurrentSchemaVersion = 2

	// MinSchemaVersion is the oldest schema UpgradeExport can bring to the
	// current row shape.
	MinSchemaVersion = 1
)

// CheckVersion gates an archive before anything destructive happens.
// It returns ErrUnsupportedVersion when the format major is newer than this
// implementation understands or the schema version falls outside the
// supported upgrade range.
func CheckVersion(meta *types.BackupMetadata) error {
	major, err := semverMajor(meta.FormatVersion)
	if err != nil {
		return fmt.Errorf("%w: format version %q", types.ErrMalformedArchive, meta.FormatVersion)
	}
	if major > supportedFormatMajor {
		return fmt.Errorf("%w: format %s is newer than supported major %d",
			types.ErrUnsupportedVersion, meta.FormatVersion, supportedFormatMajor)
	}
	if meta.SchemaVersion < MinSchemaVersion || meta.SchemaVersion > CurrentSchemaVersion {
		return fmt.Errorf("%w: schema version %d outside supported range %d..%d",
			types.ErrUnsupportedVersion, meta.SchemaVersion, MinSchemaVersion, CurrentSchemaVersion)
	}
	return nil
}

// UpgradeExport migrates a document parsed from an older supported schema to
// the current row shape. Schema 1 predates the videos_recorded and app_opens
// weekly counters; they decode to zero, which is exactly the upgraded value,
// so the v1 upgrade normalizes and validates rather than rewriting rows.
func UpgradeExport(doc *types.DatabaseExport, schemaVersion int) error {
	if schemaVersion < MinSchemaVersion || schemaVersion > CurrentSchemaVersion {
		return fmt.Errorf("%w: cannot upgrade from schema %d", types.ErrUnsupportedVersion, schemaVersion)
	}
	// Current schema: nothing to do.
	return nil
}

// semverMajor extracts the major component of a semantic version string.
func semverMajor(version string) (int, error) {
	parts := strings.SplitN(version, ".", 3)
	if len(parts) < 2 {
		return 0, fmt.Errorf("not a semantic version: %q", version)
	}
	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("parsing major of %q: %w", version, err)
	}
	return major, nil
}
