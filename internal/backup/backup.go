// Package backup implements the backup and restore engines. Both run as one
// long-lived operation per invocation, pull everything through the Store and
// AssetStore ports, and report progress through a ProgressSink. The calling
// application runs at most one backup and one restore at a time, never both.
package backup

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jugglevault/jugglevault/internal/archive"
	"github.com/jugglevault/jugglevault/pkg/types"
)

// schemaVersioner is implemented by stores that report their own schema
// version. Without it the engine stamps the current version.
type schemaVersioner interface {
	SchemaVersion() (int, error)
}

// Result is the success payload of a backup: where the archive landed, its
// metadata, and the asset references that were skipped because their bytes
// were missing at backup time. Skipped assets are a warning, not a failure;
// the rows keep their references and restore nulls them.
type Result struct {
	Path          string
	Metadata      *types.BackupMetadata
	SkippedAssets []string
}

// Engine produces one immutable archive from the current store state.
type Engine struct {
	store      types.Store
	assets     types.AssetStore
	log        *zap.Logger
	appVersion string
}

// NewEngine creates a backup engine. The logger may be nil.
func NewEngine(store types.Store, assets types.AssetStore, log *zap.Logger, appVersion string) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{store: store, assets: assets, log: log, appVersion: appVersion}
}

// Run creates an archive at dest. The archive is written to a temporary
// location and renamed into place only after the checksum is computed and
// every asset is accounted for, so a failure never leaves a partial archive
// at dest. Cancellation is checked between phases, not mid-table. Any I/O
// failure aborts the whole operation; retry is the caller's responsibility.
func (e *Engine) Run(ctx context.Context, dest string, sink types.ProgressSink) (*Result, error) {
	n := newNotifier(sink)
	start := time.Now()

	// Snapshotting: every table from one consistent point in time.
	n.step(0, "reading table snapshot")
	if err := ctx.Err(); err != nil {
		return nil, e.failed(n, phaseErr(PhaseSnapshotting, err))
	}
	snapshot, err := e.readSnapshot()
	if err != nil {
		return nil, e.failed(n, err)
	}
	n.step(25, "snapshot complete")

	// Serializing: canonical document plus checksum.
	if err := ctx.Err(); err != nil {
		return nil, e.failed(n, phaseErr(PhaseSerializing, err))
	}
	n.step(30, "serializing export document")
	doc := types.NewDatabaseExport()
	for _, table := range types.AllTables() {
		for _, row := range snapshot[table] {
			if err := doc.Add(table, row); err != nil {
				return nil, e.failed(n, &PhaseError{Phase: PhaseSerializing, Table: table, Row: -1, Err: err})
			}
		}
	}
	docBytes, checksum, err := archive.Render(doc)
	if err != nil {
		return nil, e.failed(n, phaseErr(PhaseSerializing, err))
	}
	n.step(45, "export document serialized")

	// CopyingAssets: missing bytes are a recorded warning, any other
	// failure is fatal.
	if err := ctx.Err(); err != nil {
		return nil, e.failed(n, phaseErr(PhaseCopyingAssets, err))
	}
	refs := assetRefs(doc)
	blobs := make(map[string][]byte, len(refs))
	var skipped []string
	for i, ref := range refs {
		n.step(span(45, 75, i, len(refs)), fmt.Sprintf("copying asset %s", ref))
		data, err := e.assets.ResolveAsset(ref)
		if err != nil {
			if errors.Is(err, types.ErrAssetMissing) {
				e.log.Warn("asset missing at backup time, skipping",
					zap.String("ref", ref))
				skipped = append(skipped, ref)
				continue
			}
			return nil, e.failed(n, &PhaseError{Phase: PhaseCopyingAssets, Row: -1, Asset: ref, Err: err})
		}
		blobs[blobName(ref)] = data
	}
	n.step(75, "assets copied")

	// Finalizing: assemble metadata and publish the archive atomically.
	if err := ctx.Err(); err != nil {
		return nil, e.failed(n, phaseErr(PhaseFinalizing, err))
	}
	n.step(80, "finalizing archive")
	meta := &types.BackupMetadata{
		FormatVersion: archive.FormatVersion,
		AppVersion:    e.appVersion,
		SchemaVersion: e.schemaVersion(),
		BackupID:      newBackupID(),
		CreatedAt:     time.Now().UTC(),
		Environment:   runtime.GOOS + "/" + runtime.GOARCH,
		RowCounts:     doc.Counts(),
		SizeBytes:     payloadSize(docBytes, blobs),
		Checksum:      checksum,
	}
	if err := archive.WriteArchive(dest, meta, docBytes, blobs); err != nil {
		return nil, e.failed(n, phaseErr(PhaseFinalizing, err))
	}

	result := &Result{Path: dest, Metadata: meta, SkippedAssets: skipped}
	e.log.Info("backup complete",
		zap.String("path", dest),
		zap.String("backup_id", meta.BackupID),
		zap.Int64("size_bytes", meta.SizeBytes),
		zap.Int("skipped_assets", len(skipped)),
		zap.Duration("elapsed", time.Since(start)))
	n.step(100, "backup complete")
	n.complete(result)
	return result, nil
}

// readSnapshot prefers the store's one-transaction snapshot and falls back
// to per-table reads for stores without one.
func (e *Engine) readSnapshot() (map[string][]any, error) {
	if s, ok := e.store.(types.Snapshotter); ok {
		snap, err := s.ReadSnapshot()
		if err != nil {
			return nil, phaseErr(PhaseSnapshotting, err)
		}
		return snap, nil
	}
	snap := make(map[string][]any)
	for _, table := range types.AllTables() {
		rows, err := e.store.ReadAllRows(table)
		if err != nil {
			return nil, &PhaseError{Phase: PhaseSnapshotting, Table: table, Row: -1, Err: err}
		}
		snap[table] = rows
	}
	return snap, nil
}

// schemaVersion asks the store when it can answer, else assumes current.
func (e *Engine) schemaVersion() int {
	if s, ok := e.store.(schemaVersioner); ok {
		if v, err := s.SchemaVersion(); err == nil {
			return v
		}
	}
	return archive.CurrentSchemaVersion
}

// failed logs, notifies the sink, and returns the error.
func (e *Engine) failed(n *notifier, err error) error {
	e.log.Error("backup failed", zap.Error(err))
	n.fail(err.Error(), err)
	return err
}

// assetRefs collects the distinct asset references of every pattern and
// session row, in document order.
func assetRefs(doc *types.DatabaseExport) []string {
	seen := make(map[string]bool)
	var refs []string
	add := func(ref *string) {
		if ref != nil && *ref != "" && !seen[*ref] {
			seen[*ref] = true
			refs = append(refs, *ref)
		}
	}
	for i := range doc.Patterns {
		add(doc.Patterns[i].VideoPath)
	}
	for i := range doc.TestSessions {
		add(doc.TestSessions[i].VideoPath)
	}
	return refs
}

// blobName derives the archive blob name from an asset reference. The
// reference's own path is kept, slash-separated, so distinct references
// never collide and a restored row's reference resolves unchanged.
func blobName(ref string) string {
	return filepath.ToSlash(filepath.Clean(ref))
}

// payloadSize is the documented size figure: document bytes plus asset
// bytes. The zip container's own size varies with compression and is not
// part of the metadata contract.
func payloadSize(docBytes []byte, blobs map[string][]byte) int64 {
	size := int64(len(docBytes))
	for _, b := range blobs {
		size += int64(len(b))
	}
	return size
}

// newBackupID returns a UUID v7, falling back to v4 if the clock-based
// generator fails.
func newBackupID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
