package backup

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jugglevault/jugglevault/internal/archive"
	"github.com/jugglevault/jugglevault/pkg/types"
)

// Store states reported by RestoreReport. Validation failures leave the
// store unchanged; once clearing begins the only good end state is
// "restored", and anything else means data was lost and the caller is told
// so explicitly.
const (
	StoreUnchanged = "unchanged"
	StoreEmpty     = "empty"
	StorePartial   = "partially populated"
	StoreRestored  = "restored"
)

// RestoreReport describes the outcome of a restore: per-table row counts
// mirroring the backup metadata's structure, asset counts, and the state the
// store was left in. On failure the counts cover exactly what was applied
// before the failure point.
type RestoreReport struct {
	BackupID       string
	RestoredRows   map[string]int
	RestoredAssets int
	NulledRefs     int // References whose blob was absent from the archive.
	StoreState     string
}

// Restorer replaces the live store's contents with an archive's contents,
// as atomically as the store allows. The destructive clear is deliberate
// and not rolled back: callers that need rollback safety back up first.
type Restorer struct {
	store  types.Store
	assets types.AssetStore
	log    *zap.Logger
}

// NewRestorer creates a restore engine. The logger may be nil.
func NewRestorer(store types.Store, assets types.AssetStore, log *zap.Logger) *Restorer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Restorer{store: store, assets: assets, log: log}
}

// Run restores the archive at archivePath into the store.
//
// No destructive action occurs until the archive's structure, checksum, and
// versions have all been validated. Cancellation is honored between the
// validation phases only; once ClearingStore begins the operation runs to
// completion or fails outright. The returned report is non-nil whenever the
// store was touched, so partial progress is always visible to the caller.
func (r *Restorer) Run(ctx context.Context, archivePath string, sink types.ProgressSink) (*RestoreReport, error) {
	n := newNotifier(sink)
	start := time.Now()

	// Validating: structure, checksum, versions — in that order, before
	// anything destructive.
	n.step(0, "validating archive")
	if err := ctx.Err(); err != nil {
		return nil, r.failed(n, phaseErr(PhaseValidating, err))
	}
	contents, err := archive.OpenArchive(archivePath)
	if err != nil {
		return nil, r.failed(n, phaseErr(PhaseValidating, err))
	}
	if err := archive.CheckVersion(contents.Meta); err != nil {
		return nil, r.failed(n, phaseErr(PhaseValidating, err))
	}
	if err := archive.Verify(contents.Document, contents.Meta.Checksum); err != nil {
		return nil, r.failed(n, phaseErr(PhaseValidating, err))
	}
	doc, err := archive.Parse(contents.Document)
	if err != nil {
		return nil, r.failed(n, phaseErr(PhaseValidating, err))
	}
	if err := archive.UpgradeExport(doc, contents.Meta.SchemaVersion); err != nil {
		return nil, r.failed(n, phaseErr(PhaseValidating, err))
	}
	n.step(15, "archive validated")

	report := &RestoreReport{
		BackupID:     contents.Meta.BackupID,
		RestoredRows: make(map[string]int, len(types.AllTables())),
		StoreState:   StoreUnchanged,
	}

	// Last cancellation point: after this, the clear must run.
	if err := ctx.Err(); err != nil {
		return nil, r.failed(n, phaseErr(PhaseClearingStore, err))
	}

	// ClearingStore: reverse dependency order, destructive and
	// irreversible once begun.
	n.step(20, "clearing store")
	tables := types.AllTables()
	for i := len(tables) - 1; i >= 0; i-- {
		if err := r.store.ClearTable(tables[i]); err != nil {
			report.StoreState = StorePartial
			return report, r.failed(n, &PhaseError{
				Phase: PhaseClearingStore, Table: tables[i], Row: -1,
				Err: fmt.Errorf("%w: %v", types.ErrStoreCleared, err),
			})
		}
	}
	report.StoreState = StoreEmpty
	n.step(30, "store cleared")

	// RestoringRows: dependency order, archive primary keys verbatim.
	// References whose blob was skipped at backup time are nulled rather
	// than left pointing at bytes the archive does not hold.
	report.NulledRefs = nullDanglingRefs(doc, contents.Assets)
	for i, table := range tables {
		n.step(span(30, 75, i, len(tables)), fmt.Sprintf("restoring %s", table))
		rows, err := doc.Rows(table)
		if err != nil {
			return report, r.failed(n, &PhaseError{Phase: PhaseRestoringRows, Table: table, Row: -1,
				Err: fmt.Errorf("%w: %v", types.ErrStoreCleared, err)})
		}
		inserted, err := r.store.InsertRows(table, rows)
		report.RestoredRows[table] = inserted
		if inserted > 0 {
			report.StoreState = StorePartial
		}
		if err != nil {
			return report, r.failed(n, &PhaseError{
				Phase: PhaseRestoringRows, Table: table, Row: inserted,
				Err: fmt.Errorf("%w: %v", types.ErrStoreCleared, err),
			})
		}
	}
	n.step(75, "rows restored")

	// RestoringAssets: only blobs actually referenced by restored rows.
	for name, data := range referencedBlobs(doc, contents.Assets) {
		if _, err := r.assets.StoreAsset(name, data); err != nil {
			return report, r.failed(n, &PhaseError{
				Phase: PhaseRestoringAssets, Row: -1, Asset: name,
				Err: fmt.Errorf("%w: %v", types.ErrStoreCleared, err),
			})
		}
		report.RestoredAssets++
		n.step(span(75, 95, report.RestoredAssets, len(contents.Assets)), fmt.Sprintf("restored asset %s", name))
	}

	report.StoreState = StoreRestored
	r.log.Info("restore complete",
		zap.String("backup_id", report.BackupID),
		zap.Int("assets", report.RestoredAssets),
		zap.Int("nulled_refs", report.NulledRefs),
		zap.Duration("elapsed", time.Since(start)))
	n.step(100, "restore complete")
	n.complete(report)
	return report, nil
}

// failed logs, notifies the sink, and returns the error.
func (r *Restorer) failed(n *notifier, err error) error {
	r.log.Error("restore failed", zap.Error(err))
	n.fail(err.Error(), err)
	return err
}

// nullDanglingRefs clears video references whose blob is absent from the
// archive's asset area, returning how many were nulled. Rows are mutated
// before insertion so the restored store never points at nonexistent bytes.
func nullDanglingRefs(doc *types.DatabaseExport, blobs map[string][]byte) int {
	nulled := 0
	drop := func(ref **string) {
		if *ref == nil || **ref == "" {
			return
		}
		if _, ok := blobs[blobName(**ref)]; !ok {
			*ref = nil
			nulled++
		}
	}
	for i := range doc.Patterns {
		drop(&doc.Patterns[i].VideoPath)
	}
	for i := range doc.TestSessions {
		drop(&doc.TestSessions[i].VideoPath)
	}
	return nulled
}

// referencedBlobs returns the archive blobs still referenced by document
// rows after dangling references were nulled.
func referencedBlobs(doc *types.DatabaseExport, blobs map[string][]byte) map[string][]byte {
	out := make(map[string][]byte)
	for _, ref := range assetRefs(doc) {
		if data, ok := blobs[blobName(ref)]; ok {
			out[blobName(ref)] = data
		}
	}
	return out
}
