package backup

import (
	"archive/zip"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jugglevault/jugglevault/internal/archive"
	"github.com/jugglevault/jugglevault/internal/assets"
	"github.com/jugglevault/jugglevault/internal/sqlite"
	"github.com/jugglevault/jugglevault/pkg/types"
)

// backupFixture populates a store, backs it up, and returns the fixture.
func backupFixture(t *testing.T) *fixture {
	t.Helper()
	f := newFixture(t)
	f.populate(t)
	engine := NewEngine(f.store, f.assets, nil, "test")
	_, err := engine.Run(context.Background(), f.dest, types.NopProgress{})
	require.NoError(t, err)
	return f
}

// freshTarget opens an empty store and asset dir for restoring into.
func freshTarget(t *testing.T) (*sqlite.Store, *assets.Dir) {
	t.Helper()
	dir := t.TempDir()
	store, err := sqlite.Open(types.Config{DataDir: filepath.Join(dir, "data")})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	assetDir, err := assets.NewDir(filepath.Join(dir, "videos"))
	require.NoError(t, err)
	return store, assetDir
}

func TestRestoreRoundTripIdentity(t *testing.T) {
	f := backupFixture(t)
	target, targetAssets := freshTarget(t)

	sink := &recordSink{}
	restorer := NewRestorer(target, targetAssets, nil)
	report, err := restorer.Run(context.Background(), f.dest, sink)
	require.NoError(t, err)

	assert.Equal(t, StoreRestored, report.StoreState)
	require.Len(t, sink.completed, 1)
	sink.assertMonotonic(t)

	// Every table matches the source row-for-row, field-for-field.
	sourceSnap, err := f.store.ReadSnapshot()
	require.NoError(t, err)
	targetSnap, err := target.ReadSnapshot()
	require.NoError(t, err)
	for _, table := range types.AllTables() {
		assert.Equal(t, sourceSnap[table], targetSnap[table], "table %s", table)
		assert.Equal(t, len(sourceSnap[table]), report.RestoredRows[table], "reported count for %s", table)
	}

	// The video asset followed the rows.
	assert.Equal(t, 1, report.RestoredAssets)
	data, err := targetAssets.ResolveAsset("cascade.mp4")
	require.NoError(t, err)
	assert.Equal(t, []byte("cascade footage"), data)
	assert.Zero(t, report.NulledRefs)
}

func TestRestoreClearsPopulatedStore(t *testing.T) {
	// Back up an empty store, then restore it over a populated one: the
	// populated store ends up empty with no errors.
	empty := newFixture(t)
	engine := NewEngine(empty.store, empty.assets, nil, "test")
	_, err := engine.Run(context.Background(), empty.dest, types.NopProgress{})
	require.NoError(t, err)

	populated := newFixture(t)
	populated.populate(t)

	restorer := NewRestorer(populated.store, populated.assets, nil)
	report, err := restorer.Run(context.Background(), empty.dest, types.NopProgress{})
	require.NoError(t, err)
	assert.Equal(t, StoreRestored, report.StoreState)

	snap, err := populated.store.ReadSnapshot()
	require.NoError(t, err)
	for table, rows := range snap {
		assert.Empty(t, rows, "table %s", table)
		assert.Zero(t, report.RestoredRows[table])
	}
}

func TestRestoreIsRepeatable(t *testing.T) {
	// Restoring the same archive twice onto the same store reproduces
	// identical identities because each restore clears first.
	f := backupFixture(t)
	target, targetAssets := freshTarget(t)
	restorer := NewRestorer(target, targetAssets, nil)

	_, err := restorer.Run(context.Background(), f.dest, types.NopProgress{})
	require.NoError(t, err)
	first, err := target.ReadSnapshot()
	require.NoError(t, err)

	_, err = restorer.Run(context.Background(), f.dest, types.NopProgress{})
	require.NoError(t, err)
	second, err := target.ReadSnapshot()
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRestoreRejectsUnsupportedVersion(t *testing.T) {
	f := backupFixture(t)
	tampered := rewriteArchive(t, f.dest, func(meta *types.BackupMetadata, doc []byte) (*types.BackupMetadata, []byte) {
		meta.FormatVersion = "2.0.0"
		return meta, doc
	})

	target, targetAssets := freshTarget(t)
	seed := &types.Pattern{Name: "Keep me", Difficulty: 1, BallCount: 1}
	require.NoError(t, target.CreatePattern(seed))

	restorer := NewRestorer(target, targetAssets, nil)
	_, err := restorer.Run(context.Background(), tampered, types.NopProgress{})
	require.ErrorIs(t, err, types.ErrUnsupportedVersion)

	// Validation failed, so the store was never touched.
	got, err := target.GetPattern(seed.ID)
	require.NoError(t, err)
	assert.Equal(t, "Keep me", got.Name)
}

func TestRestoreRejectsCorruptedDocument(t *testing.T) {
	f := backupFixture(t)
	tampered := rewriteArchive(t, f.dest, func(meta *types.BackupMetadata, doc []byte) (*types.BackupMetadata, []byte) {
		flipped := make([]byte, len(doc))
		copy(flipped, doc)
		flipped[len(flipped)/2] ^= 0x01
		return meta, flipped
	})

	target, targetAssets := freshTarget(t)
	seed := &types.Pattern{Name: "Keep me", Difficulty: 1, BallCount: 1}
	require.NoError(t, target.CreatePattern(seed))

	sink := &recordSink{}
	restorer := NewRestorer(target, targetAssets, nil)
	report, err := restorer.Run(context.Background(), tampered, sink)
	require.ErrorIs(t, err, types.ErrChecksumMismatch)
	assert.Nil(t, report)
	require.Len(t, sink.failures, 1)

	_, err = target.GetPattern(seed.ID)
	assert.NoError(t, err)
}

func TestRestoreNullsMissingAssetRefs(t *testing.T) {
	f := newFixture(t)
	missing := "vanished.mp4"
	p := &types.Pattern{Name: "Shower", Difficulty: 3, BallCount: 3, VideoPath: &missing}
	require.NoError(t, f.store.CreatePattern(p))
	engine := NewEngine(f.store, f.assets, nil, "test")
	result, err := engine.Run(context.Background(), f.dest, types.NopProgress{})
	require.NoError(t, err)
	require.NotEmpty(t, result.SkippedAssets)

	target, targetAssets := freshTarget(t)
	restorer := NewRestorer(target, targetAssets, nil)
	report, err := restorer.Run(context.Background(), f.dest, types.NopProgress{})
	require.NoError(t, err)

	assert.Equal(t, 1, report.NulledRefs)
	assert.Zero(t, report.RestoredAssets)
	got, err := target.GetPattern(p.ID)
	require.NoError(t, err)
	assert.Nil(t, got.VideoPath, "a reference with no bytes behind it must be nulled")
}

func TestRoundTripPreservesNestedAssetReference(t *testing.T) {
	f := newFixture(t)
	nested := "sessions/2026/v.mp4"
	_, err := f.assets.StoreAsset(nested, []byte("nested footage"))
	require.NoError(t, err)
	p := &types.Pattern{Name: "Box", Difficulty: 4, BallCount: 3, VideoPath: &nested}
	require.NoError(t, f.store.CreatePattern(p))

	engine := NewEngine(f.store, f.assets, nil, "test")
	_, err = engine.Run(context.Background(), f.dest, types.NopProgress{})
	require.NoError(t, err)

	target, targetAssets := freshTarget(t)
	restorer := NewRestorer(target, targetAssets, nil)
	report, err := restorer.Run(context.Background(), f.dest, types.NopProgress{})
	require.NoError(t, err)

	// The restored row keeps its reference and the reference resolves.
	assert.Zero(t, report.NulledRefs)
	assert.Equal(t, 1, report.RestoredAssets)
	got, err := target.GetPattern(p.ID)
	require.NoError(t, err)
	require.NotNil(t, got.VideoPath)
	data, err := targetAssets.ResolveAsset(*got.VideoPath)
	require.NoError(t, err)
	assert.Equal(t, []byte("nested footage"), data)
}

func TestBackupKeepsAssetsWithSameBaseName(t *testing.T) {
	f := newFixture(t)
	left := "left/v.mp4"
	right := "right/v.mp4"
	_, err := f.assets.StoreAsset(left, []byte("left bytes"))
	require.NoError(t, err)
	_, err = f.assets.StoreAsset(right, []byte("right bytes"))
	require.NoError(t, err)
	require.NoError(t, f.store.CreatePattern(&types.Pattern{Name: "Left", Difficulty: 1, BallCount: 3, VideoPath: &left}))
	require.NoError(t, f.store.CreatePattern(&types.Pattern{Name: "Right", Difficulty: 1, BallCount: 3, VideoPath: &right}))

	engine := NewEngine(f.store, f.assets, nil, "test")
	result, err := engine.Run(context.Background(), f.dest, types.NopProgress{})
	require.NoError(t, err)
	assert.Empty(t, result.SkippedAssets)

	contents, err := archive.OpenArchive(f.dest)
	require.NoError(t, err)
	assert.Equal(t, []byte("left bytes"), contents.Assets["left/v.mp4"])
	assert.Equal(t, []byte("right bytes"), contents.Assets["right/v.mp4"])
}

// flakySessions wraps a real store and fails the insert of one table at a
// fixed row index.
type flakySessions struct {
	*sqlite.Store
	failTable string
	failRow   int
}

func (s *flakySessions) InsertRows(table string, rows []any) (int, error) {
	if table == s.failTable && len(rows) > s.failRow {
		n, err := s.Store.InsertRows(table, rows[:s.failRow])
		if err != nil {
			return n, err
		}
		return s.failRow, assert.AnError
	}
	return s.Store.InsertRows(table, rows)
}

func TestRestorePartialFailureReporting(t *testing.T) {
	f := newFixture(t)
	a := f.populate(t)
	// Two more sessions so the third session insert can fail.
	for i := 0; i < 2; i++ {
		date := time.Date(2026, 8, 13+i, 18, 0, 0, 0, time.UTC)
		require.NoError(t, f.store.CreateSession(&types.TestSession{PatternID: a.ID, Date: date, Duration: 60}))
	}
	engine := NewEngine(f.store, f.assets, nil, "test")
	_, err := engine.Run(context.Background(), f.dest, types.NopProgress{})
	require.NoError(t, err)

	target, targetAssets := freshTarget(t)
	flaky := &flakySessions{Store: target, failTable: types.TableTestSessions, failRow: 2}

	sink := &recordSink{}
	restorer := NewRestorer(flaky, targetAssets, nil)
	report, err := restorer.Run(context.Background(), f.dest, sink)
	require.Error(t, err)
	require.ErrorIs(t, err, types.ErrStoreCleared)

	var phaseErr *PhaseError
	require.ErrorAs(t, err, &phaseErr)
	assert.Equal(t, PhaseRestoringRows, phaseErr.Phase)
	assert.Equal(t, types.TableTestSessions, phaseErr.Table)
	assert.Equal(t, 2, phaseErr.Row)

	// Everything before sessions restored fully; sessions stopped at two.
	require.NotNil(t, report)
	assert.Equal(t, StorePartial, report.StoreState)
	assert.Equal(t, 2, report.RestoredRows[types.TablePatterns])
	assert.Equal(t, 1, report.RestoredRows[types.TableTags])
	assert.Equal(t, 1, report.RestoredRows[types.TablePatternTags])
	assert.Equal(t, 2, report.RestoredRows[types.TableTestSessions])

	snap, err := target.ReadSnapshot()
	require.NoError(t, err)
	assert.Len(t, snap[types.TablePatterns], 2)
	assert.Len(t, snap[types.TableTestSessions], 2)

	require.Len(t, sink.failures, 1)
	assert.Empty(t, sink.completed)
}

func TestRestoreFailureBeforeAnyRowReportsEmpty(t *testing.T) {
	f := backupFixture(t)
	target, targetAssets := freshTarget(t)

	// Fail the very first insert: the store was cleared but nothing landed,
	// so the report must say empty rather than partially populated.
	flaky := &flakySessions{Store: target, failTable: types.TablePatterns, failRow: 0}
	restorer := NewRestorer(flaky, targetAssets, nil)
	report, err := restorer.Run(context.Background(), f.dest, types.NopProgress{})
	require.Error(t, err)
	require.ErrorIs(t, err, types.ErrStoreCleared)

	require.NotNil(t, report)
	assert.Equal(t, StoreEmpty, report.StoreState)
	assert.Zero(t, report.RestoredRows[types.TablePatterns])

	snap, err := target.ReadSnapshot()
	require.NoError(t, err)
	for table, rows := range snap {
		assert.Empty(t, rows, "table %s", table)
	}
}

func TestRestoreRefusedAfterCancellation(t *testing.T) {
	f := backupFixture(t)
	target, targetAssets := freshTarget(t)
	seed := &types.Pattern{Name: "Keep me", Difficulty: 1, BallCount: 1}
	require.NoError(t, target.CreatePattern(seed))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	restorer := NewRestorer(target, targetAssets, nil)
	_, err := restorer.Run(ctx, f.dest, types.NopProgress{})
	require.ErrorIs(t, err, context.Canceled)

	// Cancellation lands before anything destructive.
	_, err = target.GetPattern(seed.ID)
	assert.NoError(t, err)
}

// rewriteArchive copies an archive while letting the test mutate metadata
// and document bytes, leaving the original untouched.
func rewriteArchive(t *testing.T, src string, mutate func(*types.BackupMetadata, []byte) (*types.BackupMetadata, []byte)) string {
	t.Helper()

	contents, err := archive.OpenArchive(src)
	require.NoError(t, err)
	meta, doc := mutate(contents.Meta, contents.Document)

	dest := filepath.Join(t.TempDir(), "tampered.zip")
	out, err := os.Create(dest)
	require.NoError(t, err)
	defer out.Close()

	zw := zip.NewWriter(out)
	metaBytes, err := json.Marshal(meta)
	require.NoError(t, err)
	writeRaw(t, zw, archive.MetadataEntry, metaBytes)
	writeRaw(t, zw, archive.DocumentEntry, doc)
	for name, data := range contents.Assets {
		writeRaw(t, zw, archive.AssetDir+name, data)
	}
	require.NoError(t, zw.Close())
	return dest
}

func writeRaw(t *testing.T, zw *zip.Writer, name string, data []byte) {
	t.Helper()
	w, err := zw.Create(name)
	require.NoError(t, err)
	_, err = w.Write(data)
	require.NoError(t, err)
}
