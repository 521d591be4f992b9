package sqlite

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jugglevault/jugglevault/pkg/types"
)

func TestReadAllRowsOrderAndTypes(t *testing.T) {
	s := setupStore(t)
	mkPattern(t, s, "Cascade")
	mkPattern(t, s, "Mills Mess")
	mkPattern(t, s, "Burke's Barrage")

	rows, err := s.ReadAllRows(types.TablePatterns)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	var prev int64
	for _, row := range rows {
		p, ok := row.(*types.Pattern)
		require.True(t, ok)
		assert.Greater(t, p.ID, prev, "rows must arrive in primary-key ascending order")
		prev = p.ID
	}
}

func TestReadAllRowsUnknownTable(t *testing.T) {
	s := setupStore(t)
	_, err := s.ReadAllRows("nonsense")
	assert.ErrorIs(t, err, types.ErrUnknownTable)
	assert.ErrorIs(t, s.ClearTable("nonsense"), types.ErrUnknownTable)
	_, err = s.InsertRows("nonsense", nil)
	assert.ErrorIs(t, err, types.ErrUnknownTable)
}

func TestReadSnapshotCoversEveryTable(t *testing.T) {
	s := setupStore(t)
	a := mkPattern(t, s, "Cascade")
	b := mkPattern(t, s, "Mills Mess")
	tag := &types.Tag{Name: "warmup", Color: 7}
	require.NoError(t, s.CreateTag(tag))
	require.NoError(t, s.TagPattern(a.ID, tag.ID))
	require.NoError(t, s.AddPrerequisite(b.ID, a.ID))
	require.NoError(t, s.AddRelated(a.ID, b.ID))
	require.NoError(t, s.CreateSession(&types.TestSession{PatternID: a.ID, Date: time.Now(), Duration: 30}))
	require.NoError(t, s.RecordUsage(&types.UsageEvent{EventType: types.EventPatternViewed}))
	require.NoError(t, s.BumpWeeklyUsage(time.Now(), WeeklyDelta{AppOpens: 1}))

	snap, err := s.ReadSnapshot()
	require.NoError(t, err)
	require.Len(t, snap, 9)
	assert.Len(t, snap[types.TablePatterns], 2)
	assert.Len(t, snap[types.TableTags], 1)
	assert.Len(t, snap[types.TablePatternTags], 1)
	assert.Len(t, snap[types.TablePrerequisites], 1)
	assert.Len(t, snap[types.TableDependents], 1)
	assert.Len(t, snap[types.TableRelated], 1)
	assert.Len(t, snap[types.TableTestSessions], 1)
	assert.Len(t, snap[types.TableUsageEvents], 1)
	assert.Len(t, snap[types.TableWeeklyUsage], 1)
}

func TestClearTable(t *testing.T) {
	s := setupStore(t)
	mkPattern(t, s, "Cascade")

	require.NoError(t, s.ClearTable(types.TablePatterns))
	rows, err := s.ReadAllRows(types.TablePatterns)
	require.NoError(t, err)
	assert.Empty(t, rows)

	// After a clear, fresh inserts start from ID 1 again.
	p := mkPattern(t, s, "Mills Mess")
	assert.Equal(t, int64(1), p.ID)
}

func TestInsertRowsReusesPrimaryKeys(t *testing.T) {
	s := setupStore(t)

	notes := "solid run"
	n, err := s.InsertRows(types.TablePatterns, []any{
		&types.Pattern{ID: 10, Name: "Cascade", Difficulty: 1, BallCount: 3},
		&types.Pattern{ID: 42, Name: "Mills Mess", Difficulty: 5, BallCount: 3},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = s.InsertRows(types.TableTestSessions, []any{
		&types.TestSession{ID: 7, PatternID: 42, Date: time.Now().UTC(), Duration: 90, SuccessCount: 2, AttemptCount: 3, Notes: &notes},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := s.GetPattern(42)
	require.NoError(t, err)
	assert.Equal(t, "Mills Mess", got.Name)

	sessions, err := s.ListSessions(42)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, int64(7), sessions[0].ID)
	require.NotNil(t, sessions[0].Notes)
	assert.Equal(t, "solid run", *sessions[0].Notes)
}

func TestInsertRowsReportsPartialProgress(t *testing.T) {
	s := setupStore(t)

	// The second row violates the unique name constraint; exactly one row
	// must land and the count must say so.
	n, err := s.InsertRows(types.TableTags, []any{
		&types.Tag{ID: 1, Name: "warmup", Color: 1},
		&types.Tag{ID: 2, Name: "warmup", Color: 2},
		&types.Tag{ID: 3, Name: "showpiece", Color: 3},
	})
	require.Error(t, err)
	assert.Equal(t, 1, n)

	rows, err := s.ReadAllRows(types.TableTags)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestInsertRowsTypeMismatch(t *testing.T) {
	s := setupStore(t)
	n, err := s.InsertRows(types.TablePatterns, []any{&types.Tag{Name: "x"}})
	assert.ErrorIs(t, err, types.ErrInvalidData)
	assert.Zero(t, n)
}
