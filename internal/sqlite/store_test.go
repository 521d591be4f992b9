package sqlite

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jugglevault/jugglevault/pkg/types"
)

// setupStore opens a Store in a fresh temp directory and closes it when the
// test ends.
func setupStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(types.Config{DataDir: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// mkPattern inserts a minimal valid pattern and returns it.
func mkPattern(t *testing.T, s *Store, name string) *types.Pattern {
	t.Helper()
	p := &types.Pattern{Name: name, Difficulty: 3, BallCount: 3}
	require.NoError(t, s.CreatePattern(p))
	return p
}

func TestOpenRejectsEmptyDataDir(t *testing.T) {
	_, err := Open(types.Config{})
	assert.ErrorIs(t, err, types.ErrDataDirEmpty)
}

func TestCloseIsIdempotent(t *testing.T) {
	s, err := Open(types.Config{DataDir: t.TempDir()})
	require.NoError(t, err)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	_, err = s.ListPatterns()
	assert.ErrorIs(t, err, types.ErrStoreClosed)
}

func TestSchemaVersion(t *testing.T) {
	s := setupStore(t)
	v, err := s.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, schemaVersion, v)
}

func TestPatternCRUD(t *testing.T) {
	s := setupStore(t)

	video := "cascade.mp4"
	p := &types.Pattern{Name: "Cascade", Difficulty: 2, BallCount: 3, VideoPath: &video}
	require.NoError(t, s.CreatePattern(p))
	assert.NotZero(t, p.ID)

	got, err := s.GetPattern(p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cascade", got.Name)
	require.NotNil(t, got.VideoPath)
	assert.Equal(t, "cascade.mp4", *got.VideoPath)
	assert.Nil(t, got.LastTested)

	got.Difficulty = 4
	require.NoError(t, s.UpdatePattern(got))
	got2, err := s.GetPattern(p.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got2.Difficulty)

	require.NoError(t, s.DeletePattern(p.ID))
	_, err = s.GetPattern(p.ID)
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.ErrorIs(t, s.DeletePattern(p.ID), types.ErrNotFound)
}

func TestCreatePatternValidates(t *testing.T) {
	s := setupStore(t)
	assert.ErrorIs(t, s.CreatePattern(&types.Pattern{Difficulty: 1, BallCount: 1}), types.ErrEmptyName)
	assert.ErrorIs(t, s.CreatePattern(&types.Pattern{Name: "x", Difficulty: 0, BallCount: 1}), types.ErrInvalidDifficulty)
}

func TestSessionStampsLastTested(t *testing.T) {
	s := setupStore(t)
	p := mkPattern(t, s, "Cascade")

	date := time.Date(2026, 8, 12, 18, 0, 0, 0, time.UTC)
	sess := &types.TestSession{PatternID: p.ID, Date: date, Duration: 300, SuccessCount: 7, AttemptCount: 10}
	require.NoError(t, s.CreateSession(sess))
	assert.NotZero(t, sess.ID)

	got, err := s.GetPattern(p.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastTested)
	assert.True(t, got.LastTested.Equal(date))
}

func TestDeletePatternCascades(t *testing.T) {
	s := setupStore(t)
	a := mkPattern(t, s, "Cascade")
	b := mkPattern(t, s, "Mills Mess")

	tag := &types.Tag{Name: "warmup", Color: 1}
	require.NoError(t, s.CreateTag(tag))
	require.NoError(t, s.TagPattern(a.ID, tag.ID))
	require.NoError(t, s.AddPrerequisite(b.ID, a.ID))
	require.NoError(t, s.AddRelated(a.ID, b.ID))

	sess := &types.TestSession{PatternID: a.ID, Date: time.Now(), Duration: 60}
	require.NoError(t, s.CreateSession(sess))

	evt := &types.UsageEvent{EventType: types.EventPatternViewed, PatternID: &a.ID}
	require.NoError(t, s.RecordUsage(evt))

	require.NoError(t, s.DeletePattern(a.ID))

	// Sessions and every cross-reference row naming the pattern are gone.
	sessions, err := s.ListSessions(0)
	require.NoError(t, err)
	assert.Empty(t, sessions)
	for _, table := range []string{
		types.TablePatternTags, types.TablePrerequisites,
		types.TableDependents, types.TableRelated,
	} {
		rows, err := s.ReadAllRows(table)
		require.NoError(t, err)
		assert.Empty(t, rows, "table %s should be empty after cascade", table)
	}

	// The usage event survives with its pattern reference nulled.
	events, err := s.ReadAllRows(types.TableUsageEvents)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Nil(t, events[0].(*types.UsageEvent).PatternID)
}

func TestDeleteTagRemovesOnlyCrossRefs(t *testing.T) {
	s := setupStore(t)
	p := mkPattern(t, s, "Cascade")
	tag := &types.Tag{Name: "warmup", Color: 1}
	require.NoError(t, s.CreateTag(tag))
	require.NoError(t, s.TagPattern(p.ID, tag.ID))

	require.NoError(t, s.DeleteTag(tag.ID))

	rows, err := s.ReadAllRows(types.TablePatternTags)
	require.NoError(t, err)
	assert.Empty(t, rows)
	_, err = s.GetPattern(p.ID)
	assert.NoError(t, err)
}

func TestCrossRefSetSemantics(t *testing.T) {
	s := setupStore(t)
	a := mkPattern(t, s, "Cascade")
	b := mkPattern(t, s, "Mills Mess")

	require.NoError(t, s.AddRelated(a.ID, b.ID))
	assert.ErrorIs(t, s.AddRelated(a.ID, b.ID), types.ErrDuplicatePair)

	// The reverse pair is a distinct row, not a duplicate.
	assert.NoError(t, s.AddRelated(b.ID, a.ID))
}

func TestSelfReferenceRejected(t *testing.T) {
	s := setupStore(t)
	p := mkPattern(t, s, "Cascade")

	assert.ErrorIs(t, s.AddRelated(p.ID, p.ID), types.ErrSelfReference)
	assert.ErrorIs(t, s.AddPrerequisite(p.ID, p.ID), types.ErrSelfReference)

	rows, err := s.ReadAllRows(types.TableRelated)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestPrerequisiteMaintainsInversePair(t *testing.T) {
	s := setupStore(t)
	a := mkPattern(t, s, "Cascade")
	b := mkPattern(t, s, "Mills Mess")

	require.NoError(t, s.AddPrerequisite(b.ID, a.ID))

	prereqs, err := s.ReadAllRows(types.TablePrerequisites)
	require.NoError(t, err)
	require.Len(t, prereqs, 1)
	deps, err := s.ReadAllRows(types.TableDependents)
	require.NoError(t, err)
	require.Len(t, deps, 1)
	assert.Equal(t, a.ID, deps[0].(*types.PatternDependent).PatternID)
	assert.Equal(t, b.ID, deps[0].(*types.PatternDependent).DependentID)

	require.NoError(t, s.RemovePrerequisite(b.ID, a.ID))
	deps, err = s.ReadAllRows(types.TableDependents)
	require.NoError(t, err)
	assert.Empty(t, deps)
}

func TestAddDependentIsInverseOfAddPrerequisite(t *testing.T) {
	s := setupStore(t)
	a := mkPattern(t, s, "Cascade")
	b := mkPattern(t, s, "Mills Mess")

	require.NoError(t, s.AddDependent(a.ID, b.ID))

	prereqs, err := s.ReadAllRows(types.TablePrerequisites)
	require.NoError(t, err)
	require.Len(t, prereqs, 1)
	assert.Equal(t, b.ID, prereqs[0].(*types.PatternPrerequisite).PatternID)
	assert.Equal(t, a.ID, prereqs[0].(*types.PatternPrerequisite).PrerequisiteID)

	require.NoError(t, s.RemoveDependent(a.ID, b.ID))
	prereqs, err = s.ReadAllRows(types.TablePrerequisites)
	require.NoError(t, err)
	assert.Empty(t, prereqs)
}

func TestRecordUsageSessionLogged(t *testing.T) {
	s := setupStore(t)
	a := mkPattern(t, s, "Cascade")
	duration := int64(300)

	require.NoError(t, s.RecordUsage(&types.UsageEvent{
		EventType: types.EventSessionLogged,
		PatternID: &a.ID,
		Duration:  &duration,
	}))

	rows, err := s.ReadAllRows(types.TableUsageEvents)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	evt := rows[0].(*types.UsageEvent)
	assert.Equal(t, types.EventSessionLogged, evt.EventType)
	require.NotNil(t, evt.PatternID)
	assert.Equal(t, a.ID, *evt.PatternID)
	require.NotNil(t, evt.Duration)
	assert.Equal(t, duration, *evt.Duration)
}

func TestRecordUsageRejectsUnknownType(t *testing.T) {
	s := setupStore(t)
	err := s.RecordUsage(&types.UsageEvent{EventType: "window_resized"})
	assert.ErrorIs(t, err, types.ErrInvalidData)
}

func TestBumpWeeklyUsageUpserts(t *testing.T) {
	s := setupStore(t)
	when := time.Date(2026, 8, 12, 10, 0, 0, 0, time.UTC) // A Wednesday.

	require.NoError(t, s.BumpWeeklyUsage(when, WeeklyDelta{Points: 5, TestsCompleted: 1, TotalTestDuration: 300}))
	require.NoError(t, s.BumpWeeklyUsage(when.AddDate(0, 0, 1), WeeklyDelta{Points: 3, AppOpens: 2}))

	weeks, err := s.ListWeeklyUsage()
	require.NoError(t, err)
	require.Len(t, weeks, 1, "same calendar week must upsert one row")
	assert.Equal(t, 8, weeks[0].Points)
	assert.Equal(t, 1, weeks[0].TestsCompleted)
	assert.Equal(t, int64(300), weeks[0].TotalTestDuration)
	assert.Equal(t, 2, weeks[0].AppOpens)
	assert.True(t, weeks[0].WeekStart.Equal(time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)))

	// The following Monday starts a new row.
	require.NoError(t, s.BumpWeeklyUsage(when.AddDate(0, 0, 7), WeeklyDelta{Points: 1}))
	weeks, err = s.ListWeeklyUsage()
	require.NoError(t, err)
	assert.Len(t, weeks, 2)
}

func TestWeekStart(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{
			name: "wednesday maps to monday",
			in:   time.Date(2026, 8, 12, 23, 30, 0, 0, time.UTC),
			want: time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "monday maps to itself",
			in:   time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC),
			want: time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "sunday belongs to prior monday",
			in:   time.Date(2026, 8, 16, 12, 0, 0, 0, time.UTC),
			want: time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, WeekStart(tt.in).Equal(tt.want))
		})
	}
}
