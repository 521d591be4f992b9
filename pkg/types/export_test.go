package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDatabaseExportSerializesEmptyArrays(t *testing.T) {
	doc := NewDatabaseExport()
	data, err := json.Marshal(doc)
	require.NoError(t, err)

	// An empty store must serialize as empty arrays, never null, so the
	// canonical encoding is stable regardless of how the document was built.
	assert.NotContains(t, string(data), "null")
	for _, table := range AllTables() {
		assert.Contains(t, string(data), `"`+table+`":[]`)
	}
}

func TestDatabaseExportAddAndRows(t *testing.T) {
	doc := NewDatabaseExport()

	require.NoError(t, doc.Add(TablePatterns, &Pattern{ID: 1, Name: "Cascade", Difficulty: 1, BallCount: 3}))
	require.NoError(t, doc.Add(TablePatterns, &Pattern{ID: 2, Name: "Mills Mess", Difficulty: 5, BallCount: 3}))
	require.NoError(t, doc.Add(TableTags, &Tag{ID: 1, Name: "warmup", Color: 0xFF0000}))
	require.NoError(t, doc.Add(TableRelated, &PatternRelated{PatternID: 1, RelatedID: 2}))

	rows, err := doc.Rows(TablePatterns)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Cascade", rows[0].(*Pattern).Name)
	assert.Equal(t, "Mills Mess", rows[1].(*Pattern).Name)

	counts := doc.Counts()
	assert.Equal(t, 2, counts[TablePatterns])
	assert.Equal(t, 1, counts[TableTags])
	assert.Equal(t, 1, counts[TableRelated])
	assert.Equal(t, 0, counts[TableTestSessions])
}

func TestDatabaseExportAddErrors(t *testing.T) {
	doc := NewDatabaseExport()

	assert.ErrorIs(t, doc.Add("nonsense", &Pattern{}), ErrUnknownTable)
	assert.ErrorIs(t, doc.Add(TablePatterns, &Tag{}), ErrInvalidData)

	_, err := doc.Rows("nonsense")
	assert.ErrorIs(t, err, ErrUnknownTable)
}

func TestAllTablesOrder(t *testing.T) {
	tables := AllTables()
	require.Len(t, tables, 9)

	// Patterns must come before everything that references them; sessions
	// come after the cross-reference relations.
	assert.Equal(t, TablePatterns, tables[0])
	idx := make(map[string]int, len(tables))
	for i, name := range tables {
		idx[name] = i
	}
	assert.Less(t, idx[TablePatterns], idx[TablePatternTags])
	assert.Less(t, idx[TableTags], idx[TablePatternTags])
	assert.Less(t, idx[TablePatterns], idx[TableTestSessions])
	assert.Less(t, idx[TableRelated], idx[TableTestSessions])
}
