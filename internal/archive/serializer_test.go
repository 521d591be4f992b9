package archive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jugglevault/jugglevault/pkg/types"
)

func sampleDoc() *types.DatabaseExport {
	doc := types.NewDatabaseExport()
	video := "cascade.mp4"
	doc.Patterns = append(doc.Patterns,
		types.Pattern{ID: 1, Name: "Cascade", Difficulty: 1, BallCount: 3, VideoPath: &video},
		types.Pattern{ID: 2, Name: "Mills Mess", Difficulty: 5, BallCount: 3},
	)
	doc.Tags = append(doc.Tags, types.Tag{ID: 1, Name: "warmup", Color: 0xFFAA00})
	doc.PatternTags = append(doc.PatternTags, types.PatternTag{PatternID: 1, TagID: 1})
	doc.Related = append(doc.Related, types.PatternRelated{PatternID: 1, RelatedID: 2})
	return doc
}

func TestRenderIsDeterministic(t *testing.T) {
	doc := sampleDoc()

	data1, sum1, err := Render(doc)
	require.NoError(t, err)
	data2, sum2, err := Render(doc)
	require.NoError(t, err)

	assert.Equal(t, data1, data2)
	assert.Equal(t, sum1, sum2)
	assert.Len(t, sum1, 64, "hex SHA-256")
}

func TestRenderParseRoundTrip(t *testing.T) {
	doc := sampleDoc()
	data, sum, err := Render(doc)
	require.NoError(t, err)

	parsed, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, doc, parsed)

	assert.NoError(t, Verify(data, sum))
}

func TestVerifyDetectsEveryByteFlip(t *testing.T) {
	data, sum, err := Render(sampleDoc())
	require.NoError(t, err)

	// Flipping any single byte must change the digest. Walking every offset
	// keeps the property deterministic rather than probabilistic.
	for i := range data {
		corrupted := make([]byte, len(data))
		copy(corrupted, data)
		corrupted[i] ^= 0x01
		assert.ErrorIs(t, Verify(corrupted, sum), types.ErrChecksumMismatch,
			"flip at offset %d must be detected", i)
	}
}

func TestParseMalformed(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{name: "not JSON", data: []byte("definitely not json")},
		{name: "wrong top-level type", data: []byte(`[1,2,3]`)},
		{name: "wrong field type", data: []byte(`{"patterns": 17}`)},
		{name: "truncated", data: []byte(`{"patterns": [`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.data)
			assert.ErrorIs(t, err, types.ErrMalformedArchive)
		})
	}
}

func TestParseToleratesUnknownFields(t *testing.T) {
	// A forward-compatible minor version may add fields; they are ignored.
	data := []byte(`{"patterns":[{"id":1,"name":"Cascade","difficulty":1,"ball_count":3,"juggler_mood":"great"}],"future_table":[]}`)
	doc, err := Parse(data)
	require.NoError(t, err)
	require.Len(t, doc.Patterns, 1)
	assert.Equal(t, "Cascade", doc.Patterns[0].Name)
}

func TestEmptyDocumentChecksumIsStable(t *testing.T) {
	data1, sum1, err := Render(types.NewDatabaseExport())
	require.NoError(t, err)
	_, sum2, err := Render(types.NewDatabaseExport())
	require.NoError(t, err)

	assert.Equal(t, sum1, sum2)
	assert.NotContains(t, string(data1), "null")
}
