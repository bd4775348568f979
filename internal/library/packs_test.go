package library

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dustinbroussard/trivia-sass-attack/internal/trivia"
)

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	source := NewMemoryStore()

	science := sampleDoc("What gas makes up most of Earth's atmosphere today?")
	science.Category = trivia.CategoryScience
	_, err := source.PutMany(ctx, []QuestionDoc{
		sampleDoc("In what year did Columbus first cross the Atlantic?"),
		science,
	})
	require.NoError(t, err)

	docs, err := source.List(ctx, Filter{}, 100, 0)
	require.NoError(t, err)

	data, err := ExportPack(docs)
	require.NoError(t, err)

	var pack Pack
	require.NoError(t, json.Unmarshal(data, &pack))
	assert.Len(t, pack.Items, 2)
	assert.Equal(t, 1, pack.Counts.ByCategory[string(trivia.CategoryHistory)])
	assert.Equal(t, 1, pack.Counts.ByCategory[string(trivia.CategoryScience)])
	assert.Equal(t, 2, pack.Counts.ByDifficulty[string(trivia.DifficultyMedium)])

	dest := NewMemoryStore()
	result, err := ImportPack(ctx, dest, data)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Inserted)
	assert.Equal(t, 0, result.Duplicates)
	assert.Equal(t, 2, result.Total)

	// Importing the same pack again only yields duplicates.
	result, err = ImportPack(ctx, dest, data)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Inserted)
	assert.Equal(t, 2, result.Duplicates)
}

func TestImportPackAcceptsBareArray(t *testing.T) {
	ctx := context.Background()
	doc := sampleDoc("In what year did the Berlin Wall fall?")
	data, err := json.Marshal([]QuestionDoc{doc})
	require.NoError(t, err)

	store := NewMemoryStore()
	result, err := ImportPack(ctx, store, data)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Inserted)
}

func TestImportPackRejectsInvalidItems(t *testing.T) {
	ctx := context.Background()
	bad := sampleDoc("In what year did the Berlin Wall fall?")
	bad.Options = bad.Options[:2]
	data, err := json.Marshal([]QuestionDoc{bad})
	require.NoError(t, err)

	_, err = ImportPack(ctx, NewMemoryStore(), data)
	assert.Error(t, err)
}

func TestImportPackRecomputesHashesAndTagsSource(t *testing.T) {
	ctx := context.Background()
	doc := sampleDoc("In what year did the Berlin Wall fall?")
	doc.StemHash = "bogus-hash-from-file"
	data, err := json.Marshal([]QuestionDoc{doc})
	require.NoError(t, err)

	store := NewMemoryStore()
	_, err = ImportPack(ctx, store, data)
	require.NoError(t, err)

	docs, err := store.List(ctx, Filter{}, 10, 0)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, StemHashFor(docs[0]), docs[0].StemHash)
	assert.Equal(t, SourceImported, docs[0].Source)
}

func TestImportPackRejectsGarbage(t *testing.T) {
	_, err := ImportPack(context.Background(), NewMemoryStore(), []byte("not json at all"))
	assert.Error(t, err)
}
