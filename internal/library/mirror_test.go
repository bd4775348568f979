package library

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dustinbroussard/trivia-sass-attack/internal/trivia"
)

func TestMirrorUpsertMany(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/questions/upsert", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		var payload struct {
			Items []QuestionDoc `json:"items"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		_ = json.NewEncoder(w).Encode(map[string]int{"inserted": len(payload.Items)})
	}))
	defer srv.Close()

	mirror := NewMirror(MirrorConfig{BaseURL: srv.URL, APIKey: "mk"}, zerolog.Nop())
	result := mirror.UpsertMany(context.Background(), []QuestionDoc{
		sampleDoc("In what year did Columbus first cross the Atlantic?"),
	})
	assert.Equal(t, PutResult{Inserted: 1}, result)
	assert.Equal(t, "Bearer mk", gotAuth)
}

func TestMirrorUpsertFailureIsNonFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	mirror := NewMirror(MirrorConfig{BaseURL: srv.URL}, zerolog.Nop())
	docs := []QuestionDoc{sampleDoc("In what year did Columbus first cross the Atlantic?")}
	result := mirror.UpsertMany(context.Background(), docs)
	assert.Equal(t, PutResult{Duplicates: 1}, result)
}

func TestMirrorDisabledNoops(t *testing.T) {
	mirror := NewMirror(MirrorConfig{}, zerolog.Nop())
	assert.False(t, mirror.Enabled())

	docs := []QuestionDoc{sampleDoc("In what year did Columbus first cross the Atlantic?")}
	assert.Equal(t, PutResult{Duplicates: 1}, mirror.UpsertMany(context.Background(), docs))
	assert.Nil(t, mirror.FetchBatch(context.Background(), trivia.CategoryHistory, trivia.DifficultyEasy, 10, nil))
}

func TestMirrorFetchBatchFiltersExcluded(t *testing.T) {
	keep := sampleDoc("In what year did the Berlin Wall fall?")
	keep.StemHash = StemHashFor(keep)
	skip := sampleDoc("In what year did Columbus first cross the Atlantic?")
	skip.StemHash = StemHashFor(skip)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "history", r.URL.Query().Get("category"))
		assert.Equal(t, "medium", r.URL.Query().Get("difficulty"))
		_ = json.NewEncoder(w).Encode(map[string]any{"items": []QuestionDoc{keep, skip}})
	}))
	defer srv.Close()

	mirror := NewMirror(MirrorConfig{BaseURL: srv.URL}, zerolog.Nop())
	items := mirror.FetchBatch(context.Background(), trivia.CategoryHistory, trivia.DifficultyMedium, 10, []string{skip.StemHash})
	require.Len(t, items, 1)
	assert.Equal(t, keep.StemHash, items[0].StemHash)
}
