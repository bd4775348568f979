package library

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dustinbroussard/trivia-sass-attack/internal/ai"
	"github.com/dustinbroussard/trivia-sass-attack/internal/trivia"
)

type fakeGenerator struct {
	calls int
	fail  map[int]error // call ordinal (1-based) -> error
	dup   map[int]bool  // call ordinal -> repeat the first question
}

func (f *fakeGenerator) GenerateQuestion(ctx context.Context, params ai.GenerateParams) (*trivia.Question, error) {
	f.calls++
	if err, ok := f.fail[f.calls]; ok {
		return nil, err
	}
	n := f.calls
	if f.dup[f.calls] {
		n = 1
	}
	q := trivia.Question{
		Category:     params.Category,
		Difficulty:   params.Difficulty,
		SeedEcho:     fmt.Sprintf("seed-%d", n),
		Question:     fmt.Sprintf("Generated question number %d, what is the answer?", n),
		Options:      []string{"Alpha", "Beta", "Gamma", "Delta"},
		CorrectIndex: 2,
		Explanation:  "Gamma is correct because the generator said so.",
		Quips:        trivia.Quips{Correct: "Sharp!", Incorrect: "Oof."},
	}
	return &q, nil
}

func newTestFiller(gen *fakeGenerator, store Store) *Filler {
	f := NewFiller(gen, store, nil, zerolog.Nop())
	f.sleep = func(time.Duration) {}
	return f
}

func TestFillerRunCountsInsertsAndDuplicates(t *testing.T) {
	store := NewMemoryStore()
	gen := &fakeGenerator{dup: map[int]bool{3: true}}
	filler := newTestFiller(gen, store)

	summary := filler.Run(context.Background(), FillOptions{
		Category:   trivia.CategoryScience,
		Difficulty: trivia.DifficultyEasy,
		Amount:     4,
	})

	assert.Equal(t, 4, summary.Requested)
	assert.Equal(t, 4, summary.Processed)
	assert.Equal(t, 3, summary.Inserted)
	assert.Equal(t, 1, summary.Duplicates)
	assert.Equal(t, 0, summary.Errors)
	assert.False(t, summary.Cancelled)

	count, err := store.Count(context.Background(), Filter{})
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestFillerRunSurvivesGenerationErrors(t *testing.T) {
	store := NewMemoryStore()
	gen := &fakeGenerator{fail: map[int]error{2: errors.New("model unavailable")}}
	filler := newTestFiller(gen, store)

	summary := filler.Run(context.Background(), FillOptions{
		Category:   trivia.CategoryHistory,
		Difficulty: trivia.DifficultyMedium,
		Amount:     3,
	})

	assert.Equal(t, 3, summary.Processed)
	assert.Equal(t, 2, summary.Inserted)
	assert.Equal(t, 1, summary.Errors)
}

func TestFillerRunMirrorsEnrichedDocs(t *testing.T) {
	var mirrored []QuestionDoc
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Items []QuestionDoc `json:"items"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		mirrored = append(mirrored, payload.Items...)
		_ = json.NewEncoder(w).Encode(map[string]int{"inserted": len(payload.Items)})
	}))
	defer srv.Close()

	store := NewMemoryStore()
	gen := &fakeGenerator{}
	filler := NewFiller(gen, store, NewMirror(MirrorConfig{BaseURL: srv.URL}, zerolog.Nop()), zerolog.Nop())
	filler.sleep = func(time.Duration) {}

	summary := filler.Run(context.Background(), FillOptions{
		Category:    trivia.CategoryScience,
		Difficulty:  trivia.DifficultyEasy,
		Amount:      2,
		SyncToCloud: true,
	})
	require.Equal(t, 2, summary.Inserted)

	// The mirror must see the same identity the local store persisted,
	// never a bare pre-insert candidate.
	require.Len(t, mirrored, 2)
	for _, doc := range mirrored {
		assert.NotEmpty(t, doc.ID)
		assert.False(t, doc.CreatedAt.IsZero())
		assert.Equal(t, StemHashFor(doc), doc.StemHash)
	}
	assert.NotEqual(t, mirrored[0].StemHash, mirrored[1].StemHash)
}

func TestFillerRunHonorsCancellation(t *testing.T) {
	store := NewMemoryStore()
	gen := &fakeGenerator{}
	filler := newTestFiller(gen, store)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary := filler.Run(ctx, FillOptions{
		Category:   trivia.CategoryHistory,
		Difficulty: trivia.DifficultyMedium,
		Amount:     5,
	})

	assert.True(t, summary.Cancelled)
	assert.Zero(t, summary.Processed)
	assert.Zero(t, gen.calls)
}
