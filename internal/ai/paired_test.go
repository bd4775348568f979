package ai

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dustinbroussard/trivia-sass-attack/internal/trivia"
)

func TestDiffTokenFor(t *testing.T) {
	token := DiffTokenFor(RoundMeta{
		RoundSeed:  "rs-9",
		Category:   trivia.CategoryGeography,
		Difficulty: trivia.DifficultyHard,
	})
	assert.Equal(t, "rs-9:geography:hard", token)
}

func TestGeneratePairedRound(t *testing.T) {
	q := testQuestion("round-seed")
	q.Category = trivia.CategoryGeography
	q.Difficulty = trivia.DifficultyMedium
	backend := &scriptedBackend{script: []*ChatResponse{
		contentResponse(questionContent(t, q)),
	}}
	g := NewGenerator(backend, nil, GeneratorConfig{MinInterval: time.Millisecond}, zerolog.Nop())

	pair, err := g.GeneratePairedRound(context.Background(), RoundMeta{
		RoundID:    "round-1",
		RoundSeed:  "round-seed",
		Category:   trivia.CategoryGeography,
		Difficulty: trivia.DifficultyMedium,
		Tone:       trivia.ToneSnark,
		Type:       RoundNormal,
	})
	require.NoError(t, err)
	assert.Equal(t, "round-seed", pair.A.SeedEcho)
	assert.Equal(t, "round-seed", pair.B.SeedEcho)
	// Both halves used the backend (no caching configured); the loser of
	// the shared rate limiter waited and retried rather than failing.
	assert.GreaterOrEqual(t, backend.calls, 2)

	// Both requests carried the shared diff token.
	token := DiffTokenFor(RoundMeta{RoundSeed: "round-seed", Category: trivia.CategoryGeography, Difficulty: trivia.DifficultyMedium})
	for _, req := range backend.requests {
		assert.Contains(t, req.Messages[1].Content, token)
	}
}

func TestGeneratePairedRoundCancelled(t *testing.T) {
	backend := &scriptedBackend{script: []*ChatResponse{
		contentResponse("not json"),
	}}
	g := NewGenerator(backend, nil, GeneratorConfig{MinInterval: time.Millisecond}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.GeneratePairedRound(ctx, RoundMeta{
		RoundSeed:  "round-seed",
		Category:   trivia.CategoryGeography,
		Difficulty: trivia.DifficultyMedium,
	})
	assert.Error(t, err)
}
