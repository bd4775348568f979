package trivia

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validQuestion() Question {
	return Question{
		Category:     CategoryScience,
		Difficulty:   DifficultyMedium,
		SeedEcho:     "seed-123",
		Question:     "What planet is known as the Red Planet?",
		Options:      []string{"Venus", "Mars", "Jupiter", "Saturn"},
		CorrectIndex: 1,
		Explanation:  "Iron oxide dust gives Mars its reddish color.",
		Quips:        Quips{Correct: "Stellar work.", Incorrect: "Lost in space."},
	}
}

func TestQuestionValidate(t *testing.T) {
	require.NoError(t, validQuestion().Validate())

	cases := []struct {
		name   string
		mutate func(*Question)
	}{
		{"bad category", func(q *Question) { q.Category = "philosophy" }},
		{"bad difficulty", func(q *Question) { q.Difficulty = "brutal" }},
		{"missing seed echo", func(q *Question) { q.SeedEcho = "" }},
		{"question too short", func(q *Question) { q.Question = "Hi?" }},
		{"question too long", func(q *Question) { q.Question = strings.Repeat("x", 281) }},
		{"three options", func(q *Question) { q.Options = q.Options[:3] }},
		{"empty option", func(q *Question) { q.Options[2] = "" }},
		{"index out of range", func(q *Question) { q.CorrectIndex = 4 }},
		{"negative index", func(q *Question) { q.CorrectIndex = -1 }},
		{"explanation too short", func(q *Question) { q.Explanation = "ok" }},
		{"quip too short", func(q *Question) { q.Quips.Correct = "!" }},
		{"quip too long", func(q *Question) { q.Quips.Incorrect = strings.Repeat("z", 161) }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q := validQuestion()
			tc.mutate(&q)
			assert.Error(t, q.Validate())
		})
	}
}

func TestStemHashIgnoresCaseAndWhitespace(t *testing.T) {
	a := validQuestion()
	b := validQuestion()
	b.Question = "  WHAT planet IS known as the red planet?  "
	b.Options = []string{" venus ", "MARS", "jupiter", " Saturn"}
	b.Explanation = "IRON oxide dust gives Mars its reddish color.  "

	assert.Equal(t, StemHash(a), StemHash(b))
}

func TestStemHashDistinguishesContent(t *testing.T) {
	a := validQuestion()

	b := validQuestion()
	b.Question = "What planet is known as the Blue Planet?"
	assert.NotEqual(t, StemHash(a), StemHash(b))

	c := validQuestion()
	c.Options = []string{"Mars", "Venus", "Jupiter", "Saturn"} // order matters
	assert.NotEqual(t, StemHash(a), StemHash(c))

	d := validQuestion()
	d.Difficulty = DifficultyHard
	assert.NotEqual(t, StemHash(a), StemHash(d))
}

func TestStemHashIgnoresQuipsAndSeed(t *testing.T) {
	a := validQuestion()
	b := validQuestion()
	b.SeedEcho = "another-seed"
	b.Quips = Quips{Correct: "Different quip.", Incorrect: "Also different."}

	assert.Equal(t, StemHash(a), StemHash(b))
}

func TestHashPayloadShape(t *testing.T) {
	payload := HashPayload(validQuestion())
	assert.Equal(t,
		"science::medium::what planet is known as the red planet?::venus|mars|jupiter|saturn::iron oxide dust gives mars its reddish color.",
		payload)
}
