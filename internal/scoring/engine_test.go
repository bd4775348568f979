package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var t0 = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestScoreRoundInstantAnswer(t *testing.T) {
	b := ScoreRound(RoundArgs{
		Correct:     true,
		AnsweredAt:  t0,
		OpenAt:      t0,
		RoundEndsAt: t0.Add(30 * time.Second),
	})
	assert.Equal(t, 100, b.Base)
	assert.Equal(t, 50, b.TimeBonus)
	assert.Equal(t, 0, b.StreakBonus)
	assert.Equal(t, 150, b.Delta)
	assert.Equal(t, 1, b.NextStreak)
}

func TestScoreRoundHalfway(t *testing.T) {
	b := ScoreRound(RoundArgs{
		Correct:     true,
		AnsweredAt:  t0.Add(15 * time.Second),
		OpenAt:      t0,
		RoundEndsAt: t0.Add(30 * time.Second),
	})
	assert.Equal(t, 25, b.TimeBonus)
	assert.Equal(t, 125, b.Delta)
}

func TestScoreRoundTimeBonusFloors(t *testing.T) {
	// 100ms remaining: floor(100*50/30000) = 0
	b := ScoreRound(RoundArgs{
		Correct:     true,
		AnsweredAt:  t0.Add(29*time.Second + 900*time.Millisecond),
		OpenAt:      t0,
		RoundEndsAt: t0.Add(30 * time.Second),
	})
	assert.Equal(t, 0, b.TimeBonus)
	assert.Equal(t, 100, b.Delta)
}

func TestScoreRoundLateAnswerClamped(t *testing.T) {
	b := ScoreRound(RoundArgs{
		Correct:     true,
		AnsweredAt:  t0.Add(45 * time.Second),
		OpenAt:      t0,
		RoundEndsAt: t0.Add(30 * time.Second),
	})
	assert.Equal(t, 0, b.TimeBonus)
	assert.Equal(t, 100, b.Delta)
}

func TestScoreRoundStreakBonus(t *testing.T) {
	answered := t0.Add(30 * time.Second)
	for prev, want := range map[int]int{0: 0, 1: 10, 3: 30, 5: 50, 12: 50} {
		b := ScoreRound(RoundArgs{
			Correct:     true,
			AnsweredAt:  answered,
			OpenAt:      t0,
			RoundEndsAt: answered,
			PrevStreak:  prev,
		})
		assert.Equal(t, want, b.StreakBonus, "prev streak %d", prev)
		assert.Equal(t, prev+1, b.NextStreak)
	}
}

func TestScoreRoundIncorrect(t *testing.T) {
	b := ScoreRound(RoundArgs{
		Correct:     false,
		AnsweredAt:  t0,
		OpenAt:      t0,
		RoundEndsAt: t0.Add(30 * time.Second),
		PrevStreak:  7,
	})
	assert.Equal(t, Breakdown{}, b)
}

func TestScoreRoundOpenAfterEnd(t *testing.T) {
	// Round window already over when the question opened; the effective
	// end moves to openAt so remaining time never goes negative.
	b := ScoreRound(RoundArgs{
		Correct:     true,
		AnsweredAt:  t0,
		OpenAt:      t0.Add(time.Minute),
		RoundEndsAt: t0.Add(30 * time.Second),
	})
	assert.Equal(t, 50, b.TimeBonus)
}
