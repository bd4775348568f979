package scoring

import "time"

// Scoring constants. Time bonus scales so a full 30 seconds of remaining
// time maps to the maximum 50 points; streak bonus is 10 points per
// existing streak length, capped at 50.
const (
	BaseScore       = 100
	MaxTimeBonus    = 50
	TimeBonusWindow = 30 * time.Second
	StreakBonusPer  = 10
	MaxStreakBonus  = 50
)

// RoundArgs describe one answered round.
type RoundArgs struct {
	Correct     bool
	AnsweredAt  time.Time
	OpenAt      time.Time
	RoundEndsAt time.Time
	PrevStreak  int
}

// Breakdown is the computed score delta and its components.
type Breakdown struct {
	Base        int `json:"base"`
	TimeBonus   int `json:"timeBonus"`
	StreakBonus int `json:"streakBonus"`
	Delta       int `json:"delta"`
	NextStreak  int `json:"nextStreak"`
}

// ScoreRound computes the point delta for a single answer. Pure and
// deterministic: the answer timestamp is clamped to the round's effective
// end, remaining time earns up to MaxTimeBonus linearly over the bonus
// window, and only correct answers earn anything.
func ScoreRound(args RoundArgs) Breakdown {
	breakdown := Breakdown{}
	if !args.Correct {
		return breakdown
	}

	breakdown.Base = BaseScore

	playerEndsAt := args.RoundEndsAt
	if args.OpenAt.After(playerEndsAt) {
		playerEndsAt = args.OpenAt
	}
	answeredAt := args.AnsweredAt
	if answeredAt.After(playerEndsAt) {
		answeredAt = playerEndsAt
	}
	remaining := playerEndsAt.Sub(answeredAt)
	if remaining < 0 {
		remaining = 0
	}
	breakdown.TimeBonus = clamp(int(remaining.Milliseconds()*MaxTimeBonus/TimeBonusWindow.Milliseconds()), 0, MaxTimeBonus)

	breakdown.StreakBonus = clamp(args.PrevStreak*StreakBonusPer, 0, MaxStreakBonus)
	breakdown.Delta = breakdown.Base + breakdown.TimeBonus + breakdown.StreakBonus
	breakdown.NextStreak = args.PrevStreak + 1
	return breakdown
}

func clamp(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
