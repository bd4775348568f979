package ai

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dustinbroussard/trivia-sass-attack/internal/trivia"
)

// RoundType tags the kind of round a pair is generated for.
type RoundType string

const (
	RoundNormal      RoundType = "normal"
	RoundBinaryBlitz RoundType = "binary_blitz"
	RoundSpeedLink   RoundType = "speed_link"
	RoundFinalAttack RoundType = "final_attack"
)

// RoundMeta identifies one symmetric multiplayer round.
type RoundMeta struct {
	RoundID    string
	RoundSeed  string
	Category   trivia.Category
	Difficulty trivia.Difficulty
	Tone       trivia.Tone
	Type       RoundType
}

// Pair couples two independently validated questions sharing a round
// seed and difficulty token: fact-distinct, difficulty-matched.
type Pair struct {
	A trivia.Question
	B trivia.Question
}

// DiffTokenFor derives the shared difficulty token both roles generate
// against.
func DiffTokenFor(meta RoundMeta) string {
	return fmt.Sprintf("%s:%s:%s", meta.RoundSeed, meta.Category, meta.Difficulty)
}

const maxAttemptsPerRole = 3

// GeneratePairedRound produces the A/B questions for a round
// concurrently. It fails only when a role exhausts its retry budget.
func (g *Generator) GeneratePairedRound(ctx context.Context, meta RoundMeta) (*Pair, error) {
	diffToken := DiffTokenFor(meta)

	var pair Pair
	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		q, err := g.generateForRole(ctx, meta, RoleA, diffToken)
		if err != nil {
			return err
		}
		pair.A = *q
		return nil
	})
	group.Go(func() error {
		q, err := g.generateForRole(ctx, meta, RoleB, diffToken)
		if err != nil {
			return err
		}
		pair.B = *q
		return nil
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return &pair, nil
}

func waitInterval(d time.Duration) <-chan time.Time {
	if d <= 0 {
		d = defaultMinInterval
	}
	return time.After(d)
}

func (g *Generator) generateForRole(ctx context.Context, meta RoundMeta, role Role, diffToken string) (*trivia.Question, error) {
	var lastErr error
	for attempt := 1; attempt <= maxAttemptsPerRole; attempt++ {
		question, err := g.GenerateQuestion(ctx, GenerateParams{
			Category:   meta.Category,
			Difficulty: meta.Difficulty,
			Seed:       meta.RoundSeed,
			Tone:       meta.Tone,
			Role:       role,
			DiffToken:  diffToken,
		})
		if err == nil {
			return question, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
		// Concurrent roles share one per-category limiter; the loser of
		// that race waits out the interval instead of giving up.
		if err == ErrRateLimited && attempt < maxAttemptsPerRole {
			select {
			case <-ctx.Done():
			case <-waitInterval(g.cfg.MinInterval):
			}
		}
	}
	return nil, fmt.Errorf("role %s: %w", role, lastErr)
}
