package library

import (
	"context"

	"github.com/dustinbroussard/trivia-sass-attack/internal/trivia"
)

// EnsureResult is the outcome of a uniqueness check.
type EnsureResult struct {
	Doc       QuestionDoc
	Duplicate bool
}

// PutResult summarizes a batch insert.
type PutResult struct {
	Inserted   int
	Duplicates int
}

// DrawParams narrows candidate selection for DrawOne.
type DrawParams struct {
	Category   trivia.Category
	Difficulty trivia.Difficulty
	ExcludeIDs []string
}

// Filter narrows Count and List. Zero values mean "any".
type Filter struct {
	Category   trivia.Category
	Difficulty trivia.Difficulty
}

// Store is the durable question library. StemHash uniqueness is enforced
// by the store itself; callers never pre-check.
type Store interface {
	// EnsureUniqueByHash fills in id/hash/timestamp/source defaults for the
	// candidate, or returns the already-stored document with Duplicate=true.
	EnsureUniqueByHash(ctx context.Context, candidate QuestionDoc) (EnsureResult, error)

	// PutMany inserts candidates, skipping duplicates per item. One item's
	// duplicate never blocks the rest of the batch.
	PutMany(ctx context.Context, candidates []QuestionDoc) (PutResult, error)

	// DrawOne picks an unused document matching category+difficulty, falling
	// back to the whole category; uniform-random among qualifiers, nil when
	// nothing qualifies.
	DrawOne(ctx context.Context, params DrawParams) (*QuestionDoc, error)

	// MarkUsed stamps usedAt; idempotent.
	MarkUsed(ctx context.Context, id string) error

	Count(ctx context.Context, filter Filter) (int, error)
	List(ctx context.Context, filter Filter, limit, offset int) ([]QuestionDoc, error)
}
