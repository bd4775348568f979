package library

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dustinbroussard/trivia-sass-attack/internal/trivia"
)

// Pack is the batch export/import document for library entries.
type Pack struct {
	CreatedAt time.Time     `json:"createdAt"`
	Counts    PackCounts    `json:"counts"`
	Items     []QuestionDoc `json:"items"`
}

// PackCounts summarizes pack contents per category and difficulty.
type PackCounts struct {
	ByCategory   map[string]int `json:"byCategory"`
	ByDifficulty map[string]int `json:"byDifficulty"`
}

func buildCounts(docs []QuestionDoc) PackCounts {
	counts := PackCounts{
		ByCategory: map[string]int{},
		ByDifficulty: map[string]int{
			string(trivia.DifficultyEasy):   0,
			string(trivia.DifficultyMedium): 0,
			string(trivia.DifficultyHard):   0,
		},
	}
	for _, doc := range docs {
		counts.ByCategory[string(doc.Category)]++
		counts.ByDifficulty[string(doc.Difficulty)]++
	}
	return counts
}

// ExportPack serializes docs into the pack format.
func ExportPack(docs []QuestionDoc) ([]byte, error) {
	pack := Pack{
		CreatedAt: time.Now().UTC(),
		Counts:    buildCounts(docs),
		Items:     docs,
	}
	return json.MarshalIndent(pack, "", "  ")
}

// ImportResult reports what happened to an imported pack.
type ImportResult struct {
	Inserted   int
	Duplicates int
	Total      int
}

// ImportPack re-validates every item and routes it through the same
// unique-by-hash insertion path as live generation. Either a bare items
// array or a full pack document is accepted. Stem hashes are recomputed
// rather than trusted from the file.
func ImportPack(ctx context.Context, store Store, raw []byte) (ImportResult, error) {
	var items []QuestionDoc
	if err := json.Unmarshal(raw, &items); err != nil {
		var pack Pack
		if err := json.Unmarshal(raw, &pack); err != nil {
			return ImportResult{}, fmt.Errorf("parse pack: %w", err)
		}
		items = pack.Items
	}

	for i, item := range items {
		if err := item.Validate(); err != nil {
			return ImportResult{}, fmt.Errorf("pack item %d: %w", i, err)
		}
	}

	candidates := make([]QuestionDoc, 0, len(items))
	for _, item := range items {
		item.StemHash = ""
		if item.Source == "" {
			item.Source = SourceImported
		}
		candidates = append(candidates, item)
	}

	result, err := store.PutMany(ctx, candidates)
	if err != nil {
		return ImportResult{}, err
	}
	return ImportResult{Inserted: result.Inserted, Duplicates: result.Duplicates, Total: len(items)}, nil
}
