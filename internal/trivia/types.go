package trivia

import "fmt"

// Category identifies a generation category for the AI trivia writer.
type Category string

const (
	CategoryHistory    Category = "history"
	CategoryScience    Category = "science"
	CategoryArts       Category = "arts"
	CategoryPopCulture Category = "pop_culture"
	CategorySports     Category = "sports"
	CategoryGeography  Category = "geography"
	CategoryLiterature Category = "literature"
	CategoryTechnology Category = "technology"
)

// Categories lists every valid generation category.
var Categories = []Category{
	CategoryHistory,
	CategoryScience,
	CategoryArts,
	CategoryPopCulture,
	CategorySports,
	CategoryGeography,
	CategoryLiterature,
	CategoryTechnology,
}

// ValidCategory reports whether c is a known category.
func ValidCategory(c Category) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Difficulty constants for readability.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ValidDifficulty reports whether d is a known difficulty.
func ValidDifficulty(d Difficulty) bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Tone steers the voice of generated quips and explanations.
type Tone string

const (
	ToneSnark     Tone = "snark"
	ToneDeadpan   Tone = "deadpan"
	ToneProfessor Tone = "professor"
	ToneRoastLite Tone = "roast-lite"
)

// Tones lists every valid tone.
var Tones = []Tone{ToneSnark, ToneDeadpan, ToneProfessor, ToneRoastLite}

// ValidTone reports whether t is a known tone.
func ValidTone(t Tone) bool {
	for _, known := range Tones {
		if t == known {
			return true
		}
	}
	return false
}

// PersonalityFlags gate content-safety behavior during generation.
// Kindness is always enforced and has no toggle.
type PersonalityFlags struct {
	PG13Snark          bool `json:"pg13Snark"`
	NoPolitics         bool `json:"noPolitics"`
	AllowLightInnuendo bool `json:"allowLightInnuendo"`
}

// DefaultFlags returns the production defaults.
func DefaultFlags() PersonalityFlags {
	return PersonalityFlags{
		PG13Snark:          true,
		NoPolitics:         true,
		AllowLightInnuendo: false,
	}
}

// Quips holds the one-liners delivered after an answer.
type Quips struct {
	Correct   string `json:"correct"`
	Incorrect string `json:"incorrect"`
}

// Question is the canonical generated trivia question.
type Question struct {
	Category     Category   `json:"category"`
	Difficulty   Difficulty `json:"difficulty"`
	SeedEcho     string     `json:"seedEcho"`
	Question     string     `json:"question"`
	Options      []string   `json:"options"`
	CorrectIndex int        `json:"correctIndex"`
	Explanation  string     `json:"explanation"`
	Quips        Quips      `json:"quips"`
}

const (
	minQuestionLen    = 6
	maxQuestionLen    = 280
	minExplanationLen = 6
	maxExplanationLen = 300
	minQuipLen        = 2
	maxQuipLen        = 160
	optionCount       = 4
)

// Validate checks the question against the generation schema. It mirrors
// the strict shape the AI backend is prompted to produce, so any drift in
// generated output surfaces here rather than deeper in the pipeline.
func (q Question) Validate() error {
	if !ValidCategory(q.Category) {
		return fmt.Errorf("invalid category %q", q.Category)
	}
	if !ValidDifficulty(q.Difficulty) {
		return fmt.Errorf("invalid difficulty %q", q.Difficulty)
	}
	if q.SeedEcho == "" {
		return fmt.Errorf("missing seedEcho")
	}
	if l := len(q.Question); l < minQuestionLen || l > maxQuestionLen {
		return fmt.Errorf("question length %d outside %d..%d", l, minQuestionLen, maxQuestionLen)
	}
	if len(q.Options) != optionCount {
		return fmt.Errorf("expected %d options, got %d", optionCount, len(q.Options))
	}
	for i, opt := range q.Options {
		if opt == "" {
			return fmt.Errorf("option %d is empty", i)
		}
	}
	if q.CorrectIndex < 0 || q.CorrectIndex >= optionCount {
		return fmt.Errorf("correctIndex %d outside 0..%d", q.CorrectIndex, optionCount-1)
	}
	if l := len(q.Explanation); l < minExplanationLen || l > maxExplanationLen {
		return fmt.Errorf("explanation length %d outside %d..%d", l, minExplanationLen, maxExplanationLen)
	}
	for name, quip := range map[string]string{"correct": q.Quips.Correct, "incorrect": q.Quips.Incorrect} {
		if l := len(quip); l < minQuipLen || l > maxQuipLen {
			return fmt.Errorf("%s quip length %d outside %d..%d", name, l, minQuipLen, maxQuipLen)
		}
	}
	return nil
}
