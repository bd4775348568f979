package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dustinbroussard/trivia-sass-attack/internal/trivia"
)

// SystemPrompt encodes tone and the content-safety constraints the
// generated question must obey.
func SystemPrompt(flags trivia.PersonalityFlags, tone trivia.Tone) string {
	toneText := "Tone: snarky but kind."
	if tone != "" {
		toneText = fmt.Sprintf("Tone: %s.", tone)
	}
	constraints := []string{
		"You are a trivia writer blended with a late-night monologue writer.",
		"You output strictly JSON and never include prose outside the JSON.",
		"No slurs, no targeted harassment, no punching down.",
		"Stay playful, PG-13. Keep it kind and witty.",
		"Avoid copyrighted one-line quotes as answers; paraphrase instead.",
		"No explicit sexual content. No medical or legal advice.",
	}
	if flags.NoPolitics {
		constraints = append(constraints, "Avoid modern political punditry or partisan content.")
	}
	if !flags.AllowLightInnuendo {
		constraints = append(constraints, "Avoid sexual innuendo.")
	}
	return strings.Join([]string{strings.Join(constraints, " "), toneText, "Output must be valid JSON only."}, " ")
}

// UserPrompt embeds the role/seed/diff-token fairness instructions, the
// strict-JSON formatting rules, and a schema example. stricter appends a
// reminder used on regeneration attempts.
func UserPrompt(p resolvedParams, example string, stricter bool) string {
	fairness := fmt.Sprintf(
		"ROLE: %s. DIFF_TOKEN: %s. Produce questions of equivalent difficulty/style for roles A/B using the same diffToken; do NOT reuse the same fact.",
		p.Role, p.DiffToken)
	seedLine := fmt.Sprintf(
		"SEED: %s. Use this to choose facts and phrasing deterministically. Include \"seedEcho\" with the same value in the JSON.",
		p.Seed)
	rules := []string{
		fmt.Sprintf("Category: %s. Difficulty: %s.", p.Category, p.Difficulty),
		"Exactly 4 options. Exactly one correctIndex in 0..3.",
		"Quips are one-liners. They must reference the chosen option text implicitly, not the player.",
		"Return only JSON. No backticks, no commentary.",
	}
	if stricter {
		rules = append(rules, "Absolutely no text outside JSON. If unsure, output the JSON schema shape verbatim.")
	}
	return strings.Join([]string{fairness, seedLine, strings.Join(rules, "\n"), "Schema example:", example}, "\n")
}

// SchemaExample renders a complete sample question so the model has a
// concrete target shape.
func SchemaExample() string {
	example := trivia.Question{
		Category:     trivia.CategoryScience,
		Difficulty:   trivia.DifficultyEasy,
		SeedEcho:     "abc123",
		Question:     "What gas do plants absorb during photosynthesis?",
		Options:      []string{"Oxygen", "Hydrogen", "Carbon Dioxide", "Nitrogen"},
		CorrectIndex: 2,
		Explanation:  "Plants absorb carbon dioxide and release oxygen during photosynthesis.",
		Quips: trivia.Quips{
			Correct:   "Photosynthetic perfection.",
			Incorrect: "That pick didn't leaf you looking smart.",
		},
	}
	out, _ := json.MarshalIndent(example, "", "  ")
	return string(out)
}

// StripCodeFence removes a leading/trailing markdown code fence if the
// model wrapped its JSON despite instructions.
func StripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		text = text[idx+1:]
	} else {
		text = strings.TrimPrefix(text, "```")
	}
	text = strings.TrimSpace(text)
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
