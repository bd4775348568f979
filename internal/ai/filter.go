package ai

import (
	"regexp"
	"strings"

	"github.com/dustinbroussard/trivia-sass-attack/internal/trivia"
)

// ContentFilter decides whether a generated question is safe to serve.
// The default rules are illustrative rather than exhaustive; callers can
// swap in their own predicate.
type ContentFilter func(q trivia.Question, flags trivia.PersonalityFlags) bool

var (
	bannedPhrases = []string{
		"kill yourself", "nazi", "lynch",
	}
	explicitPattern = regexp.MustCompile(`(sex|porn|explicit)`)
	advicePattern   = regexp.MustCompile(`(diagnose|prescribe|lawsuit|legal advice|medical advice)`)
	violencePattern = regexp.MustCompile(`(graphic violence|gore)`)
)

// DefaultContentFilter applies the banned-phrase list, the medical/legal
// advice pattern, and the explicit-content pattern gated by the innuendo
// flag.
func DefaultContentFilter(q trivia.Question, flags trivia.PersonalityFlags) bool {
	parts := append([]string{q.Question, q.Explanation, q.Quips.Correct, q.Quips.Incorrect}, q.Options...)
	text := strings.ToLower(strings.Join(parts, " "))

	for _, phrase := range bannedPhrases {
		if strings.Contains(text, phrase) {
			return false
		}
	}
	if !flags.AllowLightInnuendo && explicitPattern.MatchString(text) {
		return false
	}
	if advicePattern.MatchString(text) {
		return false
	}
	if violencePattern.MatchString(text) {
		return false
	}
	return true
}
