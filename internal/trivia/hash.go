package trivia

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// HashPayload builds the canonical string the stem hash is computed over.
// Casing and surrounding whitespace are ignored; option order matters.
func HashPayload(q Question) string {
	options := make([]string, len(q.Options))
	for i, opt := range q.Options {
		options[i] = strings.ToLower(strings.TrimSpace(opt))
	}
	parts := []string{
		string(q.Category),
		string(q.Difficulty),
		strings.ToLower(strings.TrimSpace(q.Question)),
		strings.Join(options, "|"),
		strings.ToLower(strings.TrimSpace(q.Explanation)),
	}
	return strings.Join(parts, "::")
}

// StemHash fingerprints a question's semantic content for de-duplication.
// Not a security hash; SHA-256 keeps accidental collisions negligible.
func StemHash(q Question) string {
	sum := sha256.Sum256([]byte(HashPayload(q)))
	return hex.EncodeToString(sum[:])
}
