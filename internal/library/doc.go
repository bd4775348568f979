package library

import (
	"time"

	"github.com/google/uuid"

	"github.com/dustinbroussard/trivia-sass-attack/internal/trivia"
)

// Source tags describing where a stored question came from.
const (
	SourceLibrary   = "library"
	SourceGenerated = "generated"
	SourceImported  = "imported"
	SourceCloud     = "cloud"
)

// QuestionDoc is the library-stored form of a trivia question.
type QuestionDoc struct {
	trivia.Question

	ID        string      `json:"id"`
	StemHash  string      `json:"stemHash"`
	Tone      trivia.Tone `json:"tone,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
	Source    string      `json:"source,omitempty"`
	UsedAt    *time.Time  `json:"usedAt,omitempty"`
}

// StemHashFor computes the content fingerprint for a stored document.
func StemHashFor(d QuestionDoc) string {
	return trivia.StemHash(d.Question)
}

// Used reports whether the document has been served before.
func (d QuestionDoc) Used() bool {
	return d.UsedAt != nil
}

// Validate checks the stored shape on top of the question schema.
func (d QuestionDoc) Validate() error {
	return d.Question.Validate()
}

// enrich assigns the defaults EnsureUniqueByHash promises: id, stem hash,
// creation time, and source tag.
func enrich(candidate QuestionDoc, now time.Time) QuestionDoc {
	if candidate.StemHash == "" {
		candidate.StemHash = StemHashFor(candidate)
	}
	if candidate.ID == "" {
		candidate.ID = uuid.NewString()
	}
	if candidate.CreatedAt.IsZero() {
		candidate.CreatedAt = now
	}
	if candidate.Source == "" {
		candidate.Source = SourceGenerated
	}
	return candidate
}
