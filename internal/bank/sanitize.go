package bank

import "fmt"

// Defaulting rules for malformed generated items. Sanitization is kept
// separate from schema validation: the batch endpoint tolerates sloppy
// model output and repairs it, where the single-question provider
// rejects and retries instead.
var wrongQuipFallbacks = map[string]string{
	"0": "Nope, not quite.",
	"1": "Nice try, still wrong.",
	"2": "Swing and a miss.",
	"3": "That answer tripped over itself.",
}

const (
	fallbackQuestion    = "Unknown question"
	fallbackCorrectQuip = "Boom! Nailed it."
	choiceCount         = 4
)

// coerce repairs a generated item into a servable bank question:
// correctIndex clamped into 0..3, choices padded/truncated to exactly 4,
// and every wrong-quip slot filled with a generic filler when missing.
func (b *Bank) coerce(item generatedItem, category Category, ordinal int) Question {
	choices := item.Choices
	if len(choices) > choiceCount {
		choices = choices[:choiceCount]
	}
	for len(choices) < choiceCount {
		choices = append(choices, fmt.Sprintf("Option %c", 'A'+len(choices)))
	}

	index := item.CorrectIndex
	if index < 0 {
		index = 0
	}
	if index >= choiceCount {
		index = choiceCount - 1
	}

	wrongQuips := make(map[string]string, choiceCount)
	for key, fallback := range wrongQuipFallbacks {
		if quip, ok := item.WrongQuips[key]; ok && quip != "" {
			wrongQuips[key] = quip
		} else {
			wrongQuips[key] = fallback
		}
	}

	question := item.Question
	if question == "" {
		question = fallbackQuestion
	}
	correctQuip := item.CorrectQuip
	if correctQuip == "" {
		correctQuip = fallbackCorrectQuip
	}

	return Question{
		ID:          fmt.Sprintf("%s_%d_%d", category, b.now().UnixMilli(), ordinal),
		Category:    category,
		Question:    question,
		Choices:     choices,
		AnswerIndex: index,
		CorrectQuip: correctQuip,
		WrongQuips:  wrongQuips,
	}
}
