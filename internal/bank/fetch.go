package bank

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dustinbroussard/trivia-sass-attack/internal/ai"
)

func defaultRefillModels() []string {
	return []string{
		"anthropic/claude-3-haiku",
		"openai/gpt-4o-mini",
		"openrouter/auto",
	}
}

const batchSystemPrompt = `You are a trivia generator. Output ONLY valid JSON matching this shape:
{"questions": [{"question": string, "choices": [string], "correctIndex": number, "wrongQuips": {"0": string, "1": string, "2": string, "3": string}, "correctQuip": string}]}`

func batchUserPrompt(category Category, count int) string {
	return fmt.Sprintf(`Generate %d short, clear, family-friendly multiple-choice trivia questions for the category: %s.
Rules:
- Exactly 4 choices per question.
- correctIndex must be 0..3.
- wrongQuips must include keys '0','1','2','3' with snappy, humorous one-liners.
- correctQuip is a single upbeat one-liner.
- Do not include explanations.
Return JSON only.`, count, category)
}

type generatedBatch struct {
	Questions []generatedItem `json:"questions"`
}

type generatedItem struct {
	Question     string            `json:"question"`
	Choices      []string          `json:"choices"`
	CorrectIndex int               `json:"correctIndex"`
	WrongQuips   map[string]string `json:"wrongQuips"`
	CorrectQuip  string            `json:"correctQuip"`
}

// fetchBatch requests a fresh question batch, trying each configured
// model until one yields parseable content. Transport retries (with
// backoff) happen inside the chat client; this layer only rotates models
// and surfaces retry notifications.
func (b *Bank) fetchBatch(ctx context.Context, category Category, count int) ([]Question, string, error) {
	req := ai.ChatRequest{
		Messages: []ai.ChatMessage{
			{Role: "system", Content: batchSystemPrompt},
			{Role: "user", Content: batchUserPrompt(category, count)},
		},
		Temperature: 0.7,
	}

	onRetry := func(attempt, total int) {
		retriesTotal.Inc()
		b.emit(Event{Category: category, Phase: PhaseRetry, Attempt: attempt, Total: total})
	}

	var (
		content   string
		usedModel string
		lastErr   error
	)
	for _, model := range b.cfg.Models {
		req.Model = model
		resp, err := b.backend.ChatWithRetry(ctx, req, onRetry)
		if err != nil {
			lastErr = err
			continue
		}
		if text := resp.Content(); text != "" {
			content = text
			usedModel = model
			break
		}
		lastErr = errors.New("no content from model")
	}
	if content == "" {
		if lastErr == nil {
			lastErr = errors.New("failed to generate questions")
		}
		return nil, "", lastErr
	}

	batch, err := parseBatch(content)
	if err != nil {
		return nil, "", err
	}

	if len(batch.Questions) > count {
		batch.Questions = batch.Questions[:count]
	}
	questions := make([]Question, 0, len(batch.Questions))
	for i, item := range batch.Questions {
		questions = append(questions, b.coerce(item, category, i))
	}
	return questions, usedModel, nil
}

// parseBatch parses the model output, falling back to the outermost
// {...} substring when direct parsing fails.
func parseBatch(content string) (generatedBatch, error) {
	text := ai.StripCodeFence(content)

	var batch generatedBatch
	if err := json.Unmarshal([]byte(text), &batch); err != nil {
		start := strings.IndexByte(text, '{')
		end := strings.LastIndexByte(text, '}')
		if start < 0 || end <= start {
			return generatedBatch{}, fmt.Errorf("parse batch: %w", err)
		}
		if err := json.Unmarshal([]byte(text[start:end+1]), &batch); err != nil {
			return generatedBatch{}, fmt.Errorf("parse batch substring: %w", err)
		}
	}
	return batch, nil
}
