package chat

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"foodhive/internal/llm"
	"foodhive/internal/recipe"
)

// UsageRecorder stores token usage of LLM calls.
type UsageRecorder interface {
	RecordUsage(ctx context.Context, service string, usage llm.TokenUsage, latency time.Duration) error
}

// Assistant writes a short friendly line introducing recipe results.
type Assistant struct {
	gen     llm.TextGenerator
	service string
	usage   UsageRecorder
}

// NewAssistant creates a new assistant. usage may be nil.
func NewAssistant(gen llm.TextGenerator, service string, usage UsageRecorder) *Assistant {
	return &Assistant{gen: gen, service: service, usage: usage}
}

const introPrompt = `You are the friendly cooking assistant of a grocery app.
The user asked: %q
We found these recipes: %s.
Write ONE short sentence (max 25 words) introducing them. No lists, no markdown, no quotes.`

// Intro returns the introduction for recipes found for query.
func (a *Assistant) Intro(ctx context.Context, query string, recipes []recipe.Recipe) (string, error) {
	titles := make([]string, 0, len(recipes))
	for _, r := range recipes {
		titles = append(titles, r.Title)
	}

	start := time.Now()
	resp, err := a.gen.GenerateContent(ctx, fmt.Sprintf(introPrompt, query, strings.Join(titles, ", ")))
	if err != nil {
		return "", fmt.Errorf("failed to generate intro: %w", err)
	}

	if a.usage != nil {
		if err := a.usage.RecordUsage(ctx, a.service, resp.Usage, time.Since(start)); err != nil {
			log.Printf("Warning: failed to record llm usage: %v", err)
		}
	}

	line := strings.TrimSpace(resp.Content)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = strings.TrimSpace(line[:i])
	}
	return strings.Trim(line, `"`), nil
}
