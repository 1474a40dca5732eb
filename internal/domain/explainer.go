package domain

import "context"

// Explainer is the AI completion contract between layers.
type Explainer interface {
	Explain(ctx context.Context, prompt Prompt) (Completion, error)
}

// HealthChecker verifies AI provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Prompt is a single-turn completion request.
type Prompt struct {
	System string
	User   string
}

// Completion carries the generated text and token usage.
type Completion struct {
	Text             string
	Model            string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	Cached           bool
}
