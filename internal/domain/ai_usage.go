package domain

import "context"

type aiUsageKey struct{}

// AIUsage collects completion token usage for a single HTTP request.
// The handler puts a mutable pointer into the context before calling the service;
// the service writes after the completion; the handler reads it for response headers.
type AIUsage struct {
	TotalTokens int
	Used        bool // true if the explainer was consulted, even on a cache hit
	Cached      bool
}

// NewContextWithAIUsage returns a context with an embedded usage collector.
func NewContextWithAIUsage(ctx context.Context) (context.Context, *AIUsage) {
	u := &AIUsage{}
	return context.WithValue(ctx, aiUsageKey{}, u), u
}

// AIUsageFromContext extracts the usage collector from context. Returns nil if not set.
func AIUsageFromContext(ctx context.Context) *AIUsage {
	u, _ := ctx.Value(aiUsageKey{}).(*AIUsage)
	return u
}

// Add records one completion.
func (u *AIUsage) Add(c Completion) {
	if u != nil {
		u.TotalTokens += c.TotalTokens
		u.Used = true
		u.Cached = c.Cached
	}
}
