// Package explain produces AI explanations of scripture passages under the daily quota.
package explain

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/lectio/internal/domain"
	"github.com/kailas-cloud/lectio/internal/domain/quota"
	"github.com/kailas-cloud/lectio/internal/domain/reference"
	domverse "github.com/kailas-cloud/lectio/internal/domain/verse"
	"github.com/kailas-cloud/lectio/internal/logger"
)

// Explanation is the outcome of one explain request.
type Explanation struct {
	Reference reference.Reference
	Verses    []domverse.Verse
	Text      string
	Model     string
	Cached    bool
	Quota     quota.Status
}

// Service coordinates quota, verse lookup and the explainer.
type Service struct {
	limiter   Limiter
	passages  PassageResolver
	explainer domain.Explainer
	now       func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New creates an explain service.
func New(limiter Limiter, passages PassageResolver, explainer domain.Explainer, opts ...Option) *Service {
	s := &Service{
		limiter:   limiter,
		passages:  passages,
		explainer: explainer,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Explain checks the quota, resolves text to verses and asks the explainer about them.
// Usage is recorded only after the explainer succeeds with a fresh (uncached) completion.
func (s *Service) Explain(ctx context.Context, userID int64, text, translation string) (Explanation, error) {
	day := s.limiter.Today(s.now())

	if !s.limiter.CheckQuota(ctx, userID, day) {
		st := s.limiter.Status(ctx, userID, day)
		return Explanation{Quota: st}, fmt.Errorf("explain: %w", domain.NewQuotaExceeded(st.Limit(), st.Used()))
	}

	passage, err := s.passages.Lookup(ctx, text, translation)
	if err != nil {
		return Explanation{}, fmt.Errorf("explain: %w", err)
	}
	if len(passage.Verses) == 0 {
		return Explanation{}, fmt.Errorf("explain %s: verses: %w", passage.Reference, domain.ErrNotFound)
	}

	res, err := s.explainer.Explain(ctx, BuildPrompt(passage.Reference, passage.Verses))
	if err != nil {
		return Explanation{}, fmt.Errorf("explain %s: %w", passage.Reference, err)
	}
	domain.AIUsageFromContext(ctx).Add(res)

	if !res.Cached {
		s.limiter.RecordUsage(ctx, userID, day)
	}

	logger.FromContext(ctx).Debug("Explanation produced",
		zap.Int64("user_id", userID),
		zap.String("reference", passage.Reference.String()),
		zap.String("model", res.Model),
		zap.Bool("cached", res.Cached),
		zap.Int("total_tokens", res.TotalTokens),
	)

	return Explanation{
		Reference: passage.Reference,
		Verses:    passage.Verses,
		Text:      res.Text,
		Model:     res.Model,
		Cached:    res.Cached,
		Quota:     s.limiter.Status(ctx, userID, day),
	}, nil
}

// Limits returns the user's quota status for today.
func (s *Service) Limits(ctx context.Context, userID int64) quota.Status {
	return s.limiter.Status(ctx, userID, s.limiter.Today(s.now()))
}
