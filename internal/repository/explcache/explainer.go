// Package explcache caches AI explanations in the key-value store.
package explcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/lectio/internal/db"
	"github.com/kailas-cloud/lectio/internal/domain"
)

var cacheKeyPrefix = domain.KeyPrefix + "expl_cache:"

// store is the consumer interface for the explanation cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedExplainer serves repeated prompts from the store.
type CachedExplainer struct {
	inner      domain.Explainer
	store      store
	model      string
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator. model scopes keys so a model switch misses.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), may be nil.
func New(
	inner domain.Explainer,
	s store,
	model string,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedExplainer {
	return &CachedExplainer{
		inner:      inner,
		store:      s,
		model:      model,
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Explain returns a cached completion (Cached=true, zero tokens) or calls the inner explainer.
func (c *CachedExplainer) Explain(ctx context.Context, p domain.Prompt) (domain.Completion, error) {
	key := c.cacheKey(p)

	if text, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		return domain.Completion{Text: text, Model: c.model, Cached: true}, nil
	}

	c.incCache("miss")

	res, err := c.inner.Explain(ctx, p)
	if err != nil {
		return domain.Completion{}, fmt.Errorf("explain: %w", err)
	}

	c.putToCache(ctx, key, res.Text)
	return res, nil
}

// HealthCheck delegates to the inner explainer when it supports health checks.
func (c *CachedExplainer) HealthCheck(ctx context.Context) error {
	if hc, ok := c.inner.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx) //nolint:wrapcheck // pass-through
	}
	return nil
}

func (c *CachedExplainer) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func (c *CachedExplainer) cacheKey(p domain.Prompt) string {
	h := sha256.New()
	h.Write([]byte(c.model))
	h.Write([]byte{0})
	h.Write([]byte(p.System))
	h.Write([]byte{0})
	h.Write([]byte(p.User))
	return cacheKeyPrefix + hex.EncodeToString(h.Sum(nil))
}

func (c *CachedExplainer) getFromCache(ctx context.Context, key string) (string, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached explanation", zap.String("key", key), zap.Error(err))
		}
		return "", false
	}
	if len(data) == 0 {
		return "", false
	}
	return string(data), true
}

func (c *CachedExplainer) putToCache(ctx context.Context, key, text string) {
	if text == "" {
		return
	}
	if err := c.store.SetWithTTL(ctx, key, []byte(text), c.ttl); err != nil {
		c.logger.Warn("Failed to cache explanation", zap.String("key", key), zap.Error(err))
	}
}
