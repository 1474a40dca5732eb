package explcache

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/lectio/internal/db"
	"github.com/kailas-cloud/lectio/internal/domain"
)

type mockExplainer struct {
	result    domain.Completion
	err       error
	calls     int
	healthErr error
}

func (m *mockExplainer) Explain(_ context.Context, _ domain.Prompt) (domain.Completion, error) {
	m.calls++
	return m.result, m.err
}

func (m *mockExplainer) HealthCheck(_ context.Context) error { return m.healthErr }

// mockKVStore implements the consumer interface for tests.
type mockKVStore struct {
	getFn func(ctx context.Context, key string) ([]byte, error)
	setFn func(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

func (m *mockKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockKVStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value, ttl)
	}
	return nil
}

func newTestCachedExplainer(t *testing.T, inner *mockExplainer) (*CachedExplainer, *mockKVStore) {
	t.Helper()
	ms := &mockKVStore{}
	ce := New(inner, ms, "openai/gpt-3.5-turbo", time.Hour, nil, zap.NewNop())
	return ce, ms
}
