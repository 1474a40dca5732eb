package quota

import (
	"context"

	"github.com/kailas-cloud/lectio/internal/domain/quota"
)

// CounterStore persists one usage count per (user, day).
// ReadCount returns domain.ErrNotFound when nothing was recorded yet.
type CounterStore interface {
	ReadCount(ctx context.Context, userID int64, day quota.Day) (int, error)
	UpsertCount(ctx context.Context, userID int64, day quota.Day, n int) error
}
