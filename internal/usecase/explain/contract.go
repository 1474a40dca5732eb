package explain

import (
	"context"
	"time"

	"github.com/kailas-cloud/lectio/internal/domain/quota"
	"github.com/kailas-cloud/lectio/internal/usecase/bible"
)

// Limiter gates explanations by the per-user daily quota.
type Limiter interface {
	CheckQuota(ctx context.Context, userID int64, day quota.Day) bool
	RecordUsage(ctx context.Context, userID int64, day quota.Day)
	Status(ctx context.Context, userID int64, day quota.Day) quota.Status
	Today(now time.Time) quota.Day
}

// PassageResolver turns reference text into verses.
type PassageResolver interface {
	Lookup(ctx context.Context, text, translation string) (bible.Passage, error)
}
