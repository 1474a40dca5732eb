// Package quota enforces the per-user daily limit on AI requests.
package quota

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/lectio/internal/domain"
	"github.com/kailas-cloud/lectio/internal/domain/quota"
	"github.com/kailas-cloud/lectio/internal/metrics"
)

// Defaults for the daily request caps.
const (
	DefaultDailyLimit      = 3
	DefaultAdminDailyLimit = 1000
)

// Limiter answers "may this user make another AI request today" and records usage.
//
// Check and record are separate calls: the caller checks before the gated
// action and records only after it succeeds. Concurrent requests of one user
// may both pass the check and overshoot the limit; no atomic increment is used.
// Store faults never block a user: reads fail open and writes are dropped.
type Limiter struct {
	store      CounterStore
	dailyLimit int
	adminLimit int
	admins     map[int64]struct{}
	loc        *time.Location
	logger     *zap.Logger
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithAdmins grants the listed users a separate daily limit.
func WithAdmins(userIDs []int64, limit int) Option {
	return func(l *Limiter) {
		for _, id := range userIDs {
			l.admins[id] = struct{}{}
		}
		l.adminLimit = limit
	}
}

// WithLocation sets the timezone days are counted in. Defaults to UTC.
func WithLocation(loc *time.Location) Option {
	return func(l *Limiter) {
		if loc != nil {
			l.loc = loc
		}
	}
}

// New creates a Limiter allowing dailyLimit recorded requests per user per day.
func New(store CounterStore, dailyLimit int, logger *zap.Logger, opts ...Option) *Limiter {
	l := &Limiter{
		store:      store,
		dailyLimit: dailyLimit,
		adminLimit: DefaultAdminDailyLimit,
		admins:     make(map[int64]struct{}),
		loc:        time.UTC,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LimitFor returns the daily cap that applies to userID.
func (l *Limiter) LimitFor(userID int64) int {
	if _, ok := l.admins[userID]; ok {
		return l.adminLimit
	}
	return l.dailyLimit
}

// Location returns the timezone days are counted in.
func (l *Limiter) Location() *time.Location { return l.loc }

// CheckQuota reports whether the user has requests left on day.
// A failing store counts as zero usage.
func (l *Limiter) CheckQuota(ctx context.Context, userID int64, day quota.Day) bool {
	count, ok := l.readCount(ctx, userID, day)
	if !ok {
		metrics.QuotaChecksTotal.WithLabelValues("fail_open").Inc()
		return true
	}

	allowed := count < l.LimitFor(userID)
	if allowed {
		metrics.QuotaChecksTotal.WithLabelValues("allowed").Inc()
	} else {
		metrics.QuotaChecksTotal.WithLabelValues("denied").Inc()
	}
	return allowed
}

// RecordUsage adds one request to the user's count for day.
// Store failures are logged and swallowed. The count is not clamped at the limit.
func (l *Limiter) RecordUsage(ctx context.Context, userID int64, day quota.Day) {
	count, ok := l.readCount(ctx, userID, day)
	if !ok {
		// Unknown current value; writing 1 could rewind a real count.
		metrics.QuotaRecordsTotal.WithLabelValues("error").Inc()
		return
	}

	if err := l.store.UpsertCount(ctx, userID, day, count+1); err != nil {
		metrics.QuotaRecordsTotal.WithLabelValues("error").Inc()
		l.logger.Warn("Failed to record AI usage",
			zap.Int64("user_id", userID),
			zap.String("day", day.String()),
			zap.Int("count", count+1),
			zap.Error(err),
		)
		return
	}
	metrics.QuotaRecordsTotal.WithLabelValues("ok").Inc()
}

// Status returns a snapshot of the user's quota for day.
func (l *Limiter) Status(ctx context.Context, userID int64, day quota.Day) quota.Status {
	count, _ := l.readCount(ctx, userID, day)

	var resetsAt time.Time
	if start, err := day.Start(l.loc); err == nil {
		resetsAt = start.AddDate(0, 0, 1)
	}
	return quota.NewStatus(day, l.LimitFor(userID), count, resetsAt)
}

// Today returns the current day in the limiter's timezone.
func (l *Limiter) Today(now time.Time) quota.Day {
	return quota.DayOf(now.In(l.loc))
}

// readCount returns the stored count, 0 when absent. ok is false on store faults.
func (l *Limiter) readCount(ctx context.Context, userID int64, day quota.Day) (int, bool) {
	count, err := l.store.ReadCount(ctx, userID, day)
	if err == nil {
		return count, true
	}
	if errors.Is(err, domain.ErrNotFound) {
		return 0, true
	}
	l.logger.Warn("Failed to read AI usage, treating as zero",
		zap.Int64("user_id", userID),
		zap.String("day", day.String()),
		zap.Error(err),
	)
	return 0, false
}
