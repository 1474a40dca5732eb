package counter

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/kailas-cloud/lectio/internal/db"
	"github.com/kailas-cloud/lectio/internal/db/postgres"
	"github.com/kailas-cloud/lectio/internal/domain"
	"github.com/kailas-cloud/lectio/internal/domain/quota"
)

const (
	selectCountSQL = `SELECT count FROM ai_usage WHERE user_id = $1 AND date = $2::date`
	upsertCountSQL = `INSERT INTO ai_usage (user_id, date, count) VALUES ($1, $2::date, $3)
ON CONFLICT (user_id, date) DO UPDATE SET count = EXCLUDED.count`
)

// PostgresStore keeps counts in the ai_usage table keyed by (user_id, date).
type PostgresStore struct {
	q postgres.Querier
}

// NewPostgres creates a Postgres counter store.
func NewPostgres(q postgres.Querier) *PostgresStore {
	return &PostgresStore{q: q}
}

// ReadCount returns the stored count or domain.ErrNotFound when no row exists.
func (s *PostgresStore) ReadCount(ctx context.Context, userID int64, day quota.Day) (int, error) {
	var n int
	err := s.q.QueryRow(ctx, selectCountSQL, userID, day.String()).Scan(&n)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrNotFound
		}
		return 0, &db.Error{Op: db.OpQuery, Err: fmt.Errorf("read ai_usage: %w", err)}
	}
	return n, nil
}

// UpsertCount inserts the row or replaces its count.
func (s *PostgresStore) UpsertCount(ctx context.Context, userID int64, day quota.Day, n int) error {
	if _, err := s.q.Exec(ctx, upsertCountSQL, userID, day.String(), n); err != nil {
		return &db.Error{Op: db.OpExec, Err: fmt.Errorf("upsert ai_usage: %w", err)}
	}
	return nil
}
