//go:build integration

// Package pgtest starts a disposable Postgres container for repository tests.
package pgtest

import (
	"context"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/kailas-cloud/lectio/internal/db/postgres"
)

const image = "postgres:16-alpine"

// NewPool starts Postgres, applies the schema and returns a connected pool.
// The container and pool are released via t.Cleanup.
func NewPool(t *testing.T) *postgres.Pool {
	t.Helper()
	ctx := context.Background()

	ctr, err := tcpostgres.Run(ctx, image,
		tcpostgres.WithDatabase("lectio"),
		tcpostgres.WithUsername("lectio"),
		tcpostgres.WithPassword("lectio"),
		tcpostgres.BasicWaitStrategies(),
	)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(ctr); err != nil {
			t.Logf("terminate postgres container: %v", err)
		}
	})

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("connection string: %v", err)
	}

	pool, err := postgres.NewPool(ctx, postgres.Config{DSN: dsn, MaxConns: 4})
	if err != nil {
		t.Fatalf("new pool: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := pool.WaitForReady(ctx, 30*time.Second); err != nil {
		t.Fatalf("wait for postgres: %v", err)
	}
	if err := pool.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return pool
}

// SeedBook inserts a book row so verses can reference it.
func SeedBook(t *testing.T, pool *postgres.Pool, id int, name, short, testament string, chapters int) {
	t.Helper()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO books (id, name, short_name, testament, chapters_count, book_order)
		 VALUES ($1, $2, $3, $4, $5, $1) ON CONFLICT (id) DO NOTHING`,
		id, name, short, testament, chapters)
	if err != nil {
		t.Fatalf("seed book %d: %v", id, err)
	}
}

// SeedVerse inserts a single verse.
func SeedVerse(t *testing.T, pool *postgres.Pool, bookID, chapter, number int, text, translation string) {
	t.Helper()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO verses (book_id, chapter_number, verse_number, text, translation)
		 VALUES ($1, $2, $3, $4, $5)`,
		bookID, chapter, number, text, translation)
	if err != nil {
		t.Fatalf("seed verse %d %d:%d: %v", bookID, chapter, number, err)
	}
}
