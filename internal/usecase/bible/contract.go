package bible

import (
	"context"

	domverse "github.com/kailas-cloud/lectio/internal/domain/verse"
)

// Repository defines the read contract for scripture storage.
type Repository interface {
	FindVerses(ctx context.Context, bookID, chapter int, rng domverse.Range, translation string) ([]domverse.Verse, error)
	Chapter(ctx context.Context, bookID, chapter int, translation string) ([]domverse.Verse, error)
	Search(ctx context.Context, query, translation string, limit int) ([]domverse.Verse, error)
	Books(ctx context.Context) ([]domverse.Book, error)
	Book(ctx context.Context, id int) (domverse.Book, error)
}
