// Package verse reads books and verses from Postgres.
package verse

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/kailas-cloud/lectio/internal/db"
	"github.com/kailas-cloud/lectio/internal/db/postgres"
	"github.com/kailas-cloud/lectio/internal/domain"
	domverse "github.com/kailas-cloud/lectio/internal/domain/verse"
)

const (
	verseColumns = `id, book_id, chapter_number, verse_number, text, translation`
	bookColumns  = `id, name, short_name, testament, chapters_count, book_order`

	findVersesSQL = `SELECT ` + verseColumns + ` FROM verses
WHERE translation = $1 AND book_id = $2 AND chapter_number = $3
  AND verse_number BETWEEN $4 AND $5
ORDER BY verse_number`

	chapterSQL = `SELECT ` + verseColumns + ` FROM verses
WHERE translation = $1 AND book_id = $2 AND chapter_number = $3
ORDER BY verse_number`

	searchSQL = `SELECT ` + verseColumns + ` FROM verses
WHERE translation = $1 AND text ILIKE '%' || $2 || '%' ESCAPE '\'
ORDER BY book_id, chapter_number, verse_number
LIMIT $3`

	booksSQL = `SELECT ` + bookColumns + ` FROM books ORDER BY book_order`
	bookSQL  = `SELECT ` + bookColumns + ` FROM books WHERE id = $1`
)

// Repo implements the verse store on a pgx pool.
type Repo struct {
	q postgres.Querier
}

// New creates a verse repository.
func New(q postgres.Querier) *Repo {
	return &Repo{q: q}
}

// FindVerses returns the verses of r in one chapter ordered by number.
// A range past the end of the chapter yields the verses that exist, possibly none.
func (r *Repo) FindVerses(
	ctx context.Context, bookID, chapter int, rng domverse.Range, translation string,
) ([]domverse.Verse, error) {
	rows, err := r.q.Query(ctx, findVersesSQL, translation, bookID, chapter, rng.Start, rng.End)
	if err != nil {
		return nil, &db.Error{Op: db.OpQuery, Err: fmt.Errorf("find verses: %w", err)}
	}
	return collectVerses(rows)
}

// Chapter returns every verse of one chapter.
func (r *Repo) Chapter(ctx context.Context, bookID, chapter int, translation string) ([]domverse.Verse, error) {
	rows, err := r.q.Query(ctx, chapterSQL, translation, bookID, chapter)
	if err != nil {
		return nil, &db.Error{Op: db.OpQuery, Err: fmt.Errorf("chapter: %w", err)}
	}
	return collectVerses(rows)
}

// Search returns verses containing query as a case-insensitive substring.
func (r *Repo) Search(ctx context.Context, query, translation string, limit int) ([]domverse.Verse, error) {
	rows, err := r.q.Query(ctx, searchSQL, translation, escapeLike(query), limit)
	if err != nil {
		return nil, &db.Error{Op: db.OpQuery, Err: fmt.Errorf("search verses: %w", err)}
	}
	return collectVerses(rows)
}

// Books returns all books in canon order.
func (r *Repo) Books(ctx context.Context) ([]domverse.Book, error) {
	rows, err := r.q.Query(ctx, booksSQL)
	if err != nil {
		return nil, &db.Error{Op: db.OpQuery, Err: fmt.Errorf("books: %w", err)}
	}
	books, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domverse.Book, error) {
		return scanBook(row)
	})
	if err != nil {
		return nil, &db.Error{Op: db.OpQuery, Err: fmt.Errorf("scan books: %w", err)}
	}
	return books, nil
}

// Book returns one book or domain.ErrNotFound.
func (r *Repo) Book(ctx context.Context, id int) (domverse.Book, error) {
	b, err := scanBook(r.q.QueryRow(ctx, bookSQL, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domverse.Book{}, fmt.Errorf("book %d: %w", id, domain.ErrNotFound)
		}
		return domverse.Book{}, &db.Error{Op: db.OpQuery, Err: fmt.Errorf("book %d: %w", id, err)}
	}
	return b, nil
}

func collectVerses(rows pgx.Rows) ([]domverse.Verse, error) {
	verses, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domverse.Verse, error) {
		var v domverse.Verse
		err := row.Scan(&v.ID, &v.BookID, &v.Chapter, &v.Number, &v.Text, &v.Translation)
		return v, err
	})
	if err != nil {
		return nil, &db.Error{Op: db.OpQuery, Err: fmt.Errorf("scan verses: %w", err)}
	}
	if verses == nil {
		verses = []domverse.Verse{}
	}
	return verses, nil
}

func scanBook(row pgx.Row) (domverse.Book, error) {
	var b domverse.Book
	err := row.Scan(&b.ID, &b.Name, &b.ShortName, &b.Testament, &b.ChaptersCount, &b.Order)
	return b, err
}

// escapeLike escapes LIKE wildcards so the query matches literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
