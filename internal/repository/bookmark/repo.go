// Package bookmark stores user bookmarks in Postgres.
package bookmark

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/kailas-cloud/lectio/internal/db"
	"github.com/kailas-cloud/lectio/internal/db/postgres"
	"github.com/kailas-cloud/lectio/internal/domain"
	dombm "github.com/kailas-cloud/lectio/internal/domain/bookmark"
)

const (
	columns = `id, user_id, book_id, chapter_start, chapter_end, verse_start, verse_end, display_text, note, created_at`

	listSQL = `SELECT ` + columns + ` FROM bookmarks WHERE user_id = $1 ORDER BY created_at DESC, id DESC`
	getSQL  = `SELECT ` + columns + ` FROM bookmarks WHERE id = $1 AND user_id = $2`

	insertSQL = `INSERT INTO bookmarks
	(user_id, book_id, chapter_start, chapter_end, verse_start, verse_end, display_text, note, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING id`

	updateSQL = `UPDATE bookmarks SET display_text = $3, note = $4 WHERE id = $1 AND user_id = $2`
	deleteSQL = `DELETE FROM bookmarks WHERE id = $1 AND user_id = $2`

	existsByTextSQL    = `SELECT EXISTS (SELECT 1 FROM bookmarks WHERE user_id = $1 AND display_text = $2)`
	existsByChapterSQL = `SELECT EXISTS (SELECT 1 FROM bookmarks WHERE user_id = $1 AND book_id = $2 AND chapter_start = $3)`
)

// Repo implements the bookmark store on a pgx pool.
type Repo struct {
	q postgres.Querier
}

// New creates a bookmark repository.
func New(q postgres.Querier) *Repo {
	return &Repo{q: q}
}

// List returns the user's bookmarks, newest first.
func (r *Repo) List(ctx context.Context, userID int64) ([]dombm.Bookmark, error) {
	rows, err := r.q.Query(ctx, listSQL, userID)
	if err != nil {
		return nil, &db.Error{Op: db.OpQuery, Err: fmt.Errorf("list bookmarks: %w", err)}
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (dombm.Bookmark, error) {
		return scanBookmark(row)
	})
	if err != nil {
		return nil, &db.Error{Op: db.OpQuery, Err: fmt.Errorf("scan bookmarks: %w", err)}
	}
	if out == nil {
		out = []dombm.Bookmark{}
	}
	return out, nil
}

// Get returns one bookmark owned by userID or domain.ErrNotFound.
func (r *Repo) Get(ctx context.Context, userID, id int64) (dombm.Bookmark, error) {
	b, err := scanBookmark(r.q.QueryRow(ctx, getSQL, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dombm.Bookmark{}, fmt.Errorf("bookmark %d: %w", id, domain.ErrNotFound)
		}
		return dombm.Bookmark{}, &db.Error{Op: db.OpQuery, Err: fmt.Errorf("get bookmark %d: %w", id, err)}
	}
	return b, nil
}

// Add inserts b and returns it with the assigned ID.
func (r *Repo) Add(ctx context.Context, b dombm.Bookmark) (dombm.Bookmark, error) {
	s := b.Span()
	var id int64
	err := r.q.QueryRow(ctx, insertSQL,
		b.UserID(), s.BookID, s.ChapterStart, s.ChapterEnd, s.VerseStart, s.VerseEnd,
		b.DisplayText(), b.Note(), b.CreatedAt(),
	).Scan(&id)
	if err != nil {
		return dombm.Bookmark{}, &db.Error{Op: db.OpExec, Err: fmt.Errorf("insert bookmark: %w", err)}
	}
	return b.WithID(id), nil
}

// Update replaces display text and note of a bookmark owned by userID.
func (r *Repo) Update(ctx context.Context, userID, id int64, displayText, note string) error {
	tag, err := r.q.Exec(ctx, updateSQL, id, userID, displayText, note)
	if err != nil {
		return &db.Error{Op: db.OpExec, Err: fmt.Errorf("update bookmark %d: %w", id, err)}
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("bookmark %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

// Delete removes a bookmark owned by userID.
func (r *Repo) Delete(ctx context.Context, userID, id int64) error {
	tag, err := r.q.Exec(ctx, deleteSQL, id, userID)
	if err != nil {
		return &db.Error{Op: db.OpExec, Err: fmt.Errorf("delete bookmark %d: %w", id, err)}
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("bookmark %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

// Exists reports whether any bookmark satisfies m.
func (r *Repo) Exists(ctx context.Context, m dombm.Match) (bool, error) {
	var row pgx.Row
	if m.DisplayText != "" {
		row = r.q.QueryRow(ctx, existsByTextSQL, m.UserID, m.DisplayText)
	} else {
		row = r.q.QueryRow(ctx, existsByChapterSQL, m.UserID, m.BookID, m.Chapter)
	}
	var ok bool
	if err := row.Scan(&ok); err != nil {
		return false, &db.Error{Op: db.OpQuery, Err: fmt.Errorf("bookmark exists: %w", err)}
	}
	return ok, nil
}

func scanBookmark(row pgx.Row) (dombm.Bookmark, error) {
	var (
		id, userID  int64
		span        dombm.Span
		displayText string
		note        string
		createdAt   time.Time
	)
	err := row.Scan(&id, &userID, &span.BookID, &span.ChapterStart, &span.ChapterEnd,
		&span.VerseStart, &span.VerseEnd, &displayText, &note, &createdAt)
	if err != nil {
		return dombm.Bookmark{}, err
	}
	return dombm.Reconstruct(id, userID, span, displayText, note, createdAt), nil
}
