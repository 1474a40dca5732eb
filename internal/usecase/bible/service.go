// Package bible serves books, chapters, reference lookups and text search.
package bible

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/kailas-cloud/lectio/internal/domain"
	"github.com/kailas-cloud/lectio/internal/domain/reference"
	domverse "github.com/kailas-cloud/lectio/internal/domain/verse"
)

// MinSearchQuery is the shortest query (in characters) that is searched at all.
const MinSearchQuery = 3

// Passage is a parsed reference with the verses it resolved to.
type Passage struct {
	Reference reference.Reference
	Verses    []domverse.Verse
}

// Service handles scripture reads.
type Service struct {
	repo Repository
	cfg  domain.BibleConfig
}

// New creates a bible service.
func New(repo Repository, cfg domain.BibleConfig) *Service {
	return &Service{repo: repo, cfg: cfg}
}

// Books returns all books in canon order.
func (s *Service) Books(ctx context.Context) ([]domverse.Book, error) {
	books, err := s.repo.Books(ctx)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return books, nil
}

// Book returns one book by ID.
func (s *Service) Book(ctx context.Context, id int) (domverse.Book, error) {
	if !reference.ValidBookID(id) {
		return domverse.Book{}, fmt.Errorf("book %d: %w", id, domain.ErrNotFound)
	}
	b, err := s.repo.Book(ctx, id)
	if err != nil {
		return domverse.Book{}, fmt.Errorf("get book: %w", err)
	}
	return b, nil
}

// Chapter returns every verse of one chapter.
func (s *Service) Chapter(ctx context.Context, bookID, chapter int, translation string) ([]domverse.Verse, error) {
	tr, err := s.Translation(translation)
	if err != nil {
		return nil, err
	}
	if !reference.ValidBookID(bookID) || chapter < 1 {
		return nil, fmt.Errorf("chapter %d:%d: %w", bookID, chapter, domain.ErrNotFound)
	}
	verses, err := s.repo.Chapter(ctx, bookID, chapter, tr)
	if err != nil {
		return nil, fmt.Errorf("get chapter: %w", err)
	}
	return verses, nil
}

// Lookup parses text and loads the verses it points at.
// An out-of-range reference yields a passage with no verses, not an error.
func (s *Service) Lookup(ctx context.Context, text, translation string) (Passage, error) {
	tr, err := s.Translation(translation)
	if err != nil {
		return Passage{}, err
	}
	ref, err := reference.Parse(text)
	if err != nil {
		return Passage{}, fmt.Errorf("parse reference: %w", err)
	}
	verses, err := s.repo.FindVerses(ctx, ref.BookID(), ref.Chapter(), domverse.RangeOf(ref), tr)
	if err != nil {
		return Passage{}, fmt.Errorf("find verses: %w", err)
	}
	return Passage{Reference: ref, Verses: verses}, nil
}

// Search returns verses containing query. limit is clamped to [1, MaxSearchLimit].
func (s *Service) Search(ctx context.Context, query, translation string, limit int) ([]domverse.Verse, error) {
	tr, err := s.Translation(translation)
	if err != nil {
		return nil, err
	}
	q := strings.TrimSpace(query)
	if utf8.RuneCountInString(q) < MinSearchQuery {
		return []domverse.Verse{}, nil
	}
	verses, err := s.repo.Search(ctx, q, tr, s.clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("search verses: %w", err)
	}
	return verses, nil
}

// Translation resolves an empty code to the default and rejects unknown codes.
func (s *Service) Translation(code string) (string, error) {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return s.cfg.DefaultTranslation, nil
	}
	if !s.cfg.HasTranslation(code) {
		return "", fmt.Errorf("translation %q: %w", code, domain.ErrInvalidTranslation)
	}
	return code, nil
}

func (s *Service) clampLimit(limit int) int {
	maxLimit := s.cfg.MaxSearchLimit
	if maxLimit <= 0 {
		maxLimit = domain.DefaultBibleConfig().MaxSearchLimit
	}
	if limit <= 0 || limit > maxLimit {
		return maxLimit
	}
	return limit
}
