// Package bookmark manages a user's saved passages.
package bookmark

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kailas-cloud/lectio/internal/domain"
	dombm "github.com/kailas-cloud/lectio/internal/domain/bookmark"
	"github.com/kailas-cloud/lectio/internal/domain/reference"
)

// Service handles bookmark CRUD operations.
type Service struct {
	repo Repository
	now  func() time.Time
}

// New creates a bookmark service. now defaults to time.Now.
func New(repo Repository, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{repo: repo, now: now}
}

// List returns the user's bookmarks, newest first.
func (s *Service) List(ctx context.Context, userID int64) ([]dombm.Bookmark, error) {
	list, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}
	return list, nil
}

// Add validates and stores a bookmark. Empty display text is derived from the span.
func (s *Service) Add(ctx context.Context, userID int64, span dombm.Span, displayText, note string) (dombm.Bookmark, error) {
	displayText = strings.TrimSpace(displayText)
	if displayText == "" {
		displayText = DisplayText(span)
	}
	b, err := dombm.New(userID, span, displayText, note, s.now().UTC())
	if err != nil {
		return dombm.Bookmark{}, fmt.Errorf("validate bookmark: %w", err)
	}
	return s.store(ctx, b)
}

// AddReference parses text and bookmarks the referenced verses.
func (s *Service) AddReference(ctx context.Context, userID int64, text, note string) (dombm.Bookmark, error) {
	ref, err := reference.Parse(text)
	if err != nil {
		return dombm.Bookmark{}, fmt.Errorf("parse reference: %w", err)
	}
	b, err := dombm.FromReference(userID, ref, note, s.now().UTC())
	if err != nil {
		return dombm.Bookmark{}, fmt.Errorf("validate bookmark: %w", err)
	}
	return s.store(ctx, b)
}

// Update changes display text and note of an owned bookmark.
func (s *Service) Update(ctx context.Context, userID, id int64, displayText, note string) (dombm.Bookmark, error) {
	if len(note) > dombm.MaxNoteSize {
		return dombm.Bookmark{}, fmt.Errorf("note too large (max %d bytes): %w", dombm.MaxNoteSize, domain.ErrInvalidBookmark)
	}
	current, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return dombm.Bookmark{}, fmt.Errorf("get bookmark: %w", err)
	}
	displayText = strings.TrimSpace(displayText)
	if displayText == "" {
		displayText = current.DisplayText()
	}
	if err := s.repo.Update(ctx, userID, id, displayText, note); err != nil {
		return dombm.Bookmark{}, fmt.Errorf("update bookmark: %w", err)
	}
	return dombm.Reconstruct(id, userID, current.Span(), displayText, note, current.CreatedAt()), nil
}

// Delete removes an owned bookmark.
func (s *Service) Delete(ctx context.Context, userID, id int64) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return fmt.Errorf("delete bookmark: %w", err)
	}
	return nil
}

// Exists reports whether the user already bookmarked the chapter or display text in m.
func (s *Service) Exists(ctx context.Context, m dombm.Match) (bool, error) {
	if m.DisplayText == "" && (!reference.ValidBookID(m.BookID) || m.Chapter < 1) {
		return false, fmt.Errorf("book_id and chapter or display_text required: %w", domain.ErrInvalidBookmark)
	}
	ok, err := s.repo.Exists(ctx, m)
	if err != nil {
		return false, fmt.Errorf("bookmark exists: %w", err)
	}
	return ok, nil
}

func (s *Service) store(ctx context.Context, b dombm.Bookmark) (dombm.Bookmark, error) {
	stored, err := s.repo.Add(ctx, b)
	if err != nil {
		return dombm.Bookmark{}, fmt.Errorf("add bookmark: %w", err)
	}
	return stored, nil
}

// DisplayText renders a span as "ин 3:16-18", "пс 22" or "быт 1-3".
func DisplayText(span dombm.Span) string {
	abbrev, ok := reference.Abbreviation(span.BookID)
	if !ok {
		return ""
	}
	var b strings.Builder
	b.WriteString(abbrev)
	b.WriteByte(' ')
	b.WriteString(strconv.Itoa(span.ChapterStart))

	multiChapter := span.ChapterEnd != nil && *span.ChapterEnd != span.ChapterStart
	if span.VerseStart != nil {
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(*span.VerseStart))
	}
	switch {
	case multiChapter:
		b.WriteByte('-')
		b.WriteString(strconv.Itoa(*span.ChapterEnd))
		if span.VerseEnd != nil {
			b.WriteByte(':')
			b.WriteString(strconv.Itoa(*span.VerseEnd))
		}
	case span.VerseStart != nil && span.VerseEnd != nil && *span.VerseEnd != *span.VerseStart:
		b.WriteByte('-')
		b.WriteString(strconv.Itoa(*span.VerseEnd))
	}
	return b.String()
}
