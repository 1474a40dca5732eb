// Package bookmark holds the bookmark aggregate.
package bookmark

import (
	"fmt"
	"time"

	"github.com/kailas-cloud/lectio/internal/domain"
	"github.com/kailas-cloud/lectio/internal/domain/reference"
)

// MaxNoteSize caps user notes in bytes.
const MaxNoteSize = 4096

// Span is the passage a bookmark points at. Only ChapterStart is required;
// nil ends or verses mean "whole chapter" or "up to the chapter end".
type Span struct {
	BookID       int
	ChapterStart int
	ChapterEnd   *int
	VerseStart   *int
	VerseEnd     *int
}

// Bookmark is a user's saved passage (immutable value object).
type Bookmark struct {
	id          int64
	userID      int64
	span        Span
	displayText string
	note        string
	createdAt   time.Time
}

// New validates and creates a Bookmark that has not been stored yet.
func New(userID int64, span Span, displayText, note string, createdAt time.Time) (Bookmark, error) {
	if userID <= 0 {
		return Bookmark{}, fmt.Errorf("user id must be positive: %w", domain.ErrInvalidBookmark)
	}
	if err := ValidateSpan(span); err != nil {
		return Bookmark{}, err
	}
	if len(note) > MaxNoteSize {
		return Bookmark{}, fmt.Errorf("note too large (max %d bytes): %w", MaxNoteSize, domain.ErrInvalidBookmark)
	}
	return Bookmark{
		userID:      userID,
		span:        span,
		displayText: displayText,
		note:        note,
		createdAt:   createdAt,
	}, nil
}

// FromReference builds a bookmark for a parsed single-chapter reference.
// Display text defaults to the canonical reference form.
func FromReference(userID int64, ref reference.Reference, note string, createdAt time.Time) (Bookmark, error) {
	start, end := ref.StartVerse(), ref.EndVerse()
	span := Span{
		BookID:       ref.BookID(),
		ChapterStart: ref.Chapter(),
		VerseStart:   &start,
		VerseEnd:     &end,
	}
	return New(userID, span, ref.String(), note, createdAt)
}

// Reconstruct creates a Bookmark without validation (storage hydration).
func Reconstruct(id, userID int64, span Span, displayText, note string, createdAt time.Time) Bookmark {
	return Bookmark{
		id:          id,
		userID:      userID,
		span:        span,
		displayText: displayText,
		note:        note,
		createdAt:   createdAt,
	}
}

// ValidateSpan checks canon bounds and range ordering.
func ValidateSpan(s Span) error {
	if !reference.ValidBookID(s.BookID) {
		return fmt.Errorf("book_id %d out of canon: %w", s.BookID, domain.ErrInvalidBookmark)
	}
	if s.ChapterStart < 1 {
		return fmt.Errorf("chapter_start must be positive: %w", domain.ErrInvalidBookmark)
	}
	if s.ChapterEnd != nil && *s.ChapterEnd < s.ChapterStart {
		return fmt.Errorf("chapter_end before chapter_start: %w", domain.ErrInvalidBookmark)
	}
	if s.VerseStart != nil && *s.VerseStart < 1 {
		return fmt.Errorf("verse_start must be positive: %w", domain.ErrInvalidBookmark)
	}
	if s.VerseEnd != nil && s.VerseStart == nil {
		return fmt.Errorf("verse_end requires verse_start: %w", domain.ErrInvalidBookmark)
	}
	sameChapter := s.ChapterEnd == nil || *s.ChapterEnd == s.ChapterStart
	if sameChapter && s.VerseStart != nil && s.VerseEnd != nil && *s.VerseEnd < *s.VerseStart {
		return fmt.Errorf("verse_end before verse_start: %w", domain.ErrInvalidBookmark)
	}
	return nil
}

// WithID returns a copy carrying the storage-assigned ID.
func (b Bookmark) WithID(id int64) Bookmark {
	b.id = id
	return b
}

// ID returns the storage ID (0 before insert).
func (b Bookmark) ID() int64 { return b.id }

// UserID returns the owner.
func (b Bookmark) UserID() int64 { return b.userID }

// Span returns the bookmarked passage.
func (b Bookmark) Span() Span { return b.span }

// DisplayText returns the label shown in the client.
func (b Bookmark) DisplayText() string { return b.displayText }

// Note returns the user note.
func (b Bookmark) Note() string { return b.note }

// CreatedAt returns the creation timestamp.
func (b Bookmark) CreatedAt() time.Time { return b.createdAt }

// Match selects a user's bookmarks by display text when set, otherwise by book and starting chapter.
type Match struct {
	UserID      int64
	BookID      int
	Chapter     int
	DisplayText string
}
