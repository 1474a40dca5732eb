// Package reference turns human-written scripture references into verse lookups.
package reference

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/kailas-cloud/lectio/internal/domain"
)

// pattern is anchored on both ends; the lazy book token lets "1ин33:1" split as "1ин" + "33".
var pattern = regexp.MustCompile(`^([\p{L}\d]+?)\s*(\d+):(\d+)(?:-(\d+))?$`)

// Reference is a parsed single-chapter verse range (immutable value object).
type Reference struct {
	bookID     int
	chapter    int
	startVerse int
	endVerse   int
}

// Parse converts text such as "ин 3:16-18" into a Reference.
// Failures wrap domain.ErrMalformedReference or domain.ErrUnknownBook.
// The parser is syntactic only: chapter and verse bounds are left to the verse store.
func Parse(text string) (Reference, error) {
	normalized := strings.ToLower(strings.TrimSpace(text))

	m := pattern.FindStringSubmatch(normalized)
	if m == nil {
		return Reference{}, fmt.Errorf("parse %q: %w", text, domain.ErrMalformedReference)
	}

	bookID, ok := BookID(m[1])
	if !ok {
		return Reference{}, fmt.Errorf("parse %q: book %q: %w", text, m[1], domain.ErrUnknownBook)
	}

	chapter, err := positive(m[2])
	if err != nil {
		return Reference{}, fmt.Errorf("parse %q: chapter: %w", text, err)
	}
	start, err := positive(m[3])
	if err != nil {
		return Reference{}, fmt.Errorf("parse %q: verse: %w", text, err)
	}
	end := start
	if m[4] != "" {
		if end, err = positive(m[4]); err != nil {
			return Reference{}, fmt.Errorf("parse %q: end verse: %w", text, err)
		}
		if end < start {
			return Reference{}, fmt.Errorf("parse %q: end verse %d before %d: %w",
				text, end, start, domain.ErrMalformedReference)
		}
	}

	return Reference{bookID: bookID, chapter: chapter, startVerse: start, endVerse: end}, nil
}

// New validates and creates a Reference from numeric parts.
func New(bookID, chapter, startVerse, endVerse int) (Reference, error) {
	if !ValidBookID(bookID) {
		return Reference{}, fmt.Errorf("book %d: %w", bookID, domain.ErrUnknownBook)
	}
	if chapter < 1 || startVerse < 1 || endVerse < startVerse {
		return Reference{}, fmt.Errorf("%d:%d-%d: %w", chapter, startVerse, endVerse, domain.ErrMalformedReference)
	}
	return Reference{bookID: bookID, chapter: chapter, startVerse: startVerse, endVerse: endVerse}, nil
}

func positive(digits string) (int, error) {
	n, err := strconv.Atoi(digits)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%q is not a positive integer: %w", digits, domain.ErrMalformedReference)
	}
	return n, nil
}

// BookID returns the canonical book ID (1..66).
func (r Reference) BookID() int { return r.bookID }

// Chapter returns the chapter number.
func (r Reference) Chapter() int { return r.chapter }

// StartVerse returns the first verse of the range.
func (r Reference) StartVerse() int { return r.startVerse }

// EndVerse returns the last verse of the range (inclusive).
func (r Reference) EndVerse() int { return r.endVerse }

// IsRange reports whether the reference spans more than one verse.
func (r Reference) IsRange() bool { return r.endVerse > r.startVerse }

// String renders the canonical form, e.g. "ин 3:16-18".
func (r Reference) String() string {
	abbrev, _ := Abbreviation(r.bookID)
	if r.IsRange() {
		return fmt.Sprintf("%s %d:%d-%d", abbrev, r.chapter, r.startVerse, r.endVerse)
	}
	return fmt.Sprintf("%s %d:%d", abbrev, r.chapter, r.startVerse)
}
