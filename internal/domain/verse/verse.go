// Package verse holds the scripture read model: books, verses and verse ranges.
package verse

import (
	"fmt"

	"github.com/kailas-cloud/lectio/internal/domain/reference"
)

// Verse is a single verse of one translation.
type Verse struct {
	ID          int64  `json:"id"`
	BookID      int    `json:"book_id"`
	Chapter     int    `json:"chapter"`
	Number      int    `json:"verse"`
	Text        string `json:"text"`
	Translation string `json:"translation"`
}

// Book is canon metadata as stored in the backend.
type Book struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	ShortName     string `json:"short_name"`
	Testament     string `json:"testament"`
	ChaptersCount int    `json:"chapters_count"`
	Order         int    `json:"order"`
}

// Range is an inclusive verse interval inside one chapter.
type Range struct {
	Start int
	End   int
}

// NewRange validates and creates a Range.
func NewRange(start, end int) (Range, error) {
	if start < 1 {
		return Range{}, fmt.Errorf("range start must be positive, got %d", start)
	}
	if end < start {
		return Range{}, fmt.Errorf("range end %d before start %d", end, start)
	}
	return Range{Start: start, End: end}, nil
}

// RangeOf extracts the verse range of a parsed reference.
func RangeOf(r reference.Reference) Range {
	return Range{Start: r.StartVerse(), End: r.EndVerse()}
}

// Contains reports whether n falls inside the range.
func (r Range) Contains(n int) bool {
	return n >= r.Start && n <= r.End
}

// Len returns the number of verses the range covers.
func (r Range) Len() int {
	return r.End - r.Start + 1
}
