package reference

// Testament splits the canon into two parts.
type Testament string

const (
	// OldTestament covers books 1..39.
	OldTestament Testament = "old"
	// NewTestament covers books 40..66.
	NewTestament Testament = "new"
)

// BookCount is the size of the canon the abbreviation table covers.
const BookCount = 66

// abbreviations lists the Synodal abbreviations in canonical order; index+1 is the book ID.
var abbreviations = [BookCount]string{
	// Old Testament
	"быт", "исх", "лев", "чис", "втор",
	"нав", "суд", "руф", "1цар", "2цар",
	"3цар", "4цар", "1пар", "2пар", "езд",
	"неем", "есф", "иов", "пс", "прит",
	"еккл", "песн", "ис", "иер", "плач",
	"иез", "дан", "ос", "иоил", "ам",
	"авд", "ион", "мих", "наум", "авв",
	"соф", "агг", "зах", "мал",
	// New Testament
	"мф", "мк", "лк", "ин", "деян",
	"рим", "1кор", "2кор", "гал", "еф",
	"флп", "кол", "1фес", "2фес", "1тим",
	"2тим", "тит", "флм", "евр", "иак",
	"1пет", "2пет", "1ин", "2ин", "3ин",
	"иуд", "откр",
}

// bookIDs is the lookup side of the table, built once and never mutated.
var bookIDs = func() map[string]int {
	m := make(map[string]int, BookCount)
	for i, a := range abbreviations {
		m[a] = i + 1
	}
	return m
}()

// BookID returns the book ID for a lowercase abbreviation.
func BookID(abbrev string) (int, bool) {
	id, ok := bookIDs[abbrev]
	return id, ok
}

// Abbreviation returns the canonical abbreviation for a book ID.
func Abbreviation(bookID int) (string, bool) {
	if bookID < 1 || bookID > BookCount {
		return "", false
	}
	return abbreviations[bookID-1], true
}

// Abbreviations returns a copy of the table in canonical order.
func Abbreviations() []string {
	out := make([]string, BookCount)
	copy(out, abbreviations[:])
	return out
}

// TestamentOf reports which testament a book belongs to.
func TestamentOf(bookID int) Testament {
	if bookID <= 39 {
		return OldTestament
	}
	return NewTestament
}

// ValidBookID reports whether id is inside the canon.
func ValidBookID(id int) bool {
	return id >= 1 && id <= BookCount
}
