package chi

import (
	"net/http"

	"github.com/kailas-cloud/lectio/internal/domain/reference"
	domverse "github.com/kailas-cloud/lectio/internal/domain/verse"
)

type listResponse[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

func newList[T any](items []T) listResponse[T] {
	if items == nil {
		items = []T{}
	}
	return listResponse[T]{Items: items, Total: len(items)}
}

// referenceResponse is a parsed reference as the client sees it.
type referenceResponse struct {
	Text       string `json:"text"`
	BookID     int    `json:"book_id"`
	Chapter    int    `json:"chapter"`
	StartVerse int    `json:"start_verse"`
	EndVerse   int    `json:"end_verse"`
}

func referenceToResponse(ref reference.Reference) referenceResponse {
	return referenceResponse{
		Text:       ref.String(),
		BookID:     ref.BookID(),
		Chapter:    ref.Chapter(),
		StartVerse: ref.StartVerse(),
		EndVerse:   ref.EndVerse(),
	}
}

type passageResponse struct {
	Reference referenceResponse `json:"reference"`
	Verses    []domverse.Verse  `json:"verses"`
}

// ListBooks handles GET /books.
func (s *Server) ListBooks(w http.ResponseWriter, r *http.Request) {
	books, err := s.bible.Books(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newList(books))
}

// GetBook handles GET /books/{bookID}.
func (s *Server) GetBook(w http.ResponseWriter, r *http.Request) {
	var bookID int
	if err := pathParam(r, "bookID", &bookID); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}

	book, err := s.bible.Book(r.Context(), bookID)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, book)
}

// GetChapter handles GET /books/{bookID}/chapters/{chapter}.
func (s *Server) GetChapter(w http.ResponseWriter, r *http.Request) {
	var bookID, chapter int
	var translation *string
	if err := pathParam(r, "bookID", &bookID); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}
	if err := pathParam(r, "chapter", &chapter); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}
	if err := queryParam(r, "translation", false, &translation); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}

	verses, err := s.bible.Chapter(r.Context(), bookID, chapter, deref(translation))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newList(verses))
}

// GetVerses handles GET /verses?ref=.
func (s *Server) GetVerses(w http.ResponseWriter, r *http.Request) {
	var ref string
	var translation *string
	if err := queryParam(r, "ref", true, &ref); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}
	if err := queryParam(r, "translation", false, &translation); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}

	p, err := s.bible.Lookup(r.Context(), ref, deref(translation))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	verses := p.Verses
	if verses == nil {
		verses = []domverse.Verse{}
	}
	writeJSON(w, http.StatusOK, passageResponse{
		Reference: referenceToResponse(p.Reference),
		Verses:    verses,
	})
}

// SearchVerses handles GET /search?q=.
func (s *Server) SearchVerses(w http.ResponseWriter, r *http.Request) {
	var q string
	var translation *string
	var limit *int
	if err := queryParam(r, "q", true, &q); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}
	if err := queryParam(r, "translation", false, &translation); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}
	if err := queryParam(r, "limit", false, &limit); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}

	verses, err := s.bible.Search(r.Context(), q, deref(translation), deref(limit))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newList(verses))
}
