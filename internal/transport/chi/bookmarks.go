package chi

import (
	"encoding/json"
	"net/http"
	"time"

	dombm "github.com/kailas-cloud/lectio/internal/domain/bookmark"
)

// createBookmarkRequest accepts either a reference string or an explicit span.
type createBookmarkRequest struct {
	Reference    string `json:"reference,omitempty"`
	BookID       int    `json:"book_id,omitempty"`
	ChapterStart int    `json:"chapter_start,omitempty"`
	ChapterEnd   *int   `json:"chapter_end,omitempty"`
	VerseStart   *int   `json:"verse_start,omitempty"`
	VerseEnd     *int   `json:"verse_end,omitempty"`
	DisplayText  string `json:"display_text,omitempty"`
	Note         string `json:"note,omitempty"`
}

type updateBookmarkRequest struct {
	DisplayText string `json:"display_text"`
	Note        string `json:"note"`
}

type bookmarkResponse struct {
	ID           int64     `json:"id"`
	BookID       int       `json:"book_id"`
	ChapterStart int       `json:"chapter_start"`
	ChapterEnd   *int      `json:"chapter_end,omitempty"`
	VerseStart   *int      `json:"verse_start,omitempty"`
	VerseEnd     *int      `json:"verse_end,omitempty"`
	DisplayText  string    `json:"display_text"`
	Note         string    `json:"note"`
	CreatedAt    time.Time `json:"created_at"`
}

type existsResponse struct {
	Exists bool `json:"exists"`
}

func bookmarkToResponse(b dombm.Bookmark) bookmarkResponse {
	span := b.Span()
	return bookmarkResponse{
		ID:           b.ID(),
		BookID:       span.BookID,
		ChapterStart: span.ChapterStart,
		ChapterEnd:   span.ChapterEnd,
		VerseStart:   span.VerseStart,
		VerseEnd:     span.VerseEnd,
		DisplayText:  b.DisplayText(),
		Note:         b.Note(),
		CreatedAt:    b.CreatedAt(),
	}
}

// ListBookmarks handles GET /bookmarks.
func (s *Server) ListBookmarks(w http.ResponseWriter, r *http.Request) {
	userID, err := requireUser(r)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	list, err := s.bookmarks.List(r.Context(), userID)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	items := make([]bookmarkResponse, len(list))
	for i := range list {
		items[i] = bookmarkToResponse(list[i])
	}
	writeJSON(w, http.StatusOK, newList(items))
}

// CreateBookmark handles POST /bookmarks.
func (s *Server) CreateBookmark(w http.ResponseWriter, r *http.Request) {
	userID, err := requireUser(r)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	var req createBookmarkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	var b dombm.Bookmark
	if req.Reference != "" {
		b, err = s.bookmarks.AddReference(r.Context(), userID, req.Reference, req.Note)
	} else {
		span := dombm.Span{
			BookID:       req.BookID,
			ChapterStart: req.ChapterStart,
			ChapterEnd:   req.ChapterEnd,
			VerseStart:   req.VerseStart,
			VerseEnd:     req.VerseEnd,
		}
		b, err = s.bookmarks.Add(r.Context(), userID, span, req.DisplayText, req.Note)
	}
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, bookmarkToResponse(b))
}

// UpdateBookmark handles PATCH /bookmarks/{id}.
func (s *Server) UpdateBookmark(w http.ResponseWriter, r *http.Request) {
	userID, err := requireUser(r)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	var id int64
	if err := pathParam(r, "id", &id); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}

	var req updateBookmarkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	b, err := s.bookmarks.Update(r.Context(), userID, id, req.DisplayText, req.Note)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bookmarkToResponse(b))
}

// DeleteBookmark handles DELETE /bookmarks/{id}.
func (s *Server) DeleteBookmark(w http.ResponseWriter, r *http.Request) {
	userID, err := requireUser(r)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	var id int64
	if err := pathParam(r, "id", &id); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}

	if err := s.bookmarks.Delete(r.Context(), userID, id); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// BookmarkExists handles GET /bookmarks/exists.
func (s *Server) BookmarkExists(w http.ResponseWriter, r *http.Request) {
	userID, err := requireUser(r)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	var bookID, chapter *int
	var displayText *string
	if err := queryParam(r, "book_id", false, &bookID); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}
	if err := queryParam(r, "chapter_start", false, &chapter); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}
	if err := queryParam(r, "display_text", false, &displayText); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}

	ok, err := s.bookmarks.Exists(r.Context(), dombm.Match{
		UserID:      userID,
		BookID:      deref(bookID),
		Chapter:     deref(chapter),
		DisplayText: deref(displayText),
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, existsResponse{Exists: ok})
}
