package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/lectio/internal/domain"
	dombm "github.com/kailas-cloud/lectio/internal/domain/bookmark"
	"github.com/kailas-cloud/lectio/internal/domain/quota"
	"github.com/kailas-cloud/lectio/internal/domain/reference"
	domverse "github.com/kailas-cloud/lectio/internal/domain/verse"
	bibleuc "github.com/kailas-cloud/lectio/internal/usecase/bible"
	explainuc "github.com/kailas-cloud/lectio/internal/usecase/explain"
	healthuc "github.com/kailas-cloud/lectio/internal/usecase/health"
)

func decodeError(t *testing.T, body string) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		t.Fatalf("decode error response %q: %v", body, err)
	}
	return resp
}

func john316(t *testing.T) reference.Reference {
	t.Helper()
	ref, err := reference.New(43, 3, 16, 16)
	if err != nil {
		t.Fatalf("reference: %v", err)
	}
	return ref
}

func TestListBooks(t *testing.T) {
	f := newFixture()
	f.bible.books = []domverse.Book{{ID: 1, Name: "Бытие", ShortName: "быт", Testament: "old", ChaptersCount: 50, Order: 1}}

	rr := do(t, f.handler, http.MethodGet, "/api/v1/books", "", 0)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}

	var resp listResponse[domverse.Book]
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Total != 1 || resp.Items[0].ShortName != "быт" {
		t.Errorf("unexpected body: %+v", resp)
	}
}

func TestListBooks_EmptyIsArray(t *testing.T) {
	f := newFixture()

	rr := do(t, f.handler, http.MethodGet, "/api/v1/books", "", 0)
	if !strings.Contains(rr.Body.String(), `"items":[]`) {
		t.Errorf("expected empty array, got %s", rr.Body.String())
	}
}

func TestGetBook(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		err      error
		wantCode int
	}{
		{"found", "/api/v1/books/43", nil, http.StatusOK},
		{"not found", "/api/v1/books/43", domain.ErrNotFound, http.StatusNotFound},
		{"non numeric id", "/api/v1/books/john", nil, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.bible.err = tt.err
			f.bible.book = domverse.Book{ID: 43}

			rr := do(t, f.handler, http.MethodGet, tt.path, "", 0)
			if rr.Code != tt.wantCode {
				t.Fatalf("status: got %d, want %d (%s)", rr.Code, tt.wantCode, rr.Body.String())
			}
			if tt.wantCode == http.StatusOK && f.bible.gotBookID != 43 {
				t.Errorf("book id: got %d", f.bible.gotBookID)
			}
		})
	}
}

func TestGetChapter(t *testing.T) {
	f := newFixture()
	f.bible.verses = []domverse.Verse{{BookID: 19, Chapter: 22, Number: 1, Text: "Боже мой!"}}

	rr := do(t, f.handler, http.MethodGet, "/api/v1/books/19/chapters/22?translation=nrt", "", 0)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d (%s)", rr.Code, rr.Body.String())
	}
	if f.bible.gotBookID != 19 || f.bible.gotChapter != 22 || f.bible.gotTr != "nrt" {
		t.Errorf("args: book=%d chapter=%d tr=%q", f.bible.gotBookID, f.bible.gotChapter, f.bible.gotTr)
	}
}

func TestGetChapter_InvalidTranslation(t *testing.T) {
	f := newFixture()
	f.bible.err = fmt.Errorf("translation %q: %w", "kjv", domain.ErrInvalidTranslation)

	rr := do(t, f.handler, http.MethodGet, "/api/v1/books/19/chapters/22?translation=kjv", "", 0)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d", rr.Code)
	}
	if got := decodeError(t, rr.Body.String()); got.Code != CodeInvalidTranslation {
		t.Errorf("code: got %s", got.Code)
	}
}

func TestGetVerses(t *testing.T) {
	f := newFixture()
	f.bible.passage = bibleuc.Passage{
		Reference: john316(t),
		Verses:    []domverse.Verse{{BookID: 43, Chapter: 3, Number: 16, Text: "Ибо так возлюбил Бог мир"}},
	}

	rr := do(t, f.handler, http.MethodGet, "/api/v1/verses?ref=%D0%B8%D0%BD+3%3A16", "", 0)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d (%s)", rr.Code, rr.Body.String())
	}
	if f.bible.gotQuery != "ин 3:16" {
		t.Errorf("query: got %q", f.bible.gotQuery)
	}

	var resp passageResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Reference.Text != "ин 3:16" || resp.Reference.BookID != 43 || len(resp.Verses) != 1 {
		t.Errorf("unexpected body: %+v", resp)
	}
}

func TestGetVerses_MissingRef(t *testing.T) {
	f := newFixture()

	rr := do(t, f.handler, http.MethodGet, "/api/v1/verses", "", 0)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d", rr.Code)
	}
	if got := decodeError(t, rr.Body.String()); got.Code != CodeBadRequest {
		t.Errorf("code: got %s", got.Code)
	}
}

func TestGetVerses_ReferenceErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantMsg string
	}{
		{"malformed", fmt.Errorf("parse %q: %w", "abc", domain.ErrMalformedReference), domain.ErrMalformedReference.Error()},
		{"unknown book", fmt.Errorf("parse %q: %w", "xyz 1:1", domain.ErrUnknownBook), domain.ErrUnknownBook.Error()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.bible.err = tt.err

			rr := do(t, f.handler, http.MethodGet, "/api/v1/verses?ref=abc", "", 0)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("status: got %d", rr.Code)
			}
			got := decodeError(t, rr.Body.String())
			if got.Code != CodeInvalidReference {
				t.Errorf("code: got %s", got.Code)
			}
			if got.Message != tt.wantMsg {
				t.Errorf("message: got %q, want %q", got.Message, tt.wantMsg)
			}
		})
	}
}

func TestSearchVerses(t *testing.T) {
	f := newFixture()

	rr := do(t, f.handler, http.MethodGet, "/api/v1/search?q=love&limit=5", "", 0)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d (%s)", rr.Code, rr.Body.String())
	}
	if f.bible.gotQuery != "love" || f.bible.gotLimit != 5 || f.bible.gotTr != "" {
		t.Errorf("args: q=%q limit=%d tr=%q", f.bible.gotQuery, f.bible.gotLimit, f.bible.gotTr)
	}
}

func TestSearchVerses_BadLimit(t *testing.T) {
	f := newFixture()

	rr := do(t, f.handler, http.MethodGet, "/api/v1/search?q=love&limit=many", "", 0)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d", rr.Code)
	}
}

func TestSearchVerses_InternalErrorNotLeaked(t *testing.T) {
	f := newFixture()
	f.bible.err = errors.New("pq: connection reset by peer")

	rr := do(t, f.handler, http.MethodGet, "/api/v1/search?q=love", "", 0)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status: got %d", rr.Code)
	}
	got := decodeError(t, rr.Body.String())
	if got.Code != CodeInternalError || got.Message != "internal error" {
		t.Errorf("unexpected error body: %+v", got)
	}
}

func TestExplain(t *testing.T) {
	f := newFixture()
	st := quota.NewStatus("2026-10-14", 3, 1, time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC))
	f.explain.res = explainuc.Explanation{
		Reference: john316(t),
		Text:      "Стих говорит о любви Бога.",
		Model:     "openai/gpt-3.5-turbo",
		Quota:     st,
	}
	f.explain.tokens = 120

	rr := do(t, f.handler, http.MethodPost, "/api/v1/ai/explain", `{"reference":"ин 3:16"}`, 7)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d (%s)", rr.Code, rr.Body.String())
	}
	if f.explain.gotUserID != 7 || f.explain.gotText != "ин 3:16" {
		t.Errorf("args: user=%d text=%q", f.explain.gotUserID, f.explain.gotText)
	}
	if got := rr.Header().Get("X-AI-Tokens"); got != "120" {
		t.Errorf("X-AI-Tokens: got %q", got)
	}
	if got := rr.Header().Get("X-AI-Cached"); got != "false" {
		t.Errorf("X-AI-Cached: got %q", got)
	}

	var resp explainResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Explanation == "" || resp.Limits.Remaining != 2 || resp.Limits.Day != "2026-10-14" {
		t.Errorf("unexpected body: %+v", resp)
	}
}

func TestExplain_Errors(t *testing.T) {
	tests := []struct {
		name     string
		userID   int64
		body     string
		err      error
		wantCode int
		wantErr  ErrorCode
	}{
		{"anonymous", 0, `{"reference":"ин 3:16"}`, nil, http.StatusUnauthorized, CodeUnauthorized},
		{"bad json", 7, `{`, nil, http.StatusBadRequest, CodeBadRequest},
		{"empty reference", 7, `{}`, nil, http.StatusBadRequest, CodeBadRequest},
		{"no verses", 7, `{"reference":"ин 30:1"}`,
			fmt.Errorf("explain: %w", domain.ErrNotFound), http.StatusNotFound, CodeNotFound},
		{"provider", 7, `{"reference":"ин 3:16"}`,
			fmt.Errorf("explain: %w", domain.ErrAIProviderError), http.StatusBadGateway, CodeAIProviderError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.explain.err = tt.err

			rr := do(t, f.handler, http.MethodPost, "/api/v1/ai/explain", tt.body, tt.userID)
			if rr.Code != tt.wantCode {
				t.Fatalf("status: got %d, want %d (%s)", rr.Code, tt.wantCode, rr.Body.String())
			}
			if got := decodeError(t, rr.Body.String()); got.Code != tt.wantErr {
				t.Errorf("code: got %s, want %s", got.Code, tt.wantErr)
			}
		})
	}
}

func TestExplain_QuotaExceeded(t *testing.T) {
	f := newFixture()
	f.explain.err = fmt.Errorf("explain: %w", domain.NewQuotaExceeded(3, 3))

	rr := do(t, f.handler, http.MethodPost, "/api/v1/ai/explain", `{"reference":"ин 3:16"}`, 7)
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("status: got %d", rr.Code)
	}

	var body struct {
		Code  ErrorCode `json:"code"`
		Limit int       `json:"limit"`
		Used  int       `json:"used"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Code != CodeQuotaExceeded || body.Limit != 3 || body.Used != 3 {
		t.Errorf("unexpected body: %+v", body)
	}
}

func TestExplain_NotConfigured(t *testing.T) {
	f := newFixture()
	h := NewServer(f.bible, nil, f.bookmarks, f.health, zap.NewNop()).Handler()

	rr := do(t, h, http.MethodPost, "/api/v1/ai/explain", `{"reference":"ин 3:16"}`, 7)
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status: got %d", rr.Code)
	}
}

func TestGetLimits(t *testing.T) {
	f := newFixture()
	f.explain.status = quota.NewStatus("2026-10-14", 3, 3, time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC))

	rr := do(t, f.handler, http.MethodGet, "/api/v1/ai/limits", "", 9)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d", rr.Code)
	}

	var resp limitsResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if f.explain.gotUserID != 9 || resp.Limit != 3 || resp.Used != 3 || resp.Remaining != 0 {
		t.Errorf("unexpected limits: %+v", resp)
	}
}

func testBookmark() dombm.Bookmark {
	v := 16
	return dombm.Reconstruct(5, 7, dombm.Span{BookID: 43, ChapterStart: 3, VerseStart: &v, VerseEnd: &v},
		"ин 3:16", "", time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC))
}

func TestListBookmarks(t *testing.T) {
	f := newFixture()
	f.bookmarks.list = []dombm.Bookmark{testBookmark()}

	rr := do(t, f.handler, http.MethodGet, "/api/v1/bookmarks", "", 7)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d", rr.Code)
	}

	var resp listResponse[bookmarkResponse]
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Total != 1 || resp.Items[0].ID != 5 || resp.Items[0].DisplayText != "ин 3:16" {
		t.Errorf("unexpected body: %+v", resp)
	}
	if resp.Items[0].ChapterEnd != nil {
		t.Error("chapter_end must be omitted")
	}
}

func TestListBookmarks_Anonymous(t *testing.T) {
	f := newFixture()

	rr := do(t, f.handler, http.MethodGet, "/api/v1/bookmarks", "", 0)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status: got %d", rr.Code)
	}
}

func TestCreateBookmark_Reference(t *testing.T) {
	f := newFixture()
	f.bookmarks.bookmark = testBookmark()

	rr := do(t, f.handler, http.MethodPost, "/api/v1/bookmarks", `{"reference":"ин 3:16","note":"любовь"}`, 7)
	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d (%s)", rr.Code, rr.Body.String())
	}
	if !f.bookmarks.viaRef || f.bookmarks.gotText != "ин 3:16" {
		t.Errorf("expected AddReference, got viaRef=%v text=%q", f.bookmarks.viaRef, f.bookmarks.gotText)
	}
}

func TestCreateBookmark_Span(t *testing.T) {
	f := newFixture()
	f.bookmarks.bookmark = testBookmark()

	rr := do(t, f.handler, http.MethodPost, "/api/v1/bookmarks",
		`{"book_id":1,"chapter_start":1,"chapter_end":3}`, 7)
	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d (%s)", rr.Code, rr.Body.String())
	}
	span := f.bookmarks.gotSpan
	if f.bookmarks.viaRef || span.BookID != 1 || span.ChapterStart != 1 || span.ChapterEnd == nil || *span.ChapterEnd != 3 {
		t.Errorf("unexpected span: %+v", span)
	}
}

func TestCreateBookmark_Invalid(t *testing.T) {
	f := newFixture()
	f.bookmarks.err = fmt.Errorf("book 99: %w", domain.ErrInvalidBookmark)

	rr := do(t, f.handler, http.MethodPost, "/api/v1/bookmarks", `{"book_id":99,"chapter_start":1}`, 7)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d", rr.Code)
	}
	if got := decodeError(t, rr.Body.String()); got.Code != CodeInvalidBookmark {
		t.Errorf("code: got %s", got.Code)
	}
}

func TestUpdateBookmark(t *testing.T) {
	f := newFixture()
	f.bookmarks.bookmark = testBookmark()

	rr := do(t, f.handler, http.MethodPatch, "/api/v1/bookmarks/5", `{"note":"перечитать"}`, 7)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d (%s)", rr.Code, rr.Body.String())
	}
	if f.bookmarks.gotID != 5 || f.bookmarks.gotUserID != 7 {
		t.Errorf("args: id=%d user=%d", f.bookmarks.gotID, f.bookmarks.gotUserID)
	}
}

func TestUpdateBookmark_NotOwned(t *testing.T) {
	f := newFixture()
	f.bookmarks.err = fmt.Errorf("bookmark 5: %w", domain.ErrNotFound)

	rr := do(t, f.handler, http.MethodPatch, "/api/v1/bookmarks/5", `{"note":"x"}`, 8)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status: got %d", rr.Code)
	}
}

func TestDeleteBookmark(t *testing.T) {
	f := newFixture()

	rr := do(t, f.handler, http.MethodDelete, "/api/v1/bookmarks/5", "", 7)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("status: got %d", rr.Code)
	}
	if f.bookmarks.gotID != 5 {
		t.Errorf("id: got %d", f.bookmarks.gotID)
	}
}

func TestDeleteBookmark_BadID(t *testing.T) {
	f := newFixture()

	rr := do(t, f.handler, http.MethodDelete, "/api/v1/bookmarks/first", "", 7)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d", rr.Code)
	}
}

func TestBookmarkExists(t *testing.T) {
	f := newFixture()
	f.bookmarks.exists = true

	rr := do(t, f.handler, http.MethodGet, "/api/v1/bookmarks/exists?book_id=43&chapter_start=3", "", 7)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d (%s)", rr.Code, rr.Body.String())
	}
	want := dombm.Match{UserID: 7, BookID: 43, Chapter: 3}
	if f.bookmarks.gotMatch != want {
		t.Errorf("match: got %+v, want %+v", f.bookmarks.gotMatch, want)
	}
	if !strings.Contains(rr.Body.String(), `"exists":true`) {
		t.Errorf("body: %s", rr.Body.String())
	}
}

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		name     string
		status   healthuc.Status
		wantCode int
	}{
		{"healthy", healthuc.Healthy, http.StatusOK},
		{"degraded", healthuc.Degraded, http.StatusOK},
		{"unhealthy", healthuc.Unhealthy, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.health.report = healthuc.Report{
				Status: tt.status,
				Checks: map[string]healthuc.CheckResult{healthuc.ComponentRedis: healthuc.CheckOK},
			}

			rr := do(t, f.handler, http.MethodGet, "/health", "", 0)
			if rr.Code != tt.wantCode {
				t.Fatalf("status: got %d, want %d", rr.Code, tt.wantCode)
			}
			if !strings.Contains(rr.Body.String(), `"redis":"ok"`) {
				t.Errorf("body: %s", rr.Body.String())
			}
		})
	}
}

func TestUnknownRoute(t *testing.T) {
	f := newFixture()

	rr := do(t, f.handler, http.MethodGet, "/api/v1/plans", "", 0)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status: got %d", rr.Code)
	}
	if got := decodeError(t, rr.Body.String()); got.Code != CodeNotFound {
		t.Errorf("code: got %s", got.Code)
	}
}
