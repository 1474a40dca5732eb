package chi

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/lectio/internal/domain"
	dombm "github.com/kailas-cloud/lectio/internal/domain/bookmark"
	"github.com/kailas-cloud/lectio/internal/domain/quota"
	domverse "github.com/kailas-cloud/lectio/internal/domain/verse"
	bibleuc "github.com/kailas-cloud/lectio/internal/usecase/bible"
	explainuc "github.com/kailas-cloud/lectio/internal/usecase/explain"
	healthuc "github.com/kailas-cloud/lectio/internal/usecase/health"
)

type mockBible struct {
	books      []domverse.Book
	book       domverse.Book
	verses     []domverse.Verse
	passage    bibleuc.Passage
	err        error
	gotLimit   int
	gotQuery   string
	gotTr      string
	gotBookID  int
	gotChapter int
}

func (m *mockBible) Books(_ context.Context) ([]domverse.Book, error) { return m.books, m.err }

func (m *mockBible) Book(_ context.Context, id int) (domverse.Book, error) {
	m.gotBookID = id
	return m.book, m.err
}

func (m *mockBible) Chapter(_ context.Context, bookID, chapter int, tr string) ([]domverse.Verse, error) {
	m.gotBookID, m.gotChapter, m.gotTr = bookID, chapter, tr
	return m.verses, m.err
}

func (m *mockBible) Lookup(_ context.Context, text, tr string) (bibleuc.Passage, error) {
	m.gotQuery, m.gotTr = text, tr
	return m.passage, m.err
}

func (m *mockBible) Search(_ context.Context, q, tr string, limit int) ([]domverse.Verse, error) {
	m.gotQuery, m.gotTr, m.gotLimit = q, tr, limit
	return m.verses, m.err
}

type mockExplain struct {
	res       explainuc.Explanation
	err       error
	status    quota.Status
	tokens    int
	cached    bool
	gotUserID int64
	gotText   string
}

func (m *mockExplain) Explain(ctx context.Context, userID int64, text, _ string) (explainuc.Explanation, error) {
	m.gotUserID, m.gotText = userID, text
	if m.err != nil {
		return explainuc.Explanation{}, m.err
	}
	domain.AIUsageFromContext(ctx).Add(domain.Completion{TotalTokens: m.tokens, Cached: m.cached})
	return m.res, nil
}

func (m *mockExplain) Limits(_ context.Context, userID int64) quota.Status {
	m.gotUserID = userID
	return m.status
}

type mockBookmarks struct {
	list      []dombm.Bookmark
	bookmark  dombm.Bookmark
	exists    bool
	err       error
	gotSpan   dombm.Span
	gotText   string
	gotID     int64
	gotMatch  dombm.Match
	viaRef    bool
	gotUserID int64
}

func (m *mockBookmarks) List(_ context.Context, userID int64) ([]dombm.Bookmark, error) {
	m.gotUserID = userID
	return m.list, m.err
}

func (m *mockBookmarks) Add(_ context.Context, userID int64, span dombm.Span, displayText, _ string) (dombm.Bookmark, error) {
	m.gotUserID, m.gotSpan, m.gotText = userID, span, displayText
	return m.bookmark, m.err
}

func (m *mockBookmarks) AddReference(_ context.Context, userID int64, text, _ string) (dombm.Bookmark, error) {
	m.gotUserID, m.gotText, m.viaRef = userID, text, true
	return m.bookmark, m.err
}

func (m *mockBookmarks) Update(_ context.Context, userID, id int64, displayText, _ string) (dombm.Bookmark, error) {
	m.gotUserID, m.gotID, m.gotText = userID, id, displayText
	return m.bookmark, m.err
}

func (m *mockBookmarks) Delete(_ context.Context, userID, id int64) error {
	m.gotUserID, m.gotID = userID, id
	return m.err
}

func (m *mockBookmarks) Exists(_ context.Context, match dombm.Match) (bool, error) {
	m.gotMatch = match
	return m.exists, m.err
}

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(_ context.Context) healthuc.Report { return m.report }

type fixture struct {
	bible     *mockBible
	explain   *mockExplain
	bookmarks *mockBookmarks
	health    *mockHealth
	handler   http.Handler
}

func newFixture() *fixture {
	f := &fixture{
		bible:     &mockBible{},
		explain:   &mockExplain{},
		bookmarks: &mockBookmarks{},
		health:    &mockHealth{report: healthuc.Report{Status: healthuc.Healthy, Checks: map[string]healthuc.CheckResult{}}},
	}
	f.handler = NewServer(f.bible, f.explain, f.bookmarks, f.health, zap.NewNop()).Handler()
	return f
}

// do sends a request as userID; userID 0 sends an anonymous request.
func do(t *testing.T, h http.Handler, method, target, body string, userID int64) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader = http.NoBody
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rdr)
	if userID > 0 {
		req = req.WithContext(ContextWithUserID(req.Context(), userID))
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}
