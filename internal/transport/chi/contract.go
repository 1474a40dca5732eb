package chi

import (
	"context"

	dombm "github.com/kailas-cloud/lectio/internal/domain/bookmark"
	"github.com/kailas-cloud/lectio/internal/domain/quota"
	domverse "github.com/kailas-cloud/lectio/internal/domain/verse"
	bibleuc "github.com/kailas-cloud/lectio/internal/usecase/bible"
	explainuc "github.com/kailas-cloud/lectio/internal/usecase/explain"
	healthuc "github.com/kailas-cloud/lectio/internal/usecase/health"
)

// BibleService is the scripture read API the handlers call.
type BibleService interface {
	Books(ctx context.Context) ([]domverse.Book, error)
	Book(ctx context.Context, id int) (domverse.Book, error)
	Chapter(ctx context.Context, bookID, chapter int, translation string) ([]domverse.Verse, error)
	Lookup(ctx context.Context, text, translation string) (bibleuc.Passage, error)
	Search(ctx context.Context, query, translation string, limit int) ([]domverse.Verse, error)
}

// ExplainService produces AI explanations under the daily quota.
type ExplainService interface {
	Explain(ctx context.Context, userID int64, text, translation string) (explainuc.Explanation, error)
	Limits(ctx context.Context, userID int64) quota.Status
}

// BookmarkService manages a user's bookmarks.
type BookmarkService interface {
	List(ctx context.Context, userID int64) ([]dombm.Bookmark, error)
	Add(ctx context.Context, userID int64, span dombm.Span, displayText, note string) (dombm.Bookmark, error)
	AddReference(ctx context.Context, userID int64, text, note string) (dombm.Bookmark, error)
	Update(ctx context.Context, userID, id int64, displayText, note string) (dombm.Bookmark, error)
	Delete(ctx context.Context, userID, id int64) error
	Exists(ctx context.Context, m dombm.Match) (bool, error)
}

// HealthService reports component status.
type HealthService interface {
	Check(ctx context.Context) healthuc.Report
}
