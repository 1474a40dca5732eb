package bookmark

import (
	"context"

	dombm "github.com/kailas-cloud/lectio/internal/domain/bookmark"
)

// Repository defines the storage contract for bookmarks.
// Get, Update and Delete are scoped to the owner and return domain.ErrNotFound otherwise.
type Repository interface {
	List(ctx context.Context, userID int64) ([]dombm.Bookmark, error)
	Get(ctx context.Context, userID, id int64) (dombm.Bookmark, error)
	Add(ctx context.Context, b dombm.Bookmark) (dombm.Bookmark, error)
	Update(ctx context.Context, userID, id int64, displayText, note string) error
	Delete(ctx context.Context, userID, id int64) error
	Exists(ctx context.Context, m dombm.Match) (bool, error)
}
