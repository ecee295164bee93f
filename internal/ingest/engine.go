package ingest

import (
	"context"
	"time"

	"github.com/reelsync/reelsync/internal/errors"
	"github.com/reelsync/reelsync/internal/logging"
	"github.com/reelsync/reelsync/internal/metrics"
	"github.com/reelsync/reelsync/internal/platform"
	"github.com/reelsync/reelsync/internal/store"
)

// TokenSource hands out a usable access token for an account.
type TokenSource interface {
	GetValidToken(ctx context.Context, accountKey string) (string, error)
}

// Lister fetches one page of an account's catalog.
type Lister interface {
	ListVideos(ctx context.Context, accessToken string, cursor int64) (*platform.VideoPage, error)
}

// Engine pulls one account's catalog page by page and upserts every item.
// Re-running a sync is safe: upserts are keyed by the platform video ID.
type Engine struct {
	store    store.Store
	tokens   TokenSource
	lister   Lister
	metrics  *metrics.Metrics
	logger   *logging.Logger
	maxPages int
	now      func() time.Time
}

// NewEngine creates a sync engine. maxPages caps the page loop per account
// run; metrics may be nil.
func NewEngine(s store.Store, ts TokenSource, l Lister, m *metrics.Metrics, maxPages int) *Engine {
	return &Engine{
		store:    s,
		tokens:   ts,
		lister:   l,
		metrics:  m,
		logger:   logging.NewLogger(),
		maxPages: maxPages,
		now:      time.Now,
	}
}

// SyncAccount ingests the account's catalog and returns how many videos were
// upserted. The token is acquired once up front and reused for every page.
//
// An application-level rejection mid-stream ends the run but the pages
// already ingested stay, so the error is swallowed and only the count tells
// the caller the run was cut short. Transport failures come back alongside
// the partial count.
func (e *Engine) SyncAccount(ctx context.Context, accountKey string) (int, error) {
	accessToken, err := e.tokens.GetValidToken(ctx, accountKey)
	if err != nil {
		return 0, err
	}

	syncedAt := e.now().UTC()
	var cursor int64
	count := 0

	for pages := 0; pages < e.maxPages; pages++ {
		if err := ctx.Err(); err != nil {
			return count, &errors.ErrTransient{Op: "sync account", Err: err}
		}

		page, err := e.lister.ListVideos(ctx, accessToken, cursor)
		if err != nil {
			if errors.IsRemoteRejected(err) {
				e.logger.Warn("catalog listing cut short by remote",
					"account_key", accountKey, "videos_synced", count, "error", err.Error())
				return count, nil
			}
			return count, err
		}

		if len(page.Videos) == 0 {
			break
		}

		for _, rv := range page.Videos {
			if rv.ID == "" {
				e.logger.Warn("skipping catalog item without an id", "account_key", accountKey)
				continue
			}
			if err := e.store.UpsertVideo(normalize(rv, accountKey, syncedAt)); err != nil {
				return count, err
			}
			count++
		}

		if e.metrics != nil {
			e.metrics.RecordPageFetched()
			e.metrics.RecordVideosUpserted(len(page.Videos))
		}

		if !page.HasMore {
			return count, nil
		}
		next, ok := page.NextCursor()
		if !ok {
			e.logger.Warn("remote signalled more pages without a usable cursor",
				"account_key", accountKey)
			return count, nil
		}
		cursor = next
	}

	e.logger.Warn("page cap reached for account sync",
		"account_key", accountKey, "max_pages", e.maxPages, "videos_synced", count)
	return count, nil
}
