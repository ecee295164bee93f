package ingest

import (
	"time"

	"github.com/reelsync/reelsync/internal/models"
	"github.com/reelsync/reelsync/internal/platform"
)

// normalize maps one remote catalog item onto the stored shape. The remote
// reports creation time as epoch seconds; zero or negative means unknown and
// stays the zero time. Absent numeric fields already decoded to zero.
func normalize(rv platform.RemoteVideo, accountKey string, syncedAt time.Time) *models.Video {
	var createdAt time.Time
	if rv.CreateTime > 0 {
		createdAt = time.Unix(rv.CreateTime, 0).UTC()
	}

	return &models.Video{
		VideoID:         rv.ID,
		OwnerAccountKey: accountKey,
		Title:           rv.Title,
		Description:     rv.Description,
		CoverImageURL:   rv.CoverImageURL,
		ShareURL:        rv.ShareURL,
		DurationSec:     rv.DurationSec,
		ViewCount:       rv.ViewCount,
		LikeCount:       rv.LikeCount,
		CommentCount:    rv.CommentCount,
		ShareCount:      rv.ShareCount,
		CreatedAt:       createdAt,
		SyncedAt:        syncedAt,
	}
}
