package models

import "time"

// Video is one synced catalog item. VideoID is assigned by the platform and
// globally unique; it is the idempotency key for upserts. OwnerAccountKey and
// CreatedAt never change after first sight, the payload fields are
// overwritten wholesale on every sync.
type Video struct {
	VideoID         string    `json:"video_id"`
	OwnerAccountKey string    `json:"owner_account_key"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	CoverImageURL   string    `json:"cover_image_url"`
	ShareURL        string    `json:"share_url"`
	DurationSec     int64     `json:"duration_sec"`
	ViewCount       int64     `json:"view_count"`
	LikeCount       int64     `json:"like_count"`
	CommentCount    int64     `json:"comment_count"`
	ShareCount      int64     `json:"share_count"`
	CreatedAt       time.Time `json:"created_at"`
	SyncedAt        time.Time `json:"synced_at"`
}

// VideoSlice is a slice of videos with helper methods.
type VideoSlice []Video

// FindByID returns a video by its platform ID.
func (vs VideoSlice) FindByID(id string) (*Video, bool) {
	for i := range vs {
		if vs[i].VideoID == id {
			return &vs[i], true
		}
	}
	return nil, false
}

// FilterByOwner returns the videos belonging to one account.
func (vs VideoSlice) FilterByOwner(accountKey string) VideoSlice {
	var result VideoSlice
	for _, v := range vs {
		if v.OwnerAccountKey == accountKey {
			result = append(result, v)
		}
	}
	return result
}
