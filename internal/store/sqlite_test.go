package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reelsync/reelsync/internal/models"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()

	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "reelsync.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = s.Close()
	})
	return s
}

func TestSQLiteStore_Credentials(t *testing.T) {
	t.Run("get missing credential", func(t *testing.T) {
		s := newTestSQLiteStore(t)
		cred, ok := s.GetCredential("nope")
		assert.False(t, ok)
		assert.Nil(t, cred)
	})

	t.Run("set and get credential round trip", func(t *testing.T) {
		s := newTestSQLiteStore(t)
		cred := testCredential("acct-1")
		require.NoError(t, s.SetCredential(cred))

		got, ok := s.GetCredential("acct-1")
		require.True(t, ok)
		assert.Equal(t, cred.AccessToken, got.AccessToken)
		assert.Equal(t, cred.RefreshToken, got.RefreshToken)
		assert.Equal(t, cred.AccessExpiresInSec, got.AccessExpiresInSec)
		assert.Equal(t, cred.RefreshExpiresSec, got.RefreshExpiresSec)
		assert.True(t, cred.IssuedAt.Equal(got.IssuedAt))
	})

	t.Run("set replaces the whole record atomically", func(t *testing.T) {
		s := newTestSQLiteStore(t)
		require.NoError(t, s.SetCredential(testCredential("acct-1")))

		replacement := testCredential("acct-1")
		replacement.AccessToken = "rotated-access"
		replacement.RefreshToken = "rotated-refresh"
		replacement.AccessExpiresInSec = 7200
		require.NoError(t, s.SetCredential(replacement))

		creds := s.ListCredentials()
		require.Len(t, creds, 1)
		assert.Equal(t, "rotated-access", creds[0].AccessToken)
		assert.Equal(t, "rotated-refresh", creds[0].RefreshToken)
		assert.Equal(t, int64(7200), creds[0].AccessExpiresInSec)
	})

	t.Run("invalid credential is rejected", func(t *testing.T) {
		s := newTestSQLiteStore(t)
		err := s.SetCredential(&models.Credential{AccountKey: ""})
		assert.Error(t, err)
		assert.Empty(t, s.ListCredentials())
	})

	t.Run("delete and list", func(t *testing.T) {
		s := newTestSQLiteStore(t)
		require.NoError(t, s.SetCredential(testCredential("acct-b")))
		require.NoError(t, s.SetCredential(testCredential("acct-a")))

		creds := s.ListCredentials()
		require.Len(t, creds, 2)
		assert.Equal(t, "acct-a", creds[0].AccountKey)
		assert.Equal(t, "acct-b", creds[1].AccountKey)

		require.NoError(t, s.DeleteCredential("acct-a"))
		creds = s.ListCredentials()
		require.Len(t, creds, 1)
		assert.Equal(t, "acct-b", creds[0].AccountKey)
	})
}

func TestSQLiteStore_Videos(t *testing.T) {
	t.Run("upsert and get round trip", func(t *testing.T) {
		s := newTestSQLiteStore(t)
		v := testVideo("v1", "acct-1")
		require.NoError(t, s.UpsertVideo(v))

		got, ok := s.GetVideo("v1")
		require.True(t, ok)
		assert.Equal(t, v.Title, got.Title)
		assert.Equal(t, v.ShareURL, got.ShareURL)
		assert.Equal(t, v.ViewCount, got.ViewCount)
		assert.True(t, v.CreatedAt.Equal(got.CreatedAt))
	})

	t.Run("same video twice keeps one row and overwrites the payload", func(t *testing.T) {
		s := newTestSQLiteStore(t)
		require.NoError(t, s.UpsertVideo(testVideo("v1", "acct-1")))

		second := testVideo("v1", "acct-1")
		second.Title = "updated title"
		second.LikeCount = 1234
		require.NoError(t, s.UpsertVideo(second))

		assert.Equal(t, 1, s.CountVideos())
		got, _ := s.GetVideo("v1")
		assert.Equal(t, "updated title", got.Title)
		assert.Equal(t, int64(1234), got.LikeCount)
	})

	t.Run("conflict keeps owner and creation time", func(t *testing.T) {
		s := newTestSQLiteStore(t)
		first := testVideo("v1", "acct-1")
		require.NoError(t, s.UpsertVideo(first))

		second := testVideo("v1", "acct-other")
		second.CreatedAt = time.Now().Add(48 * time.Hour)
		require.NoError(t, s.UpsertVideo(second))

		got, _ := s.GetVideo("v1")
		assert.Equal(t, "acct-1", got.OwnerAccountKey)
		assert.True(t, first.CreatedAt.Equal(got.CreatedAt))
	})

	t.Run("list videos by account ordered by creation time", func(t *testing.T) {
		s := newTestSQLiteStore(t)
		older := testVideo("v-old", "acct-1")
		older.CreatedAt = time.Now().Add(-time.Hour).UTC().Truncate(time.Second)
		newer := testVideo("v-new", "acct-1")
		require.NoError(t, s.UpsertVideo(older))
		require.NoError(t, s.UpsertVideo(newer))
		require.NoError(t, s.UpsertVideo(testVideo("v-other", "acct-2")))

		videos := s.ListVideosByAccount("acct-1")
		require.Len(t, videos, 2)
		assert.Equal(t, "v-new", videos[0].VideoID)
		assert.Equal(t, "v-old", videos[1].VideoID)
	})
}

func TestSQLiteStore_ClearAndStats(t *testing.T) {
	s := newTestSQLiteStore(t)
	require.NoError(t, s.SetCredential(testCredential("acct-1")))
	require.NoError(t, s.UpsertVideo(testVideo("v1", "acct-1")))

	stats := s.Stats()
	assert.Equal(t, 1, stats.CredentialCount)
	assert.Equal(t, 1, stats.VideoCount)

	s.Clear()

	stats = s.Stats()
	assert.Equal(t, 0, stats.CredentialCount)
	assert.Equal(t, 0, stats.VideoCount)
}

func TestSQLiteStore_ReopenKeepsData(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "reelsync.db")

	s, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, s.SetCredential(testCredential("acct-1")))
	require.NoError(t, s.UpsertVideo(testVideo("v1", "acct-1")))
	require.NoError(t, s.Close())

	reopened, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer reopened.Close()

	_, ok := reopened.GetCredential("acct-1")
	assert.True(t, ok)
	assert.Equal(t, 1, reopened.CountVideos())
}
