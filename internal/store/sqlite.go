package store

import (
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/reelsync/reelsync/internal/errors"
	"github.com/reelsync/reelsync/internal/logging"
	"github.com/reelsync/reelsync/internal/models"
	_ "modernc.org/sqlite"
)

// SQLiteStore provides SQLite-based storage for credentials and videos with
// WAL mode. It is thread-safe and supports concurrent access.
type SQLiteStore struct {
	mu       sync.RWMutex
	db       *sql.DB
	logger   *logging.Logger
	settings SettingsStore
}

// NewSQLiteStore creates a new SQLite store with WAL mode enabled
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// Create directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, &errors.ErrDirectoryCreate{Path: dir, Err: err}
		}
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)&_pragma=cache_size(2000)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, &errors.ErrDatabaseOpen{Path: dbPath, Err: err}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, &errors.ErrDatabaseOpen{Path: dbPath, Err: err}
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	settingsStore, err := NewSQLiteSettingsStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteStore{
		db:       db,
		logger:   logging.NewLogger(),
		settings: settingsStore,
	}, nil
}

// runMigrations runs database migrations
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return &errors.ErrDatabaseQuery{Operation: "create migrations table", Err: err}
	}

	var currentVersion int
	err = db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&currentVersion)
	if err != nil {
		return &errors.ErrDatabaseQuery{Operation: "get current migration version", Err: err}
	}

	migrations := []struct {
		version int
		up      string
	}{
		{
			version: 1,
			up: `
				CREATE TABLE IF NOT EXISTS credentials (
					account_key TEXT PRIMARY KEY,
					access_token TEXT NOT NULL,
					refresh_token TEXT NOT NULL,
					expires_in INTEGER NOT NULL DEFAULT 0,
					refresh_expires_in INTEGER NOT NULL DEFAULT 0,
					issued_at DATETIME NOT NULL,
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
				);

				CREATE TABLE IF NOT EXISTS videos (
					video_id TEXT PRIMARY KEY,
					owner_account_key TEXT NOT NULL,
					title TEXT NOT NULL DEFAULT '',
					description TEXT NOT NULL DEFAULT '',
					cover_image_url TEXT NOT NULL DEFAULT '',
					share_url TEXT NOT NULL DEFAULT '',
					duration_sec INTEGER NOT NULL DEFAULT 0,
					view_count INTEGER NOT NULL DEFAULT 0,
					like_count INTEGER NOT NULL DEFAULT 0,
					comment_count INTEGER NOT NULL DEFAULT 0,
					share_count INTEGER NOT NULL DEFAULT 0,
					created_at DATETIME NOT NULL,
					synced_at DATETIME NOT NULL
				);

				CREATE INDEX IF NOT EXISTS idx_videos_owner ON videos(owner_account_key);
				CREATE INDEX IF NOT EXISTS idx_videos_synced_at ON videos(synced_at);
			`,
		},
	}

	tx, err := db.Begin()
	if err != nil {
		return &errors.ErrDatabaseQuery{Operation: "begin transaction", Err: err}
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, m := range migrations {
		if m.version > currentVersion {
			if _, err := tx.Exec(m.up); err != nil {
				return &errors.ErrDatabaseMigration{Version: m.version, Err: err}
			}
			if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", m.version); err != nil {
				return &errors.ErrDatabaseMigration{Version: m.version, Err: err}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return &errors.ErrDatabaseQuery{Operation: "commit migrations", Err: err}
	}

	return nil
}

// Close shuts down the store
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Settings returns the settings store.
func (s *SQLiteStore) Settings() SettingsStore {
	return s.settings
}

// Credential operations

// GetCredential retrieves the credential for an account
func (s *SQLiteStore) GetCredential(accountKey string) (*models.Credential, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var cred models.Credential
	err := s.db.QueryRow(`
		SELECT account_key, access_token, refresh_token, expires_in, refresh_expires_in, issued_at, updated_at
		FROM credentials WHERE account_key = ?
	`, accountKey).Scan(&cred.AccountKey, &cred.AccessToken, &cred.RefreshToken, &cred.AccessExpiresInSec, &cred.RefreshExpiresSec, &cred.IssuedAt, &cred.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, false
	}
	if err != nil {
		s.logger.Error("failed to get credential", "account_key", accountKey, "error", err.Error())
		return nil, false
	}

	return &cred, true
}

// SetCredential stores or replaces the credential for an account. The write
// is a single statement, so the record is replaced atomically.
func (s *SQLiteStore) SetCredential(cred *models.Credential) error {
	if err := cred.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	_, err := s.db.Exec(`
		INSERT INTO credentials (account_key, access_token, refresh_token, expires_in, refresh_expires_in, issued_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(account_key) DO UPDATE SET
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			expires_in = excluded.expires_in,
			refresh_expires_in = excluded.refresh_expires_in,
			issued_at = excluded.issued_at,
			updated_at = excluded.updated_at
	`, cred.AccountKey, cred.AccessToken, cred.RefreshToken, cred.AccessExpiresInSec, cred.RefreshExpiresSec, cred.IssuedAt, now)

	if err != nil {
		return &errors.ErrDatabaseQuery{Operation: "set credential", Err: err}
	}
	return nil
}

// DeleteCredential removes the credential for an account
func (s *SQLiteStore) DeleteCredential(accountKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec("DELETE FROM credentials WHERE account_key = ?", accountKey)
	if err != nil {
		return &errors.ErrDatabaseQuery{Operation: "delete credential", Err: err}
	}
	return nil
}

// ListCredentials returns all stored credentials
func (s *SQLiteStore) ListCredentials() []*models.Credential {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT account_key, access_token, refresh_token, expires_in, refresh_expires_in, issued_at, updated_at
		FROM credentials ORDER BY account_key
	`)
	if err != nil {
		return []*models.Credential{}
	}
	defer rows.Close()

	var creds []*models.Credential
	for rows.Next() {
		var cred models.Credential
		if err := rows.Scan(&cred.AccountKey, &cred.AccessToken, &cred.RefreshToken, &cred.AccessExpiresInSec, &cred.RefreshExpiresSec, &cred.IssuedAt, &cred.UpdatedAt); err != nil {
			continue
		}
		creds = append(creds, &cred)
	}

	return creds
}

// Video operations

// GetVideo retrieves a video by its platform ID
func (s *SQLiteStore) GetVideo(videoID string) (*models.Video, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var v models.Video
	err := s.db.QueryRow(`
		SELECT video_id, owner_account_key, title, description, cover_image_url, share_url,
		       duration_sec, view_count, like_count, comment_count, share_count, created_at, synced_at
		FROM videos WHERE video_id = ?
	`, videoID).Scan(&v.VideoID, &v.OwnerAccountKey, &v.Title, &v.Description, &v.CoverImageURL, &v.ShareURL,
		&v.DurationSec, &v.ViewCount, &v.LikeCount, &v.CommentCount, &v.ShareCount, &v.CreatedAt, &v.SyncedAt)

	if err == sql.ErrNoRows {
		return nil, false
	}
	if err != nil {
		return nil, false
	}

	return &v, true
}

// UpsertVideo inserts a video or overwrites the payload of an existing row.
// The owner and the remote creation time are only written on first insert.
func (s *SQLiteStore) UpsertVideo(v *models.Video) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO videos (video_id, owner_account_key, title, description, cover_image_url, share_url,
		                    duration_sec, view_count, like_count, comment_count, share_count, created_at, synced_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(video_id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			cover_image_url = excluded.cover_image_url,
			share_url = excluded.share_url,
			duration_sec = excluded.duration_sec,
			view_count = excluded.view_count,
			like_count = excluded.like_count,
			comment_count = excluded.comment_count,
			share_count = excluded.share_count,
			synced_at = excluded.synced_at
	`, v.VideoID, v.OwnerAccountKey, v.Title, v.Description, v.CoverImageURL, v.ShareURL,
		v.DurationSec, v.ViewCount, v.LikeCount, v.CommentCount, v.ShareCount, v.CreatedAt, v.SyncedAt)

	if err != nil {
		return &errors.ErrDatabaseQuery{Operation: "upsert video", Err: err}
	}
	return nil
}

// ListVideosByAccount returns all videos owned by one account
func (s *SQLiteStore) ListVideosByAccount(accountKey string) []*models.Video {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT video_id, owner_account_key, title, description, cover_image_url, share_url,
		       duration_sec, view_count, like_count, comment_count, share_count, created_at, synced_at
		FROM videos WHERE owner_account_key = ? ORDER BY created_at DESC
	`, accountKey)
	if err != nil {
		return []*models.Video{}
	}
	defer rows.Close()

	var videos []*models.Video
	for rows.Next() {
		var v models.Video
		if err := rows.Scan(&v.VideoID, &v.OwnerAccountKey, &v.Title, &v.Description, &v.CoverImageURL, &v.ShareURL,
			&v.DurationSec, &v.ViewCount, &v.LikeCount, &v.CommentCount, &v.ShareCount, &v.CreatedAt, &v.SyncedAt); err != nil {
			continue
		}
		videos = append(videos, &v)
	}

	return videos
}

// CountVideos returns the total number of stored videos
func (s *SQLiteStore) CountVideos() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM videos").Scan(&count); err != nil {
		s.logger.Error("failed to count videos", "error", err.Error())
	}
	return count
}

// Clear removes all data from the store
func (s *SQLiteStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec("DELETE FROM videos"); err != nil {
		s.logger.Error("failed to clear videos", "error", err.Error())
	}
	if _, err := s.db.Exec("DELETE FROM credentials"); err != nil {
		s.logger.Error("failed to clear credentials", "error", err.Error())
	}
}

// Stats returns statistics about the store
func (s *SQLiteStore) Stats() StoreStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var credentialCount, videoCount int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM credentials").Scan(&credentialCount); err != nil {
		s.logger.Error("failed to count credentials", "error", err.Error())
	}
	if err := s.db.QueryRow("SELECT COUNT(*) FROM videos").Scan(&videoCount); err != nil {
		s.logger.Error("failed to count videos", "error", err.Error())
	}

	return StoreStats{
		CredentialCount: credentialCount,
		VideoCount:      videoCount,
	}
}

// Ensure SQLiteStore implements the Store interface
var _ Store = (*SQLiteStore)(nil)
