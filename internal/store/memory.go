package store

import (
	"sync"
	"time"

	"github.com/reelsync/reelsync/internal/models"
)

// MemoryStore provides an in-memory store for credentials and videos.
// It is thread-safe and supports concurrent access.
type MemoryStore struct {
	mu          sync.RWMutex
	credentials map[string]*models.Credential // key: accountKey
	videos      map[string]*models.Video      // key: videoID
	settings    SettingsStore
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		credentials: make(map[string]*models.Credential),
		videos:      make(map[string]*models.Video),
		settings:    NewMemorySettingsStore(),
	}
}

// Credential operations

// GetCredential retrieves the credential for an account
func (s *MemoryStore) GetCredential(accountKey string) (*models.Credential, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cred, ok := s.credentials[accountKey]
	if !ok {
		return nil, false
	}
	copied := *cred
	return &copied, true
}

// SetCredential stores or replaces the credential for an account. The whole
// record is swapped under the lock, so readers never observe a partial write.
func (s *MemoryStore) SetCredential(cred *models.Credential) error {
	if err := cred.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *cred
	copied.UpdatedAt = time.Now()
	s.credentials[cred.AccountKey] = &copied
	return nil
}

// DeleteCredential removes the credential for an account
func (s *MemoryStore) DeleteCredential(accountKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.credentials, accountKey)
	return nil
}

// ListCredentials returns all stored credentials
func (s *MemoryStore) ListCredentials() []*models.Credential {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*models.Credential, 0, len(s.credentials))
	for _, cred := range s.credentials {
		copied := *cred
		result = append(result, &copied)
	}
	return result
}

// Video operations

// GetVideo retrieves a video by its platform ID
func (s *MemoryStore) GetVideo(videoID string) (*models.Video, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.videos[videoID]
	if !ok {
		return nil, false
	}
	copied := *v
	return &copied, true
}

// UpsertVideo inserts a video or overwrites the payload of an existing one.
// The owner and the remote creation time of an existing record are kept.
func (s *MemoryStore) UpsertVideo(v *models.Video) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *v
	if existing, ok := s.videos[v.VideoID]; ok {
		copied.OwnerAccountKey = existing.OwnerAccountKey
		copied.CreatedAt = existing.CreatedAt
	}
	s.videos[v.VideoID] = &copied
	return nil
}

// ListVideosByAccount returns all videos owned by one account
func (s *MemoryStore) ListVideosByAccount(accountKey string) []*models.Video {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*models.Video
	for _, v := range s.videos {
		if v.OwnerAccountKey == accountKey {
			copied := *v
			result = append(result, &copied)
		}
	}
	return result
}

// CountVideos returns the total number of stored videos
func (s *MemoryStore) CountVideos() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.videos)
}

// Clear removes all data from the store
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.credentials = make(map[string]*models.Credential)
	s.videos = make(map[string]*models.Video)
	if settings, ok := s.settings.(*MemorySettingsStore); ok {
		settings.Clear()
	}
}

// Stats returns statistics about the store
func (s *MemoryStore) Stats() StoreStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return StoreStats{
		CredentialCount: len(s.credentials),
		VideoCount:      len(s.videos),
	}
}

// Settings returns the settings store.
func (s *MemoryStore) Settings() SettingsStore {
	return s.settings
}

// Close implements Store Close (no-op for memory store).
func (s *MemoryStore) Close() error {
	return nil
}

// StoreStats contains statistics about the store
type StoreStats struct {
	CredentialCount int
	VideoCount      int
}

// Ensure MemoryStore implements the Store interface
var _ Store = (*MemoryStore)(nil)

// Store defines the interface for credential and video storage
type Store interface {
	// Credential operations
	GetCredential(accountKey string) (*models.Credential, bool)
	SetCredential(cred *models.Credential) error
	DeleteCredential(accountKey string) error
	ListCredentials() []*models.Credential

	// Video operations
	GetVideo(videoID string) (*models.Video, bool)
	UpsertVideo(v *models.Video) error
	ListVideosByAccount(accountKey string) []*models.Video
	CountVideos() int

	// Management
	Clear()
	Stats() StoreStats
	Settings() SettingsStore
	Close() error
}
