package store

import (
	"fmt"
	"sync"
)

// MemorySettingsStore implements SettingsStore in memory
type MemorySettingsStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemorySettingsStore creates a new in-memory settings store
func NewMemorySettingsStore() *MemorySettingsStore {
	return &MemorySettingsStore{values: make(map[string]string)}
}

// Get retrieves a setting value
func (s *MemorySettingsStore) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.values[key]
	return value, ok
}

// Set sets a setting value
func (s *MemorySettingsStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = value
	return nil
}

// Delete removes a setting
func (s *MemorySettingsStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.values, key)
	return nil
}

// GetInt retrieves an integer setting
func (s *MemorySettingsStore) GetInt(key string, defaultVal int) int {
	value, ok := s.Get(key)
	if !ok {
		return defaultVal
	}
	var result int
	if _, err := fmt.Sscanf(value, "%d", &result); err != nil {
		return defaultVal
	}
	return result
}

// SetInt sets an integer setting
func (s *MemorySettingsStore) SetInt(key string, value int) error {
	return s.Set(key, fmt.Sprintf("%d", value))
}

// Clear removes all settings
func (s *MemorySettingsStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values = make(map[string]string)
}

// Ensure MemorySettingsStore implements the SettingsStore interface
var _ SettingsStore = (*MemorySettingsStore)(nil)
