package storage

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// keyFile is the on-disk layout of the API key store
type keyFile struct {
	Keys []APIKey `json:"keys"`
}

// jsonStorage implements APIKeyStorage using a JSON file
type jsonStorage struct {
	filePath string
	mu       sync.RWMutex
}

// NewJSONStorage creates a new API key storage in dataDir
func NewJSONStorage(dataDir string) APIKeyStorage {
	return &jsonStorage{
		filePath: filepath.Join(dataDir, "api_keys.json"),
	}
}

// load loads the key file
func (s *jsonStorage) load() (*keyFile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.filePath)
	if errors.Is(err, os.ErrNotExist) {
		return &keyFile{Keys: []APIKey{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read key file: %w", err)
	}

	var kf keyFile
	if err := json.Unmarshal(data, &kf); err != nil {
		return nil, fmt.Errorf("failed to parse key file: %w", err)
	}

	return &kf, nil
}

// save saves the key file
func (s *jsonStorage) save(kf *keyFile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	data, err := json.MarshalIndent(kf, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal keys: %w", err)
	}

	// Keys are secrets
	if err := os.WriteFile(s.filePath, data, 0600); err != nil {
		return fmt.Errorf("failed to write key file: %w", err)
	}

	return nil
}

// GetAPIKeys returns all stored API keys
func (s *jsonStorage) GetAPIKeys() ([]APIKey, error) {
	kf, err := s.load()
	if err != nil {
		return nil, err
	}
	return kf.Keys, nil
}

// AddAPIKey adds a new API key
func (s *jsonStorage) AddAPIKey(key APIKey) error {
	kf, err := s.load()
	if err != nil {
		return err
	}

	for _, k := range kf.Keys {
		if subtle.ConstantTimeCompare([]byte(k.Key), []byte(key.Key)) == 1 {
			return fmt.Errorf("API key already exists")
		}
	}

	kf.Keys = append(kf.Keys, key)
	return s.save(kf)
}

// RemoveAPIKey removes an API key
func (s *jsonStorage) RemoveAPIKey(key string) error {
	kf, err := s.load()
	if err != nil {
		return err
	}

	found := false
	newKeys := make([]APIKey, 0, len(kf.Keys))
	for _, k := range kf.Keys {
		if subtle.ConstantTimeCompare([]byte(k.Key), []byte(key)) == 1 {
			found = true
			continue
		}
		newKeys = append(newKeys, k)
	}

	if !found {
		return fmt.Errorf("API key not found")
	}

	kf.Keys = newKeys
	return s.save(kf)
}

// UpdateAPIKey replaces a stored key's metadata, such as its usage stats
func (s *jsonStorage) UpdateAPIKey(key APIKey) error {
	kf, err := s.load()
	if err != nil {
		return err
	}

	for i, k := range kf.Keys {
		if subtle.ConstantTimeCompare([]byte(k.Key), []byte(key.Key)) == 1 {
			kf.Keys[i] = key
			return s.save(kf)
		}
	}
	return fmt.Errorf("API key not found")
}

// IsValidAPIKey checks if the provided key is stored and enabled
func (s *jsonStorage) IsValidAPIKey(key string) bool {
	kf, err := s.load()
	if err != nil {
		return false
	}

	for _, k := range kf.Keys {
		if k.Enabled && subtle.ConstantTimeCompare([]byte(k.Key), []byte(key)) == 1 {
			return true
		}
	}
	return false
}
