package httpapi

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/thinko/swinelink/pkg/storage"
)

const (
	managementKeyName = "management"
	generatedKeyName  = "generated-key"
	keyPrefix         = "sl_"
)

// APIKeyStore manages the bearer keys accepted by the HTTP server. Keys come
// from the management key, the configured key list and the persisted store.
type APIKeyStore struct {
	mu         sync.Mutex
	management *storage.APIKey
	keys       map[string]*storage.APIKey // configured keys
	persisted  storage.APIKeyStorage
	logger     hclog.Logger
}

// NewAPIKeyStore creates a new API key store. persisted may be nil, in which
// case generated keys live only as long as the process.
func NewAPIKeyStore(managementKey string, apiKeys []string, persisted storage.APIKeyStorage, logger hclog.Logger) *APIKeyStore {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	s := &APIKeyStore{
		keys:      make(map[string]*storage.APIKey),
		persisted: persisted,
		logger:    logger,
	}

	now := time.Now()
	if managementKey != "" {
		s.management = &storage.APIKey{
			Key:       managementKey,
			Name:      managementKeyName,
			CreatedAt: now,
			Enabled:   true,
		}
		logger.Info("management key loaded")
	}
	for i, key := range apiKeys {
		s.keys[key] = &storage.APIKey{
			Key:       key,
			Name:      fmt.Sprintf("api-key-%d", i+1),
			CreatedAt: now,
			Enabled:   true,
		}
	}
	if len(s.keys) > 0 {
		logger.Info("API keys loaded", "count", len(s.keys))
	}
	return s
}

// Required reports whether requests must carry a key. With no keys anywhere
// the server is open, like a local development proxy.
func (s *APIKeyStore) Required() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.management != nil || len(s.keys) > 0 {
		return true
	}
	if s.persisted == nil {
		return false
	}
	stored, err := s.persisted.GetAPIKeys()
	return err != nil || len(stored) > 0
}

// HasManagementKey reports whether key management is possible at all
func (s *APIKeyStore) HasManagementKey() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.management != nil
}

// Validate checks a key and records its use
func (s *APIKeyStore) Validate(key string) (*storage.APIKey, bool) {
	if key == "" {
		return nil, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.management != nil && equal(s.management.Key, key) {
		touch(s.management)
		return s.management, true
	}
	for k, info := range s.keys {
		if equal(k, key) {
			if !info.Enabled {
				return nil, false
			}
			touch(info)
			return info, true
		}
	}

	if s.persisted == nil || !s.persisted.IsValidAPIKey(key) {
		return nil, false
	}
	stored, err := s.persisted.GetAPIKeys()
	if err != nil {
		s.logger.Warn("failed to read stored API keys", "error", err)
		return nil, false
	}
	for i := range stored {
		if equal(stored[i].Key, key) {
			info := stored[i]
			touch(&info)
			if err := s.persisted.UpdateAPIKey(info); err != nil {
				s.logger.Warn("failed to record API key usage", "name", info.Name, "error", err)
			}
			return &info, true
		}
	}
	return nil, false
}

// IsManagement checks if a key is the management key
func (s *APIKeyStore) IsManagement(info *storage.APIKey) bool {
	return info != nil && info.Name == managementKeyName
}

// GenerateKey creates and stores a new random key
func (s *APIKeyStore) GenerateKey(name string) (storage.APIKey, error) {
	if name == "" {
		name = generatedKeyName
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return storage.APIKey{}, fmt.Errorf("failed to generate key: %w", err)
	}
	key := storage.APIKey{
		Key:       keyPrefix + hex.EncodeToString(buf),
		Name:      name,
		CreatedAt: time.Now().UTC(),
		Enabled:   true,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.persisted != nil {
		if err := s.persisted.AddAPIKey(key); err != nil {
			return storage.APIKey{}, err
		}
	} else {
		s.keys[key.Key] = &key
	}
	s.logger.Info("API key generated", "name", name)
	return key, nil
}

// RevokeKey removes a configured or stored key. The management key cannot
// be revoked.
func (s *APIKeyStore) RevokeKey(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.management != nil && equal(s.management.Key, key) {
		return fmt.Errorf("the management key cannot be revoked")
	}
	for k := range s.keys {
		if equal(k, key) {
			delete(s.keys, k)
			return nil
		}
	}
	if s.persisted == nil {
		return fmt.Errorf("API key not found")
	}
	return s.persisted.RemoveAPIKey(key)
}

// ListKeys returns every non-management key, sorted by name
func (s *APIKeyStore) ListKeys() ([]storage.APIKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]storage.APIKey, 0, len(s.keys))
	for _, k := range s.keys {
		result = append(result, *k)
	}
	if s.persisted != nil {
		stored, err := s.persisted.GetAPIKeys()
		if err != nil {
			return nil, err
		}
		result = append(result, stored...)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func touch(k *storage.APIKey) {
	k.LastUsedAt = time.Now().UTC()
	k.UsageCount++
}

func equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
