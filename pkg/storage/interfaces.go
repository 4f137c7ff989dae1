package storage

import "time"

// State is the client state persisted between invocations.
type State struct {
	// LastDomainCheck is the epoch milliseconds of the last successful
	// availability check.
	LastDomainCheck int64 `json:"lastDomainCheck,omitempty"`
	// DomainCheckCooldown is in seconds, as last reported by the registrar.
	DomainCheckCooldown int `json:"domainCheckCooldown,omitempty"`

	PricingCache          map[string]any `json:"pricingCache,omitempty"`
	PricingCacheTimestamp int64          `json:"pricingCacheTimestamp,omitempty"`
	// PricingCacheTTL is in minutes.
	PricingCacheTTL int `json:"pricingCacheTTL,omitempty"`
}

// StateStorage defines the interface for client state storage.
// Reads never fail: a missing or unreadable file is an empty State.
type StateStorage interface {
	ReadState() *State
	WriteState(s *State) error
	// Update runs a read-modify-write under a lock shared by every store
	// pointing at the same file.
	Update(fn func(s *State)) error
}

// APIKey represents an HTTP API key with metadata
type APIKey struct {
	Key        string    `json:"key"`
	Name       string    `json:"name"`
	CreatedAt  time.Time `json:"created_at"`
	LastUsedAt time.Time `json:"last_used_at,omitempty"`
	UsageCount int       `json:"usage_count"`
	Enabled    bool      `json:"enabled"`
}

// APIKeyStorage defines the interface for API key storage
type APIKeyStorage interface {
	GetAPIKeys() ([]APIKey, error)
	AddAPIKey(key APIKey) error
	RemoveAPIKey(key string) error
	// UpdateAPIKey replaces the metadata stored for key.Key
	UpdateAPIKey(key APIKey) error
	IsValidAPIKey(key string) bool
}
