package repository

import (
	"context"

	"github.com/thinko/swinelink/internal/domain"
)

// CooldownRepository enforces the registrar's domain-check rate limit
// using the persisted state.
type CooldownRepository interface {
	// Check returns a *domain.RateLimitError while the cooldown window is open.
	Check() error

	// RecordSuccess marks a successful availability check. When the
	// response carries limits.TTL it becomes the new cooldown.
	RecordSuccess(response map[string]any)
}

// PricingRepository serves the pricing table from the local cache when fresh.
type PricingRepository interface {
	// Get returns the pricing response body, fetching and caching it when
	// the cache is missing or expired. cached reports a cache hit.
	Get(ctx context.Context) (data map[string]any, cached bool, err error)

	// IsFresh reports whether a cached table exists and is within its TTL.
	IsFresh() bool

	// ValidTLDs returns the TLDs in the cached table, stale or not.
	// It is empty when nothing has been cached.
	ValidTLDs() domain.TLDSet
}
