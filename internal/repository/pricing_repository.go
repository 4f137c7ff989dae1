package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/thinko/swinelink/external_resource/porkbun"
	"github.com/thinko/swinelink/internal/domain"
	"github.com/thinko/swinelink/pkg/storage"
)

// PricingCacheTTL is how long a fetched pricing table is trusted, in minutes.
const PricingCacheTTL = 20

// pricingRepository implements PricingRepository using the Porkbun client
// and StateStorage as the cache
type pricingRepository struct {
	client porkbun.Client
	store  storage.StateStorage
	now    func() time.Time
	logger hclog.Logger
}

// NewPricingRepository creates a new pricing repository. A nil now uses
// time.Now.
func NewPricingRepository(client porkbun.Client, store storage.StateStorage, now func() time.Time, logger hclog.Logger) PricingRepository {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &pricingRepository{
		client: client,
		store:  store,
		now:    now,
		logger: logger,
	}
}

// Get returns the cached table when fresh, otherwise fetches a new one
func (r *pricingRepository) Get(ctx context.Context) (map[string]any, bool, error) {
	state := r.store.ReadState()
	if r.fresh(state) {
		age := time.Duration(r.now().UnixMilli()-state.PricingCacheTimestamp) * time.Millisecond
		r.logger.Debug("returning cached pricing", "age", age.Round(time.Minute))
		return state.PricingCache, true, nil
	}

	resp, err := r.client.Post(ctx, "/pricing/get", nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to get pricing: %w", err)
	}

	if _, ok := resp.Data["pricing"].(map[string]any); ok {
		now := r.now().UnixMilli()
		_ = r.store.Update(func(s *storage.State) {
			s.PricingCache = resp.Data
			s.PricingCacheTimestamp = now
			s.PricingCacheTTL = PricingCacheTTL
		})
	} else {
		r.logger.Warn("pricing response has no pricing table, not caching", "status", resp.Status())
	}

	return resp.Data, false, nil
}

// IsFresh reports whether the cache can be served without a request
func (r *pricingRepository) IsFresh() bool {
	return r.fresh(r.store.ReadState())
}

// ValidTLDs returns the keys of the cached pricing table
func (r *pricingRepository) ValidTLDs() domain.TLDSet {
	state := r.store.ReadState()
	pricing, _ := state.PricingCache["pricing"].(map[string]any)

	set := make(domain.TLDSet, len(pricing))
	for tld := range pricing {
		set[tld] = struct{}{}
	}
	return set
}

func (r *pricingRepository) fresh(state *storage.State) bool {
	if state.PricingCache == nil {
		return false
	}
	ttl := state.PricingCacheTTL
	if ttl <= 0 {
		ttl = PricingCacheTTL
	}
	age := r.now().UnixMilli() - state.PricingCacheTimestamp
	return age < int64(ttl)*60*1000
}
