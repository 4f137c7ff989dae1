package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thinko/swinelink/external_resource/porkbun"
	"github.com/thinko/swinelink/internal/domain"
	"github.com/thinko/swinelink/pkg/storage"
)

// fakeClient is a porkbun.Client that replies from a fixed table.
type fakeClient struct {
	replies map[string]map[string]any
	err     error
	calls   []string
}

func (f *fakeClient) Post(_ context.Context, path string, _ map[string]any) (*porkbun.Response, error) {
	f.calls = append(f.calls, path)
	if f.err != nil {
		return nil, f.err
	}
	return &porkbun.Response{StatusCode: 200, Data: f.replies[path]}, nil
}

// clock is a settable time source.
type clock struct{ t time.Time }

func (c *clock) Now() time.Time { return c.t }

func newStore(t *testing.T) storage.StateStorage {
	t.Helper()
	return storage.NewStateStorage(filepath.Join(t.TempDir(), "state.json"), nil)
}

var epoch = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func TestCooldown_AllowsFirstCheck(t *testing.T) {
	r := NewCooldownRepository(newStore(t), (&clock{epoch}).Now, nil)
	assert.NoError(t, r.Check())
}

func TestCooldown_ReportsTimeLeft(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.WriteState(&storage.State{
		LastDomainCheck:     epoch.Add(-3 * time.Second).UnixMilli(),
		DomainCheckCooldown: 10,
	}))

	r := NewCooldownRepository(store, (&clock{epoch}).Now, nil)
	err := r.Check()

	var rl *domain.RateLimitError
	require.ErrorAs(t, err, &rl)
	assert.Equal(t, 7, rl.TimeLeft)
	assert.True(t, errors.Is(err, domain.ErrRateLimited))
	assert.Equal(t, "Please wait 7 seconds before checking another domain.", err.Error())
	assert.Equal(t, map[string]any{
		"status":  "ERROR",
		"message": "Please wait 7 seconds before checking another domain.",
	}, rl.ResponseData())
}

func TestCooldown_RoundsUp(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.WriteState(&storage.State{
		LastDomainCheck: epoch.Add(-9100 * time.Millisecond).UnixMilli(),
	}))

	r := NewCooldownRepository(store, (&clock{epoch}).Now, nil)

	var rl *domain.RateLimitError
	require.ErrorAs(t, r.Check(), &rl)
	assert.Equal(t, 1, rl.TimeLeft, "900ms left rounds up to 1s with the default 10s cooldown")
}

func TestCooldown_WindowElapsed(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.WriteState(&storage.State{
		LastDomainCheck:     epoch.Add(-10 * time.Second).UnixMilli(),
		DomainCheckCooldown: 10,
	}))

	r := NewCooldownRepository(store, (&clock{epoch}).Now, nil)
	assert.NoError(t, r.Check())
}

func TestCooldown_RecordSuccess(t *testing.T) {
	tests := []struct {
		name         string
		response     map[string]any
		wantCooldown int
	}{
		{name: "string TTL", response: map[string]any{"limits": map[string]any{"TTL": "15"}}, wantCooldown: 15},
		{name: "numeric TTL", response: map[string]any{"limits": map[string]any{"TTL": float64(20)}}, wantCooldown: 20},
		{name: "no limits keeps previous", response: map[string]any{"status": "SUCCESS"}, wantCooldown: 10},
		{name: "garbage TTL keeps previous", response: map[string]any{"limits": map[string]any{"TTL": "soon"}}, wantCooldown: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newStore(t)
			require.NoError(t, store.WriteState(&storage.State{DomainCheckCooldown: 10, PricingCacheTTL: 20}))

			r := NewCooldownRepository(store, (&clock{epoch}).Now, nil)
			r.RecordSuccess(tt.response)

			got := store.ReadState()
			assert.Equal(t, epoch.UnixMilli(), got.LastDomainCheck)
			assert.Equal(t, tt.wantCooldown, got.DomainCheckCooldown)
			assert.Equal(t, 20, got.PricingCacheTTL, "unrelated fields survive")
		})
	}
}

func pricingReply() map[string]any {
	return map[string]any{
		"status": "SUCCESS",
		"pricing": map[string]any{
			"com":   map[string]any{"registration": "9.68", "renewal": "9.68", "transfer": "9.68"},
			"co.uk": map[string]any{"registration": "5.01", "renewal": "5.01", "transfer": "5.01"},
			"uk":    map[string]any{"registration": "4.36", "renewal": "4.36", "transfer": "4.36"},
		},
	}
}

func TestPricing_FetchesAndCaches(t *testing.T) {
	store := newStore(t)
	client := &fakeClient{replies: map[string]map[string]any{"/pricing/get": pricingReply()}}
	r := NewPricingRepository(client, store, (&clock{epoch}).Now, nil)

	data, cached, err := r.Get(context.Background())
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, "SUCCESS", data["status"])
	assert.Equal(t, []string{"/pricing/get"}, client.calls)

	state := store.ReadState()
	assert.Equal(t, epoch.UnixMilli(), state.PricingCacheTimestamp)
	assert.Equal(t, PricingCacheTTL, state.PricingCacheTTL)
	assert.NotNil(t, state.PricingCache)
}

func TestPricing_CacheHitAndExpiry(t *testing.T) {
	tests := []struct {
		name       string
		age        time.Duration
		wantCached bool
		wantCalls  int
	}{
		{name: "5 minutes old is a hit", age: 5 * time.Minute, wantCached: true, wantCalls: 0},
		{name: "25 minutes old is a miss", age: 25 * time.Minute, wantCached: false, wantCalls: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newStore(t)
			require.NoError(t, store.WriteState(&storage.State{
				PricingCache:          pricingReply(),
				PricingCacheTimestamp: epoch.Add(-tt.age).UnixMilli(),
				PricingCacheTTL:       20,
			}))
			client := &fakeClient{replies: map[string]map[string]any{"/pricing/get": pricingReply()}}
			r := NewPricingRepository(client, store, (&clock{epoch}).Now, nil)

			assert.Equal(t, tt.wantCached, r.IsFresh())

			_, cached, err := r.Get(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.wantCached, cached)
			assert.Len(t, client.calls, tt.wantCalls)
		})
	}
}

func TestPricing_ErrorIsNotCached(t *testing.T) {
	store := newStore(t)
	client := &fakeClient{err: &porkbun.APIError{StatusCode: 500}}
	r := NewPricingRepository(client, store, (&clock{epoch}).Now, nil)

	_, _, err := r.Get(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUpstream))
	assert.Nil(t, store.ReadState().PricingCache)
}

func TestPricing_ValidTLDs(t *testing.T) {
	store := newStore(t)
	r := NewPricingRepository(&fakeClient{}, store, (&clock{epoch}).Now, nil)
	assert.Empty(t, r.ValidTLDs())

	// Stale entries still name real TLDs.
	require.NoError(t, store.WriteState(&storage.State{
		PricingCache:          pricingReply(),
		PricingCacheTimestamp: epoch.Add(-time.Hour).UnixMilli(),
		PricingCacheTTL:       20,
	}))

	tlds := r.ValidTLDs()
	assert.Len(t, tlds, 3)
	assert.True(t, tlds.Contains("co.uk"))
	assert.False(t, tlds.Contains("net"))
}
