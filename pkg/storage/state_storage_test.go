package storage

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateStorage_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.json")
	store := NewStateStorage(path, nil)

	want := &State{
		LastDomainCheck:     1700000000000,
		DomainCheckCooldown: 10,
		PricingCache: map[string]any{
			"status":  "SUCCESS",
			"pricing": map[string]any{"com": map[string]any{"registration": "9.68"}},
		},
		PricingCacheTimestamp: 1700000000500,
		PricingCacheTTL:       20,
	}
	require.NoError(t, store.WriteState(want))

	got := store.ReadState()
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("state mismatch (-want +got):\n%s", diff)
	}
}

func TestStateStorage_MissingFileIsEmpty(t *testing.T) {
	store := NewStateStorage(filepath.Join(t.TempDir(), "state.json"), nil)
	assert.Equal(t, &State{}, store.ReadState())
}

func TestStateStorage_CorruptFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	store := NewStateStorage(path, nil)
	assert.Equal(t, &State{}, store.ReadState())
}

func TestStateStorage_WriteLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store := NewStateStorage(filepath.Join(dir, "state.json"), nil)

	require.NoError(t, store.WriteState(&State{DomainCheckCooldown: 10}))
	require.NoError(t, store.WriteState(&State{DomainCheckCooldown: 12}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "state.json", entries[0].Name())
	assert.Equal(t, 12, store.ReadState().DomainCheckCooldown)
}

func TestStateStorage_WriteFailureIsReported(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	store := NewStateStorage(filepath.Join(blocker, "state.json"), nil)
	assert.Error(t, store.WriteState(&State{}))
	assert.Equal(t, &State{}, store.ReadState())
}

func TestStateStorage_UpdateSerializesWriters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Separate instances share the per-path lock.
			store := NewStateStorage(path, nil)
			_ = store.Update(func(s *State) {
				s.DomainCheckCooldown++
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, NewStateStorage(path, nil).ReadState().DomainCheckCooldown)
}

func TestStateStorage_UpdatePreservesOtherFields(t *testing.T) {
	store := NewStateStorage(filepath.Join(t.TempDir(), "state.json"), nil)
	require.NoError(t, store.WriteState(&State{PricingCacheTTL: 20, PricingCacheTimestamp: 5}))

	require.NoError(t, store.Update(func(s *State) {
		s.LastDomainCheck = 42
	}))

	got := store.ReadState()
	assert.Equal(t, int64(42), got.LastDomainCheck)
	assert.Equal(t, 20, got.PricingCacheTTL)
	assert.Equal(t, int64(5), got.PricingCacheTimestamp)
}
