package repository

import (
	"strconv"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/thinko/swinelink/internal/domain"
	"github.com/thinko/swinelink/pkg/storage"
)

// DefaultCooldown applies until the registrar reports its own TTL.
const DefaultCooldown = 10 * time.Second

// cooldownRepository implements CooldownRepository on top of StateStorage
type cooldownRepository struct {
	store  storage.StateStorage
	now    func() time.Time
	logger hclog.Logger
}

// NewCooldownRepository creates a new cooldown repository. A nil now uses
// time.Now.
func NewCooldownRepository(store storage.StateStorage, now func() time.Time, logger hclog.Logger) CooldownRepository {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &cooldownRepository{
		store:  store,
		now:    now,
		logger: logger,
	}
}

// Check returns an error while the last successful check is too recent
func (r *cooldownRepository) Check() error {
	state := r.store.ReadState()

	cooldownMs := DefaultCooldown.Milliseconds()
	if state.DomainCheckCooldown > 0 {
		cooldownMs = int64(state.DomainCheckCooldown) * 1000
	}

	elapsed := r.now().UnixMilli() - state.LastDomainCheck
	if elapsed >= cooldownMs {
		return nil
	}

	remaining := cooldownMs - elapsed
	timeLeft := int((remaining + 999) / 1000)
	r.logger.Debug("domain check cooling down", "time_left", timeLeft)
	return &domain.RateLimitError{TimeLeft: timeLeft}
}

// RecordSuccess stores the check time and any cooldown the registrar reported
func (r *cooldownRepository) RecordSuccess(response map[string]any) {
	now := r.now().UnixMilli()
	ttl, hasTTL := limitsTTL(response)

	_ = r.store.Update(func(s *storage.State) {
		s.LastDomainCheck = now
		if hasTTL {
			s.DomainCheckCooldown = ttl
		}
	})
}

// limitsTTL reads limits.TTL, which the registrar sends as a string or a number.
func limitsTTL(response map[string]any) (int, bool) {
	limits, ok := response["limits"].(map[string]any)
	if !ok {
		return 0, false
	}

	switch v := limits["TTL"].(type) {
	case float64:
		if v > 0 {
			return int(v), true
		}
	case int:
		if v > 0 {
			return v, true
		}
	case string:
		n, err := strconv.Atoi(v)
		if err == nil && n > 0 {
			return n, true
		}
	}
	return 0, false
}
