package revocation

import (
	"context"
	"sync"
	"time"

	"clientportal/internal/port"
)

// MemoryTRL keeps revoked tokens in process. Entries are dropped lazily once expired.
type MemoryTRL struct {
	mu      sync.Mutex
	now     func() time.Time
	revoked map[string]time.Time
}

// NewMemoryTRL creates an empty in-process revocation list.
func NewMemoryTRL() *MemoryTRL {
	return &MemoryTRL{now: time.Now, revoked: make(map[string]time.Time)}
}

var _ port.TokenRevocationList = (*MemoryTRL)(nil)

func (t *MemoryTRL) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	if jti == "" || ttl <= 0 {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	for k, exp := range t.revoked {
		if !now.Before(exp) {
			delete(t.revoked, k)
		}
	}
	t.revoked[jti] = now.Add(ttl)
	return nil
}

func (t *MemoryTRL) IsRevoked(_ context.Context, jti string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	exp, ok := t.revoked[jti]
	if !ok {
		return false, nil
	}
	if !t.now().Before(exp) {
		delete(t.revoked, jti)
		return false, nil
	}
	return true, nil
}
