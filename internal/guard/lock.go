package guard

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/lumenlabs/creatorchat-backend/internal/platform/logger"
)

// LockManager hands out non-blocking TTL try-locks. Acquisition failure
// means "operation already running", never "wait". The TTL bounds how long a
// crashed holder can wedge a key.
type LockManager struct {
	store Store
	log   *logger.Logger
}

func NewLockManager(store Store, baseLog *logger.Logger) *LockManager {
	return &LockManager{
		store: store,
		log:   baseLog.With("service", "LockManager"),
	}
}

// Acquire tries to take key for ttl, returning the fencing token on success.
// The token travels with the holder and must come back to Release. Returns
// acquired=false without blocking when a live lock exists; store failures
// also report as not acquired, since mutual exclusion cannot be assumed on
// an unreachable store.
func (m *LockManager) Acquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	won, err := m.store.SetNX(ctx, m.key(key), token, ttl)
	if err != nil {
		return "", false, err
	}
	if !won {
		return "", false, nil
	}
	return token, true, nil
}

// Release frees key only while token still owns it. The compare-and-delete
// is atomic in the store, so a holder whose TTL lapsed can never delete a
// successor's lock.
func (m *LockManager) Release(ctx context.Context, key, token string) error {
	if token == "" {
		return nil
	}
	_, err := m.store.DelIfEquals(ctx, m.key(key), token)
	return err
}

func (m *LockManager) key(key string) string { return "lock:" + key }
