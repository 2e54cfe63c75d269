package guard

import (
	"context"
	"encoding/json"
	"time"

	"github.com/lumenlabs/creatorchat-backend/internal/platform/logger"
)

const (
	IdemStatusPending   = "pending"
	IdemStatusCompleted = "completed"
	IdemStatusFailed    = "failed"
)

// IdemRecord is what a duplicate caller gets back. Response holds the
// original completed payload verbatim so replays are byte-identical.
type IdemRecord struct {
	Status    string          `json:"status"`
	Response  json.RawMessage `json:"response,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

type Idempotency struct {
	store        Store
	log          *logger.Logger
	pendingTTL   time.Duration
	completedTTL time.Duration
}

func NewIdempotency(store Store, baseLog *logger.Logger, pendingTTL, completedTTL time.Duration) *Idempotency {
	if pendingTTL <= 0 {
		pendingTTL = 10 * time.Minute
	}
	if completedTTL <= 0 {
		completedTTL = 24 * time.Hour
	}
	return &Idempotency{
		store:        store,
		log:          baseLog.With("service", "Idempotency"),
		pendingTTL:   pendingTTL,
		completedTTL: completedTTL,
	}
}

// Begin registers key as pending if it has never been seen. started=true
// means this caller owns the execution and must finalize with Complete or
// Fail on every exit path. Otherwise the existing record is returned and the
// side-effecting path must not run again.
func (i *Idempotency) Begin(ctx context.Context, key string) (existing *IdemRecord, started bool, err error) {
	rec := IdemRecord{Status: IdemStatusPending, CreatedAt: time.Now().UTC()}
	raw, err := json.Marshal(rec)
	if err != nil {
		return nil, false, err
	}
	won, err := i.store.SetNX(ctx, i.key(key), string(raw), i.pendingTTL)
	if err != nil {
		return nil, false, err
	}
	if won {
		return nil, true, nil
	}
	val, ok, err := i.store.Get(ctx, i.key(key))
	if err != nil {
		return nil, false, err
	}
	if !ok {
		// Record expired between SetNX and Get, treat as fresh.
		return i.Begin(ctx, key)
	}
	var found IdemRecord
	if err := json.Unmarshal([]byte(val), &found); err != nil {
		return nil, false, err
	}
	return &found, false, nil
}

// Complete transitions the record to its terminal status and stores the
// response snapshot for replay.
func (i *Idempotency) Complete(ctx context.Context, key, status string, response json.RawMessage) error {
	rec := IdemRecord{Status: status, Response: response, CreatedAt: time.Now().UTC()}
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return i.store.Set(ctx, i.key(key), string(raw), i.completedTTL)
}

// Clear drops the record so the caller may retry from scratch. Used when the
// owning execution failed before producing anything worth replaying.
func (i *Idempotency) Clear(ctx context.Context, key string) error {
	return i.store.Del(ctx, i.key(key))
}

func (i *Idempotency) key(key string) string { return "idem:" + key }
