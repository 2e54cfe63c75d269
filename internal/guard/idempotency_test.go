package guard

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"
)

func TestIdempotencyFirstObservationStarts(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	defer store.Close()
	idem := NewIdempotency(store, testLogger(t), time.Minute, time.Hour)
	ctx := context.Background()

	existing, started, err := idem.Begin(ctx, "op-1")
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if !started || existing != nil {
		t.Fatalf("first Begin = (started=%v, existing=%v), want (true, nil)", started, existing)
	}
}

func TestIdempotencyPendingDuplicateDoesNotStart(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	defer store.Close()
	idem := NewIdempotency(store, testLogger(t), time.Minute, time.Hour)
	ctx := context.Background()

	if _, started, err := idem.Begin(ctx, "op-2"); err != nil || !started {
		t.Fatalf("setup Begin = (started=%v, err=%v)", started, err)
	}
	existing, started, err := idem.Begin(ctx, "op-2")
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if started {
		t.Fatal("duplicate Begin must not start a second execution")
	}
	if existing == nil || existing.Status != IdemStatusPending {
		t.Fatalf("duplicate Begin existing = %+v, want pending record", existing)
	}
}

func TestIdempotencyReplaysCompletedResponseVerbatim(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	defer store.Close()
	idem := NewIdempotency(store, testLogger(t), time.Minute, time.Hour)
	ctx := context.Background()

	if _, started, err := idem.Begin(ctx, "op-3"); err != nil || !started {
		t.Fatalf("setup Begin = (started=%v, err=%v)", started, err)
	}
	response := json.RawMessage(`{"videosImported":12,"status":"completed"}`)
	if err := idem.Complete(ctx, "op-3", IdemStatusCompleted, response); err != nil {
		t.Fatalf("Complete: %v", err)
	}

	for i := 0; i < 2; i++ {
		existing, started, err := idem.Begin(ctx, "op-3")
		if err != nil {
			t.Fatalf("replay Begin: %v", err)
		}
		if started {
			t.Fatal("completed key must not re-execute")
		}
		if existing.Status != IdemStatusCompleted {
			t.Fatalf("status = %q, want completed", existing.Status)
		}
		if !bytes.Equal(existing.Response, response) {
			t.Fatalf("replayed response = %s, want %s", existing.Response, response)
		}
	}
}

func TestIdempotencyClearAllowsRetry(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	defer store.Close()
	idem := NewIdempotency(store, testLogger(t), time.Minute, time.Hour)
	ctx := context.Background()

	if _, started, err := idem.Begin(ctx, "op-4"); err != nil || !started {
		t.Fatalf("setup Begin = (started=%v, err=%v)", started, err)
	}
	if err := idem.Clear(ctx, "op-4"); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	_, started, err := idem.Begin(ctx, "op-4")
	if err != nil || !started {
		t.Fatalf("Begin after Clear = (started=%v, err=%v), want (true, nil)", started, err)
	}
}
