package guard

import (
	"context"
	"errors"
	"testing"
	"time"
)

type failingStore struct{}

var errStoreDown = errors.New("store unavailable")

func (failingStore) IncrWindow(context.Context, string, time.Duration) (int64, error) {
	return 0, errStoreDown
}
func (failingStore) SetNX(context.Context, string, string, time.Duration) (bool, error) {
	return false, errStoreDown
}
func (failingStore) Get(context.Context, string) (string, bool, error) {
	return "", false, errStoreDown
}
func (failingStore) Set(context.Context, string, string, time.Duration) error { return errStoreDown }
func (failingStore) Del(context.Context, string) error                        { return errStoreDown }
func (failingStore) DelIfEquals(context.Context, string, string) (bool, error) {
	return false, errStoreDown
}

func TestMemoryStoreSetNXRespectsExpiry(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	defer store.Close()
	ctx := context.Background()

	won, err := store.SetNX(ctx, "k", "a", 30*time.Millisecond)
	if err != nil || !won {
		t.Fatalf("first SetNX = (%v, %v), want (true, nil)", won, err)
	}
	won, err = store.SetNX(ctx, "k", "b", 30*time.Millisecond)
	if err != nil || won {
		t.Fatalf("second SetNX = (%v, %v), want (false, nil)", won, err)
	}

	time.Sleep(50 * time.Millisecond)

	won, err = store.SetNX(ctx, "k", "c", 30*time.Millisecond)
	if err != nil || !won {
		t.Fatalf("SetNX after expiry = (%v, %v), want (true, nil)", won, err)
	}
}

func TestMemoryStoreGetAndDel(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	defer store.Close()
	ctx := context.Background()

	if _, ok, _ := store.Get(ctx, "missing"); ok {
		t.Fatal("Get on missing key reported presence")
	}
	if err := store.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	val, ok, err := store.Get(ctx, "k")
	if err != nil || !ok || val != "v" {
		t.Fatalf("Get = (%q, %v, %v), want (v, true, nil)", val, ok, err)
	}
	if err := store.Del(ctx, "k"); err != nil {
		t.Fatalf("Del: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "k"); ok {
		t.Fatal("Get after Del reported presence")
	}
}

func TestMemoryStoreIncrWindow(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	defer store.Close()
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		got, err := store.IncrWindow(ctx, "counter", time.Minute)
		if err != nil || got != want {
			t.Fatalf("IncrWindow = (%d, %v), want (%d, nil)", got, err, want)
		}
	}
}
