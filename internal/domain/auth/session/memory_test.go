package session

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewMemory(Config{TTL: time.Minute})
	t.Cleanup(func() { _ = store.Close(ctx) })

	if err := store.Set(ctx, "a@x.com", "token-1", 0); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	value, ok, err := store.Get(ctx, "a@x.com")
	if err != nil || !ok || value != "token-1" {
		t.Fatalf("unexpected get result: %q %v %v", value, ok, err)
	}

	if err := store.Set(ctx, "a@x.com", "token-2", 0); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	value, _, _ = store.Get(ctx, "a@x.com")
	if value != "token-2" {
		t.Fatalf("overwrite not applied: %q", value)
	}

	if err := store.Delete(ctx, "a@x.com"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	exists, err := store.Exists(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("Exists error: %v", err)
	}
	if exists {
		t.Fatal("expected key removed")
	}
}

func TestMemoryStoreEntryTTL(t *testing.T) {
	ctx := context.Background()
	store := NewMemory(Config{TTL: time.Minute})
	t.Cleanup(func() { _ = store.Close(ctx) })

	if err := store.Set(ctx, "a@x.com", "token-1", 20*time.Millisecond); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	time.Sleep(40 * time.Millisecond)

	_, ok, err := store.Get(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if ok {
		t.Fatal("expected entry to expire")
	}
}

func TestMemoryStoreCloseIdempotent(t *testing.T) {
	store := NewMemory(Config{})
	if err := store.Close(context.Background()); err != nil {
		t.Fatalf("Close error: %v", err)
	}
	if err := store.Close(context.Background()); err != nil {
		t.Fatalf("second Close error: %v", err)
	}
}

func TestFactorySelectsDriver(t *testing.T) {
	store, err := New(Config{Driver: DriverMemory})
	if err != nil {
		t.Fatalf("New memory error: %v", err)
	}
	_ = store.Close(context.Background())

	if _, err := New(Config{Driver: "postgres"}); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}
