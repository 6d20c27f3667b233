package sqlite

import (
	"context"
	"path/filepath"
	"testing"
)

func TestStoreRoundTrip(t *testing.T) {
	store, err := New(filepath.Join(t.TempDir(), "relay.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.Set(ctx, "relay:paused", "1"); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	val, ok, err := store.Get(ctx, "relay:paused")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !ok || val != "1" {
		t.Fatalf("unexpected value: %v (ok=%v)", val, ok)
	}
	if err := store.Set(ctx, "relay:paused", "0"); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}
	val, _, _ = store.Get(ctx, "relay:paused")
	if val != "0" {
		t.Fatalf("expected overwrite, got %q", val)
	}
	if err := store.Delete(ctx, "relay:paused"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "relay:paused"); ok {
		t.Fatalf("expected key to be deleted")
	}
}

func TestStoreMissingKey(t *testing.T) {
	store, err := New(filepath.Join(t.TempDir(), "relay.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer store.Close()

	if _, ok, err := store.Get(context.Background(), "absent"); err != nil || ok {
		t.Fatalf("expected absent key, ok=%v err=%v", ok, err)
	}
}
