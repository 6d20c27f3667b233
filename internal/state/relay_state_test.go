package state

import (
	"context"
	"sync"
	"testing"
)

type memoryStore struct {
	mu    sync.Mutex
	items map[string]string
}

func (m *memoryStore) Get(ctx context.Context, key string) (string, bool, error) {
	_ = ctx
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.items[key]
	return val, ok, nil
}

func (m *memoryStore) Set(ctx context.Context, key, value string) error {
	_ = ctx
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.items == nil {
		m.items = make(map[string]string)
	}
	m.items[key] = value
	return nil
}

func (m *memoryStore) Delete(ctx context.Context, key string) error {
	_ = ctx
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

func (m *memoryStore) Close() error {
	return nil
}

func TestPausedRoundTrip(t *testing.T) {
	store := &memoryStore{}
	ctx := context.Background()

	paused, err := LoadPaused(ctx, store)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if paused {
		t.Fatalf("fresh store must not be paused")
	}
	if err := SavePaused(ctx, store, true); err != nil {
		t.Fatalf("save: %v", err)
	}
	paused, err = LoadPaused(ctx, store)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !paused {
		t.Fatalf("expected paused")
	}
	if err := SavePaused(ctx, store, false); err != nil {
		t.Fatalf("save: %v", err)
	}
	if paused, _ = LoadPaused(ctx, store); paused {
		t.Fatalf("expected resumed")
	}
}

func TestLastSubmissionRoundTrip(t *testing.T) {
	store := &memoryStore{}
	ctx := context.Background()
	last := LastSubmission{
		Symbol:        "BTC-USDC",
		MarketIndex:   1,
		Side:          "buy",
		Quantity:      "0.0001",
		TxHash:        "abc",
		SubmittedAtMS: 12345,
	}
	if err := SaveLastSubmission(ctx, store, last); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, ok, err := LoadLastSubmission(ctx, store)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !ok {
		t.Fatalf("expected a submission")
	}
	if got != last {
		t.Fatalf("unexpected submission: %#v", got)
	}
}

func TestLastSubmissionMissingAndInvalid(t *testing.T) {
	store := &memoryStore{}
	if _, ok, err := LoadLastSubmission(context.Background(), store); err != nil || ok {
		t.Fatalf("expected absent submission, ok=%v err=%v", ok, err)
	}
	store.items = map[string]string{LastSubmissionKey: "{"}
	if _, _, err := LoadLastSubmission(context.Background(), store); err == nil {
		t.Fatalf("expected error for invalid JSON")
	}
}

func TestNilStoreIsNoop(t *testing.T) {
	ctx := context.Background()
	if err := SavePaused(ctx, nil, true); err != nil {
		t.Fatalf("save paused: %v", err)
	}
	if paused, err := LoadPaused(ctx, nil); err != nil || paused {
		t.Fatalf("nil store must read unpaused, got %v %v", paused, err)
	}
}
