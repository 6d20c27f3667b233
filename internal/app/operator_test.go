package app

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"lighter-relay/internal/config"
	"lighter-relay/internal/state"

	"go.uber.org/zap"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	t.Setenv("WEBHOOK_SECRET", "s")
	t.Setenv("API_KEY_PRIVATE_KEY", "4f3edf983ac636a65a842ce7c78d9aa706d3b113bce036f81af8f9b72d3d80b2")
	t.Setenv("ACCOUNT_INDEX", "7")
	t.Setenv("API_KEY_INDEX", "2")
	t.Setenv("PORT", "")
	t.Setenv("BASE_URL", "")

	cfg := config.Default()
	cfg.State.SQLitePath = filepath.Join(t.TempDir(), "relay.db")
	a, err := New(cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("app init: %v", err)
	}
	t.Cleanup(func() { a.store.Close() })
	return a
}

func TestParseOperatorCommand(t *testing.T) {
	cases := []struct {
		text string
		cmd  string
		ok   bool
	}{
		{"/status", "status", true},
		{"/PAUSE now", "pause", true},
		{"  /resume  ", "resume", true},
		{"status", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		cmd, ok := parseOperatorCommand(tc.text)
		if ok != tc.ok || cmd != tc.cmd {
			t.Fatalf("%q: got %q %v", tc.text, cmd, ok)
		}
	}
}

func TestOperatorPauseResume(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()

	if resp := a.handleOperatorCommand(ctx, "pause"); resp != "relay paused" {
		t.Fatalf("unexpected response: %q", resp)
	}
	if !a.paused.Load() {
		t.Fatalf("expected paused")
	}
	if paused, _ := state.LoadPaused(ctx, a.store); !paused {
		t.Fatalf("paused flag must persist")
	}

	if resp := a.handleOperatorCommand(ctx, "resume"); resp != "relay resumed" {
		t.Fatalf("unexpected response: %q", resp)
	}
	if a.paused.Load() {
		t.Fatalf("expected resumed")
	}
}

func TestOperatorStatus(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()

	status := a.operatorStatus(ctx)
	if !strings.Contains(status, "relay running") || !strings.Contains(status, "no orders submitted yet") {
		t.Fatalf("unexpected status: %q", status)
	}

	if err := state.SaveLastSubmission(ctx, a.store, state.LastSubmission{
		Symbol:        "BTC-USDC",
		Side:          "buy",
		Quantity:      "0.5",
		TxHash:        "abc",
		SubmittedAtMS: 1700000000000,
	}); err != nil {
		t.Fatalf("save: %v", err)
	}
	a.paused.Store(true)
	status = a.operatorStatus(ctx)
	if !strings.Contains(status, "relay paused") || !strings.Contains(status, "buy 0.5 BTC-USDC") || !strings.Contains(status, "tx abc") {
		t.Fatalf("unexpected status: %q", status)
	}
}

func TestOperatorOffsetRoundTrip(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()

	if got := a.loadOperatorOffset(ctx); got != 0 {
		t.Fatalf("fresh offset must be 0, got %d", got)
	}
	a.saveOperatorOffset(ctx, 42)
	if got := a.loadOperatorOffset(ctx); got != 42 {
		t.Fatalf("expected 42, got %d", got)
	}
}
