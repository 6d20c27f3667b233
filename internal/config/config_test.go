package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)
	if cfg.Log.Level != "info" {
		t.Fatalf("expected info log level default, got %q", cfg.Log.Level)
	}
	if cfg.REST.BaseURL != "https://mainnet.zklighter.elliot.ai" {
		t.Fatalf("unexpected base url default: %q", cfg.REST.BaseURL)
	}
	if cfg.REST.Timeout != 10*time.Second {
		t.Fatalf("expected 10s rest timeout default, got %v", cfg.REST.Timeout)
	}
	if cfg.Server.ShutdownTimeout <= 0 {
		t.Fatalf("expected shutdown timeout default, got %v", cfg.Server.ShutdownTimeout)
	}
	if cfg.Metrics.Address != "127.0.0.1:9001" {
		t.Fatalf("expected metrics address default, got %q", cfg.Metrics.Address)
	}
	if cfg.Metrics.Path != "/metrics" {
		t.Fatalf("expected metrics path default, got %q", cfg.Metrics.Path)
	}
	if cfg.History.QueueSize != 256 {
		t.Fatalf("expected history queue default, got %d", cfg.History.QueueSize)
	}
}

func TestBaseURLTrailingSlashStripped(t *testing.T) {
	cfg := &Config{REST: RESTConfig{BaseURL: "https://example.com/"}}
	applyDefaults(cfg)
	if cfg.REST.BaseURL != "https://example.com" {
		t.Fatalf("expected trailing slash stripped, got %q", cfg.REST.BaseURL)
	}
}

func TestWSURLDerivedFromREST(t *testing.T) {
	cfg := &Config{REST: RESTConfig{BaseURL: "https://example.com"}}
	applyDefaults(cfg)
	if cfg.WS.URL != "wss://example.com/stream" {
		t.Fatalf("expected derived ws url, got %q", cfg.WS.URL)
	}
}

func TestValidateHistoryRequiresDSN(t *testing.T) {
	cfg := &Config{History: HistoryConfig{Enabled: true}}
	applyDefaults(cfg)
	if err := validate(cfg); err == nil {
		t.Fatalf("expected error for enabled history without dsn")
	}
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "" +
		"log:\n  level: debug\n" +
		"rest:\n  base_url: https://testnet.zklighter.elliot.ai\n  timeout: 5s\n" +
		"server:\n  address: \":8080\"\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("expected debug level, got %q", cfg.Log.Level)
	}
	if cfg.REST.Timeout != 5*time.Second {
		t.Fatalf("expected 5s timeout, got %v", cfg.REST.Timeout)
	}
	if cfg.Server.Address != ":8080" {
		t.Fatalf("expected :8080, got %q", cfg.Server.Address)
	}
}

func TestCredentialsValidate(t *testing.T) {
	creds := &Credentials{}
	missing := creds.Validate()
	if len(missing) != 3 {
		t.Fatalf("expected 3 missing names, got %v", missing)
	}
	creds = &Credentials{
		SigningKey:      "abc",
		AccountIndex:    1,
		APIKeyIndex:     2,
		hasAccountIndex: true,
		hasAPIKeyIndex:  true,
	}
	if missing := creds.Validate(); len(missing) != 0 {
		t.Fatalf("expected no missing names, got %v", missing)
	}
}

func TestLoadCredentialsFromEnv(t *testing.T) {
	t.Setenv("BASE_URL", "https://example.com/")
	t.Setenv("WEBHOOK_SECRET", "s")
	t.Setenv("API_KEY_PRIVATE_KEY", "")
	t.Setenv("LIGHTER_PRIVATE_KEY", "deadbeef")
	t.Setenv("ACCOUNT_INDEX", "7")
	t.Setenv("API_KEY_INDEX", "2")
	t.Setenv("MARKET_INDEX", "1")

	creds := LoadCredentials("https://fallback")
	if creds.BaseURL != "https://example.com" {
		t.Fatalf("expected trailing slash stripped, got %q", creds.BaseURL)
	}
	if creds.SigningKey != "deadbeef" {
		t.Fatalf("expected fallback signing key, got %q", creds.SigningKey)
	}
	if creds.AccountIndex != 7 || creds.APIKeyIndex != 2 {
		t.Fatalf("unexpected indices: %d %d", creds.AccountIndex, creds.APIKeyIndex)
	}
	if !creds.HasDefaultMarketIndex || creds.DefaultMarketIndex != 1 {
		t.Fatalf("expected default market index 1")
	}
	if missing := creds.Validate(); len(missing) != 0 {
		t.Fatalf("expected valid credentials, got missing %v", missing)
	}
}

func TestLoadCredentialsUnparsableIndexReportedMissing(t *testing.T) {
	t.Setenv("API_KEY_PRIVATE_KEY", "deadbeef")
	t.Setenv("ACCOUNT_INDEX", "not-a-number")
	t.Setenv("API_KEY_INDEX", "0")
	t.Setenv("MARKET_INDEX", "")

	creds := LoadCredentials("https://fallback")
	missing := creds.Validate()
	if len(missing) != 1 || missing[0] != "ACCOUNT_INDEX" {
		t.Fatalf("expected ACCOUNT_INDEX missing, got %v", missing)
	}
	if creds.HasDefaultMarketIndex {
		t.Fatalf("expected no default market index")
	}
}
