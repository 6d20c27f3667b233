package config

import (
	"os"
	"strconv"
	"strings"
)

// Credentials is the signing identity for the venue, read once from the
// environment at startup. Missing values are not fatal: every order path
// re-checks Validate and reports the missing names to the caller.
type Credentials struct {
	BaseURL       string
	WebhookSecret string
	SigningKey    string

	AccountIndex    int
	APIKeyIndex     int
	hasAccountIndex bool
	hasAPIKeyIndex  bool

	DefaultMarketIndex    int
	HasDefaultMarketIndex bool
}

// LoadCredentials reads the credential env vars. BaseURL falls back to the
// given default when BASE_URL is unset; a trailing slash is stripped.
func LoadCredentials(defaultBaseURL string) *Credentials {
	creds := &Credentials{
		BaseURL:       strings.TrimRight(strings.TrimSpace(envOr("BASE_URL", defaultBaseURL)), "/"),
		WebhookSecret: os.Getenv("WEBHOOK_SECRET"),
		SigningKey:    strings.TrimSpace(envOr("API_KEY_PRIVATE_KEY", os.Getenv("LIGHTER_PRIVATE_KEY"))),
	}
	creds.AccountIndex, creds.hasAccountIndex = intEnv("ACCOUNT_INDEX")
	creds.APIKeyIndex, creds.hasAPIKeyIndex = intEnv("API_KEY_INDEX")
	creds.DefaultMarketIndex, creds.HasDefaultMarketIndex = intEnv("MARKET_INDEX")
	return creds
}

// Validate returns the names of the required settings that are absent or
// unusable. An empty slice means order submission may proceed.
func (c *Credentials) Validate() []string {
	var missing []string
	if c.SigningKey == "" {
		missing = append(missing, "API_KEY_PRIVATE_KEY")
	}
	if !c.hasAccountIndex || c.AccountIndex < 0 {
		missing = append(missing, "ACCOUNT_INDEX")
	}
	if !c.hasAPIKeyIndex || c.APIKeyIndex < 0 {
		missing = append(missing, "API_KEY_INDEX")
	}
	return missing
}

func envOr(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func intEnv(key string) (int, bool) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return 0, false
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return val, true
}
