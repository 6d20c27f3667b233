package state

import (
	"context"
	"encoding/json"
	"strings"
)

const (
	PausedKey         = "relay:paused"
	LastSubmissionKey = "relay:last_submission"
)

// LastSubmission is the most recent order the relay pushed to the venue,
// kept for the operator status command. Absence just means no order has
// gone through since the database was created.
type LastSubmission struct {
	Symbol        string `json:"symbol"`
	MarketIndex   int    `json:"market_index"`
	Side          string `json:"side"`
	Quantity      string `json:"quantity"`
	TxHash        string `json:"tx_hash,omitempty"`
	SubmittedAtMS int64  `json:"submitted_at_ms"`
}

func LoadPaused(ctx context.Context, store Store) (bool, error) {
	if store == nil {
		return false, nil
	}
	raw, ok, err := store.Get(ctx, PausedKey)
	if err != nil || !ok {
		return false, err
	}
	return strings.TrimSpace(raw) == "1", nil
}

func SavePaused(ctx context.Context, store Store, paused bool) error {
	if store == nil {
		return nil
	}
	value := "0"
	if paused {
		value = "1"
	}
	return store.Set(ctx, PausedKey, value)
}

func LoadLastSubmission(ctx context.Context, store Store) (LastSubmission, bool, error) {
	if store == nil {
		return LastSubmission{}, false, nil
	}
	raw, ok, err := store.Get(ctx, LastSubmissionKey)
	if err != nil {
		return LastSubmission{}, false, err
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return LastSubmission{}, false, nil
	}
	var last LastSubmission
	if err := json.Unmarshal([]byte(raw), &last); err != nil {
		return LastSubmission{}, false, err
	}
	return last, true, nil
}

func SaveLastSubmission(ctx context.Context, store Store, last LastSubmission) error {
	if store == nil {
		return nil
	}
	payload, err := json.Marshal(last)
	if err != nil {
		return err
	}
	return store.Set(ctx, LastSubmissionKey, string(payload))
}
