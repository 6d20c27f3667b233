package market

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
)

// parseListing turns a lenient listing response into normalized-symbol →
// entry. Venue versions disagree on the collection key and the field
// names, so everything is probed with alternates.
func parseListing(payload any) (map[string]Entry, error) {
	items, ok := extractCollection(payload)
	if !ok || len(items) == 0 {
		return nil, errors.New("no market collection in response")
	}
	entries := make(map[string]Entry)
	for _, item := range items {
		meta, ok := toMap(item)
		if !ok {
			continue
		}
		symbol := stringFromMap(meta, "symbol", "name", "market")
		if symbol == "" {
			continue
		}
		index, ok := indexFromMap(meta)
		if !ok {
			continue
		}
		entries[NormalizeSymbol(symbol)] = Entry{
			Index:        index,
			SizeDecimals: intFromMap(meta, DefaultSizeDecimals, "size_decimals", "supported_size_decimals", "szDecimals"),
		}
	}
	if len(entries) == 0 {
		return nil, errors.New("no markets parsed")
	}
	return entries, nil
}

func extractCollection(payload any) ([]any, bool) {
	if items, ok := toSlice(payload); ok {
		return items, true
	}
	body, ok := toMap(payload)
	if !ok {
		return nil, false
	}
	for _, key := range []string{"order_books", "orderBooks", "order_book_details", "markets", "data"} {
		if items, ok := toSlice(body[key]); ok {
			return items, true
		}
		// One level of nesting shows up on some versions.
		if nested, ok := toMap(body[key]); ok {
			if items, ok := extractCollection(nested); ok {
				return items, true
			}
		}
	}
	return nil, false
}

// indexFromMap takes the first present alternate; market_index wins over
// the generic id so a row carrying both resolves consistently.
func indexFromMap(meta map[string]any) (int, bool) {
	for _, key := range []string{"market_index", "index", "id"} {
		if raw, ok := meta[key]; ok {
			if val, ok := intFromAny(raw); ok && val >= 0 {
				return val, true
			}
		}
	}
	return 0, false
}

func toMap(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

func toSlice(v any) ([]any, bool) {
	s, ok := v.([]any)
	return s, ok
}

func stringFromMap(m map[string]any, keys ...string) string {
	for _, key := range keys {
		if s, ok := m[key].(string); ok {
			if trimmed := strings.TrimSpace(s); trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}

func intFromMap(m map[string]any, fallback int, keys ...string) int {
	for _, key := range keys {
		if raw, ok := m[key]; ok {
			if val, ok := intFromAny(raw); ok {
				return val
			}
		}
	}
	return fallback
}

func intFromAny(v any) (int, bool) {
	switch val := v.(type) {
	case float64:
		return int(val), true
	case int:
		return val, true
	case int64:
		return int(val), true
	case json.Number:
		n, err := val.Int64()
		return int(n), err == nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(val))
		return n, err == nil
	default:
		return 0, false
	}
}
