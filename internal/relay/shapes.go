package relay

import (
	"lighter-relay/internal/order"
)

// Market-order enum values used by the positional and keyword-v2 shapes.
const (
	orderTypeMarket      = 1
	tifImmediateOrCancel = 0
)

// shapeCandidate builds the parameter payload for one venue interface
// generation. Candidates are tried newest first; only shape-mismatch
// rejections advance to the next one.
type shapeCandidate struct {
	name  string
	build func(intent order.Intent, baseAmount int64) any
}

var candidateShapes = []shapeCandidate{
	{name: "keyword-v2", build: keywordV2},
	{name: "keyword-v1", build: keywordV1},
	{name: "positional-v2", build: positionalV2},
	{name: "positional-v1", build: positionalV1},
}

// Current API: keyword params, boolean is_ask, nested enum objects.
func keywordV2(intent order.Intent, baseAmount int64) any {
	return map[string]any{
		"market_index":       intent.MarketIndex,
		"client_order_index": intent.ClientOrderIndex,
		"base_amount":        baseAmount,
		"price":              0,
		"is_ask":             intent.Side == order.Sell,
		"order_type":         map[string]any{"type": "market"},
		"time_in_force":      map[string]any{"type": "immediate_or_cancel"},
		"reduce_only":        false,
		"trigger_price":      0,
	}
}

// Previous keyword generation: side as a string, flat enum strings.
func keywordV1(intent order.Intent, baseAmount int64) any {
	return map[string]any{
		"market_index":       intent.MarketIndex,
		"client_order_index": intent.ClientOrderIndex,
		"base_amount":        baseAmount,
		"price":              0,
		"side":               intent.Side.String(),
		"type":               "market",
		"time_in_force":      "ioc",
		"reduce_only":        false,
	}
}

// Positional generation with the full nine-argument tuple.
func positionalV2(intent order.Intent, baseAmount int64) any {
	return []any{
		intent.MarketIndex,
		intent.ClientOrderIndex,
		baseAmount,
		0,
		intent.Side == order.Sell,
		orderTypeMarket,
		tifImmediateOrCancel,
		false,
		0,
	}
}

// Oldest positional generation, four arguments.
func positionalV1(intent order.Intent, baseAmount int64) any {
	return []any{
		intent.MarketIndex,
		baseAmount,
		intent.Side == order.Sell,
		intent.ClientOrderIndex,
	}
}
