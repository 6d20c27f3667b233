package market

import (
	"context"
	"encoding/json"

	"lighter-relay/internal/lighter/ws"

	"go.uber.org/zap"
)

// Stream warms the resolver cache from the venue's market-stats stream so
// the first webhook for a popular symbol usually skips the REST lookup.
// Strictly additive: entries already resolved are never replaced.
type Stream struct {
	ws       *ws.Client
	resolver *Resolver
	log      *zap.Logger
}

func NewStream(wsClient *ws.Client, resolver *Resolver, log *zap.Logger) *Stream {
	return &Stream{ws: wsClient, resolver: resolver, log: log}
}

func (s *Stream) Start(ctx context.Context) error {
	if s.ws == nil {
		return nil
	}
	if err := s.ws.Connect(ctx); err != nil {
		return err
	}
	sub := map[string]any{"type": "subscribe", "channel": "market_stats/all"}
	if err := s.ws.Subscribe(ctx, sub); err != nil {
		return err
	}
	go func() {
		_ = s.ws.Run(ctx, s.handleMessage)
	}()
	return nil
}

func (s *Stream) handleMessage(msg json.RawMessage) {
	var payload any
	if err := json.Unmarshal(msg, &payload); err != nil {
		s.log.Debug("ws decode error", zap.Error(err))
		return
	}
	if entries, err := parseListing(payload); err == nil {
		for symbol, entry := range entries {
			s.resolver.Store(symbol, entry)
		}
		return
	}
	// Single-market updates arrive flat.
	body, ok := toMap(payload)
	if !ok {
		return
	}
	if nested, ok := toMap(body["market_stats"]); ok {
		body = nested
	}
	symbol := stringFromMap(body, "symbol", "name", "market")
	if symbol == "" {
		return
	}
	index, ok := indexFromMap(body)
	if !ok {
		return
	}
	s.resolver.Store(symbol, Entry{
		Index:        index,
		SizeDecimals: intFromMap(body, DefaultSizeDecimals, "size_decimals", "supported_size_decimals", "szDecimals"),
	})
}
