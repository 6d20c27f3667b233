package market

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"lighter-relay/internal/lighter/rest"

	"go.uber.org/zap"
)

// Candidate listing endpoints, in priority order. Venue versions moved the
// market collection around; the resolver takes the first parseable answer
// that contains the symbol.
var listingPaths = []string{
	"/api/v1/orderBooks",
	"/api/v1/orderBookDetails",
	"/api/v1/markets",
}

// Entry is a resolved market: the venue's integer index plus the
// fixed-point scale its base amounts use.
type Entry struct {
	Index        int
	SizeDecimals int
}

// DefaultSizeDecimals applies when market metadata does not advertise a
// scale; amounts are then 1e8 base units per whole unit.
const DefaultSizeDecimals = 8

// NotFoundError means the symbol matched nothing across every candidate
// endpoint (including the case where no endpoint answered at all).
type NotFoundError struct {
	Symbol string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("market not found: %s", e.Symbol)
}

// Resolver maps human symbols to venue market entries. Resolutions are
// cached for the process lifetime and never invalidated.
type Resolver struct {
	rest  *rest.Client
	log   *zap.Logger
	paths []string

	mu    sync.RWMutex
	cache map[string]Entry
}

func NewResolver(restClient *rest.Client, log *zap.Logger) *Resolver {
	return &Resolver{
		rest:  restClient,
		log:   log,
		paths: listingPaths,
		cache: make(map[string]Entry),
	}
}

// NormalizeSymbol uppercases and maps underscores to hyphens, so
// "btc_usdc" and "BTC-USDC" name the same market.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(symbol), "_", "-"))
}

// Resolve returns the market entry for symbol. Cache hits never touch the
// network. On a miss every candidate endpoint is tried in order; endpoint
// failures are swallowed and only full exhaustion reports NotFoundError.
func (r *Resolver) Resolve(ctx context.Context, symbol string) (Entry, error) {
	normalized := NormalizeSymbol(symbol)
	if normalized == "" {
		return Entry{}, &NotFoundError{Symbol: symbol}
	}
	r.mu.RLock()
	entry, ok := r.cache[normalized]
	r.mu.RUnlock()
	if ok {
		return entry, nil
	}

	for _, path := range r.paths {
		resp, err := r.rest.Get(ctx, path, nil)
		if err != nil {
			r.log.Debug("market listing failed", zap.String("path", path), zap.Error(err))
			continue
		}
		entries, err := parseListing(resp)
		if err != nil {
			r.log.Debug("market listing unparseable", zap.String("path", path), zap.Error(err))
			continue
		}
		if entry, ok := entries[normalized]; ok {
			r.store(normalized, entry)
			return entry, nil
		}
	}
	return Entry{}, &NotFoundError{Symbol: normalized}
}

// Store records a known symbol mapping. The websocket warmer uses it to
// pre-populate the cache; existing entries are left alone.
func (r *Resolver) Store(symbol string, entry Entry) {
	normalized := NormalizeSymbol(symbol)
	if normalized == "" {
		return
	}
	r.mu.Lock()
	if _, exists := r.cache[normalized]; !exists {
		r.cache[normalized] = entry
	}
	r.mu.Unlock()
}

func (r *Resolver) store(symbol string, entry Entry) {
	r.mu.Lock()
	r.cache[symbol] = entry
	r.mu.Unlock()
}

// Cached reports whether symbol is already resolvable without a network
// call.
func (r *Resolver) Cached(symbol string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.cache[NormalizeSymbol(symbol)]
	return ok
}
