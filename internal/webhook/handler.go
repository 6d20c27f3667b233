package webhook

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"lighter-relay/internal/config"
	"lighter-relay/internal/market"
	"lighter-relay/internal/metrics"
	"lighter-relay/internal/order"
	"lighter-relay/internal/relay"
	"lighter-relay/internal/state"
	"lighter-relay/internal/timescale"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

const defaultQty = "0.0001"

type MarketResolver interface {
	Resolve(ctx context.Context, symbol string) (market.Entry, error)
}

type ClientSource interface {
	Clients(ctx context.Context) (relay.SigningClient, relay.TransactionClient, error)
}

type OrderSubmitter interface {
	Submit(ctx context.Context, signer relay.SigningClient, tx relay.TransactionClient, intent order.Intent) (*relay.Result, error)
}

type Notifier interface {
	Send(ctx context.Context, message string) error
}

type Options struct {
	Log       *zap.Logger
	Creds     *config.Credentials
	Resolver  MarketResolver
	Clients   ClientSource
	Submitter OrderSubmitter
	Metrics   *metrics.Metrics
	Store     state.Store
	History   *timescale.Writer
	Notifier  Notifier
	Paused    *atomic.Bool
}

// Handler turns authenticated trade alerts into venue orders. Every
// failure is mapped to a structured JSON body; nothing here panics the
// process over a bad request.
type Handler struct {
	log       *zap.Logger
	creds     *config.Credentials
	resolver  MarketResolver
	clients   ClientSource
	submitter OrderSubmitter
	metrics   *metrics.Metrics
	store     state.Store
	history   *timescale.Writer
	notifier  Notifier
	paused    *atomic.Bool
}

func New(opts Options) *Handler {
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NewNoop()
	}
	return &Handler{
		log:       opts.Log,
		creds:     opts.Creds,
		resolver:  opts.Resolver,
		clients:   opts.Clients,
		submitter: opts.Submitter,
		metrics:   opts.Metrics,
		store:     opts.Store,
		history:   opts.History,
		notifier:  opts.Notifier,
		paused:    opts.Paused,
	}
}

func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/", h.handleLiveness)
	r.Post("/webhook", h.handleWebhook)
	return r
}

func (h *Handler) handleLiveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

type webhookRequest struct {
	Secret           string          `json:"secret"`
	Side             string          `json:"side"`
	Qty              json.RawMessage `json:"qty"`
	Symbol           string          `json:"symbol"`
	Ticker           string          `json:"ticker"`
	MarketIndex      *int            `json:"market_index"`
	ClientOrderIndex int64           `json:"client_order_index"`
}

func (h *Handler) handleWebhook(w http.ResponseWriter, r *http.Request) {
	h.metrics.WebhooksReceived.Inc()
	ctx := r.Context()

	var req webhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.reject(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "invalid json body"})
		return
	}

	if missing := h.creds.Validate(); len(missing) > 0 {
		h.log.Warn("order path blocked by missing config", zap.Strings("need", missing))
		h.reject(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "missing config", "need": missing})
		return
	}

	if h.creds.WebhookSecret != "" {
		if subtle.ConstantTimeCompare([]byte(req.Secret), []byte(h.creds.WebhookSecret)) != 1 {
			h.log.Warn("webhook secret mismatch")
			h.reject(w, http.StatusUnauthorized, map[string]any{"ok": false, "error": "bad secret"})
			return
		}
	}

	if h.paused != nil && h.paused.Load() {
		h.reject(w, http.StatusServiceUnavailable, map[string]any{"ok": false, "error": "relay paused"})
		return
	}

	side, err := order.ParseSide(req.Side)
	if err != nil {
		h.logRejected(req, err)
		h.reject(w, http.StatusBadRequest, map[string]any{"ok": false, "error": err.Error()})
		return
	}

	qtyRaw := rawToString(req.Qty)
	if qtyRaw == "" {
		qtyRaw = defaultQty
	}
	qty, err := order.ParseQuantity(qtyRaw)
	if err != nil {
		h.logRejected(req, err)
		h.reject(w, http.StatusBadRequest, map[string]any{"ok": false, "error": err.Error()})
		return
	}

	entry, symbol, err := h.resolveMarket(ctx, req)
	if err != nil {
		h.logRejected(req, err)
		h.reject(w, http.StatusBadRequest, map[string]any{"ok": false, "error": err.Error()})
		return
	}

	signer, tx, err := h.clients.Clients(ctx)
	if err != nil {
		h.logRejected(req, err)
		h.notify("order relay: venue client init failed: " + err.Error())
		h.reject(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "venue client unavailable", "detail": err.Error()})
		return
	}

	intent := order.Intent{
		MarketIndex:      entry.Index,
		SizeDecimals:     entry.SizeDecimals,
		Side:             side,
		Quantity:         qty,
		ClientOrderIndex: req.ClientOrderIndex,
	}
	result, err := h.submitter.Submit(ctx, signer, tx, intent)
	if err != nil {
		h.handleSubmitError(w, req, intent, symbol, result, err)
		return
	}

	h.recordSuccess(ctx, intent, symbol, qtyRaw, result)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "lighter_response": result.Response})
}

// resolveMarket picks the market from an explicit index, a symbol field
// or the configured default, in that order.
func (h *Handler) resolveMarket(ctx context.Context, req webhookRequest) (market.Entry, string, error) {
	if req.MarketIndex != nil {
		if *req.MarketIndex < 0 {
			return market.Entry{}, "", errors.New("market_index must be >= 0")
		}
		return market.Entry{Index: *req.MarketIndex, SizeDecimals: market.DefaultSizeDecimals}, "", nil
	}
	symbol := strings.TrimSpace(req.Symbol)
	if symbol == "" {
		symbol = strings.TrimSpace(req.Ticker)
	}
	if symbol != "" {
		entry, err := h.resolver.Resolve(ctx, symbol)
		return entry, market.NormalizeSymbol(symbol), err
	}
	if h.creds.HasDefaultMarketIndex {
		return market.Entry{Index: h.creds.DefaultMarketIndex, SizeDecimals: market.DefaultSizeDecimals}, "", nil
	}
	return market.Entry{}, "", errors.New("symbol or market_index required")
}

func (h *Handler) handleSubmitError(w http.ResponseWriter, req webhookRequest, intent order.Intent, symbol string, result *relay.Result, err error) {
	h.logRejected(req, err)

	var noIface *relay.NoCompatibleInterfaceError
	if errors.As(err, &noIface) {
		h.notify("order relay: no compatible order interface: " + noIface.LastDetail)
		h.recordFailure(intent, symbol, result, timescale.StatusFailed, noIface.LastDetail)
		h.reject(w, http.StatusBadRequest, map[string]any{
			"ok":     false,
			"error":  "no compatible order interface",
			"detail": noIface.LastDetail,
		})
		return
	}

	var subErr *relay.SubmissionError
	if errors.As(err, &subErr) {
		h.recordFailure(intent, symbol, result, timescale.StatusRejected, subErr.Detail)
		body := map[string]any{"ok": false, "error": "order submission failed", "detail": subErr.Detail}
		if result != nil && result.Response != nil {
			body["lighter_response"] = result.Response
		}
		h.reject(w, http.StatusBadRequest, body)
		return
	}

	// Quantity normalization and any other local failure.
	h.reject(w, http.StatusBadRequest, map[string]any{"ok": false, "error": err.Error()})
}

func (h *Handler) recordSuccess(ctx context.Context, intent order.Intent, symbol, qtyRaw string, result *relay.Result) {
	h.history.Enqueue(timescale.OrderRecord{
		Symbol:      symbol,
		MarketIndex: intent.MarketIndex,
		Side:        intent.Side.String(),
		Quantity:    qtyRaw,
		BaseAmount:  result.BaseAmount,
		Shape:       result.Shape,
		Status:      timescale.StatusSubmitted,
		TxHash:      result.TxHash,
	})
	if err := state.SaveLastSubmission(ctx, h.store, state.LastSubmission{
		Symbol:        symbol,
		MarketIndex:   intent.MarketIndex,
		Side:          intent.Side.String(),
		Quantity:      qtyRaw,
		TxHash:        result.TxHash,
		SubmittedAtMS: time.Now().UnixMilli(),
	}); err != nil {
		h.log.Warn("last submission save failed", zap.Error(err))
	}
}

func (h *Handler) recordFailure(intent order.Intent, symbol string, result *relay.Result, status, detail string) {
	record := timescale.OrderRecord{
		Symbol:      symbol,
		MarketIndex: intent.MarketIndex,
		Side:        intent.Side.String(),
		Quantity:    intent.Quantity.String(),
		Status:      status,
		Detail:      detail,
	}
	if result != nil {
		record.BaseAmount = result.BaseAmount
		record.Shape = result.Shape
	}
	h.history.Enqueue(record)
}

func (h *Handler) reject(w http.ResponseWriter, status int, body map[string]any) {
	h.metrics.WebhooksRejected.Inc()
	writeJSON(w, status, body)
}

// logRejected logs the alert fields for diagnosis. The secret is never
// included.
func (h *Handler) logRejected(req webhookRequest, err error) {
	fields := []zap.Field{
		zap.String("side", req.Side),
		zap.String("symbol", req.Symbol),
		zap.String("ticker", req.Ticker),
		zap.String("qty", rawToString(req.Qty)),
		zap.Error(err),
	}
	if req.MarketIndex != nil {
		fields = append(fields, zap.Int("market_index", *req.MarketIndex))
	}
	h.log.Warn("webhook rejected", fields...)
}

func (h *Handler) notify(message string) {
	if h.notifier == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := h.notifier.Send(ctx, message); err != nil {
		h.log.Warn("alert send failed", zap.Error(err))
	}
}

// rawToString accepts qty as either a JSON string or a bare number.
func rawToString(raw json.RawMessage) string {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	return trimmed
}

func writeJSON(w http.ResponseWriter, status int, body map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
