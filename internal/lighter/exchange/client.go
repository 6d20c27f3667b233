package exchange

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"lighter-relay/internal/lighter/rest"

	"go.uber.org/zap"
)

const (
	signOrderPath = "/api/v1/signOrder"
	sendTxPath    = "/api/v1/sendTx"
	nextNoncePath = "/api/v1/nextNonce"
)

type NonceStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// SignClient asks the venue's signing API to produce a signed transaction
// for one candidate param shape. Nonces are monotonic across calls and
// optionally persisted so a restart cannot reuse one.
type SignClient struct {
	rest         *rest.Client
	signer       *Signer
	accountIndex int
	apiKeyIndex  int
	log          *zap.Logger

	lastNonce     atomic.Uint64
	lastPersisted atomic.Uint64
	nonceStore    NonceStore
	nonceKey      string
	persistMu     sync.Mutex
	persistWarned atomic.Bool
}

func NewSignClient(restClient *rest.Client, signer *Signer, accountIndex, apiKeyIndex int, log *zap.Logger) (*SignClient, error) {
	if restClient == nil {
		return nil, errors.New("rest client is required")
	}
	if signer == nil {
		return nil, errors.New("signer is required")
	}
	if accountIndex < 0 || apiKeyIndex < 0 {
		return nil, errors.New("account and api key indices must be >= 0")
	}
	return &SignClient{
		rest:         restClient,
		signer:       signer,
		accountIndex: accountIndex,
		apiKeyIndex:  apiKeyIndex,
		log:          log,
	}, nil
}

// Init seeds the nonce from the store, the venue's nextNonce endpoint and
// the wall clock, highest wins. A failed venue read is a construction
// failure; the caller decides whether to retry later.
func (c *SignClient) Init(ctx context.Context, store NonceStore) error {
	seed := uint64(time.Now().UnixMilli())
	key := c.nonceStoreKey()
	if store != nil {
		if raw, ok, err := store.Get(ctx, key); err != nil {
			return err
		} else if ok {
			parsed, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
			if err != nil {
				return fmt.Errorf("invalid stored nonce %q: %w", raw, err)
			}
			if parsed > seed {
				seed = parsed
			}
		}
	}
	venueNonce, err := c.fetchNextNonce(ctx)
	if err != nil {
		return fmt.Errorf("next nonce: %w", err)
	}
	if venueNonce > seed {
		seed = venueNonce
	}
	if current := c.lastNonce.Load(); current > seed {
		seed = current
	}
	c.nonceStore = store
	c.nonceKey = key
	c.lastNonce.Store(seed)
	c.lastPersisted.Store(seed)
	return nil
}

// SignCreateOrder submits one candidate shape to the signing endpoint and
// returns the venue's signed transaction object. Rejections caused by the
// shape itself come back as APIErrors with ShapeMismatch set.
func (c *SignClient) SignCreateOrder(ctx context.Context, params OrderParams) (SignedTx, error) {
	payload, err := EncodeOrderParams(params)
	if err != nil {
		return SignedTx{}, fmt.Errorf("encode params: %w", err)
	}
	nonce := c.nextNonce()
	auth, err := c.signer.SignRequest(payload, nonce, c.accountIndex, c.apiKeyIndex)
	if err != nil {
		return SignedTx{}, fmt.Errorf("sign request: %w", err)
	}
	req := signOrderRequest{
		AccountIndex: c.accountIndex,
		APIKeyIndex:  c.apiKeyIndex,
		Nonce:        nonce,
		Params:       params.Payload,
		AuthSig:      auth,
	}
	resp, err := c.rest.Post(ctx, signOrderPath, req)
	if err != nil {
		return SignedTx{}, classifyError(err)
	}
	tx, ok := signedTxFromAny(resp)
	if !ok {
		return SignedTx{}, fmt.Errorf("sign response missing tx: %v", resp)
	}
	return tx, nil
}

func (c *SignClient) fetchNextNonce(ctx context.Context) (uint64, error) {
	query := url.Values{}
	query.Set("account_index", strconv.Itoa(c.accountIndex))
	query.Set("api_key_index", strconv.Itoa(c.apiKeyIndex))
	resp, err := c.rest.Get(ctx, nextNoncePath, query)
	if err != nil {
		return 0, classifyError(err)
	}
	nonce, ok := nonceFromAny(resp)
	if !ok {
		return 0, fmt.Errorf("nonce missing in response: %v", resp)
	}
	return nonce, nil
}

func (c *SignClient) nextNonce() uint64 {
	now := uint64(time.Now().UnixMilli())
	for {
		prev := c.lastNonce.Load()
		next := now
		if prev >= next {
			next = prev + 1
		}
		if c.lastNonce.CompareAndSwap(prev, next) {
			c.persistNonce(next)
			return next
		}
	}
}

func (c *SignClient) persistNonce(nonce uint64) {
	if c.nonceStore == nil || c.nonceKey == "" {
		return
	}
	c.persistMu.Lock()
	defer c.persistMu.Unlock()
	if nonce <= c.lastPersisted.Load() {
		return
	}
	if err := c.nonceStore.Set(context.Background(), c.nonceKey, strconv.FormatUint(nonce, 10)); err != nil {
		c.logPersistError(err)
		return
	}
	c.lastPersisted.Store(nonce)
	c.persistWarned.Store(false)
}

func (c *SignClient) logPersistError(err error) {
	if c.log == nil {
		return
	}
	if c.persistWarned.CompareAndSwap(false, true) {
		c.log.Warn("nonce persistence failed", zap.String("nonce_key", c.nonceKey), zap.Error(err))
	}
}

func (c *SignClient) nonceStoreKey() string {
	base := strings.ToLower(strings.TrimSpace(c.rest.BaseURL()))
	return fmt.Sprintf("signer:nonce:%s:%d:%d", base, c.accountIndex, c.apiKeyIndex)
}

// TxClient submits already-signed transactions. The decoded venue response
// is handed back untouched so the webhook caller sees it verbatim.
type TxClient struct {
	rest *rest.Client
	log  *zap.Logger
}

func NewTxClient(restClient *rest.Client, log *zap.Logger) *TxClient {
	return &TxClient{rest: restClient, log: log}
}

func (c *TxClient) SendTx(ctx context.Context, tx SignedTx) (map[string]any, error) {
	req := sendTxRequest{TxType: tx.TxType, TxInfo: tx.TxInfo, Signature: tx.Signature}
	resp, err := c.rest.Post(ctx, sendTxPath, req)
	if err != nil {
		return nil, classifyError(err)
	}
	body, _ := resp.(map[string]any)
	if body == nil {
		body = map[string]any{"result": resp}
	}
	if code, msg, rejected := rejectionFromBody(body); rejected {
		return body, &APIError{Status: 200, Code: code, Message: msg}
	}
	return body, nil
}
