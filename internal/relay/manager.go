package relay

import (
	"context"
	"fmt"
	"sync"
	"time"

	"lighter-relay/internal/config"
	"lighter-relay/internal/lighter/exchange"
	"lighter-relay/internal/lighter/rest"

	"go.uber.org/zap"
)

// SigningClient produces a venue-signed transaction for one candidate
// parameter shape.
type SigningClient interface {
	SignCreateOrder(ctx context.Context, params exchange.OrderParams) (exchange.SignedTx, error)
}

// TransactionClient submits a signed transaction and returns the venue's
// decoded response.
type TransactionClient interface {
	SendTx(ctx context.Context, tx exchange.SignedTx) (map[string]any, error)
}

const defaultInitTimeout = 10 * time.Second

// Manager builds the signing and transaction clients on first use and
// caches them for the process lifetime. A failed build is not cached, so
// the next request retries construction from scratch.
type Manager struct {
	rest        *rest.Client
	creds       config.Credentials
	store       exchange.NonceStore
	log         *zap.Logger
	initTimeout time.Duration

	mu     sync.Mutex
	signer SigningClient
	tx     TransactionClient
}

func NewManager(restClient *rest.Client, creds config.Credentials, store exchange.NonceStore, log *zap.Logger) *Manager {
	return &Manager{
		rest:        restClient,
		creds:       creds,
		store:       store,
		log:         log,
		initTimeout: defaultInitTimeout,
	}
}

// Clients returns the cached client pair, constructing it under the lock
// if no successful construction has happened yet. Concurrent first calls
// serialize; exactly one construction succeeds and every caller shares it.
func (m *Manager) Clients(ctx context.Context) (SigningClient, TransactionClient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.signer != nil && m.tx != nil {
		return m.signer, m.tx, nil
	}

	signer, err := exchange.NewSigner(m.creds.SigningKey)
	if err != nil {
		return nil, nil, fmt.Errorf("signer init: %w", err)
	}
	signClient, err := exchange.NewSignClient(m.rest, signer, m.creds.AccountIndex, m.creds.APIKeyIndex, m.log)
	if err != nil {
		return nil, nil, fmt.Errorf("sign client init: %w", err)
	}
	initCtx, cancel := context.WithTimeout(ctx, m.initTimeout)
	defer cancel()
	if err := signClient.Init(initCtx, m.store); err != nil {
		return nil, nil, fmt.Errorf("sign client init: %w", err)
	}

	m.signer = signClient
	m.tx = exchange.NewTxClient(m.rest, m.log)
	m.log.Info("venue clients ready",
		zap.Int("account_index", m.creds.AccountIndex),
		zap.Int("api_key_index", m.creds.APIKeyIndex))
	return m.signer, m.tx, nil
}
