package timescale

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"lighter-relay/internal/config"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
)

const writeTimeout = 3 * time.Second

// OrderRecord is one relayed order, written asynchronously so the webhook
// response never waits on the history database.
type OrderRecord struct {
	Time        time.Time
	Symbol      string
	MarketIndex int
	Side        string
	Quantity    string
	BaseAmount  int64
	Shape       string
	Status      string
	TxHash      string
	Detail      string
}

const (
	StatusSubmitted = "submitted"
	StatusRejected  = "rejected"
	StatusFailed    = "failed"
)

type Writer struct {
	db      *sql.DB
	log     *zap.Logger
	schema  string
	orders  chan OrderRecord
	started atomic.Bool
	dropped atomic.Uint64
}

// New returns nil without error when history is disabled; a nil *Writer
// is safe to use everywhere.
func New(cfg config.HistoryConfig, log *zap.Logger) (*Writer, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, errors.New("history dsn is required")
	}
	schema := strings.TrimSpace(cfg.Schema)
	if schema == "" {
		schema = "public"
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 256
	}
	writer := &Writer{
		db:     db,
		log:    log,
		schema: schema,
		orders: make(chan OrderRecord, queueSize),
	}
	if err := writer.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return writer, nil
}

func (w *Writer) Start(ctx context.Context) {
	if w == nil {
		return
	}
	if !w.started.CompareAndSwap(false, true) {
		return
	}
	go w.run(ctx)
}

func (w *Writer) Close() error {
	if w == nil || w.db == nil {
		return nil
	}
	return w.db.Close()
}

// Enqueue never blocks; when the queue is full the record is dropped and
// the first drop logged.
func (w *Writer) Enqueue(record OrderRecord) {
	if w == nil {
		return
	}
	select {
	case w.orders <- record:
		return
	default:
		if w.dropped.Add(1) == 1 && w.log != nil {
			w.log.Warn("order history queue full")
		}
	}
}

func (w *Writer) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case record := <-w.orders:
			w.writeOrder(ctx, record)
		}
	}
}

func (w *Writer) ensureSchema(ctx context.Context) error {
	if w.db == nil {
		return errors.New("history db not initialized")
	}
	if w.schema != "public" {
		if err := w.exec(ctx, fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", w.schema)); err != nil {
			return err
		}
	}
	if err := w.exec(ctx, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		ts TIMESTAMPTZ NOT NULL,
		symbol TEXT NOT NULL,
		market_index INTEGER NOT NULL,
		side TEXT NOT NULL,
		quantity TEXT NOT NULL,
		base_amount BIGINT NOT NULL,
		shape TEXT NOT NULL,
		status TEXT NOT NULL,
		tx_hash TEXT NOT NULL DEFAULT '',
		detail TEXT NOT NULL DEFAULT ''
	)`, w.table("relay_orders"))); err != nil {
		return err
	}
	if err := w.exec(ctx, "CREATE EXTENSION IF NOT EXISTS timescaledb"); err != nil {
		if w.log != nil {
			w.log.Warn("timescale extension ensure failed", zap.Error(err))
		}
	}
	if err := w.exec(ctx, fmt.Sprintf("SELECT create_hypertable('%s', 'ts', if_not_exists => TRUE)", w.table("relay_orders"))); err != nil {
		if w.log != nil {
			w.log.Warn("hypertable ensure failed", zap.Error(err))
		}
	}
	return nil
}

func (w *Writer) writeOrder(ctx context.Context, record OrderRecord) {
	writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	ts := record.Time
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	_, err := w.db.ExecContext(writeCtx, fmt.Sprintf(`INSERT INTO %s
		(ts, symbol, market_index, side, quantity, base_amount, shape, status, tx_hash, detail)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`, w.table("relay_orders")),
		ts, record.Symbol, record.MarketIndex, record.Side, record.Quantity,
		record.BaseAmount, record.Shape, record.Status, record.TxHash, record.Detail)
	if err != nil && w.log != nil {
		w.log.Warn("order history write failed", zap.Error(err))
	}
}

func (w *Writer) exec(ctx context.Context, stmt string) error {
	execCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	_, err := w.db.ExecContext(execCtx, stmt)
	return err
}

func (w *Writer) table(name string) string {
	return fmt.Sprintf("%s.%s", w.schema, name)
}
