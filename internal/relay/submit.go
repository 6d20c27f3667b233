package relay

import (
	"context"

	"lighter-relay/internal/lighter/exchange"
	"lighter-relay/internal/metrics"
	"lighter-relay/internal/order"

	"go.uber.org/zap"
)

// Submitter walks the candidate shapes against the signing client and
// sends at most one signed transaction. Only shape-mismatch rejections
// advance the probe; anything else is terminal.
type Submitter struct {
	log     *zap.Logger
	metrics *metrics.Metrics
}

func NewSubmitter(log *zap.Logger, m *metrics.Metrics) *Submitter {
	if m == nil {
		m = metrics.NewNoop()
	}
	return &Submitter{log: log, metrics: m}
}

// Result is a completed submission: the venue's verbatim response plus
// which shape and amount went over the wire.
type Result struct {
	Response   map[string]any
	Shape      string
	BaseAmount int64
	TxHash     string
}

func (s *Submitter) Submit(ctx context.Context, signer SigningClient, tx TransactionClient, intent order.Intent) (*Result, error) {
	baseAmount, err := intent.BaseUnits()
	if err != nil {
		return nil, err
	}

	var lastDetail string
	for _, shape := range candidateShapes {
		params := exchange.OrderParams{Shape: shape.name, Payload: shape.build(intent, baseAmount)}
		signed, err := signer.SignCreateOrder(ctx, params)
		if err != nil {
			if exchange.IsShapeMismatch(err) {
				lastDetail = err.Error()
				s.metrics.ShapeFallbacks.Inc()
				s.log.Debug("order shape rejected",
					zap.String("shape", shape.name),
					zap.Error(err))
				continue
			}
			s.metrics.OrdersFailed.Inc()
			return nil, &SubmissionError{Detail: err.Error(), Err: err}
		}

		resp, err := tx.SendTx(ctx, signed)
		if err != nil {
			s.metrics.OrdersFailed.Inc()
			return &Result{Response: resp, Shape: shape.name, BaseAmount: baseAmount},
				&SubmissionError{Detail: err.Error(), Err: err}
		}
		hash := exchange.TxHashFromResponse(resp)
		s.metrics.OrdersSubmitted.Inc()
		s.log.Info("order submitted",
			zap.String("shape", shape.name),
			zap.Int("market_index", intent.MarketIndex),
			zap.String("side", intent.Side.String()),
			zap.Int64("base_amount", baseAmount),
			zap.String("tx_hash", hash))
		return &Result{Response: resp, Shape: shape.name, BaseAmount: baseAmount, TxHash: hash}, nil
	}

	s.metrics.OrdersFailed.Inc()
	return nil, &NoCompatibleInterfaceError{Attempts: len(candidateShapes), LastDetail: lastDetail}
}
