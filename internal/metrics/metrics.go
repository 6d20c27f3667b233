package metrics

type Counter interface {
	Inc()
}

type Metrics struct {
	WebhooksReceived Counter
	WebhooksRejected Counter
	OrdersSubmitted  Counter
	OrdersFailed     Counter
	ShapeFallbacks   Counter
	MarketCacheMiss  Counter
}

type noopCounter struct{}

func (noopCounter) Inc() {}

func NewNoop() *Metrics {
	n := noopCounter{}
	return &Metrics{
		WebhooksReceived: n,
		WebhooksRejected: n,
		OrdersSubmitted:  n,
		OrdersFailed:     n,
		ShapeFallbacks:   n,
		MarketCacheMiss:  n,
	}
}
