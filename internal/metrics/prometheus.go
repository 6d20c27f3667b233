package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const promNamespace = "lighter_relay"

type promCounter struct {
	counter prometheus.Counter
}

func (p promCounter) Inc() {
	p.counter.Inc()
}

type Prometheus struct {
	Metrics *Metrics

	registry         *prometheus.Registry
	webhooksReceived prometheus.Counter
	webhooksRejected prometheus.Counter
	ordersSubmitted  prometheus.Counter
	ordersFailed     prometheus.Counter
	shapeFallbacks   prometheus.Counter
	marketCacheMiss  prometheus.Counter
}

func NewPrometheus() *Prometheus {
	registry := prometheus.NewRegistry()
	webhooksReceived := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: promNamespace,
		Name:      "webhooks_received_total",
		Help:      "Total number of webhook requests received.",
	})
	webhooksRejected := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: promNamespace,
		Name:      "webhooks_rejected_total",
		Help:      "Total number of webhook requests rejected before submission.",
	})
	ordersSubmitted := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: promNamespace,
		Name:      "orders_submitted_total",
		Help:      "Total number of orders accepted by the venue.",
	})
	ordersFailed := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: promNamespace,
		Name:      "orders_failed_total",
		Help:      "Total number of order submissions the venue refused.",
	})
	shapeFallbacks := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: promNamespace,
		Name:      "shape_fallbacks_total",
		Help:      "Total number of order shapes rejected before a compatible one.",
	})
	marketCacheMiss := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: promNamespace,
		Name:      "market_cache_miss_total",
		Help:      "Total number of symbol resolutions that needed a listing fetch.",
	})

	registry.MustRegister(webhooksReceived, webhooksRejected, ordersSubmitted, ordersFailed, shapeFallbacks, marketCacheMiss)

	m := &Metrics{
		WebhooksReceived: promCounter{webhooksReceived},
		WebhooksRejected: promCounter{webhooksRejected},
		OrdersSubmitted:  promCounter{ordersSubmitted},
		OrdersFailed:     promCounter{ordersFailed},
		ShapeFallbacks:   promCounter{shapeFallbacks},
		MarketCacheMiss:  promCounter{marketCacheMiss},
	}

	return &Prometheus{
		Metrics:          m,
		registry:         registry,
		webhooksReceived: webhooksReceived,
		webhooksRejected: webhooksRejected,
		ordersSubmitted:  ordersSubmitted,
		ordersFailed:     ordersFailed,
		shapeFallbacks:   shapeFallbacks,
		marketCacheMiss:  marketCacheMiss,
	}
}

func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}
