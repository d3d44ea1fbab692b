package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Metrics holds all prometheus metrics. Counters live on a private
// registry so batch runs can push them to a gateway without touching
// the process-global one.
type Metrics struct {
	registry *prometheus.Registry

	FlightsProcessed   prometheus.Counter
	PagesRendered      prometheus.Counter
	FlightsUpdated     prometheus.Counter
	IdentityMismatches prometheus.Counter
	ProcessingTime     prometheus.Histogram
	ErrorsCount        *prometheus.CounterVec
}

// NewMetrics creates new prometheus metrics
func NewMetrics(namespace string) *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		FlightsProcessed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flights_processed_total",
			Help:      "The total number of flight records examined",
		}),
		PagesRendered: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pages_rendered_total",
			Help:      "The total number of tracking pages fetched through the browser",
		}),
		FlightsUpdated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flights_updated_total",
			Help:      "The total number of update payloads submitted",
		}),
		IdentityMismatches: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "identity_mismatches_total",
			Help:      "The total number of scrapes rejected by identity validation",
		}),
		ProcessingTime: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "flight_processing_time_seconds",
			Help:      "Time taken to reconcile a single flight record",
			Buckets:   prometheus.DefBuckets,
		}),
		ErrorsCount: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "The total number of errors",
		}, []string{"operation"}),
	}
}

// Push sends the collected metrics to a Pushgateway. A run without a
// configured gateway is a no-op.
func (m *Metrics) Push(gatewayURL, job string) error {
	if gatewayURL == "" {
		return nil
	}
	return push.New(gatewayURL, job).Gatherer(m.registry).Push()
}
