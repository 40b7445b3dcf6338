package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Notification results.
const (
	NotificationSent    = "sent"
	NotificationSkipped = "skipped"
	NotificationFailed  = "failed"
)

// Metrics holds the service's prometheus collectors on a private registry.
type Metrics struct {
	registry      *prometheus.Registry
	ordersCreated *prometheus.CounterVec
	statusChanges *prometheus.CounterVec
	notifications *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
}

// New registers all collectors, including the Go runtime and process ones.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		ordersCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ralli_orders_created_total",
				Help: "Orders created, by intake source.",
			},
			[]string{"source"},
		),
		statusChanges: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ralli_order_status_changes_total",
				Help: "Order status changes, by previous and new status.",
			},
			[]string{"from", "to"},
		),
		notifications: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ralli_completion_notifications_total",
				Help: "Completion notifications, by result.",
			},
			[]string{"result"},
		),
		httpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ralli_http_request_duration_seconds",
				Help:    "HTTP request latency.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
	}
}

// Registry exposes the registry for the /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) OrderCreated(source string) {
	m.ordersCreated.WithLabelValues(source).Inc()
}

func (m *Metrics) StatusChanged(from, to string) {
	m.statusChanges.WithLabelValues(from, to).Inc()
}

func (m *Metrics) Notification(result string) {
	m.notifications.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.httpDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}
