package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics stores Prometheus collectors used across the service.
type Metrics struct {
	IncomingEvents      *prometheus.CounterVec
	OutgoingMessages    *prometheus.CounterVec
	Transactions        *prometheus.CounterVec
	AdminCommands       *prometheus.CounterVec
	BroadcastSends      *prometheus.CounterVec
	StoreOperations     *prometheus.CounterVec
	StoreOpLatency      *prometheus.HistogramVec
	ActiveConversations prometheus.Gauge
	Errors              *prometheus.CounterVec
}

var (
	regOnce         sync.Once
	metricsInstance *Metrics
)

// Registry builds and registers the metrics singleton with optional namespace.
func Registry(namespace string) *Metrics {
	regOnce.Do(func() {
		metricsInstance = &Metrics{
			IncomingEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "incoming_events_total",
				Help:      "Total inbound chat events by routed kind.",
			}, []string{"kind"}),
			OutgoingMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "outgoing_messages_total",
				Help:      "Total outbound messages by delivery outcome.",
			}, []string{"status"}),
			Transactions: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "transactions_total",
				Help:      "Transactions created or decided, by kind and status.",
			}, []string{"kind", "status"}),
			AdminCommands: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "admin_commands_total",
				Help:      "Recognised admin text commands by name.",
			}, []string{"command"}),
			BroadcastSends: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "broadcast_sends_total",
				Help:      "Broadcast deliveries by outcome.",
			}, []string{"status"}),
			StoreOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "store_operations_total",
				Help:      "Record store operations by collection and op.",
			}, []string{"collection", "op"}),
			StoreOpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "store_operation_duration_seconds",
				Help:      "Latency distribution for record store operations.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"collection", "op"}),
			ActiveConversations: prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "active_conversations",
				Help:      "Conversations currently holding per-user state.",
			}),
			Errors: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "errors_total",
				Help:      "Total errors grouped by component.",
			}, []string{"component"}),
		}

		prometheus.MustRegister(
			metricsInstance.IncomingEvents,
			metricsInstance.OutgoingMessages,
			metricsInstance.Transactions,
			metricsInstance.AdminCommands,
			metricsInstance.BroadcastSends,
			metricsInstance.StoreOperations,
			metricsInstance.StoreOpLatency,
			metricsInstance.ActiveConversations,
			metricsInstance.Errors,
		)
	})
	return metricsInstance
}
