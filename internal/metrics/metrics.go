package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "shelfline"

// Registry is the process-wide Prometheus registry for all metrics.
var Registry = prometheus.NewRegistry()

// AppInfo exposes build information as labels (value is always 1).
var AppInfo = promauto.With(Registry).NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "app_info",
		Help:      "Application version information (always set to 1, version info in labels)",
	},
	[]string{"version", "commit", "build_date"},
)

// BookEventsPublished counts change events enqueued on the bus, by action.
var BookEventsPublished = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "book_events_published_total",
		Help:      "Total number of change events published to the event queue",
	},
	[]string{"action"},
)

// SSESubscribers tracks the number of open event-stream connections.
var SSESubscribers = promauto.With(Registry).NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "sse_subscribers",
		Help:      "Current number of connected SSE subscribers",
	},
)

// Init registers runtime collectors and stamps build information.
func Init(version, commit, buildDate string) {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	AppInfo.WithLabelValues(version, commit, buildDate).Set(1)
}

// RegisterQueueDepth exposes the event queue backlog as a gauge. The
// callback is invoked at scrape time.
func RegisterQueueDepth(depth func() float64) {
	Registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "event_queue_depth",
			Help:      "Current number of unconsumed events in the queue",
		},
		depth,
	))
}
