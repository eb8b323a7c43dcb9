package crawler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Fetch outcome labels for graph_crawler_fetch_total.
const (
	fetchResultOK      = "ok"
	fetchResultError   = "error"
	fetchResultTimeout = "timeout"
)

// Metrics holds the crawler's Prometheus collectors.
// Each Crawler owns its own set so that tests and repeated crawls do not collide
// on the default registry.
type Metrics struct {
	NodesVisited      prometheus.Counter
	Fetches           *prometheus.CounterVec
	FetchLatency      prometheus.Histogram
	DuplicatesSkipped prometheus.Counter
	VisitedErrors     prometheus.Counter
	SinkErrors        prometheus.Counter
	ActiveWorkers     prometheus.Gauge
	PendingTasks      prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg. A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		NodesVisited: factory.NewCounter(prometheus.CounterOpts{
			Name: "graph_crawler_nodes_visited_total",
			Help: "Nodes whose processing has started.",
		}),
		Fetches: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "graph_crawler_fetch_total",
			Help: "Neighbor service calls by result.",
		}, []string{"result"}),
		FetchLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "graph_crawler_fetch_latency_seconds",
			Help:    "Neighbor service latency.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		}),
		DuplicatesSkipped: factory.NewCounter(prometheus.CounterOpts{
			Name: "graph_crawler_duplicates_skipped_total",
			Help: "Neighbors dropped because another worker discovered them first.",
		}),
		VisitedErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "graph_crawler_visited_errors_total",
			Help: "Visited-set backend failures; the affected neighbor is skipped.",
		}),
		SinkErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "graph_crawler_sink_errors_total",
			Help: "Visit or edge publish failures.",
		}),
		ActiveWorkers: factory.NewGauge(prometheus.GaugeOpts{
			Name: "graph_crawler_active_workers",
			Help: "Workers between dequeuing a task and finishing it.",
		}),
		PendingTasks: factory.NewGauge(prometheus.GaugeOpts{
			Name: "graph_crawler_pending_tasks",
			Help: "Tasks created but not yet fully processed.",
		}),
	}
}
