package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	UpstreamRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "etl_upstream_requests_total",
			Help: "Total number of teztok page requests by result",
		},
		[]string{"result"},
	)

	UpstreamRequestDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "etl_upstream_request_duration_seconds",
			Help:    "Duration of teztok page requests",
			Buckets: prometheus.DefBuckets,
		},
	)

	EventsCollectedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "etl_events_collected_total",
			Help: "Total number of raw events collected from teztok",
		},
	)

	TransformsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "etl_transforms_total",
			Help: "Total number of raw event transforms by result",
		},
		[]string{"result"},
	)

	TransactionsStoredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "etl_transactions_stored_total",
			Help: "Total number of normalized transactions handed to storage",
		},
	)

	DaysProcessedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "etl_days_processed_total",
			Help: "Total number of calendar days fully processed",
		},
	)
)

// Register registers all collectors with reg.
func Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{
		UpstreamRequestsTotal,
		UpstreamRequestDuration,
		EventsCollectedTotal,
		TransformsTotal,
		TransactionsStoredTotal,
		DaysProcessedTotal,
	} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Handler serves /metrics and /health.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}
