package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	jobsSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "videoapi_jobs_submitted_total",
		Help: "Jobs submitted, by kind.",
	}, []string{"kind"})

	jobsFinished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "videoapi_jobs_finished_total",
		Help: "Jobs reaching a terminal state, by kind and state.",
	}, []string{"kind", "state"})

	sinkWriteSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "videoapi_sink_write_seconds",
		Help:    "Per-sink segment batch write latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"sink", "outcome"})

	sinkQuerySeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "videoapi_sink_query_seconds",
		Help:    "Per-sink similarity query latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"sink", "outcome"})

	searchesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "videoapi_searches_total",
		Help: "Dual searches executed.",
	})
)

// JobSubmitted counts one submitted job.
func JobSubmitted(kind string) {
	jobsSubmitted.WithLabelValues(kind).Inc()
}

// JobFinished counts one terminal transition.
func JobFinished(kind, state string) {
	jobsFinished.WithLabelValues(kind, state).Inc()
}

// SinkWrite records one sink write.
func SinkWrite(sink string, elapsed time.Duration, err error) {
	sinkWriteSeconds.WithLabelValues(sink, outcome(err)).Observe(elapsed.Seconds())
}

// SinkQuery records one sink query.
func SinkQuery(sink string, elapsed time.Duration, err error) {
	sinkQuerySeconds.WithLabelValues(sink, outcome(err)).Observe(elapsed.Seconds())
}

// Search counts one dual search.
func Search() {
	searchesTotal.Inc()
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
