// Package metrics exposes the scheduler's Prometheus collectors. Every
// recording helper is a no-op until Register succeeds, so the
// scheduler can call them unconditionally whether or not the HTTP
// status server (and therefore metrics scraping) is enabled.
package metrics

import (
	"errors"
	"net/http"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	regOK atomic.Bool

	jobsTriggered = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pcron",
			Name:      "jobs_triggered_total",
			Help:      "Number of times a template became due and was handed to the queue.",
		}, []string{"job", "trigger"},
	)
	jobsStarted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pcron",
			Name:      "jobs_started_total",
			Help:      "Number of job instances actually spawned.",
		}, []string{"job"},
	)
	jobsConflicts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pcron",
			Name:      "jobs_conflicts_total",
			Help:      "Number of conflicts handled, by resulting policy outcome.",
		}, []string{"job", "outcome"},
	)
	jobDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pcron",
			Name:      "job_duration_seconds",
			Help:      "Observed wall-clock duration of finished job instances.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"job"},
	)
	queueDepth = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "pcron",
			Name:      "queue_depth",
			Help:      "Number of instances currently waiting in a group's queue.",
		}, []string{"group"},
	)
	nextRun = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "pcron",
			Name:      "next_run_timestamp_seconds",
			Help:      "Unix timestamp of each active template's next scheduled run.",
		}, []string{"job"},
	)
)

// Register registers all collectors with r. Safe to call more than
// once; later calls after a success are no-ops.
func Register(r prometheus.Registerer) error {
	if regOK.Load() {
		return nil
	}
	cs := []prometheus.Collector{jobsTriggered, jobsStarted, jobsConflicts, jobDuration, queueDepth, nextRun}
	for _, c := range cs {
		if err := r.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	regOK.Store(true)
	return nil
}

// Handler serves the default Prometheus gatherer.
func Handler() http.Handler { return promhttp.Handler() }

func IncTriggered(jobName, trigger string) {
	if regOK.Load() {
		jobsTriggered.WithLabelValues(jobName, trigger).Inc()
	}
}

func IncStarted(jobName string) {
	if regOK.Load() {
		jobsStarted.WithLabelValues(jobName).Inc()
	}
}

func IncConflict(jobName, outcome string) {
	if regOK.Load() {
		jobsConflicts.WithLabelValues(jobName, outcome).Inc()
	}
}

func ObserveDuration(jobName string, seconds float64) {
	if regOK.Load() {
		jobDuration.WithLabelValues(jobName).Observe(seconds)
	}
}

func SetQueueDepth(group string, n int) {
	if regOK.Load() {
		queueDepth.WithLabelValues(group).Set(float64(n))
	}
}

func SetNextRun(jobName string, unixSeconds float64) {
	if regOK.Load() {
		nextRun.WithLabelValues(jobName).Set(unixSeconds)
	}
}
