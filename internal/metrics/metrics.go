// Package metrics exposes Prometheus collectors for the scout jobs.
package metrics

import (
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	scoutPagesTotal         *prometheus.CounterVec
	scoutFetchErrorsTotal   *prometheus.CounterVec
	scoutRecordsExtracted   *prometheus.CounterVec
	scoutSnapshotSize       *prometheus.GaugeVec
	scoutJobsTotal          *prometheus.CounterVec
	scoutJobDurationSeconds *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		scoutPagesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scout_pages_total",
				Help: "Total number of pages fetched, labeled by site and outcome.",
			},
			[]string{"site", "outcome"},
		)

		scoutFetchErrorsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scout_fetch_errors_total",
				Help: "Total number of failed page fetches, labeled by site.",
			},
			[]string{"site"},
		)

		scoutRecordsExtracted = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scout_records_extracted_total",
				Help: "Total number of records extracted from pages, labeled by kind.",
			},
			[]string{"kind"},
		)

		scoutSnapshotSize = promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "scout_snapshot_records",
				Help: "Number of records in the most recently written snapshot, labeled by kind.",
			},
			[]string{"kind"},
		)

		scoutJobsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scout_jobs_total",
				Help: "Total number of job runs, labeled by job and status.",
			},
			[]string{"job", "status"},
		)

		scoutJobDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "scout_job_duration_seconds",
				Help:    "Histogram of job run durations, labeled by job.",
				Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
			},
			[]string{"job"},
		)
	})
}

// SanitizeSite sanitizes a URL to extract a lowercase hostname.
// It returns "unknown" if the URL is invalid.
func SanitizeSite(rawURL string) string {
	if !strings.HasPrefix(rawURL, "http") {
		rawURL = "http://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.ToLower(u.Hostname())
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObservePage records one fetched page for the given site.
func ObservePage(site string, ok bool) {
	sanitized := SanitizeSite(site)
	outcome := "ok"
	if !ok {
		outcome = "failed"
		scoutFetchErrorsTotal.WithLabelValues(sanitized).Inc()
	}
	scoutPagesTotal.WithLabelValues(sanitized, outcome).Inc()
}

// ObserveRecords adds to the extracted record counter for the given kind.
func ObserveRecords(kind string, count int) {
	if count > 0 {
		scoutRecordsExtracted.WithLabelValues(kind).Add(float64(count))
	}
}

// SetSnapshotSize records the size of the latest written snapshot.
func SetSnapshotSize(kind string, count int) {
	scoutSnapshotSize.WithLabelValues(kind).Set(float64(count))
}

// ObserveJob records one finished job run with its status and duration.
func ObserveJob(job, status string, duration time.Duration) {
	scoutJobsTotal.WithLabelValues(job, status).Inc()
	scoutJobDurationSeconds.WithLabelValues(job).Observe(duration.Seconds())
}
