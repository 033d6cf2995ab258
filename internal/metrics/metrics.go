// Package metrics exposes Prometheus instrumentation for the mood pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "aura_tracker"

// Fetch outcomes
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Recorder owns a private registry so tests and multiple servers never collide
type Recorder struct {
	registry *prometheus.Registry

	fetches          *prometheus.CounterVec
	postsFetched     prometheus.Counter
	externalErrors   *prometheus.CounterVec
	alertsEmitted    prometheus.Counter
	analysisDuration *prometheus.HistogramVec
	scrapedPosts     prometheus.Gauge
	lastScrapeUnix   prometheus.Gauge
}

// New creates a recorder with Go runtime and process collectors registered
func New() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		fetches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "user_fetches_total",
			Help:      "User post fetches by source and outcome.",
		}, []string{"source", "outcome"}),
		postsFetched: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "posts_fetched_total",
			Help:      "Posts stored by user fetches.",
		}),
		externalErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "external_errors_total",
			Help:      "Failed calls to external services.",
		}, []string{"service"}),
		alertsEmitted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_emitted_total",
			Help:      "Low-mood alerts produced.",
		}),
		analysisDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_duration_seconds",
			Help:      "Latency of pipeline analyses by kind.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 4, 8),
		}, []string{"kind"}),
		scrapedPosts: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "scrape_snapshot_posts",
			Help:      "Rows in the latest subreddit scrape snapshot.",
		}),
		lastScrapeUnix: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "scrape_last_success_unixtime",
			Help:      "Completion time of the last successful scrape.",
		}),
	}
}

// ObserveFetch counts one user fetch and the posts it stored
func (r *Recorder) ObserveFetch(source, outcome string, posts int) {
	r.fetches.WithLabelValues(source, outcome).Inc()
	if posts > 0 {
		r.postsFetched.Add(float64(posts))
	}
}

// ExternalError counts a failed call to service (embedder, classifier, source, notifier)
func (r *Recorder) ExternalError(service string) {
	r.externalErrors.WithLabelValues(service).Inc()
}

// AlertsEmitted adds n alerts
func (r *Recorder) AlertsEmitted(n int) {
	if n > 0 {
		r.alertsEmitted.Add(float64(n))
	}
}

// ObserveAnalysis records how long an analysis of kind took
func (r *Recorder) ObserveAnalysis(kind string, d time.Duration) {
	r.analysisDuration.WithLabelValues(kind).Observe(d.Seconds())
}

// ObserveScrape records a completed scrape
func (r *Recorder) ObserveScrape(posts int, at time.Time) {
	r.scrapedPosts.Set(float64(posts))
	r.lastScrapeUnix.Set(float64(at.Unix()))
}

// Registry exposes the underlying registry
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
