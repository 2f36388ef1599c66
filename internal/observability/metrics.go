package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	registry *prometheus.Registry

	// OpenWeatherMap API call rate. Watch for: error vs success ratio.
	WeatherAPICallsTotal *prometheus.CounterVec

	// External API latency per request. Watch for: p95 > 2s (upstream degradation).
	WeatherAPIDuration *prometheus.HistogramVec

	// Retry attempts for weather API. Only non-zero when retries are configured.
	WeatherAPIRetriesTotal prometheus.Counter

	// Failed weather lookups by category (timeout, invalid_api_key, ...).
	WeatherAPIErrorsTotal *prometheus.CounterVec

	// Emails handed to SMTP (or dry-run writer), by status.
	EmailsSentTotal *prometheus.CounterVec

	// Recommendation lines in the last email.
	RecommendationsCount prometheus.Gauge

	// Wall time of the last run. Watch for: runs creeping toward the CI timeout.
	RunDurationSeconds prometheus.Gauge

	// Unix time of the last run that sent an email. Alert when older than a day.
	LastSuccessTimestamp prometheus.Gauge
)

func init() {
	registry = prometheus.NewRegistry()

	registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	WeatherAPICallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weatherApiCallsTotal",
			Help: "Total number of OpenWeatherMap API calls",
		},
		[]string{"status"},
	)
	WeatherAPIDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "weatherApiDurationSeconds",
			Help:    "OpenWeatherMap API latency in seconds (per request)",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"status"},
	)
	WeatherAPIRetriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "weatherApiRetriesTotal",
			Help: "Total number of retry attempts for weather API calls",
		},
	)
	WeatherAPIErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weatherApiErrorsTotal",
			Help: "Failed weather lookups by error category",
		},
		[]string{"category"},
	)
	EmailsSentTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "emailsSentTotal",
			Help: "Total number of forecast emails, by status (sent, failed, dry_run)",
		},
		[]string{"status"},
	)
	RecommendationsCount = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "recommendationsCount",
			Help: "Number of clothing recommendations in the last email",
		},
	)
	RunDurationSeconds = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "runDurationSeconds",
			Help: "Duration of the last run in seconds",
		},
	)
	LastSuccessTimestamp = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "lastSuccessTimestampSeconds",
			Help: "Unix timestamp of the last successful run",
		},
	)

	registry.MustRegister(
		WeatherAPICallsTotal, WeatherAPIDuration, WeatherAPIRetriesTotal, WeatherAPIErrorsTotal,
		EmailsSentTotal, RecommendationsCount,
		RunDurationSeconds, LastSuccessTimestamp,
	)
}

// RecordRun sets the run gauges. success=false leaves LastSuccessTimestamp untouched.
func RecordRun(start time.Time, end time.Time, success bool) {
	RunDurationSeconds.Set(end.Sub(start).Seconds())
	if success {
		LastSuccessTimestamp.Set(float64(end.Unix()))
	}
}

// Gatherer exposes the private registry for pushing.
func Gatherer() prometheus.Gatherer {
	return registry
}
