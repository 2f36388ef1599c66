package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

// TestMetrics_Usable verifies that all Prometheus metrics can be used without
// panic, ensuring label dimensions match usage across client, mailer and service packages.
func TestMetrics_Usable(t *testing.T) {
	WeatherAPICallsTotal.WithLabelValues("success").Inc()
	WeatherAPICallsTotal.WithLabelValues("error").Inc()
	WeatherAPIDuration.WithLabelValues("success").Observe(0.1)
	WeatherAPIRetriesTotal.Inc()
	WeatherAPIErrorsTotal.WithLabelValues("timeout").Inc()
	EmailsSentTotal.WithLabelValues("sent").Inc()
	RecommendationsCount.Set(3)
}

func TestRecordRun(t *testing.T) {
	start := time.Unix(1700000000, 0)
	end := start.Add(1500 * time.Millisecond)

	LastSuccessTimestamp.Set(0)
	RecordRun(start, end, false)
	if got := testutil.ToFloat64(RunDurationSeconds); got != 1.5 {
		t.Errorf("RunDurationSeconds = %v, want 1.5", got)
	}
	if got := testutil.ToFloat64(LastSuccessTimestamp); got != 0 {
		t.Errorf("LastSuccessTimestamp = %v after failed run, want 0", got)
	}

	RecordRun(start, end, true)
	if got := testutil.ToFloat64(LastSuccessTimestamp); got != float64(end.Unix()) {
		t.Errorf("LastSuccessTimestamp = %v, want %v", got, end.Unix())
	}
}
