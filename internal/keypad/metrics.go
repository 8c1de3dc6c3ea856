package keypad

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// sessionsActive is scraped from /metrics alongside the Go runtime metrics.
var sessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "keypad_sessions_active",
	Help: "Number of keypad sessions currently held in memory.",
})

// OTel instruments, initialized once via InitMetrics().
var (
	keysCounter  metric.Int64Counter
	keyHistogram metric.Float64Histogram
	errorCounter metric.Int64Counter
	resultGauge  metric.Float64Gauge
)

// InitMetrics registers the OTel instruments for the keypad domain.
// Call this once at startup (after observability.InitMetrics).
func InitMetrics() error {
	meter := otel.Meter("keypad")

	var err error

	keysCounter, err = meter.Int64Counter("keypad.keys.total",
		metric.WithDescription("Total number of keys pressed"),
		metric.WithUnit("{key}"),
	)
	if err != nil {
		return fmt.Errorf("creating keys counter: %w", err)
	}

	keyHistogram, err = meter.Float64Histogram("keypad.key.duration",
		metric.WithDescription("Time spent applying a key in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1),
	)
	if err != nil {
		return fmt.Errorf("creating key histogram: %w", err)
	}

	errorCounter, err = meter.Int64Counter("keypad.errors.total",
		metric.WithDescription("Total number of failed keypad requests"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return fmt.Errorf("creating error counter: %w", err)
	}

	resultGauge, err = meter.Float64Gauge("keypad.last_result",
		metric.WithDescription("The last finite result computed by any keypad"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("creating result gauge: %w", err)
	}

	return nil
}
