// Package metrics exposes Prometheus counters for resolve() outcomes.
//
// Purely observational: nothing here influences resolution control
// flow or return values. Carried as an ambient concern independent of
// any feature non-goals.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// nolint:gochecknoglobals
var reg = prometheus.NewRegistry()

// nolint:gochecknoglobals
var (
	outcomeCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bcresolve",
		Name:      "outcomes_total",
		Help:      "Count of resolve() outcomes by kind.",
	}, []string{"outcome"})

	nsAttemptsHistogram = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "bcresolve",
		Name:      "ns_attempts",
		Help:      "Number of nameservers tried per resolve() call that returned without an error.",
		Buckets:   []float64{1, 2, 3, 4, 5, 8, 13},
	})
)

// nolint:gochecknoinits
func init() {
	reg.MustRegister(outcomeCounter)
	reg.MustRegister(nsAttemptsHistogram)
}

// RecordOutcome increments the counter for the given outcome kind.
func RecordOutcome(kind string) {
	outcomeCounter.WithLabelValues(kind).Inc()
}

// RecordNSAttempts observes how many nameservers a resolve() call tried.
func RecordNSAttempts(n int) {
	nsAttemptsHistogram.Observe(float64(n))
}

// Handler returns the HTTP handler serving the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

// RegisterMetric allows additional collectors to attach to the registry.
func RegisterMetric(c prometheus.Collector) error {
	return reg.Register(c)
}
