// Package metrics holds the Prometheus instrumentation of reconciliation
// cycles. Metrics live on a private registry exposed by Handler, so tests
// and one-shot commands never touch the global default registry.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "transip_dns"

// Outcomes. A cycle ends as applied, unchanged, dry_run, partial or error.
// A watch tick ends as one of those or as skipped when no cycle ran.
const (
	OutcomeApplied   = "applied"
	OutcomeUnchanged = "unchanged"
	OutcomeDryRun    = "dry_run"
	OutcomePartial   = "partial"
	OutcomeError     = "error"
	OutcomeSkipped   = "skipped"
)

// Registry is the registry all metrics of this package are registered on.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

var cycleCount = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "cycles_total",
	Help:      "Counter of reconciliation cycles by outcome.",
}, []string{"outcome"})

var tickCount = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "watch_ticks_total",
	Help:      "Counter of watch ticks by outcome.",
}, []string{"outcome"})

var changeCount = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "changes_total",
	Help:      "Counter of record changes by apply result.",
}, []string{"result"})

var lookupCount = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "address_lookups_total",
	Help:      "Counter of public address lookups by family, source and result.",
}, []string{"family", "source", "result"})

var lastSuccess = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: namespace,
	Name:      "last_success_timestamp_seconds",
	Help:      "Unix time of the last cycle that left the records up to date.",
})

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// CycleCompleted counts one reconciliation cycle with the given outcome.
// Applied and unchanged cycles also advance the last-success timestamp.
func CycleCompleted(outcome string, at time.Time) {
	cycleCount.WithLabelValues(outcome).Inc()
	if outcome == OutcomeApplied || outcome == OutcomeUnchanged {
		lastSuccess.Set(float64(at.Unix()))
	}
}

// TickCompleted counts one watch tick with the given outcome.
func TickCompleted(outcome string) {
	tickCount.WithLabelValues(outcome).Inc()
}

// ChangesApplied counts applied and failed record changes.
func ChangesApplied(applied, failed int) {
	if applied > 0 {
		changeCount.WithLabelValues("applied").Add(float64(applied))
	}
	if failed > 0 {
		changeCount.WithLabelValues("failed").Add(float64(failed))
	}
}

// AddressLookup counts one lookup attempt against a source.
func AddressLookup(family, source string, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	lookupCount.WithLabelValues(family, source, result).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
