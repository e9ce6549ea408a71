// Package metrics records derivation and rendering counters in a Prometheus
// registry. The CLI writes them out with WriteTextfile, the node exporter
// textfile format.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "mise"

// Recorder owns a private registry and the collectors registered on it.
type Recorder struct {
	registry *prometheus.Registry

	derivations *prometheus.CounterVec
	created     prometheus.Counter
	warnings    prometheus.Counter
	unresolved  prometheus.Counter
	renders     *prometheus.CounterVec
	deriveTime  prometheus.Histogram
	cacheHits   prometheus.Gauge
	cacheMisses prometheus.Gauge
}

// Derivation outcomes.
const (
	OutcomeDerived = "derived"
	OutcomeSkipped = "skipped"
	OutcomeFailed  = "failed"
)

// New registers every collector on a fresh registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		derivations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "derivations_total",
			Help:      "Derivation passes by outcome.",
		}, []string{"outcome"}),
		created: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "products_created_total",
			Help:      "Products created by the discovery pass.",
		}),
		warnings: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "derivation_warnings_total",
			Help:      "Duplicate key warnings raised while deriving.",
		}),
		unresolved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unresolved_references_total",
			Help:      "Instruction references left unresolved after derivation.",
		}),
		renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "renders_total",
			Help:      "Recipe renders by output format.",
		}, []string{"format"}),
		deriveTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "derivation_duration_seconds",
			Help:      "Wall time of derivation passes.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		cacheHits: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "template_cache_hits",
			Help:      "Technique template cache hits in this process.",
		}),
		cacheMisses: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "template_cache_misses",
			Help:      "Technique template cache misses in this process.",
		}),
	}
	r.registry.MustRegister(
		r.derivations, r.created, r.warnings, r.unresolved,
		r.renders, r.deriveTime, r.cacheHits, r.cacheMisses,
	)
	return r
}

// Registry exposes the underlying registry, e.g. for an HTTP handler.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// Derivation is what ObserveDerivation needs from a pass.
type Derivation struct {
	Outcome    string
	Created    int
	Warnings   int
	Unresolved int
	Elapsed    time.Duration
}

// ObserveDerivation records one pass. Skipped passes only bump the counter.
func (r *Recorder) ObserveDerivation(d Derivation) {
	if r == nil {
		return
	}
	r.derivations.WithLabelValues(d.Outcome).Inc()
	if d.Outcome == OutcomeSkipped {
		return
	}
	r.created.Add(float64(d.Created))
	r.warnings.Add(float64(d.Warnings))
	r.unresolved.Add(float64(d.Unresolved))
	r.deriveTime.Observe(d.Elapsed.Seconds())
}

// ObserveRender counts one render in format.
func (r *Recorder) ObserveRender(format string) {
	if r == nil {
		return
	}
	r.renders.WithLabelValues(format).Inc()
}

// SetCacheStats publishes the template cache counters.
func (r *Recorder) SetCacheStats(hits, misses uint64) {
	if r == nil {
		return
	}
	r.cacheHits.Set(float64(hits))
	r.cacheMisses.Set(float64(misses))
}

// WriteTextfile writes the registry in text exposition format to path,
// atomically.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
