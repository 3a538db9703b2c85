// Package metrics exports reload outcomes as prometheus metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Reloads implements reload.Observer.
type Reloads struct {
	registry   *prometheus.Registry
	attempts   *prometheus.CounterVec
	generation prometheus.Gauge
	duration   prometheus.Histogram
}

// New create the collectors for module name on a dedicated registry.
func New(name string) *Reloads {
	labels := prometheus.Labels{"module": name}
	r := &Reloads{
		registry: prometheus.NewRegistry(),
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "reload_attempts_total",
			Help:        "Reload attempts by result.",
			ConstLabels: labels,
		}, []string{"result"}),
		generation: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "reload_module_generation",
			Help:        "Number of successful reloads of the active module.",
			ConstLabels: labels,
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:        "reload_duration_seconds",
			Help:        "Time spent copying, loading and swapping a module.",
			ConstLabels: labels,
			Buckets:     prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
	}
	r.registry.MustRegister(r.attempts, r.generation, r.duration)
	return r
}

func (r *Reloads) Reloaded(generation uint64, took time.Duration) {
	r.attempts.WithLabelValues("success").Inc()
	r.generation.Set(float64(generation))
	r.duration.Observe(took.Seconds())
}

func (r *Reloads) ReloadFailed(_ error, took time.Duration) {
	r.attempts.WithLabelValues("failure").Inc()
	r.duration.Observe(took.Seconds())
}

// Registry returns the registry holding the collectors.
func (r *Reloads) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the collectors in the prometheus text format.
func (r *Reloads) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
