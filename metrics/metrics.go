// Package metrics exposes simulation progress as Prometheus metrics.
//
// Recorder is a report.Reporter, so it plugs into a Universe next to any
// other progress sink. All metric operations are thread-safe via Prometheus's
// internal locking.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sheikhrachel/go-gol-watch/report"
)

const metricsNamespace = "gol"

// Recorder holds the collectors updated on every generation
type Recorder struct {
	Generations     prometheus.Counter
	LiveCells       prometheus.Gauge
	Population      prometheus.Gauge
	Verdicts        *prometheus.CounterVec
	DistinctPrints  prometheus.Gauge
	PeakOccurrences prometheus.Gauge
}

// NewRecorder registers the collectors with reg. A nil reg uses the default registerer.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Recorder{
		Generations: f.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "generations_total",
			Help:      "Total generations simulated",
		}),
		LiveCells: f.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "live_cells",
			Help:      "Live cells of the last completed generation before its transition",
		}),
		Population: f.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "population",
			Help:      "Live cells of the current grid",
		}),
		Verdicts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "verdicts_total",
			Help:      "Stagnation verdicts by outcome",
		}, []string{"verdict"}),
		DistinctPrints: f.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "fingerprints_distinct",
			Help:      "Distinct fingerprints in the retention window",
		}),
		PeakOccurrences: f.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "fingerprint_peak_occurrences",
			Help:      "Highest occurrence count of a single fingerprint in the window",
		}),
	}
}

// Report implements report.Reporter
func (r *Recorder) Report(p report.Progress) {
	r.Generations.Inc()
	r.LiveCells.Set(float64(p.LiveCells))
	r.Population.Set(float64(p.Population))
	r.Verdicts.WithLabelValues(string(p.Verdict)).Inc()
	r.DistinctPrints.Set(float64(p.Distinct))
	r.PeakOccurrences.Set(float64(p.Peak))
}

// Handler serves the metrics gathered by g. A nil g uses the default gatherer.
func Handler(g prometheus.Gatherer) http.Handler {
	if g == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
