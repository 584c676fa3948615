package metrics

import (
	"net/http"
	"sync"

	"specview/internal/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	MetricsNamespace = "specview"

	resultPassed = "passed"
	resultFailed = "failed"
)

// Recorder exports session progress as Prometheus metrics
type Recorder struct {
	specsTotal    *prometheus.CounterVec
	declaredSpecs prometheus.Gauge
	phase         prometheus.Gauge

	mu         sync.Mutex
	lastPassed int
	lastFailed int
}

// NewRecorder registers the session metrics with reg
func NewRecorder(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		specsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Name:      "specs_total",
			Help:      "Count of completed specs by result",
		}, []string{
			"result",
		}),
		declaredSpecs: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: MetricsNamespace,
			Name:      "declared_specs",
			Help:      "Number of specs the suite declared",
		}),
		phase: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: MetricsNamespace,
			Name:      "session_phase",
			Help:      "Session phase: 0 not started, 1 running, 2 complete",
		}),
	}
}

// Observe records the difference between snap and the previous snapshot
func (r *Recorder) Observe(snap domain.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()

	passed := snap.PassedTests
	failed := len(snap.FailedTests)
	if passed > r.lastPassed {
		r.specsTotal.WithLabelValues(resultPassed).Add(float64(passed - r.lastPassed))
		r.lastPassed = passed
	}
	if failed > r.lastFailed {
		r.specsTotal.WithLabelValues(resultFailed).Add(float64(failed - r.lastFailed))
		r.lastFailed = failed
	}

	r.declaredSpecs.Set(float64(snap.TotalTests))
	r.phase.Set(float64(snap.Phase))
}

// Handler serves the metrics gathered by g
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
