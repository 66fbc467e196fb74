// Package metrics exposes Prometheus instrumentation for the refresh loop,
// plus the side server that serves /metrics and /healthz.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder holds the service's collectors. A nil *Recorder is valid and
// records nothing, so instrumentation stays optional in tests.
type Recorder struct {
	scoresCalls     prometheus.Counter
	oddsCalls       prometheus.Counter
	cycleErrors     prometheus.Counter
	gamesIncomplete prometheus.Gauge
	updatingHealthy prometheus.Gauge
}

// NewRecorder registers the collectors on the default registry.
func NewRecorder() *Recorder {
	return &Recorder{
		scoresCalls: promauto.NewCounter(prometheus.CounterOpts{
			Name: "madness_scores_provider_calls_total",
			Help: "Calls issued to the scores provider.",
		}),
		oddsCalls: promauto.NewCounter(prometheus.CounterOpts{
			Name: "madness_odds_provider_calls_total",
			Help: "Calls issued to the odds provider.",
		}),
		cycleErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "madness_cycle_errors_total",
			Help: "Per-event provider or merge errors across refresh cycles.",
		}),
		gamesIncomplete: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "madness_games_incomplete",
			Help: "Events not yet final.",
		}),
		updatingHealthy: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "madness_updating_healthy",
			Help: "1 while the scores provider is reachable, 0 otherwise.",
		}),
	}
}

// RecordCycle folds one refresh cycle's accounting in.
func (r *Recorder) RecordCycle(scoresCalls, oddsCalls int, success bool, incomplete int) {
	if r == nil {
		return
	}
	r.scoresCalls.Add(float64(scoresCalls))
	r.oddsCalls.Add(float64(oddsCalls))
	r.gamesIncomplete.Set(float64(incomplete))
	if success {
		r.updatingHealthy.Set(1)
	} else {
		r.updatingHealthy.Set(0)
	}
}

// CycleError counts one isolated provider/merge failure.
func (r *Recorder) CycleError() {
	if r == nil {
		return
	}
	r.cycleErrors.Inc()
}
