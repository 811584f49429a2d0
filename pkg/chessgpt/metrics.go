package chessgpt

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricsOnce     sync.Once
	metricsInstance *Metrics
)

// Metrics collects move-proposal observability. A process-wide singleton so
// repeated construction (tests, multiple sessions) never re-registers
// collectors.
type Metrics struct {
	proposalsTotal   *prometheus.CounterVec
	proposalDuration *prometheus.HistogramVec
	activeSessions   prometheus.Gauge
}

func NewMetrics() *Metrics {
	metricsOnce.Do(func() {
		metricsInstance = &Metrics{
			proposalsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "chessgpt_proposals_total",
					Help: "Total number of move proposals by outcome",
				},
				[]string{"model", "outcome"},
			),
			proposalDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "chessgpt_proposal_duration_seconds",
					Help:    "Duration of model move requests in seconds",
					Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
				},
				[]string{"model"},
			),
			activeSessions: promauto.NewGauge(
				prometheus.GaugeOpts{
					Name: "chessgpt_active_sessions",
					Help: "Number of live game sessions",
				},
			),
		}
	})
	return metricsInstance
}

func (m *Metrics) observeProposal(model, outcome string, dur time.Duration) {
	m.proposalsTotal.WithLabelValues(model, outcome).Inc()
	m.proposalDuration.WithLabelValues(model).Observe(dur.Seconds())
}

func (m *Metrics) sessionOpened() {
	m.activeSessions.Inc()
}

func (m *Metrics) sessionClosed() {
	m.activeSessions.Dec()
}
