package dispatcher

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics collects command statistics. A nil *Metrics records nothing.
type Metrics struct {
	started      *prometheus.CounterVec
	errors       *prometheus.CounterVec
	stepDuration *prometheus.HistogramVec
	historyOps   *prometheus.CounterVec
	historyDepth prometheus.Gauge
}

// NewMetrics registers the command metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		started: f.NewCounterVec(prometheus.CounterOpts{
			Name: "vecstorm_commands_started_total",
			Help: "Commands started, by name",
		}, []string{"command"}),
		errors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "vecstorm_command_errors_total",
			Help: "Command failures, by name and reason",
		}, []string{"command", "reason"}),
		stepDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "vecstorm_command_step_duration_seconds",
			Help:    "Duration of single command steps",
			Buckets: []float64{0.00001, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
		}, []string{"command"}),
		historyOps: f.NewCounterVec(prometheus.CounterOpts{
			Name: "vecstorm_history_operations_total",
			Help: "Undo and redo requests, by operation and result",
		}, []string{"op", "result"}),
		historyDepth: f.NewGauge(prometheus.GaugeOpts{
			Name: "vecstorm_history_applied_records",
			Help: "Number of history records currently applied",
		}),
	}
}

func (m *Metrics) recordStart(command string) {
	if m == nil {
		return
	}
	m.started.WithLabelValues(command).Inc()
}

func (m *Metrics) recordStep(command string, d time.Duration) {
	if m == nil {
		return
	}
	m.stepDuration.WithLabelValues(command).Observe(d.Seconds())
}

func (m *Metrics) recordError(command, reason string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(command, reason).Inc()
}

func (m *Metrics) recordHistory(op string, ok bool, depth int) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "boundary"
	}
	m.historyOps.WithLabelValues(op, result).Inc()
	m.historyDepth.Set(float64(depth))
}

func (m *Metrics) setHistoryDepth(depth int) {
	if m == nil {
		return
	}
	m.historyDepth.Set(float64(depth))
}
