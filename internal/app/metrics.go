package app

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/dshills/vecstorm/internal/engine/spatial"
)

// Metrics tracks event loop and drawing metrics. A nil *Metrics records
// nothing.
type Metrics struct {
	frameDuration prometheus.Histogram
	frames        *prometheus.CounterVec
	droppedFrames prometheus.Counter
	inputs        *prometheus.CounterVec
	entities      prometheus.Gauge
	indexHeight   prometheus.Gauge
	indexNodes    prometheus.Gauge
}

// NewMetrics registers the application metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		frameDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "vecstorm_frame_duration_seconds",
			Help:    "Time spent drawing a frame",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.016, 0.033, 0.1},
		}),
		frames: f.NewCounterVec(prometheus.CounterOpts{
			Name: "vecstorm_frames_total",
			Help: "Frame requests, by whether anything was drawn",
		}, []string{"result"}),
		droppedFrames: f.NewCounter(prometheus.CounterOpts{
			Name: "vecstorm_frame_requests_coalesced_total",
			Help: "Frame requests replaced by a newer one before drawing",
		}),
		inputs: f.NewCounterVec(prometheus.CounterOpts{
			Name: "vecstorm_input_events_total",
			Help: "Backend input events, by type",
		}, []string{"type"}),
		entities: f.NewGauge(prometheus.GaugeOpts{
			Name: "vecstorm_entities",
			Help: "Entities in the drawing",
		}),
		indexHeight: f.NewGauge(prometheus.GaugeOpts{
			Name: "vecstorm_index_height",
			Help: "Height of the spatial index",
		}),
		indexNodes: f.NewGauge(prometheus.GaugeOpts{
			Name: "vecstorm_index_nodes",
			Help: "Nodes in the spatial index",
		}),
	}
}

// RecordFrame records one frame request.
func (m *Metrics) RecordFrame(d time.Duration, drawn bool) {
	if m == nil {
		return
	}
	if !drawn {
		m.frames.WithLabelValues("idle").Inc()
		return
	}
	m.frames.WithLabelValues("drawn").Inc()
	m.frameDuration.Observe(d.Seconds())
}

// RecordDroppedFrames adds n coalesced frame requests.
func (m *Metrics) RecordDroppedFrames(n uint64) {
	if m == nil || n == 0 {
		return
	}
	m.droppedFrames.Add(float64(n))
}

// RecordInput counts one input event.
func (m *Metrics) RecordInput(kind string) {
	if m == nil {
		return
	}
	m.inputs.WithLabelValues(kind).Inc()
}

// UpdateDrawing samples the drawing size and index shape.
func (m *Metrics) UpdateDrawing(entities int, index spatial.Stats) {
	if m == nil {
		return
	}
	m.entities.Set(float64(entities))
	m.indexHeight.Set(float64(index.Height))
	m.indexNodes.Set(float64(index.Nodes))
}

// Timer measures elapsed time.
type Timer struct {
	start time.Time
}

// StartTimer starts a new timer.
func StartTimer() Timer {
	return Timer{start: time.Now()}
}

// Elapsed returns the time since the timer started.
func (t Timer) Elapsed() time.Duration {
	return time.Since(t.start)
}
