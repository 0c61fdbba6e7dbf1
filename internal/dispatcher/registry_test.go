package dispatcher

import (
	"slices"
	"testing"

	"github.com/dshills/vecstorm/internal/engine/geom"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestRegistryLookup(t *testing.T) {
	r := NewRegistry(0)
	r.Register(segment(nil), pick())

	if !r.Has("seg") || !r.Has(" Pick ") {
		t.Error("lookup is not case and space insensitive")
	}
	if r.Has("NOPE") {
		t.Error("Has(NOPE) = true")
	}
	if got := r.List(); !slices.Equal(got, []string{"PICK", "SEG"}) {
		t.Errorf("List() = %v", got)
	}
	if got := r.Description("seg"); got != "one segment" {
		t.Errorf("Description() = %q", got)
	}
	if _, ok := r.Get("nope"); ok {
		t.Error("Get(nope) succeeded")
	}
}

func TestRegistryEvictsLeastRecentlyUsed(t *testing.T) {
	r := NewRegistry(2)
	r.Register(rootOnly("A", nil), rootOnly("B", nil), rootOnly("C", nil))

	a1, _ := r.Get("A")
	r.Get("B")
	a2, _ := r.Get("A")
	if a1 != a2 {
		t.Error("cached instance not reused")
	}
	r.Get("C") // evicts B
	if got := r.Cached(); got != 2 {
		t.Errorf("Cached() = %d, want 2", got)
	}
	a3, _ := r.Get("A")
	if a3 != a1 {
		t.Error("recently used A was evicted")
	}

	// re-registering drops the cached instance
	r.Register(rootOnly("A", nil))
	a4, _ := r.Get("A")
	if a4 == a1 {
		t.Error("instance of replaced definition still cached")
	}
}

func TestAsPoint(t *testing.T) {
	p := geom.Pt(1, 2)
	tests := []struct {
		name string
		in   any
		want geom.Point
		ok   bool
	}{
		{"point", p, p, true},
		{"pointer", &p, p, true},
		{"nil pointer", (*geom.Point)(nil), geom.Point{}, false},
		{"array", [2]float64{1, 2}, p, true},
		{"slice", []float64{1, 2}, p, true},
		{"short slice", []float64{1}, geom.Point{}, false},
		{"any slice", []any{1, 2.0}, p, true},
		{"any slice text", []any{"x", 2}, geom.Point{}, false},
		{"string", " 1 , 2 ", p, true},
		{"bad string", "1;2", geom.Point{}, false},
		{"number", 3.0, geom.Point{}, false},
		{"nil", nil, geom.Point{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := AsPoint(tt.in)
			if ok != tt.ok || got != tt.want {
				t.Errorf("AsPoint(%v) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestAsNumber(t *testing.T) {
	tests := []struct {
		in   any
		want float64
		ok   bool
	}{
		{2.5, 2.5, true},
		{float32(1.5), 1.5, true},
		{3, 3, true},
		{int64(4), 4, true},
		{" 7 ", 7, true},
		{"seven", 0, false},
		{geom.Pt(1, 1), 0, false},
	}
	for _, tt := range tests {
		got, ok := AsNumber(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("AsNumber(%v) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func metricValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if matchLabels(m, labels) {
				switch {
				case m.GetCounter() != nil:
					return m.GetCounter().GetValue()
				case m.GetGauge() != nil:
					return m.GetGauge().GetValue()
				case m.GetHistogram() != nil:
					return float64(m.GetHistogram().GetSampleCount())
				}
			}
		}
	}
	return 0
}

func matchLabels(m *dto.Metric, labels map[string]string) bool {
	matched := 0
	for _, lp := range m.GetLabel() {
		if v, ok := labels[lp.GetName()]; ok {
			if v != lp.GetValue() {
				return false
			}
			matched++
		}
	}
	return matched == len(labels)
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	hs := newHarness(t, []Option{WithMetrics(NewMetrics(reg))}, segment(nil), rootOnly("BAD", func(*Context, *struct{}, any) (Outcome, error) {
		return Outcome{}, Invariantf("broken")
	}))

	hs.m.Run("SEG", nil)
	hs.m.Run("", geom.Pt(0, 0))
	hs.m.Run("", geom.Pt(3, 4))
	hs.m.Run("BAD", nil)
	hs.m.Run("NOPE", nil)
	hs.m.Undo()
	hs.m.Undo()

	tests := []struct {
		name   string
		labels map[string]string
		want   float64
	}{
		{"vecstorm_commands_started_total", map[string]string{"command": "SEG"}, 1},
		{"vecstorm_commands_started_total", map[string]string{"command": "BAD"}, 1},
		{"vecstorm_command_errors_total", map[string]string{"command": "BAD", "reason": "invariant"}, 1},
		{"vecstorm_command_errors_total", map[string]string{"command": "NOPE", "reason": "unknown"}, 1},
		{"vecstorm_command_step_duration_seconds", map[string]string{"command": "SEG"}, 3},
		{"vecstorm_history_operations_total", map[string]string{"op": "undo", "result": "ok"}, 1},
		{"vecstorm_history_operations_total", map[string]string{"op": "undo", "result": "boundary"}, 1},
		{"vecstorm_history_applied_records", nil, 0},
	}
	for _, tt := range tests {
		if got := metricValue(t, reg, tt.name, tt.labels); got != tt.want {
			t.Errorf("%s%v = %v, want %v", tt.name, tt.labels, got, tt.want)
		}
	}
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.recordStart("X")
	m.recordError("X", "error")
	m.recordHistory("undo", true, 0)
	m.setHistoryDepth(3)
}
