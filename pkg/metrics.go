package cache

// metrics.go is a thin abstraction over Prometheus so linecache works
// with or without metrics. Passing a *prometheus.Registry via
// WithMetrics installs labeled collectors; otherwise a no-op sink is
// used and the hot path pays nothing for metric updates. Mirrors the
// teacher's metrics.go shape, with counters renamed for this engine's
// vocabulary (busy/locked/poisoned replace arena rotations/bytes,
// which have no analogue here).
//
// ┌───────────────────────┬──────┬────────┐
// │ Metric                │ Type │ Labels │
// ├───────────────────────┼──────┼────────┤
// │ hits_total             │ Ctr  │ group  │
// │ misses_total           │ Ctr  │ group  │
// │ evictions_total        │ Ctr  │ group  │
// │ busy_total             │ Ctr  │ group  │
// │ locked_total           │ Ctr  │ group  │
// │ poisoned_total         │ Ctr  │ group  │
// │ occupied_lines         │ Gge  │ group  │
// └───────────────────────┴──────┴────────┘
//
// © 2025 linecache authors. MIT License.

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// metricsSink abstracts the concrete metrics backend away from group
// and Cache; neither knows whether Prometheus is wired in.
type metricsSink interface {
	incHit(group int)
	incMiss(group int)
	incEvict(group int)
	incBusy(group int)
	incLocked(group int)
	incPoisoned(group int)
	setOccupied(group int, n int)
}

type noopMetrics struct{}

func (noopMetrics) incHit(int)           {}
func (noopMetrics) incMiss(int)          {}
func (noopMetrics) incEvict(int)         {}
func (noopMetrics) incBusy(int)          {}
func (noopMetrics) incLocked(int)        {}
func (noopMetrics) incPoisoned(int)      {}
func (noopMetrics) setOccupied(int, int) {}

type promMetrics struct {
	hits      *prometheus.CounterVec
	misses    *prometheus.CounterVec
	evictions *prometheus.CounterVec
	busy      *prometheus.CounterVec
	locked    *prometheus.CounterVec
	poisoned  *prometheus.CounterVec
	occupied  *prometheus.GaugeVec
}

func newPromMetrics(reg *prometheus.Registry) *promMetrics {
	label := []string{"group"}
	pm := &promMetrics{
		hits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "linecache", Name: "hits_total", Help: "Number of Get/GetMut hits.",
		}, label),
		misses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "linecache", Name: "misses_total", Help: "Number of Get/GetMut installs (empty or evict).",
		}, label),
		evictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "linecache", Name: "evictions_total", Help: "Number of LRU evictions.",
		}, label),
		busy: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "linecache", Name: "busy_total", Help: "Number of evictions refused because the target line was in use.",
		}, label),
		locked: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "linecache", Name: "locked_total", Help: "Number of Get/GetMut calls refused by a line's admission Flag.",
		}, label),
		poisoned: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "linecache", Name: "poisoned_total", Help: "Number of times a group was poisoned by a panic under its lock.",
		}, label),
		occupied: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "linecache", Name: "occupied_lines", Help: "Number of non-empty lines in a group.",
		}, label),
	}
	reg.MustRegister(pm.hits, pm.misses, pm.evictions, pm.busy, pm.locked, pm.poisoned, pm.occupied)
	return pm
}

func (m *promMetrics) incHit(group int)      { m.hits.WithLabelValues(strconv.Itoa(group)).Inc() }
func (m *promMetrics) incMiss(group int)     { m.misses.WithLabelValues(strconv.Itoa(group)).Inc() }
func (m *promMetrics) incEvict(group int)    { m.evictions.WithLabelValues(strconv.Itoa(group)).Inc() }
func (m *promMetrics) incBusy(group int)     { m.busy.WithLabelValues(strconv.Itoa(group)).Inc() }
func (m *promMetrics) incLocked(group int)   { m.locked.WithLabelValues(strconv.Itoa(group)).Inc() }
func (m *promMetrics) incPoisoned(group int) { m.poisoned.WithLabelValues(strconv.Itoa(group)).Inc() }
func (m *promMetrics) setOccupied(group int, n int) {
	m.occupied.WithLabelValues(strconv.Itoa(group)).Set(float64(n))
}

// newMetricsSink picks the backend: noop when reg is nil, Prometheus
// otherwise. Caller guarantees reg is non-nil when metrics are wanted.
func newMetricsSink(reg *prometheus.Registry) metricsSink {
	if reg == nil {
		return noopMetrics{}
	}
	return newPromMetrics(reg)
}
