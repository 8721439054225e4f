// Package observability is a process-wide metrics registry with a pull-based
// text exposition and a JSON snapshot. It is created once at startup and
// injected into the instrumentation middleware and the exposition handlers;
// there is no ambient global.
package observability

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

type metricType string

const (
	typeCounter   metricType = "counter"
	typeGauge     metricType = "gauge"
	typeHistogram metricType = "histogram"
)

// Registry holds every registered metric family for the process lifetime.
// Registration happens at startup; mutation happens on every request and is
// safe without caller-side locking.
type Registry struct {
	mu       sync.RWMutex
	families map[string]*family
	order    []string
	start    time.Time
}

type family struct {
	name       string
	help       string
	typ        metricType
	labelNames []string
	buckets    []float64

	mu     sync.Mutex
	series map[string]*series
}

type series struct {
	labelValues []string

	// counter and gauge
	value float64

	// histogram
	bucketCounts []uint64
	sum          float64
	count        uint64
}

func NewRegistry() *Registry {
	return &Registry{
		families: make(map[string]*family),
		start:    time.Now(),
	}
}

// Counter registers (or returns the already-registered) monotonic counter.
// Re-registering the same name with a different shape is a programming
// error and panics, so it fails at startup rather than at request time.
func (r *Registry) Counter(name, help string, labelNames ...string) *Counter {
	return &Counter{fam: r.register(name, help, typeCounter, labelNames, nil)}
}

// Gauge registers (or returns the already-registered) last-set gauge.
func (r *Registry) Gauge(name, help string, labelNames ...string) *Gauge {
	return &Gauge{fam: r.register(name, help, typeGauge, labelNames, nil)}
}

// Histogram registers (or returns the already-registered) histogram with the
// given ascending bucket boundaries.
func (r *Registry) Histogram(name, help string, buckets []float64, labelNames ...string) *Histogram {
	if len(buckets) == 0 {
		panic(fmt.Sprintf("metrics: histogram %q registered without buckets", name))
	}
	for i := 1; i < len(buckets); i++ {
		if buckets[i] <= buckets[i-1] {
			panic(fmt.Sprintf("metrics: histogram %q buckets must be strictly ascending", name))
		}
	}
	return &Histogram{fam: r.register(name, help, typeHistogram, labelNames, buckets)}
}

func (r *Registry) register(name, help string, typ metricType, labelNames []string, buckets []float64) *family {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.families[name]; ok {
		if existing.typ != typ ||
			!equalStrings(existing.labelNames, labelNames) ||
			!equalFloats(existing.buckets, buckets) {
			panic(fmt.Sprintf("metrics: %q re-registered with a different shape", name))
		}
		return existing
	}

	fam := &family{
		name:       name,
		help:       help,
		typ:        typ,
		labelNames: labelNames,
		buckets:    buckets,
		series:     make(map[string]*series),
	}
	r.families[name] = fam
	r.order = append(r.order, name)
	return fam
}

// Counter is a monotonic accumulator keyed by label values.
type Counter struct {
	fam *family
}

func (c *Counter) Inc(labelValues ...string) {
	c.Add(1, labelValues...)
}

func (c *Counter) Add(v float64, labelValues ...string) {
	if v < 0 {
		panic(fmt.Sprintf("metrics: counter %q cannot decrease", c.fam.name))
	}
	s := c.fam.get(labelValues)
	c.fam.mu.Lock()
	s.value += v
	c.fam.mu.Unlock()
}

// Gauge is a last-set scalar keyed by label values.
type Gauge struct {
	fam *family
}

func (g *Gauge) Set(v float64, labelValues ...string) {
	s := g.fam.get(labelValues)
	g.fam.mu.Lock()
	s.value = v
	g.fam.mu.Unlock()
}

// Histogram accumulates observations into cumulative buckets plus a running
// sum and count, keyed by label values.
type Histogram struct {
	fam *family
}

func (h *Histogram) Observe(v float64, labelValues ...string) {
	s := h.fam.get(labelValues)
	h.fam.mu.Lock()
	for i, upper := range h.fam.buckets {
		if v <= upper {
			s.bucketCounts[i]++
		}
	}
	s.sum += v
	s.count++
	h.fam.mu.Unlock()
}

func (f *family) get(labelValues []string) *series {
	if len(labelValues) != len(f.labelNames) {
		panic(fmt.Sprintf("metrics: %q expects %d label values, got %d",
			f.name, len(f.labelNames), len(labelValues)))
	}
	key := strings.Join(labelValues, "\x00")

	f.mu.Lock()
	defer f.mu.Unlock()

	s, ok := f.series[key]
	if !ok {
		s = &series{labelValues: append([]string(nil), labelValues...)}
		if f.typ == typeHistogram {
			s.bucketCounts = make([]uint64, len(f.buckets))
		}
		f.series[key] = s
	}
	return s
}

// sortedSeries returns a stable snapshot of the family's series, ordered by
// label values, so repeated renders are deterministic.
func (f *family) sortedSeries() []*series {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]*series, 0, len(f.series))
	keys := make([]string, 0, len(f.series))
	for k := range f.series {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		src := f.series[k]
		cp := &series{
			labelValues: src.labelValues,
			value:       src.value,
			sum:         src.sum,
			count:       src.count,
		}
		if src.bucketCounts != nil {
			cp.bucketCounts = append([]uint64(nil), src.bucketCounts...)
		}
		out = append(out, cp)
	}
	return out
}

// snapshot returns every family in registration order, followed by the
// process-default families collected at call time.
func (r *Registry) snapshot() []*family {
	r.mu.RLock()
	fams := make([]*family, 0, len(r.order))
	for _, name := range r.order {
		fams = append(fams, r.families[name])
	}
	r.mu.RUnlock()

	return append(fams, r.processFamilies()...)
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func equalFloats(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
