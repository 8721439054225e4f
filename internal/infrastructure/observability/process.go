package observability

import (
	"runtime"
	"time"
)

// processFamilies collects the fixed set of process-level defaults. They are
// sampled at render time, not accumulated, so each scrape sees the current
// values.
func (r *Registry) processFamilies() []*family {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return []*family{
		singleValue("process_uptime_seconds", "Process uptime in seconds.",
			time.Since(r.start).Seconds()),
		singleValue("go_goroutines", "Number of goroutines that currently exist.",
			float64(runtime.NumGoroutine())),
		singleValue("go_memstats_heap_alloc_bytes", "Heap bytes allocated and in use.",
			float64(m.HeapAlloc)),
		singleValue("go_memstats_heap_sys_bytes", "Heap bytes obtained from the OS.",
			float64(m.HeapSys)),
		singleValue("go_gc_cpu_fraction", "Fraction of CPU time used by the garbage collector.",
			m.GCCPUFraction),
	}
}

func singleValue(name, help string, v float64) *family {
	return &family{
		name:   name,
		help:   help,
		typ:    typeGauge,
		series: map[string]*series{"": {value: v}},
	}
}
