package domain

import (
	"fmt"
	"time"
)

// ProbeStatus is the verdict of a single dependency probe.
type ProbeStatus string

const (
	ProbeHealthy   ProbeStatus = "healthy"
	ProbeDegraded  ProbeStatus = "degraded"
	ProbeUnhealthy ProbeStatus = "unhealthy"
)

// OverallStatus folds individual probe verdicts into one value for
// orchestrators and dashboards.
type OverallStatus string

const (
	StatusOK       OverallStatus = "OK"
	StatusDegraded OverallStatus = "DEGRADED"
	StatusError    OverallStatus = "ERROR"
)

// ProbeResult is the outcome of one probe invocation. It is never persisted.
type ProbeResult struct {
	Name    string
	Status  ProbeStatus
	Detail  string
	Latency time.Duration
	Memory  *MemoryUsage
}

// MemoryUsage is the heap sample behind the memory-pressure probe.
type MemoryUsage struct {
	HeapUsed  uint64
	HeapTotal uint64
}

// HeapUsedMB renders heap usage the way dashboards expect it, e.g. "12MB".
func (m MemoryUsage) HeapUsedMB() string {
	return fmt.Sprintf("%dMB", m.HeapUsed/1024/1024)
}

func (m MemoryUsage) HeapTotalMB() string {
	return fmt.Sprintf("%dMB", m.HeapTotal/1024/1024)
}

// AggregateHealth is the folded view over a set of probes at one instant.
type AggregateHealth struct {
	Overall   OverallStatus
	Probes    map[string]ProbeResult
	Timestamp time.Time
}

// DatabaseProbe returns the mandatory store-connectivity probe result, if it ran.
func (h AggregateHealth) DatabaseProbe() (ProbeResult, bool) {
	p, ok := h.Probes["database"]
	return p, ok
}

// MemoryProbe returns the optional memory-pressure probe result, if it ran.
func (h AggregateHealth) MemoryProbe() (ProbeResult, bool) {
	p, ok := h.Probes["memory"]
	return p, ok
}
