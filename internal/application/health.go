package application

import (
	"context"
	"runtime"
	"time"

	"github.com/Osomudeya/retoucher-demo/internal/domain"
)

// Pinger is the store-connectivity probe primitive.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthService runs the dependency probes and folds their verdicts. The
// database probe is mandatory: if it fails the overall verdict is ERROR.
// The memory probe is optional and can only degrade, never error.
type HealthService struct {
	pinger       Pinger
	memThreshold uint64
	startTime    time.Time

	// swapped out by tests
	heapSample func() domain.MemoryUsage
}

func NewHealthService(pinger Pinger, memThreshold uint64) *HealthService {
	return &HealthService{
		pinger:       pinger,
		memThreshold: memThreshold,
		startTime:    time.Now(),
		heapSample:   readHeap,
	}
}

func readHeap() domain.MemoryUsage {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return domain.MemoryUsage{HeapUsed: m.HeapAlloc, HeapTotal: m.HeapSys}
}

// Uptime reports how long this process has been serving.
func (s *HealthService) Uptime() time.Duration {
	return time.Since(s.startTime)
}

// Basic runs only the mandatory store-connectivity probe.
func (s *HealthService) Basic(ctx context.Context) domain.AggregateHealth {
	db := s.probeDatabase(ctx)
	return aggregate(db)
}

// Detailed runs every probe.
func (s *HealthService) Detailed(ctx context.Context) domain.AggregateHealth {
	db := s.probeDatabase(ctx)
	mem := s.probeMemory()
	return aggregate(db, mem)
}

// Ready reports whether the process can serve meaningful traffic right now.
// It is the basic probe under a different name: orchestrators gate traffic
// on it.
func (s *HealthService) Ready(ctx context.Context) error {
	return s.pinger.Ping(ctx)
}

// Live never touches a dependency. A briefly unreachable database must not
// get the process restarted.
func (s *HealthService) Live() time.Time {
	return time.Now().UTC()
}

func (s *HealthService) probeDatabase(ctx context.Context) domain.ProbeResult {
	start := time.Now()
	err := s.pinger.Ping(ctx)
	result := domain.ProbeResult{
		Name:    "database",
		Status:  domain.ProbeHealthy,
		Latency: time.Since(start),
	}
	if err != nil {
		result.Status = domain.ProbeUnhealthy
		result.Detail = err.Error()
	}
	return result
}

func (s *HealthService) probeMemory() domain.ProbeResult {
	usage := s.heapSample()
	status := domain.ProbeHealthy
	if usage.HeapUsed >= s.memThreshold {
		status = domain.ProbeDegraded
	}
	return domain.ProbeResult{
		Name:   "memory",
		Status: status,
		Memory: &usage,
	}
}

func aggregate(probes ...domain.ProbeResult) domain.AggregateHealth {
	health := domain.AggregateHealth{
		Overall:   domain.StatusOK,
		Probes:    make(map[string]domain.ProbeResult, len(probes)),
		Timestamp: time.Now().UTC(),
	}
	for _, p := range probes {
		health.Probes[p.Name] = p
		switch {
		case p.Name == "database" && p.Status == domain.ProbeUnhealthy:
			health.Overall = domain.StatusError
		case p.Status == domain.ProbeDegraded && health.Overall == domain.StatusOK:
			health.Overall = domain.StatusDegraded
		}
	}
	return health
}
