package application

import (
	"context"
	"errors"
	"testing"

	"github.com/Osomudeya/retoucher-demo/internal/domain"
)

type fakePinger struct {
	err error
}

func (f *fakePinger) Ping(ctx context.Context) error {
	return f.err
}

const testThreshold = 500 * 1024 * 1024

func fixedHeap(used uint64) func() domain.MemoryUsage {
	return func() domain.MemoryUsage {
		return domain.MemoryUsage{HeapUsed: used, HeapTotal: used * 2}
	}
}

func TestBasicHealthy(t *testing.T) {
	svc := NewHealthService(&fakePinger{}, testThreshold)

	health := svc.Basic(context.Background())
	if health.Overall != domain.StatusOK {
		t.Errorf("expected OK, got %s", health.Overall)
	}
	db, ok := health.DatabaseProbe()
	if !ok || db.Status != domain.ProbeHealthy {
		t.Errorf("expected healthy database probe, got %+v", db)
	}
}

func TestBasicStoreDown(t *testing.T) {
	svc := NewHealthService(&fakePinger{err: errors.New("connection refused")}, testThreshold)

	health := svc.Basic(context.Background())
	if health.Overall != domain.StatusError {
		t.Errorf("expected ERROR, got %s", health.Overall)
	}
	db, _ := health.DatabaseProbe()
	if db.Status != domain.ProbeUnhealthy || db.Detail == "" {
		t.Errorf("expected unhealthy probe with detail, got %+v", db)
	}
}

func TestDetailedAggregation(t *testing.T) {
	tests := []struct {
		name     string
		pingErr  error
		heapUsed uint64
		want     domain.OverallStatus
	}{
		{"all healthy", nil, 100 * 1024 * 1024, domain.StatusOK},
		{"memory at threshold", nil, testThreshold, domain.StatusDegraded},
		{"memory above threshold", nil, testThreshold + 1, domain.StatusDegraded},
		{"store down", errors.New("down"), 100 * 1024 * 1024, domain.StatusError},
		{"store down wins over memory", errors.New("down"), testThreshold + 1, domain.StatusError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewHealthService(&fakePinger{err: tt.pingErr}, testThreshold)
			svc.heapSample = fixedHeap(tt.heapUsed)

			health := svc.Detailed(context.Background())
			if health.Overall != tt.want {
				t.Errorf("expected %s, got %s", tt.want, health.Overall)
			}
			if len(health.Probes) != 2 {
				t.Errorf("expected 2 probes, got %d", len(health.Probes))
			}
		})
	}
}

func TestMemoryProbeCarriesUsage(t *testing.T) {
	svc := NewHealthService(&fakePinger{}, testThreshold)
	svc.heapSample = fixedHeap(12 * 1024 * 1024)

	health := svc.Detailed(context.Background())
	mem, ok := health.MemoryProbe()
	if !ok || mem.Memory == nil {
		t.Fatalf("expected memory probe with usage, got %+v", mem)
	}
	if mem.Memory.HeapUsedMB() != "12MB" {
		t.Errorf("expected 12MB, got %s", mem.Memory.HeapUsedMB())
	}
}

func TestReadyPassesThroughPing(t *testing.T) {
	down := errors.New("down")
	if err := NewHealthService(&fakePinger{err: down}, testThreshold).Ready(context.Background()); !errors.Is(err, down) {
		t.Errorf("expected ping error, got %v", err)
	}
	if err := NewHealthService(&fakePinger{}, testThreshold).Ready(context.Background()); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
}

func TestLiveIgnoresDependencies(t *testing.T) {
	svc := NewHealthService(&fakePinger{err: errors.New("completely unreachable")}, testThreshold)
	if svc.Live().IsZero() {
		t.Error("expected a timestamp from Live")
	}
}
