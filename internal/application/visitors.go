package application

import (
	"context"
	"log/slog"

	"github.com/Osomudeya/retoucher-demo/internal/domain"
)

// VisitorStore is the contract the durable store must honor: atomic
// increment-and-return, point read, stats read and reset. The store never
// retries; retries and fallbacks live here.
type VisitorStore interface {
	Count(ctx context.Context) (int64, error)
	Increment(ctx context.Context) (int64, error)
	Stats(ctx context.Context) (domain.VisitorStats, error)
	Reset(ctx context.Context) error
}

// CountGauge receives the counter value after every successful operation so
// the scrape endpoint mirrors the store.
type CountGauge interface {
	Set(v float64, labelValues ...string)
}

type VisitorService struct {
	store VisitorStore
	gauge CountGauge
}

func NewVisitorService(store VisitorStore, gauge CountGauge) *VisitorService {
	return &VisitorService{store: store, gauge: gauge}
}

// Count returns the current counter value. Reads carry no ordering guarantee
// relative to concurrent increments; a momentarily stale value is fine for
// display.
func (s *VisitorService) Count(ctx context.Context) (int64, error) {
	count, err := s.store.Count(ctx)
	if err != nil {
		return 0, err
	}
	s.gauge.Set(float64(count))
	return count, nil
}

// Increment bumps the counter and returns the new value. On store failure it
// walks an ordered fallback chain: report the last readable value, else zero.
// The original increment error is always returned so the handler can mark
// the response as errored.
func (s *VisitorService) Increment(ctx context.Context) (int64, bool, error) {
	count, err := s.store.Increment(ctx)
	if err == nil {
		s.gauge.Set(float64(count))
		slog.Info("visitor count incremented", "count", count)
		return count, true, nil
	}

	slog.Warn("increment failed, falling back to read", "error", err)
	if stale, readErr := s.store.Count(ctx); readErr == nil {
		return stale, false, err
	}
	return 0, false, err
}

func (s *VisitorService) Stats(ctx context.Context) (domain.VisitorStats, error) {
	return s.store.Stats(ctx)
}

// Reset zeroes the counter. The admin-key check happens at the HTTP
// boundary before this is ever called.
func (s *VisitorService) Reset(ctx context.Context) error {
	if err := s.store.Reset(ctx); err != nil {
		return err
	}
	s.gauge.Set(0)
	slog.Info("visitor count reset")
	return nil
}
