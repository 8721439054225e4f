package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Osomudeya/retoucher-demo/internal/domain"
)

// VisitorStore owns the single persisted visitor counter row. Reads and
// writes always target the most recently created row, so a duplicate seed
// row left behind by a concurrent cold start is invisible to callers.
type VisitorStore struct {
	pool *Pool
}

func NewVisitorStore(pool *Pool) *VisitorStore {
	return &VisitorStore{pool: pool}
}

// Init creates the visitors table if absent and seeds it with a single zero
// row. The seed is one statement, so two cold-starting processes cannot
// interleave a check with an insert.
func (s *VisitorStore) Init(ctx context.Context) error {
	ctx, cancel := s.pool.bound(ctx)
	defer cancel()

	_, err := s.pool.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS visitors (
			id SERIAL PRIMARY KEY,
			count BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`)
	if err != nil {
		return domain.NewStoreError("init visitors table", err)
	}

	_, err = s.pool.db.ExecContext(ctx, `
		INSERT INTO visitors (count)
		SELECT 0 WHERE NOT EXISTS (SELECT 1 FROM visitors)`)
	if err != nil {
		return domain.NewStoreError("seed visitors row", err)
	}
	return nil
}

// Count returns the current counter value. A missing row reads as zero
// rather than an error.
func (s *VisitorStore) Count(ctx context.Context) (int64, error) {
	ctx, cancel := s.pool.bound(ctx)
	defer cancel()

	var count int64
	err := s.pool.db.QueryRowContext(ctx,
		"SELECT count FROM visitors ORDER BY id DESC LIMIT 1").Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, domain.NewStoreError("read count", err)
	}
	return count, nil
}

// Increment bumps the counter by exactly one and returns the new value in a
// single round trip. The UPDATE is atomic at the store, so concurrent
// callers each observe a distinct value with no lost updates.
func (s *VisitorStore) Increment(ctx context.Context) (int64, error) {
	ctx, cancel := s.pool.bound(ctx)
	defer cancel()

	var count int64
	err := s.pool.db.QueryRowContext(ctx, `
		UPDATE visitors
		SET count = count + 1, updated_at = CURRENT_TIMESTAMP
		WHERE id = (SELECT id FROM visitors ORDER BY id DESC LIMIT 1)
		RETURNING count`).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, domain.NewStoreError("increment", domain.ErrNoCounterRow)
	}
	if err != nil {
		return 0, domain.NewStoreError("increment", err)
	}
	return count, nil
}

// Stats returns the counter value with its lifecycle timestamps.
func (s *VisitorStore) Stats(ctx context.Context) (domain.VisitorStats, error) {
	ctx, cancel := s.pool.bound(ctx)
	defer cancel()

	var stats domain.VisitorStats
	var created, updated sql.NullTime
	err := s.pool.db.QueryRowContext(ctx, `
		SELECT count, created_at, updated_at
		FROM visitors ORDER BY id DESC LIMIT 1`).
		Scan(&stats.Count, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.VisitorStats{}, nil
	}
	if err != nil {
		return domain.VisitorStats{}, domain.NewStoreError("read stats", err)
	}

	if created.Valid {
		stats.CreatedAt = &created.Time
	}
	if updated.Valid {
		stats.UpdatedAt = &updated.Time
	}
	stats.ActiveDuration = stats.ActiveFor().String()
	return stats, nil
}

// Reset sets the counter back to zero. Authorization is the caller's
// problem; the store only performs the write.
func (s *VisitorStore) Reset(ctx context.Context) error {
	ctx, cancel := s.pool.bound(ctx)
	defer cancel()

	_, err := s.pool.db.ExecContext(ctx, `
		UPDATE visitors
		SET count = 0, updated_at = CURRENT_TIMESTAMP
		WHERE id = (SELECT id FROM visitors ORDER BY id DESC LIMIT 1)`)
	if err != nil {
		return domain.NewStoreError("reset", err)
	}
	return nil
}
