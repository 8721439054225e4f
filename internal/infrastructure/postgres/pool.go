package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/Osomudeya/retoucher-demo/internal/domain"
	"github.com/Osomudeya/retoucher-demo/internal/infrastructure/config"
)

// Pool is a bounded connection pool to the PostgreSQL store. It is the only
// shared mutable resource besides the metrics registry; checkout/checkin is
// database/sql's responsibility.
type Pool struct {
	db           *sql.DB
	queryTimeout time.Duration
}

// Open builds the DSN from the config, opens the pool and verifies
// connectivity within the connect timeout.
func Open(cfg *config.Config) (*Pool, error) {
	sslmode := "disable"
	if cfg.DBSSL {
		sslmode = "require"
	}

	dsn := fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s connect_timeout=%d",
		cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.DBUser, cfg.DBPassword,
		sslmode, int(cfg.DBConnectTimeout.Seconds()),
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres pool: %w", err)
	}

	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(cfg.DBMaxOpenConns)
	db.SetConnMaxIdleTime(cfg.DBIdleTimeout)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DBConnectTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	return &Pool{db: db, queryTimeout: cfg.DBQueryTimeout}, nil
}

// NewPool wraps an already-open database handle. Used by tests that own
// their own container lifecycle.
func NewPool(db *sql.DB, queryTimeout time.Duration) *Pool {
	return &Pool{db: db, queryTimeout: queryTimeout}
}

// Ping runs a trivial round-trip query, bounded by the query timeout. It is
// the primitive behind the store-connectivity health probe.
func (p *Pool) Ping(ctx context.Context) error {
	ctx, cancel := p.bound(ctx)
	defer cancel()

	var one int
	if err := p.db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return domain.NewStoreError("ping", err)
	}
	return nil
}

// Close releases every pooled connection.
func (p *Pool) Close() error {
	return p.db.Close()
}

func (p *Pool) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.queryTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, p.queryTimeout)
}
