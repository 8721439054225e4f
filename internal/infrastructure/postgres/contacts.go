package postgres

import (
	"context"

	"github.com/Osomudeya/retoucher-demo/internal/domain"
)

// ContactStore persists contact-form submissions.
type ContactStore struct {
	pool *Pool
}

func NewContactStore(pool *Pool) *ContactStore {
	return &ContactStore{pool: pool}
}

func (s *ContactStore) Init(ctx context.Context) error {
	ctx, cancel := s.pool.bound(ctx)
	defer cancel()

	_, err := s.pool.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS contacts (
			id SERIAL PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			email VARCHAR(255) NOT NULL,
			project VARCHAR(100) NOT NULL,
			message TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`)
	if err != nil {
		return domain.NewStoreError("init contacts table", err)
	}
	return nil
}

func (s *ContactStore) Save(ctx context.Context, c domain.ContactSubmission) error {
	ctx, cancel := s.pool.bound(ctx)
	defer cancel()

	_, err := s.pool.db.ExecContext(ctx,
		"INSERT INTO contacts (name, email, project, message) VALUES ($1, $2, $3, $4)",
		c.Name, c.Email, c.Project, c.Message)
	if err != nil {
		return domain.NewStoreError("save contact", err)
	}
	return nil
}
