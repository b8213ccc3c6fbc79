// Package postgres provides the PostgreSQL implementation of the billing repository.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository implements the billing.Repository interface using PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// SetProStatus updates the pro flag for a profile by provider customer id.
func (r *Repository) SetProStatus(ctx context.Context, customerID string, pro bool) (int64, error) {
	query := `
		UPDATE profiles
		SET is_pro = $2, updated_at = now()
		WHERE stripe_customer_id = $1
	`
	tag, err := r.db.Exec(ctx, query, customerID, pro)
	if err != nil {
		return 0, fmt.Errorf("update pro status: %w", err)
	}
	return tag.RowsAffected(), nil
}
