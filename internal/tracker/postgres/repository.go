// Package postgres provides the PostgreSQL implementation of the tracker repository.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/subwatch/subwatch/internal/domain"
	"github.com/subwatch/subwatch/internal/tracker"
)

// Repository implements the tracker.Repository interface using PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Create inserts a new subscription.
func (r *Repository) Create(ctx context.Context, sub *domain.Subscription) error {
	query := `
		INSERT INTO subscriptions (id, name, amount, payment_method, is_annual, payment_day, next_payment, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.Exec(ctx, query,
		sub.ID,
		sub.Name,
		sub.Amount,
		sub.PaymentMethod,
		sub.IsAnnual,
		sub.PaymentDay,
		sub.NextPayment,
		sub.CreatedAt,
		sub.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create subscription: %w", err)
	}
	return nil
}

// GetByID retrieves a subscription by its id.
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Subscription, error) {
	query := `
		SELECT id, name, amount, payment_method, is_annual, payment_day, next_payment, created_at, updated_at
		FROM subscriptions
		WHERE id = $1
	`
	var sub domain.Subscription
	err := r.db.QueryRow(ctx, query, id).Scan(
		&sub.ID,
		&sub.Name,
		&sub.Amount,
		&sub.PaymentMethod,
		&sub.IsAnnual,
		&sub.PaymentDay,
		&sub.NextPayment,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, tracker.ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("get subscription by id: %w", err)
	}

	return &sub, nil
}

// List retrieves all subscriptions in insertion order.
func (r *Repository) List(ctx context.Context) ([]domain.Subscription, error) {
	query := `
		SELECT id, name, amount, payment_method, is_annual, payment_day, next_payment, created_at, updated_at
		FROM subscriptions
		ORDER BY created_at, id
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	defer rows.Close()

	subs := make([]domain.Subscription, 0)
	for rows.Next() {
		var sub domain.Subscription
		err := rows.Scan(
			&sub.ID,
			&sub.Name,
			&sub.Amount,
			&sub.PaymentMethod,
			&sub.IsAnnual,
			&sub.PaymentDay,
			&sub.NextPayment,
			&sub.CreatedAt,
			&sub.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		subs = append(subs, sub)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subscriptions: %w", err)
	}

	return subs, nil
}

// Delete removes a subscription by id. Pending reminders are removed by the
// reminders table's foreign key cascade.
func (r *Repository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM subscriptions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete subscription: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return tracker.ErrSubscriptionNotFound
	}
	return nil
}
