// Package tracker provides subscription tracking: creation, totals,
// ordered list views and deletion.
package tracker

import (
	"context"

	"github.com/subwatch/subwatch/internal/domain"
)

// Repository defines the interface for subscription data access.
type Repository interface {
	Create(ctx context.Context, sub *domain.Subscription) error
	GetByID(ctx context.Context, id string) (*domain.Subscription, error)
	// List returns all subscriptions in insertion order (created_at, id),
	// so stable sorts over the result keep insertion order for equal keys.
	List(ctx context.Context) ([]domain.Subscription, error)
	Delete(ctx context.Context, id string) error
}
