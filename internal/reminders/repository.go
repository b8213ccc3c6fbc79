package reminders

import (
	"context"
	"time"
)

// Repository defines the interface for reminder queue data access.
type Repository interface {
	Enqueue(ctx context.Context, item *QueueItem) error

	// CancelBySubscription marks all pending reminders of a subscription as
	// cancelled. Returns the number of items cancelled.
	CancelBySubscription(ctx context.Context, subscriptionID string) (int64, error)

	// FetchDue claims up to limit due reminders (pending, fire_at and
	// next_attempt_at in the past) and marks them processing.
	FetchDue(ctx context.Context, limit int) ([]*QueueItem, error)

	MarkAsSent(ctx context.Context, id string) error
	MarkAsFailed(ctx context.Context, id string, cause error) error
	MarkForRetry(ctx context.Context, id string, cause error, nextAttemptAt time.Time) error

	GetQueueStats(ctx context.Context) (*QueueStats, error)
}

// QueueStats contains queue size per status.
type QueueStats struct {
	Pending    int
	Processing int
	Sent       int
	Failed     int
	Cancelled  int
}
