// Package postgres provides a PostgreSQL implementation of the reminders repository.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/subwatch/subwatch/internal/reminders"
)

// Repository implements reminders.Repository using PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL reminders repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Enqueue inserts a new reminder into the queue.
func (r *Repository) Enqueue(ctx context.Context, item *reminders.QueueItem) error {
	payload, err := json.Marshal(item.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	query := `
		INSERT INTO reminders (id, subscription_id, fire_at, payload, status, attempts, max_attempts, next_attempt_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
	`

	_, err = r.db.Exec(ctx, query,
		item.ID,
		item.SubscriptionID,
		item.FireAt,
		payload,
		item.Status,
		item.Attempts,
		item.MaxAttempts,
		item.NextAttemptAt,
	)
	if err != nil {
		return fmt.Errorf("failed to enqueue reminder: %w", err)
	}

	return nil
}

// CancelBySubscription marks all pending reminders of a subscription as cancelled.
func (r *Repository) CancelBySubscription(ctx context.Context, subscriptionID string) (int64, error) {
	query := `
		UPDATE reminders
		SET status = $1, updated_at = now()
		WHERE subscription_id = $2 AND status = $3
	`

	tag, err := r.db.Exec(ctx, query, reminders.StatusCancelled, subscriptionID, reminders.StatusPending)
	if err != nil {
		return 0, fmt.Errorf("failed to cancel reminders: %w", err)
	}

	return tag.RowsAffected(), nil
}

// FetchDue claims up to limit due reminders and marks them processing.
// FOR UPDATE SKIP LOCKED keeps concurrent workers from claiming the same rows.
func (r *Repository) FetchDue(ctx context.Context, limit int) ([]*reminders.QueueItem, error) {
	query := `
		UPDATE reminders
		SET status = $1, updated_at = now()
		WHERE id IN (
			SELECT id FROM reminders
			WHERE status = $2
			  AND fire_at <= now()
			  AND next_attempt_at <= now()
			ORDER BY fire_at
			LIMIT $3
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, subscription_id, fire_at, payload, status, attempts, max_attempts, next_attempt_at, last_error, created_at, updated_at, sent_at
	`

	rows, err := r.db.Query(ctx, query, reminders.StatusProcessing, reminders.StatusPending, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch due reminders: %w", err)
	}
	defer rows.Close()

	var items []*reminders.QueueItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reminders: %w", err)
	}

	return items, nil
}

// MarkAsSent marks a reminder as delivered.
func (r *Repository) MarkAsSent(ctx context.Context, id string) error {
	query := `
		UPDATE reminders
		SET status = $1, sent_at = now(), updated_at = now()
		WHERE id = $2
	`

	_, err := r.db.Exec(ctx, query, reminders.StatusSent, id)
	if err != nil {
		return fmt.Errorf("failed to mark reminder as sent: %w", err)
	}

	return nil
}

// MarkAsFailed marks a reminder as permanently failed.
func (r *Repository) MarkAsFailed(ctx context.Context, id string, cause error) error {
	query := `
		UPDATE reminders
		SET status = $1, attempts = attempts + 1, last_error = $2, updated_at = now()
		WHERE id = $3
	`

	_, err := r.db.Exec(ctx, query, reminders.StatusFailed, cause.Error(), id)
	if err != nil {
		return fmt.Errorf("failed to mark reminder as failed: %w", err)
	}

	return nil
}

// MarkForRetry returns a reminder to the pending state with a delayed next attempt.
func (r *Repository) MarkForRetry(ctx context.Context, id string, cause error, nextAttemptAt time.Time) error {
	query := `
		UPDATE reminders
		SET status = $1, attempts = attempts + 1, last_error = $2, next_attempt_at = $3, updated_at = now()
		WHERE id = $4
	`

	_, err := r.db.Exec(ctx, query, reminders.StatusPending, cause.Error(), nextAttemptAt, id)
	if err != nil {
		return fmt.Errorf("failed to mark reminder for retry: %w", err)
	}

	return nil
}

// GetQueueStats returns queue size per status.
func (r *Repository) GetQueueStats(ctx context.Context) (*reminders.QueueStats, error) {
	query := `
		SELECT status, count(*)
		FROM reminders
		GROUP BY status
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get queue stats: %w", err)
	}
	defer rows.Close()

	stats := &reminders.QueueStats{}
	for rows.Next() {
		var status reminders.Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan queue stats: %w", err)
		}

		switch status {
		case reminders.StatusPending:
			stats.Pending = count
		case reminders.StatusProcessing:
			stats.Processing = count
		case reminders.StatusSent:
			stats.Sent = count
		case reminders.StatusFailed:
			stats.Failed = count
		case reminders.StatusCancelled:
			stats.Cancelled = count
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate queue stats: %w", err)
	}

	return stats, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*reminders.QueueItem, error) {
	var item reminders.QueueItem
	var payload []byte
	var lastError *string

	err := row.Scan(
		&item.ID,
		&item.SubscriptionID,
		&item.FireAt,
		&payload,
		&item.Status,
		&item.Attempts,
		&item.MaxAttempts,
		&item.NextAttemptAt,
		&lastError,
		&item.CreatedAt,
		&item.UpdatedAt,
		&item.SentAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan reminder: %w", err)
	}

	if err := json.Unmarshal(payload, &item.Payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	if lastError != nil {
		item.LastError = *lastError
	}

	return &item, nil
}
