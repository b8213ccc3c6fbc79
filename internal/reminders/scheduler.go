package reminders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/subwatch/subwatch/internal/domain"
	"github.com/subwatch/subwatch/internal/pkg/ctxlog"
)

// SchedulerConfig contains scheduler configuration.
type SchedulerConfig struct {
	// LeadTime is how long before the charge the reminder fires.
	LeadTime    time.Duration
	MaxAttempts int
}

// DefaultSchedulerConfig returns default scheduler configuration:
// remind three days before the charge.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		LeadTime:    72 * time.Hour,
		MaxAttempts: 3,
	}
}

// Scheduler enqueues payment reminders for subscriptions.
type Scheduler struct {
	repo   Repository
	config SchedulerConfig
	now    func() time.Time
}

// NewScheduler creates a new reminder scheduler.
func NewScheduler(repo Repository, config SchedulerConfig) *Scheduler {
	if config.LeadTime <= 0 {
		config.LeadTime = 72 * time.Hour
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 3
	}
	return &Scheduler{
		repo:   repo,
		config: config,
		now:    time.Now,
	}
}

// Schedule enqueues a reminder firing LeadTime before the subscription's
// next payment. Charges already inside the lead window fire immediately.
func (s *Scheduler) Schedule(ctx context.Context, sub *domain.Subscription) error {
	now := s.now()

	fireAt := sub.NextPayment.Add(-s.config.LeadTime)
	if fireAt.Before(now) {
		fireAt = now
	}

	item := &QueueItem{
		ID:             uuid.NewString(),
		SubscriptionID: sub.ID,
		FireAt:         fireAt,
		Payload: Payload{
			SubscriptionID: sub.ID,
			Name:           sub.Name,
			Amount:         sub.Amount,
			IsAnnual:       sub.IsAnnual,
			NextPayment:    sub.NextPayment,
		},
		Status:        StatusPending,
		MaxAttempts:   s.config.MaxAttempts,
		NextAttemptAt: fireAt,
	}

	if err := s.repo.Enqueue(ctx, item); err != nil {
		return fmt.Errorf("enqueue reminder: %w", err)
	}

	recordReminderScheduled()

	ctxlog.FromContext(ctx).Info("reminder scheduled",
		"subscription_id", sub.ID,
		"fire_at", fireAt,
	)

	return nil
}

// Cancel marks all pending reminders of a subscription as cancelled.
func (s *Scheduler) Cancel(ctx context.Context, subscriptionID string) error {
	cancelled, err := s.repo.CancelBySubscription(ctx, subscriptionID)
	if err != nil {
		return fmt.Errorf("cancel reminders: %w", err)
	}

	if cancelled > 0 {
		ctxlog.FromContext(ctx).Info("reminders cancelled",
			"subscription_id", subscriptionID,
			"count", cancelled,
		)
	}

	return nil
}
