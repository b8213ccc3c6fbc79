package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/subwatch/subwatch/internal/domain"
	"github.com/subwatch/subwatch/internal/recurrence"
)

// scheduleTimeout bounds the detached reminder scheduling call.
const scheduleTimeout = 10 * time.Second

// ReminderScheduler schedules and cancels payment reminders.
type ReminderScheduler interface {
	Schedule(ctx context.Context, sub *domain.Subscription) error
	Cancel(ctx context.Context, subscriptionID string) error
}

// Service implements subscription tracking business logic.
type Service struct {
	repo      Repository
	scheduler ReminderScheduler // nil when reminders are disabled
	now       func() time.Time
}

// NewService creates a new tracker service.
func NewService(repo Repository, scheduler ReminderScheduler) *Service {
	return &Service{
		repo:      repo,
		scheduler: scheduler,
		now:       time.Now,
	}
}

// CreateSubscriptionInput holds data for creating a subscription.
type CreateSubscriptionInput struct {
	Name          string
	Amount        float64
	PaymentMethod string
	IsAnnual      bool
	PaymentDay    int
}

// Create validates the input, stamps the next payment date and persists the
// subscription. Scheduling the payment reminder happens in the background;
// its outcome is never consumed here.
func (s *Service) Create(ctx context.Context, input CreateSubscriptionInput) (*domain.Subscription, error) {
	if input.Name == "" {
		return nil, ErrInvalidName
	}
	if input.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if input.PaymentDay < 1 || input.PaymentDay > 31 {
		return nil, ErrInvalidPaymentDay
	}

	now := s.now()
	sub := &domain.Subscription{
		ID:            uuid.NewString(),
		Name:          input.Name,
		Amount:        input.Amount,
		PaymentMethod: input.PaymentMethod,
		IsAnnual:      input.IsAnnual,
		PaymentDay:    input.PaymentDay,
		NextPayment:   recurrence.NextPayment(input.PaymentDay, input.IsAnnual, now),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Create(ctx, sub); err != nil {
		return nil, fmt.Errorf("create subscription: %w", err)
	}

	recordSubscriptionCreated(sub.IsAnnual)

	if s.scheduler != nil {
		// Fire-and-forget: the request must not block on reminder delivery.
		scheduled := *sub
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), scheduleTimeout)
			defer cancel()

			if err := s.scheduler.Schedule(ctx, &scheduled); err != nil {
				slog.Error("failed to schedule reminder",
					"subscription_id", scheduled.ID,
					"error", err,
				)
			}
		}()
	}

	return sub, nil
}

// Get returns a single subscription by id.
func (s *Service) Get(ctx context.Context, id string) (*domain.Subscription, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns all subscriptions ordered by the given sort order.
func (s *Service) List(ctx context.Context, order domain.SortOrder) ([]domain.Subscription, error) {
	subs, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	return SortedView(subs, order), nil
}

// Summary contains aggregate numbers over all subscriptions.
type Summary struct {
	MonthlyTotal float64 `json:"monthly_total"`
	Count        int     `json:"count"`
}

// Summarize computes the monthly-normalized total over all subscriptions.
func (s *Service) Summarize(ctx context.Context) (*Summary, error) {
	subs, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	return &Summary{
		MonthlyTotal: MonthlyTotal(subs),
		Count:        len(subs),
	}, nil
}

// Delete removes a subscription and cancels its pending reminders.
func (s *Service) Delete(ctx context.Context, id string) error {
	if s.scheduler != nil {
		if err := s.scheduler.Cancel(ctx, id); err != nil {
			slog.Error("failed to cancel reminders", "subscription_id", id, "error", err)
		}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	recordSubscriptionDeleted()
	return nil
}
