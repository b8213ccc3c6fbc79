package billing

import (
	"context"
	"fmt"

	"github.com/subwatch/subwatch/internal/pkg/ctxlog"
)

// Event types that change a profile's pro flag. Everything else is
// acknowledged without any state change.
const (
	EventCheckoutCompleted   = "checkout.session.completed"
	EventSubscriptionDeleted = "customer.subscription.deleted"
)

// Service maps provider webhook events to profile updates.
type Service struct {
	repo Repository
}

// NewService creates a new billing service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// ProcessEvent applies the state change for a verified webhook event.
// Returns whether the event type was handled. Re-applying the same event is
// safe: the update is a single idempotent field write.
func (s *Service) ProcessEvent(ctx context.Context, eventType, customerID string) (bool, error) {
	var pro bool
	switch eventType {
	case EventCheckoutCompleted:
		pro = true
	case EventSubscriptionDeleted:
		pro = false
	default:
		return false, nil
	}

	if customerID == "" {
		return true, ErrMissingCustomer
	}

	rows, err := s.repo.SetProStatus(ctx, customerID, pro)
	if err != nil {
		return true, fmt.Errorf("set pro status: %w", err)
	}

	if rows == 0 {
		// Unknown customer id: nothing to update, acknowledged anyway.
		ctxlog.FromContext(ctx).Warn("webhook event for unknown customer",
			"event_type", eventType,
			"customer_id", customerID,
		)
		return true, nil
	}

	ctxlog.FromContext(ctx).Info("profile pro status updated",
		"event_type", eventType,
		"customer_id", customerID,
		"pro", pro,
	)

	return true, nil
}
