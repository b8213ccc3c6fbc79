// Package domain contains the core entities shared across modules.
package domain

import (
	"fmt"
	"time"
)

// Subscription represents a recurring payment tracked by a user.
type Subscription struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Amount        float64   `json:"amount"`
	PaymentMethod string    `json:"payment_method"`
	IsAnnual      bool      `json:"is_annual"`
	PaymentDay    int       `json:"payment_day"`
	NextPayment   time.Time `json:"next_payment"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// MonthlyAmount returns the subscription's cost normalized to one month.
// Annual subscriptions contribute one twelfth of their amount.
func (s *Subscription) MonthlyAmount() float64 {
	if s.IsAnnual {
		return s.Amount / 12
	}
	return s.Amount
}

// SortOrder selects the ordering of a subscription list view.
type SortOrder string

// Sort orders.
const (
	SortNewestFirst   SortOrder = "date-newest"
	SortOldestFirst   SortOrder = "date-oldest"
	SortHighestAmount SortOrder = "amount-highest"
	SortLowestAmount  SortOrder = "amount-lowest"
)

// IsValid checks if the sort order is one of the known values.
func (o SortOrder) IsValid() bool {
	switch o {
	case SortNewestFirst, SortOldestFirst, SortHighestAmount, SortLowestAmount:
		return true
	}
	return false
}

// ParseSortOrder converts a string into a SortOrder.
// An empty string maps to SortNewestFirst, the default view.
func ParseSortOrder(s string) (SortOrder, error) {
	if s == "" {
		return SortNewestFirst, nil
	}
	order := SortOrder(s)
	if !order.IsValid() {
		return "", fmt.Errorf("unknown sort order %q", s)
	}
	return order, nil
}
