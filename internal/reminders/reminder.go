// Package reminders schedules and delivers upcoming-payment reminders.
package reminders

import "time"

// Status represents the state of a queued reminder.
type Status string

// Reminder statuses.
const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusSent       Status = "sent"
	StatusFailed     Status = "failed"
	StatusCancelled  Status = "cancelled"
)

// Payload contains the data needed to render a reminder message.
type Payload struct {
	SubscriptionID string    `json:"subscription_id"`
	Name           string    `json:"name"`
	Amount         float64   `json:"amount"`
	IsAnnual       bool      `json:"is_annual"`
	NextPayment    time.Time `json:"next_payment"`
}

// QueueItem represents a reminder in the durable queue.
type QueueItem struct {
	ID             string
	SubscriptionID string
	FireAt         time.Time
	Payload        Payload
	Status         Status
	Attempts       int
	MaxAttempts    int
	NextAttemptAt  time.Time
	LastError      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	SentAt         *time.Time
}
