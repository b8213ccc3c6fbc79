package domain

import "time"

// Profile holds a user's billing status as maintained by the payment
// provider webhook.
type Profile struct {
	ID               string     `json:"id"`
	Email            string     `json:"email"`
	IsPro            bool       `json:"is_pro"`
	StripeCustomerID *string    `json:"stripe_customer_id,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}
