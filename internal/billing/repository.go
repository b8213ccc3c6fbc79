// Package billing reacts to payment provider webhook events and keeps the
// paid-tier flag on user profiles in sync.
package billing

import "context"

// Repository defines the interface for billing-status data access.
type Repository interface {
	// SetProStatus updates the pro flag for the profile with the given
	// provider customer id. Returns the number of rows changed; zero means
	// the customer id is unknown, which callers treat as a no-op.
	SetProStatus(ctx context.Context, customerID string, pro bool) (int64, error)
}
