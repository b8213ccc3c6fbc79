package tracker

import "errors"

// Repository errors.
var (
	ErrSubscriptionNotFound = errors.New("subscription not found")
)

// Validation errors. The HTTP layer validates request bodies before they
// reach the service; these guard the service against unvalidated callers.
var (
	ErrInvalidName       = errors.New("subscription name must not be empty")
	ErrInvalidAmount     = errors.New("subscription amount must be positive")
	ErrInvalidPaymentDay = errors.New("payment day must be between 1 and 31")
)
