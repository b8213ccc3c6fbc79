package billing

import "errors"

var (
	// ErrMissingCustomer indicates an event payload without a customer id.
	ErrMissingCustomer = errors.New("event has no customer id")
)
