//go:build integration

package integration

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/subwatch/subwatch/internal/testutil"
)

type subscriptionData struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Amount        float64 `json:"amount"`
	PaymentMethod string  `json:"payment_method"`
	IsAnnual      bool    `json:"is_annual"`
	PaymentDay    int     `json:"payment_day"`
	NextPayment   string  `json:"next_payment"`
}

// createTestSubscription creates a subscription and registers cleanup.
func createTestSubscription(t *testing.T, name string, amount float64, paymentDay int, annual bool) subscriptionData {
	t.Helper()

	resp, err := testClient.POST("/api/v1/subscriptions", map[string]interface{}{
		"name":           name,
		"amount":         amount,
		"payment_method": "Visa",
		"is_annual":      annual,
		"payment_day":    paymentDay,
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var result struct {
		Data subscriptionData `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &result)
	require.NotEmpty(t, result.Data.ID)

	t.Cleanup(func() {
		resp, err := testClient.DELETE("/api/v1/subscriptions/" + result.Data.ID)
		if err == nil {
			_ = resp.Body.Close()
		}
	})

	return result.Data
}
