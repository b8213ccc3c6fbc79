package billing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testWebhookSecret = "whsec_test_secret"

func newTestRouter(repo *mockRepository) *chi.Mux {
	handler := NewHandler(NewService(repo), testWebhookSecret)

	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		handler.RegisterRoutes(r)
	})
	return r
}

// signPayload builds a Stripe-Signature header for the given payload using
// the provider's v1 scheme: HMAC-SHA256 over "<timestamp>.<payload>".
func signPayload(payload, secret string) string {
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func eventPayload(eventType, customerID string) string {
	return fmt.Sprintf(`{
		"id": "evt_test_1",
		"object": "event",
		"api_version": "2024-06-20",
		"type": %q,
		"data": {"object": {"customer": %q}}
	}`, eventType, customerID)
}

func postWebhook(router *chi.Mux, payload, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/billing", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set("Stripe-Signature", signature)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandler_Webhook_CheckoutCompleted(t *testing.T) {
	repo := &mockRepository{rows: 1}
	router := newTestRouter(repo)

	payload := eventPayload("checkout.session.completed", "cus_abc")
	rec := postWebhook(router, payload, signPayload(payload, testWebhookSecret))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"received": true}`, rec.Body.String())

	require.Len(t, repo.calls, 1)
	assert.Equal(t, proCall{customerID: "cus_abc", pro: true}, repo.calls[0])
}

func TestHandler_Webhook_SubscriptionDeleted(t *testing.T) {
	repo := &mockRepository{rows: 1}
	router := newTestRouter(repo)

	payload := eventPayload("customer.subscription.deleted", "cus_abc")
	rec := postWebhook(router, payload, signPayload(payload, testWebhookSecret))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, repo.calls, 1)
	assert.Equal(t, proCall{customerID: "cus_abc", pro: false}, repo.calls[0])
}

func TestHandler_Webhook_MissingSignature(t *testing.T) {
	repo := &mockRepository{rows: 1}
	router := newTestRouter(repo)

	rec := postWebhook(router, eventPayload("checkout.session.completed", "cus_abc"), "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing signature")
	assert.Empty(t, repo.calls, "no state change on rejected request")
}

func TestHandler_Webhook_InvalidSignature(t *testing.T) {
	repo := &mockRepository{rows: 1}
	router := newTestRouter(repo)

	payload := eventPayload("checkout.session.completed", "cus_abc")
	rec := postWebhook(router, payload, signPayload(payload, "whsec_wrong_secret"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid signature")
	assert.Empty(t, repo.calls)
}

func TestHandler_Webhook_TamperedPayload(t *testing.T) {
	repo := &mockRepository{rows: 1}
	router := newTestRouter(repo)

	payload := eventPayload("checkout.session.completed", "cus_abc")
	signature := signPayload(payload, testWebhookSecret)
	tampered := strings.Replace(payload, "cus_abc", "cus_evil", 1)

	rec := postWebhook(router, tampered, signature)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, repo.calls)
}

func TestHandler_Webhook_IgnoresUnknownEventTypes(t *testing.T) {
	repo := &mockRepository{rows: 1}
	router := newTestRouter(repo)

	payload := eventPayload("invoice.payment_succeeded", "cus_abc")
	rec := postWebhook(router, payload, signPayload(payload, testWebhookSecret))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"received": true}`, rec.Body.String())
	assert.Empty(t, repo.calls)
}

func TestHandler_Webhook_ProcessingErrorReturns400(t *testing.T) {
	repo := &mockRepository{rows: 1}
	router := newTestRouter(repo)

	// Verified event that cannot be applied: no customer id in the payload.
	payload := `{
		"id": "evt_test_2",
		"object": "event",
		"api_version": "2024-06-20",
		"type": "checkout.session.completed",
		"data": {"object": {}}
	}`
	rec := postWebhook(router, payload, signPayload(payload, testWebhookSecret))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "no customer id")
}
