package billing

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/stripe/stripe-go/v79/webhook"
	"github.com/subwatch/subwatch/internal/pkg/ctxlog"
	"github.com/subwatch/subwatch/internal/pkg/httputil"
)

// maxBodyBytes bounds webhook request bodies; Stripe events are small.
const maxBodyBytes = 64 * 1024

// Handler handles the payment provider webhook endpoint.
type Handler struct {
	service       *Service
	webhookSecret string
}

// NewHandler creates a new billing webhook handler.
func NewHandler(service *Service, webhookSecret string) *Handler {
	return &Handler{
		service:       service,
		webhookSecret: webhookSecret,
	}
}

// RegisterRoutes registers the webhook route.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/webhooks/billing", h.HandleWebhook)
}

// HandleWebhook handles POST /webhooks/billing.
//
// The request body must carry a valid Stripe-Signature header; anything else
// is rejected with 400 before any state is touched. Event types other than
// the two that toggle the pro flag are acknowledged and ignored. Each request
// is handled at most once with no retry logic on our side: re-delivery of the
// same event re-applies an idempotent single-field write.
func (h *Handler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	logger := ctxlog.FromContext(r.Context())

	signature := r.Header.Get("Stripe-Signature")
	if signature == "" {
		recordWebhookEvent("unknown", outcomeRejected)
		httputil.Error(w, http.StatusBadRequest, "missing signature")
		return
	}

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		recordWebhookEvent("unknown", outcomeRejected)
		httputil.Error(w, http.StatusBadRequest, "read body: "+err.Error())
		return
	}

	event, err := webhook.ConstructEvent(payload, signature, h.webhookSecret)
	if err != nil {
		logger.Warn("webhook signature verification failed", "error", err)
		recordWebhookEvent("unknown", outcomeRejected)
		httputil.Error(w, http.StatusBadRequest, "invalid signature")
		return
	}

	eventType := string(event.Type)
	customerID, _ := event.Data.Object["customer"].(string)

	handled, err := h.service.ProcessEvent(r.Context(), eventType, customerID)
	if err != nil {
		logger.Error("webhook processing failed",
			"event_id", event.ID,
			"event_type", eventType,
			"error", err,
		)
		recordWebhookEvent(eventType, outcomeError)
		httputil.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	if handled {
		recordWebhookEvent(eventType, outcomeProcessed)
	} else {
		logger.Debug("ignoring webhook event", "event_type", eventType)
		recordWebhookEvent(eventType, outcomeIgnored)
	}

	httputil.JSON(w, http.StatusOK, map[string]bool{"received": true})
}
