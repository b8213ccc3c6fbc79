package tracker

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/subwatch/subwatch/internal/domain"
	"github.com/subwatch/subwatch/internal/pkg/httputil"
)

// Handler handles HTTP requests for the tracker module.
type Handler struct {
	service   *Service
	validator *validator.Validate
}

// NewHandler creates a new tracker handler.
func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(),
	}
}

// RegisterRoutes registers all HTTP routes for the tracker module.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/subscriptions", func(r chi.Router) {
		r.Get("/", h.ListSubscriptions)
		r.Post("/", h.CreateSubscription)
		r.Get("/summary", h.GetSummary)
		r.Get("/{id}", h.GetSubscription)
		r.Delete("/{id}", h.DeleteSubscription)
	})
}

// CreateSubscriptionRequest represents the request body for creating a subscription.
type CreateSubscriptionRequest struct {
	Name          string  `json:"name" validate:"required,min=1,max=255"`
	Amount        float64 `json:"amount" validate:"required,gt=0"`
	PaymentMethod string  `json:"payment_method" validate:"max=255"`
	IsAnnual      bool    `json:"is_annual"`
	PaymentDay    int     `json:"payment_day" validate:"required,min=1,max=31"`
}

// ToInput converts the request to a service input.
func (r *CreateSubscriptionRequest) ToInput() CreateSubscriptionInput {
	return CreateSubscriptionInput{
		Name:          r.Name,
		Amount:        r.Amount,
		PaymentMethod: r.PaymentMethod,
		IsAnnual:      r.IsAnnual,
		PaymentDay:    r.PaymentDay,
	}
}

// CreateSubscription handles POST /subscriptions request.
func (h *Handler) CreateSubscription(w http.ResponseWriter, r *http.Request) {
	var req CreateSubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	sub, err := h.service.Create(r.Context(), req.ToInput())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.Success(w, http.StatusCreated, sub)
}

// ListSubscriptions handles GET /subscriptions request.
// The optional sort query parameter selects the ordering; the default is
// newest first.
func (h *Handler) ListSubscriptions(w http.ResponseWriter, r *http.Request) {
	order, err := domain.ParseSortOrder(r.URL.Query().Get("sort"))
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	subs, err := h.service.List(r.Context(), order)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.Success(w, http.StatusOK, map[string]interface{}{
		"subscriptions": subs,
		"sort":          order,
	})
}

// GetSummary handles GET /subscriptions/summary request.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summarize(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.Success(w, http.StatusOK, summary)
}

// GetSubscription handles GET /subscriptions/{id} request.
func (h *Handler) GetSubscription(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	sub, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.Success(w, http.StatusOK, sub)
}

// DeleteSubscription handles DELETE /subscriptions/{id} request.
func (h *Handler) DeleteSubscription(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	httputil.HandleError(r.Context(), w, err, []httputil.ErrorMapping{
		{Error: ErrSubscriptionNotFound, Status: http.StatusNotFound},
		{Error: ErrInvalidName, Status: http.StatusBadRequest},
		{Error: ErrInvalidAmount, Status: http.StatusBadRequest},
		{Error: ErrInvalidPaymentDay, Status: http.StatusBadRequest},
	})
}
