package tracker

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/subwatch/subwatch/internal/domain"
)

func newTestRouter(repo *mockRepository) *chi.Mux {
	svc := newTestService(repo, nil)
	handler := NewHandler(svc)

	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		handler.RegisterRoutes(r)
	})
	return r
}

func doRequest(t *testing.T, router *chi.Mux, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandler_CreateSubscription(t *testing.T) {
	repo := newMockRepository()
	router := newTestRouter(repo)

	rec := doRequest(t, router, http.MethodPost, "/api/v1/subscriptions",
		`{"name":"Spotify","amount":10.99,"payment_method":"MBWay","payment_day":7}`)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Data domain.Subscription `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.NotEmpty(t, resp.Data.ID)
	assert.Equal(t, "Spotify", resp.Data.Name)
	assert.Equal(t, 7, resp.Data.PaymentDay)
	assert.False(t, resp.Data.NextPayment.IsZero())
	require.Len(t, repo.subs, 1)
}

func TestHandler_CreateSubscription_InvalidJSON(t *testing.T) {
	router := newTestRouter(newMockRepository())

	rec := doRequest(t, router, http.MethodPost, "/api/v1/subscriptions", `{not json`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid json")
}

func TestHandler_CreateSubscription_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing name", `{"amount":5,"payment_day":1}`},
		{"zero amount", `{"name":"x","amount":0,"payment_day":1}`},
		{"negative amount", `{"name":"x","amount":-1,"payment_day":1}`},
		{"payment day out of range", `{"name":"x","amount":5,"payment_day":32}`},
		{"payment day missing", `{"name":"x","amount":5}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMockRepository()
			router := newTestRouter(repo)

			rec := doRequest(t, router, http.MethodPost, "/api/v1/subscriptions", tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Empty(t, repo.subs)
		})
	}
}

func TestHandler_ListSubscriptions_Sorted(t *testing.T) {
	repo := newMockRepository()
	router := newTestRouter(repo)

	base := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	repo.subs = []domain.Subscription{
		{ID: "cheap", Amount: 1, CreatedAt: base},
		{ID: "pricey", Amount: 99, CreatedAt: base.Add(time.Hour)},
	}

	rec := doRequest(t, router, http.MethodGet, "/api/v1/subscriptions?sort=amount-highest", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data struct {
			Subscriptions []domain.Subscription `json:"subscriptions"`
			Sort          domain.SortOrder      `json:"sort"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	require.Len(t, resp.Data.Subscriptions, 2)
	assert.Equal(t, "pricey", resp.Data.Subscriptions[0].ID)
	assert.Equal(t, domain.SortHighestAmount, resp.Data.Sort)
}

func TestHandler_ListSubscriptions_UnknownSort(t *testing.T) {
	router := newTestRouter(newMockRepository())

	rec := doRequest(t, router, http.MethodGet, "/api/v1/subscriptions?sort=sideways", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unknown sort order")
}

func TestHandler_GetSummary(t *testing.T) {
	repo := newMockRepository()
	router := newTestRouter(repo)

	repo.subs = []domain.Subscription{
		{ID: "a", Amount: 6},
		{ID: "b", Amount: 12, IsAnnual: true},
	}

	rec := doRequest(t, router, http.MethodGet, "/api/v1/subscriptions/summary", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data Summary `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.InDelta(t, 7, resp.Data.MonthlyTotal, 1e-9)
	assert.Equal(t, 2, resp.Data.Count)
}

func TestHandler_DeleteSubscription(t *testing.T) {
	repo := newMockRepository()
	router := newTestRouter(repo)

	repo.subs = []domain.Subscription{{ID: "gone"}}

	rec := doRequest(t, router, http.MethodDelete, "/api/v1/subscriptions/gone", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, repo.subs)
}

func TestHandler_DeleteSubscription_NotFound(t *testing.T) {
	router := newTestRouter(newMockRepository())

	rec := doRequest(t, router, http.MethodDelete, "/api/v1/subscriptions/nope", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "subscription not found")
}
