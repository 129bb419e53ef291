package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"psparser/internal/domain/models"
	"psparser/internal/logger"
	"psparser/internal/topup"
)

type catalogStub []models.CatalogItem

func (c catalogStub) Load(context.Context) ([]models.CatalogItem, error) { return c, nil }

type pricingStub struct {
	offers []models.PricingOffer
	err    error
}

func (p pricingStub) Load(context.Context) ([]models.PricingOffer, error) { return p.offers, p.err }

type topUpFunc func(ctx context.Context, login string, amount decimal.Decimal) (topup.Order, error)

func (f topUpFunc) TopUp(ctx context.Context, login string, amount decimal.Decimal) (topup.Order, error) {
	return f(ctx, login, amount)
}

func newTestServer(t *testing.T, dep Deps) http.Handler {
	t.Helper()
	s := New(logger.Discard())
	s.RegisterRoutes(dep)
	return s.Handler()
}

func do(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestGames_RegionAndLimit(t *testing.T) {
	h := newTestServer(t, Deps{Catalog: catalogStub{
		{Title: "A", Link: "a", Region: "tr"},
		{Title: "B", Link: "b", Region: "in"},
		{Title: "C", Link: "c", Region: "tr"},
		{Title: "D", Link: "d", Region: "tr"},
	}})

	rec := do(h, http.MethodGet, "/games?region=TR&limit=2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	var items []models.CatalogItem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Len(t, items, 2)
	assert.Equal(t, "A", items[0].Title)
	assert.Equal(t, "C", items[1].Title)

	rec = do(h, http.MethodGet, "/games?limit=zero", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(h, http.MethodGet, "/games?limit=0", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGames_EmptyCatalogIsEmptyArray(t *testing.T) {
	h := newTestServer(t, Deps{Catalog: catalogStub{}})
	rec := do(h, http.MethodGet, "/games", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestSubscriptions(t *testing.T) {
	h := newTestServer(t, Deps{Pricing: pricingStub{offers: []models.PricingOffer{
		{Service: "EA Play", Region: "TR", Plans: []models.PricingPlan{{Period: "1 месяц", Price: "179,00 TL", Months: 1}}},
	}}})
	rec := do(h, http.MethodGet, "/subscriptions", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"service":"EA Play","region":"TR","tier":"","image":"","plans":[{"period":"1 месяц","price":"179,00 TL"}]}]`, rec.Body.String())

	h = newTestServer(t, Deps{Pricing: pricingStub{err: errors.New("disk")}})
	rec = do(h, http.MethodGet, "/subscriptions", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestProcessPayment(t *testing.T) {
	var gotLogin string
	var gotAmount decimal.Decimal
	ok := topUpFunc(func(_ context.Context, login string, amount decimal.Decimal) (topup.Order, error) {
		gotLogin, gotAmount = login, amount
		return topup.Order{ID: "42"}, nil
	})

	h := newTestServer(t, Deps{TopUp: ok})
	rec := do(h, http.MethodPost, "/process_payment", `{"steam_login":"gaben","amount":"150.50"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"order_id":"42","message":"Заказ успешно создан"}`, rec.Body.String())
	assert.Equal(t, "gaben", gotLogin)
	assert.Equal(t, "150.5", gotAmount.String())

	rec = do(h, http.MethodPost, "/process_payment", `{"steam_login":"gaben"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":false`)

	req := httptest.NewRequest(http.MethodPost, "/process_payment", strings.NewReader("steam_login=x"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestProcessPayment_ErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{topup.ErrLoginRejected, http.StatusBadRequest},
		{&topup.InsufficientFundsError{}, http.StatusBadRequest},
		{&topup.APIError{Op: "create", Message: "limit exceeded"}, http.StatusBadRequest},
		{errors.New("dial tcp: timeout"), http.StatusBadGateway},
	}
	for _, tc := range cases {
		h := newTestServer(t, Deps{TopUp: topUpFunc(func(context.Context, string, decimal.Decimal) (topup.Order, error) {
			return topup.Order{}, tc.err
		})})
		rec := do(h, http.MethodPost, "/process_payment", `{"steam_login":"gaben","amount":100}`)
		assert.Equal(t, tc.status, rec.Code, tc.err.Error())

		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, false, body["success"])
		assert.NotEmpty(t, body["error"])
	}
}

func TestProcessPayment_NotConfigured(t *testing.T) {
	h := newTestServer(t, Deps{})
	rec := do(h, http.MethodPost, "/process_payment", `{"steam_login":"gaben","amount":100}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHealthzCORSAndRouting(t *testing.T) {
	h := newTestServer(t, Deps{CORSOrigin: "https://shop.example"})

	rec := do(h, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://shop.example", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = do(h, http.MethodOptions, "/process_payment", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(h, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(h, http.MethodDelete, "/healthz", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRequestIDIsPreserved(t *testing.T) {
	h := newTestServer(t, Deps{})
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-Id", "abc")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc", rec.Header().Get("X-Request-Id"))
}
