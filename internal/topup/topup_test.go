package topup

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"psparser/internal/logger"
)

type partner struct {
	mu      sync.Mutex
	calls   []string
	forms   map[string]map[string]string
	replies map[string]string
}

func (p *partner) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	op := r.URL.Path[len("/api/v2/partner/"):]

	p.mu.Lock()
	p.calls = append(p.calls, op)
	form := map[string]string{}
	for k := range r.PostForm {
		form[k] = r.PostForm.Get(k)
	}
	p.forms[op] = form
	reply, ok := p.replies[op]
	p.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(reply))
}

func newPartner(t *testing.T, replies map[string]string) (*partner, *Client) {
	t.Helper()
	p := &partner{forms: map[string]map[string]string{}, replies: replies}
	srv := httptest.NewServer(p)
	t.Cleanup(srv.Close)
	return p, NewClient(srv.Client(), srv.URL+"/", "secret", 5955)
}

func TestTopUp_CreatesOrder(t *testing.T) {
	p, c := newPartner(t, map[string]string{
		"balance": `{"error":false,"balance":"1070.00"}`,
		"check":   `{"error":false,"status":true}`,
		"create":  `{"error":false,"id":98765}`,
	})
	svc := NewService(c, decimal.RequireFromString("0.07"), logger.Discard())

	order, err := svc.TopUp(context.Background(), " gaben ", decimal.RequireFromString("1000.004"))
	require.NoError(t, err)

	assert.Equal(t, "98765", order.ID)
	assert.Equal(t, "1070.00", order.Charged.StringFixed(2))
	assert.Equal(t, []string{"balance", "check", "create"}, p.calls)
	assert.Equal(t, map[string]string{
		"apikey":         "secret",
		"login_or_email": "gaben",
		"service_id":     "5955",
		"amount":         "1000.00",
	}, p.forms["create"])
	assert.Equal(t, "secret", p.forms["balance"]["apikey"])
}

func TestTopUp_InsufficientBalance(t *testing.T) {
	p, c := newPartner(t, map[string]string{
		"balance": `{"error":0,"balance":1069.99}`,
	})
	svc := NewService(c, decimal.RequireFromString("0.07"), logger.Discard())

	_, err := svc.TopUp(context.Background(), "gaben", decimal.NewFromInt(1000))

	var ife *InsufficientFundsError
	require.ErrorAs(t, err, &ife)
	assert.Equal(t, "1070.00", ife.Required.StringFixed(2))
	assert.Equal(t, []string{"balance"}, p.calls)
}

func TestTopUp_LoginRejected(t *testing.T) {
	p, c := newPartner(t, map[string]string{
		"balance": `{"error":false,"balance":5000}`,
		"check":   `{"error":false,"status":false}`,
	})
	svc := NewService(c, decimal.RequireFromString("0.07"), logger.Discard())

	_, err := svc.TopUp(context.Background(), "nobody", decimal.NewFromInt(10))
	assert.ErrorIs(t, err, ErrLoginRejected)
	assert.Equal(t, []string{"balance", "check"}, p.calls)
}

func TestTopUp_PartnerErrorFlag(t *testing.T) {
	_, c := newPartner(t, map[string]string{
		"balance": `{"error":true,"message":"invalid api key"}`,
	})
	svc := NewService(c, decimal.Zero, logger.Discard())

	_, err := svc.TopUp(context.Background(), "gaben", decimal.NewFromInt(10))
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "balance", apiErr.Op)
	assert.Equal(t, "invalid api key", apiErr.Message)
}

func TestTopUp_CreateFailureIsNotRetried(t *testing.T) {
	p, c := newPartner(t, map[string]string{
		"balance": `{"error":false,"balance":5000}`,
		"check":   `{"error":false,"status":1}`,
	})
	svc := NewService(c, decimal.Zero, logger.Discard())

	_, err := svc.TopUp(context.Background(), "gaben", decimal.NewFromInt(10))
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, []string{"balance", "check", "create"}, p.calls)
}

func TestTopUp_InvalidRequest(t *testing.T) {
	svc := NewService(&Client{}, decimal.Zero, logger.Discard())

	for _, tc := range []struct {
		login  string
		amount decimal.Decimal
	}{
		{"", decimal.NewFromInt(10)},
		{"gaben", decimal.Zero},
		{"gaben", decimal.NewFromInt(-1)},
	} {
		_, err := svc.TopUp(context.Background(), tc.login, tc.amount)
		assert.True(t, errors.Is(err, ErrInvalidRequest), "login=%q amount=%s", tc.login, tc.amount)
	}
}
