package topup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

const bodyLimit = 1 << 20

// APIError is a partner API reply with the error flag set or a non-2xx
// status.
type APIError struct {
	Op      string
	Status  int
	Message string
	Body    string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = strings.TrimSpace(e.Body)
	}
	return fmt.Sprintf("topup %s: status=%d message=%s", e.Op, e.Status, msg)
}

// Client talks to the partner API. Every call is a single form POST; order
// creation in particular must never be replayed.
type Client struct {
	Doer      Doer
	BaseURL   string
	APIKey    string
	ServiceID int
}

func NewClient(doer Doer, baseURL, apiKey string, serviceID int) *Client {
	return &Client{
		Doer:      doer,
		BaseURL:   strings.TrimRight(baseURL, "/"),
		APIKey:    apiKey,
		ServiceID: serviceID,
	}
}

type envelope struct {
	Error   any    `json:"error"`
	Message string `json:"message"`
}

func (e envelope) failed() bool {
	switch v := e.Error.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != "" && v != "0" && v != "false"
	case json.Number:
		return v.String() != "0"
	}
	return true
}

func (c *Client) Balance(ctx context.Context) (decimal.Decimal, error) {
	var out struct {
		envelope
		Balance decimal.Decimal `json:"balance"`
	}
	if err := c.post(ctx, "balance", url.Values{}, &out, &out.envelope); err != nil {
		return decimal.Zero, err
	}
	return out.Balance, nil
}

// CheckLogin reports whether the account can receive a top-up.
func (c *Client) CheckLogin(ctx context.Context, login string) (bool, error) {
	var out struct {
		envelope
		Status any `json:"status"`
	}
	form := url.Values{
		"login_or_email": {login},
		"service_id":     {strconv.Itoa(c.ServiceID)},
	}
	if err := c.post(ctx, "check", form, &out, &out.envelope); err != nil {
		return false, err
	}
	return truthy(out.Status), nil
}

// CreateOrder places the order and returns its id. amount is sent rounded
// to two places.
func (c *Client) CreateOrder(ctx context.Context, login string, amount decimal.Decimal) (string, error) {
	var out struct {
		envelope
		ID any `json:"id"`
	}
	form := url.Values{
		"login_or_email": {login},
		"service_id":     {strconv.Itoa(c.ServiceID)},
		"amount":         {amount.Round(2).StringFixed(2)},
	}
	if err := c.post(ctx, "create", form, &out, &out.envelope); err != nil {
		return "", err
	}
	id := idString(out.ID)
	if id == "" {
		return "", &APIError{Op: "create", Status: http.StatusOK, Message: "order id missing"}
	}
	return id, nil
}

func (c *Client) post(ctx context.Context, op string, form url.Values, out any, env *envelope) error {
	if c.BaseURL == "" {
		return fmt.Errorf("BaseURL is empty")
	}
	form.Set("apikey", c.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.BaseURL+"/api/v2/partner/"+op, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.Doer.Do(req)
	if err != nil {
		return fmt.Errorf("topup %s: %w", op, err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, bodyLimit))
	if err != nil {
		return fmt.Errorf("topup %s: read body: %w", op, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Op: op, Status: resp.StatusCode, Body: string(b)}
	}

	dec := json.NewDecoder(strings.NewReader(string(b)))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("topup %s: decode: %w", op, err)
	}
	if env.failed() {
		return &APIError{Op: op, Status: resp.StatusCode, Message: env.Message, Body: string(b)}
	}
	return nil
}

func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t != "" && t != "0" && t != "false"
	case json.Number:
		return t.String() != "0"
	}
	return false
}

func idString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	}
	return ""
}
