// Package topup proxies Steam wallet top-ups to the partner API.
package topup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidRequest = errors.New("steam login and a positive amount are required")
	ErrLoginRejected  = errors.New("this account cannot be topped up, check the login or its region")
)

// InsufficientFundsError means the partner balance does not cover the
// amount plus commission.
type InsufficientFundsError struct {
	Required  decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient partner balance: need %s, available %s",
		e.Required.StringFixed(2), e.Available.StringFixed(2))
}

type API interface {
	Balance(ctx context.Context) (decimal.Decimal, error)
	CheckLogin(ctx context.Context, login string) (bool, error)
	CreateOrder(ctx context.Context, login string, amount decimal.Decimal) (string, error)
}

type Order struct {
	ID      string
	Login   string
	Amount  decimal.Decimal
	Charged decimal.Decimal
}

type Service struct {
	api        API
	commission decimal.Decimal
	log        *slog.Logger
}

func NewService(api API, commission decimal.Decimal, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{api: api, commission: commission, log: log}
}

// Charge is what the partner debits for amount: amount * (1 + commission)
// rounded to two places.
func (s *Service) Charge(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(decimal.NewFromInt(1).Add(s.commission)).Round(2)
}

// TopUp checks the balance, then the login, then creates the order. It
// stops at the first failed step.
func (s *Service) TopUp(ctx context.Context, login string, amount decimal.Decimal) (Order, error) {
	login = strings.TrimSpace(login)
	if login == "" || !amount.IsPositive() {
		return Order{}, ErrInvalidRequest
	}
	log := s.log.With("login", login, "amount", amount.StringFixed(2))

	balance, err := s.api.Balance(ctx)
	if err != nil {
		return Order{}, err
	}
	required := s.Charge(amount)
	if balance.LessThan(required) {
		return Order{}, &InsufficientFundsError{Required: required, Available: balance}
	}

	ok, err := s.api.CheckLogin(ctx, login)
	if err != nil {
		return Order{}, err
	}
	if !ok {
		return Order{}, ErrLoginRejected
	}

	id, err := s.api.CreateOrder(ctx, login, amount)
	if err != nil {
		return Order{}, err
	}
	log.Info("topup order created", "order_id", id, "charged", required.StringFixed(2))

	return Order{ID: id, Login: login, Amount: amount.Round(2), Charged: required}, nil
}
