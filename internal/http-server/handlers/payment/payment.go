package payment

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"psparser/internal/http-server/respond"
	"psparser/internal/topup"
)

type TopUpper interface {
	TopUp(ctx context.Context, login string, amount decimal.Decimal) (topup.Order, error)
}

type Options struct {
	Log     *slog.Logger
	TopUp   TopUpper
	Timeout time.Duration
}

type request struct {
	SteamLogin string           `json:"steam_login"`
	Amount     *decimal.Decimal `json:"amount"`
}

const (
	msgCreated     = "Заказ успешно создан"
	msgNotJSON     = "Неверный формат запроса. Ожидается JSON."
	msgRequired    = "Необходимо указать логин Steam и сумму"
	msgUnavailable = "Пополнение временно недоступно"
	msgUpstream    = "Сервис пополнения не отвечает, попробуйте позже"
)

// NewPostHandler accepts {steam_login, amount} and places a wallet top-up.
// Partner rejections come back as 400 with the partner's reason.
func NewPostHandler(opts Options) http.HandlerFunc {
	log := opts.Log
	if log == nil {
		log = slog.Default()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if opts.TopUp == nil {
			respond.Failed(w, http.StatusServiceUnavailable, msgUnavailable)
			return
		}
		if mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type")); err != nil || mt != "application/json" {
			respond.Failed(w, http.StatusBadRequest, msgNotJSON)
			return
		}

		var req request
		if err := json.NewDecoder(io.LimitReader(r.Body, 64<<10)).Decode(&req); err != nil {
			respond.Failed(w, http.StatusBadRequest, msgNotJSON)
			return
		}
		if req.SteamLogin == "" || req.Amount == nil || req.Amount.IsZero() {
			respond.Failed(w, http.StatusBadRequest, msgRequired)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), opts.Timeout)
		defer cancel()

		order, err := opts.TopUp.TopUp(ctx, req.SteamLogin, *req.Amount)
		if err != nil {
			status, msg := classify(err)
			log.Warn("topup failed", "err", err, "status", status)
			respond.Failed(w, status, msg)
			return
		}

		respond.Succeeded(w, order.ID, msgCreated)
	}
}

func classify(err error) (int, string) {
	var (
		ife    *topup.InsufficientFundsError
		apiErr *topup.APIError
	)
	switch {
	case errors.Is(err, topup.ErrInvalidRequest):
		return http.StatusBadRequest, msgRequired
	case errors.Is(err, topup.ErrLoginRejected):
		return http.StatusBadRequest, "Нельзя пополнить этот аккаунт. Возможно, региональные ограничения или ошибка в логине."
	case errors.As(err, &ife):
		return http.StatusBadRequest, "Недостаточно средств для пополнения, попробуйте меньшую сумму"
	case errors.As(err, &apiErr) && apiErr.Message != "":
		return http.StatusBadRequest, "Ошибка: " + apiErr.Message
	default:
		return http.StatusBadGateway, msgUpstream
	}
}
