package subscriptions

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"psparser/internal/domain/models"
	"psparser/internal/http-server/query"
	"psparser/internal/http-server/respond"
)

type Loader interface {
	Load(ctx context.Context) ([]models.PricingOffer, error)
}

type Options struct {
	Log     *slog.Logger
	Pricing Loader
	Timeout time.Duration
}

func NewGetHandler(opts Options) http.HandlerFunc {
	log := opts.Log
	if log == nil {
		log = slog.Default()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if opts.Pricing == nil {
			log.Error("subscriptions handler misconfigured: Pricing is nil")
			respond.WriteInternalError(w)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), opts.Timeout)
		defer cancel()

		offers, err := opts.Pricing.Load(ctx)
		if err != nil {
			log.Error("load pricing failed", "err", err)
			respond.WriteInternalError(w)
			return
		}

		region := query.String(r, "region")
		out := make([]models.PricingOffer, 0, len(offers))
		for _, o := range offers {
			if region == "" || strings.EqualFold(o.Region, region) {
				out = append(out, o)
			}
		}

		respond.WriteJSON(w, http.StatusOK, out)
	}
}
