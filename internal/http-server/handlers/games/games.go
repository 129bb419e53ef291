package games

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
	Load(ctx context.Context) ([]models.CatalogItem, error)
}

type Options struct {
	Log     *slog.Logger
	Catalog Loader
	Timeout time.Duration
}

// NewGetHandler serves the stored catalog, optionally narrowed by
// ?region= and capped by ?limit=.
func NewGetHandler(opts Options) http.HandlerFunc {
	log := opts.Log
	if log == nil {
		log = slog.Default()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if opts.Catalog == nil {
			log.Error("games handler misconfigured: Catalog is nil")
			respond.WriteInternalError(w)
			return
		}

		limit, hasLimit, err := query.PositiveInt(r, "limit")
		if err != nil {
			respond.WriteBadRequest(w, err.Error())
			return
		}
		region := query.String(r, "region")

		ctx, cancel := context.WithTimeout(r.Context(), opts.Timeout)
		defer cancel()

		items, err := opts.Catalog.Load(ctx)
		if err != nil {
			log.Error("load catalog failed", "err", err)
			respond.WriteInternalError(w)
			return
		}

		out := make([]models.CatalogItem, 0, len(items))
		for _, it := range items {
			if region != "" && !strings.EqualFold(it.Region, region) {
				continue
			}
			out = append(out, it)
			if hasLimit && len(out) == limit {
				break
			}
		}

		respond.WriteJSON(w, http.StatusOK, out)
	}
}
