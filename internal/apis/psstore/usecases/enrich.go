package usecases

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"psparser/internal/apis/psstore"
	"psparser/internal/apis/psstore/mapper"
	"psparser/internal/domain/models"
	"psparser/internal/metrics"
)

// DetailEnricher visits product pages of one listing batch concurrently.
type DetailEnricher struct {
	svc   psstore.Service
	limit int
	log   *slog.Logger
	rec   metrics.Recorder
}

func NewDetailEnricher(svc psstore.Service, concurrency int, logger *slog.Logger, rec metrics.Recorder) *DetailEnricher {
	if concurrency <= 0 {
		concurrency = 8
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DetailEnricher{svc: svc, limit: concurrency, log: logger, rec: metrics.OrNop(rec)}
}

// Enrich returns one item per stub, in stub order. A product page that
// cannot be fetched or read leaves its item with listing data only.
// Enrich returns after every task has finished.
func (e *DetailEnricher) Enrich(ctx context.Context, stubs []psstore.Stub, lang string, o mapper.Options) []models.CatalogItem {
	items := make([]models.CatalogItem, len(stubs))

	var g errgroup.Group
	g.SetLimit(e.limit)

	for i, st := range stubs {
		i, st := i, st
		g.Go(func() error {
			d, err := e.svc.GetDetail(ctx, st.Link, lang)
			if err != nil {
				e.log.Warn("detail enrichment failed", "url", st.Link, "err", err)
				d = psstore.Detail{}
			}
			e.rec.RecordEnriched(err == nil)

			items[i] = mapper.ToItem(st, d, o)
			return nil
		})
	}
	_ = g.Wait()

	return items
}
