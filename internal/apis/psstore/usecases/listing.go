package usecases

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"psparser/internal/apis/psstore"
	"psparser/internal/apis/psstore/mapper"
	"psparser/internal/domain/models"
	"psparser/internal/metrics"
	"psparser/internal/normalize"
	"psparser/internal/repository"
)

type CatalogStore interface {
	MergeAppend(ctx context.Context, items []models.CatalogItem) (repository.MergeResult, error)
}

// Source is one region listing to walk.
type Source struct {
	Region   string
	URL      string // {page} placeholder
	Lang     string
	Format   normalize.PriceFormat
	MaxPages int
}

type Summary struct {
	Pages       int
	FailedPages int
	Stubs       int
	Free        int
	Added       int
	Skipped     int
}

type ListingCrawler struct {
	svc      psstore.Service
	enricher *DetailEnricher
	store    CatalogStore
	vocab    normalize.Vocabulary
	pacer    *rate.Limiter
	log      *slog.Logger
	rec      metrics.Recorder
}

type CrawlerOptions struct {
	Vocab     normalize.Vocabulary
	PagePause time.Duration
	Logger    *slog.Logger
	Metrics   metrics.Recorder
}

func NewListingCrawler(svc psstore.Service, enricher *DetailEnricher, store CatalogStore, opts CrawlerOptions) *ListingCrawler {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Vocab.Locale == "" {
		opts.Vocab = normalize.Default
	}

	pacer := rate.NewLimiter(rate.Inf, 1)
	if opts.PagePause > 0 {
		pacer = rate.NewLimiter(rate.Every(opts.PagePause), 1)
	}

	return &ListingCrawler{
		svc:      svc,
		enricher: enricher,
		store:    store,
		vocab:    opts.Vocab,
		pacer:    pacer,
		log:      opts.Logger,
		rec:      metrics.OrNop(opts.Metrics),
	}
}

// Run walks every source in order. Only context cancellation stops it
// early; unavailable pages and failed writes are logged and skipped.
func (c *ListingCrawler) Run(ctx context.Context, sources []Source) (Summary, error) {
	var sum Summary
	for _, src := range sources {
		if err := c.crawl(ctx, src, &sum); err != nil {
			return sum, err
		}
	}
	return sum, nil
}

func (c *ListingCrawler) crawl(ctx context.Context, src Source, sum *Summary) error {
	log := c.log.With("region", src.Region)
	opts := mapper.Options{Region: src.Region, Format: src.Format, Vocab: c.vocab}

	maxPages := src.MaxPages
	if maxPages <= 0 {
		maxPages = 3
	}

	for page := 1; page <= maxPages; page++ {
		if err := c.pacer.Wait(ctx); err != nil {
			return err
		}

		stubs, err := c.svc.ListPage(ctx, src.URL, page, src.Lang)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Warn("listing page unavailable, skipping", "page", page, "err", err)
			c.rec.RecordPage(src.Region, metrics.OutcomeError)
			sum.FailedPages++
			continue
		}

		if len(stubs) == 0 {
			log.Info("listing exhausted", "page", page)
			c.rec.RecordPage(src.Region, metrics.OutcomeEmpty)
			break
		}
		c.rec.RecordPage(src.Region, metrics.OutcomeOK)
		sum.Pages++
		sum.Stubs += len(stubs)

		paid := PaidOnly(stubs)
		sum.Free += len(stubs) - len(paid)

		items := c.enricher.Enrich(ctx, paid, src.Lang, opts)
		if err := ctx.Err(); err != nil {
			return err
		}

		res, err := c.store.MergeAppend(ctx, items)
		if err != nil {
			log.Error("catalog merge failed, batch dropped", "page", page, "err", err)
			c.rec.RecordPersistError()
			continue
		}
		c.rec.RecordMerged(res.Added, res.Skipped)
		sum.Added += res.Added
		sum.Skipped += res.Skipped

		log.Info("page merged",
			"page", page,
			"stubs", len(stubs),
			"free", len(stubs)-len(paid),
			"added", res.Added,
			"skipped", res.Skipped,
			"total", res.Total,
		)
	}
	return nil
}

// PaidOnly drops stubs whose listing price is empty or a free sentinel.
func PaidOnly(stubs []psstore.Stub) []psstore.Stub {
	out := make([]psstore.Stub, 0, len(stubs))
	for _, st := range stubs {
		if normalize.IsFree(st.Price.Value) {
			continue
		}
		out = append(out, st)
	}
	return out
}
