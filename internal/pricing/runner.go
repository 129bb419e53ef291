package pricing

import (
	"context"
	"log/slog"

	"psparser/internal/client"
	"psparser/internal/domain/models"
	"psparser/internal/extract"
	"psparser/internal/metrics"
	"psparser/internal/normalize"
)

type Fetcher interface {
	Fetch(ctx context.Context, url string, opts ...client.RequestOption) ([]byte, error)
}

type Store interface {
	Save(ctx context.Context, offers []models.PricingOffer) error
}

type Runner struct {
	fetcher   Fetcher
	registry  *Registry
	store     Store
	vocab     normalize.Vocabulary
	userAgent string
	log       *slog.Logger
	rec       metrics.Recorder
}

type RunnerOptions struct {
	Vocab     normalize.Vocabulary
	UserAgent string
	Logger    *slog.Logger
	Metrics   metrics.Recorder
}

func NewRunner(f Fetcher, reg *Registry, store Store, opts RunnerOptions) *Runner {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Vocab.Locale == "" {
		opts.Vocab = normalize.Default
	}
	if reg == nil {
		reg = DefaultRegistry()
	}
	return &Runner{
		fetcher:   f,
		registry:  reg,
		store:     store,
		vocab:     opts.Vocab,
		userAgent: opts.UserAgent,
		log:       opts.Logger,
		rec:       metrics.OrNop(opts.Metrics),
	}
}

// Collect visits every target and merges the offers found. Targets that
// cannot be fetched or read are logged and skipped.
func (r *Runner) Collect(ctx context.Context, targets []Target) ([]models.PricingOffer, error) {
	set := NewOfferSet()

	for _, t := range targets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		log := r.log.With("provider", t.Provider, "region", t.Region)

		adapter, err := r.registry.Get(t.Provider)
		if err != nil {
			log.Error("pricing target skipped", "err", err)
			continue
		}

		b, err := r.fetcher.Fetch(ctx, t.URL, r.headers(t)...)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Warn("pricing page unavailable, skipping", "url", t.URL, "err", err)
			continue
		}

		doc, err := extract.Parse(b, t.URL)
		if err != nil {
			log.Warn("pricing page unreadable, skipping", "url", t.URL, "err", err)
			continue
		}

		offers, err := extract.Run("pricing."+t.Provider, doc, func(d *extract.Document) ([]models.PricingOffer, error) {
			return adapter.Extract(d, t)
		})
		if err != nil {
			log.Warn("pricing extraction failed, skipping", "url", t.URL, "err", err)
			continue
		}

		added := 0
		for _, o := range offers {
			if len(o.Plans) == 0 {
				log.Warn("offer without plans dropped", "service", o.Service, "tier", o.Tier)
				continue
			}
			set.Add(o)
			added++
		}
		r.rec.RecordOffers(t.Provider, added)
		log.Info("pricing target done", "offers", added)
	}

	offers := set.Offers()
	for i := range offers {
		for j := range offers[i].Plans {
			p := &offers[i].Plans[j]
			p.Period = r.vocab.Period(p.Months)
		}
	}
	return offers, nil
}

func (r *Runner) headers(t Target) []client.RequestOption {
	var opts []client.RequestOption
	if r.userAgent != "" {
		opts = append(opts, client.WithHeader("User-Agent", r.userAgent))
	}
	lang := t.Lang
	if lang == "" {
		lang = "en-US,en;q=0.9"
	}
	return append(opts, client.WithHeader("Accept-Language", lang))
}

// Run collects offers and replaces the stored dataset.
func (r *Runner) Run(ctx context.Context, targets []Target) ([]models.PricingOffer, error) {
	offers, err := r.Collect(ctx, targets)
	if err != nil {
		return nil, err
	}
	if err := r.store.Save(ctx, offers); err != nil {
		return offers, err
	}
	return offers, nil
}
