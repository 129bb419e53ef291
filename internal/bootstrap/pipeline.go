package bootstrap

import (
	"log/slog"
	"strings"
	"time"

	"psparser/internal/apis/psstore"
	"psparser/internal/apis/psstore/usecases"
	"psparser/internal/client"
	"psparser/internal/config"
	"psparser/internal/metrics"
	"psparser/internal/normalize"
	"psparser/internal/pricing"
)

// Sources maps configured storefronts, optionally narrowed to regions.
func Sources(profile *config.Config, regions ...string) []usecases.Source {
	want := map[string]bool{}
	for _, r := range regions {
		if r = strings.ToLower(strings.TrimSpace(r)); r != "" {
			want[r] = true
		}
	}

	out := make([]usecases.Source, 0, len(profile.Sources))
	for _, s := range profile.Sources {
		if len(want) > 0 && !want[s.Region] {
			continue
		}
		out = append(out, usecases.Source{
			Region:   s.Region,
			URL:      s.URL,
			Lang:     s.AcceptLanguage,
			Format:   normalize.PriceFormat(s.PriceFormat),
			MaxPages: s.MaxPages,
		})
	}
	return out
}

func PricingTargets(profile *config.Config) []pricing.Target {
	out := make([]pricing.Target, 0, len(profile.Pricing))
	for _, t := range profile.Pricing {
		out = append(out, pricing.Target{
			Provider: t.Provider,
			Region:   t.Region,
			URL:      t.URL,
			Format:   normalize.PriceFormat(t.PriceFormat),
			Tier:     t.Tier,
			TierID:   t.TierID,
			Image:    t.Image,
			Months:   t.Months,
		})
	}
	return out
}

// NewCatalogCrawler wires the listing crawler and its detail enricher.
// profile must already pass ValidateCatalog.
func NewCatalogCrawler(profile *config.Config, f *client.Fetcher, store usecases.CatalogStore, log *slog.Logger, rec metrics.Recorder) *usecases.ListingCrawler {
	vocab, _ := normalize.VocabularyFor(profile.Output.Locale)
	svc := psstore.New(f, profile.HTTP.UserAgent, log)
	enricher := usecases.NewDetailEnricher(svc, profile.Crawl.EnrichConcurrency, log, rec)

	return usecases.NewListingCrawler(svc, enricher, store, usecases.CrawlerOptions{
		Vocab:     vocab,
		PagePause: time.Duration(profile.Crawl.PagePauseMillis) * time.Millisecond,
		Logger:    log,
		Metrics:   rec,
	})
}

// NewPricingRunner wires the built-in provider adapters. profile must
// already pass ValidatePricing.
func NewPricingRunner(profile *config.Config, f *client.Fetcher, store pricing.Store, log *slog.Logger, rec metrics.Recorder) *pricing.Runner {
	vocab, _ := normalize.VocabularyFor(profile.Output.Locale)
	return pricing.NewRunner(f, pricing.DefaultRegistry(), store, pricing.RunnerOptions{
		Vocab:     vocab,
		UserAgent: profile.HTTP.UserAgent,
		Logger:    log,
		Metrics:   rec,
	})
}
