package config

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"psparser/internal/normalize"
)

// ValidationError lists every problem found in a config.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid config: " + strings.Join(e.Problems, "; ")
}

type validator struct {
	problems []string
}

func (v *validator) addf(format string, args ...any) {
	v.problems = append(v.problems, fmt.Sprintf(format, args...))
}

func (v *validator) err() error {
	if len(v.problems) == 0 {
		return nil
	}
	return &ValidationError{Problems: v.problems}
}

func (c *Config) common(v *validator) {
	if _, err := normalize.VocabularyFor(c.Output.Locale); err != nil {
		v.addf("output.locale: %v", err)
	}
	if c.Crawl.EnrichConcurrency < 1 {
		v.addf("crawl.enrich_concurrency must be >= 1")
	}
	if c.HTTP.Attempts < 1 {
		v.addf("http.attempts must be >= 1")
	}
}

// ValidateCatalog checks what the listing crawl needs.
func (c *Config) ValidateCatalog() error {
	v := &validator{}
	c.common(v)

	if len(c.Sources) == 0 {
		v.addf("no sources configured")
	}
	for i, s := range c.Sources {
		if s.Region == "" {
			v.addf("sources[%d].region is empty", i)
		}
		if !strings.Contains(s.URL, "{page}") {
			v.addf("sources[%d].url must contain {page}", i)
		}
		if _, err := normalize.ParsePriceFormat(s.PriceFormat); err != nil {
			v.addf("sources[%d].price_format: %v", i, err)
		}
	}
	if strings.TrimSpace(c.Output.CatalogFile) == "" {
		v.addf("output.catalog_file is empty")
	}
	return v.err()
}

// ValidatePricing checks what the subscription run needs.
func (c *Config) ValidatePricing() error {
	v := &validator{}
	c.common(v)

	if len(c.Pricing) == 0 {
		v.addf("no pricing targets configured")
	}
	for i, t := range c.Pricing {
		if t.Provider == "" {
			v.addf("pricing[%d].provider is empty", i)
		}
		if t.Region == "" {
			v.addf("pricing[%d].region is empty", i)
		}
		if t.URL == "" {
			v.addf("pricing[%d].url is empty", i)
		}
		if _, err := normalize.ParsePriceFormat(t.PriceFormat); err != nil {
			v.addf("pricing[%d].price_format: %v", i, err)
		}
	}
	if strings.TrimSpace(c.Output.PricingFile) == "" {
		v.addf("output.pricing_file is empty")
	}
	return v.err()
}

// ValidateTopUp checks the payment proxy settings.
func (c *Config) ValidateTopUp() error {
	v := &validator{}
	if c.TopUp.BaseURL == "" {
		v.addf("topup.base_url is empty")
	}
	if c.TopUp.APIKey == "" {
		v.addf("topup.api_key is empty")
	}
	if d, err := decimal.NewFromString(c.TopUp.Commission); err != nil || d.IsNegative() {
		v.addf("topup.commission must be a non-negative decimal, got %q", c.TopUp.Commission)
	}
	return v.err()
}
