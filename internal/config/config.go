package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"psparser/internal/normalize"
)

type ProxyConfig struct {
	Mode     string   `yaml:"mode"` // disabled|list|environment
	List     []string `yaml:"list"`
	FailOpen bool     `yaml:"fail_open"`
}

// Source is one storefront listing visited by the crawler.
type Source struct {
	Region         string `yaml:"region"`
	URL            string `yaml:"url"` // {page} is replaced with the page number
	PriceFormat    string `yaml:"price_format"`
	AcceptLanguage string `yaml:"accept_language"`
	MaxPages       int    `yaml:"max_pages"`
}

// PricingTarget is one subscription page handled by a provider adapter.
type PricingTarget struct {
	Provider    string `yaml:"provider"`
	Region      string `yaml:"region"`
	URL         string `yaml:"url"`
	PriceFormat string `yaml:"price_format"`
	Tier        string `yaml:"tier"`
	TierID      string `yaml:"tier_id"`
	Image       string `yaml:"image"`
	Months      int    `yaml:"months"`
}

type Root struct {
	Env     string          `yaml:"env"`
	Proxy   ProxyConfig     `yaml:"proxy"`
	Sources []Source        `yaml:"sources"`
	Pricing []PricingTarget `yaml:"pricing"`
	Local   Config          `yaml:"local"`
	Dev     Config          `yaml:"dev"`
	Prod    Config          `yaml:"prod"`
}

type Config struct {
	Env string `yaml:"-"`

	Log struct {
		Level     string `yaml:"level"`
		Format    string `yaml:"format"`
		AddSource bool   `yaml:"add_source"`
	} `yaml:"log"`

	Server struct {
		Host       string `yaml:"host"`
		Port       int    `yaml:"port"`
		CORSOrigin string `yaml:"cors_origin"`
	} `yaml:"server"`

	HTTP struct {
		TimeoutSeconds    int    `yaml:"timeout_seconds"`
		Attempts          int    `yaml:"attempts"`
		RetryDelaySeconds int    `yaml:"retry_delay_seconds"`
		Concurrency       int    `yaml:"concurrency"`
		UserAgent         string `yaml:"user_agent"`
	} `yaml:"http"`

	Crawl struct {
		MaxPages          int `yaml:"max_pages"`
		PagePauseMillis   int `yaml:"page_pause_ms"`
		EnrichConcurrency int `yaml:"enrich_concurrency"`
	} `yaml:"crawl"`

	Output struct {
		Locale         string `yaml:"locale"`
		CatalogFile    string `yaml:"catalog_file"`
		PricingFile    string `yaml:"pricing_file"`
		LockTTLSeconds int    `yaml:"lock_ttl_seconds"`
	} `yaml:"output"`

	TopUp struct {
		BaseURL        string `yaml:"base_url"`
		APIKey         string `yaml:"api_key"`
		ServiceID      int    `yaml:"service_id"`
		Commission     string `yaml:"commission"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"topup"`

	Proxy   ProxyConfig     `yaml:"proxy"`
	Sources []Source        `yaml:"sources"`
	Pricing []PricingTarget `yaml:"pricing"`
}

const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) " +
	"Chrome/122.0.0.0 Safari/537.36"

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(b)
}

// Parse decodes a config document. ${VAR} references are expanded from the
// environment first, so secrets can stay out of the file.
func Parse(b []byte) (*Config, error) {
	var root Root
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(b))), &root); err != nil {
		return nil, err
	}

	env := strings.TrimSpace(strings.ToLower(root.Env))
	if env == "" {
		env = "local"
	}

	var p Config
	switch env {
	case "local":
		p = root.Local
	case "dev":
		p = root.Dev
	case "prod":
		p = root.Prod
	default:
		return nil, fmt.Errorf("unknown env=%q (expected local|dev|prod)", env)
	}
	p.Env = env

	// profile values win, root values are shared defaults
	if isProxyEmpty(p.Proxy) && !isProxyEmpty(root.Proxy) {
		p.Proxy = root.Proxy
	}
	if len(p.Sources) == 0 {
		p.Sources = root.Sources
	}
	if len(p.Pricing) == 0 {
		p.Pricing = root.Pricing
	}

	applyDefaults(&p)
	return &p, nil
}

func isProxyEmpty(px ProxyConfig) bool {
	return strings.TrimSpace(px.Mode) == "" && len(px.List) == 0
}

func applyDefaults(p *Config) {
	if p.Server.Host == "" {
		p.Server.Host = "0.0.0.0"
	}
	if p.Server.Port == 0 {
		p.Server.Port = 5000
	}
	if p.Server.CORSOrigin == "" {
		p.Server.CORSOrigin = "*"
	}

	if p.HTTP.TimeoutSeconds <= 0 {
		p.HTTP.TimeoutSeconds = 20
	}
	if p.HTTP.Attempts <= 0 {
		p.HTTP.Attempts = 3
	}
	if p.HTTP.RetryDelaySeconds <= 0 {
		p.HTTP.RetryDelaySeconds = 3
	}
	if p.HTTP.Concurrency <= 0 {
		p.HTTP.Concurrency = 16
	}
	if p.HTTP.UserAgent == "" {
		p.HTTP.UserAgent = DefaultUserAgent
	}

	if p.Crawl.MaxPages <= 0 {
		p.Crawl.MaxPages = 3
	}
	if p.Crawl.PagePauseMillis < 0 {
		p.Crawl.PagePauseMillis = 0
	}
	if p.Crawl.EnrichConcurrency <= 0 {
		p.Crawl.EnrichConcurrency = 8
	}

	if p.Output.Locale == "" {
		p.Output.Locale = "ru"
	}
	if p.Output.CatalogFile == "" {
		p.Output.CatalogFile = "games.json"
	}
	if p.Output.PricingFile == "" {
		p.Output.PricingFile = "subscriptions.json"
	}
	if p.Output.LockTTLSeconds <= 0 {
		p.Output.LockTTLSeconds = 3600
	}

	if p.TopUp.ServiceID == 0 {
		p.TopUp.ServiceID = 5955
	}
	if p.TopUp.Commission == "" {
		p.TopUp.Commission = "0.07"
	}
	if p.TopUp.TimeoutSeconds <= 0 {
		p.TopUp.TimeoutSeconds = 20
	}
	p.TopUp.BaseURL = strings.TrimRight(strings.TrimSpace(p.TopUp.BaseURL), "/")

	if p.Log.Level == "" {
		if p.Env == "prod" {
			p.Log.Level = "info"
		} else {
			p.Log.Level = "debug"
		}
	}
	if p.Log.Format == "" {
		if p.Env == "prod" {
			p.Log.Format = "json"
		} else {
			p.Log.Format = "text"
		}
	}

	p.Proxy.Mode = strings.ToLower(strings.TrimSpace(p.Proxy.Mode))
	if p.Proxy.Mode == "" {
		p.Proxy.Mode = "disabled"
	}

	for i := range p.Sources {
		s := &p.Sources[i]
		s.Region = strings.ToLower(strings.TrimSpace(s.Region))
		s.URL = strings.TrimSpace(s.URL)
		if s.MaxPages <= 0 {
			s.MaxPages = p.Crawl.MaxPages
		}
		if s.PriceFormat == "" {
			s.PriceFormat = defaultPriceFormat(s.Region)
		}
	}
	for i := range p.Pricing {
		t := &p.Pricing[i]
		t.Provider = strings.ToLower(strings.TrimSpace(t.Provider))
		t.Region = strings.ToUpper(strings.TrimSpace(t.Region))
		t.URL = strings.TrimSpace(t.URL)
		if t.PriceFormat == "" {
			t.PriceFormat = defaultPriceFormat(t.Region)
		}
	}
}

func defaultPriceFormat(region string) string {
	f, err := normalize.ParsePriceFormat(region)
	if err != nil {
		return string(normalize.FormatPlain)
	}
	return string(f)
}
