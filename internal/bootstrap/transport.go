package bootstrap

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"psparser/internal/client"
	"psparser/internal/client/httpc"
	"psparser/internal/client/proxy"
	"psparser/internal/client/transport"
	"psparser/internal/config"
	"psparser/internal/metrics"
	"psparser/internal/topup"
)

// BuildFetcher assembles proxy, http client, retry and concurrency layers
// into the storefront fetcher.
func BuildFetcher(profile *config.Config, log *slog.Logger, rec metrics.Recorder) (*client.Fetcher, error) {
	rec = metrics.OrNop(rec)
	log.Info("profile",
		"env", profile.Env,
		"proxy_mode", profile.Proxy.Mode,
		"proxy_list_len", len(profile.Proxy.List),
	)

	proxyFunc, err := proxy.Func(proxy.Config{
		Mode:     profile.Proxy.Mode,
		List:     profile.Proxy.List,
		FailOpen: profile.Proxy.FailOpen,
	}, log)
	if err != nil {
		return nil, err
	}
	if proxyFunc == nil {
		log.Warn("proxy OFF", "mode", profile.Proxy.Mode)
	}

	httpClient := httpc.New(httpc.Options{
		Timeout: time.Duration(profile.HTTP.TimeoutSeconds) * time.Second,
		MaxIdle: profile.HTTP.Concurrency,
		Proxy:   proxyFunc,
	})

	t, err := transport.Build(transport.Options{
		HTTPClient:  httpClient,
		Attempts:    profile.HTTP.Attempts,
		RetryDelay:  time.Duration(profile.HTTP.RetryDelaySeconds) * time.Second,
		Concurrency: profile.HTTP.Concurrency,
		Logger:      log,
		OnRetry:     rec.RecordRetry,
	})
	if err != nil {
		return nil, err
	}

	return client.NewFetcher(client.Options{
		Transport: t,
		ApplyHeaders: func(req *http.Request) {
			req.Header.Set("User-Agent", profile.HTTP.UserAgent)
		},
		Metrics: rec,
		Logger:  log,
	})
}

// BuildTopUp returns nil when the partner API is not configured. Its
// transport never retries: a replayed create call could double-charge.
func BuildTopUp(profile *config.Config, log *slog.Logger) (*topup.Service, error) {
	if profile.TopUp.BaseURL == "" && profile.TopUp.APIKey == "" {
		log.Warn("topup OFF: topup.base_url and topup.api_key are not set")
		return nil, nil
	}
	if err := profile.ValidateTopUp(); err != nil {
		return nil, err
	}

	t, err := transport.Build(transport.Options{
		HTTPClient: httpc.New(httpc.Options{
			Timeout: time.Duration(profile.TopUp.TimeoutSeconds) * time.Second,
		}),
		Attempts: 1,
		Logger:   log,
	})
	if err != nil {
		return nil, err
	}

	commission := decimal.RequireFromString(profile.TopUp.Commission)
	api := topup.NewClient(t, profile.TopUp.BaseURL, profile.TopUp.APIKey, profile.TopUp.ServiceID)
	return topup.NewService(api, commission, log), nil
}
