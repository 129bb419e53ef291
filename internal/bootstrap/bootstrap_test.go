package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"psparser/internal/config"
	"psparser/internal/logger"
	"psparser/internal/normalize"
)

const profileYAML = `
env: local
sources:
  - { region: TR, url: "https://store.example/en-tr/browse/{page}" }
  - { region: in, url: "https://store.example/en-in/browse/{page}", max_pages: 7 }
pricing:
  - { provider: PSPlus, region: tr, url: "https://ps.example/en-tr/ps-plus/", tier_id: TIER_20 }
local:
  http:
    attempts: 1
`

func loadProfile(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Parse([]byte(profileYAML))
	require.NoError(t, err)
	return cfg
}

func TestSources_FilterAndDefaults(t *testing.T) {
	cfg := loadProfile(t)

	all := Sources(cfg)
	require.Len(t, all, 2)
	assert.Equal(t, "tr", all[0].Region)
	assert.Equal(t, normalize.FormatTR, all[0].Format)
	assert.Equal(t, 3, all[0].MaxPages)
	assert.Equal(t, 7, all[1].MaxPages)

	only := Sources(cfg, " IN ")
	require.Len(t, only, 1)
	assert.Equal(t, "in", only[0].Region)
	assert.Equal(t, normalize.FormatIN, only[0].Format)

	assert.Empty(t, Sources(cfg, "us"))
}

func TestPricingTargets(t *testing.T) {
	targets := PricingTargets(loadProfile(t))
	require.Len(t, targets, 1)
	assert.Equal(t, "psplus", targets[0].Provider)
	assert.Equal(t, "TR", targets[0].Region)
	assert.Equal(t, "TIER_20", targets[0].TierID)
	assert.Equal(t, normalize.FormatTR, targets[0].Format)
}

func TestBuildFetcher_SendsUserAgent(t *testing.T) {
	var ua string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte("<html></html>"))
	}))
	defer srv.Close()

	cfg := loadProfile(t)
	f, err := BuildFetcher(cfg, logger.Discard(), nil)
	require.NoError(t, err)

	b, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "<html></html>", string(b))
	assert.Equal(t, config.DefaultUserAgent, ua)
}

func TestBuildTopUp(t *testing.T) {
	cfg := loadProfile(t)
	svc, err := BuildTopUp(cfg, logger.Discard())
	require.NoError(t, err)
	assert.Nil(t, svc)

	cfg.TopUp.BaseURL = "https://partner.example"
	_, err = BuildTopUp(cfg, logger.Discard())
	var ve *config.ValidationError
	assert.ErrorAs(t, err, &ve)

	cfg.TopUp.APIKey = "k"
	svc, err = BuildTopUp(cfg, logger.Discard())
	require.NoError(t, err)
	require.NotNil(t, svc)
	assert.Equal(t, "107.00", svc.Charge(mustDecimal(t, "100")).StringFixed(2))
}

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}
