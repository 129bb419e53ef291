package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
env: prod
proxy:
  mode: list
  list: ["10.0.0.1:3128"]
sources:
  - region: TR
    url: "https://store.example.com/en-tr/pages/browse/{page}"
  - region: in
    url: "https://store.example.com/en-in/pages/browse/{page}"
    max_pages: 5
pricing:
  - provider: PSPlus
    region: tr
    url: "https://www.example.com/en-tr/ps-plus/"
    tier: Essential
    tier_id: TIER_10
prod:
  http:
    retry_delay_seconds: 3
  topup:
    base_url: "https://balance.example.com/"
    api_key: "${PSPARSER_TEST_KEY}"
`

func TestParse_ProfileAndDefaults(t *testing.T) {
	t.Setenv("PSPARSER_TEST_KEY", "secret")

	cfg, err := Parse([]byte(sample))
	require.NoError(t, err)

	assert.Equal(t, "prod", cfg.Env)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 20, cfg.HTTP.TimeoutSeconds)
	assert.Equal(t, 3, cfg.HTTP.Attempts)
	assert.Equal(t, 3, cfg.HTTP.RetryDelaySeconds)
	assert.Equal(t, "list", cfg.Proxy.Mode)

	require.Len(t, cfg.Sources, 2)
	assert.Equal(t, "tr", cfg.Sources[0].Region)
	assert.Equal(t, "tr", cfg.Sources[0].PriceFormat)
	assert.Equal(t, 3, cfg.Sources[0].MaxPages)
	assert.Equal(t, 5, cfg.Sources[1].MaxPages)

	require.Len(t, cfg.Pricing, 1)
	assert.Equal(t, "psplus", cfg.Pricing[0].Provider)
	assert.Equal(t, "TR", cfg.Pricing[0].Region)

	assert.Equal(t, "https://balance.example.com", cfg.TopUp.BaseURL)
	assert.Equal(t, "secret", cfg.TopUp.APIKey)
	assert.Equal(t, 5955, cfg.TopUp.ServiceID)

	assert.NoError(t, cfg.ValidateCatalog())
	assert.NoError(t, cfg.ValidatePricing())
	assert.NoError(t, cfg.ValidateTopUp())
}

func TestParse_MinimalProfileDefaults(t *testing.T) {
	cfg, err := Parse([]byte("env: local\n"))
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.HTTP.Attempts)
	assert.Equal(t, 3, cfg.HTTP.RetryDelaySeconds)
	assert.Equal(t, 3, cfg.Crawl.MaxPages)
	assert.Equal(t, 20, cfg.HTTP.TimeoutSeconds)
	assert.Equal(t, "disabled", cfg.Proxy.Mode)
	assert.Equal(t, "ru", cfg.Output.Locale)
}

func TestValidateCatalog_NoSources(t *testing.T) {
	cfg, err := Parse([]byte("env: local\n"))
	require.NoError(t, err)

	err = cfg.ValidateCatalog()
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Problems, "no sources configured")
}

func TestValidateCatalog_BadSource(t *testing.T) {
	cfg, err := Parse([]byte(`
sources:
  - region: us
    url: "https://store.example.com/en-us/pages/browse/1"
    price_format: usd
local:
  output:
    locale: de
`))
	require.NoError(t, err)

	var ve *ValidationError
	require.ErrorAs(t, cfg.ValidateCatalog(), &ve)
	assert.Len(t, ve.Problems, 3)
}

func TestParse_UnknownEnv(t *testing.T) {
	_, err := Parse([]byte("env: staging\n"))
	assert.Error(t, err)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, cfg.Sources, 2)
}
