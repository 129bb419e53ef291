// Package metrics exposes pipeline counters to Prometheus.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is what the fetcher, crawler and pricing runner report to.
type Recorder interface {
	RecordFetch(outcome string, d time.Duration)
	RecordRetry()
	RecordHTTPStatus(code int)
	RecordPage(region, outcome string)
	RecordEnriched(ok bool)
	RecordMerged(added, skipped int)
	RecordPersistError()
	RecordOffers(provider string, n int)
}

const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
	OutcomeEmpty = "empty"
)

type Collector struct {
	fetches       *prometheus.CounterVec
	fetchLatency  prometheus.Histogram
	retries       prometheus.Counter
	httpStatus    *prometheus.CounterVec
	pages         *prometheus.CounterVec
	enriched      *prometheus.CounterVec
	merged        *prometheus.CounterVec
	persistErrors prometheus.Counter
	offers        *prometheus.CounterVec
}

func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "psparser_fetch_total",
			Help: "Fetches by final outcome.",
		}, []string{"outcome"}),
		fetchLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "psparser_fetch_latency_seconds",
			Help:    "Fetch latency including retries.",
			Buckets: prometheus.DefBuckets,
		}),
		retries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "psparser_fetch_retries_total",
			Help: "Retried fetch attempts.",
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "psparser_http_status_total",
			Help: "Upstream responses by status code.",
		}, []string{"status_code"}),
		pages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "psparser_pages_total",
			Help: "Listing pages by region and outcome.",
		}, []string{"region", "outcome"}),
		enriched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "psparser_items_enriched_total",
			Help: "Detail enrichments by outcome.",
		}, []string{"outcome"}),
		merged: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "psparser_items_merged_total",
			Help: "Catalog merge results.",
		}, []string{"result"}),
		persistErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "psparser_persist_errors_total",
			Help: "Failed dataset writes.",
		}),
		offers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "psparser_pricing_offers_total",
			Help: "Pricing offers extracted by provider.",
		}, []string{"provider"}),
	}

	reg.MustRegister(
		c.fetches,
		c.fetchLatency,
		c.retries,
		c.httpStatus,
		c.pages,
		c.enriched,
		c.merged,
		c.persistErrors,
		c.offers,
	)

	return c
}

func (c *Collector) RecordFetch(outcome string, d time.Duration) {
	c.fetches.WithLabelValues(outcome).Inc()
	c.fetchLatency.Observe(d.Seconds())
}

func (c *Collector) RecordRetry() { c.retries.Inc() }

func (c *Collector) RecordHTTPStatus(code int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(code)).Inc()
}

func (c *Collector) RecordPage(region, outcome string) {
	c.pages.WithLabelValues(region, outcome).Inc()
}

func (c *Collector) RecordEnriched(ok bool) {
	if ok {
		c.enriched.WithLabelValues(OutcomeOK).Inc()
		return
	}
	c.enriched.WithLabelValues(OutcomeError).Inc()
}

func (c *Collector) RecordMerged(added, skipped int) {
	c.merged.WithLabelValues("added").Add(float64(added))
	c.merged.WithLabelValues("skipped").Add(float64(skipped))
}

func (c *Collector) RecordPersistError() { c.persistErrors.Inc() }

func (c *Collector) RecordOffers(provider string, n int) {
	c.offers.WithLabelValues(provider).Add(float64(n))
}

// Handler serves the registry in the Prometheus exposition format.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop discards everything.
type Nop struct{}

func (Nop) RecordFetch(string, time.Duration) {}
func (Nop) RecordRetry()                      {}
func (Nop) RecordHTTPStatus(int)              {}
func (Nop) RecordPage(string, string)         {}
func (Nop) RecordEnriched(bool)               {}
func (Nop) RecordMerged(int, int)             {}
func (Nop) RecordPersistError()               {}
func (Nop) RecordOffers(string, int)          {}

func OrNop(r Recorder) Recorder {
	if r == nil {
		return Nop{}
	}
	return r
}
