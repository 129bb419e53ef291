package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"psparser/internal/client/transport"
	"psparser/internal/metrics"
)

type Transport = transport.Transport

const defaultBodyLimit = 8 << 20

// FetchError means the resource stayed unreachable after every attempt.
type FetchError struct {
	URL      string
	Attempts int
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %d attempts: %v", e.URL, e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// StatusError is a non-2xx response. It is never retried.
type StatusError struct {
	URL    string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch %s: status=%d", e.URL, e.Status)
}

type RequestOption func(*http.Request)

func WithHeader(key, value string) RequestOption {
	return func(r *http.Request) {
		if value != "" {
			r.Header.Set(key, value)
		}
	}
}

type Options struct {
	Transport    Transport
	ApplyHeaders func(*http.Request)
	BodyLimit    int64
	Metrics      metrics.Recorder
	Logger       *slog.Logger
}

// Fetcher retrieves documents by URL over a retrying transport.
type Fetcher struct {
	t       Transport
	headers func(*http.Request)
	limit   int64
	rec     metrics.Recorder
	log     *slog.Logger
}

func NewFetcher(opts Options) (*Fetcher, error) {
	if opts.Transport == nil {
		return nil, errors.New("fetcher: transport is nil")
	}
	if opts.BodyLimit <= 0 {
		opts.BodyLimit = defaultBodyLimit
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Fetcher{
		t:       opts.Transport,
		headers: opts.ApplyHeaders,
		limit:   opts.BodyLimit,
		rec:     metrics.OrNop(opts.Metrics),
		log:     opts.Logger,
	}, nil
}

func (f *Fetcher) Fetch(ctx context.Context, rawURL string, opts ...RequestOption) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	if f.headers != nil {
		f.headers(req)
	}
	for _, o := range opts {
		o(req)
	}

	start := time.Now()
	b, err := f.do(req)
	outcome := metrics.OutcomeOK
	if err != nil {
		outcome = metrics.OutcomeError
	}
	f.rec.RecordFetch(outcome, time.Since(start))

	if err != nil {
		f.log.Debug("fetch failed", "url", rawURL, "err", err)
	}
	return b, err
}

func (f *Fetcher) do(req *http.Request) ([]byte, error) {
	resp, err := f.t.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return nil, ctxErr
		}
		attempts := 1
		var re *transport.RetryError
		if errors.As(err, &re) {
			attempts = re.Attempts
			err = re.Err
		}
		return nil, &FetchError{URL: req.URL.String(), Attempts: attempts, Err: err}
	}
	defer resp.Body.Close()

	f.rec.RecordHTTPStatus(resp.StatusCode)

	b, err := io.ReadAll(io.LimitReader(resp.Body, f.limit))
	if err != nil {
		return nil, &FetchError{URL: req.URL.String(), Attempts: 1, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{
			URL:    req.URL.String(),
			Status: resp.StatusCode,
			Body:   strings.TrimSpace(string(b[:min(len(b), 1024)])),
		}
	}
	return b, nil
}
