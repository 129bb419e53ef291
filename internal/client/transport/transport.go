package transport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/semaphore"
)

type Transport interface {
	Do(req *http.Request) (*http.Response, error)
}

type Options struct {
	HTTPClient  *http.Client
	Attempts    int           // total attempts per request, 1 disables retries
	RetryDelay  time.Duration // fixed pause between attempts
	Concurrency int           // ограничение одновременных запросов
	Logger      *slog.Logger
	OnRetry     func()
}

func (o Options) validate() error {
	if o.HTTPClient == nil {
		return fmt.Errorf("HTTPClient is nil")
	}
	if o.Concurrency < 0 {
		return fmt.Errorf("Concurrency must be >= 0")
	}
	if o.Attempts < 0 {
		return fmt.Errorf("Attempts must be >= 0")
	}
	return nil
}

func Build(opts Options) (Transport, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Attempts == 0 {
		opts.Attempts = 3
	}
	if opts.RetryDelay < 0 {
		opts.RetryDelay = 0
	}

	var t Transport = &HTTPTransport{Client: opts.HTTPClient}

	// retry слой
	if opts.Attempts > 1 {
		t = &RetryTransport{
			Base:     t,
			Attempts: opts.Attempts,
			Delay:    opts.RetryDelay,
			Log:      opts.Logger,
			OnRetry:  opts.OnRetry,
		}
	}

	// concurrency слой
	if opts.Concurrency > 0 {
		t = NewConcurrencyTransport(t, opts.Concurrency)
	}

	return t, nil
}

type HTTPTransport struct {
	Client *http.Client
}

func (h *HTTPTransport) Do(req *http.Request) (*http.Response, error) {
	return h.Client.Do(req)
}

// ConcurrencyTransport caps in-flight requests across all callers.
type ConcurrencyTransport struct {
	Base Transport
	sem  *semaphore.Weighted
}

func NewConcurrencyTransport(base Transport, n int) *ConcurrencyTransport {
	if n <= 0 {
		n = 1
	}
	return &ConcurrencyTransport{Base: base, sem: semaphore.NewWeighted(int64(n))}
}

func (t *ConcurrencyTransport) Do(req *http.Request) (*http.Response, error) {
	if err := t.sem.Acquire(req.Context(), 1); err != nil {
		return nil, err
	}
	defer t.sem.Release(1)

	return t.Base.Do(req)
}

// RetryError is returned once every attempt failed at the transport level.
type RetryError struct {
	Attempts int
	Err      error
}

func (e *RetryError) Error() string {
	return fmt.Sprintf("gave up after %d attempts: %v", e.Attempts, e.Err)
}

func (e *RetryError) Unwrap() error { return e.Err }

// RetryTransport repeats a request on connection and timeout errors with a
// fixed pause. Any HTTP response, whatever its status, is returned as is.
type RetryTransport struct {
	Base     Transport
	Attempts int
	Delay    time.Duration
	Log      *slog.Logger
	OnRetry  func()
}

func (r *RetryTransport) Do(req *http.Request) (*http.Response, error) {
	l := r.Log
	if l == nil {
		l = slog.Default()
	}
	attempts := r.Attempts
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		if err := req.Context().Err(); err != nil {
			return nil, err
		}

		curReq, err := cloneForRetry(req)
		if err != nil {
			return nil, err
		}

		resp, err := r.Base.Do(curReq)
		if err == nil {
			return resp, nil
		}
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if !shouldRetryError(err) {
			return nil, err
		}
		lastErr = err

		l.Warn("fetch attempt failed",
			"attempt", attempt,
			"max_attempts", attempts,
			"err", err,
			"url", req.URL.String(),
		)

		if attempt == attempts {
			break
		}
		if r.OnRetry != nil {
			r.OnRetry()
		}
		if err := sleepCtx(req.Context(), r.Delay); err != nil {
			return nil, err
		}
	}

	return nil, &RetryError{Attempts: attempts, Err: lastErr}
}

func shouldRetryError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func cloneForRetry(req *http.Request) (*http.Request, error) {
	cloned := req.Clone(req.Context())

	if req.Body == nil || req.Body == http.NoBody {
		return cloned, nil
	}
	if req.GetBody == nil {
		return nil, fmt.Errorf("cannot retry request with body: GetBody is nil")
	}
	b, err := req.GetBody()
	if err != nil {
		return nil, fmt.Errorf("cannot retry request with body: GetBody failed: %w", err)
	}
	cloned.Body = b
	return cloned, nil
}
