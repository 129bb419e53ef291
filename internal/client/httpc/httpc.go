package httpc

import (
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"
)

type Options struct {
	// Timeout bounds one attempt, headers and body included.
	Timeout     time.Duration
	DialTimeout time.Duration
	MaxIdle     int
	Proxy       func(*http.Request) (*url.URL, error)
}

func New(opts Options) *http.Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 20 * time.Second
	}
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = 10 * time.Second
	}
	if opts.MaxIdle <= 0 {
		opts.MaxIdle = 20
	}

	// storefronts set region cookies on the first response
	jar, _ := cookiejar.New(nil)

	tr := &http.Transport{
		Proxy: opts.Proxy,
		DialContext: (&net.Dialer{
			Timeout:   opts.DialTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,

		TLSHandshakeTimeout:   opts.DialTimeout,
		ResponseHeaderTimeout: opts.Timeout,
		ExpectContinueTimeout: 1 * time.Second,

		MaxIdleConns:        opts.MaxIdle * 4,
		MaxIdleConnsPerHost: opts.MaxIdle,
		IdleConnTimeout:     90 * time.Second,

		ForceAttemptHTTP2: true,
	}

	return &http.Client{
		Transport: tr,
		Timeout:   opts.Timeout,
		Jar:       jar,
	}
}
