package proxy

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
)

type Provider interface {
	Next(ctx context.Context) (string, error)
}

type Mode string

const (
	ModeDisabled    Mode = "disabled"
	ModeList        Mode = "list"
	ModeEnvironment Mode = "environment"
)

type Config struct {
	Mode     string
	List     []string
	FailOpen bool
}

// Func builds the proxy selector for http.Transport. nil means direct.
func Func(cfg Config, log *slog.Logger) (func(*http.Request) (*url.URL, error), error) {
	if log == nil {
		log = slog.Default()
	}
	mode := Mode(strings.ToLower(strings.TrimSpace(cfg.Mode)))
	if mode == "" {
		mode = ModeDisabled
	}

	switch mode {
	case ModeDisabled:
		return nil, nil

	case ModeEnvironment:
		log.Info("proxy enabled", "mode", mode)
		return http.ProxyFromEnvironment, nil

	case ModeList:
		p, err := NewListProvider(cfg.List)
		if err != nil {
			return nil, err
		}
		log.Info("proxy enabled", "mode", mode, "count", len(cfg.List), "fail_open", cfg.FailOpen)
		return FromProvider(p, cfg.FailOpen, log), nil

	default:
		return nil, fmt.Errorf("unknown proxy.mode=%q (expected disabled|list|environment)", cfg.Mode)
	}
}

func FromProvider(p Provider, failOpen bool, log *slog.Logger) func(*http.Request) (*url.URL, error) {
	if p == nil {
		return nil
	}
	if log == nil {
		log = slog.Default()
	}

	fail := func(err error) (*url.URL, error) {
		if failOpen {
			return nil, nil
		}
		return nil, err
	}

	return func(req *http.Request) (*url.URL, error) {
		raw, err := p.Next(req.Context())
		if err != nil {
			log.Warn("proxy provider error", "err", err)
			return fail(err)
		}

		u, err := ParseProxy(raw)
		if err != nil {
			log.Warn("proxy parse failed", "proxy", raw, "err", err)
			return fail(err)
		}

		log.Debug("proxy selected", "host", u.Host)
		return u, nil
	}
}

// ParseProxy accepts host:port or a full URL, defaulting to http.
func ParseProxy(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("empty proxy string")
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.Host == "" {
		return nil, fmt.Errorf("proxy %q has no host", raw)
	}
	return u, nil
}

type listProvider struct {
	items []string
	idx   atomic.Uint64
}

// NewListProvider cycles through list round-robin.
func NewListProvider(list []string) (Provider, error) {
	clean := make([]string, 0, len(list))
	for _, s := range list {
		if s = strings.TrimSpace(s); s != "" {
			clean = append(clean, s)
		}
	}
	if len(clean) == 0 {
		return nil, fmt.Errorf("proxy list is empty")
	}
	return &listProvider{items: clean}, nil
}

func (p *listProvider) Next(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	i := p.idx.Add(1) - 1
	return p.items[i%uint64(len(p.items))], nil
}
