package psstore

import (
	"context"
	"log/slog"

	"psparser/internal/apis/psstore/endpoints"
	"psparser/internal/apis/psstore/responses"
	"psparser/internal/apis/psstore/rules"
	"psparser/internal/client"
	"psparser/internal/extract"
)

type Stub = responses.Stub
type Detail = responses.Detail

type Service interface {
	ListPage(ctx context.Context, urlTemplate string, page int, lang string) ([]Stub, error)
	GetDetail(ctx context.Context, link, lang string) (Detail, error)
}

type service struct {
	api       *endpoints.Client
	userAgent string
	log       *slog.Logger
}

func New(f endpoints.Fetcher, userAgent string, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}

	s := &service{userAgent: userAgent, log: logger}
	s.api = endpoints.New(f, s.applyDefaultHeaders)
	return s
}

func (s *service) applyDefaultHeaders(lang string) []client.RequestOption {
	if lang == "" {
		lang = "en-US,en;q=0.9"
	}
	return []client.RequestOption{
		client.WithHeader("User-Agent", s.userAgent),
		client.WithHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"),
		client.WithHeader("Accept-Language", lang),
	}
}

func (s *service) ListPage(ctx context.Context, urlTemplate string, page int, lang string) ([]Stub, error) {
	doc, err := s.api.Document(ctx, endpoints.PageURL(urlTemplate, page), lang)
	if err != nil {
		return nil, err
	}
	return extract.Run("psstore.listing", doc, rules.Listing)
}

func (s *service) GetDetail(ctx context.Context, link, lang string) (Detail, error) {
	doc, err := s.api.Document(ctx, link, lang)
	if err != nil {
		return Detail{}, err
	}

	d, err := extract.Run("psstore.detail", doc, rules.Detail)
	if err != nil {
		return Detail{}, err
	}
	if d.ReleaseDate.Status == extract.StatusMalformed || d.Platforms.Status == extract.StatusMalformed {
		s.log.Debug("detail structured data malformed", "url", link,
			"release_date", d.ReleaseDate.String(), "platforms", d.Platforms.String())
	}
	return d, nil
}
