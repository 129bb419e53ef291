package endpoints

import (
	"context"
	"strconv"
	"strings"

	"psparser/internal/client"
	"psparser/internal/extract"
)

type Fetcher interface {
	Fetch(ctx context.Context, url string, opts ...client.RequestOption) ([]byte, error)
}

type Client struct {
	Fetcher      Fetcher
	ApplyHeaders func(lang string) []client.RequestOption
}

func New(f Fetcher, applyHeaders func(lang string) []client.RequestOption) *Client {
	return &Client{Fetcher: f, ApplyHeaders: applyHeaders}
}

// Document fetches url and parses it as HTML.
func (c *Client) Document(ctx context.Context, url, lang string) (*extract.Document, error) {
	var opts []client.RequestOption
	if c.ApplyHeaders != nil {
		opts = c.ApplyHeaders(lang)
	}
	b, err := c.Fetcher.Fetch(ctx, url, opts...)
	if err != nil {
		return nil, err
	}
	return extract.Parse(b, url)
}

// PageURL fills the {page} placeholder of a listing URL template.
func PageURL(template string, page int) string {
	return strings.ReplaceAll(template, "{page}", strconv.Itoa(page))
}
