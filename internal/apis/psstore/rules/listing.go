// Package rules extracts storefront listing tiles and product pages.
package rules

import (
	"fmt"

	"github.com/PuerkitoBio/goquery"

	"psparser/internal/apis/psstore/responses"
	"psparser/internal/extract"
)

const (
	tileSelector  = `li[class^="psw-l-w-"]`
	linkSelector  = `a.psw-link`
	telemetryAttr = "data-telemetry-meta"
)

// Listing reads product tiles from a browse page. Tiles without a product
// link are skipped. An empty result means the listing is exhausted.
func Listing(doc *extract.Document) ([]responses.Stub, error) {
	out := make([]responses.Stub, 0, 24)

	doc.Find(tileSelector).Each(func(_ int, li *goquery.Selection) {
		a := li.Find(linkSelector).First()
		href, ok := a.Attr("href")
		if !ok {
			return
		}
		link := doc.Resolve(href)
		if link == "" {
			return
		}
		out = append(out, tile(li, a, link))
	})

	return out, nil
}

func tile(li, a *goquery.Selection, link string) responses.Stub {
	meta, metaErr := telemetry(a)

	structured := func(key string) extract.Strategy[string] {
		return func() extract.Field[string] {
			if metaErr != nil {
				return extract.Malformed[string](extract.SourceStructured, metaErr)
			}
			if s, ok := extract.String(meta, key); ok {
				return extract.Found(s, extract.SourceStructured)
			}
			return extract.Missing[string]()
		}
	}
	markup := func(selectors ...string) extract.Strategy[string] {
		return func() extract.Field[string] { return firstText(li, selectors...) }
	}

	st := responses.Stub{Link: link}

	st.Title = extract.First(
		structured("name"),
		markup(`span.psw-t-body`, `[data-qa*="product-name"]`),
	)
	st.Price = extract.First(
		structured("price"),
		markup(`span[data-qa*="price#display-price"]`),
	)
	st.OldPrice = firstText(li, `span[data-qa*="price#original-price"]`, `s`)
	st.Discount = firstText(li, `[data-qa*="discount-badge"] span`)
	st.Subscription = firstText(li, `span[data-qa*="service-upsell#descriptorText"]`)
	st.Icons = icons(li.Find(".psw-service-upsell"))

	if img := li.Find(`img[data-qa*="game-art#image#image"]`).First(); img.Length() > 0 {
		st.Image = extract.NonEmpty(extract.SourceMarkup, pickImage(img))
	}

	return st
}

// telemetry decodes the tile's tracking payload. A nil map with nil error
// means the attribute is absent.
func telemetry(a *goquery.Selection) (map[string]any, error) {
	raw, ok := a.Attr(telemetryAttr)
	if !ok || raw == "" {
		return nil, nil
	}
	v, err := extract.DecodeJSON(raw)
	if err != nil {
		return nil, err
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s: want object, got %T", telemetryAttr, v)
	}
	return m, nil
}
