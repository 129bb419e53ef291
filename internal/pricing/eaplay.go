package pricing

import (
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"psparser/internal/domain/models"
	"psparser/internal/extract"
	"psparser/internal/normalize"
)

// EAPlay reads the monthly and yearly EA Play blocks.
type EAPlay struct{}

func (EAPlay) Provider() string { return "eaplay" }

func (EAPlay) Extract(doc *extract.Document, t Target) ([]models.PricingOffer, error) {
	m := matcherFor(t.Format)
	var plans []models.PricingPlan

	doc.Find("div.box--lightAlt").Each(func(_ int, block *goquery.Selection) {
		h3 := extract.Text(block.Find("h3"))
		var months int
		switch {
		case strings.Contains(h3, "12-month"):
			months = 12
		case strings.Contains(h3, "1-month"):
			months = 1
		default:
			return
		}

		price := extract.First(
			func() extract.Field[string] { return gameCTAPrice(block) },
			func() extract.Field[string] {
				p, _ := m.firstInSel(block)
				return extract.NonEmpty(extract.SourceMarkup, p)
			},
		)
		if !price.OK() {
			return
		}
		plans = append(plans, models.PricingPlan{Months: months, Price: normalize.Price(price.Value, t.Format)})
	})

	if len(plans) == 0 {
		return nil, nil
	}
	return []models.PricingOffer{{
		Service: "EA Play",
		Region:  t.Region,
		Tier:    t.Tier,
		Image:   firstNonEmpty(t.Image, "eaplay.png"),
		Plans:   plans,
	}}, nil
}

// gameCTAPrice reads the block's embedded apollo cache.
func gameCTAPrice(block *goquery.Selection) extract.Field[string] {
	script := block.Find(`script[type="application/json"]`).First()
	if script.Length() == 0 {
		return extract.Missing[string]()
	}
	data, err := extract.DecodeJSON(script.Text())
	if err != nil {
		return extract.Malformed[string](extract.SourceStructured, err)
	}
	c, _ := extract.Path(data, "cache")
	cache := asMap(c)
	keys := make([]string, 0, len(cache))
	for k := range cache {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		obj := asMap(cache[k])
		if obj["__typename"] != "GameCTA" {
			continue
		}
		if p := extract.PickString(asMap(obj["price"]), "basePrice", "discountedPrice"); p != "" {
			return extract.Found(p, extract.SourceStructured)
		}
	}
	return extract.Missing[string]()
}
