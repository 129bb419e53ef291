package pricing

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"psparser/internal/domain/models"
	"psparser/internal/extract"
	"psparser/internal/normalize"
)

const gtaName = "GTA+"

// GTAPlus reads the GTA+ tile of the store subscriptions page.
type GTAPlus struct{}

func (GTAPlus) Provider() string { return "gtaplus" }

func (GTAPlus) Extract(doc *extract.Document, t Target) ([]models.PricingOffer, error) {
	m := matcherFor(t.Format)

	price := extract.First(
		func() extract.Field[string] { return gtaStructured(doc) },
		func() extract.Field[string] {
			var found string
			doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
				if !strings.Contains(a.Text(), gtaName) {
					return true
				}
				if p, ok := m.firstInSel(a); ok {
					found = p
				} else if p, ok := m.firstInSel(a.Find("section.psw-product-tile__details")); ok {
					found = p
				}
				return false
			})
			return extract.NonEmpty(extract.SourceMarkup, found)
		},
		func() extract.Field[string] {
			for _, s := range doc.Strings() {
				if sm := m.gta.FindStringSubmatch(s); sm != nil {
					return extract.Found(strings.TrimSpace(sm[1]), extract.SourceMarkup)
				}
			}
			return extract.Missing[string]()
		},
	)
	if !price.OK() {
		return nil, nil
	}

	months := t.Months
	if months <= 0 {
		months = 1
	}
	return []models.PricingOffer{{
		Service: gtaName,
		Region:  t.Region,
		Tier:    t.Tier,
		Image:   firstNonEmpty(t.Image, "gtaplus.png"),
		Plans:   []models.PricingPlan{{Months: months, Price: normalize.Price(price.Value, t.Format)}},
	}}, nil
}

// gtaStructured looks for a product named GTA+ in embedded JSON.
func gtaStructured(doc *extract.Document) extract.Field[string] {
	vals, errs := doc.JSONScripts("application/json")
	var found string
	for _, v := range vals {
		extract.Walk(v, func(obj map[string]any) {
			if found != "" {
				return
			}
			name, _ := obj["name"].(string)
			if !strings.Contains(name, gtaName) {
				return
			}
			found = firstNonEmpty(
				extract.PickString(asMap(obj["price"]), "discountedPrice", "basePrice"),
				extract.PickString(obj, "displayPrice"),
			)
		})
		if found != "" {
			return extract.Found(found, extract.SourceStructured)
		}
	}
	if len(errs) > 0 {
		return extract.Malformed[string](extract.SourceStructured, errs[0])
	}
	return extract.Missing[string]()
}

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

