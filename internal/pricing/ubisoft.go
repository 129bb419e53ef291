package pricing

import (
	"regexp"

	"github.com/PuerkitoBio/goquery"

	"psparser/internal/domain/models"
	"psparser/internal/extract"
	"psparser/internal/normalize"
)

var oneMonthRe = regexp.MustCompile(`(?i)1-month subscription`)

// UbisoftClassics reads the single monthly price of Ubisoft+ Classics.
type UbisoftClassics struct{}

func (UbisoftClassics) Provider() string { return "ubisoft-classics" }

func (UbisoftClassics) Extract(doc *extract.Document, t Target) ([]models.PricingOffer, error) {
	m := matcherFor(t.Format)

	price := extract.First(
		func() extract.Field[string] {
			var found string
			doc.Find("h3").EachWithBreak(func(_ int, h *goquery.Selection) bool {
				if !oneMonthRe.MatchString(h.Text()) {
					return true
				}
				if p, ok := m.firstInSel(h.Parent().NextAll()); ok {
					found = p
				} else if p, ok := m.firstInSel(h.Parent()); ok {
					found = p
				}
				return found == ""
			})
			return extract.NonEmpty(extract.SourceMarkup, found)
		},
		func() extract.Field[string] {
			p, _ := m.firstIn(doc.Strings())
			return extract.NonEmpty(extract.SourceMarkup, p)
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
		Service: "Ubisoft+ Classics",
		Region:  t.Region,
		Tier:    t.Tier,
		Image:   firstNonEmpty(t.Image, "ubisoft.png"),
		Plans:   []models.PricingPlan{{Months: months, Price: normalize.Price(price.Value, t.Format)}},
	}}, nil
}
