package pricing

import (
	"fmt"
	"strconv"

	"github.com/PuerkitoBio/goquery"

	"psparser/internal/domain/models"
	"psparser/internal/extract"
	"psparser/internal/normalize"
)

type tierInfo struct {
	Name  string
	Image string
}

var psPlusTiers = map[string]tierInfo{
	"TIER_10": {"Essential", "essential.png"},
	"TIER_20": {"Extra", "extra.png"},
	"TIER_30": {"Deluxe", "deluxe.png"},
}

// PSPlus reads the tier selector of the PlayStation Plus landing page.
// Each tier block embeds its offers as JSON; the visible text is the
// fallback.
type PSPlus struct{}

func (PSPlus) Provider() string { return "psplus" }

func (a PSPlus) Extract(doc *extract.Document, t Target) ([]models.PricingOffer, error) {
	var out []models.PricingOffer
	m := matcherFor(t.Format)

	doc.Find("div.tier-selector__subscription").Each(func(_ int, block *goquery.Selection) {
		tierID, plans := a.structured(block, t.Format)
		if tierID == "" {
			tierID, _ = block.Attr("data-tier-id")
		}
		if t.TierID != "" && tierID != t.TierID {
			return
		}
		info, ok := psPlusTiers[tierID]
		if !ok {
			return
		}
		if !plans.OK() {
			plans = textPlans(extract.Strings(block), m, t.Format)
		}

		offer := models.PricingOffer{
			Service: "PlayStation Plus",
			Region:  t.Region,
			Tier:    firstNonEmpty(t.Tier, info.Name),
			Image:   firstNonEmpty(t.Image, info.Image),
			Plans:   plans.Value,
		}
		out = append(out, offer)
	})

	return out, nil
}

func (PSPlus) structured(block *goquery.Selection, f normalize.PriceFormat) (string, extract.Field[[]models.PricingPlan]) {
	script := block.Find(`script[type="application/json"]`).First()
	if script.Length() == 0 {
		return "", extract.Missing[[]models.PricingPlan]()
	}
	data, err := extract.DecodeJSON(script.Text())
	if err != nil {
		return "", extract.Malformed[[]models.PricingPlan](extract.SourceStructured, err)
	}

	tierID, _ := extract.String(data, "args", "tierId")
	key := fmt.Sprintf(`tierSelectorOffersRetrieve({"tierLabel":"%s"})`, tierID)
	raw, ok := extract.Path(data, "cache", "ROOT_QUERY", key, "offers")
	offers, _ := raw.([]any)
	if !ok || len(offers) == 0 {
		return tierID, extract.Missing[[]models.PricingPlan]()
	}

	plans := make([]models.PricingPlan, 0, len(offers))
	for _, o := range offers {
		ms, _ := extract.String(o, "duration", "value")
		months, err := strconv.Atoi(ms)
		if err != nil || months <= 0 {
			continue
		}
		base, _ := extract.String(o, "price", "basePrice")
		disc, _ := extract.String(o, "price", "discountedPrice")
		if p, ok := planFromPrices(months, base, disc, f); ok {
			plans = append(plans, p)
		}
	}
	if len(plans) == 0 {
		return tierID, extract.Missing[[]models.PricingPlan]()
	}
	return tierID, extract.Found(plans, extract.SourceStructured)
}

// planFromPrices prefers the discounted price and records the base price
// as the old one when they differ.
func planFromPrices(months int, base, discounted string, f normalize.PriceFormat) (models.PricingPlan, bool) {
	price := firstNonEmpty(discounted, base)
	if price == "" {
		return models.PricingPlan{}, false
	}
	p := models.PricingPlan{Months: months, Price: normalize.Price(price, f)}

	if discounted != "" && base != "" {
		old := normalize.Price(base, f)
		if old != p.Price {
			p.OldPrice = old
			p.DiscountPercent, _ = normalize.DiscountPercent(base, discounted)
		}
	}
	return p, true
}

// textPlans pairs every "N month" label with the next currency amount.
func textPlans(strs []string, m priceMatcher, f normalize.PriceFormat) extract.Field[[]models.PricingPlan] {
	var plans []models.PricingPlan
	months := 0
	for _, s := range strs {
		if n, ok := monthsIn(s); ok {
			months = n
		}
		if months == 0 {
			continue
		}
		if p, ok := m.find(s); ok {
			plans = append(plans, models.PricingPlan{Months: months, Price: normalize.Price(p, f)})
			months = 0
		}
	}
	if len(plans) == 0 {
		return extract.Missing[[]models.PricingPlan]()
	}
	return extract.Found(plans, extract.SourceMarkup)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
