package pricing

import (
	"sort"

	"psparser/internal/domain/models"
)

// OfferSet accumulates offers keyed by (service, region, tier) in first-seen
// order.
type OfferSet struct {
	index  map[models.OfferKey]int
	offers []models.PricingOffer
}

func NewOfferSet() *OfferSet {
	return &OfferSet{index: make(map[models.OfferKey]int)}
}

// Add merges o into the set. Plans are kept sorted by duration; a plan for
// a duration already present only fills the fields that are still empty.
func (s *OfferSet) Add(o models.PricingOffer) {
	i, ok := s.index[o.Key()]
	if !ok {
		i = len(s.offers)
		s.index[o.Key()] = i
		s.offers = append(s.offers, models.PricingOffer{
			Service: o.Service,
			Region:  o.Region,
			Tier:    o.Tier,
			Image:   o.Image,
			Plans:   []models.PricingPlan{},
		})
	}

	cur := &s.offers[i]
	if cur.Image == "" {
		cur.Image = o.Image
	}
	for _, p := range o.Plans {
		cur.Plans = mergePlan(cur.Plans, p)
	}
	sort.SliceStable(cur.Plans, func(a, b int) bool {
		return cur.Plans[a].Months < cur.Plans[b].Months
	})
}

func mergePlan(plans []models.PricingPlan, p models.PricingPlan) []models.PricingPlan {
	for i := range plans {
		if plans[i].Months != p.Months {
			continue
		}
		if plans[i].Price == "" {
			plans[i].Price = p.Price
		}
		if plans[i].OldPrice == "" {
			plans[i].OldPrice = p.OldPrice
		}
		if plans[i].DiscountPercent == "" {
			plans[i].DiscountPercent = p.DiscountPercent
		}
		return plans
	}
	return append(plans, p)
}

func (s *OfferSet) Len() int { return len(s.offers) }

// Offers returns offers in first-seen order.
func (s *OfferSet) Offers() []models.PricingOffer {
	out := make([]models.PricingOffer, len(s.offers))
	copy(out, s.offers)
	return out
}
