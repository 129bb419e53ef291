package models

// PricingOffer groups plans of one (service, region, tier).
type PricingOffer struct {
	Service string        `json:"service"`
	Region  string        `json:"region"`
	Tier    string        `json:"tier"`
	Image   string        `json:"image"`
	Plans   []PricingPlan `json:"plans"`
}

type PricingPlan struct {
	Period          string `json:"period"`
	Price           string `json:"price"`
	OldPrice        string `json:"old_price,omitempty"`
	DiscountPercent string `json:"discount_percent,omitempty"`

	Months int `json:"-"`
}

type OfferKey struct {
	Service string
	Region  string
	Tier    string
}

func (o PricingOffer) Key() OfferKey {
	return OfferKey{Service: o.Service, Region: o.Region, Tier: o.Tier}
}
