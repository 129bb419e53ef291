package models

// CatalogItem is one storefront product as served to the front-end.
// Link is the identity: a link is stored at most once.
type CatalogItem struct {
	Title            string   `json:"title"`
	Image            string   `json:"img"`
	Price            string   `json:"price"`
	OldPrice         string   `json:"old_price"`
	DiscountPercent  string   `json:"discount_percent"`
	Subscription     string   `json:"subscription"`
	SubscriptionIcon string   `json:"subscription_icon"`
	ProductType      string   `json:"product_type"`
	Link             string   `json:"link"`
	Platforms        []string `json:"platforms"`
	Region           string   `json:"region"`
	ReleaseDate      string   `json:"release_date"`

	// present only when the platform is listed in Platforms
	VoicePS4     *string `json:"voice_ps4,omitempty"`
	SubtitlesPS4 *string `json:"subtitles_ps4,omitempty"`
	VoicePS5     *string `json:"voice_ps5,omitempty"`
	SubtitlesPS5 *string `json:"subtitles_ps5,omitempty"`
}

const (
	PlatformPS4 = "PS4"
	PlatformPS5 = "PS5"
)

func (it CatalogItem) HasPlatform(p string) bool {
	for _, v := range it.Platforms {
		if v == p {
			return true
		}
	}
	return false
}
