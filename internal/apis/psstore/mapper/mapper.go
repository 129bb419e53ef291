package mapper

import (
	"strings"

	"psparser/internal/apis/psstore"
	"psparser/internal/domain/models"
	"psparser/internal/extract"
	"psparser/internal/normalize"
)

type Options struct {
	Region string
	Format normalize.PriceFormat
	Vocab  normalize.Vocabulary
}

// ToItem merges a listing stub with its (possibly empty) detail.
func ToItem(st psstore.Stub, d psstore.Detail, o Options) models.CatalogItem {
	price := normalize.Price(st.Price.Value, o.Format)
	oldPrice := normalize.Price(st.OldPrice.Value, o.Format)

	it := models.CatalogItem{
		Title:           normalize.CleanSpace(st.Title.Value),
		Image:           st.Image.Value,
		Price:           price,
		OldPrice:        oldPrice,
		DiscountPercent: discount(st, price, oldPrice, o.Vocab),
		Link:            st.Link,
		Platforms:       platforms(d),
		Region:          o.Region,
		ReleaseDate:     d.ReleaseDate.Value,
	}

	icons := normalize.JoinIcons(st.Icons, d.Icons)
	it.Subscription = subscription(st, d, icons, o.Vocab)
	it.SubscriptionIcon = strings.Join(icons, ",")

	voice4, voice5 := langPair(o.Vocab, d.VoicePS4, d.VoicePS5, d.Voice)
	subs4, subs5 := langPair(o.Vocab, d.SubtitlesPS4, d.SubtitlesPS5, d.Subtitles)
	if it.HasPlatform(models.PlatformPS4) {
		it.VoicePS4, it.SubtitlesPS4 = &voice4, &subs4
	}
	if it.HasPlatform(models.PlatformPS5) {
		it.VoicePS5, it.SubtitlesPS5 = &voice5, &subs5
	}

	return it
}

func discount(st psstore.Stub, price, oldPrice string, v normalize.Vocabulary) string {
	if st.Discount.OK() {
		return v.Discount(normalize.CleanSpace(st.Discount.Value))
	}
	if oldPrice == "" {
		return ""
	}
	pct, _ := normalize.DiscountPercent(oldPrice, price)
	return pct
}

// subscription keeps the listing label and adopts the product page label
// only when the listing had none.
func subscription(st psstore.Stub, d psstore.Detail, icons []string, v normalize.Vocabulary) string {
	label := st.Subscription.Or(d.Subscription.Value)
	label = v.Discount(normalize.CleanSpace(label))
	return normalize.ResolveSubscription(label, icons)
}

func platforms(d psstore.Detail) []string {
	out := make([]string, 0, len(d.Platforms.Value))
	for _, p := range d.Platforms.Value {
		out = append(out, strings.ToUpper(strings.TrimSpace(p)))
	}
	return out
}

// langPair maps the PS4 and PS5 lists. The platform-neutral list is used
// for both platforms only when neither platform list maps to anything.
func langPair(v normalize.Vocabulary, ps4, ps5, generic extract.Field[string]) (string, string) {
	a, b := v.Languages(ps4.Value), v.Languages(ps5.Value)
	if a == "" && b == "" {
		g := v.Languages(generic.Value)
		return g, g
	}
	return a, b
}
