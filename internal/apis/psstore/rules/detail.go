package rules

import (
	"fmt"
	"strings"

	"psparser/internal/apis/psstore/responses"
	"psparser/internal/extract"
)

const releaseInfo = `dd[data-qa="gameInfo#releaseInformation#%s-value"]`

func infoSelector(key string) string {
	return fmt.Sprintf(releaseInfo, key)
}

// Detail reads release information, languages and subscription hints from
// a product page.
func Detail(doc *extract.Document) (responses.Detail, error) {
	ld, ldErr := productLD(doc)
	root := doc.Selection()

	structured := func(keys ...string) extract.Strategy[string] {
		return func() extract.Field[string] {
			if ld == nil {
				if ldErr != nil {
					return extract.Malformed[string](extract.SourceStructured, ldErr)
				}
				return extract.Missing[string]()
			}
			if s := extract.PickString(ld, keys...); s != "" {
				return extract.Found(s, extract.SourceStructured)
			}
			return extract.Missing[string]()
		}
	}
	markup := func(key string) extract.Strategy[string] {
		return func() extract.Field[string] { return markupText(root.Find(infoSelector(key))) }
	}

	var d responses.Detail

	d.ReleaseDate = extract.First(structured("releaseDate", "datePublished"), markup("releaseDate"))

	d.Platforms = extract.First(
		func() extract.Field[[]string] {
			if ld == nil {
				if ldErr != nil {
					return extract.Malformed[[]string](extract.SourceStructured, ldErr)
				}
				return extract.Missing[[]string]()
			}
			return platformsLD(ld["gamePlatform"])
		},
		func() extract.Field[[]string] {
			f := markup("platform")()
			if !f.OK() {
				return extract.Missing[[]string]()
			}
			return extract.Found(splitList(f.Value), extract.SourceMarkup)
		},
	)

	d.Voice = markup("voice")()
	d.Subtitles = markup("subtitles")()
	d.VoicePS5 = markup("ps5Voice")()
	d.SubtitlesPS5 = markup("ps5Subtitles")()
	d.VoicePS4 = markup("ps4Voice")()
	d.SubtitlesPS4 = markup("ps4Subtitles")()

	cta := root.Find(`[data-qa^="mfeCtaMain"], .psw-service-upsell`)
	d.Subscription = firstText(cta,
		`[data-qa*="discountDescriptor"]`,
		`span[data-qa*="service-upsell#descriptorText"]`,
	)
	d.Icons = icons(cta)

	return d, nil
}

// productLD finds the first Product or VideoGame object in JSON-LD blocks.
func productLD(doc *extract.Document) (map[string]any, error) {
	vals, errs := doc.JSONScripts("application/ld+json")

	var found map[string]any
	for _, v := range vals {
		extract.Walk(v, func(m map[string]any) {
			if found != nil {
				return
			}
			switch t, _ := m["@type"].(string); t {
			case "Product", "VideoGame":
				found = m
			}
		})
		if found != nil {
			return found, nil
		}
	}
	if len(errs) > 0 {
		return nil, errs[0]
	}
	return nil, nil
}

func platformsLD(v any) extract.Field[[]string] {
	switch t := v.(type) {
	case string:
		if list := splitList(t); len(list) > 0 {
			return extract.Found(list, extract.SourceStructured)
		}
	case []any:
		var list []string
		for _, x := range t {
			if s, ok := extract.AsString(x); ok {
				list = append(list, s)
			}
		}
		if len(list) > 0 {
			return extract.Found(list, extract.SourceStructured)
		}
	}
	return extract.Missing[[]string]()
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
