package rules

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"psparser/internal/extract"
	"psparser/internal/normalize"
)

var iconClasses = []struct {
	class string
	icon  string
}{
	{"psw-icon--ps-plus", normalize.IconPSPlus},
	{"psw-icon--3rd-party-ea", normalize.IconEAPlay},
	{"psw-icon--3rd-party-ubisoft", normalize.IconUbisoft},
	{"psw-icon--gta-plus", normalize.IconGTAPlus},
}

// icons lists subscription icons under sel in document order.
func icons(sel *goquery.Selection) []string {
	var found []string
	sel.Find("span").Each(func(_ int, s *goquery.Selection) {
		for _, ic := range iconClasses {
			if s.HasClass(ic.class) {
				found = append(found, ic.icon)
			}
		}
	})
	return normalize.JoinIcons(found)
}

func markupText(sel *goquery.Selection) extract.Field[string] {
	return extract.NonEmpty(extract.SourceMarkup, extract.Text(sel))
}

// firstText returns the first non-empty text among selectors.
func firstText(root *goquery.Selection, selectors ...string) extract.Field[string] {
	for _, s := range selectors {
		if f := markupText(root.Find(s)); f.OK() {
			return f
		}
	}
	return extract.Missing[string]()
}

// pickImage prefers the 440px non-thumbnail rendition, then 230px, then src.
func pickImage(img *goquery.Selection) string {
	srcset, _ := img.Attr("srcset")
	var candidates []string
	for _, part := range strings.Split(srcset, ",") {
		if f := strings.Fields(part); len(f) > 0 {
			candidates = append(candidates, f[0])
		}
	}

	for _, c := range candidates {
		if strings.Contains(c, "w=440") && strings.Contains(c, "thumb=false") {
			return c
		}
	}
	for _, c := range candidates {
		if strings.Contains(c, "w=230") {
			return c
		}
	}
	src, _ := img.Attr("src")
	return strings.TrimSpace(src)
}
