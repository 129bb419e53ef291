package pricing

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"psparser/internal/extract"
	"psparser/internal/normalize"
)

var currencies = map[normalize.PriceFormat]string{
	normalize.FormatTR: `(?:TL|₺|TRY)`,
	normalize.FormatIN: `(?:Rs\.?|₹|INR)`,
}

type priceMatcher struct {
	amount *regexp.Regexp
	// gta finds an amount that follows a GTA+ label on the same line.
	gta *regexp.Regexp
}

func newMatcher(cur string) priceMatcher {
	amount := cur + `\s*\d[\d.,]*|\d[\d.,]*\s*` + cur
	return priceMatcher{
		amount: regexp.MustCompile(amount),
		gta:    regexp.MustCompile(`GTA\+.*?(` + amount + `)`),
	}
}

var (
	matchers = map[normalize.PriceFormat]priceMatcher{
		normalize.FormatTR: newMatcher(currencies[normalize.FormatTR]),
		normalize.FormatIN: newMatcher(currencies[normalize.FormatIN]),
	}
	anyMatcher = newMatcher(`(?:TL|₺|Rs\.?|₹|INR|\$|€|£)`)
)

func matcherFor(f normalize.PriceFormat) priceMatcher {
	if m, ok := matchers[f]; ok {
		return m
	}
	return anyMatcher
}

// find returns the first currency amount inside s.
func (m priceMatcher) find(s string) (string, bool) {
	p := m.amount.FindString(s)
	return strings.TrimSpace(p), p != ""
}

// firstIn scans strings in order for a currency amount.
func (m priceMatcher) firstIn(strs []string) (string, bool) {
	for _, s := range strs {
		if p, ok := m.find(s); ok {
			return p, true
		}
	}
	return "", false
}

func (m priceMatcher) firstInSel(sel *goquery.Selection) (string, bool) {
	return m.firstIn(extract.Strings(sel))
}

var monthsRe = regexp.MustCompile(`(?i)(\d+)\s*-?\s*months?`)

// monthsIn parses "1-month", "12 months" and similar.
func monthsIn(s string) (int, bool) {
	m := monthsRe.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
