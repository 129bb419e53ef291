package normalize

import (
	"fmt"
	"regexp"
	"strings"
)

// PriceFormat selects the regional price presentation.
type PriceFormat string

const (
	// FormatTR: "1.299,00 TL", symbol as suffix.
	FormatTR PriceFormat = "tr"
	// FormatIN: "Rs 1,499", symbol as prefix, whole units only.
	FormatIN PriceFormat = "in"
	// FormatPlain only cleans whitespace.
	FormatPlain PriceFormat = "plain"
)

func ParsePriceFormat(s string) (PriceFormat, error) {
	switch PriceFormat(strings.ToLower(strings.TrimSpace(s))) {
	case FormatTR:
		return FormatTR, nil
	case FormatIN:
		return FormatIN, nil
	case FormatPlain, "":
		return FormatPlain, nil
	default:
		return "", fmt.Errorf("unknown price format=%q (expected tr|in|plain)", s)
	}
}

var (
	trSymbolRe   = regexp.MustCompile(`(?i)(₺|TRY|TL)`)
	inSymbolRe   = regexp.MustCompile(`(?i)(₹|INR|Rs\.?)`)
	inPeriodRe   = regexp.MustCompile(`(?i)\s*(/\s*(month|mo|year|yr)|per\s+(month|year))\.?\s*$`)
	inFractionRe = regexp.MustCompile(`\.\d{1,2}$`)
	digitRe      = regexp.MustCompile(`\d`)
)

// Price renders s in the given regional format. Strings without digits
// (labels like "Free" or "Included") only get whitespace cleanup. The
// result is stable under repeated application.
func Price(s string, format PriceFormat) string {
	s = CleanSpace(s)
	if !digitRe.MatchString(s) {
		return s
	}

	switch format {
	case FormatTR:
		amount := strings.ReplaceAll(trSymbolRe.ReplaceAllString(s, ""), " ", "")
		if amount == "" {
			return s
		}
		return amount + " TL"

	case FormatIN:
		s = inPeriodRe.ReplaceAllString(s, "")
		amount := strings.ReplaceAll(inSymbolRe.ReplaceAllString(s, ""), " ", "")
		amount = inFractionRe.ReplaceAllString(amount, "")
		amount = strings.ReplaceAll(amount, ",", "")
		if amount == "" {
			return s
		}
		return "Rs " + groupIndian(amount)

	default:
		return s
	}
}

// groupIndian groups digits the way the Indian storefront does: the last
// three digits, then pairs ("1,00,000").
func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return digits
		}
	}

	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
	var parts []string
	for len(head) > 2 {
		parts = append([]string{head[len(head)-2:]}, parts...)
		head = head[:len(head)-2]
	}
	parts = append([]string{head}, parts...)
	return strings.Join(append(parts, tail), ",")
}

var freeWords = map[string]struct{}{
	"":          {},
	"free":      {},
	"бесплатно": {},
	"ücretsiz":  {},
	"gratis":    {},
}

// IsFree reports whether a listing price denotes a free item.
func IsFree(price string) bool {
	p := strings.ToLower(strings.Join(strings.Fields(CleanSpace(price)), ""))
	_, ok := freeWords[p]
	return ok
}
