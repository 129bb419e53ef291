package normalize

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var saveRe = regexp.MustCompile(`(?i)^save\s+(\d+)\s*%(\s+more)?$`)

// Discount rewrites storefront promo phrasing:
//
//	"Save 40%"      -> "<discount> 40%"
//	"Save 10% more" -> "<discount> +10%"
//
// Anything else, including "-40%", is returned unchanged.
func (v Vocabulary) Discount(s string) string {
	clean := CleanSpace(s)
	m := saveRe.FindStringSubmatch(clean)
	if m == nil {
		return s
	}
	if m[2] != "" {
		return v.DiscountWord + " +" + m[1] + "%"
	}
	return v.DiscountWord + " " + m[1] + "%"
}

func Discount(s string) string { return Default.Discount(s) }

var hundred = decimal.NewFromInt(100)

// DiscountPercent computes "-N%" from an original and a discounted price,
// N = round((1 - discounted/original) * 100). ok is false when either price
// does not parse or there is no reduction.
func DiscountPercent(original, discounted string) (string, bool) {
	o, ok := ParseAmount(original)
	if !ok || !o.IsPositive() {
		return "", false
	}
	d, ok := ParseAmount(discounted)
	if !ok || d.IsNegative() {
		return "", false
	}

	pct := decimal.NewFromInt(1).Sub(d.Div(o)).Mul(hundred).Round(0)
	if !pct.IsPositive() {
		return "", false
	}
	return "-" + pct.String() + "%", true
}

// ParseAmount extracts a decimal amount from a price string with any
// currency decoration. A single separator followed by exactly three digits
// is read as a thousands separator.
func ParseAmount(s string) (decimal.Decimal, bool) {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' {
			b.WriteRune(r)
		}
	}
	num := strings.Trim(b.String(), ".,")
	if num == "" {
		return decimal.Zero, false
	}

	lastDot := strings.LastIndexByte(num, '.')
	lastComma := strings.LastIndexByte(num, ',')

	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			num = strings.ReplaceAll(num, ".", "")
			num = strings.Replace(num, ",", ".", 1)
		} else {
			num = strings.ReplaceAll(num, ",", "")
		}
	case lastComma >= 0:
		num = normalizeSingleSep(num, ",")
	case lastDot >= 0:
		num = normalizeSingleSep(num, ".")
	}

	d, err := decimal.NewFromString(num)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

func normalizeSingleSep(num, sep string) string {
	parts := strings.Split(num, sep)
	if len(parts) > 2 || len(parts[len(parts)-1]) == 3 {
		return strings.ReplaceAll(num, sep, "")
	}
	return strings.Replace(num, sep, ".", 1)
}
