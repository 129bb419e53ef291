// Package normalize converts storefront text from any locale into the
// canonical forms the front-end expects.
package normalize

import (
	"fmt"
	"strings"
)

type Locale string

const (
	LocaleRU Locale = "ru"
	LocaleEN Locale = "en"
)

// Vocabulary holds the output labels for one front-end locale.
type Vocabulary struct {
	Locale       Locale
	English      string
	Russian      string
	DiscountWord string
}

var (
	RU = Vocabulary{Locale: LocaleRU, English: "Английский", Russian: "Русский", DiscountWord: "скидка"}
	EN = Vocabulary{Locale: LocaleEN, English: "English", Russian: "Russian", DiscountWord: "discount"}
)

// Default is the vocabulary used by the package-level helpers.
var Default = RU

func VocabularyFor(locale string) (Vocabulary, error) {
	switch Locale(strings.ToLower(strings.TrimSpace(locale))) {
	case "", LocaleRU:
		return RU, nil
	case LocaleEN:
		return EN, nil
	default:
		return Vocabulary{}, fmt.Errorf("unknown locale=%q (expected ru|en)", locale)
	}
}

// CleanSpace replaces non-breaking spaces and collapses whitespace runs.
func CleanSpace(s string) string {
	s = strings.NewReplacer("\u00a0", " ", "\u202f", " ", "\u2009", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}
