// Package i18n holds per-client language preferences and locale-aware formatting.
package i18n

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

type Language string

const (
	Turkish Language = "tr"
	English Language = "en"
	Russian Language = "ru"
)

const DefaultLanguage = Turkish

var supported = []Language{Turkish, English, Russian}

func Supported() []Language {
	out := make([]Language, len(supported))
	copy(out, supported)
	return out
}

// ParseLanguage accepts "tr", "en", "ru" (case-insensitive, region suffixes ignored).
func ParseLanguage(s string) (Language, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if i := strings.IndexAny(s, "-_"); i > 0 {
		s = s[:i]
	}
	for _, l := range supported {
		if string(l) == s {
			return l, true
		}
	}
	return "", false
}

func (l Language) Tag() language.Tag {
	switch l {
	case English:
		return language.English
	case Russian:
		return language.Russian
	default:
		return language.Turkish
	}
}

// FormatAmount renders d with two decimals and the locale's grouping and decimal
// separators (tr: 1.234,50). Display only.
func FormatAmount(l Language, d decimal.Decimal) string {
	p := message.NewPrinter(l.Tag())
	return p.Sprintf("%.2f", d.Round(2).InexactFloat64())
}
