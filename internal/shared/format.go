package shared

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultLocale is used when the caller does not provide one.
var DefaultLocale = language.English

// FormatAmount renders a monetary value with grouping and two decimals.
func FormatAmount(tag language.Tag, value float64) string {
	return message.NewPrinter(tag).Sprintf("%.2f", value)
}

// FormatQty renders whole quantities without decimals and fractional ones with
// three.
func FormatQty(tag language.Tag, value float64) string {
	p := message.NewPrinter(tag)
	if value == float64(int64(value)) {
		return p.Sprintf("%d", int64(value))
	}
	return p.Sprintf("%.3f", value)
}

// FormatPercent renders a percentage with up to two decimals.
func FormatPercent(tag language.Tag, value float64) string {
	return message.NewPrinter(tag).Sprintf("%.2f%%", value)
}

// LocaleFromHeader parses an Accept-Language header, falling back to
// DefaultLocale.
func LocaleFromHeader(header string) language.Tag {
	if header == "" {
		return DefaultLocale
	}
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return DefaultLocale
	}
	return tags[0]
}
