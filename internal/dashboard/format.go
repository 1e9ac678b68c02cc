package dashboard

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var ptBR = message.NewPrinter(language.BrazilianPortuguese)

// FormatCount prints n with Brazilian thousands separators: 1234567 -> "1.234.567".
func FormatCount(n int64) string {
	return ptBR.Sprintf("%d", n)
}

// FormatPercent prints a percentage with two decimals and a decimal comma: 2.35 -> "2,35%".
func FormatPercent(v float64) string {
	return ptBR.Sprintf("%.2f%%", v)
}

// FormatRatio prints a 0..1 ratio as a percentage: 0.0499 -> "4,99%".
func FormatRatio(v float64) string {
	return FormatPercent(v * 100)
}
