package dashboard

import (
	"fmt"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	crore = 10_000_000
	lakh  = 100_000
)

var inPrinter = message.NewPrinter(language.MustParse("en-IN"))

// FormatCurrency renders an INR amount the way the dashboard shows it:
// crores and lakhs to two decimals, smaller amounts as a grouped integer.
// Units are picked on the rounded amount, so 99999.6 shows as "1.00 L"
// rather than "1,00,000".
func FormatCurrency(v float64) string {
	switch {
	case v >= crore || roundTo(v/lakh, 2) >= crore/lakh:
		return fmt.Sprintf("%.2f Cr", v/crore)
	case math.Round(v) >= lakh:
		return fmt.Sprintf("%.2f L", v/lakh)
	default:
		return inPrinter.Sprintf("%d", int64(math.Round(v)))
	}
}

func roundTo(v float64, places int) float64 {
	scale := math.Pow10(places)
	return math.Round(v*scale) / scale
}
