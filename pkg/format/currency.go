// Package format provides currency string formatting helpers.
package format

import (
	"fmt"
	"math"
	"strings"
)

// Euro returns a currency string with a euro sign and Italian-style
// separators (e.g., "-€1.234,56").
func Euro(amount float64) string {
	formatted := formatPositiveEuro(math.Abs(amount))
	if amount < 0 {
		return "-€" + formatted
	}
	return "€" + formatted
}

// NumericEuro returns a currency string without a currency symbol but with
// separators (e.g., "-1.234,56").
func NumericEuro(amount float64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
	}
	return sign + formatPositiveEuro(math.Abs(amount))
}

func formatPositiveEuro(value float64) string {
	formatted := fmt.Sprintf("%.2f", value)
	parts := strings.SplitN(formatted, ".", 2)
	intPart := parts[0]
	decPart := "00"
	if len(parts) == 2 {
		decPart = parts[1]
	}

	// Thousands separator is a dot, decimal separator a comma.
	if len(intPart) > 3 {
		var builder strings.Builder
		for i, digit := range intPart {
			if i > 0 && (len(intPart)-i)%3 == 0 {
				builder.WriteByte('.')
			}
			builder.WriteRune(digit)
		}
		intPart = builder.String()
	}

	return intPart + "," + decPart
}
