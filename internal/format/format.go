/*
* Utility functions for formatting output.
 */
package format

import (
	"fmt"
	"strconv"
	"strings"
)

// Print string with max length, truncating with ellipsis.
func Abbrev(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}

	return string(runes[:max-1]) + "…"
}

// Formats an integer with commas separating thousands.
func Number(n int) string {
	s := strconv.Itoa(n)

	sign := ""
	if n < 0 {
		sign = "-"
		s = s[1:]
	}

	if len(s) <= 3 {
		return sign + s
	}

	var b strings.Builder
	b.WriteString(sign)

	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}

	for i := lead; i < len(s); i += 3 {
		if b.Len() > len(sign) {
			b.WriteRune(',')
		}
		b.WriteString(s[i : i+3])
	}

	return b.String()
}

// Formats a fraction in [0, 1] as a percentage with one decimal place.
func Percent(fraction float64) string {
	return fmt.Sprintf("%.1f%%", fraction*100)
}
