package domain

import (
	"strings"
	"unicode"
)

const (
	MinModelYear = 1900
	MaxModelYear = 2030
)

var serialSeparators = strings.NewReplacer("-", "", " ", "", ".", "")

// ValidSerialNumber reports whether s looks like a manufacturer serial number:
// once dashes, spaces and dots are removed, 3 to 20 letters or digits remain.
func ValidSerialNumber(s string) bool {
	cleaned := []rune(serialSeparators.Replace(s))
	if len(cleaned) < 3 || len(cleaned) > 20 {
		return false
	}
	for _, r := range cleaned {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// YearInRange reports whether year lies in [lo, hi].
func YearInRange(year, lo, hi int) bool {
	return lo <= year && year <= hi
}

// ValidCurrencyCode reports whether s has the shape of an ISO 4217 code.
func ValidCurrencyCode(s string) bool {
	if len(s) != 3 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return false
		}
	}
	return true
}
