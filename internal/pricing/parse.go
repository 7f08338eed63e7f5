package pricing

import (
	"math"
	"strconv"
	"strings"
)

// ParseNumber reads a user-entered decimal. The first comma is treated as the
// decimal separator and the longest numeric prefix is used, so "12,5 g" reads
// as 12.5. Empty or unreadable input is 0.
func ParseNumber(raw string) float64 {
	v, _ := ParseDecimal(raw)
	return v
}

// ParseDecimal is ParseNumber that also reports whether a number was found.
func ParseDecimal(raw string) (float64, bool) {
	s := strings.TrimSpace(strings.Replace(raw, ",", ".", 1))
	n := numericPrefixLen(s)
	if n == 0 {
		return 0, false
	}

	v, err := strconv.ParseFloat(s[:n], 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// numericPrefixLen returns the length of the longest prefix of s shaped like
// [+-]digits[.digits][(e|E)[+-]digits], or 0 if s has no digits up front.
func numericPrefixLen(s string) int {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}

	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
			digits++
		}
	}
	if digits == 0 {
		return 0
	}

	end := i
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		k := j
		for k < len(s) && isDigit(s[k]) {
			k++
		}
		if k > j {
			end = k
		}
	}
	return end
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
