// Package formatting parses and prints human-readable byte sizes.
package formatting

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"unicode"
)

var units = []string{"B", "KB", "MB", "GB", "TB"}

// ParseBytes reads sizes such as "512", "64KB" or "1.5 MB" using base-1024
// units. Unit case is ignored.
func ParseBytes(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty byte size")
	}

	split := strings.IndexFunc(s, func(r rune) bool {
		return !unicode.IsDigit(r) && r != '.'
	})
	number, unit := s, ""
	if split >= 0 {
		number, unit = s[:split], strings.ToUpper(strings.TrimSpace(s[split:]))
	}

	value, err := strconv.ParseFloat(number, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid byte size %q", s)
	}
	if unit == "" {
		return int64(value), nil
	}

	exp := slices.Index(units, unit)
	if exp < 0 {
		return 0, fmt.Errorf("unknown byte size unit %q", unit)
	}
	return int64(value * float64(int64(1)<<(10*exp))), nil
}

// FormatBytes prints n with the largest unit that keeps the value at least 1.
func FormatBytes(n int64) string {
	exp := 0
	v := float64(n)
	for v >= 1024 && exp < len(units)-1 {
		v /= 1024
		exp++
	}
	if exp == 0 {
		return fmt.Sprintf("%d B", n)
	}
	return strconv.FormatFloat(v, 'f', 1, 64) + " " + units[exp]
}
