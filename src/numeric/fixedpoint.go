// Package numeric implements the exact scaled-integer arithmetic used for
// prices and quantities throughout the engine. Floating point never appears
// on a code path that reaches the book.
package numeric

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Scale is the number of fractional digits carried by Price and Quantity:
// a raw value of 1 represents 1/Scale of a unit.
const Scale int64 = 10000

func formatScaled(raw int64) string {
	sign := ""
	abs := raw
	if abs < 0 {
		sign = "-"
		abs = -abs
	}
	whole := abs / Scale
	frac := abs % Scale
	return fmt.Sprintf("%s%d.%04d", sign, whole, frac)
}

// parseScaled converts a decimal string such as "103.0000" or "-1.5" into
// its raw scaled representation, truncating toward zero past four
// fractional digits.
func parseScaled(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("numeric: empty value")
	}

	neg := false
	switch s[0] {
	case '-':
		neg = true
		s = s[1:]
	case '+':
		s = s[1:]
	}

	whole := s
	frac := ""
	if idx := strings.IndexByte(s, '.'); idx >= 0 {
		whole = s[:idx]
		frac = s[idx+1:]
	}
	if whole == "" {
		whole = "0"
	}
	if len(frac) > 4 {
		frac = frac[:4] // truncate toward zero, never round
	}
	for len(frac) < 4 {
		frac += "0"
	}

	wholeVal, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("numeric: invalid value %q: %w", s, err)
	}
	fracVal, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("numeric: invalid value %q: %w", s, err)
	}

	raw := wholeVal*Scale + fracVal
	if neg {
		raw = -raw
	}
	return raw, nil
}

// fromFloat performs round_toward_zero(x * Scale); used only at the edges
// (test fixtures, ad-hoc tooling) and never on a path the matching engine
// itself executes.
func fromFloat(x float64) int64 {
	return int64(math.Trunc(x * float64(Scale)))
}
