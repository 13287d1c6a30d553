package property

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount coerces raw form input into a non-negative amount.
// Unparseable or negative input keeps prev.
func ParseAmount(raw string, prev decimal.Decimal) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil || d.IsNegative() {
		return prev
	}
	return d
}

// ParseCount coerces raw form input into a non-negative integer.
// Unparseable or negative input keeps prev.
func ParseCount(raw string, prev int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return prev
	}
	return n
}

// ParseRate coerces a commission fraction. Values outside [0,1] keep prev.
func ParseRate(raw string, prev decimal.Decimal) decimal.Decimal {
	d := ParseAmount(raw, prev)
	if d.GreaterThan(decimal.NewFromInt(1)) {
		return prev
	}
	return d
}
