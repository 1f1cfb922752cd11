package schema

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Convention is the decimal separator a numeric column is written with.
type Convention int

const (
	// DecimalPoint parses "1234.56".
	DecimalPoint Convention = iota
	// DecimalComma parses "1234,56" and "1.234,56".
	DecimalComma
)

func (c Convention) String() string {
	if c == DecimalComma {
		return "decimal-comma"
	}
	return "decimal-point"
}

const (
	// DateLayout is the canonical ISO date layout.
	DateLayout = "2006-01-02"
	// LocalDateLayout is the day-first layout used by Brazilian bank exports.
	LocalDateLayout = "02/01/2006"
)

// ParseDecimal parses a numeric cell under the given convention.
func ParseDecimal(s string, c Convention) (decimal.Decimal, error) {
	v := strings.TrimSpace(s)
	if v == "" {
		return decimal.Zero, fmt.Errorf("empty decimal")
	}
	if c == DecimalComma {
		if strings.Count(v, ",") > 1 {
			return decimal.Zero, fmt.Errorf("parsing decimal %q: more than one decimal comma", s)
		}
		intPart, frac, hasFrac := strings.Cut(v, ",")
		if digits := strings.TrimLeft(intPart, "+-"); strings.Contains(digits, ".") {
			if !IsGrouped(digits) {
				return decimal.Zero, fmt.Errorf("parsing decimal %q: misplaced thousands separator", s)
			}
			intPart = strings.ReplaceAll(intPart, ".", "")
		}
		v = intPart
		if hasFrac {
			v += "." + frac
		}
	} else if strings.Contains(v, ",") {
		return decimal.Zero, fmt.Errorf("parsing decimal %q: unexpected comma", s)
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing decimal %q: %w", s, err)
	}
	return d, nil
}

// IsGrouped reports whether s is digits split by "." into a leading group of
// one to three digits followed by groups of exactly three.
func IsGrouped(s string) bool {
	groups := strings.Split(s, ".")
	if len(groups[0]) == 0 || len(groups[0]) > 3 {
		return false
	}
	for _, g := range groups[1:] {
		if len(g) != 3 {
			return false
		}
	}
	return true
}

// ParseDate parses a date cell, trying each layout in order. With no
// layouts, only the canonical ISO layout is accepted.
func ParseDate(s string, layouts ...string) (time.Time, error) {
	if len(layouts) == 0 {
		layouts = []string{DateLayout}
	}
	v := strings.TrimSpace(s)
	var firstErr error
	for _, layout := range layouts {
		t, err := time.Parse(layout, v)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, fmt.Errorf("parsing date %q: %w", s, firstErr)
}
