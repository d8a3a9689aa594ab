package validation

import (
	"net/mail"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Basic validators. Each records at most one violation per field and never
// overwrites an earlier one.
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v.add(field, "required")
	}
}

func MaxLen(field, value string, max int, v Violations) {
	if utf8.RuneCountInString(value) > max {
		v.add(field, "too_long")
	}
}

// Email accepts an empty value; pair with Required when mandatory.
func Email(field, value string, v Violations) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	if addr, err := mail.ParseAddress(value); err != nil || addr.Address != value {
		v.add(field, "invalid_email")
	}
}

// LenRange checks a length in characters; use Required for emptiness.
func LenRange(field, value string, min, max int, v Violations) {
	switch n := utf8.RuneCountInString(value); {
	case n < min:
		v.add(field, "too_short")
	case n > max:
		v.add(field, "too_long")
	}
}

func IntRange(field string, val, min, max int, v Violations) {
	if val < min || val > max {
		v.add(field, "out_of_range")
	}
}

func OneOf(field, value string, allowed []string, v Violations) {
	if !slices.Contains(allowed, value) {
		v.add(field, "invalid_choice")
	}
}

func NonNegativeInt(field string, val int, v Violations) {
	if val < 0 {
		v.add(field, "must_not_be_negative")
	}
}

func PositiveDecimal(field string, val decimal.Decimal, v Violations) {
	if !val.IsPositive() {
		v.add(field, "must_be_positive")
	}
}

// MaxDecimals rejects values with more than places fractional digits.
func MaxDecimals(field string, val decimal.Decimal, places int32, v Violations) {
	if !val.Equal(val.Truncate(places)) {
		v.add(field, "too_many_decimals")
	}
}

func (v Violations) add(field, code string) {
	if _, ok := v[field]; !ok {
		v[field] = code
	}
}
