// Package format renders domain values for display.
package format

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ErrUnknownCurrency is returned when a currency code is not an ISO 4217 code.
var ErrUnknownCurrency = errors.New("unknown currency")

//nolint:gochecknoglobals // Global printer is idiomatic for x/text/message usage.
var printer = message.NewPrinter(language.English)

// Currency formats an amount given in the currency's minor units, e.g.
// Currency(123450, "USD") returns "$1,234.50". An unrecognized code is
// rendered as a prefix with two decimal places.
func Currency(minor int64, code string) string {
	s, err := ParseCurrency(minor, code)
	if err != nil {
		return strings.ToUpper(code) + " " + amount(minor, 2)
	}
	return s
}

// ParseCurrency is Currency with an error for an unrecognized code.
func ParseCurrency(minor int64, code string) (string, error) {
	unit, err := currency.ParseISO(strings.ToUpper(code))
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrUnknownCurrency, code)
	}
	scale, _ := currency.Standard.Rounding(unit)
	sym := printer.Sprint(currency.NarrowSymbol(unit))

	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return sign + sym + amount(minor, scale), nil
}

// amount renders a non-negative minor-unit value with thousand separators.
func amount(minor int64, scale int) string {
	if minor < 0 {
		return "-" + amount(-minor, scale)
	}
	if scale <= 0 {
		return printer.Sprintf("%d", minor)
	}
	div := int64(1)
	for range scale {
		div *= 10
	}
	return printer.Sprintf("%d", minor/div) + fmt.Sprintf(".%0*d", scale, minor%div)
}
