package bankimport

import (
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// ParseMoney parses a money string as exported by bank statements, where the
// value may carry the currency's symbol and thousands separators, like
// "£1,234.56". An empty or blank value parses to zero.
func ParseMoney(s, currency string) (decimal.Decimal, error) {
	text := s
	if c := money.GetCurrency(currency); c != nil {
		text = strings.ReplaceAll(text, c.Grapheme, "")
	}
	text = strings.ReplaceAll(text, ",", "")
	text = strings.TrimSpace(text)
	if text == "" {
		return decimal.Decimal{}, nil
	}
	d, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid money amount %q: %w", s, err)
	}
	return d, nil
}

// FormatMoney renders an amount with the currency's own symbol and grouping,
// e.g. FormatMoney(1234.5, "GBP") is "£1,234.50". Used for terminal
// summaries only, never for the CSV outputs.
func FormatMoney(d decimal.Decimal, currency string) string {
	// to get a never nil currency I need to call the Money constructor
	cur := *money.New(0, currency).Currency()
	shifted := d.Shift(int32(cur.Fraction))
	return cur.Formatter().Format(shifted.IntPart())
}
