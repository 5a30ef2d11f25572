package bankimport

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseMoney(t *testing.T) {
	tests := []struct {
		input    string
		currency string
		expected string
		err      bool
	}{
		{"£1,234.56", "GBP", "1234.56", false},
		{"£0.99", "GBP", "0.99", false},
		{"$12.00", "USD", "12", false},
		{"1,500", "GBP", "1500", false},
		{"42.10", "USD", "42.1", false},
		{" £2.50 ", "GBP", "2.5", false},
		{"", "GBP", "0", false},
		{"   ", "GBP", "0", false},
		{"£", "GBP", "0", false},
		{"abc", "GBP", "", true},
		{"12.3.4", "USD", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseMoney(tt.input, tt.currency)
			if (err != nil) != tt.err {
				t.Errorf("ParseMoney(%q, %q) error = %v, wantErr %v", tt.input, tt.currency, err, tt.err)
				return
			}
			if tt.err {
				return
			}
			want, _ := decimal.NewFromString(tt.expected)
			if !got.Equal(want) {
				t.Errorf("ParseMoney(%q, %q) = %s, want %s", tt.input, tt.currency, got, want)
			}
		})
	}
}

func TestFormatMoney(t *testing.T) {
	d := decimal.RequireFromString("1234.5")
	if got := FormatMoney(d, "GBP"); got != "£1,234.50" {
		t.Errorf("FormatMoney() = %q want %q", got, "£1,234.50")
	}
	if got := FormatMoney(decimal.Decimal{}, "USD"); got != "$0.00" {
		t.Errorf("FormatMoney() = %q want %q", got, "$0.00")
	}
}
