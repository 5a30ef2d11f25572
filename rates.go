package bankimport

import (
	"fmt"
	"log"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/etnz/bankimport/date"
	"github.com/etnz/bankimport/exchangerate"
)

// ReportingCurrency is the common currency all balances and amounts are
// normalized into.
const ReportingCurrency = "USD"

var one = decimal.NewFromInt(1)

// ratePoint keys a conversion factor by day and currency.
type ratePoint struct {
	on       date.Date
	currency string
}

// RateTable maps a (day, currency) pair to the multiplier that converts one
// unit of that currency into the reporting currency on that day.
//
// Absence of an entry means the rate is unknown for that day, never zero.
type RateTable struct {
	rates map[ratePoint]decimal.Decimal
}

// Rate returns the multiplier for one unit of currency on the given day.
func (t *RateTable) Rate(on date.Date, currency string) (decimal.Decimal, bool) {
	r, ok := t.rates[ratePoint{on, currency}]
	return r, ok
}

// Len returns the number of (day, currency) entries in the table.
func (t *RateTable) Len() int { return len(t.rates) }

// checkSource rejects quote tables not sourced in the reporting currency.
// Inverting a quote like "EURGBP" into USD would need a cross rate this tool
// does not compute, so the restriction is an explicit failure.
func checkSource(source string) error {
	if source != ReportingCurrency {
		return fmt.Errorf("%w: unsupported API source currency %q, expected %q", ErrNoData, source, ReportingCurrency)
	}
	return nil
}

// BuildRateTable converts raw daily quotes into a RateTable covering the given
// currencies. The reporting currency converts with factor exactly 1 on every
// quoted day. Any other currency converts with 1/quote["USD"+currency]; days
// where that quote is missing or zero get no entry.
func BuildRateTable(quotes exchangerate.Quotes, source string, currencies []string) (*RateTable, error) {
	if err := checkSource(source); err != nil {
		return nil, err
	}

	normalized := normalizeCurrencies(currencies)
	table := &RateTable{rates: make(map[ratePoint]decimal.Decimal)}

	for day, daily := range quotes {
		on, err := date.Parse(day)
		if err != nil {
			log.Printf("warning, skipping unparseable quote date %q", day)
			continue
		}
		for _, currency := range normalized {
			if currency == ReportingCurrency {
				table.rates[ratePoint{on, currency}] = one
				continue
			}
			quote, ok := daily[source+currency]
			if !ok || quote.IsZero() {
				continue
			}
			table.rates[ratePoint{on, currency}] = one.Div(quote)
		}
	}
	return table, nil
}

// BuildRateSeries is the single-currency form of BuildRateTable: a
// chronological series of conversion factors for one currency, with the same
// handling of missing and zero quotes.
func BuildRateSeries(quotes exchangerate.Quotes, source, currency string) (*date.History[decimal.Decimal], error) {
	if err := checkSource(source); err != nil {
		return nil, err
	}

	series := new(date.History[decimal.Decimal])
	for day, daily := range quotes {
		on, err := date.Parse(day)
		if err != nil {
			log.Printf("warning, skipping unparseable quote date %q", day)
			continue
		}
		if currency == ReportingCurrency {
			series.Append(on, one)
			continue
		}
		quote, ok := daily[source+currency]
		if !ok || quote.IsZero() {
			continue
		}
		series.Append(on, one.Div(quote))
	}
	return series, nil
}

// normalizeCurrencies drops empty codes, deduplicates and sorts.
func normalizeCurrencies(currencies []string) []string {
	normalized := make([]string, 0, len(currencies))
	for _, c := range currencies {
		if c == "" {
			continue
		}
		if !slices.Contains(normalized, c) {
			normalized = append(normalized, c)
		}
	}
	slices.Sort(normalized)
	return normalized
}
