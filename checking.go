package bankimport

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"github.com/etnz/bankimport/date"
)

// checking export columns looked up by name; the export carries more
// columns (fees, products, ...) which are ignored.
const (
	checkingState       = "State"
	checkingStartedDate = "Started Date"
	checkingCurrency    = "Currency"
	checkingDescription = "Description"
	checkingAmount      = "Amount"
)

// checkingDateLayouts are the timestamp shapes seen in checking exports.
var checkingDateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// CheckingRow is one settled or pending row of a checking account export.
type CheckingRow struct {
	// Date is the day the transaction started.
	Date        date.Date
	Description string
	// Amount is in Currency, negative for spending.
	Amount   decimal.Decimal
	Currency string
}

// ReadCheckingRows parses a checking export. Rows are kept only when their
// settlement state is COMPLETED or PENDING and their started date parses;
// rows with an unparseable date are dropped.
func ReadCheckingRows(r io.Reader) ([]CheckingRow, error) {
	in := csv.NewReader(r)
	in.FieldsPerRecord = -1
	header, err := in.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read headers: %w", err)
	}
	cleanHeader(header)

	columns := make(map[string]int, len(header))
	for i, h := range header {
		columns[h] = i
	}
	for _, required := range []string{checkingState, checkingStartedDate, checkingCurrency, checkingDescription, checkingAmount} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("%w: missing column %q in checking export", ErrConfig, required)
		}
	}

	var rows []CheckingRow
	line := 2
	for {
		record, err := in.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading line %d: %w", line, err)
		}
		line++

		if state := field(record, columns[checkingState]); state != "COMPLETED" && state != "PENDING" {
			continue
		}
		on, ok := parseCheckingDate(field(record, columns[checkingStartedDate]))
		if !ok {
			continue
		}
		amount, err := decimal.NewFromString(field(record, columns[checkingAmount]))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid Amount %q: %w", line-1, field(record, columns[checkingAmount]), err)
		}

		rows = append(rows, CheckingRow{
			Date:        on,
			Description: field(record, columns[checkingDescription]),
			Amount:      amount,
			Currency:    field(record, columns[checkingCurrency]),
		})
	}
	return rows, nil
}

// NormalizeChecking converts checking rows into canonical transactions for
// the named account. This is the strict path: a single missing same-day rate
// aborts the whole run.
func NormalizeChecking(rows []CheckingRow, account string, rates *RateTable) ([]Transaction, error) {
	txs := make([]Transaction, 0, len(rows))
	for _, row := range rows {
		rate, ok := rates.Rate(row.Date, row.Currency)
		if !ok {
			return nil, fmt.Errorf("%w: no exchange rate found for %s on %s", ErrNoRate, row.Currency, row.Date)
		}
		converted := row.Amount.Mul(rate).Round(2)
		txs = append(txs, NewTransaction(row.Date, row.Description, account, converted, row.Amount))
	}
	return txs, nil
}

// CheckingCurrencies returns the distinct currencies present, sorted.
func CheckingCurrencies(rows []CheckingRow) []string {
	currencies := make([]string, 0, len(rows))
	for _, row := range rows {
		currencies = append(currencies, row.Currency)
	}
	return normalizeCurrencies(currencies)
}

// CheckingDateRange returns the range covered by the rows.
func CheckingDateRange(rows []CheckingRow) date.Range {
	days := make([]date.Date, 0, len(rows))
	for _, row := range rows {
		days = append(days, row.Date)
	}
	return date.NewRange(days...)
}

// parseCheckingDate parses a started-date timestamp, trying each known
// layout, and keeps only the calendar day.
func parseCheckingDate(s string) (date.Date, bool) {
	for _, layout := range checkingDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return date.New(t.Date()), true
		}
	}
	return date.Date{}, false
}

// field returns the i-th value of a record, tolerating short rows.
func field(record []string, i int) string {
	if i >= len(record) {
		return ""
	}
	return record[i]
}
