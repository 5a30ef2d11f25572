package bankimport

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"github.com/etnz/bankimport/date"
)

// savings export columns looked up by name.
const (
	savingsDate        = "Date"
	savingsDescription = "Description"
	savingsMoneyIn     = "Money in"
	savingsMoneyOut    = "Money out"
)

// savingsDateLayout matches dates like "Jun 3, 2025".
const savingsDateLayout = "Jan 2, 2006"

// SavingsRow is one row of a savings account export, already netted:
// Amount = money in - money out, in the account currency.
type SavingsRow struct {
	Date        date.Date
	Description string
	Amount      decimal.Decimal
}

// ReadSavingsRows parses a savings export. The money columns carry the
// account currency's symbol and thousands separators ("£1,234.56"); empty
// cells count as zero. Rows with an unparseable date are dropped.
func ReadSavingsRows(r io.Reader, currency string) ([]SavingsRow, error) {
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
	for _, required := range []string{savingsDate, savingsDescription, savingsMoneyIn, savingsMoneyOut} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("%w: missing column %q in savings export", ErrConfig, required)
		}
	}

	var rows []SavingsRow
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

		t, err := time.Parse(savingsDateLayout, field(record, columns[savingsDate]))
		if err != nil {
			continue
		}
		moneyIn, err := ParseMoney(field(record, columns[savingsMoneyIn]), currency)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line-1, err)
		}
		moneyOut, err := ParseMoney(field(record, columns[savingsMoneyOut]), currency)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line-1, err)
		}

		rows = append(rows, SavingsRow{
			Date:        date.New(t.Date()),
			Description: field(record, columns[savingsDescription]),
			Amount:      moneyIn.Sub(moneyOut),
		})
	}
	return rows, nil
}

// NormalizeSavings converts savings rows into canonical transactions for the
// named account. Unlike the checking path, a row with no same-day rate is
// skipped with a warning; the two sources have different operational
// expectations and the asymmetry is intentional.
func NormalizeSavings(rows []SavingsRow, account, currency string, rates *RateTable) []Transaction {
	txs := make([]Transaction, 0, len(rows))
	for _, row := range rows {
		rate, ok := rates.Rate(row.Date, currency)
		if !ok {
			log.Printf("warning, no exchange rate for %s on %s, skipping row", currency, row.Date)
			continue
		}
		converted := row.Amount.Mul(rate).Round(2)
		txs = append(txs, NewTransaction(row.Date, row.Description, account, converted, row.Amount))
	}
	return txs
}

// SavingsDateRange returns the range covered by the rows.
func SavingsDateRange(rows []SavingsRow) date.Range {
	days := make([]date.Date, 0, len(rows))
	for _, row := range rows {
		days = append(days, row.Date)
	}
	return date.NewRange(days...)
}
