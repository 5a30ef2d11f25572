package bankimport

import (
	"encoding/csv"
	"fmt"
	"io"
)

// BalanceHeader is the column set of the balance history files, in order.
var BalanceHeader = []string{"Date", "Balance", "Original Balance", "Account"}

// EncodeBalanceHistory writes balance records as CSV. Rows whose reporting
// balance could not be converted get an empty Balance cell, never a zero.
func EncodeBalanceHistory(w io.Writer, records []BalanceRecord) error {
	out := csv.NewWriter(w)
	if err := out.Write(BalanceHeader); err != nil {
		return err
	}
	for _, r := range records {
		balance := ""
		if r.Converted {
			balance = r.Balance.StringFixed(2)
		}
		record := []string{r.Date.String(), balance, r.OriginalBalance.String(), r.Account}
		if err := out.Write(record); err != nil {
			return err
		}
	}
	out.Flush()
	return out.Error()
}

// table is a CSV file read generically: a header and its rows. The
// prior-balance locator reads previous outputs this way because it is asked
// for a column by name, whatever file shape produced it.
type table struct {
	columns map[string]int
	rows    [][]string
}

// readTable reads a whole CSV stream with its header.
func readTable(r io.Reader) (*table, error) {
	in := csv.NewReader(r)
	header, err := in.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read headers: %w", err)
	}
	cleanHeader(header)

	t := &table{columns: make(map[string]int, len(header))}
	for i, h := range header {
		t.columns[h] = i
	}
	for {
		record, err := in.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		t.rows = append(t.rows, record)
	}
	return t, nil
}

// cell returns the value of the named column in the given row.
func (t *table) cell(row []string, column string) (string, bool) {
	i, ok := t.columns[column]
	if !ok || i >= len(row) {
		return "", false
	}
	return row[i], true
}
