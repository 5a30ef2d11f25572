package bankimport

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/etnz/bankimport/date"
)

// FindPriorBalance scans the dated output folders for filename and returns
// the most recent value of column for the account, considering only folders
// dated strictly before runDate (a zero runDate considers them all).
//
// Zero candidate files is not an error: found is false and the caller
// decides whether "no history yet" is fatal. A candidate file that lacks the
// account or the column is a configuration error.
func FindPriorBalance(outputRoot, filename string, runDate date.Date, column, account string) (value decimal.Decimal, found bool, err error) {
	entries, err := os.ReadDir(outputRoot)
	if err != nil {
		return decimal.Decimal{}, false, nil
	}

	var latest date.Date
	var candidate string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		on, err := date.Parse(entry.Name())
		if err != nil {
			continue
		}
		if !runDate.IsZero() && !on.Before(runDate) {
			continue
		}
		path := filepath.Join(outputRoot, entry.Name(), filename)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if candidate == "" || on.After(latest) {
			latest, candidate = on, path
		}
	}
	if candidate == "" {
		return decimal.Decimal{}, false, nil
	}

	f, err := os.Open(candidate)
	if err != nil {
		return decimal.Decimal{}, false, err
	}
	defer f.Close()
	t, err := readTable(f)
	if err != nil {
		return decimal.Decimal{}, false, fmt.Errorf("reading %s: %w", candidate, err)
	}

	if _, ok := t.columns["Account"]; !ok {
		return decimal.Decimal{}, false, fmt.Errorf("%w: missing column %q in %s", ErrConfig, "Account", candidate)
	}
	rows := make([][]string, 0, len(t.rows))
	for _, row := range t.rows {
		if name, _ := t.cell(row, "Account"); name == account {
			rows = append(rows, row)
		}
	}
	if len(rows) == 0 {
		return decimal.Decimal{}, false, fmt.Errorf("%w: no rows found for account %q in %s", ErrConfig, account, candidate)
	}

	if _, ok := t.columns["Date"]; ok {
		sort.SliceStable(rows, func(i, j int) bool {
			a, _ := t.cell(rows[i], "Date")
			b, _ := t.cell(rows[j], "Date")
			return strings.Compare(a, b) < 0
		})
	}

	if _, ok := t.columns[column]; !ok {
		return decimal.Decimal{}, false, fmt.Errorf("%w: missing column %q in %s", ErrConfig, column, candidate)
	}

	// last non-missing value wins
	for i := len(rows) - 1; i >= 0; i-- {
		cell, _ := t.cell(rows[i], column)
		if strings.TrimSpace(cell) == "" {
			continue
		}
		d, err := decimal.NewFromString(strings.TrimSpace(cell))
		if err != nil {
			return decimal.Decimal{}, false, fmt.Errorf("%w: invalid %q value %q in %s", ErrConfig, column, cell, candidate)
		}
		return d, true, nil
	}
	return decimal.Decimal{}, false, fmt.Errorf("%w: no values found for %q in %s", ErrConfig, column, candidate)
}
