package bankimport

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"

	"github.com/etnz/bankimport/date"
	"github.com/etnz/bankimport/exchangerate"
)

// QuoteSource fetches the daily quote tables covering a date range. The
// commands bind it to the exchange rate API; tests substitute a fixture.
type QuoteSource func(r date.Range) (source string, quotes exchangerate.Quotes, err error)

// ConvertAccount reads one account's export for the run, converts it to the
// import format and writes the import file into outputDir. It returns the
// number of transactions written and the output path.
func ConvertAccount(account Account, inputPath, outputDir string, fetch QuoteSource) (int, string, error) {
	f, err := os.Open(inputPath)
	if err != nil {
		return 0, "", err
	}
	defer f.Close()

	var txs []Transaction
	switch account.Source {
	case SourceChecking:
		rows, err := ReadCheckingRows(f)
		if err != nil {
			return 0, "", err
		}
		if len(rows) == 0 {
			return 0, "", fmt.Errorf("%w: no transactions survived filtering in %s", ErrNoData, inputPath)
		}
		source, quotes, err := fetch(CheckingDateRange(rows))
		if err != nil {
			return 0, "", err
		}
		rates, err := BuildRateTable(quotes, source, CheckingCurrencies(rows))
		if err != nil {
			return 0, "", err
		}
		txs, err = NormalizeChecking(rows, account.Name, rates)
		if err != nil {
			return 0, "", err
		}

	case SourceSavings:
		rows, err := ReadSavingsRows(f, account.Currency)
		if err != nil {
			return 0, "", err
		}
		if len(rows) == 0 {
			return 0, "", fmt.Errorf("%w: no transactions survived filtering in %s", ErrNoData, inputPath)
		}
		source, quotes, err := fetch(SavingsDateRange(rows))
		if err != nil {
			return 0, "", err
		}
		rates, err := BuildRateTable(quotes, source, []string{account.Currency})
		if err != nil {
			return 0, "", err
		}
		txs = NormalizeSavings(rows, account.Name, account.Currency, rates)

	default:
		return 0, "", fmt.Errorf("%w: unknown source %q for account %q", ErrConfig, account.Source, account.Name)
	}

	outputPath := filepath.Join(outputDir, account.ImportFile())
	if err := writeFile(outputPath, func(w *os.File) error { return EncodeTransactions(w, txs) }); err != nil {
		return 0, "", err
	}
	return len(txs), outputPath, nil
}

// BuildAccountHistory locates the account's prior balance, replays every
// generated import file into a daily balance series and writes the balance
// history file into outputDir.
func BuildAccountHistory(account Account, outputRoot, outputDir string, runDate date.Date, fetch QuoteSource) ([]BalanceRecord, string, error) {
	// The starting balance is the prior run's final balance: in the
	// reporting currency for reporting-currency accounts, in the account's
	// own currency otherwise.
	column := "Original Balance"
	if account.Currency == ReportingCurrency {
		column = "Balance"
	}
	starting, found, err := FindPriorBalance(outputRoot, account.HistoryFile(), runDate, column, account.Name)
	if err != nil {
		return nil, "", err
	}
	if !found {
		opening, ok := account.Opening()
		if !ok {
			return nil, "", fmt.Errorf("%w: no prior balance history found for %q; cannot infer starting balance", ErrNoData, account.Name)
		}
		log.Printf("warning, no prior balance history for %q, seeding from the configured starting balance", account.Name)
		starting = opening
	}

	all, err := LoadImportTransactions(outputRoot)
	if err != nil {
		return nil, "", err
	}
	txs := make([]Transaction, 0, len(all))
	for _, tx := range all {
		if tx.Account == account.Name {
			txs = append(txs, tx)
		}
	}
	if len(txs) == 0 {
		return nil, "", fmt.Errorf("%w: no transactions found for account %q", ErrNoData, account.Name)
	}

	lookup, err := historyRateLookup(account, txs, fetch)
	if err != nil {
		return nil, "", err
	}

	accounts := []AccountConfig{{Name: account.Name, Currency: account.Currency, StartingBalance: starting}}
	records, err := BuildBalanceHistory(txs, accounts, lookup)
	if err != nil {
		return nil, "", err
	}

	outputPath := filepath.Join(outputDir, account.HistoryFile())
	if err := writeFile(outputPath, func(w *os.File) error { return EncodeBalanceHistory(w, records) }); err != nil {
		return nil, "", err
	}
	return records, outputPath, nil
}

// historyRateLookup binds the rate lookup for a balance run: the constant 1
// for reporting-currency accounts, otherwise a freshly fetched daily series
// over the transactions' date range.
func historyRateLookup(account Account, txs []Transaction, fetch QuoteSource) (RateLookup, error) {
	if account.Currency == ReportingCurrency {
		return func(date.Date, string) (decimal.Decimal, bool) { return one, true }, nil
	}

	days := make([]date.Date, 0, len(txs))
	for _, tx := range txs {
		days = append(days, tx.Date)
	}
	source, quotes, err := fetch(date.NewRange(days...))
	if err != nil {
		return nil, err
	}
	series, err := BuildRateSeries(quotes, source, account.Currency)
	if err != nil {
		return nil, err
	}
	return func(on date.Date, currency string) (decimal.Decimal, bool) {
		if currency != account.Currency {
			return decimal.Decimal{}, false
		}
		return series.Get(on)
	}, nil
}

// writeFile creates path and runs encode against it, closing on the way out.
func writeFile(path string, encode func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := encode(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
