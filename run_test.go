package bankimport

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/etnz/bankimport/date"
	"github.com/etnz/bankimport/exchangerate"
)

// fixedQuotes serves the same quote table whatever range is asked for.
func fixedQuotes(quotes exchangerate.Quotes) QuoteSource {
	return func(date.Range) (string, exchangerate.Quotes, error) {
		return "USD", quotes, nil
	}
}

func writeInput(t *testing.T, dir, name, content string) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestConvertAccount_Checking(t *testing.T) {
	input := writeInput(t, t.TempDir(), "checking_transactions.csv",
		"State,Started Date,Currency,Description,Amount\n"+
			"COMPLETED,2025-06-01 09:15:00,USD,Coffee,-4.50\n"+
			"COMPLETED,2025-06-01 12:00:00,EUR,Groceries,-20.00\n"+
			"REVERTED,2025-06-02 08:00:00,USD,Refund,4.50\n")
	outputDir := t.TempDir()
	fetch := fixedQuotes(exchangerate.Quotes{
		"2025-06-01": {"USDEUR": decimal.RequireFromString("0.8")},
	})

	account := Account{Name: "Revolut Checking", Source: SourceChecking, Currency: "USD"}
	n, path, err := ConvertAccount(account, input, outputDir, fetch)
	if err != nil {
		t.Fatalf("ConvertAccount() unexpected error = %v", err)
	}
	if n != 2 {
		t.Errorf("ConvertAccount() wrote %d transactions, want 2", n)
	}
	if path != filepath.Join(outputDir, "checking_transaction_import.csv") {
		t.Errorf("ConvertAccount() path = %q", path)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	txs, err := DecodeTransactions(f)
	if err != nil {
		t.Fatalf("DecodeTransactions() unexpected error = %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("decoded %d transactions, want 2", len(txs))
	}
	// EUR spending converts at 1/0.8
	if !txs[1].Amount.Equal(decimal.RequireFromString("-25.00")) {
		t.Errorf("txs[1].Amount = %s, want -25.00", txs[1].Amount)
	}
	if txs[1].Account != "Revolut Checking" {
		t.Errorf("txs[1].Account = %q, want Revolut Checking", txs[1].Account)
	}
}

func TestConvertAccount_CheckingMissingRate(t *testing.T) {
	input := writeInput(t, t.TempDir(), "checking_transactions.csv",
		"State,Started Date,Currency,Description,Amount\n"+
			"COMPLETED,2025-06-01 12:00:00,EUR,Groceries,-20.00\n")
	fetch := fixedQuotes(exchangerate.Quotes{"2025-06-01": {}})

	account := Account{Name: "Revolut Checking", Source: SourceChecking, Currency: "USD"}
	_, _, err := ConvertAccount(account, input, t.TempDir(), fetch)
	if !errors.Is(err, ErrNoRate) {
		t.Errorf("ConvertAccount() error = %v, want ErrNoRate", err)
	}
}

func TestConvertAccount_SavingsSkipsMissingRate(t *testing.T) {
	input := writeInput(t, t.TempDir(), "savings_transactions.csv",
		"Date,Description,Money out,Money in\n"+
			"\"Jun 1, 2025\",Interest earned,,£1.00\n"+
			"\"Jun 2, 2025\",Withdrawal,£500.00,\n")
	outputDir := t.TempDir()
	fetch := fixedQuotes(exchangerate.Quotes{
		"2025-06-01": {"USDGBP": decimal.RequireFromString("0.5")},
	})

	account := Account{Name: "Revolut Savings", Source: SourceSavings, Currency: "GBP"}
	n, path, err := ConvertAccount(account, input, outputDir, fetch)
	if err != nil {
		t.Fatalf("ConvertAccount() unexpected error = %v", err)
	}
	// the day-2 row has no rate and is skipped, not fatal
	if n != 1 {
		t.Errorf("ConvertAccount() wrote %d transactions, want 1", n)
	}
	if path != filepath.Join(outputDir, "savings_transaction_import.csv") {
		t.Errorf("ConvertAccount() path = %q", path)
	}
}

func TestConvertAccount_NoSurvivingRows(t *testing.T) {
	input := writeInput(t, t.TempDir(), "checking_transactions.csv",
		"State,Started Date,Currency,Description,Amount\n"+
			"REVERTED,2025-06-01 09:15:00,USD,Refund,4.50\n")
	fetch := fixedQuotes(exchangerate.Quotes{})

	account := Account{Name: "Revolut Checking", Source: SourceChecking, Currency: "USD"}
	_, _, err := ConvertAccount(account, input, t.TempDir(), fetch)
	if !errors.Is(err, ErrNoData) {
		t.Errorf("ConvertAccount() error = %v, want ErrNoData", err)
	}
}

// seedImports writes one import file under outputRoot/<day>/ for the account.
func seedImports(t *testing.T, outputRoot, day string, account Account, txs []Transaction) {
	t.Helper()
	dir := filepath.Join(outputRoot, day)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	f, err := os.Create(filepath.Join(dir, account.ImportFile()))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := EncodeTransactions(f, txs); err != nil {
		t.Fatal(err)
	}
}

func TestBuildAccountHistory_ReportingCurrency(t *testing.T) {
	outputRoot := t.TempDir()
	account := Account{Name: "Revolut Checking", Source: SourceChecking, Currency: "USD", StartingBalance: "100"}
	seedImports(t, outputRoot, "2025-06-10", account, []Transaction{
		tx("2025-06-01", account.Name, "10", "10"),
		tx("2025-06-02", account.Name, "-5", "-5"),
	})
	outputDir := filepath.Join(outputRoot, "2025-06-10")

	records, path, err := BuildAccountHistory(account, outputRoot, outputDir, date.MustParse("2025-06-10"), fixedQuotes(nil))
	if err != nil {
		t.Fatalf("BuildAccountHistory() unexpected error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("BuildAccountHistory() returned %d records, want 2", len(records))
	}
	// no prior history exists, so the configured starting balance seeds the run
	if !records[0].Balance.Equal(decimal.RequireFromString("110")) {
		t.Errorf("records[0].Balance = %s, want 110", records[0].Balance)
	}
	if !records[1].Balance.Equal(decimal.RequireFromString("105")) {
		t.Errorf("records[1].Balance = %s, want 105", records[1].Balance)
	}

	buf, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(buf), "Date,Balance,Original Balance,Account\n") {
		t.Errorf("history file starts with %q", strings.SplitN(string(buf), "\n", 2)[0])
	}
}

func TestBuildAccountHistory_PriorBalanceWins(t *testing.T) {
	outputRoot := t.TempDir()
	account := Account{Name: "Revolut Checking", Source: SourceChecking, Currency: "USD", StartingBalance: "100"}

	// an earlier run left a final balance of 50; it beats the configured seed
	prior := filepath.Join(outputRoot, "2025-06-01")
	if err := os.MkdirAll(prior, 0755); err != nil {
		t.Fatal(err)
	}
	history := "Date,Balance,Original Balance,Account\n2025-05-31,50.00,50,Revolut Checking\n"
	if err := os.WriteFile(filepath.Join(prior, account.HistoryFile()), []byte(history), 0644); err != nil {
		t.Fatal(err)
	}

	seedImports(t, outputRoot, "2025-06-10", account, []Transaction{
		tx("2025-06-09", account.Name, "10", "10"),
	})
	outputDir := filepath.Join(outputRoot, "2025-06-10")

	records, _, err := BuildAccountHistory(account, outputRoot, outputDir, date.MustParse("2025-06-10"), fixedQuotes(nil))
	if err != nil {
		t.Fatalf("BuildAccountHistory() unexpected error = %v", err)
	}
	if !records[0].Balance.Equal(decimal.RequireFromString("60")) {
		t.Errorf("records[0].Balance = %s, want 60", records[0].Balance)
	}
}

func TestBuildAccountHistory_ForeignCurrency(t *testing.T) {
	outputRoot := t.TempDir()
	account := Account{Name: "Revolut Savings", Source: SourceSavings, Currency: "GBP", StartingBalance: "100"}
	seedImports(t, outputRoot, "2025-06-10", account, []Transaction{
		tx("2025-06-01", account.Name, "0", "10"),
		tx("2025-06-02", account.Name, "0", "-5"),
	})
	outputDir := filepath.Join(outputRoot, "2025-06-10")
	fetch := fixedQuotes(exchangerate.Quotes{
		"2025-06-01": {"USDGBP": decimal.RequireFromString("0.5")},
	})

	records, path, err := BuildAccountHistory(account, outputRoot, outputDir, date.MustParse("2025-06-10"), fetch)
	if err != nil {
		t.Fatalf("BuildAccountHistory() unexpected error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("BuildAccountHistory() returned %d records, want 2", len(records))
	}
	// day 1 converts the cumulative balance at 1/0.5
	if !records[0].Converted || !records[0].Balance.Equal(decimal.RequireFromString("220")) {
		t.Errorf("records[0] = %+v, want converted balance 220", records[0])
	}
	// day 2 has no rate: kept with the original balance only
	if records[1].Converted {
		t.Errorf("records[1].Converted = true, want false")
	}
	if !records[1].OriginalBalance.Equal(decimal.RequireFromString("105")) {
		t.Errorf("records[1].OriginalBalance = %s, want 105", records[1].OriginalBalance)
	}

	buf, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(buf), "2025-06-02,,105,Revolut Savings") {
		t.Errorf("history file = %q, want an empty Balance cell on day 2", string(buf))
	}
}

func TestBuildAccountHistory_NoSeed(t *testing.T) {
	outputRoot := t.TempDir()
	account := Account{Name: "Revolut Checking", Source: SourceChecking, Currency: "USD"}
	seedImports(t, outputRoot, "2025-06-10", account, []Transaction{
		tx("2025-06-09", account.Name, "10", "10"),
	})

	_, _, err := BuildAccountHistory(account, outputRoot, filepath.Join(outputRoot, "2025-06-10"), date.MustParse("2025-06-10"), fixedQuotes(nil))
	if !errors.Is(err, ErrNoData) {
		t.Errorf("BuildAccountHistory() error = %v, want ErrNoData", err)
	}
}

func TestBuildAccountHistory_NoTransactionsForAccount(t *testing.T) {
	outputRoot := t.TempDir()
	other := Account{Name: "Other", Source: SourceChecking, Currency: "USD"}
	seedImports(t, outputRoot, "2025-06-10", other, []Transaction{
		tx("2025-06-09", other.Name, "10", "10"),
	})
	account := Account{Name: "Revolut Checking", Source: SourceChecking, Currency: "USD", StartingBalance: "100"}

	_, _, err := BuildAccountHistory(account, outputRoot, filepath.Join(outputRoot, "2025-06-10"), date.MustParse("2025-06-10"), fixedQuotes(nil))
	if !errors.Is(err, ErrNoData) {
		t.Errorf("BuildAccountHistory() error = %v, want ErrNoData", err)
	}
}
