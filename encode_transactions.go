package bankimport

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/etnz/bankimport/date"
)

// TransactionHeader is the column set of the import format, in order.
var TransactionHeader = []string{
	"Date",
	"Merchant",
	"Category",
	"Account",
	"Original Statement",
	"Notes",
	"Amount",
	"Original Amount",
	"Tags",
}

// EncodeTransactions writes canonical transactions as CSV in the import
// format. The reporting amount is written with exactly 2 decimal places.
func EncodeTransactions(w io.Writer, txs []Transaction) error {
	out := csv.NewWriter(w)
	if err := out.Write(TransactionHeader); err != nil {
		return err
	}
	for _, tx := range txs {
		record := []string{
			tx.Date.String(),
			tx.Merchant,
			tx.Category,
			tx.Account,
			tx.OriginalStatement,
			tx.Notes,
			tx.Amount.StringFixed(2),
			tx.OriginalAmount.String(),
			tx.Tags,
		}
		if err := out.Write(record); err != nil {
			return err
		}
	}
	out.Flush()
	return out.Error()
}

// DecodeTransactions reads canonical transactions back from CSV, validating
// the header so the schema stays an explicit contract rather than implicit
// column-name coupling.
func DecodeTransactions(r io.Reader) ([]Transaction, error) {
	in := csv.NewReader(r)
	header, err := in.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read headers: %w", err)
	}
	cleanHeader(header)
	if len(header) != len(TransactionHeader) {
		return nil, fmt.Errorf("incorrect number of headers: got %d, want %d", len(header), len(TransactionHeader))
	}
	for i, h := range header {
		if h != TransactionHeader[i] {
			return nil, fmt.Errorf("incorrect header at position %d: got %q, want %q", i+1, h, TransactionHeader[i])
		}
	}

	var txs []Transaction
	line := 2 // line 1 is the header
	for {
		record, err := in.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading line %d: %w", line, err)
		}

		on, err := date.Parse(record[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		amount, err := decimal.NewFromString(record[6])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid Amount %q: %w", line, record[6], err)
		}
		original, err := decimal.NewFromString(record[7])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid Original Amount %q: %w", line, record[7], err)
		}

		txs = append(txs, Transaction{
			Date:              on,
			Merchant:          record[1],
			Category:          record[2],
			Account:           record[3],
			OriginalStatement: record[4],
			Notes:             record[5],
			Amount:            amount,
			OriginalAmount:    original,
			Tags:              record[8],
		})
		line++
	}
	return txs, nil
}

// LoadImportTransactions gathers every previously generated import file from
// the dated output folders. Files that fail to parse are skipped with a
// warning; the balance commands must see the whole import history, not only
// the current run's.
func LoadImportTransactions(outputRoot string) ([]Transaction, error) {
	files, err := filepath.Glob(filepath.Join(outputRoot, "*", "*_import.csv"))
	if err != nil {
		return nil, err
	}

	var txs []Transaction
	loaded := 0
	for _, file := range files {
		if strings.HasSuffix(file, "_balance_history_import.csv") {
			continue
		}
		f, err := os.Open(file)
		if err != nil {
			log.Printf("warning, skipping %s: %v", file, err)
			continue
		}
		decoded, err := DecodeTransactions(f)
		f.Close()
		if err != nil {
			log.Printf("warning, skipping %s: %v", file, err)
			continue
		}
		txs = append(txs, decoded...)
		loaded++
	}
	if loaded == 0 {
		return nil, fmt.Errorf("%w: no valid import files found in %s", ErrNoData, outputRoot)
	}
	return txs, nil
}

// cleanHeader trims spaces, quotes and a leading BOM from a CSV header row.
func cleanHeader(header []string) {
	for i, h := range header {
		header[i] = strings.TrimSpace(strings.Trim(h, `"`))
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}
}
