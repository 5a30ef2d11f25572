package bankimport

import (
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/etnz/bankimport/date"
)

// AccountConfig describes one account for a balance history run. It is
// rebuilt fresh every run: the starting balance comes from the previous
// run's final balance, the rest from static account metadata.
type AccountConfig struct {
	// Name uniquely identifies the account within a run.
	Name string
	// Currency is the account's own ISO 4217 currency code.
	Currency string
	// StartingBalance seeds the cumulative sum. For accounts held in the
	// reporting currency it is in the reporting currency, otherwise in the
	// account's own currency.
	StartingBalance decimal.Decimal
}

// RateLookup returns the multiplier converting one unit of currency into the
// reporting currency on the given day, and whether a rate is known at all.
type RateLookup func(on date.Date, currency string) (decimal.Decimal, bool)

// BalanceRecord is one day with activity for one account.
type BalanceRecord struct {
	Date date.Date
	// Balance is the end-of-day balance in the reporting currency. Only
	// meaningful when Converted is true.
	Balance decimal.Decimal
	// Converted is false when no rate was known for that day; the record is
	// still kept with OriginalBalance populated.
	Converted bool
	// OriginalBalance is the end-of-day balance in the account's currency.
	OriginalBalance decimal.Decimal
	Account         string
}

// BuildBalanceHistory turns canonical transactions into a daily cumulative
// balance series per account. Days without activity produce no record (no
// forward fill). Accounts without any transaction are skipped. The result is
// sorted by (account, date).
func BuildBalanceHistory(txs []Transaction, accounts []AccountConfig, lookup RateLookup) ([]BalanceRecord, error) {
	var records []BalanceRecord
	for _, account := range accounts {
		records = append(records, accountHistory(txs, account, lookup)...)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no balances generated for requested accounts", ErrNoData)
	}

	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Account != records[j].Account {
			return strings.Compare(records[i].Account, records[j].Account) < 0
		}
		return records[i].Date.Before(records[j].Date)
	})
	return records, nil
}

// accountHistory computes the series for a single account.
//
// In the reporting currency the daily sums of Amount accumulate directly and
// the original balance is by definition the same value. In any other currency
// the daily sums of OriginalAmount accumulate, and each day's cumulative
// balance (not the daily delta) is converted with that day's rate.
func accountHistory(txs []Transaction, account AccountConfig, lookup RateLookup) []BalanceRecord {
	reporting := account.Currency == ReportingCurrency

	daily := new(date.History[decimal.Decimal])
	for _, tx := range txs {
		if tx.Account != account.Name {
			continue
		}
		amount := tx.OriginalAmount
		if reporting {
			amount = tx.Amount
		}
		sum, _ := daily.Get(tx.Date)
		daily.Append(tx.Date, sum.Add(amount))
	}
	if daily.Len() == 0 {
		return nil
	}

	records := make([]BalanceRecord, 0, daily.Len())
	balance := account.StartingBalance
	for on, sum := range daily.Values() {
		balance = balance.Add(sum)
		record := BalanceRecord{Date: on, OriginalBalance: balance, Account: account.Name}
		if reporting {
			record.Balance, record.Converted = balance, true
		} else if rate, ok := lookup(on, account.Currency); ok {
			record.Balance, record.Converted = balance.Mul(rate).Round(2), true
		} else {
			log.Printf("warning, no exchange rate for %s %s, reporting balance left empty", on, account.Currency)
		}
		records = append(records, record)
	}
	return records
}
