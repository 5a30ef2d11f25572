package bankimport

import (
	"github.com/shopspring/decimal"

	"github.com/etnz/bankimport/date"
)

// Transaction is one row of the unified import format, the canonical schema
// every source export is normalized into and the only input of the balance
// history builder.
type Transaction struct {
	// Date is the calendar day the transaction settled on.
	Date date.Date
	// Merchant is the counterparty description.
	Merchant string
	// Category is free text, left empty by the normalizers.
	Category string
	// Account is the configured account name the row belongs to.
	Account string
	// OriginalStatement is the untouched source description.
	OriginalStatement string
	// Notes is free text, left empty by the normalizers.
	Notes string
	// Amount is in the reporting currency, rounded to 2 decimal places.
	// It is always derived from OriginalAmount with the same-day rate,
	// never edited independently.
	Amount decimal.Decimal
	// OriginalAmount is in the account's own currency.
	OriginalAmount decimal.Decimal
	// Tags is free text, left empty by the normalizers.
	Tags string
}

// NewTransaction builds a canonical row the way the converters emit it: the
// source description fills both Merchant and OriginalStatement, the free
// text columns stay empty.
func NewTransaction(on date.Date, description, account string, amount, original decimal.Decimal) Transaction {
	return Transaction{
		Date:              on,
		Merchant:          description,
		Account:           account,
		OriginalStatement: description,
		Amount:            amount,
		OriginalAmount:    original,
	}
}
