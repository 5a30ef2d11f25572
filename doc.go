// Package bankimport converts bank account CSV exports into a unified
// personal-finance import format and derives daily running balance
// histories per account.
//
// Amounts in foreign currencies are converted into the reporting currency
// (USD) using historical daily exchange rates fetched once per run from a
// timeframe quote API.
//
// Everything is recomputed per run from flat files laid out in dated
// folders: inputs under input/<run-date>/ and outputs under
// output/<run-date>/. There is no state beyond those files.
package bankimport
