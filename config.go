package bankimport

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

// Source identifies which export format an account's input file uses.
type Source string

const (
	SourceChecking Source = "checking"
	SourceSavings  Source = "savings"
)

// Account is one configured account in the accounts file.
type Account struct {
	// Name tags every emitted row and must be unique per run.
	Name string `yaml:"name" validate:"required"`
	// Source selects the export format and the file naming convention.
	Source Source `yaml:"source" validate:"required,oneof=checking savings"`
	// Currency is the account's ISO 4217 code.
	Currency string `yaml:"currency" validate:"required,iso4217"`
	// StartingBalance is an optional seed used only when no prior balance
	// history exists yet. Kept as a string so the exact decimal survives.
	StartingBalance string `yaml:"startingBalance,omitempty" validate:"omitempty,numeric"`
}

// InputFile is the expected export filename under input/<run-date>/.
func (a Account) InputFile() string { return string(a.Source) + "_transactions.csv" }

// ImportFile is the emitted import filename under output/<run-date>/.
func (a Account) ImportFile() string { return string(a.Source) + "_transaction_import.csv" }

// HistoryFile is the emitted balance history filename under output/<run-date>/.
func (a Account) HistoryFile() string { return string(a.Source) + "_balance_history_import.csv" }

// Opening returns the configured fallback starting balance, if any.
// The value is validated as a number when the accounts file is read.
func (a Account) Opening() (decimal.Decimal, bool) {
	if a.StartingBalance == "" {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(a.StartingBalance)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

// accountsFile is the accounts configuration document.
type accountsFile struct {
	Accounts []Account `yaml:"accounts" validate:"required,min=1,dive"`
}

// DefaultAccounts is the account set used when no accounts file exists.
func DefaultAccounts() []Account {
	return []Account{
		{Name: "Revolut Checking", Source: SourceChecking, Currency: "USD"},
		{Name: "Revolut Savings", Source: SourceSavings, Currency: "GBP"},
	}
}

// ReadAccounts loads and validates the accounts file. A missing file is not
// an error: the default account set is used instead.
func ReadAccounts(filename string) ([]Account, error) {
	buf, err := os.ReadFile(filename)
	if errors.Is(err, fs.ErrNotExist) {
		log.Printf("warning, accounts file %s does not exist, using the default accounts", filename)
		return DefaultAccounts(), nil
	}
	if err != nil {
		return nil, err
	}
	return parseAccounts(buf)
}

func parseAccounts(buf []byte) ([]Account, error) {
	var doc accountsFile
	decoder := yaml.NewDecoder(strings.NewReader(string(buf)))
	decoder.KnownFields(true) // Disallow unknown fields
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: can't decode accounts file: %v", ErrConfig, err)
	}
	if err := validate.Struct(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}

	seen := make(map[string]bool, len(doc.Accounts))
	for _, a := range doc.Accounts {
		if seen[a.Name] {
			return nil, fmt.Errorf("%w: duplicate account name %q", ErrConfig, a.Name)
		}
		seen[a.Name] = true
	}
	return doc.Accounts, nil
}

// Config is the explicit process-wide configuration, resolved once at start
// from flags, environment and the accounts file, and passed to every
// component. There is no hidden load-once global.
type Config struct {
	// RunDate is the optional run date override (empty means "infer from the
	// latest dated input folder").
	RunDate string
	// APIKey authenticates against the exchange rate API.
	APIKey string
	// APIURL is the timeframe quote endpoint.
	APIURL string
	// InputRoot and OutputRoot hold the dated run folders.
	InputRoot  string
	OutputRoot string
	// Accounts is the validated account set.
	Accounts []Account
}

// RequireAPIKey fails fast when no API key is configured.
func (c *Config) RequireAPIKey() error {
	if c.APIKey == "" {
		return fmt.Errorf("%w: missing EXCHANGE_RATE_API_KEY, set it in your environment", ErrConfig)
	}
	return nil
}

// Account returns the configured account with the given name.
func (c *Config) Account(name string) (Account, error) {
	for _, a := range c.Accounts {
		if a.Name == name {
			return a, nil
		}
	}
	return Account{}, fmt.Errorf("%w: unknown account %q", ErrConfig, name)
}
