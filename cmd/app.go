// Package cmd implements the CLI application that converts bank exports and
// builds balance histories.
package cmd

import (
	"flag"
	"os"

	"github.com/google/subcommands"

	"github.com/etnz/bankimport"
	"github.com/etnz/bankimport/date"
	"github.com/etnz/bankimport/exchangerate"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&convertCmd{}, "run")
	c.Register(&historyCmd{}, "run")
	c.Register(&ratesCmd{}, "rates")
	c.Register(&topicCmd{}, "documentation")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var runDateFlag = flag.String("run-date", "", "Run date override in YYYY-MM-DD form.\n If missing it will read the environment variable \"RUN_DATE\";\n when that is empty too, the latest dated input folder is used.")
var apiKeyFlag = flag.String("api-key", "", "Exchange rate API key.\n If missing it will read the environment variable \"EXCHANGE_RATE_API_KEY\".")
var apiURLFlag = flag.String("api-url", "", "Exchange rate API URL.\n If missing it will read the environment variable \"EXCHANGE_RATE_API_URL\",\n defaulting to "+exchangerate.DefaultURL)
var inputRoot = flag.String("input", "input", "Root directory holding the dated input folders")
var outputRoot = flag.String("output", "output", "Root directory holding the dated output folders")
var accountsFile = flag.String("accounts", "accounts.yaml", "Path to the accounts configuration file")

// LoadConfig resolves the whole process configuration once: flags, their
// environment fallbacks, and the accounts file.
func LoadConfig() (*bankimport.Config, error) {
	accounts, err := bankimport.ReadAccounts(*accountsFile)
	if err != nil {
		return nil, err
	}
	cfg := &bankimport.Config{
		RunDate:    fallback(*runDateFlag, "RUN_DATE"),
		APIKey:     fallback(*apiKeyFlag, "EXCHANGE_RATE_API_KEY"),
		APIURL:     fallback(*apiURLFlag, "EXCHANGE_RATE_API_URL"),
		InputRoot:  *inputRoot,
		OutputRoot: *outputRoot,
		Accounts:   accounts,
	}
	if cfg.APIURL == "" {
		cfg.APIURL = exchangerate.DefaultURL
	}
	return cfg, nil
}

// fallback returns the flag value, or the environment variable when the flag
// is not set.
func fallback(flagValue, envVar string) string {
	if flagValue != "" {
		return flagValue
	}
	return os.Getenv(envVar)
}

// quoteSource binds a QuoteSource to the configured exchange rate API.
func quoteSource(cfg *bankimport.Config) bankimport.QuoteSource {
	client := exchangerate.NewClient()
	return func(r date.Range) (string, exchangerate.Quotes, error) {
		return exchangerate.Timeframe(client, cfg.APIURL, cfg.APIKey, r)
	}
}

// selectAccounts returns the configured accounts matching the given names,
// or all of them when no name is given.
func selectAccounts(cfg *bankimport.Config, names []string) ([]bankimport.Account, error) {
	if len(names) == 0 {
		return cfg.Accounts, nil
	}
	accounts := make([]bankimport.Account, 0, len(names))
	for _, name := range names {
		account, err := cfg.Account(name)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, nil
}
