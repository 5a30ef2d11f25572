package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/etnz/bankimport"
)

type convertCmd struct{}

func (*convertCmd) Name() string { return "convert" }
func (*convertCmd) Synopsis() string {
	return "convert bank account exports into the unified import format"
}
func (*convertCmd) Usage() string {
	return `convert [account...]

  Reads each configured account's export from input/<run-date>/, converts
  amounts into the reporting currency with that day's exchange rate, and
  writes the import file into output/<run-date>/. With no argument every
  configured account is converted.

Usage Examples:
# Convert all configured accounts for the latest dated input folder.
$ bki convert

# Convert a single account for an explicit run date.
$ bki -run-date 2025-06-30 convert "Revolut Savings"

`
}

func (c *convertCmd) SetFlags(f *flag.FlagSet) {}

func (c *convertCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	accounts, err := selectAccounts(cfg, f.Args())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	if err := cfg.RequireAPIKey(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	runDate, err := bankimport.ResolveRunDate(cfg.RunDate, cfg.InputRoot)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	outputDir, err := bankimport.OutputDir(cfg.OutputRoot, runDate)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	fetch := quoteSource(cfg)
	for _, account := range accounts {
		inputPath, err := bankimport.InputPath(cfg.InputRoot, runDate, account.InputFile())
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
		n, outputPath, err := bankimport.ConvertAccount(account, inputPath, outputDir, fetch)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error converting %q: %v\n", account.Name, err)
			return subcommands.ExitFailure
		}
		fmt.Printf("Exported %d transactions to %s\n", n, outputPath)
	}
	return subcommands.ExitSuccess
}
