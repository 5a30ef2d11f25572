package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/google/subcommands"

	"github.com/etnz/bankimport"
	"github.com/etnz/bankimport/date"
)

type ratesCmd struct {
	start string
	end   string
}

func (*ratesCmd) Name() string     { return "rates" }
func (*ratesCmd) Synopsis() string { return "display the daily conversion factors for a date range" }
func (*ratesCmd) Usage() string {
	return `rates -s <start_date> -e <end_date> [currency...]

  Fetches the daily quotes for the range and displays the conversion factors
  into the reporting currency, exactly as the converters would use them.
  Without an explicit currency list, the configured accounts' currencies are
  shown.

Usage Examples:
# Show GBP and EUR factors for June 2025.
$ bki rates -s 2025-06-01 -e 2025-06-30 GBP EUR

`
}

func (c *ratesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.start, "s", "", "start of the date range (YYYY-MM-DD)")
	f.StringVar(&c.end, "e", "", "end of the date range (YYYY-MM-DD)")
}

func (c *ratesCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	from, err := date.Parse(c.start)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing start date: %v\n", err)
		return subcommands.ExitUsageError
	}
	to, err := date.Parse(c.end)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing end date: %v\n", err)
		return subcommands.ExitUsageError
	}

	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if err := cfg.RequireAPIKey(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	currencies := f.Args()
	if len(currencies) == 0 {
		for _, account := range cfg.Accounts {
			currencies = append(currencies, account.Currency)
		}
	}

	source, quotes, err := quoteSource(cfg)(date.Range{From: from, To: to})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	table, err := bankimport.BuildRateTable(quotes, source, currencies)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	days := make([]date.Date, 0, len(quotes))
	for day := range quotes {
		if on, err := date.Parse(day); err == nil {
			days = append(days, on)
		}
	}
	slices.SortFunc(days, func(a, b date.Date) int { return strings.Compare(a.String(), b.String()) })
	slices.Sort(currencies)
	currencies = slices.Compact(currencies)

	var b strings.Builder
	fmt.Fprintf(&b, "# Conversion factors to %s\n\n", bankimport.ReportingCurrency)
	fmt.Fprintf(&b, "| Date | %s |\n", strings.Join(currencies, " | "))
	b.WriteString("|---" + strings.Repeat("|--:", len(currencies)) + "|\n")
	for _, on := range days {
		cells := make([]string, 0, len(currencies))
		for _, currency := range currencies {
			if rate, ok := table.Rate(on, currency); ok {
				cells = append(cells, rate.StringFixed(6))
			} else {
				cells = append(cells, "-")
			}
		}
		fmt.Fprintf(&b, "| %s | %s |\n", on, strings.Join(cells, " | "))
	}

	printMarkdown(b.String())
	return subcommands.ExitSuccess
}
