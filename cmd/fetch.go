package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/chanv/portrack"
)

type fetchCmd struct{}

func (*fetchCmd) Name() string     { return "fetch" }
func (*fetchCmd) Synopsis() string { return "downloads daily closing prices for the ledger's tickers" }
func (*fetchCmd) Usage() string {
	return `ptrack fetch

  Downloads daily closes for every ticker in the ledger plus the
  benchmark, from the configured start date (or the oldest transaction)
  through today, and writes the quote cache.

`
}

func (c *fetchCmd) SetFlags(f *flag.FlagSet) {}

func (c *fetchCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	ledger, err := loadLedger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not load ledger: %v\n", err)
		return subcommands.ExitFailure
	}

	from, to, err := fetchRange(cfg, ledger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	table, err := portrack.FetchPrices(cfg.Portfolio.Benchmark, ledger.Tickers(), from, to, cfg.Portfolio.Currency)
	if table == nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if err != nil {
		// Partial failure: some tickers missing, keep what we got.
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	if err := savePrices(cfg, table); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(os.Stderr, "Fetched %d trading days into %s\n", table.Len(), cfg.Files.Prices)
	return subcommands.ExitSuccess
}
