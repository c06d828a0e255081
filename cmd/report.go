package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/chanv/portrack"
	"github.com/chanv/portrack/renderer"
	"github.com/chanv/portrack/store"
)

type reportCmd struct {
	csv  bool
	save bool
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "computes the valuation and prints the report" }
func (*reportCmd) Usage() string {
	return `ptrack report [-csv] [-save]

  Runs the full valuation over the ledger and the cached prices and
  prints the report. -csv also writes the CSV reports into the output
  directory; -save persists the run into the report database for
  'ptrack serve'.

`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.csv, "csv", false, "Also write the CSV reports")
	f.BoolVar(&c.save, "save", false, "Also persist the run into the report database")
}

func (c *reportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	report, err := compute(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	if c.csv {
		if err := portrack.WriteCSVReports(cfg.Files.OutputDir, report); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Fprintf(os.Stderr, "Wrote CSV reports into %s\n", cfg.Files.OutputDir)
	}
	if c.save {
		st, err := store.Open(cfg.Files.Database)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		defer st.Close()
		if err := st.SaveReport(ctx, report); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Fprintf(os.Stderr, "Saved run into %s\n", cfg.Files.Database)
	}

	printMarkdown(renderer.ReportMarkdown(report))
	return subcommands.ExitSuccess
}

type historyCmd struct {
	days int
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "prints the tail of the daily valuation series" }
func (*historyCmd) Usage() string {
	return `ptrack history [-n <days>]

  Prints the last days of the daily valuation series.

`
}

func (c *historyCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.days, "n", 20, "Number of days to show (0 for all)")
}

func (c *historyCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	report, err := compute(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.HistoryMarkdown(report, c.days))
	return subcommands.ExitSuccess
}
