package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/chanv/portrack"
)

// txCmd holds the flags shared by buy and sell.
type txCmd struct {
	date       string
	ticker     string
	quantity   float64
	price      float64
	commission float64
}

func (c *txCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", portrack.Today().String(), "Date of the transaction (YYYY-MM-DD)")
	f.StringVar(&c.ticker, "s", "", "Ticker of the security")
	f.Float64Var(&c.quantity, "q", 0, "Number of shares")
	f.Float64Var(&c.price, "p", 0, "Price per share")
	f.Float64Var(&c.commission, "c", 0, "Commission paid")
}

func (c *txCmd) record(side portrack.Side) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	date, err := portrack.ParseDate(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid date: %v\n", err)
		return subcommands.ExitFailure
	}
	tx := portrack.Transaction{
		Date:       date,
		Ticker:     c.ticker,
		Side:       side,
		Quantity:   portrack.Q(c.quantity),
		Price:      portrack.M(c.price, cfg.Portfolio.Currency),
		Commission: portrack.M(c.commission, cfg.Portfolio.Currency),
	}

	ledger, err := loadLedger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not load ledger: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := ledger.Append(tx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := saveLedger(cfg, ledger); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Recorded %s %s %s @ %s\n", side, tx.Quantity, tx.Ticker, tx.Price)
	return subcommands.ExitSuccess
}

type buyCmd struct{ txCmd }

func (*buyCmd) Name() string     { return "buy" }
func (*buyCmd) Synopsis() string { return "records a buy transaction" }
func (*buyCmd) Usage() string {
	return `ptrack buy -s <ticker> -q <quantity> -p <price> [-c <commission>] [-d <date>]

  Appends a buy to the transactions file.

`
}
func (c *buyCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.record(portrack.Buy)
}

type sellCmd struct{ txCmd }

func (*sellCmd) Name() string     { return "sell" }
func (*sellCmd) Synopsis() string { return "records a sell transaction" }
func (*sellCmd) Usage() string {
	return `ptrack sell -s <ticker> -q <quantity> -p <price> [-c <commission>] [-d <date>]

  Appends a sell to the transactions file.

`
}
func (c *sellCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.record(portrack.Sell)
}
