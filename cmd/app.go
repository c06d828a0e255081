// Package cmd implements the CLI application to track a portfolio.
package cmd

import (
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/chanv/portrack"
	"github.com/chanv/portrack/config"
)

// Register the subcommands. A main package calls Register() and then
// Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&fmtCmd{}, "ledger")
	c.Register(&buyCmd{}, "ledger")
	c.Register(&sellCmd{}, "ledger")

	c.Register(&fetchCmd{}, "market data")

	c.Register(&reportCmd{}, "reports")
	c.Register(&historyCmd{}, "reports")

	c.Register(&serveCmd{}, "services")
	c.Register(&assistCmd{}, "services")

	c.Register(&topicCmd{}, "documentation")
}

// CommandNames returns the registered subcommand names, for shell
// completion.
func CommandNames() []string {
	return []string{"fmt", "buy", "sell", "fetch", "report", "history", "serve", "assist", "topic"}
}

// as a CLI application it is short lived, globals are fine.

var configDir = flag.String("config", "", "Path to the configuration directory (default ~/.config/portrack)")

func loadConfig() (*config.Config, error) {
	return config.Load(*configDir)
}

// loadLedger reads the transactions CSV named by the configuration.
// A missing file yields an empty ledger.
func loadLedger(cfg *config.Config) (*portrack.Ledger, error) {
	f, err := os.Open(cfg.Files.Transactions)
	if os.IsNotExist(err) {
		return portrack.NewLedger(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening ledger %q: %w", cfg.Files.Transactions, err)
	}
	defer f.Close()
	return portrack.DecodeCSV(f)
}

// saveLedger rewrites the transactions CSV in canonical form.
func saveLedger(cfg *config.Config, ledger *portrack.Ledger) error {
	f, err := os.Create(cfg.Files.Transactions)
	if err != nil {
		return fmt.Errorf("writing ledger %q: %w", cfg.Files.Transactions, err)
	}
	defer f.Close()
	return portrack.EncodeCSV(f, ledger)
}

// loadPrices reads the quote cache named by the configuration.
func loadPrices(cfg *config.Config) (*portrack.PriceTable, error) {
	f, err := os.Open(cfg.Files.Prices)
	if err != nil {
		return nil, fmt.Errorf("opening prices %q (run 'ptrack fetch' first): %w", cfg.Files.Prices, err)
	}
	defer f.Close()
	return portrack.DecodePrices(f, cfg.Portfolio.Benchmark, cfg.Portfolio.Currency)
}

func savePrices(cfg *config.Config, table *portrack.PriceTable) error {
	f, err := os.Create(cfg.Files.Prices)
	if err != nil {
		return fmt.Errorf("writing prices %q: %w", cfg.Files.Prices, err)
	}
	defer f.Close()
	return portrack.EncodePrices(f, table)
}

func options(cfg *config.Config) (portrack.Options, error) {
	policy, err := portrack.ParseSellPolicy(cfg.Portfolio.SellPolicy)
	if err != nil {
		return portrack.Options{}, err
	}
	return portrack.Options{
		Benchmark:   cfg.Portfolio.Benchmark,
		Currency:    cfg.Portfolio.Currency,
		SellPolicy:  policy,
		RiskFree:    cfg.Portfolio.RiskFree,
		TradingDays: cfg.Portfolio.TradingDays,
	}, nil
}

// compute loads everything and runs the valuation.
func compute(cfg *config.Config) (*portrack.Report, error) {
	ledger, err := loadLedger(cfg)
	if err != nil {
		return nil, err
	}
	prices, err := loadPrices(cfg)
	if err != nil {
		return nil, err
	}
	opts, err := options(cfg)
	if err != nil {
		return nil, err
	}
	return portrack.Compute(ledger, prices, opts)
}

// fetchRange determines the quote range to download: from the
// configured start date (or the oldest transaction) through today.
func fetchRange(cfg *config.Config, ledger *portrack.Ledger) (from, to portrack.Date, err error) {
	to = portrack.Today()
	if cfg.Portfolio.StartDate != "" {
		from, err = portrack.ParseDate(cfg.Portfolio.StartDate)
		return from, to, err
	}
	from, ok := ledger.OldestTransactionDate()
	if !ok {
		return from, to, fmt.Errorf("empty ledger and no portfolio.start_date configured")
	}
	return from, to, nil
}
