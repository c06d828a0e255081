package cmd

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/google/subcommands"

	"github.com/chanv/portrack"
	"github.com/chanv/portrack/config"
	"github.com/chanv/portrack/logging"
	"github.com/chanv/portrack/server"
	"github.com/chanv/portrack/store"
)

type serveCmd struct {
	addr string
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "serves the report over HTTP for the dashboard" }
func (*serveCmd) Usage() string {
	return `ptrack serve [-addr <host:port>]

  Computes the valuation, persists it, and serves the report endpoints.
  POSTing a transaction appends it to the ledger and recomputes.

`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.addr, "addr", "", "Listen address (overrides the configuration)")
}

func (c *serveCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	logger := logging.NewWithConfig(logging.Config{
		Level:    cfg.Log.Level,
		Console:  true,
		File:     cfg.Log.File,
		FilePath: cfg.Log.Path,
	})

	st, err := store.Open(cfg.Files.Database)
	if err != nil {
		logger.Error().Err(err).Msg("opening report database")
		return subcommands.ExitFailure
	}
	defer st.Close()

	// Seed the store with a fresh run when the inputs are available.
	if report, err := compute(cfg); err != nil {
		logger.Warn().Err(err).Msg("initial valuation failed, serving stored data")
	} else if err := st.SaveReport(ctx, report); err != nil {
		logger.Error().Err(err).Msg("persisting initial run")
		return subcommands.ExitFailure
	}

	addTx := func(ctx context.Context, tx portrack.Transaction) (*portrack.Report, error) {
		return recordAndRecompute(ctx, cfg, st, tx)
	}

	addr := c.addr
	if addr == "" {
		addr = cfg.Server.Addr
	}
	handler := server.New(st, logger, addTx, cfg.Server.AllowedOrigins)

	logger.Info().Str("addr", addr).Msg("serving portfolio report")
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Error().Err(err).Msg("server stopped")
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// recordAndRecompute appends the transaction to the CSV ledger, reruns
// the valuation and stores the result. The ledger file is only kept
// when the valuation accepts the transaction.
func recordAndRecompute(ctx context.Context, cfg *config.Config, st *store.SQLiteStore, tx portrack.Transaction) (*portrack.Report, error) {
	ledger, err := loadLedger(cfg)
	if err != nil {
		return nil, err
	}
	if err := ledger.Append(tx); err != nil {
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
	report, err := portrack.Compute(ledger, prices, opts)
	if err != nil {
		return nil, err
	}

	if err := saveLedger(cfg, ledger); err != nil {
		return nil, err
	}
	if err := st.SaveReport(ctx, report); err != nil {
		return nil, err
	}
	return report, nil
}
