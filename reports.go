package portrack

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// WriteCSVReports writes the three historical CSV reports into dir:
// portfolio_value.csv, open_positions.csv and closed_positions.csv.
func WriteCSVReports(dir string, report *Report) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating report directory: %w", err)
	}
	if err := writeCSV(filepath.Join(dir, "portfolio_value.csv"), valueRows(report)); err != nil {
		return err
	}
	if err := writeCSV(filepath.Join(dir, "open_positions.csv"), openRows(report)); err != nil {
		return err
	}
	return writeCSV(filepath.Join(dir, "closed_positions.csv"), closedRows(report))
}

func valueRows(report *Report) [][]string {
	rows := [][]string{{
		"Date", "Current Value", "Cost", "Current P&L", "Closed P&L", "Overall P&L",
		"P&L Positive", "P&L Negative", "Daily P&L Change", "TWR", "Benchmark TWR",
		"Net Invested Capital", "Cumulative Cash Flow Adjusted Return", "Drawdown",
		"Portfolio Daily Return", "Benchmark Daily Return",
	}}
	for _, rec := range report.Records {
		rows = append(rows, []string{
			rec.Date.String(),
			f2(rec.Value.AsFloat()),
			f2(rec.Cost.AsFloat()),
			f2(rec.CurrentPnL.AsFloat()),
			f2(rec.ClosedPnL.AsFloat()),
			f2(rec.OverallPnL.AsFloat()),
			f2(rec.PnLPositive.AsFloat()),
			f2(rec.PnLNegative.AsFloat()),
			f2(rec.DailyChange.AsFloat()),
			f4(rec.TWR),
			f4(rec.BenchmarkTWR),
			f2(rec.NetInvested.AsFloat()),
			f4(rec.AdjustedReturn),
			f4(rec.Drawdown),
			f4(rec.DailyReturn),
			f4(rec.BenchmarkReturn),
		})
	}
	return rows
}

func openRows(report *Report) [][]string {
	rows := [][]string{{"Symbol", "Portfolio %", "Quantity", "Price", "Cost", "Value", "P&L"}}
	for _, pos := range report.Open {
		rows = append(rows, []string{
			pos.Symbol,
			f2(pos.PortfolioPct),
			pos.Quantity.String(),
			f2(pos.Price.AsFloat()),
			f2(pos.Cost.AsFloat()),
			f2(pos.Value.AsFloat()),
			f2(pos.PnL.AsFloat()),
		})
	}
	return rows
}

func closedRows(report *Report) [][]string {
	rows := [][]string{{"Symbol", "Quantity", "Cost", "Sell Price", "Sell Date", "P&L"}}
	for _, trade := range report.Closed {
		rows = append(rows, []string{
			trade.Ticker,
			trade.Quantity.String(),
			f2(trade.Cost.AsFloat()),
			f2(trade.SellPrice.AsFloat()),
			trade.SellDate.String(),
			f2(trade.PnL.AsFloat()),
		})
	}
	return rows
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func f2(f float64) string { return strconv.FormatFloat(round2(f), 'f', 2, 64) }
func f4(f float64) string { return strconv.FormatFloat(round4(f), 'f', 4, 64) }
